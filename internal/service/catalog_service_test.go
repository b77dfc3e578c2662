package service

import (
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebovdev/groove-cli/internal/api"
	"github.com/glebovdev/groove-cli/internal/cache"
	"github.com/glebovdev/groove-cli/internal/config"
	"github.com/glebovdev/groove-cli/internal/track"
	"github.com/rs/zerolog"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

var library = []track.Track{
	{ID: "1", Title: "Morning Dew", Author: "Ana", SongPath: "u1/morning.mp3", ImagePath: "u1/morning.png", CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	{ID: "2", Title: "Night Drive", Author: "Ben", SongPath: "u2/night.mp3", CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	{ID: "3", Title: "dewdrops", Author: "Cy", SongPath: "u3/dew.wav", CreatedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
}

// newCatalogServer serves library with a small subset of PostgREST filtering.
func newCatalogServer(t *testing.T, requests *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests != nil {
			requests.Add(1)
		}
		if r.URL.Path != "/rest/v1/songs" {
			http.NotFound(w, r)
			return
		}

		result := slices.Clone(library)
		query := r.URL.Query()

		if title := query.Get("title"); title != "" {
			term := strings.ToLower(strings.Trim(strings.TrimPrefix(title, "ilike."), "*"))
			result = slices.DeleteFunc(result, func(s track.Track) bool {
				return !strings.Contains(strings.ToLower(s.Title), term)
			})
		}
		if ids := query.Get("id"); ids != "" {
			wanted := strings.Split(strings.TrimSuffix(strings.TrimPrefix(ids, "in.("), ")"), ",")
			for i, id := range wanted {
				wanted[i] = strings.Trim(id, `"`)
			}
			result = slices.DeleteFunc(result, func(s track.Track) bool {
				return !slices.Contains(wanted, s.ID)
			})
		}
		if query.Get("order") == "created_at.desc" {
			track.SortNewestFirst(result)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(result)
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestService(t *testing.T, serverURL string) *CatalogService {
	t.Helper()
	client := api.NewCatalogClient(config.Catalog{
		URL:          serverURL,
		Table:        "songs",
		SongsBucket:  "songs",
		ImagesBucket: "images",
	})
	return NewCatalogService(client, nil)
}

func ids(tracks []track.Track) []string {
	return track.IDs(tracks)
}

func TestGetSongsNewestFirst(t *testing.T) {
	server := newCatalogServer(t, nil)
	service := newTestService(t, server.URL)

	tracks, err := service.GetSongs()
	if err != nil {
		t.Fatalf("GetSongs() error = %v", err)
	}

	if got := ids(tracks); !slices.Equal(got, []string{"2", "3", "1"}) {
		t.Errorf("GetSongs() order = %v, want [2 3 1]", got)
	}
	if service.TrackCount() != 3 {
		t.Errorf("TrackCount() = %d, want 3", service.TrackCount())
	}
}

func TestSearchEmptyTitleMatchesFullListing(t *testing.T) {
	server := newCatalogServer(t, nil)
	service := newTestService(t, server.URL)

	all, err := service.GetSongs()
	if err != nil {
		t.Fatalf("GetSongs() error = %v", err)
	}

	searched := service.Search("")

	if !slices.Equal(ids(searched), ids(all)) {
		t.Errorf("Search(\"\") = %v, want %v", ids(searched), ids(all))
	}
}

func TestSearchCaseInsensitiveSubstring(t *testing.T) {
	server := newCatalogServer(t, nil)
	service := newTestService(t, server.URL)

	got := service.Search("DEW")

	if !slices.Equal(ids(got), []string{"3", "1"}) {
		t.Errorf("Search(DEW) = %v, want [3 1]", ids(got))
	}
	if !slices.Equal(service.TrackIDs(), []string{"3", "1"}) {
		t.Errorf("TrackIDs() = %v, want current listing [3 1]", service.TrackIDs())
	}
}

func TestSearchDegradesToEmptyOnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	service := newTestService(t, server.URL)

	got := service.Search("anything")
	if got == nil || len(got) != 0 {
		t.Errorf("Search() on failure = %#v, want empty non-nil slice", got)
	}
}

func TestSearchWithoutClient(t *testing.T) {
	service := NewCatalogService(nil, nil)

	if got := service.Search(""); len(got) != 0 {
		t.Errorf("Search() without client = %v, want empty", got)
	}
	if _, err := service.URL("1"); !errors.Is(err, ErrTrackNotFound) {
		t.Errorf("URL() without client error = %v, want ErrTrackNotFound", err)
	}
}

func TestLiked(t *testing.T) {
	server := newCatalogServer(t, nil)
	service := newTestService(t, server.URL)

	got := service.Liked([]string{"1", "2", "1"})
	if !slices.Equal(ids(got), []string{"2", "1"}) {
		t.Errorf("Liked() = %v, want [2 1]", ids(got))
	}

	if got := service.Liked(nil); len(got) != 0 {
		t.Errorf("Liked(nil) = %v, want empty", ids(got))
	}
	if service.TrackCount() != 0 {
		t.Errorf("TrackCount() after empty liked view = %d, want 0", service.TrackCount())
	}
}

func TestURLResolvesKnownTrack(t *testing.T) {
	var requests atomic.Int32
	server := newCatalogServer(t, &requests)
	service := newTestService(t, server.URL)

	service.Search("")
	before := requests.Load()

	got, err := service.URL("3")
	if err != nil {
		t.Fatalf("URL() error = %v", err)
	}

	want := server.URL + "/storage/v1/object/public/songs/u3/dew.wav"
	if got != want {
		t.Errorf("URL() = %q, want %q", got, want)
	}
	if requests.Load() != before {
		t.Error("URL() for a listed track should not hit the catalog")
	}
}

func TestURLLooksUpUnknownTrack(t *testing.T) {
	server := newCatalogServer(t, nil)
	service := newTestService(t, server.URL)

	got, err := service.URL("2")
	if err != nil {
		t.Fatalf("URL() error = %v", err)
	}
	if !strings.HasSuffix(got, "/songs/u2/night.mp3") {
		t.Errorf("URL() = %q", got)
	}

	if _, ok := service.TrackByID("2"); !ok {
		t.Error("looked up track should be remembered")
	}

	if _, err := service.URL("missing"); !errors.Is(err, ErrTrackNotFound) {
		t.Errorf("URL(missing) error = %v, want ErrTrackNotFound", err)
	}
}

func TestURLSurvivesListingChange(t *testing.T) {
	server := newCatalogServer(t, nil)
	service := newTestService(t, server.URL)

	service.Search("night")
	service.Search("dew")

	if service.FindIndexByID("2") != -1 {
		t.Error("track 2 should not be in the current listing")
	}
	if _, err := service.URL("2"); err != nil {
		t.Errorf("URL() for previously listed track error = %v", err)
	}
}

func TestFindIndexByID(t *testing.T) {
	service := &CatalogService{tracks: slices.Clone(library)}

	tests := []struct {
		id   string
		want int
	}{
		{"1", 0},
		{"3", 2},
		{"nope", -1},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := service.FindIndexByID(tt.id); got != tt.want {
				t.Errorf("FindIndexByID(%q) = %d, want %d", tt.id, got, tt.want)
			}
		})
	}
}

func TestGetValidTrackIDs(t *testing.T) {
	service := &CatalogService{tracks: slices.Clone(library)}

	valid := service.GetValidTrackIDs()
	if len(valid) != 3 || !valid["1"] || !valid["2"] || !valid["3"] {
		t.Errorf("GetValidTrackIDs() = %v", valid)
	}

	empty := &CatalogService{}
	if len(empty.GetValidTrackIDs()) != 0 {
		t.Error("GetValidTrackIDs() on empty service should be empty")
	}
}

func TestGetTrack(t *testing.T) {
	service := &CatalogService{tracks: slices.Clone(library)}

	tests := []struct {
		name   string
		index  int
		wantID string
	}{
		{"first", 0, "1"},
		{"last", 2, "3"},
		{"negative", -1, ""},
		{"out of bounds", 3, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := service.GetTrack(tt.index)
			if tt.wantID == "" {
				if got != nil {
					t.Errorf("GetTrack(%d) = %v, want nil", tt.index, got)
				}
				return
			}
			if got == nil || got.ID != tt.wantID {
				t.Errorf("GetTrack(%d) = %v, want id %s", tt.index, got, tt.wantID)
			}
		})
	}
}

func TestGetTrackReturnsCopy(t *testing.T) {
	service := &CatalogService{tracks: slices.Clone(library)}

	got := service.GetTrack(0)
	got.Title = "changed"

	if service.GetTrack(0).Title != library[0].Title {
		t.Error("GetTrack() should return a copy")
	}
}

func TestGetCachedTracks(t *testing.T) {
	service := &CatalogService{tracks: slices.Clone(library)}

	result := service.GetCachedTracks()
	result[0].Title = "changed"

	if service.GetCachedTracks()[0].Title != library[0].Title {
		t.Error("GetCachedTracks() should return a copy")
	}

	empty := &CatalogService{}
	if len(empty.GetCachedTracks()) != 0 {
		t.Error("GetCachedTracks() on empty service should be empty")
	}
}

func solidImage(size int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestLoadImage(t *testing.T) {
	img := solidImage(100, color.RGBA{R: 255, A: 255})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_ = png.Encode(w, img)
	}))
	defer server.Close()

	service := NewCatalogService(nil, nil)

	loadedImg, err := service.LoadImage(server.URL + "/test.png")
	if err != nil {
		t.Fatalf("LoadImage() error = %v", err)
	}

	bounds := loadedImg.Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 100 {
		t.Errorf("LoadImage() returned image with size %dx%d, want 100x100", bounds.Dx(), bounds.Dy())
	}
}

func TestLoadImageWithCache(t *testing.T) {
	img := solidImage(50, color.RGBA{G: 255, A: 255})

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "image/png")
		_ = png.Encode(w, img)
	}))
	defer server.Close()

	imageCache := cache.NewCacheAt(t.TempDir())
	service := NewCatalogService(nil, imageCache)
	testURL := server.URL + "/test-cache.png"

	if _, err := service.LoadImage(testURL); err != nil {
		t.Fatalf("First LoadImage() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for imageCache.GetImage(testURL) == nil && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	if _, err := service.LoadImage(testURL); err != nil {
		t.Fatalf("Cached LoadImage() error = %v", err)
	}
	if requests.Load() != 1 {
		t.Errorf("Expected 1 HTTP request, got %d", requests.Load())
	}
}

func TestLoadImageErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("not a valid image"))
	}))
	defer server.Close()

	service := NewCatalogService(nil, nil)

	if _, err := service.LoadImage(server.URL + "/test.png"); err == nil {
		t.Error("LoadImage() should return error for invalid image data")
	}

	_, err := service.LoadImage(server.URL + "/missing.png")
	var statusErr *cache.HTTPStatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("LoadImage() error = %v, want 404 status error", err)
	}
}

func TestLoadCoverWithoutImage(t *testing.T) {
	server := newCatalogServer(t, nil)
	service := newTestService(t, server.URL)

	if _, err := service.LoadCover(&library[1]); !errors.Is(err, ErrNoCover) {
		t.Errorf("LoadCover() error = %v, want ErrNoCover", err)
	}
	if _, err := service.LoadCover(nil); !errors.Is(err, ErrNoCover) {
		t.Errorf("LoadCover(nil) error = %v, want ErrNoCover", err)
	}
}

func TestPeriodicRefreshRerunsLastQuery(t *testing.T) {
	server := newCatalogServer(t, nil)
	service := newTestService(t, server.URL)

	service.Search("night")

	refreshed := make(chan []track.Track, 1)
	service.StartPeriodicRefresh(10*time.Millisecond, func(tracks []track.Track) {
		select {
		case refreshed <- tracks:
		default:
		}
	})
	defer service.StopPeriodicRefresh()

	select {
	case tracks := <-refreshed:
		if !slices.Equal(ids(tracks), []string{"2"}) {
			t.Errorf("refreshed listing = %v, want [2]", ids(tracks))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("periodic refresh did not run")
	}
}

func TestStartAndStopPeriodicRefresh(t *testing.T) {
	service := &CatalogService{}

	service.StartPeriodicRefresh(50*time.Millisecond, func([]track.Track) {})
	time.Sleep(10 * time.Millisecond)
	service.StopPeriodicRefresh()
	service.StopPeriodicRefresh()
}

func TestStopPeriodicRefreshBeforeStart(t *testing.T) {
	service := &CatalogService{}
	service.StopPeriodicRefresh()
}
