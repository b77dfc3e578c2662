// Package service provides the business logic layer for browsing the song catalog.
package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"sync"
	"time"

	"github.com/glebovdev/groove-cli/internal/api"
	"github.com/glebovdev/groove-cli/internal/cache"
	"github.com/glebovdev/groove-cli/internal/track"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

const imageLoadTimeout = 15 * time.Second

var (
	// ErrTrackNotFound is returned when a track id is unknown to the catalog.
	ErrTrackNotFound = errors.New("track not found")
	// ErrNoCover is returned for tracks without a cover image.
	ErrNoCover = errors.New("track has no cover image")
)

// CatalogService manages the song listing shown to the user, remembers every
// track it has seen so ids can be resolved to audio URLs, and refreshes the
// listing periodically.
type CatalogService struct {
	apiClient   *api.CatalogClient
	imageClient *resty.Client
	imageCache  *cache.Cache

	mu        sync.RWMutex
	tracks    []track.Track
	known     map[string]track.Track
	lastFetch func() ([]track.Track, error)

	refreshTicker *time.Ticker
	stopRefresh   chan struct{}
	onRefresh     func([]track.Track)
}

// NewCatalogService creates a CatalogService. imageCache may be nil, in which
// case cover images are always downloaded.
func NewCatalogService(apiClient *api.CatalogClient, imageCache *cache.Cache) *CatalogService {
	return &CatalogService{
		apiClient:   apiClient,
		imageClient: resty.New().SetTimeout(imageLoadTimeout),
		imageCache:  imageCache,
		known:       make(map[string]track.Track),
	}
}

// GetSongs fetches the whole library, newest first, and makes it the current listing.
func (s *CatalogService) GetSongs() ([]track.Track, error) {
	return s.fetch(s.apiClient.GetSongs)
}

// Search returns songs whose title contains title, newest first. An empty
// title lists the whole library. Fetch errors are logged and yield an empty
// listing.
func (s *CatalogService) Search(title string) []track.Track {
	tracks, err := s.fetch(func() ([]track.Track, error) {
		return s.apiClient.GetSongsByTitle(title)
	})
	if err != nil {
		log.Error().Err(err).Str("title", title).Msg("Failed to search songs")
		return []track.Track{}
	}
	return tracks
}

// Liked returns the given liked songs, newest first. Fetch errors are logged
// and yield an empty listing.
func (s *CatalogService) Liked(ids []string) []track.Track {
	ids = lo.Uniq(ids)
	if len(ids) == 0 {
		s.replace([]track.Track{}, func() ([]track.Track, error) { return []track.Track{}, nil })
		return []track.Track{}
	}

	tracks, err := s.fetch(func() ([]track.Track, error) {
		return s.apiClient.GetSongsByIDs(ids)
	})
	if err != nil {
		log.Error().Err(err).Int("count", len(ids)).Msg("Failed to fetch liked songs")
		return []track.Track{}
	}
	return tracks
}

func (s *CatalogService) fetch(fn func() ([]track.Track, error)) ([]track.Track, error) {
	if s.apiClient == nil {
		return nil, errors.New("catalog is not configured")
	}

	tracks, err := fn()
	if err != nil {
		return nil, err
	}

	track.SortNewestFirst(tracks)
	s.replace(tracks, fn)

	return tracks, nil
}

func (s *CatalogService) replace(tracks []track.Track, fetch func() ([]track.Track, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tracks = tracks
	s.lastFetch = fetch
	s.remember(tracks)
}

func (s *CatalogService) remember(tracks []track.Track) {
	if s.known == nil {
		s.known = make(map[string]track.Track)
	}
	for _, t := range tracks {
		s.known[t.ID] = t
	}
}

// GetCachedTracks returns a copy of the current listing.
func (s *CatalogService) GetCachedTracks() []track.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]track.Track, len(s.tracks))
	copy(result, s.tracks)
	return result
}

// TrackIDs returns the ids of the current listing in display order.
func (s *CatalogService) TrackIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return track.IDs(s.tracks)
}

// GetValidTrackIDs returns the ids of the current listing as a set.
func (s *CatalogService) GetValidTrackIDs() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return lo.SliceToMap(s.tracks, func(t track.Track) (string, bool) {
		return t.ID, true
	})
}

func (s *CatalogService) FindIndexByID(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, index, found := lo.FindIndexOf(s.tracks, func(t track.Track) bool {
		return t.ID == id
	})
	if !found {
		return -1
	}
	return index
}

func (s *CatalogService) TrackCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tracks)
}

// GetTrack returns a copy of the track at the given index of the current
// listing, or nil if the index is out of bounds.
func (s *CatalogService) GetTrack(index int) *track.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index < 0 || index >= len(s.tracks) {
		return nil
	}
	t := s.tracks[index]
	return &t
}

// TrackByID returns any track seen so far, even if it is not in the current listing.
func (s *CatalogService) TrackByID(id string) (track.Track, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.known[id]
	return t, ok
}

// URL resolves a track id to the public URL of its audio file. Tracks not
// seen in any listing are looked up in the catalog.
func (s *CatalogService) URL(id string) (string, error) {
	if s.apiClient == nil {
		return "", fmt.Errorf("%w: %s", ErrTrackNotFound, id)
	}

	t, ok := s.TrackByID(id)
	if !ok {
		tracks, err := s.apiClient.GetSongsByIDs([]string{id})
		if err != nil {
			return "", fmt.Errorf("failed to look up track %s: %w", id, err)
		}
		if len(tracks) == 0 {
			return "", fmt.Errorf("%w: %s", ErrTrackNotFound, id)
		}

		s.mu.Lock()
		s.remember(tracks)
		s.mu.Unlock()
		t = tracks[0]
	}

	if t.SongPath == "" {
		return "", fmt.Errorf("track %s has no audio file", id)
	}
	return s.apiClient.SongURL(&t), nil
}

// LoadCover returns the cover image of t.
func (s *CatalogService) LoadCover(t *track.Track) (image.Image, error) {
	if t == nil || t.ImagePath == "" || s.apiClient == nil {
		return nil, ErrNoCover
	}
	return s.LoadImage(s.apiClient.ImageURL(t))
}

func (s *CatalogService) LoadImage(url string) (image.Image, error) {
	if s.imageCache != nil {
		if img := s.imageCache.GetImage(url); img != nil {
			log.Debug().Str("url", url).Msg("Image loaded from cache")
			return img, nil
		}
	}

	client := s.imageClient
	if client == nil {
		client = resty.New().SetTimeout(imageLoadTimeout)
	}

	ctx, cancel := context.WithTimeout(context.Background(), imageLoadTimeout)
	defer cancel()

	resp, err := client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return nil, err
	}
	body := resp.RawBody()
	defer body.Close()

	if !resp.IsSuccess() {
		return nil, &cache.HTTPStatusError{StatusCode: resp.StatusCode(), Status: resp.Status()}
	}

	img, _, err := image.Decode(body)
	if err != nil {
		return nil, err
	}

	if s.imageCache != nil {
		go func() {
			if err := s.imageCache.SaveImage(url, img); err != nil {
				log.Debug().Err(err).Str("url", url).Msg("Failed to cache image")
			} else {
				log.Debug().Str("url", url).Msg("Image cached")
			}
		}()
	}

	return img, nil
}

// StartPeriodicRefresh re-runs the query behind the current listing every
// interval and hands the fresh listing to callback.
func (s *CatalogService) StartPeriodicRefresh(interval time.Duration, callback func([]track.Track)) {
	s.StopPeriodicRefresh()

	s.mu.Lock()
	s.onRefresh = callback
	s.stopRefresh = make(chan struct{})
	s.refreshTicker = time.NewTicker(interval)
	ticker := s.refreshTicker
	stopCh := s.stopRefresh
	s.mu.Unlock()

	go func() {
		for {
			select {
			case <-ticker.C:
				s.refreshInBackground()
			case <-stopCh:
				ticker.Stop()
				return
			}
		}
	}()

	log.Debug().Dur("interval", interval).Msg("Started periodic catalog refresh")
}

func (s *CatalogService) StopPeriodicRefresh() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopRefresh != nil {
		close(s.stopRefresh)
		s.stopRefresh = nil
	}
	log.Debug().Msg("Stopped periodic catalog refresh")
}

func (s *CatalogService) refreshInBackground() {
	s.mu.RLock()
	fetch := s.lastFetch
	s.mu.RUnlock()

	if fetch == nil {
		return
	}

	tracks, err := fetch()
	if err != nil {
		log.Warn().Err(err).Msg("Background refresh failed, keeping cached data")
		return
	}

	track.SortNewestFirst(tracks)

	s.mu.Lock()
	s.tracks = tracks
	s.remember(tracks)
	callback := s.onRefresh
	s.mu.Unlock()

	if callback != nil {
		callback(tracks)
	}

	log.Debug().Int("count", len(tracks)).Msg("Catalog refreshed in background")
}
