// Package track defines the data structures for catalog songs.
package track

import (
	"path"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
)

// Track represents a song record as stored in the remote catalog table.
type Track struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	SongPath  string    `json:"song_path"`  // Object path inside the songs bucket
	ImagePath string    `json:"image_path"` // Object path inside the images bucket
	CreatedAt time.Time `json:"created_at"`
}

// DisplayName returns "Author - Title", or just the title when the author is unknown.
func (t *Track) DisplayName() string {
	if t.Author != "" && t.Title != "" {
		return t.Author + " - " + t.Title
	}
	if t.Title != "" {
		return t.Title
	}
	return t.ID
}

// Format returns the lowercase audio container guessed from the song path ("mp3", "wav").
// Paths without an extension are assumed to be MP3, which is what the catalog uploads.
func (t *Track) Format() string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(t.SongPath)), ".")
	if ext == "" {
		return "mp3"
	}
	return ext
}

// SortNewestFirst orders tracks by creation time, newest first. Equal timestamps keep their order.
func SortNewestFirst(tracks []Track) {
	sort.SliceStable(tracks, func(i, j int) bool {
		return tracks[i].CreatedAt.After(tracks[j].CreatedAt)
	})
}

// IDs returns the identifiers of tracks in order.
func IDs(tracks []Track) []string {
	return lo.Map(tracks, func(t Track, _ int) string {
		return t.ID
	})
}
