// Package api provides the HTTP client for the song catalog REST API.
package api

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/glebovdev/groove-cli/internal/config"
	"github.com/glebovdev/groove-cli/internal/track"
	"github.com/go-resty/resty/v2"
)

const (
	requestTimeout = 30 * time.Second
	restPrefix     = "/rest/v1/"
	storagePrefix  = "/storage/v1/object/public/"
	newestFirst    = "created_at.desc"
)

// CatalogClient talks to a PostgREST-style catalog: one table of songs plus
// public storage buckets for audio files and cover images.
type CatalogClient struct {
	client       *resty.Client
	baseURL      string
	table        string
	songsBucket  string
	imagesBucket string
}

// NewCatalogClient creates a catalog client for the configured project.
func NewCatalogClient(cfg config.Catalog) *CatalogClient {
	baseURL := strings.TrimRight(cfg.URL, "/")

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(requestTimeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", fmt.Sprintf("Groove-CLI/%s", config.AppVersion))

	if cfg.APIKey != "" {
		client.SetHeader("apikey", cfg.APIKey).
			SetAuthToken(cfg.APIKey)
	}

	return &CatalogClient{
		client:       client,
		baseURL:      baseURL,
		table:        cfg.Table,
		songsBucket:  cfg.SongsBucket,
		imagesBucket: cfg.ImagesBucket,
	}
}

// GetSongs fetches the whole library, newest first.
func (c *CatalogClient) GetSongs() ([]track.Track, error) {
	return c.querySongs(map[string]string{
		"select": "*",
		"order":  newestFirst,
	})
}

// GetSongsByTitle fetches songs whose title contains title (case-insensitive), newest first.
// An empty title returns the whole library.
func (c *CatalogClient) GetSongsByTitle(title string) ([]track.Track, error) {
	if title == "" {
		return c.GetSongs()
	}

	return c.querySongs(map[string]string{
		"select": "*",
		"title":  "ilike." + likePattern(title),
		"order":  newestFirst,
	})
}

// GetSongsByIDs fetches the given songs, newest first.
func (c *CatalogClient) GetSongsByIDs(ids []string) ([]track.Track, error) {
	if len(ids) == 0 {
		return []track.Track{}, nil
	}

	return c.querySongs(map[string]string{
		"select": "*",
		"id":     inList(ids),
		"order":  newestFirst,
	})
}

func (c *CatalogClient) querySongs(params map[string]string) ([]track.Track, error) {
	resp, err := c.client.R().
		SetQueryParams(params).
		Get(restPrefix + c.table)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch songs: %w", err)
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("api returned status %d: %s", resp.StatusCode(), resp.Status())
	}

	var songs []track.Track
	if err := json.Unmarshal(resp.Body(), &songs); err != nil {
		return nil, fmt.Errorf("failed to parse songs response: %w", err)
	}
	if songs == nil {
		songs = []track.Track{}
	}

	return songs, nil
}

// SongURL resolves the public URL of a track's audio file.
func (c *CatalogClient) SongURL(t *track.Track) string {
	return c.publicURL(c.songsBucket, t.SongPath)
}

// ImageURL resolves the public URL of a track's cover image, or "" if it has none.
func (c *CatalogClient) ImageURL(t *track.Track) string {
	if t.ImagePath == "" {
		return ""
	}
	return c.publicURL(c.imagesBucket, t.ImagePath)
}

func (c *CatalogClient) publicURL(bucket, objectPath string) string {
	segments := strings.Split(strings.TrimLeft(objectPath, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return c.baseURL + storagePrefix + bucket + "/" + strings.Join(segments, "/")
}

// inList builds a PostgREST in.(...) filter. Each value is double-quoted so
// reserved characters such as ',' and ')' stay part of the id.
func inList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		v = strings.ReplaceAll(v, `\`, `\\`)
		v = strings.ReplaceAll(v, `"`, `\"`)
		quoted[i] = `"` + v + `"`
	}
	return "in.(" + strings.Join(quoted, ",") + ")"
}

// likePattern wraps term in PostgREST wildcards. Filter syntax characters are stripped.
func likePattern(term string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '*', '%', ',', '(', ')':
			return -1
		}
		return r
	}, term)
	return "*" + cleaned + "*"
}
