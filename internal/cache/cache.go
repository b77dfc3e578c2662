// Package cache provides disk caching for downloaded audio files and cover images.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebovdev/groove-cli/internal/config"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultExpiry is how long cached images are valid (7 days).
	DefaultExpiry = 7 * 24 * time.Hour
	// DefaultAudioExpiry is how long downloaded audio files are kept (30 days).
	DefaultAudioExpiry = 30 * 24 * time.Hour
	// ImageSubdir is the subdirectory for cached images.
	ImageSubdir = "images"
	// AudioSubdir is the subdirectory for downloaded audio files.
	AudioSubdir = "audio"
	// AppName is used for the cache directory name.
	AppName = "groove"

	downloadTimeout = 2 * time.Minute
)

// HTTPStatusError is returned when a download answers with a non-2xx status.
type HTTPStatusError struct {
	StatusCode int
	Status     string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("download returned status %d: %s", e.StatusCode, e.Status)
}

// IsNonRetryable reports whether retrying a failed download cannot help.
func IsNonRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case 401, 403, 404, 410:
			return true
		}
	}
	return false
}

// Cache manages disk-based caching of audio files and cover images.
type Cache struct {
	baseDir     string
	expiry      time.Duration
	audioExpiry time.Duration
	client      *resty.Client
}

// NewCache creates a new Cache instance with the default expiry.
func NewCache() (*Cache, error) {
	cacheDir, err := GetCacheDir()
	if err != nil {
		return nil, err
	}

	return NewCacheAt(cacheDir), nil
}

// NewCacheAt creates a Cache rooted at dir.
func NewCacheAt(dir string) *Cache {
	return &Cache{
		baseDir:     dir,
		expiry:      DefaultExpiry,
		audioExpiry: DefaultAudioExpiry,
		client:      newDownloadClient(),
	}
}

func newDownloadClient() *resty.Client {
	return resty.New().
		SetTimeout(downloadTimeout).
		SetHeader("User-Agent", fmt.Sprintf("Groove-CLI/%s", config.AppVersion))
}

// GetCacheDir returns the platform-specific cache directory for the application.
func GetCacheDir() (string, error) {
	userCacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user cache directory: %w", err)
	}

	cacheDir := filepath.Join(userCacheDir, AppName)
	return cacheDir, nil
}

func (c *Cache) ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

func hashURL(url string) string {
	hash := md5.Sum([]byte(url))
	return hex.EncodeToString(hash[:])
}

// freshFile reports whether path exists and is younger than expiry. Expired files are removed.
func freshFile(path string, expiry time.Duration) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	if time.Since(info.ModTime()) > expiry {
		if err := os.Remove(path); err != nil {
			log.Debug().Err(err).Str("file", path).Msg("Failed to remove expired cache file")
		}
		return false
	}
	return true
}

// GetImage retrieves a cached image by URL. Returns nil if not found or expired.
func (c *Cache) GetImage(url string) image.Image {
	imagePath := filepath.Join(c.baseDir, ImageSubdir, hashURL(url)+".png")

	if !freshFile(imagePath, c.expiry) {
		return nil
	}

	file, err := os.Open(imagePath)
	if err != nil {
		return nil
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		log.Debug().Err(err).Str("file", imagePath).Msg("Failed to decode cached image")
		return nil
	}

	return img
}

// SaveImage stores an image in the cache, keyed by its URL.
func (c *Cache) SaveImage(url string, img image.Image) error {
	imageDir := filepath.Join(c.baseDir, ImageSubdir)

	if err := c.ensureDir(imageDir); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	imagePath := filepath.Join(imageDir, hashURL(url)+".png")

	file, err := os.Create(imagePath)
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}

	return nil
}

// AudioPath returns where the audio file for url is (or would be) stored.
func (c *Cache) AudioPath(url, format string) string {
	ext := strings.TrimPrefix(format, ".")
	if ext == "" {
		ext = "mp3"
	}
	return filepath.Join(c.baseDir, AudioSubdir, hashURL(url)+"."+ext)
}

// FetchAudio returns a local path holding the audio file at url, downloading it
// when it is not cached yet. Partial downloads never become visible under the
// final name.
func (c *Cache) FetchAudio(ctx context.Context, url, format string) (string, error) {
	audioPath := c.AudioPath(url, format)
	if freshFile(audioPath, c.audioExpiry) {
		log.Debug().Str("url", url).Msg("Audio loaded from cache")
		return audioPath, nil
	}

	audioDir := filepath.Dir(audioPath)
	if err := c.ensureDir(audioDir); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to download audio: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if !resp.IsSuccess() {
		return "", &HTTPStatusError{StatusCode: resp.StatusCode(), Status: resp.Status()}
	}

	tmpFile, err := os.CreateTemp(audioDir, ".download-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpPath != "" {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, body)
	if err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, audioPath); err != nil {
		return "", fmt.Errorf("failed to rename audio file: %w", err)
	}

	tmpPath = ""
	log.Debug().Str("url", url).Int64("bytes", written).Msg("Audio downloaded")
	return audioPath, nil
}

// CleanExpired removes cache files older than their expiry duration.
func (c *Cache) CleanExpired() error {
	if err := c.cleanDir(filepath.Join(c.baseDir, ImageSubdir), c.expiry); err != nil {
		return err
	}
	return c.cleanDir(filepath.Join(c.baseDir, AudioSubdir), c.audioExpiry)
}

func (c *Cache) cleanDir(dir string, expiry time.Duration) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read cache directory: %w", err)
	}

	now := time.Now()
	var removed, failed int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			log.Debug().Err(err).Str("file", entry.Name()).Msg("Failed to get file info")
			continue
		}

		if now.Sub(info.ModTime()) > expiry {
			filePath := filepath.Join(dir, entry.Name())
			if err := os.Remove(filePath); err != nil {
				log.Debug().Err(err).Str("file", filePath).Msg("Failed to remove expired cache file")
				failed++
			} else {
				removed++
			}
		}
	}

	if removed > 0 || failed > 0 {
		log.Debug().Str("dir", dir).Int("removed", removed).Int("failed", failed).Msg("Cache cleanup completed")
	}

	return nil
}
