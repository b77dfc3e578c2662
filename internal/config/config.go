package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

const (
	AppName           = "Groove CLI"
	AppTagline        = "Terminal music player"
	AppDescription    = "A terminal-based music player for a self-hosted song catalog"
	AppAuthor         = "Ilya Glebov"
	AppAuthorURL      = "https://ilyaglebov.dev"
	AppAuthorURLShort = "ilyaglebov.dev"
	AppProjectURL     = "https://github.com/glebovdev/groove-cli"
	AppProjectShort   = "github.com/glebovdev/groove-cli"

	ConfigDir      = ".config/groove"
	ConfigFileName = "config.yml"
	DefaultVolume  = 1.0
	MinVolume      = 0.0
	MaxVolume      = 1.0

	DefaultSongsTable   = "songs"
	DefaultSongsBucket  = "songs"
	DefaultImagesBucket = "images"
)

// ClampVolume ensures volume is within the valid range [0, 1].
func ClampVolume(volume float64) float64 {
	if volume < MinVolume {
		return MinVolume
	}
	if volume > MaxVolume {
		return MaxVolume
	}
	return volume
}

// AppVersion can be overridden at build time using ldflags:
// go build -ldflags "-X github.com/glebovdev/groove-cli/internal/config.AppVersion=1.0.0"
var AppVersion = "dev"

type Theme struct {
	Background                string `yaml:"background"`
	Foreground                string `yaml:"foreground"`
	Borders                   string `yaml:"borders"`
	Highlight                 string `yaml:"highlight"`
	MutedVolume               string `yaml:"muted_volume"`
	HeaderBackground          string `yaml:"header_background"`
	TrackListHeaderBackground string `yaml:"track_list_header_background"`
	TrackListHeaderForeground string `yaml:"track_list_header_foreground"`
	HelpBackground            string `yaml:"help_background"`
	HelpForeground            string `yaml:"help_foreground"`
	HelpHotkey                string `yaml:"help_hotkey"`
	ProgressBackground        string `yaml:"progress_background"`
	ModalBackground           string `yaml:"modal_background"`
}

// Catalog describes where the song table and storage buckets live.
type Catalog struct {
	URL          string `yaml:"url"`
	APIKey       string `yaml:"api_key"`
	Table        string `yaml:"table"`
	SongsBucket  string `yaml:"songs_bucket"`
	ImagesBucket string `yaml:"images_bucket"`
}

func (c Catalog) IsConfigured() bool {
	return c.URL != ""
}

type Config struct {
	Volume    float64  `yaml:"volume"`
	LastTrack string   `yaml:"last_track"`
	Loop      bool     `yaml:"loop"`
	Shuffle   bool     `yaml:"shuffle"`
	Liked     []string `yaml:"liked"`
	Catalog   Catalog  `yaml:"catalog"`
	Theme     Theme    `yaml:"theme"`
}

func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	configPath := filepath.Join(home, ConfigDir, ConfigFileName)
	return configPath, nil
}

func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Volume = ClampVolume(cfg.Volume)
	cfg.Catalog.applyDefaults()

	return cfg, nil
}

func (c *Catalog) applyDefaults() {
	if c.Table == "" {
		c.Table = DefaultSongsTable
	}
	if c.SongsBucket == "" {
		c.SongsBucket = DefaultSongsBucket
	}
	if c.ImagesBucket == "" {
		c.ImagesBucket = DefaultImagesBucket
	}
}

// Save writes the configuration to disk atomically using temp file + rename.
func (c *Config) Save() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmpFile, err := os.CreateTemp(configDir, ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpPath != "" {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, configPath); err != nil {
		return fmt.Errorf("failed to rename config file: %w", err)
	}

	tmpPath = "" // Prevent defer from removing the final file
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Volume:    DefaultVolume,
		LastTrack: "",
		Loop:      false,
		Shuffle:   false,
		Liked:     []string{},
		Catalog: Catalog{
			Table:        DefaultSongsTable,
			SongsBucket:  DefaultSongsBucket,
			ImagesBucket: DefaultImagesBucket,
		},
		Theme: Theme{
			Background:                "#1a1b25",
			Foreground:                "#a3aacb",
			Borders:                   "#40445b",
			Highlight:                 "#22c55e",
			MutedVolume:               "#fe0702",
			HeaderBackground:          "#1f3a2b",
			TrackListHeaderBackground: "#3a3d4f",
			TrackListHeaderForeground: "#c8d0e8",
			HelpBackground:            "#322f45",
			HelpForeground:            "#9aa3c6",
			HelpHotkey:                "#22c55e",
			ProgressBackground:        "#40445b",
			ModalBackground:           "#282a36",
		},
	}
}

func (c *Config) IsLiked(trackID string) bool {
	return lo.Contains(c.Liked, trackID)
}

// ToggleLiked flips the liked flag for a track and reports the new value.
func (c *Config) ToggleLiked(trackID string) bool {
	if c.IsLiked(trackID) {
		c.Liked = lo.Without(c.Liked, trackID)
		return false
	}
	c.Liked = append(c.Liked, trackID)
	return true
}

// CleanupLiked drops liked ids that are no longer in the catalog.
func (c *Config) CleanupLiked(validTrackIDs map[string]bool) {
	c.Liked = lo.Filter(c.Liked, func(id string, _ int) bool {
		return validTrackIDs[id]
	})
}

func GetColor(colorStr string) tcell.Color {
	if colorStr == "" || colorStr == "default" {
		return tcell.ColorDefault
	}
	return tcell.GetColor(colorStr)
}
