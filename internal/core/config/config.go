// Package config handles configuration loading and validation for bookreview.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultBaseURL is the hosted book review service.
const DefaultBaseURL = "https://railway.bookreview.techtrain.dev"

// Supported TUI themes.
const (
	ThemeTokyoNight = "tokyo-night"
	ThemeGruvbox    = "gruvbox"
)

// Config holds the application configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Pager   PagerConfig   `yaml:"pager"`
	Session SessionConfig `yaml:"session"`
	TUI     TUIConfig     `yaml:"tui"`
	Demo    DemoConfig    `yaml:"demo"`
	DataDir string        `yaml:"-"` // set by caller, not from config file
}

// APIConfig describes the remote review service.
type APIConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	Endpoints Endpoints     `yaml:"endpoints"`
}

// Endpoints holds the paths of the remote operations, relative to BaseURL.
// Deployments of the service disagree on the sign-in path, so every path is
// configurable.
type Endpoints struct {
	SignIn   string `yaml:"signin"`
	Register string `yaml:"register"`
	Books    string `yaml:"books"`
	Logout   string `yaml:"logout"` // empty = logout is local only
}

// PagerConfig controls review paging.
type PagerConfig struct {
	PageSize int `yaml:"page_size"`
}

// SessionConfig controls token persistence.
type SessionConfig struct {
	StorageKey string `yaml:"storage_key"`
}

// TUIConfig controls the terminal UI.
type TUIConfig struct {
	Theme         string `yaml:"theme"`
	MarkdownStyle string `yaml:"markdown_style"`
}

// DemoConfig controls the bundled demo server.
type DemoConfig struct {
	Addr     string `yaml:"addr"`
	Seed     int    `yaml:"seed"`
	PageSize int    `yaml:"page_size"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL: DefaultBaseURL,
			Timeout: 10 * time.Second,
			Endpoints: Endpoints{
				SignIn:   "/signin",
				Register: "/users",
				Books:    "/books",
			},
		},
		Pager: PagerConfig{
			PageSize: 10,
		},
		Session: SessionConfig{
			StorageKey: "auth_token",
		},
		TUI: TUIConfig{
			Theme:         ThemeTokyoNight,
			MarkdownStyle: "dark",
		},
		Demo: DemoConfig{
			Addr:     "127.0.0.1:8080",
			Seed:     25,
			PageSize: 10,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.API.BaseURL == "" {
		c.API.BaseURL = defaults.API.BaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = defaults.API.Timeout
	}
	if c.API.Endpoints.SignIn == "" {
		c.API.Endpoints.SignIn = defaults.API.Endpoints.SignIn
	}
	if c.API.Endpoints.Register == "" {
		c.API.Endpoints.Register = defaults.API.Endpoints.Register
	}
	if c.API.Endpoints.Books == "" {
		c.API.Endpoints.Books = defaults.API.Endpoints.Books
	}
	if c.Pager.PageSize == 0 {
		c.Pager.PageSize = defaults.Pager.PageSize
	}
	if c.Session.StorageKey == "" {
		c.Session.StorageKey = defaults.Session.StorageKey
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
	if c.TUI.MarkdownStyle == "" {
		c.TUI.MarkdownStyle = defaults.TUI.MarkdownStyle
	}
	if c.Demo.Addr == "" {
		c.Demo.Addr = defaults.Demo.Addr
	}
	if c.Demo.PageSize == 0 {
		c.Demo.PageSize = defaults.Demo.PageSize
	}
}

// DatabaseDir returns the directory holding the SQLite database.
func (c *Config) DatabaseDir() string {
	return c.DataDir
}

// LogFile returns the default log file path.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "bookreview.log")
}
