package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

const appName = "mixfeed"

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Feed     FeedConfig     `toml:"feed"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Export   ExportConfig   `toml:"export"`
	Player   PlayerConfig   `toml:"player"`
}

// FeedConfig contains the upstream feed endpoint settings.
type FeedConfig struct {
	BaseURL         string `toml:"base_url"`
	Endpoint        string `toml:"endpoint"`
	SessionCookie   string `toml:"session_cookie"`
	UserAgent       string `toml:"user_agent"`
	ScrollThreshold int    `toml:"scroll_threshold"` // pixels from the bottom that trigger a load in the browser
	RootMargin      string `toml:"root_margin"`
}

// DatabaseConfig contains track cache settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains preview server settings.
type ServerConfig struct {
	Host      string `toml:"host"`
	Port      int    `toml:"port"`
	StaticDir string `toml:"static_dir"`
}

// ExportConfig contains feed export defaults.
type ExportConfig struct {
	Format    string  `toml:"format"`
	OutputDir string  `toml:"output_dir"`
	RateLimit float64 `toml:"rate_limit"` // pages per second
}

// PlayerConfig contains terminal audio settings.
type PlayerConfig struct {
	BufferMS int `toml:"buffer_ms"`
}

// Addr returns the host:port the preview server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep their defaults from the embedded example config.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// Validate checks the settings the feed client cannot work without.
func (c *Config) Validate() error {
	c.Feed.BaseURL = strings.TrimSuffix(strings.TrimSpace(c.Feed.BaseURL), "/")
	if c.Feed.BaseURL == "" {
		return fmt.Errorf("%w: feed.base_url is required", ErrInvalidConfig)
	}
	if !strings.HasPrefix(c.Feed.Endpoint, "/") {
		return fmt.Errorf("%w: feed.endpoint must start with '/'", ErrInvalidConfig)
	}
	if c.Feed.ScrollThreshold < 0 {
		return fmt.Errorf("%w: feed.scroll_threshold must not be negative", ErrInvalidConfig)
	}
	if c.Export.RateLimit < 0 {
		return fmt.Errorf("%w: export.rate_limit must not be negative", ErrInvalidConfig)
	}
	return nil
}

// ResolveConfig loads the first config file found, trying explicit first, then the XDG config
// directory, then ./config.toml. It returns the defaults when no file exists.
func ResolveConfig(explicit string) (*Config, string, error) {
	for _, path := range ConfigPaths(explicit) {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		config, err := LoadConfig(path)
		if err != nil {
			return nil, path, err
		}
		return config, path, nil
	}
	return DefaultConfig(), "", nil
}

// ConfigPaths returns candidate config file locations in priority order.
func ConfigPaths(explicit string) []string {
	var paths []string
	if explicit != "" {
		paths = append(paths, explicit)
	}
	paths = append(paths, filepath.Join(xdg.ConfigHome, appName, "config.toml"))
	paths = append(paths, "config.toml")
	return paths
}

// DefaultDatabasePath returns the XDG data location for the track cache.
func DefaultDatabasePath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, "cache.db"))
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SetSessionCookie rewrites the session_cookie value in the config file at path.
//
// The file is re-encoded from the parsed config, so comments are not preserved.
func SetSessionCookie(path, cookie string) error {
	config := DefaultConfig()
	if data, err := os.ReadFile(path); err == nil {
		if err := toml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
		}
	}

	config.Feed.SessionCookie = cookie

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
