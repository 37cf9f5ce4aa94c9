package config

import (
	"errors"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// AppName is used for the configuration directory.
const AppName = "picotvkit"

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig  `yaml:"server"`
	Debug    DebugConfig   `yaml:"debug"`
	Browser  BrowserConfig `yaml:"browser"`
	Hunter   HunterConfig  `yaml:"hunter"`
	LogLevel string        `yaml:"log_level"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

// DebugConfig configures the periodic memory/CPU overlay.
type DebugConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// BrowserConfig configures the Chrome engine behind the web view.
type BrowserConfig struct {
	RemoteURL string `yaml:"remote_url"`
	Headful   bool   `yaml:"headful"`
	Stealth   bool   `yaml:"stealth"`
}

// HunterConfig configures playlist hunting. Zero durations use defaults.
type HunterConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Grace        time.Duration `yaml:"grace"`
	LoadTimeout  time.Duration `yaml:"load_timeout"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Bind: "0.0.0.0",
			Port: 8080,
		},
		Debug: DebugConfig{
			Enabled:  false,
			Interval: 5 * time.Second,
		},
		Browser: BrowserConfig{
			Stealth: true,
		},
		Hunter: HunterConfig{
			Enabled: true,
		},
		LogLevel: "info",
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/picotvkit/config.yaml.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// Load reads the file at path over the defaults. An empty path tries
// DefaultPath and silently falls back to defaults when it does not exist;
// a named file that does not exist yields ErrConfigNotFound.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	cfg := Default()
	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path is intentional
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if explicit {
				return nil, ErrConfigNotFound
			}
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return ErrInvalidPort
	}
	if c.Debug.Enabled && c.Debug.Interval <= 0 {
		return ErrInvalidDebugInterval
	}
	h := c.Hunter
	if h.Grace < 0 || h.LoadTimeout < 0 || h.FetchTimeout < 0 || h.CacheTTL < 0 {
		return ErrInvalidHunterTimeout
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Address returns the server listen address.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Bind, strconv.Itoa(c.Server.Port))
}

// ParseLevel maps a level name to a slog level. Empty means info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, ErrInvalidLogLevel
}
