package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/studiowebux/postboard/internal/api"
	"github.com/studiowebux/postboard/internal/types"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755

	// HomeEnv overrides the configuration directory
	HomeEnv = "POSTBOARD_HOME"
)

// Environment variables that override the config file
const (
	EnvBaseURL  = "POSTBOARD_BASE_URL"
	EnvTimeout  = "POSTBOARD_TIMEOUT"
	EnvLogLevel = "POSTBOARD_LOG_LEVEL"
	EnvHistory  = "POSTBOARD_HISTORY"
)

// configFileNames are searched in order inside the config directory
var configFileNames = []string{"config.yaml", "config.yml", "config.jsonc", "config.json"}

var (
	// ConfigDir is the global configuration directory (~/.postboard)
	ConfigDir string

	// DatabasePath is the SQLite database file for the API call journal
	DatabasePath string

	// LogFile is where the TUI writes its log
	LogFile string

	// KeybindsFile holds user keybinding overrides
	KeybindsFile string
)

// Config is the user configuration
type Config struct {
	BaseURL  string           `json:"baseUrl" yaml:"baseUrl"`
	Timeout  string           `json:"timeout,omitempty" yaml:"timeout,omitempty"` // Go duration; "0" disables
	LogLevel string           `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`
	History  *bool            `json:"history,omitempty" yaml:"history,omitempty"`
	TLS      *types.TLSConfig `json:"tls,omitempty" yaml:"tls,omitempty"`
}

// Default returns the configuration used when nothing is configured
func Default() *Config {
	return &Config{
		BaseURL:  api.DefaultBaseURL,
		Timeout:  api.DefaultTimeout.String(),
		LogLevel: "info",
	}
}

// RequestTimeout parses Timeout. Empty means the client default.
func (c *Config) RequestTimeout() (time.Duration, error) {
	if c.Timeout == "" {
		return api.DefaultTimeout, nil
	}
	if c.Timeout == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid timeout %q: must not be negative", c.Timeout)
	}
	return d, nil
}

// HistoryEnabled reports whether API calls are journaled (default: true)
func (c *Config) HistoryEnabled() bool {
	return c.History == nil || *c.History
}

// Validate checks the values that would otherwise fail late
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("baseUrl %q must start with http:// or https://", c.BaseURL)
	}
	if _, err := c.RequestTimeout(); err != nil {
		return err
	}
	return nil
}

// Initialize sets up the configuration directory and paths
// It creates ~/.postboard/ if it doesn't exist
func Initialize() error {
	dir := os.Getenv(HomeEnv)
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".postboard")
	}

	ConfigDir = dir
	DatabasePath = filepath.Join(ConfigDir, "postboard.db")
	LogFile = filepath.Join(ConfigDir, "postboard.log")
	KeybindsFile = filepath.Join(ConfigDir, "keybinds.jsonc")

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}

	return nil
}

// FindConfigFile returns the first config file present in the config directory
func FindConfigFile() (string, bool) {
	for _, name := range configFileNames {
		path := filepath.Join(ConfigDir, name)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// LoadDotEnv loads a .env file into the process environment.
// Variables already set are not overridden. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Overrides holds command line values layered over the file and environment.
// Empty strings and a false NoHistory leave the loaded value alone.
type Overrides struct {
	BaseURL   string
	Timeout   string
	LogLevel  string
	NoHistory bool
}

// ApplyOverrides layers o over c and validates the result
func (c *Config) ApplyOverrides(o Overrides) error {
	if o.BaseURL != "" {
		c.BaseURL = o.BaseURL
	}
	if o.Timeout != "" {
		c.Timeout = o.Timeout
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.NoHistory {
		disabled := false
		c.History = &disabled
	}

	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Load reads the config file at path (or the default location when path is
// empty), then applies environment overrides. The result is not validated:
// callers apply their overrides and validate once through ApplyOverrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path, _ = FindConfigFile()
	}
	if path != "" {
		if err := readFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	return cfg, nil
}

// readFile decodes a YAML, JSON or JSONC config file over cfg
func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), cfg); err != nil {
			return fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config file format: %s (use .yaml, .yml, .json, or .jsonc)", ext)
	}

	return nil
}

// applyEnv overrides cfg with POSTBOARD_* variables
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvBaseURL); ok && v != "" {
		cfg.BaseURL = v
	}
	if v, ok := lookup(EnvTimeout); ok && v != "" {
		cfg.Timeout = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := lookup(EnvHistory); ok && v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", EnvHistory, v, err)
		}
		cfg.History = &enabled
	}
	return nil
}
