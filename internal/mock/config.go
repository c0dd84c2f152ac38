package mock

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads a fake API configuration (initial posts, port, delay) from a file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s (use .yaml, .yml, or .json)", ext)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// validateConfig validates the fake API configuration
func validateConfig(config *Config) error {
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d out of range", config.Port)
	}
	if config.Seed < 0 {
		return fmt.Errorf("seed must not be negative")
	}
	if config.Delay < 0 {
		return fmt.Errorf("delay must not be negative")
	}

	seen := make(map[int]bool, len(config.Posts))
	for i, p := range config.Posts {
		if p.ID <= 0 {
			return fmt.Errorf("post %d: id must be positive", i)
		}
		if seen[p.ID] {
			return fmt.Errorf("post %d: duplicate id %d", i, p.ID)
		}
		seen[p.ID] = true
	}

	return nil
}
