// Package config loads client configuration from an optional YAML
// file with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds everything the CLI needs to build a client.
type Config struct {
	// BaseURL is the pharmacy API endpoint.
	BaseURL string `yaml:"base_url"`

	// Store selects the token store backend: "file" or "redis".
	Store string `yaml:"store"`

	// TokenPath is the credential file used by the file store.
	TokenPath string `yaml:"token_path"`

	// RedisURL is used by the redis token store and, when set, for
	// fanning session events out to peer terminals.
	RedisURL string `yaml:"redis_url"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BaseURL:   "http://localhost:8001",
		Store:     "file",
		TokenPath: filepath.Join(configDir(), "token"),
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

func configDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "galenus")
}

// Load reads the YAML file at path (DefaultPath when empty), then
// applies environment overrides. A missing file is not an error: the
// defaults plus environment are a complete configuration.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if v := os.Getenv("GALENUS_API_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("GALENUS_STORE"); v != "" {
		cfg.Store = v
	}
	if v := os.Getenv("GALENUS_TOKEN_PATH"); v != "" {
		cfg.TokenPath = v
	}
	if v := os.Getenv("GALENUS_REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}

	if cfg.Store != "file" && cfg.Store != "redis" {
		return Config{}, fmt.Errorf("unknown store backend %q", cfg.Store)
	}
	if cfg.Store == "redis" && cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("store backend %q requires redis_url", cfg.Store)
	}
	return cfg, nil
}
