// Package config loads server configuration from an optional YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds everything the server binary needs. Command-line flags
// override individual fields after loading.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string `yaml:"addr"`

	// Database is the SQLite database path. ":memory:" keeps state for
	// the process lifetime only.
	Database string `yaml:"database"`

	CORS CORSConfig `yaml:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Addr:     ":8080",
		Database: "portal.db",
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
	}
}

// Load reads a YAML config file over the defaults. Missing fields keep
// their default values; a missing or unreadable file is an error (a
// misnamed config path should fail loudly, not silently run defaults).
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
