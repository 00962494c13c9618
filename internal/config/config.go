// Package config loads the service's JSON configuration file. Fields omitted
// from the file fall back to defaults via the Get* accessors, so partial
// configs are safe.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/roughness.report/internal/units"
)

// Config holds the tunable service parameters. Pointer fields distinguish
// "not set" from an explicit zero.
type Config struct {
	// HTTP surface
	ListenAddr *string `json:"listen_addr,omitempty"`
	Units      *string `json:"units,omitempty"`

	// Storage
	DBPath *string `json:"db_path,omitempty"`

	// Scoring oracle
	OracleURL     *string `json:"oracle_url,omitempty"`
	OracleTimeout *string `json:"oracle_timeout,omitempty"` // duration string like "10s"
	ScoreWorkers  *int    `json:"score_workers,omitempty"`
}

// Empty returns a Config with all fields unset.
func Empty() *Config {
	return &Config{}
}

// Load reads a Config from a JSON file. The file must have a .json extension
// and stay under the max file size.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *Config) Validate() error {
	if c.Units != nil && !units.IsValid(*c.Units) {
		return fmt.Errorf("invalid units %q, valid: %s", *c.Units, units.GetValidUnitsString())
	}

	if c.OracleTimeout != nil && *c.OracleTimeout != "" {
		if _, err := time.ParseDuration(*c.OracleTimeout); err != nil {
			return fmt.Errorf("invalid oracle_timeout '%s': %w", *c.OracleTimeout, err)
		}
	}

	if c.ScoreWorkers != nil && *c.ScoreWorkers < 1 {
		return fmt.Errorf("score_workers must be positive, got %d", *c.ScoreWorkers)
	}

	return nil
}

// GetListenAddr returns the listen address or the default.
func (c *Config) GetListenAddr() string {
	if c.ListenAddr == nil || *c.ListenAddr == "" {
		return ":8080"
	}
	return *c.ListenAddr
}

// GetUnits returns the output speed units or the default.
func (c *Config) GetUnits() string {
	if c.Units == nil || *c.Units == "" {
		return units.MPH
	}
	return *c.Units
}

// GetDBPath returns the sqlite database path or the default.
func (c *Config) GetDBPath() string {
	if c.DBPath == nil || *c.DBPath == "" {
		return "trips.db"
	}
	return *c.DBPath
}

// GetOracleURL returns the scoring service base URL or the default.
func (c *Config) GetOracleURL() string {
	if c.OracleURL == nil || *c.OracleURL == "" {
		return "http://localhost:8000"
	}
	return *c.OracleURL
}

// GetOracleTimeout parses and returns the oracle call timeout.
func (c *Config) GetOracleTimeout() time.Duration {
	if c.OracleTimeout == nil || *c.OracleTimeout == "" {
		return 10 * time.Second // default
	}
	d, err := time.ParseDuration(*c.OracleTimeout)
	if err != nil {
		return 10 * time.Second // default on parse error
	}
	return d
}

// GetScoreWorkers returns the oracle worker-pool size or the default.
func (c *Config) GetScoreWorkers() int {
	if c.ScoreWorkers == nil {
		return 4
	}
	return *c.ScoreWorkers
}
