// Package config loads runtime configuration for the notekeeper terminal
// client.
//
// Sources, later wins:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file named by -c or -config.
//  3. Command-line flags.
//
// Supported flags
//
//	-s string   base URL of the REST API, including the /api prefix
//	-f string   path of the local session database
//	-t int      request timeout (seconds)
//
// JSON keys are server_url, session_file and request_timeout; the timeout
// accepts "30s" or integer nanoseconds.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the notekeeper client.
type Config struct {
	ServerURL      string
	SessionFile    string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with defaults matching a locally running server.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:5000/api"
	c.SessionFile = defaultSessionFile()
	c.RequestTimeout = 30 * time.Second
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "notekeeper.db"
	}
	return filepath.Join(dir, "notekeeper", "session.db")
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present).
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
