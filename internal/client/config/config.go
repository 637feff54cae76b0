package config

import (
	"fmt"
	"time"
)

// Config holds runtime settings for the EmergQR companion CLI.
//
// Units: ProbeInterval, ProbeTimeout and RequestTimeout are time.Duration.
type Config struct {
	APIBaseURL     string
	ProbeInterval  time.Duration
	ProbeTimeout   time.Duration
	RequestTimeout time.Duration
	DatabasePath   string
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8000"
	c.ProbeInterval = 3 * time.Second
	c.ProbeTimeout = 3 * time.Second
	c.RequestTimeout = 15 * time.Second
	c.DatabasePath = "emergqr.db"
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}

// Validate rejects settings the connectivity probe cannot run with.
func (c *Config) Validate() error {
	if c.ProbeInterval <= 0 {
		return fmt.Errorf("probe interval must be positive, got %s", c.ProbeInterval)
	}
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("probe timeout must be positive, got %s", c.ProbeTimeout)
	}
	return nil
}
