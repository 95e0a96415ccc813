// Package config loads runtime settings for the Cidade em Foco CLI.
//
// Sources are applied in order, later ones overriding earlier ones:
// built-in defaults, a JSON file (given via -c/-config), command-line flags.
// The JSON loader uses timex.Duration, so durations can be given either as
// strings like "30s" or as integer nanoseconds.
package config

import (
	"time"

	"github.com/dmitrijs2005/cidadefoco/internal/client/api"
)

// Config holds runtime settings for the CLI.
type Config struct {
	// BaseURL is the backend API endpoint, including the /api prefix.
	BaseURL string

	// RequestTimeout bounds every single HTTP request.
	RequestTimeout time.Duration

	// RetryCount and RetryDelay configure the pipeline's retry helper:
	// RetryCount extra attempts after the first, starting at RetryDelay and
	// doubling.
	RetryCount int
	RetryDelay time.Duration

	// DatabasePath is the local credential store file.
	DatabasePath string
}

// LoadDefaults populates c with the deployment defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = api.DefaultBaseURL
	c.RequestTimeout = api.DefaultTimeout
	c.RetryCount = api.DefaultRetryCount
	c.RetryDelay = api.DefaultRetryDelay
	c.DatabasePath = "cidadefoco.db"
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
