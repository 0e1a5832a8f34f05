// Package config holds the sliding-window policy for download submissions.
package config

import "time"

const (
	DefaultMaxRequests = 5
	DefaultWindow      = 10 * time.Minute
)

// Config is the per-identity submission cap over a trailing window.
type Config struct {
	MaxRequests int
	Window      time.Duration
}

// DefaultConfig returns the production policy: 5 accepted submissions per
// identity in any trailing 10 minutes.
func DefaultConfig() *Config {
	return &Config{
		MaxRequests: DefaultMaxRequests,
		Window:      DefaultWindow,
	}
}

// WithDefaults fills unset or non-positive values from DefaultConfig.
func (c Config) WithDefaults() Config {
	if c.MaxRequests <= 0 {
		c.MaxRequests = DefaultMaxRequests
	}
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	return c
}
