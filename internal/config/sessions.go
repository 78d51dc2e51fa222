package config

import (
	"fmt"
	"os"
	"time"
)

const EnvSessionsTTL = "SCRIVENER_SESSIONS_TTL"

// SessionsConfig holds conversation session settings. TTL is the idle
// lifetime of a session; every mutation renews it.
type SessionsConfig struct {
	TTL string `toml:"ttl"`
}

// TTLDuration returns TTL as a time.Duration.
func (c *SessionsConfig) TTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TTL)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *SessionsConfig) Finalize() error {
	if c.TTL == "" {
		c.TTL = "2h"
	}
	if v := os.Getenv(EnvSessionsTTL); v != "" {
		c.TTL = v
	}

	d, err := time.ParseDuration(c.TTL)
	if err != nil {
		return fmt.Errorf("invalid ttl: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("ttl must be positive: %s", c.TTL)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *SessionsConfig) Merge(overlay *SessionsConfig) {
	if overlay.TTL != "" {
		c.TTL = overlay.TTL
	}
}
