package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvMatchingThreshold  = "SCRIVENER_MATCHING_THRESHOLD"
	EnvMatchingMaxResults = "SCRIVENER_MATCHING_MAX_RESULTS"
	EnvMatchingCatalogTTL = "SCRIVENER_MATCHING_CATALOG_TTL"
)

const defaultThreshold = 0.15

// MatchingConfig tunes the template matcher. A match is kept only when its
// confidence is strictly greater than Threshold.
type MatchingConfig struct {
	Threshold  *float64 `toml:"threshold"`
	MaxResults int      `toml:"max_results"`
	CatalogTTL string   `toml:"catalog_ttl"`
}

// ThresholdValue returns the configured threshold.
func (c *MatchingConfig) ThresholdValue() float64 {
	if c.Threshold == nil {
		return defaultThreshold
	}
	return *c.Threshold
}

// CatalogTTLDuration returns CatalogTTL as a time.Duration.
func (c *MatchingConfig) CatalogTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.CatalogTTL)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *MatchingConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay. Threshold is a pointer so an
// overlay can set it to zero.
func (c *MatchingConfig) Merge(overlay *MatchingConfig) {
	if overlay.Threshold != nil {
		t := *overlay.Threshold
		c.Threshold = &t
	}
	if overlay.MaxResults != 0 {
		c.MaxResults = overlay.MaxResults
	}
	if overlay.CatalogTTL != "" {
		c.CatalogTTL = overlay.CatalogTTL
	}
}

func (c *MatchingConfig) loadDefaults() {
	if c.Threshold == nil {
		t := defaultThreshold
		c.Threshold = &t
	}
	if c.MaxResults == 0 {
		c.MaxResults = 5
	}
	if c.CatalogTTL == "" {
		c.CatalogTTL = "30s"
	}
}

func (c *MatchingConfig) loadEnv() {
	if v := os.Getenv(EnvMatchingThreshold); v != "" {
		if t, err := strconv.ParseFloat(v, 64); err == nil {
			c.Threshold = &t
		}
	}
	if v := os.Getenv(EnvMatchingMaxResults); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxResults = n
		}
	}
	if v := os.Getenv(EnvMatchingCatalogTTL); v != "" {
		c.CatalogTTL = v
	}
}

func (c *MatchingConfig) validate() error {
	if t := *c.Threshold; t < 0 || t >= 1 {
		return fmt.Errorf("threshold must be in [0, 1): %v", t)
	}
	if c.MaxResults < 1 {
		return fmt.Errorf("max_results must be positive: %d", c.MaxResults)
	}
	if _, err := time.ParseDuration(c.CatalogTTL); err != nil {
		return fmt.Errorf("invalid catalog_ttl: %w", err)
	}
	return nil
}
