package openapi

import "os"

// Config holds the document metadata published at /openapi.json.
type Config struct {
	Title       string `toml:"title"`
	Description string `toml:"description"`
}

// ConfigEnv names the environment variables that override Config.
type ConfigEnv struct {
	Title       string
	Description string
}

// Finalize applies defaults and environment overrides.
func (c *Config) Finalize(env *ConfigEnv) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	c.Title = firstNonEmpty(overlay.Title, c.Title)
	c.Description = firstNonEmpty(overlay.Description, c.Description)
}

func (c *Config) loadDefaults() {
	c.Title = firstNonEmpty(c.Title, "Scrivener API")
	c.Description = firstNonEmpty(c.Description,
		"Legal document templating: template catalog, matching, guided variable collection, and draft generation.")
}

func (c *Config) loadEnv(env *ConfigEnv) {
	if env.Title != "" {
		c.Title = firstNonEmpty(os.Getenv(env.Title), c.Title)
	}
	if env.Description != "" {
		c.Description = firstNonEmpty(os.Getenv(env.Description), c.Description)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
