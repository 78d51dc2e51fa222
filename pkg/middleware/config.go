package middleware

import (
	"errors"
	"os"
	"slices"
	"strconv"
	"strings"
)

// CORSConfig holds the cross-origin policy for browser clients of the API.
// An origin of "*" allows any origin but cannot be combined with credentials.
type CORSConfig struct {
	Enabled          bool     `toml:"enabled"`
	Origins          []string `toml:"origins"`
	AllowedMethods   []string `toml:"allowed_methods"`
	AllowedHeaders   []string `toml:"allowed_headers"`
	AllowCredentials bool     `toml:"allow_credentials"`
	MaxAge           int      `toml:"max_age"`
}

// CORSEnv names the environment variables that override CORSConfig fields.
// List values are comma-separated.
type CORSEnv struct {
	Enabled          string
	Origins          string
	AllowedMethods   string
	AllowedHeaders   string
	AllowCredentials string
	MaxAge           string
}

// Finalize applies defaults, then environment overrides, then validates.
func (c *CORSConfig) Finalize(env *CORSEnv) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites fields from overlay. Booleans always apply; lists and
// max_age apply only when set.
func (c *CORSConfig) Merge(overlay *CORSConfig) {
	c.Enabled = overlay.Enabled
	c.AllowCredentials = overlay.AllowCredentials

	if overlay.Origins != nil {
		c.Origins = overlay.Origins
	}
	if overlay.AllowedMethods != nil {
		c.AllowedMethods = overlay.AllowedMethods
	}
	if overlay.AllowedHeaders != nil {
		c.AllowedHeaders = overlay.AllowedHeaders
	}
	if overlay.MaxAge > 0 {
		c.MaxAge = overlay.MaxAge
	}
}

func (c *CORSConfig) loadDefaults() {
	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(c.AllowedHeaders) == 0 {
		c.AllowedHeaders = []string{"Content-Type", "Accept"}
	}
	if c.MaxAge <= 0 {
		c.MaxAge = 3600
	}
}

func (c *CORSConfig) loadEnv(env *CORSEnv) {
	if v, ok := lookupBool(env.Enabled); ok {
		c.Enabled = v
	}
	if v, ok := lookupBool(env.AllowCredentials); ok {
		c.AllowCredentials = v
	}
	if v := lookupList(env.Origins); v != nil {
		c.Origins = v
	}
	if v := lookupList(env.AllowedMethods); v != nil {
		c.AllowedMethods = v
	}
	if v := lookupList(env.AllowedHeaders); v != nil {
		c.AllowedHeaders = v
	}
	if name := env.MaxAge; name != "" {
		if n, err := strconv.Atoi(os.Getenv(name)); err == nil {
			c.MaxAge = n
		}
	}
}

func (c *CORSConfig) validate() error {
	if c.AllowCredentials && slices.Contains(c.Origins, wildcardOrigin) {
		return errors.New("cors: wildcard origin cannot allow credentials")
	}
	if c.MaxAge < 0 {
		return errors.New("cors: max_age must not be negative")
	}
	return nil
}

func lookupBool(name string) (bool, bool) {
	if name == "" {
		return false, false
	}
	v, err := strconv.ParseBool(os.Getenv(name))
	return v, err == nil
}

// lookupList returns nil when the variable is unset or holds no entries.
func lookupList(name string) []string {
	if name == "" {
		return nil
	}
	var out []string
	for item := range strings.SplitSeq(os.Getenv(name), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
