package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/JaimeStill/scrivener/pkg/cache"
	"github.com/JaimeStill/scrivener/pkg/database"
	"github.com/JaimeStill/scrivener/pkg/storage"
	"github.com/pelletier/go-toml/v2"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvScrivenerEnv             = "SCRIVENER_ENV"
	EnvScrivenerShutdownTimeout = "SCRIVENER_SHUTDOWN_TIMEOUT"
	EnvScrivenerVersion         = "SCRIVENER_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "SCRIVENER_DB_HOST",
	Port:            "SCRIVENER_DB_PORT",
	Name:            "SCRIVENER_DB_NAME",
	User:            "SCRIVENER_DB_USER",
	Password:        "SCRIVENER_DB_PASSWORD",
	SSLMode:         "SCRIVENER_DB_SSL_MODE",
	MaxOpenConns:    "SCRIVENER_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "SCRIVENER_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "SCRIVENER_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "SCRIVENER_DB_CONN_TIMEOUT",
	ApplicationName: "SCRIVENER_DB_APPLICATION_NAME",
}

var storageEnv = &storage.Env{
	ContainerName:    "SCRIVENER_STORAGE_CONTAINER_NAME",
	ConnectionString: "SCRIVENER_STORAGE_CONNECTION_STRING",
}

var cacheEnv = &cache.Env{
	Addr:        "SCRIVENER_CACHE_ADDR",
	Password:    "SCRIVENER_CACHE_PASSWORD",
	DB:          "SCRIVENER_CACHE_DB",
	KeyPrefix:   "SCRIVENER_CACHE_KEY_PREFIX",
	DialTimeout: "SCRIVENER_CACHE_DIAL_TIMEOUT",
}

// Config is the root configuration for the Scrivener service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	Cache           cache.Config    `toml:"cache"`
	Logging         LoggingConfig   `toml:"logging"`
	API             APIConfig       `toml:"api"`
	Matching        MatchingConfig  `toml:"matching"`
	Sessions        SessionsConfig  `toml:"sessions"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the SCRIVENER_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvScrivenerEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. Without a config.toml, defaults and environment
// variables provide everything.
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom is Load with the config files resolved relative to dir.
func LoadFrom(dir string) (*Config, error) {
	cfg := &Config{}

	base := filepath.Join(dir, BaseConfigFile)
	if _, err := os.Stat(base); err == nil {
		loaded, err := load(base)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(dir); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// DatabaseFromEnv builds a finalized database config from the SCRIVENER_DB_*
// variables alone, without reading config files.
func DatabaseFromEnv() (*database.Config, error) {
	cfg := &database.Config{}
	if err := cfg.Finalize(databaseEnv); err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Cache.Merge(&overlay.Cache)
	c.Logging.Merge(&overlay.Logging)
	c.API.Merge(&overlay.API)
	c.Matching.Merge(&overlay.Matching)
	c.Sessions.Merge(&overlay.Sessions)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Cache.Finalize(cacheEnv); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err := c.Logging.Finalize(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Matching.Finalize(); err != nil {
		return fmt.Errorf("matching: %w", err)
	}
	if err := c.Sessions.Finalize(); err != nil {
		return fmt.Errorf("sessions: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvScrivenerShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvScrivenerVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath(dir string) string {
	if env := os.Getenv(EnvScrivenerEnv); env != "" {
		path := filepath.Join(dir, fmt.Sprintf(OverlayConfigPattern, env))
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
