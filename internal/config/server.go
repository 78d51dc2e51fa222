package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

const (
	EnvServerHost              = "SCRIVENER_SERVER_HOST"
	EnvServerPort              = "SCRIVENER_SERVER_PORT"
	EnvServerReadTimeout       = "SCRIVENER_SERVER_READ_TIMEOUT"
	EnvServerReadHeaderTimeout = "SCRIVENER_SERVER_READ_HEADER_TIMEOUT"
	EnvServerWriteTimeout      = "SCRIVENER_SERVER_WRITE_TIMEOUT"
	EnvServerIdleTimeout       = "SCRIVENER_SERVER_IDLE_TIMEOUT"
	EnvServerShutdownTimeout   = "SCRIVENER_SERVER_SHUTDOWN_TIMEOUT"
)

// ServerConfig holds the HTTP listener settings. Timeouts are Go duration
// strings. The read timeout must cover the largest document upload.
type ServerConfig struct {
	Host              string `toml:"host"`
	Port              int    `toml:"port"`
	ReadTimeout       string `toml:"read_timeout"`
	ReadHeaderTimeout string `toml:"read_header_timeout"`
	WriteTimeout      string `toml:"write_timeout"`
	IdleTimeout       string `toml:"idle_timeout"`
	ShutdownTimeout   string `toml:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *ServerConfig) ReadTimeoutDuration() time.Duration {
	return durationOf(c.ReadTimeout)
}

func (c *ServerConfig) ReadHeaderTimeoutDuration() time.Duration {
	return durationOf(c.ReadHeaderTimeout)
}

func (c *ServerConfig) WriteTimeoutDuration() time.Duration {
	return durationOf(c.WriteTimeout)
}

func (c *ServerConfig) IdleTimeoutDuration() time.Duration {
	return durationOf(c.IdleTimeout)
}

func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return durationOf(c.ShutdownTimeout)
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ServerConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	for _, f := range c.stringFields(overlay) {
		if *f.src != "" {
			*f.dst = *f.src
		}
	}
}

func (c *ServerConfig) loadDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	for _, f := range c.stringFields(nil) {
		if *f.dst == "" {
			*f.dst = f.def
		}
	}
}

func (c *ServerConfig) loadEnv() {
	if v := os.Getenv(EnvServerPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	for _, f := range c.stringFields(nil) {
		if v := os.Getenv(f.env); v != "" {
			*f.dst = v
		}
	}
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	for _, f := range c.stringFields(nil) {
		if f.name == "host" {
			continue
		}
		if d, err := time.ParseDuration(*f.dst); err != nil {
			return fmt.Errorf("invalid %s: %w", f.name, err)
		} else if d < 0 {
			return fmt.Errorf("invalid %s: negative duration", f.name)
		}
	}
	return nil
}

type stringField struct {
	name string
	env  string
	def  string
	dst  *string
	src  *string
}

// stringFields lists the string settings in one place for defaults, env
// overrides, merging and duration validation. src is nil unless overlay is.
func (c *ServerConfig) stringFields(overlay *ServerConfig) []stringField {
	fields := []stringField{
		{name: "host", env: EnvServerHost, def: "0.0.0.0", dst: &c.Host},
		{name: "read_timeout", env: EnvServerReadTimeout, def: "1m", dst: &c.ReadTimeout},
		{name: "read_header_timeout", env: EnvServerReadHeaderTimeout, def: "10s", dst: &c.ReadHeaderTimeout},
		{name: "write_timeout", env: EnvServerWriteTimeout, def: "15m", dst: &c.WriteTimeout},
		{name: "idle_timeout", env: EnvServerIdleTimeout, def: "2m", dst: &c.IdleTimeout},
		{name: "shutdown_timeout", env: EnvServerShutdownTimeout, def: "30s", dst: &c.ShutdownTimeout},
	}
	if overlay != nil {
		srcs := []*string{
			&overlay.Host, &overlay.ReadTimeout, &overlay.ReadHeaderTimeout,
			&overlay.WriteTimeout, &overlay.IdleTimeout, &overlay.ShutdownTimeout,
		}
		for i := range fields {
			fields[i].src = srcs[i]
		}
	}
	return fields
}

func durationOf(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
