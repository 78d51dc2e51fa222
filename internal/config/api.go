package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/scrivener/pkg/formatting"
	"github.com/JaimeStill/scrivener/pkg/middleware"
	"github.com/JaimeStill/scrivener/pkg/openapi"
	"github.com/JaimeStill/scrivener/pkg/pagination"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "SCRIVENER_CORS_ENABLED",
	Origins:          "SCRIVENER_CORS_ORIGINS",
	AllowedMethods:   "SCRIVENER_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "SCRIVENER_CORS_ALLOWED_HEADERS",
	AllowCredentials: "SCRIVENER_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "SCRIVENER_CORS_MAX_AGE",
}

var openAPIEnv = &openapi.ConfigEnv{
	Title:       "SCRIVENER_OPENAPI_TITLE",
	Description: "SCRIVENER_OPENAPI_DESCRIPTION",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "SCRIVENER_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "SCRIVENER_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds API routing, CORS, pagination, and OpenAPI settings.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	CORS          middleware.CORSConfig `toml:"cors"`
	Pagination    pagination.Config     `toml:"pagination"`
	OpenAPI       openapi.Config        `toml:"openapi"`
}

// MaxUploadSizeBytes parses MaxUploadSize, falling back to 50MB.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return 50 * 1024 * 1024
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS and pagination configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.OpenAPI.Finalize(openAPIEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "50MB"
	}
}

func (c *APIConfig) validate() error {
	if _, err := formatting.ParseBytes(c.MaxUploadSize); err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	return nil
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("SCRIVENER_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("SCRIVENER_API_MAX_UPLOAD_SIZE"); v != "" {
		c.MaxUploadSize = v
	}
}
