// Package infrastructure provides core service initialization for application startup.
// It assembles the shared dependencies (logging, database, storage, cache)
// that domain systems require.
package infrastructure

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/JaimeStill/scrivener/internal/config"
	"github.com/JaimeStill/scrivener/pkg/cache"
	"github.com/JaimeStill/scrivener/pkg/database"
	"github.com/JaimeStill/scrivener/pkg/lifecycle"
	"github.com/JaimeStill/scrivener/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Cache     cache.System
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := NewLogger(&cfg.Logging, os.Stderr)

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Cache:     cache.New(&cfg.Cache, logger),
	}, nil
}

// NewLogger builds the root logger for the configured level and format.
func NewLogger(cfg *config.LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	if err := i.Cache.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("cache start failed: %w", err)
	}
	return nil
}
