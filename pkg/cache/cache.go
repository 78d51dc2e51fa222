// Package cache provides a byte-oriented key/value store with expiry,
// backed by Redis or, when no address is configured, process memory.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/JaimeStill/scrivener/pkg/lifecycle"
)

// UpdateFunc derives the next value from the current one. It may run more
// than once per Update and must not have side effects.
type UpdateFunc func(current []byte) ([]byte, error)

// System manages cached values and lifecycle coordination.
type System interface {
	// Start registers startup and shutdown hooks with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
	// Get returns the value at key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value at key, expiring after ttl (zero keeps it indefinitely).
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes key. Returns ErrNotFound if the key is absent.
	Delete(ctx context.Context, key string) error
	// Update atomically replaces the value at key with fn(current) and
	// refreshes its ttl. Returns ErrNotFound if the key is absent.
	Update(ctx context.Context, key string, ttl time.Duration, fn UpdateFunc) error
}

// New creates a Redis-backed System when cfg.Addr is set, otherwise an
// in-memory System.
func New(cfg *Config, logger *slog.Logger) System {
	if cfg.Addr == "" {
		return newMemory(cfg.KeyPrefix, logger)
	}
	return newRedis(cfg, logger)
}
