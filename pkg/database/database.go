// Package database manages the PostgreSQL connection pool and ties its
// startup ping and shutdown close to the lifecycle coordinator.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JaimeStill/scrivener/pkg/lifecycle"
)

// System manages database connections and lifecycle coordination.
type System interface {
	// Connection returns the underlying database connection pool.
	Connection() *sql.DB
	// Ping verifies the database is reachable within the connect timeout.
	Ping(ctx context.Context) error
	// Start registers startup and shutdown hooks with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
}

type database struct {
	conn        *sql.DB
	logger      *slog.Logger
	connTimeout time.Duration
}

// New opens a pgx-backed pool for cfg. No connection is made until the
// first query or Ping.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	db, err := sql.Open("pgx", cfg.Dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return &database{
		conn:        db,
		logger:      logger.With("system", "database"),
		connTimeout: cfg.ConnTimeoutDuration(),
	}, nil
}

func (d *database) Connection() *sql.DB {
	return d.conn
}

func (d *database) Ping(ctx context.Context) error {
	if d.connTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.connTimeout)
		defer cancel()
	}
	if err := d.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (d *database) Start(lc *lifecycle.Coordinator) error {
	d.logger.Info("starting database connection")

	lc.OnStartup("database", func(ctx context.Context) error {
		if err := d.Ping(ctx); err != nil {
			d.logger.Error("database ping failed", "error", err)
			return err
		}
		d.logger.Info("database connection established")
		return nil
	})

	lc.OnShutdown("database", func(context.Context) error {
		stats := d.conn.Stats()
		d.logger.Info("closing database connection", "open", stats.OpenConnections, "in_use", stats.InUse)

		if err := d.conn.Close(); err != nil {
			d.logger.Error("database close failed", "error", err)
			return err
		}
		d.logger.Info("database connection closed")
		return nil
	})

	return nil
}
