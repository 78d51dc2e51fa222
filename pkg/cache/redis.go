package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/JaimeStill/scrivener/pkg/lifecycle"
)

const maxUpdateAttempts = 5

type redisCache struct {
	client      *goredis.Client
	prefix      string
	dialTimeout time.Duration
	logger      *slog.Logger
}

func newRedis(cfg *Config, logger *slog.Logger) *redisCache {
	client := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeoutDuration(),
	})

	return &redisCache{
		client:      client,
		prefix:      cfg.KeyPrefix,
		dialTimeout: cfg.DialTimeoutDuration(),
		logger:      logger.With("system", "cache", "backend", "redis"),
	}
}

func (r *redisCache) Start(lc *lifecycle.Coordinator) error {
	r.logger.Info("starting cache connection")

	lc.OnStartup("cache", func(ctx context.Context) error {
		if err := r.Ping(ctx); err != nil {
			r.logger.Error("cache ping failed", "error", err)
			return err
		}
		r.logger.Info("cache connection established")
		return nil
	})

	lc.OnShutdown("cache", func(context.Context) error {
		if err := r.client.Close(); err != nil {
			r.logger.Error("cache close failed", "error", err)
			return err
		}
		r.logger.Info("cache connection closed")
		return nil
	})

	return nil
}

func (r *redisCache) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.dialTimeout)
	defer cancel()
	return r.client.Ping(ctx).Err()
}

func (r *redisCache) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	value, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

func (r *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}

	if err := r.client.Set(ctx, r.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (r *redisCache) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	n, err := r.client.Del(ctx, r.prefix+key).Result()
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *redisCache) Update(ctx context.Context, key string, ttl time.Duration, fn UpdateFunc) error {
	if key == "" {
		return ErrEmptyKey
	}
	k := r.prefix + key

	txn := func(tx *goredis.Tx) error {
		current, err := tx.Get(ctx, k).Bytes()
		if err != nil {
			if errors.Is(err, goredis.Nil) {
				return ErrNotFound
			}
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, k, next, ttl)
			return nil
		})
		return err
	}

	for range maxUpdateAttempts {
		err := r.client.Watch(ctx, txn, k)
		if errors.Is(err, goredis.TxFailedErr) {
			r.logger.Debug("optimistic update retry", "key", key)
			continue
		}
		return err
	}

	return ErrConflict
}
