package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/JaimeStill/scrivener/pkg/lifecycle"
)

const sweepInterval = time.Minute

type entry struct {
	value     []byte
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

type memory struct {
	mu      sync.Mutex
	entries map[string]entry
	prefix  string
	now     func() time.Time
	logger  *slog.Logger
}

func newMemory(prefix string, logger *slog.Logger) *memory {
	return &memory{
		entries: make(map[string]entry),
		prefix:  prefix,
		now:     time.Now,
		logger:  logger.With("system", "cache", "backend", "memory"),
	}
}

// NewMemory creates an in-memory System. now overrides the clock when non-nil.
func NewMemory(now func() time.Time, logger *slog.Logger) System {
	m := newMemory("", logger)
	if now != nil {
		m.now = now
	}
	return m
}

func (m *memory) Start(lc *lifecycle.Coordinator) error {
	m.logger.Info("starting in-memory cache")

	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-lc.Context().Done():
				return
			case <-ticker.C:
				m.sweep()
			}
		}
	}()

	return nil
}

func (m *memory) Ping(context.Context) error {
	return nil
}

func (m *memory) Get(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.lookup(key)
	if !ok {
		return nil, ErrNotFound
	}
	return clone(e.value), nil
}

func (m *memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[m.prefix+key] = m.entry(value, ttl)
	return nil
}

func (m *memory) Delete(_ context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.lookup(key); !ok {
		return ErrNotFound
	}
	delete(m.entries, m.prefix+key)
	return nil
}

func (m *memory) Update(_ context.Context, key string, ttl time.Duration, fn UpdateFunc) error {
	if key == "" {
		return ErrEmptyKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.lookup(key)
	if !ok {
		return ErrNotFound
	}

	next, err := fn(clone(e.value))
	if err != nil {
		return err
	}

	m.entries[m.prefix+key] = m.entry(next, ttl)
	return nil
}

// lookup must be called with mu held; it evicts an expired entry.
func (m *memory) lookup(key string) (entry, bool) {
	e, ok := m.entries[m.prefix+key]
	if !ok {
		return entry{}, false
	}
	if e.expired(m.now()) {
		delete(m.entries, m.prefix+key)
		return entry{}, false
	}
	return e, true
}

func (m *memory) entry(value []byte, ttl time.Duration) entry {
	e := entry{value: clone(value)}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	return e
}

func (m *memory) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, k)
		}
	}
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
