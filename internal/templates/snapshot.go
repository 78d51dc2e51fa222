package templates

import (
	"context"
	"sync/atomic"
	"time"
)

type snapshot struct {
	templates  []Template
	loadedAt   time.Time
	generation uint64
}

// catalogCache holds the last loaded catalog. Writes bump the generation; a
// snapshot is served only while its generation is current and it is younger
// than ttl, so a load that overlaps a write never outlives that write.
type catalogCache struct {
	load       func(ctx context.Context) ([]Template, error)
	ttl        time.Duration
	now        func() time.Time
	generation atomic.Uint64
	current    atomic.Pointer[snapshot]
}

func newCatalogCache(
	load func(ctx context.Context) ([]Template, error),
	ttl time.Duration,
	now func() time.Time,
) *catalogCache {
	return &catalogCache{load: load, ttl: ttl, now: now}
}

func (c *catalogCache) get(ctx context.Context) ([]Template, error) {
	gen := c.generation.Load()
	started := c.now()

	cur := c.current.Load()
	if cur != nil && cur.generation == gen && started.Sub(cur.loadedAt) < c.ttl {
		return cur.templates, nil
	}

	items, err := c.load(ctx)
	if err != nil {
		return nil, err
	}

	if c.generation.Load() == gen {
		c.current.CompareAndSwap(cur, &snapshot{templates: items, loadedAt: started, generation: gen})
	}
	return items, nil
}

func (c *catalogCache) invalidate() {
	c.generation.Add(1)
	c.current.Store(nil)
}
