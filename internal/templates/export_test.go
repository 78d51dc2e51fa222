package templates

import (
	"context"
	"time"
)

var Browse = browse

type CatalogCache = catalogCache

func NewCatalogCache(load func(context.Context) ([]Template, error), ttl time.Duration, now func() time.Time) *CatalogCache {
	return newCatalogCache(load, ttl, now)
}

func (c *CatalogCache) Get(ctx context.Context) ([]Template, error) { return c.get(ctx) }

func (c *CatalogCache) Invalidate() { c.invalidate() }
