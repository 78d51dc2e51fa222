package templates_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/JaimeStill/scrivener/internal/templates"
)

type fakeClock struct{ at time.Time }

func (c *fakeClock) now() time.Time { return c.at }

type countingLoader struct {
	calls  int
	items  []templates.Template
	err    error
	during func()
}

func (l *countingLoader) load(context.Context) ([]templates.Template, error) {
	l.calls++
	if l.during != nil {
		during := l.during
		l.during = nil
		during()
	}
	if l.err != nil {
		return nil, l.err
	}
	return l.items, nil
}

func newCatalog(ttl time.Duration) (*templates.CatalogCache, *countingLoader, *fakeClock) {
	clock := &fakeClock{at: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	loader := &countingLoader{items: []templates.Template{{TemplateID: "tpl_lease_v1"}}}
	return templates.NewCatalogCache(loader.load, ttl, clock.now), loader, clock
}

func TestCatalogCache(t *testing.T) {
	ctx := context.Background()

	t.Run("reuses snapshot within ttl", func(t *testing.T) {
		c, loader, clock := newCatalog(30 * time.Second)
		c.Get(ctx)
		clock.at = clock.at.Add(29 * time.Second)
		got, err := c.Get(ctx)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if loader.calls != 1 || len(got) != 1 {
			t.Errorf("calls = %d, got = %+v", loader.calls, got)
		}
	})

	t.Run("reloads after ttl", func(t *testing.T) {
		c, loader, clock := newCatalog(30 * time.Second)
		c.Get(ctx)
		clock.at = clock.at.Add(30 * time.Second)
		c.Get(ctx)
		if loader.calls != 2 {
			t.Errorf("calls = %d, want 2", loader.calls)
		}
	})

	t.Run("write drops snapshot", func(t *testing.T) {
		c, loader, _ := newCatalog(time.Hour)
		c.Get(ctx)
		c.Invalidate()
		loader.items = append(loader.items, templates.Template{TemplateID: "tpl_nda_v1"})

		got, _ := c.Get(ctx)
		if loader.calls != 2 || len(got) != 2 {
			t.Errorf("calls = %d, got = %+v", loader.calls, got)
		}
	})

	t.Run("load overlapping a write is not kept", func(t *testing.T) {
		c, loader, _ := newCatalog(time.Hour)
		loader.during = func() {
			c.Invalidate()
		}

		stale, _ := c.Get(ctx)
		if len(stale) != 1 {
			t.Fatalf("first load = %+v", stale)
		}

		loader.items = append(loader.items, templates.Template{TemplateID: "tpl_nda_v1"})
		got, _ := c.Get(ctx)
		if loader.calls != 2 || len(got) != 2 {
			t.Errorf("calls = %d, got = %+v", loader.calls, got)
		}

		c.Get(ctx)
		if loader.calls != 2 {
			t.Errorf("calls = %d after settled load, want 2", loader.calls)
		}
	})

	t.Run("load error is not cached", func(t *testing.T) {
		c, loader, _ := newCatalog(time.Hour)
		loader.err = errors.New("connection refused")
		if _, err := c.Get(ctx); err == nil {
			t.Fatal("Get() succeeded with failing loader")
		}

		loader.err = nil
		if got, err := c.Get(ctx); err != nil || len(got) != 1 {
			t.Errorf("Get() = %+v, %v", got, err)
		}
	})
}
