// Package lifecycle coordinates startup and shutdown of long-lived
// subsystems such as the database pool, cache client and HTTP listener.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Hook is a named startup or shutdown step.
type Hook func(ctx context.Context) error

type namedHook struct {
	name string
	fn   Hook
}

// Coordinator runs startup hooks concurrently as they are registered and
// holds shutdown hooks until Shutdown. A failed startup hook does not
// abort the others; failures are reported by WaitForStartup.
type Coordinator struct {
	ctx    context.Context
	cancel context.CancelFunc

	startup  sync.WaitGroup
	ready    atomic.Bool
	mu       sync.Mutex
	failures []error
	shutdown []namedHook
}

// New creates a Coordinator whose context is cancelled by Shutdown.
func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{ctx: ctx, cancel: cancel}
}

// Context is cancelled when Shutdown begins. Background loops select on it.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup runs fn immediately in its own goroutine.
func (c *Coordinator) OnStartup(name string, fn Hook) {
	c.startup.Go(func() {
		if err := fn(c.ctx); err != nil {
			c.mu.Lock()
			c.failures = append(c.failures, fmt.Errorf("%s: %w", name, err))
			c.mu.Unlock()
		}
	})
}

// OnShutdown registers fn to run when Shutdown is called.
func (c *Coordinator) OnShutdown(name string, fn Hook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shutdown = append(c.shutdown, namedHook{name: name, fn: fn})
}

// Ready reports whether WaitForStartup has returned.
func (c *Coordinator) Ready() bool {
	return c.ready.Load()
}

// WaitForStartup blocks until every startup hook has returned, marks the
// coordinator ready, and returns the joined hook failures.
func (c *Coordinator) WaitForStartup() error {
	c.startup.Wait()
	c.ready.Store(true)

	c.mu.Lock()
	defer c.mu.Unlock()
	return errors.Join(c.failures...)
}

// Shutdown cancels the coordinator context, then runs every shutdown hook
// concurrently with a context bounded by timeout.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.cancel()
	c.ready.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	c.mu.Lock()
	hooks := c.shutdown
	c.mu.Unlock()

	var g errgroup.Group
	errs := make([]error, len(hooks))
	for i, h := range hooks {
		g.Go(func() error {
			if err := h.fn(ctx); err != nil {
				errs[i] = fmt.Errorf("%s: %w", h.name, err)
			}
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		g.Wait()
		close(done)
	}()

	select {
	case <-done:
		return errors.Join(errs...)
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout after %v", timeout)
	}
}
