package session

import (
	"context"
	"sync"
)

// collection is a backend-owned list held locally. It is never patched in
// place: writes invalidate it and a reload replaces it wholesale.
type collection[T any] struct {
	mu      sync.RWMutex
	items   []T
	stale   bool
	started uint64
	applied uint64
}

func (c *collection[T]) snapshot() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *collection[T]) isStale() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stale
}

func (c *collection[T]) invalidate() {
	c.mu.Lock()
	c.stale = true
	c.mu.Unlock()
}

func (c *collection[T]) clear() {
	c.mu.Lock()
	c.started++
	c.applied = c.started
	c.items = nil
	c.stale = false
	c.mu.Unlock()
}

// reload replaces the items with a fresh load. A failed load empties the
// collection. When reloads overlap, only the most recently started one that
// finishes is kept.
func (c *collection[T]) reload(ctx context.Context, load func(context.Context) ([]T, error)) error {
	c.mu.Lock()
	c.started++
	seq := c.started
	c.mu.Unlock()

	items, err := load(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq < c.applied {
		return err
	}
	c.applied = seq
	if err != nil {
		c.items = nil
		c.stale = true
		return err
	}
	c.items = items
	c.stale = false
	return nil
}
