package cache

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrRefreshInFlight is returned by Refresh when another refresh of the
	// same collection has not finished yet.
	ErrRefreshInFlight = errors.New("refresh already in flight")
	// ErrRefreshSuperseded is returned by a Refresh whose collection was
	// invalidated while it was fetching. Its result is discarded.
	ErrRefreshSuperseded = errors.New("refresh superseded by invalidation")
)

// Fetcher loads a fresh copy of a collection from its source.
type Fetcher[T any] func(ctx context.Context) ([]T, error)

type mirror[T any] struct {
	Items     []T       `json:"items"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Collection is the client-side copy of a server list. Every Replace or
// Invalidate bumps its generation so renderers can tell whether what they
// drew is still current. Contents are mirrored best-effort into the
// persistent cache under Key.
type Collection[T any] struct {
	key   string
	cache *Persistent
	fetch Fetcher[T]
	label func(T) string

	mu         sync.RWMutex
	items      []T
	fetchedAt  time.Time
	generation uint64
	inFlight   bool
	listeners  []func(generation uint64)

	// epoch counts invalidations; a refresh only lands in the epoch it
	// started in.
	epoch uint64
}

// NewCollection creates an empty collection. cache and label may be nil.
func NewCollection[T any](key string, cache *Persistent, fetch Fetcher[T], label func(T) string) *Collection[T] {
	return &Collection[T]{key: key, cache: cache, fetch: fetch, label: label}
}

// Key is the persistent cache key the collection mirrors to.
func (c *Collection[T]) Key() string { return c.key }

// Items returns a copy of the current items.
func (c *Collection[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Snapshot returns a copy of the items together with their generation.
func (c *Collection[T]) Snapshot() ([]T, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out, c.generation
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Collection[T]) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

func (c *Collection[T]) FetchedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetchedAt
}

// FirstLabel returns the display label of the first item.
func (c *Collection[T]) FirstLabel() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.items) == 0 || c.label == nil {
		return "", false
	}
	return c.label(c.items[0]), true
}

// Find returns the first item matching pred.
func (c *Collection[T]) Find(pred func(T) bool) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.items {
		if pred(it) {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// OnChange registers fn to run after every generation bump. fn runs on the
// goroutine that changed the collection.
func (c *Collection[T]) OnChange(fn func(generation uint64)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Replace swaps the contents and returns the new generation.
func (c *Collection[T]) Replace(ctx context.Context, items []T) uint64 {
	gen, _ := c.replace(ctx, items, func() bool { return true })
	return gen
}

// replace swaps the contents when ok, checked under the lock, still holds.
func (c *Collection[T]) replace(ctx context.Context, items []T, ok func() bool) (uint64, bool) {
	now := time.Now()
	c.mu.Lock()
	if !ok() {
		c.mu.Unlock()
		return 0, false
	}
	c.items = append([]T(nil), items...)
	c.fetchedAt = now
	c.generation++
	gen := c.generation
	listeners := append([]func(uint64){}, c.listeners...)
	c.mu.Unlock()

	if c.cache != nil {
		c.cache.Set(ctx, c.key, mirror[T]{Items: items, FetchedAt: now})
	}
	for _, fn := range listeners {
		fn(gen)
	}
	return gen, true
}

// Invalidate drops the contents and the mirrored copy. A refresh still
// fetching is fenced off, and a new one may start right away.
func (c *Collection[T]) Invalidate(ctx context.Context) uint64 {
	c.mu.Lock()
	c.items = nil
	c.fetchedAt = time.Time{}
	c.generation++
	c.epoch++
	c.inFlight = false
	gen := c.generation
	listeners := append([]func(uint64){}, c.listeners...)
	c.mu.Unlock()

	if c.cache != nil {
		c.cache.Remove(ctx, c.key)
	}
	for _, fn := range listeners {
		fn(gen)
	}
	return gen
}

// Restore loads the mirrored copy, if any, without touching the network.
func (c *Collection[T]) Restore(ctx context.Context) bool {
	if c.cache == nil {
		return false
	}
	var m mirror[T]
	if !c.cache.Get(ctx, c.key, &m) {
		return false
	}
	c.mu.Lock()
	c.items = m.Items
	c.fetchedAt = m.FetchedAt
	c.generation++
	gen := c.generation
	listeners := append([]func(uint64){}, c.listeners...)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn(gen)
	}
	return true
}

// InFlight reports whether a Refresh is running.
func (c *Collection[T]) InFlight() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inFlight
}

// Refresh fetches the collection and replaces the contents on success. On
// failure the previous contents are kept. If Invalidate runs during the
// fetch, the result is dropped and ErrRefreshSuperseded returned.
func (c *Collection[T]) Refresh(ctx context.Context) error {
	if c.fetch == nil {
		return errors.New("collection has no fetcher")
	}
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return ErrRefreshInFlight
	}
	c.inFlight = true
	epoch := c.epoch
	c.mu.Unlock()

	items, err := c.fetch(ctx)
	if err != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.epoch != epoch {
			return ErrRefreshSuperseded
		}
		c.inFlight = false
		return err
	}

	// After an invalidation the in-flight flag belongs to a newer refresh.
	_, landed := c.replace(ctx, items, func() bool {
		if c.epoch != epoch {
			return false
		}
		c.inFlight = false
		return true
	})
	if !landed {
		return ErrRefreshSuperseded
	}
	return nil
}
