package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// ErrCacheFailure classifies every serialization or storage error raised by
// the cache. These errors are logged and never returned to callers.
var ErrCacheFailure = errors.New("cache failure")

// Backend stores raw bytes by key. db.KVStore and MemoryBackend implement it.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Pruner is implemented by backends that know when each entry was written.
type Pruner interface {
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// Persistent is a best-effort JSON cache over a Backend.
type Persistent struct {
	backend Backend
	logger  *log.Logger

	mu       sync.Mutex
	lastErr  error
	failures int
}

// NewPersistent wraps backend. A nil backend gets an in-memory one.
func NewPersistent(backend Backend, logger *log.Logger) *Persistent {
	if backend == nil {
		backend = NewMemoryBackend()
	}
	return &Persistent{backend: backend, logger: logger}
}

// Get decodes the value stored under key into out. It reports false when the
// key is absent or the stored value cannot be read.
func (p *Persistent) Get(ctx context.Context, key string, out any) bool {
	if p == nil {
		return false
	}
	raw, ok, err := p.backend.Get(ctx, key)
	if err != nil {
		p.fail("get", key, err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		p.fail("decode", key, err)
		return false
	}
	return true
}

// Set encodes value as JSON and stores it under key.
func (p *Persistent) Set(ctx context.Context, key string, value any) {
	if p == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		p.fail("encode", key, err)
		return
	}
	if err := p.backend.Put(ctx, key, raw); err != nil {
		p.fail("put", key, err)
	}
}

// Remove deletes key.
func (p *Persistent) Remove(ctx context.Context, key string) {
	if p == nil {
		return
	}
	if err := p.backend.Delete(ctx, key); err != nil {
		p.fail("remove", key, err)
	}
}

// LastError returns the most recent swallowed failure, wrapping ErrCacheFailure.
func (p *Persistent) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Failures counts swallowed failures since creation.
func (p *Persistent) Failures() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failures
}

// Prune drops entries last written before the cutoff and returns how many
// went. Backends that are not a Pruner keep everything.
func (p *Persistent) Prune(ctx context.Context, before time.Time) int64 {
	if p == nil {
		return 0
	}
	pr, ok := p.backend.(Pruner)
	if !ok {
		return 0
	}
	n, err := pr.Prune(ctx, before)
	if err != nil {
		p.fail("prune", "*", err)
		return 0
	}
	return n
}

func (p *Persistent) fail(op, key string, err error) {
	wrapped := fmt.Errorf("%w: %s %q: %v", ErrCacheFailure, op, key, err)
	p.mu.Lock()
	p.lastErr = wrapped
	p.failures++
	p.mu.Unlock()
	if p.logger != nil {
		p.logger.Printf("cache: %v", wrapped)
	}
}
