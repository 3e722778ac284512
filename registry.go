package dlock

import (
	"context"
	"sync"
	"time"

	"github.com/git-hulk/go-dlock/internal"
	"github.com/git-hulk/go-dlock/store"
)

// Registry tracks the guards a process holds by name, so they can be
// released individually or all at once on shutdown.
type Registry struct {
	kv store.KV

	guards sync.Map
}

// NewRegistry creates a registry over the given store.
func NewRegistry(kv store.KV) *Registry {
	return &Registry{kv: kv}
}

// Acquire obtains the named lock and keeps its guard until Release or Close.
// It returns ErrAlreadyHeld if this registry already holds the name.
func (r *Registry) Acquire(ctx context.Context, name string, maxTTL, timeout, pollInterval time.Duration) (*Guard, error) {
	if _, ok := r.guards.Load(name); ok {
		return nil, ErrAlreadyHeld
	}
	mu, err := New(r.kv, name, maxTTL)
	if err != nil {
		return nil, err
	}
	guard, err := mu.Acquire(ctx, timeout, pollInterval)
	if err != nil {
		return nil, err
	}
	if _, loaded := r.guards.LoadOrStore(name, guard); loaded {
		// Lost a local race against a concurrent Acquire of the same name.
		_ = guard.Release(ctx)
		return nil, ErrAlreadyHeld
	}
	return guard, nil
}

// Release unlocks the named lock if this registry holds it.
func (r *Registry) Release(ctx context.Context, name string) error {
	v, ok := r.guards.LoadAndDelete(name)
	if !ok {
		return ErrNotHeld
	}
	return v.(*Guard).Release(ctx)
}

// Close releases every guard the registry still holds. Individual failures
// are logged and the first one is returned.
func (r *Registry) Close(ctx context.Context) error {
	var firstErr error
	r.guards.Range(func(k, _ any) bool {
		name, _ := k.(string)
		if err := r.Release(ctx, name); err != nil {
			internal.GetLogger().Printf("Failed to release mutex[%s], err: %v", name, err)
			if firstErr == nil {
				firstErr = err
			}
		}
		return true
	})
	return firstErr
}
