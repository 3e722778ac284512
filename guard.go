package dlock

import (
	"context"
	"runtime"
	"time"

	"go.uber.org/atomic"
)

// Guard represents a successful acquisition. Release it on every exit path
// of the critical section, typically with defer. As a last resort an
// abandoned guard unlocks during finalization, but that is best-effort only
// — it never runs on a hard process kill, which is what the TTL backstop
// is for.
type Guard struct {
	mu       *Mutex
	released atomic.Bool
}

// Acquire blocks like Lock and wraps a successful acquisition in a Guard.
// A timeout is reported as ErrNotAcquired; store failures and context
// cancellation propagate unchanged.
func (m *Mutex) Acquire(ctx context.Context, timeout, pollInterval time.Duration) (*Guard, error) {
	acquired, err := m.Lock(ctx, timeout, pollInterval)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrNotAcquired
	}
	g := &Guard{mu: m}
	runtime.SetFinalizer(g, func(g *Guard) {
		_ = g.Release(context.Background())
	})
	return g, nil
}

// Release unlocks the mutex. It is idempotent; only the first call reaches
// the store.
func (g *Guard) Release(ctx context.Context) error {
	if !g.released.CompareAndSwap(false, true) {
		return nil
	}
	runtime.SetFinalizer(g, nil)
	return g.mu.Unlock(ctx)
}

// Mutex returns the handle this guard was acquired from.
func (g *Guard) Mutex() *Mutex {
	return g.mu
}
