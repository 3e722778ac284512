package dlock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/git-hulk/go-dlock/store"
)

func TestGuardAcquireRelease(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()

	mu, err := New(kv, "job-a", 0)
	require.NoError(t, err)
	guard, err := mu.Acquire(ctx, time.Second, 50*time.Millisecond)
	require.NoError(t, err)
	require.Same(t, mu, guard.Mutex())

	locked, err := mu.IsLocked(ctx)
	require.NoError(t, err)
	require.True(t, locked)

	require.NoError(t, guard.Release(ctx))
	locked, err = mu.IsLocked(ctx)
	require.NoError(t, err)
	require.False(t, locked)

	// Release is idempotent.
	require.NoError(t, guard.Release(ctx))
}

func TestGuardAcquireTimeout(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()

	holder, err := New(kv, "job-a", 0)
	require.NoError(t, err)
	guard, err := holder.Acquire(ctx, time.Second, 50*time.Millisecond)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, guard.Release(ctx))
	}()

	waiter, err := New(kv, "job-a", 0)
	require.NoError(t, err)
	_, err = waiter.Acquire(ctx, 200*time.Millisecond, 50*time.Millisecond)
	require.ErrorIs(t, err, ErrNotAcquired)
}

func TestGuardStoreErrorPropagates(t *testing.T) {
	mu, err := New(faultyKV{}, "job-a", 0)
	require.NoError(t, err)
	_, err = mu.Acquire(context.Background(), time.Second, 50*time.Millisecond)
	require.ErrorIs(t, err, errStoreDown)
}
