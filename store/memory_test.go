package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryKV(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()

	set, err := kv.SetIfAbsent(ctx, "k", "v1")
	require.NoError(t, err)
	require.True(t, set)

	set, err = kv.SetIfAbsent(ctx, "k", "v2")
	require.NoError(t, err)
	require.False(t, set)

	value, found, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "v1", value)

	exists, err := kv.Exists(ctx, "k")
	require.NoError(t, err)
	require.True(t, exists)

	require.NoError(t, kv.Delete(ctx, "k"))
	require.NoError(t, kv.Delete(ctx, "k"))

	_, found, err = kv.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, found)

	exists, err = kv.Exists(ctx, "k")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestMemoryExpire(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()

	applied, err := kv.Expire(ctx, "missing", time.Second)
	require.NoError(t, err)
	require.False(t, applied)

	set, err := kv.SetIfAbsent(ctx, "k", "v")
	require.NoError(t, err)
	require.True(t, set)

	applied, err = kv.Expire(ctx, "k", 30*time.Millisecond)
	require.NoError(t, err)
	require.True(t, applied)

	time.Sleep(50 * time.Millisecond)

	exists, err := kv.Exists(ctx, "k")
	require.NoError(t, err)
	require.False(t, exists)

	// The slot is reusable once expired.
	set, err = kv.SetIfAbsent(ctx, "k", "v2")
	require.NoError(t, err)
	require.True(t, set)
}
