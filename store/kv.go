// Package store defines the minimal key-value contract the mutex consumes
// and the concrete adapters that speak it.
package store

import (
	"context"
	"time"
)

// KV is the set of atomic operations the locking protocol requires from a
// shared store. Any store failure must surface as an error so callers can
// distinguish "someone else holds the lock" from "the store is down".
type KV interface {
	// SetIfAbsent atomically sets key to value only if the key does not
	// exist, and reports whether the set happened. This is the sole
	// serialization point of the protocol; it must be truly atomic at
	// the store.
	SetIfAbsent(ctx context.Context, key, value string) (bool, error)

	// Get returns the value of key, with found=false if the key is absent.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Expire sets a time-to-live on an existing key. It returns false if
	// the key did not exist, which can happen when racing a concurrent
	// deletion or expiry.
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Delete removes the key unconditionally. Deleting an absent key is
	// not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether the key is present.
	Exists(ctx context.Context, key string) (bool, error)
}
