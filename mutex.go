// Package dlock implements a distributed mutex on top of a shared key-value
// store with atomic set-if-absent and expiration, letting independent
// processes coordinate access to a named critical section. Ownership is
// defined solely by the presence of a key in the shared store: any process
// with the same store and mutex name addresses the same lock, and a handle
// never caches ownership locally.
//
// The lock is deliberately simple: there is no waiter queue (any poller may
// acquire next), no fencing token, and no ownership check on release.
// Unlock trusts the caller; releasing a lock you never acquired releases
// someone else's. The TTL-based staleness recovery is the durable backstop
// against holders that crash without unlocking.
package dlock

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/git-hulk/go-dlock/store"
)

// DefaultPollInterval is the delay between acquisition attempts used by Lock
// when the caller passes a non-positive poll interval.
const DefaultPollInterval = 250 * time.Millisecond

const keyPrefix = "/mutex/"

// Mutex is a per-process handle on a named distributed lock. Handles with
// the same name and store address the same lock; the handle itself holds
// only configuration, never ownership state.
type Mutex struct {
	kv store.KV

	id     string
	name   string
	key    string
	maxTTL time.Duration

	now func() time.Time
}

// New creates a mutex handle for the given name. A maxTTL of zero means the
// lock never expires on its own; a positive maxTTL bounds how long a holder
// may keep the lock before other handles treat it as abandoned.
func New(kv store.KV, name string, maxTTL time.Duration) (*Mutex, error) {
	if kv == nil {
		return nil, errors.New("store cannot be nil")
	}
	if name == "" {
		return nil, errors.New("name cannot be empty")
	}
	if maxTTL < 0 {
		return nil, errors.New("max TTL cannot be negative")
	}
	return &Mutex{
		kv:     kv,
		id:     uuid.NewString(),
		name:   name,
		key:    keyPrefix + name,
		maxTTL: maxTTL,
		now:    time.Now,
	}, nil
}

// ID returns the diagnostic identifier of this handle.
func (m *Mutex) ID() string {
	return m.id
}

// Name returns the lock name.
func (m *Mutex) Name() string {
	return m.name
}

// Key returns the store key backing the lock.
func (m *Mutex) Key() string {
	return m.key
}

// MaxTTL returns the configured maximum time-to-live, zero meaning none.
func (m *Mutex) MaxTTL() time.Duration {
	return m.maxTTL
}

// TryLock makes a single non-blocking acquisition attempt and reports
// whether this handle now holds the lock. An error means the store failed,
// not that the lock is held by someone else.
//
// When maxTTL is positive and the key is already present, a record older
// than maxTTL is treated as abandoned: it is deleted and the set is retried
// exactly once. This staleness recovery may mutate the store even when the
// attempt ultimately fails.
func (m *Mutex) TryLock(ctx context.Context) (bool, error) {
	now := m.now().Unix()
	acquired, err := m.kv.SetIfAbsent(ctx, m.key, formatTimestamp(now))
	if err != nil {
		return false, err
	}

	if acquired {
		if m.maxTTL == 0 {
			return true, nil
		}
		applied, err := m.kv.Expire(ctx, m.key, m.maxTTL)
		if err != nil {
			return false, err
		}
		if !applied {
			// The key vanished between set and expire. The acquisition
			// is unsound; delete rather than risk a key that never
			// expires.
			if err := m.kv.Delete(ctx, m.key); err != nil {
				return false, err
			}
			return false, nil
		}
		return true, nil
	}

	if m.maxTTL == 0 {
		return false, nil
	}

	value, found, err := m.kv.Get(ctx, m.key)
	if err != nil {
		return false, err
	}
	if found && !m.isStale(value, now) {
		return false, nil
	}

	// The record expired, vanished between the set and the read, or its
	// holder exceeded its TTL budget. Reclaim it with a single retry; the
	// retried set intentionally carries no expire step, matching the
	// cleanup semantics of the original acquisition path.
	if err := m.kv.Delete(ctx, m.key); err != nil {
		return false, err
	}
	return m.kv.SetIfAbsent(ctx, m.key, formatTimestamp(m.now().Unix()))
}

// isStale reports whether a stored acquisition timestamp has exceeded the
// TTL budget. Records that do not parse are counted as abandoned.
func (m *Mutex) isStale(value string, now int64) bool {
	acquiredAt, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return true
	}
	return now-acquiredAt > int64(m.maxTTL/time.Second)
}

// Lock blocks until the lock is acquired, the timeout elapses, or the
// context is cancelled, polling TryLock every pollInterval. A timeout of
// zero waits indefinitely; a non-positive pollInterval falls back to
// DefaultPollInterval. It returns false only on timeout; store failures and
// context cancellation are reported as errors. Waiters are not served in
// arrival order.
func (m *Mutex) Lock(ctx context.Context, timeout, pollInterval time.Duration) (bool, error) {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	start := m.now()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		acquired, err := m.TryLock(ctx)
		if err != nil {
			return false, err
		}
		if acquired {
			return true, nil
		}
		if timeout > 0 && m.now().Sub(start) >= timeout {
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Unlock deletes the lock record unconditionally. It does not verify that
// this handle is the holder — there is no ownership token — so unlocking a
// mutex you never acquired releases someone else's lock. Calling it on an
// already-unlocked mutex is a no-op.
func (m *Mutex) Unlock(ctx context.Context) error {
	return m.kv.Delete(ctx, m.key)
}

// IsLocked reports whether the lock record currently exists. It is advisory
// only, for inspection and monitoring: the check and any subsequent acquire
// are not atomic together, so never use a positive result as a substitute
// for TryLock before entering the critical section.
func (m *Mutex) IsLocked(ctx context.Context) (bool, error) {
	return m.kv.Exists(ctx, m.key)
}

func formatTimestamp(seconds int64) string {
	return strconv.FormatInt(seconds, 10)
}
