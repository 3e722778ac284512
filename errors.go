package dlock

import "errors"

var (
	// ErrNotAcquired is returned by Acquire when the lock could not be
	// obtained before the timeout.
	ErrNotAcquired = errors.New("mutex not acquired")

	// ErrAlreadyHeld is returned by Registry.Acquire when the registry
	// already holds a guard for the name.
	ErrAlreadyHeld = errors.New("mutex already held by this registry")

	// ErrNotHeld is returned by Registry.Release when the registry holds
	// no guard for the name.
	ErrNotHeld = errors.New("mutex not held by this registry")
)
