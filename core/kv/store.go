package kv

import (
	"context"
	"time"
)

// Store is the shared TTL key-value contract used for replay nonces and
// elevation sessions. Implementations must be safe for concurrent use and
// must enforce expiry server-side; callers never clean up expired keys
// manually.
//
// SetNX is the atomic "set if absent" primitive. For replay protection it is
// the source of truth: a plain Exists check before SetNX is only an
// optimization and must not be relied on under concurrency.
type Store interface {
	// Get returns the value for key, or ErrNotFound when the key is absent
	// or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes the value with the given TTL, overwriting any existing entry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetNX writes the value only when the key is absent. Returns true when
	// the write happened, false when the key already existed.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether the key is present and unexpired.
	Exists(ctx context.Context, key string) (bool, error)
}
