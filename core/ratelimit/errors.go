package ratelimit

import "errors"

var (
	// ErrMissingStore indicates the limiter was constructed without a store.
	ErrMissingStore = errors.New("rate limit store is required")

	// ErrInvalidConfig indicates a non-positive capacity, rate, or interval.
	ErrInvalidConfig = errors.New("invalid rate limit configuration")

	// ErrInvalidTokenCount indicates a non-positive token count was requested.
	ErrInvalidTokenCount = errors.New("invalid token count")

	// ErrStoreUnavailable indicates the backing store failed; callers decide
	// whether that fails open or closed.
	ErrStoreUnavailable = errors.New("rate limit store unavailable")
)
