package ratelimit

import (
	"context"
	"time"
)

// Config defines token bucket parameters.
type Config struct {
	// Capacity is the maximum number of tokens the bucket holds, which is
	// also the largest burst a single key can spend at once.
	Capacity int

	// RefillRate is the number of tokens added per RefillInterval.
	RefillRate int

	// RefillInterval is how often tokens are added.
	RefillInterval time.Duration
}

// Validate reports whether the configuration is usable.
func (c Config) Validate() error {
	if c.Capacity <= 0 || c.RefillRate <= 0 || c.RefillInterval <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// Result describes the outcome of a consumption attempt.
type Result struct {
	// Allowed reports whether the request fits within the limit.
	Allowed bool

	// Remaining is the number of tokens left after this attempt, floored
	// at zero for reporting.
	Remaining int

	// ResetAt is when the next refill lands.
	ResetAt time.Time
}

// RetryAfter is the duration until the next refill, floored at zero.
func (r Result) RetryAfter() time.Duration {
	d := time.Until(r.ResetAt)
	if d < 0 {
		return 0
	}
	return d
}

// Store persists bucket state per key. Implementations must consume
// atomically: concurrent calls for the same key must never double-spend.
type Store interface {
	// ConsumeTokens refills the bucket per config, then deducts tokens.
	// The returned remaining count goes negative when the bucket is
	// overdrawn; the limiter treats negative as denied.
	ConsumeTokens(ctx context.Context, key string, tokens int, config Config) (remaining int, resetAt time.Time, err error)

	// Reset drops the bucket state for the key.
	Reset(ctx context.Context, key string) error
}

// Limiter applies a token bucket policy over a Store.
type Limiter struct {
	store  Store
	config Config
}

// New creates a Limiter. The configuration is validated once here so Allow
// never has to.
func New(store Store, config Config) (*Limiter, error) {
	if store == nil {
		return nil, ErrMissingStore
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Limiter{store: store, config: config}, nil
}

// Allow consumes one token for the key.
func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	return l.AllowN(ctx, key, 1)
}

// AllowN consumes n tokens for the key. A denied attempt still counts the
// tokens against the bucket, which makes sustained abuse strictly worse for
// the abuser.
func (l *Limiter) AllowN(ctx context.Context, key string, n int) (Result, error) {
	if n <= 0 {
		return Result{}, ErrInvalidTokenCount
	}

	remaining, resetAt, err := l.store.ConsumeTokens(ctx, key, n, l.config)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Allowed:   remaining >= 0,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
	if res.Remaining < 0 {
		res.Remaining = 0
	}
	return res, nil
}

// Reset clears the bucket for a key, e.g. after an operator override.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.store.Reset(ctx, key)
}

// Limit exposes the configured capacity for response headers.
func (l *Limiter) Limit() int {
	return l.config.Capacity
}

// fpPrefixLen is how much of the fingerprint hash participates in the key.
const fpPrefixLen = 8

// Key builds a bucket key from a client IP and an optional fingerprint hash.
// With a fingerprint the key is "ip:fp-prefix", so distinct devices behind
// one NAT get separate buckets; without one it falls back to the bare IP.
func Key(ip, fingerprintHash string) string {
	if fingerprintHash == "" {
		return ip
	}
	if len(fingerprintHash) > fpPrefixLen {
		fingerprintHash = fingerprintHash[:fpPrefixLen]
	}
	return ip + ":" + fingerprintHash
}
