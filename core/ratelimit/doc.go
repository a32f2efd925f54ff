// Package ratelimit provides token bucket rate limiting keyed by client
// identity, with pluggable storage backends.
//
// A bucket holds Capacity tokens and gains RefillRate tokens every
// RefillInterval. Each request spends one token; a spent-dry bucket denies
// until the next refill. Bursts up to Capacity pass through, while the
// sustained rate converges on RefillRate per interval.
//
//	store := ratelimit.NewMemoryStore()
//	limiter, err := ratelimit.New(store, ratelimit.Config{
//		Capacity:       60,
//		RefillRate:     1,
//		RefillInterval: time.Second,
//	})
//	if err != nil {
//		return err
//	}
//
//	result, err := limiter.Allow(ctx, ratelimit.Key(ip, fingerprintHash))
//	if err != nil {
//		return err
//	}
//	if !result.Allowed {
//		// 429, Retry-After: result.RetryAfter()
//	}
//
// Key composes the client IP with a fingerprint hash prefix so devices
// sharing a NAT or corporate egress address each get their own budget, and a
// single abusive device cannot exhaust the bucket for everyone behind it.
//
// MemoryStore is per-process. Multi-instance deployments should share budgets
// through the Redis-backed store in integration/database/redis.
package ratelimit
