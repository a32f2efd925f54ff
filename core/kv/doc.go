// Package kv defines the shared TTL key-value store contract used by the
// security pipeline for replay nonces and elevation sessions, plus an
// in-memory implementation.
//
// The Store interface is deliberately narrow: Get, Set, SetNX, Delete,
// Exists, all over byte strings with server-enforced expiry. SetNX is the
// atomic "set if absent" primitive that replay protection builds on; an
// Exists check before SetNX is only an optimization, never the source of
// truth.
//
// Two implementations exist:
//
//   - Memory (this package): mutex-guarded map with an optional background
//     sweep. For tests and single-instance deployments.
//   - Redis (integration/database/redis): SET NX PX backed, for
//     multi-instance deployments where nonces must be shared.
//
// Usage:
//
//	store := kv.NewMemory()
//	go store.Start(ctx) // optional background cleanup
//	defer store.Stop()
//
//	ok, err := store.SetNX(ctx, "nonce:abc", []byte("1"), 10*time.Minute)
//	if err != nil {
//		return err
//	}
//	if !ok {
//		// replay: the nonce was already consumed
//	}
package kv
