// Package redis provides Redis client initialization plus the Redis-backed
// storage adapters used by the security pipeline: a kv.Store for replay
// nonces, elevation sessions, and device baselines, and a ratelimit.Store
// for shared token buckets.
//
// Connect validates the URL, dials with retries, and verifies connectivity
// with a ping before returning:
//
//	cfg := redis.Config{ConnectionURL: "redis://localhost:6379/0"}
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	store := redis.NewKVStore(client)
//	signer, err := signature.New(secret, store)
//
// SetNX maps to Redis SET NX PX, so replay protection stays atomic across
// replicas sharing one Redis. The rate limit store runs its refill-and-
// consume step in a Lua script for the same reason.
//
// Healthcheck returns a probe function for readiness endpoints. Config is
// populated from REDIS_* environment variables via caarlos0/env.
package redis
