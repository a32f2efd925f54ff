package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nexnum/sentinel/core/ratelimit"
)

// consumeScript implements the token bucket refill-and-consume step
// atomically server-side, so concurrent replicas never double-spend.
var consumeScript = redis.NewScript(`
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local refill_rate = tonumber(ARGV[2])
local interval_ms = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])
local now_ms = tonumber(ARGV[5])

local data = redis.call('HMGET', key, 'tokens', 'last_refill')
local tokens = tonumber(data[1])
local last_refill = tonumber(data[2])
if tokens == nil or last_refill == nil then
  tokens = capacity
  last_refill = now_ms
end

local max_intervals = math.floor(capacity / refill_rate) + 1
local intervals = math.floor((now_ms - last_refill) / interval_ms)
if intervals > max_intervals then
  intervals = max_intervals
end
if intervals > 0 then
  tokens = math.min(tokens + intervals * refill_rate, capacity)
  last_refill = now_ms
end

tokens = tokens - requested
redis.call('HSET', key, 'tokens', tokens, 'last_refill', last_refill)
redis.call('PEXPIRE', key, interval_ms * (max_intervals + 1))

return {tokens, last_refill + interval_ms}
`)

// RateLimitStore implements ratelimit.Store on Redis, sharing one token
// budget across all instances.
type RateLimitStore struct {
	client *redis.Client
	prefix string
}

// NewRateLimitStore wraps an already-connected client. Keys are namespaced
// under "ratelimit:".
func NewRateLimitStore(client *redis.Client) *RateLimitStore {
	return &RateLimitStore{client: client, prefix: "ratelimit:"}
}

// ConsumeTokens implements ratelimit.Store.
func (s *RateLimitStore) ConsumeTokens(ctx context.Context, key string, tokens int, config ratelimit.Config) (int, time.Time, error) {
	res, err := consumeScript.Run(ctx, s.client, []string{s.prefix + key},
		config.Capacity,
		config.RefillRate,
		config.RefillInterval.Milliseconds(),
		tokens,
		time.Now().UnixMilli(),
	).Int64Slice()
	if err != nil {
		return 0, time.Time{}, errors.Join(ratelimit.ErrStoreUnavailable, err)
	}
	if len(res) != 2 {
		return 0, time.Time{}, ratelimit.ErrStoreUnavailable
	}

	return int(res[0]), time.UnixMilli(res[1]), nil
}

// Reset implements ratelimit.Store.
func (s *RateLimitStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}
