package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nexnum/sentinel/core/kv"
)

// KVStore adapts a Redis client to the kv.Store contract. SetNX maps to
// Redis SET NX PX, which gives the replay guard its atomicity across
// replicas sharing one Redis.
type KVStore struct {
	client *redis.Client
}

// NewKVStore wraps an already-connected client.
func NewKVStore(client *redis.Client) *KVStore {
	return &KVStore{client: client}
}

// Get implements kv.Store.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, kv.ErrNotFound
	}
	return val, err
}

// Set implements kv.Store.
func (s *KVStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

// SetNX implements kv.Store.
func (s *KVStore) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, key, value, ttl).Result()
}

// Delete implements kv.Store.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// Exists implements kv.Store.
func (s *KVStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	return n > 0, err
}
