// Package valuecache keeps recently read value objects in Redis so repeated
// dereferences of shared positions, orientations and objects skip the
// database.
package valuecache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pycramdb/action"
)

// kv is the subset of *redis.Client the cache needs.
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

type RedisCache struct {
	client kv
	ttl    time.Duration
}

// NewRedisCache wraps client. A ttl of zero keeps entries until evicted.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func valueKey(kind action.ValueKind, id int64) string {
	return fmt.Sprintf("pycramdb:%s:%d", kind, id)
}

// Get decodes the cached value into dst and reports whether it was present.
func (c *RedisCache) Get(ctx context.Context, kind action.ValueKind, id int64, dst any) (bool, error) {
	data, err := c.client.Get(ctx, valueKey(kind, id)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode cached %s %d: %w", kind, id, err)
	}
	return true, nil
}

func (c *RedisCache) Put(ctx context.Context, kind action.ValueKind, id int64, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, valueKey(kind, id), data, c.ttl).Err()
}
