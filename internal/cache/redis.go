package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "storefront"

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: ttl,
	}
}

func (r *RedisCache) Get(ctx context.Context, tag, key string, dst any) error {
	version, err := r.Version(ctx, tag)
	if err != nil {
		return err
	}

	data, err := r.client.Get(ctx, dataKey(tag, version, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("unmarshal %s entry failed: %w", tag, err)
	}
	return nil
}

// Set writes under the given version. A stale version yields a key that Get
// no longer looks at and that expires with its TTL.
func (r *RedisCache) Set(ctx context.Context, tag, key string, version int64, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s entry failed: %w", tag, err)
	}

	jitter := time.Duration(rand.Int63n(int64(r.baseTTL/10) + 1))
	if err := r.client.Set(ctx, dataKey(tag, version, key), data, r.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache) Invalidate(ctx context.Context, tag string) error {
	if err := r.client.Incr(ctx, versionKey(tag)).Err(); err != nil {
		return fmt.Errorf("redis incr failed: %w", err)
	}
	return nil
}

func (r *RedisCache) Version(ctx context.Context, tag string) (int64, error) {
	v, err := r.client.Get(ctx, versionKey(tag)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get version failed: %w", err)
	}
	return v, nil
}

func versionKey(tag string) string {
	return fmt.Sprintf("%s:%s:version", keyPrefix, tag)
}

func dataKey(tag string, version int64, key string) string {
	return fmt.Sprintf("%s:%s:v%d:%s", keyPrefix, tag, version, key)
}
