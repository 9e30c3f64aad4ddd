package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type snapshot struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client, time.Hour), mr
}

func TestRedisCache_SetGet(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, TagCart, "b-1", 0, snapshot{ID: "b-1", Count: 2}))
	assert.True(t, mr.Exists("storefront:cart:v0:b-1"))

	var got snapshot
	require.NoError(t, cache.Get(ctx, TagCart, "b-1", &got))
	assert.Equal(t, 2, got.Count)

	ttl := mr.TTL("storefront:cart:v0:b-1")
	assert.True(t, ttl >= time.Hour)
	assert.True(t, ttl <= time.Hour+6*time.Minute)
}

func TestRedisCache_Miss(t *testing.T) {
	cache, _ := setupTestRedis(t)

	var got snapshot
	assert.ErrorIs(t, cache.Get(context.Background(), TagCart, "missing", &got), ErrCacheMiss)
}

func TestRedisCache_InvalidJSON(t *testing.T) {
	cache, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("storefront:products:v0:p-1", "{not json"))

	var got snapshot
	require.ErrorContains(t, cache.Get(context.Background(), TagProducts, "p-1", &got), "unmarshal products entry failed")
}

func TestRedisCache_InvalidateBumpsVersion(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, TagCart, "b-1", 0, snapshot{ID: "b-1"}))
	require.NoError(t, cache.Set(ctx, TagProducts, "p-1", 0, snapshot{ID: "p-1"}))
	require.NoError(t, cache.Invalidate(ctx, TagCart))

	version, err := mr.Get("storefront:cart:version")
	require.NoError(t, err)
	assert.Equal(t, "1", version)

	var got snapshot
	assert.ErrorIs(t, cache.Get(ctx, TagCart, "b-1", &got), ErrCacheMiss)
	require.NoError(t, cache.Get(ctx, TagProducts, "p-1", &got), "other tags survive")

	current, err := cache.Version(ctx, TagCart)
	require.NoError(t, err)
	assert.Equal(t, int64(1), current)
	require.NoError(t, cache.Set(ctx, TagCart, "b-1", current, snapshot{ID: "b-1", Count: 5}))
	assert.True(t, mr.Exists("storefront:cart:v1:b-1"))

	// a write made under the old version stays invisible
	require.NoError(t, cache.Set(ctx, TagCart, "b-2", 0, snapshot{ID: "b-2"}))
	assert.ErrorIs(t, cache.Get(ctx, TagCart, "b-2", &got), ErrCacheMiss)
}

func TestRedisCache_Unavailable(t *testing.T) {
	cache, mr := setupTestRedis(t)
	mr.Close()

	var got snapshot
	err := cache.Get(context.Background(), TagCart, "b-1", &got)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}
