package cache

import (
	"context"
	"testing"
	"time"

	"recipe-share/internal/infrastructure/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store := NewRedisStoreWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute, "test:")
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisStore_GetMiss(t *testing.T) {
	store, _ := newMiniredisStore(t)

	val, err := store.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Empty(t, val)
}

func TestRedisStore_SetThenGet(t *testing.T) {
	store, mr := newMiniredisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", `{"title":"Soup"}`))

	val, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"title":"Soup"}`, val)

	// 鍵值帶前綴存放
	assert.True(t, mr.Exists("test:k"))
	assert.False(t, mr.Exists("k"))
	stored, err := mr.Get("test:k")
	require.NoError(t, err)
	assert.Equal(t, `{"title":"Soup"}`, stored)
}

func TestRedisStore_EntriesExpire(t *testing.T) {
	store, mr := newMiniredisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v"))
	assert.Equal(t, time.Minute, mr.TTL("test:k"))

	mr.FastForward(time.Minute + time.Second)

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisStore_Stats(t *testing.T) {
	store, _ := newMiniredisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", "1"))
	require.NoError(t, store.Set(ctx, "b", "2"))
	_, _ = store.Get(ctx, "a")
	_, _ = store.Get(ctx, "missing")

	stats := store.Stats(ctx)
	assert.Equal(t, config.CacheBackendRedis, stats.Backend)
	assert.Equal(t, 2, stats.Size)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRatio, 0.0001)
}

func TestRedisStore_ServerError(t *testing.T) {
	store, mr := newMiniredisStore(t)
	ctx := context.Background()

	mr.SetError("READONLY server is read only")

	_, err := store.Get(ctx, "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
	assert.Error(t, store.Set(ctx, "k", "v"))
}

func TestNewStore_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := NewStore(config.CacheConfig{
		Enabled:   true,
		Backend:   config.CacheBackendRedis,
		RedisAddr: mr.Addr(),
		TTL:       time.Minute,
		KeyPrefix: "recipe:",
	})
	require.NoError(t, err)
	require.IsType(t, &RedisStore{}, store)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Set(context.Background(), "idea", "cached"))
	assert.True(t, mr.Exists("recipe:idea"))
}
