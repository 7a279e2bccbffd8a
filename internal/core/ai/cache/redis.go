package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"recipe-share/internal/infrastructure/config"
	"recipe-share/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisStore 以 Redis 儲存 AI 回應，可在多個實例間共用
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	hits   int64
	misses int64
}

// NewRedisStore 創建 Redis 快取並測試連線
func NewRedisStore(cfg config.CacheConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("Redis 快取已連線", zap.String("addr", cfg.RedisAddr))
	return NewRedisStoreWithClient(client, cfg.TTL, cfg.KeyPrefix), nil
}

// NewRedisStoreWithClient 使用既有的 client
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration, prefix string) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
		prefix: prefix,
	}
}

// Get 獲取緩存
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			atomic.AddInt64(&s.misses, 1)
			common.LogCacheMiss("redis")
			return "", ErrCacheMiss
		}
		return "", fmt.Errorf("failed to get cache: %w", err)
	}

	atomic.AddInt64(&s.hits, 1)
	common.LogCacheHit("redis")
	return val, nil
}

// Set 設置緩存
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Stats 獲取快取統計
func (s *RedisStore) Stats(ctx context.Context) Stats {
	hits := atomic.LoadInt64(&s.hits)
	misses := atomic.LoadInt64(&s.misses)

	size := 0
	if n, err := s.client.DBSize(ctx).Result(); err == nil {
		size = int(n)
	}

	return Stats{
		Backend:  config.CacheBackendRedis,
		Size:     size,
		Hits:     hits,
		Misses:   misses,
		HitRatio: hitRatio(hits, misses),
	}
}

// Close 關閉連線
func (s *RedisStore) Close() error {
	return s.client.Close()
}
