package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"recipe-share/internal/infrastructure/config"
	"recipe-share/internal/pkg/common"

	"go.uber.org/zap"
)

var (
	// ErrCacheMiss 快取未命中或已過期
	ErrCacheMiss = errors.New("cache miss")
	// ErrCacheFull 快取已滿且無法淘汰
	ErrCacheFull = errors.New("cache is full")
)

// Stats 快取統計
type Stats struct {
	Backend   string  `json:"backend"`
	Size      int     `json:"size"`
	MaxSize   int     `json:"max_size"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	HitRatio  float64 `json:"hit_ratio"`
}

// Store AI 回應快取
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Stats(ctx context.Context) Stats
	Close() error
}

// NewStore 依設定建立快取；停用時回傳 nil
func NewStore(cfg config.CacheConfig) (Store, error) {
	if !cfg.Enabled {
		common.LogInfo("Cache disabled")
		return nil, nil
	}

	switch cfg.Backend {
	case config.CacheBackendRedis:
		rs, err := NewRedisStore(cfg)
		if err != nil {
			return nil, err
		}
		return rs, nil
	case config.CacheBackendMemory, "":
		return NewManager(cfg), nil
	default:
		common.LogError("未知的快取後端", zap.String("backend", cfg.Backend))
		return nil, fmt.Errorf("unsupported cache backend: %s", cfg.Backend)
	}
}

// Key 依提示詞產生快取鍵
func Key(parts ...string) string {
	return "text:" + common.HashString(strings.Join(parts, "\x00"))
}

func hitRatio(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
