package cache

import (
	"context"
	"sync"
	"time"

	"recipe-share/internal/infrastructure/config"
	"recipe-share/internal/pkg/common"

	"go.uber.org/zap"
)

// CacheManager 記憶體快取管理器
type CacheManager struct {
	config    config.CacheConfig
	mu        sync.Mutex
	store     map[string]cacheEntry
	stats     cacheStats
	stop      chan struct{}
	closeOnce sync.Once
}

// cacheEntry 緩存條目
type cacheEntry struct {
	value       string
	expiresAt   time.Time
	createdAt   time.Time
	lastAccess  time.Time
	accessCount int
}

// cacheStats 緩存統計
type cacheStats struct {
	hits      int64
	misses    int64
	evictions int64
}

// NewManager 創建新的緩存管理器
func NewManager(cfg config.CacheConfig) *CacheManager {
	m := &CacheManager{
		config: cfg,
		store:  make(map[string]cacheEntry),
		stop:   make(chan struct{}),
	}

	// 啟動清理過期緩存的協程
	if cfg.CleanupInterval > 0 {
		go m.startCleanup()
	}

	common.LogInfo("快取管理員已初始化",
		zap.Int("最大容量", cfg.MaxSize),
		zap.Duration("存活時間", cfg.TTL),
		zap.Duration("清理間隔", cfg.CleanupInterval),
	)

	return m
}

// Get 獲取緩存值
func (m *CacheManager) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.store[key]
	if !exists {
		m.stats.misses++
		common.LogCacheMiss("memory")
		return "", ErrCacheMiss
	}

	// 檢查是否過期
	if time.Now().After(entry.expiresAt) {
		delete(m.store, key)
		m.stats.evictions++
		m.stats.misses++
		common.LogDebug("快取已過期", zap.String("鍵", key))
		return "", ErrCacheMiss
	}

	// 更新訪問統計
	entry.lastAccess = time.Now()
	entry.accessCount++
	m.store[key] = entry
	m.stats.hits++

	common.LogCacheHit("memory")
	return entry.value, nil
}

// Set 設置緩存值
func (m *CacheManager) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.store[key]; !exists && m.config.MaxSize > 0 && len(m.store) >= m.config.MaxSize {
		// 清理過期項目
		evicted := m.cleanup()
		common.LogDebug("快取清理執行", zap.Int("清理數量", evicted))

		// 如果仍然超過大小限制，執行 LRU 清理
		if len(m.store) >= m.config.MaxSize {
			m.evictLRU()
		}

		if len(m.store) >= m.config.MaxSize {
			common.LogWarn("快取已滿", zap.Int("目前容量", len(m.store)))
			return ErrCacheFull
		}
	}

	now := time.Now()
	m.store[key] = cacheEntry{
		value:      value,
		expiresAt:  now.Add(m.config.TTL),
		createdAt:  now,
		lastAccess: now,
	}

	common.LogDebug("快取已儲存", zap.String("鍵", key))
	return nil
}

// startCleanup 啟動清理過期緩存的協程
func (m *CacheManager) startCleanup() {
	ticker := time.NewTicker(m.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			m.cleanup()
			m.mu.Unlock()
		case <-m.stop:
			return
		}
	}
}

// cleanup 清理過期的緩存，呼叫者需持有鎖
func (m *CacheManager) cleanup() int {
	now := time.Now()
	count := 0

	for key, entry := range m.store {
		if now.After(entry.expiresAt) {
			delete(m.store, key)
			count++
			m.stats.evictions++
		}
	}

	if count > 0 {
		common.LogDebug("Cleaned up expired cache entries",
			zap.Int("count", count),
			zap.Int64("total_evictions", m.stats.evictions),
			zap.Int("remaining_size", len(m.store)),
		)
	}

	return count
}

// evictLRU 淘汰最少訪問的項目，呼叫者需持有鎖
func (m *CacheManager) evictLRU() {
	var oldestKey string
	var oldestAccess time.Time
	var lowestAccessCount int

	for key, entry := range m.store {
		if oldestKey == "" ||
			entry.accessCount < lowestAccessCount ||
			(entry.accessCount == lowestAccessCount && entry.lastAccess.Before(oldestAccess)) {
			oldestKey = key
			oldestAccess = entry.lastAccess
			lowestAccessCount = entry.accessCount
		}
	}

	if oldestKey != "" {
		delete(m.store, oldestKey)
		m.stats.evictions++
		common.LogDebug("快取已淘汰(LRU)", zap.String("鍵", oldestKey))
	}
}

// Stats 獲取緩存統計信息
func (m *CacheManager) Stats(_ context.Context) Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Stats{
		Backend:   config.CacheBackendMemory,
		Size:      len(m.store),
		MaxSize:   m.config.MaxSize,
		Hits:      m.stats.hits,
		Misses:    m.stats.misses,
		Evictions: m.stats.evictions,
		HitRatio:  hitRatio(m.stats.hits, m.stats.misses),
	}
}

// Close 關閉緩存管理器
func (m *CacheManager) Close() error {
	m.closeOnce.Do(func() {
		close(m.stop)

		m.mu.Lock()
		defer m.mu.Unlock()
		m.store = make(map[string]cacheEntry)
		common.LogInfo("快取管理員已關閉",
			zap.Int64("命中次數", m.stats.hits),
			zap.Int64("未命中次數", m.stats.misses),
			zap.Int64("淘汰次數", m.stats.evictions),
		)
	})
	return nil
}
