package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"recipe-share/internal/core/ai/cache"
	"recipe-share/internal/core/ai/queue"
	"recipe-share/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger 可被探測的依賴
type Pinger interface {
	Ping(ctx context.Context) error
}

// QueueStatusFunc 取得隊列狀態
type QueueStatusFunc func() *queue.Status

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Queue     *queue.Status          `json:"queue,omitempty"`
	Cache     *cache.Stats           `json:"cache,omitempty"`
}

// Handler 健康檢查處理器
type Handler struct {
	version     string
	store       Pinger
	cache       cache.Store
	queueStatus QueueStatusFunc
}

// NewHandler 創建健康檢查處理器；store、cacheStore、queueStatus 皆可為 nil
func NewHandler(version string, store Pinger, cacheStore cache.Store, queueStatus QueueStatusFunc) *Handler {
	return &Handler{
		version:     version,
		store:       store,
		cache:       cacheStore,
		queueStatus: queueStatus,
	}
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	if h.queueStatus != nil {
		response.Queue = h.queueStatus()
	}
	if h.cache != nil {
		stats := h.cache.Stats(c.Request.Context())
		response.Cache = &stats
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查處理器，探測資料庫
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ready",
			"database": "disabled",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		common.LogWarn("Readiness check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "not_ready",
			"database": "unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ready",
		"database": "ok",
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
