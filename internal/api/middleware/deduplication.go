package middleware

import (
	"bytes"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-share/internal/pkg/common"
)

// Deduplicator 在時間窗內拒絕完全相同的 POST 請求
type Deduplicator struct {
	mu       sync.Mutex
	window   time.Duration
	requests map[string]time.Time
	lastGC   time.Time
}

// NewDeduplicator 創建去重器
func NewDeduplicator(window time.Duration) *Deduplicator {
	if window <= 0 {
		window = time.Second
	}
	return &Deduplicator{
		window:   window,
		requests: make(map[string]time.Time),
		lastGC:   time.Now(),
	}
}

// seen 記錄指紋，時間窗內重複出現時回傳 true
func (d *Deduplicator) seen(fingerprint string, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	// 定期清理過期指紋
	if now.Sub(d.lastGC) > 10*d.window {
		for k, t := range d.requests {
			if now.Sub(t) > d.window {
				delete(d.requests, k)
			}
		}
		d.lastGC = now
	}

	if last, ok := d.requests[fingerprint]; ok && now.Sub(last) <= d.window {
		return true
	}
	d.requests[fingerprint] = now
	return false
}

// forget 移除 at 時記錄的指紋，讓失敗的請求可立即重試
func (d *Deduplicator) forget(fingerprint string, at time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if recorded, ok := d.requests[fingerprint]; ok && recorded.Equal(at) {
		delete(d.requests, fingerprint)
	}
}

// Middleware 請求去重中間件
func (d *Deduplicator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 只處理 POST 請求
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		// 計算請求體哈希
		bodyHash := ""
		if c.Request.Body != nil {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				common.LogError("Failed to read request body", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusBadRequest, common.ErrorResponse{
					Error: common.ErrInvalidRequest.Message,
					Code:  common.ErrCodeInvalidRequest,
				})
				return
			}
			bodyHash = common.HashString(string(body))

			// 恢復請求體
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}

		// 生成請求指紋
		fingerprint := c.ClientIP() + ":" + c.Request.Method + ":" + c.Request.URL.Path + ":" + bodyHash

		now := time.Now()
		if d.seen(fingerprint, now) {
			common.LogWarn("Duplicate request rejected",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.ErrorResponse{
				Error: "Request too frequent",
				Code:  common.ErrCodeTooManyRequests,
			})
			return
		}

		c.Next()

		// 只有成功的請求佔用時間窗
		if c.Writer.Status() >= http.StatusBadRequest {
			d.forget(fingerprint, now)
		}
	}
}
