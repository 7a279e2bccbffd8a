package middleware

import (
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"recipe-share/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiter 以用戶端 IP 區分的令牌桶限流器
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*visitor
	limit    rate.Limit
	burst    int
	window   time.Duration
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter 創建新的限流器：每個 window 允許 requests 次，突發上限 burst
func NewRateLimiter(requests int, window time.Duration, burst int) *RateLimiter {
	if burst <= 0 {
		burst = requests
	}
	return &RateLimiter{
		limiters: make(map[string]*visitor),
		limit:    rate.Limit(float64(requests) / window.Seconds()),
		burst:    burst,
		window:   window,
	}
}

// Allow 檢查是否允許請求
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	v, ok := rl.limiters[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[key] = v
	}
	v.lastSeen = now

	// 順便清理閒置的 visitor
	if len(rl.limiters) > 1024 {
		for k, other := range rl.limiters {
			if now.Sub(other.lastSeen) > 3*rl.window {
				delete(rl.limiters, k)
			}
		}
	}

	return v.limiter.AllowN(now, 1)
}

// RateLimit 限流中間件
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	retryAfter := int(math.Ceil(limiter.window.Seconds()))

	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			common.LogWarn("Rate limit exceeded",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)

			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.ErrorResponse{
				Error: common.ErrTooManyRequests.Message,
				Code:  common.ErrCodeTooManyRequests,
			})
			return
		}

		c.Next()
	}
}
