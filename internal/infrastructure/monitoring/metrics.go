package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector Prometheus 指標收集器，每個實例使用自己的 registry
type MetricsCollector struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	recipesCreatedTotal prometheus.Counter
	recipesViewedTotal  prometheus.Counter
	aiRequestsTotal     *prometheus.CounterVec
	aiRequestDuration   *prometheus.HistogramVec
}

// NewMetricsCollector 創建指標收集器
func NewMetricsCollector() *MetricsCollector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &MetricsCollector{
		registry: reg,
		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status_code"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		recipesCreatedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "recipes_created_total",
			Help: "Total number of recipes created",
		}),
		recipesViewedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "recipes_viewed_total",
			Help: "Total number of recipe detail views",
		}),
		aiRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Total number of AI requests",
		}, []string{"model", "status"}),
		aiRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ai_request_duration_seconds",
			Help:    "AI request duration in seconds",
			Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
		}, []string{"model"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// HTTPMiddleware 記錄每個請求的次數與耗時
func (m *MetricsCollector) HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		m.httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func (m *MetricsCollector) RecipeCreated() {
	m.recipesCreatedTotal.Inc()
}

func (m *MetricsCollector) RecipeViewed() {
	m.recipesViewedTotal.Inc()
}

// ObserveAIRequest 記錄 AI 呼叫；快取命中標記為 cache_hit
func (m *MetricsCollector) ObserveAIRequest(model string, duration time.Duration, cacheHit bool, err error) {
	status := "success"
	switch {
	case err != nil:
		status = "error"
	case cacheHit:
		status = "cache_hit"
	}
	m.aiRequestsTotal.WithLabelValues(model, status).Inc()
	if !cacheHit {
		m.aiRequestDuration.WithLabelValues(model).Observe(duration.Seconds())
	}
}

// Handler returns the Prometheus metrics HTTP handler
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry 供測試讀取指標
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}
