package api

import (
	"time"

	"recipe-share/internal/api/handlers/health"
	recipeHandler "recipe-share/internal/api/handlers/recipe"
	"recipe-share/internal/api/middleware"
	"recipe-share/internal/core/ai/cache"
	"recipe-share/internal/core/ai/provider"
	"recipe-share/internal/core/ai/queue"
	"recipe-share/internal/core/ai/service"
	recipeService "recipe-share/internal/core/recipe"
	"recipe-share/internal/infrastructure/config"
	"recipe-share/internal/infrastructure/monitoring"
	"recipe-share/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services 路由使用的服務集合
type Services struct {
	Store      recipeService.RecordStore
	Cache      cache.Store
	AI         *service.Service
	Aggregator *recipeService.Aggregator
	Writer     *recipeService.Writer
	Ideas      *recipeService.IdeaService
	Metrics    *monitoring.MetricsCollector
}

// NewServices 組裝服務；store、cacheStore、p 皆可為 nil
func NewServices(cfg *config.Config, store recipeService.RecordStore, cacheStore cache.Store, p provider.Provider) *Services {
	metrics := monitoring.NewMetricsCollector()

	var generator recipeService.TextGenerator
	var aiService *service.Service
	if p != nil {
		aiService = service.NewService(p, cacheStore, queue.NewManager(cfg.Queue), metrics)
		generator = aiService
	}

	common.LogInfo("Initializing services",
		zap.Bool("store_configured", store != nil),
		zap.Bool("cache_enabled", cacheStore != nil),
		zap.Bool("ai_configured", p != nil),
		zap.Int("queue_workers", cfg.Queue.Workers),
	)

	return &Services{
		Store:      store,
		Cache:      cacheStore,
		AI:         aiService,
		Aggregator: recipeService.NewAggregator(store, cfg.Recipe.FetchConcurrency),
		Writer:     recipeService.NewWriter(store),
		Ideas:      recipeService.NewIdeaService(generator),
		Metrics:    metrics,
	}
}

// Close 釋放服務資源
func (s *Services) Close() {
	if s.AI != nil {
		if err := s.AI.Close(); err != nil {
			common.LogWarn("關閉 AI 服務失敗", zap.Error(err))
		}
	}
	if s.Cache != nil {
		if err := s.Cache.Close(); err != nil {
			common.LogWarn("關閉快取失敗", zap.Error(err))
		}
	}
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, svc *Services) *gin.Engine {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())
	if cfg.Metrics.Enabled {
		router.Use(svc.Metrics.HTTPMiddleware())
	}

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:   []string{"Content-Length", "X-Request-ID"},
		MaxAge:          12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(cfg.Recipe.MaxBodySize))
	router.Use(middleware.Timeout(cfg.Recipe.RequestTimeout))

	// 健康檢查路由；避免把 nil 指標包成非 nil 介面
	var pinger health.Pinger
	if svc.Store != nil {
		pinger = svc.Store
	}
	var queueStatus health.QueueStatusFunc
	if svc.AI != nil {
		queueStatus = svc.AI.QueueStatus
	}
	healthHandler := health.NewHandler(cfg.App.Version, pinger, svc.Cache, queueStatus)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, gin.WrapH(svc.Metrics.Handler()))
	}

	api := router.Group("/api")
	{
		recipes := recipeHandler.NewHandler(svc.Aggregator, svc.Writer, svc.Metrics)
		dedup := middleware.NewDeduplicator(cfg.DedupWindow)

		recipeGroup := api.Group("/recipes")
		{
			recipeGroup.GET("", recipes.HandleList)
			recipeGroup.GET("/:id", recipes.HandleGet)
			recipeGroup.POST("", dedup.Middleware(), recipes.HandleCreate)
		}

		ideas := recipeHandler.NewIdeaHandler(svc.Ideas)
		geminiGroup := api.Group("/gemini")
		if cfg.RateLimit.Enabled {
			limiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window, cfg.RateLimit.Burst)
			geminiGroup.Use(middleware.RateLimit(limiter))
		}
		{
			geminiGroup.POST("/generate", ideas.HandleGenerate)
			geminiGroup.POST("/step-image-prompt", ideas.HandleStepImagePrompt)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("store_configured", svc.Store != nil),
		zap.Bool("ai_configured", svc.AI != nil),
		zap.Bool("metrics_enabled", cfg.Metrics.Enabled),
		zap.Duration("timeout", cfg.Recipe.RequestTimeout),
		zap.Int64("max_body_size", cfg.Recipe.MaxBodySize),
	)

	return router
}
