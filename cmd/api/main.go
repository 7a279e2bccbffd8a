package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"recipe-share/internal/api"
	"recipe-share/internal/core/ai/cache"
	"recipe-share/internal/core/ai/service"
	recipeService "recipe-share/internal/core/recipe"
	"recipe-share/internal/infrastructure/config"
	"recipe-share/internal/infrastructure/database"
	"recipe-share/internal/infrastructure/store"
	"recipe-share/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("cache_backend", cfg.Cache.Backend),
	)

	// 資料庫未設定時仍可啟動，食譜 API 回傳 503
	var recordStore recipeService.RecordStore
	db, err := database.Open(cfg.Database)
	switch {
	case errors.Is(err, database.ErrNotConfigured):
		common.LogWarn("資料庫未設定，食譜 API 將回傳 503")
	case err != nil:
		common.LogFatal("Failed to open database", zap.Error(err))
	default:
		recordStore = store.NewGormStore(db)
		defer func() {
			if err := database.Close(db); err != nil {
				common.LogWarn("關閉資料庫失敗", zap.Error(err))
			}
		}()
	}

	// 初始化快取
	cacheStore, err := cache.NewStore(cfg.Cache)
	if err != nil {
		common.LogFatal("Failed to initialize cache", zap.Error(err))
	}

	svc := api.NewServices(cfg, recordStore, cacheStore, service.NewProvider(cfg))
	defer svc.Close()

	router := api.SetupRouter(cfg, svc)

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-serverErr:
		common.LogError("Failed to start server", zap.Error(err))
		return
	}

	common.LogInfo("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
		return
	}

	common.LogInfo("Server exited")
}
