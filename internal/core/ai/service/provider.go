package service

import (
	"recipe-share/internal/core/ai/gemini"
	"recipe-share/internal/core/ai/openrouter"
	"recipe-share/internal/core/ai/provider"
	"recipe-share/internal/infrastructure/config"
	"recipe-share/internal/pkg/common"

	"go.uber.org/zap"
)

// NewProvider 依設定選擇供應商；未設定 API Key 時回傳 nil
func NewProvider(cfg *config.Config) provider.Provider {
	settings := cfg.ProviderSettings()
	if settings.APIKey == "" {
		common.LogWarn("AI 供應商未設定 API Key，食譜靈感功能停用",
			zap.String("provider", cfg.AI.Provider),
		)
		return nil
	}

	timeout := settings.Timeout
	if timeout <= 0 {
		timeout = cfg.AI.Timeout
	}
	pc := provider.Config{
		APIKey:      settings.APIKey,
		Model:       settings.Model,
		BaseURL:     settings.BaseURL,
		Timeout:     timeout,
		MaxTokens:   settings.MaxTokens,
		Temperature: settings.Temperature,
	}

	switch cfg.AI.Provider {
	case config.ProviderOpenRouter:
		return openrouter.NewClient(pc)
	default:
		return gemini.NewClient(pc)
	}
}
