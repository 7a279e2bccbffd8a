package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recipe-share/internal/core/ai/cache"
	"recipe-share/internal/core/ai/provider"
	"recipe-share/internal/core/ai/queue"
	"recipe-share/internal/pkg/common"

	"go.uber.org/zap"
)

// ErrProviderNotConfigured 未設定 AI 供應商
var ErrProviderNotConfigured = errors.New("ai provider not configured")

// Observer 接收 AI 呼叫結果，供監控使用
type Observer interface {
	ObserveAIRequest(model string, duration time.Duration, cacheHit bool, err error)
}

// Service AI 服務：快取 + 隊列 + 供應商
type Service struct {
	provider provider.Provider
	cache    cache.Store
	queue    *queue.Manager
	observer Observer
}

// NewService 創建 AI 服務；cacheStore、queueManager 與 observer 皆可為 nil
func NewService(p provider.Provider, cacheStore cache.Store, queueManager *queue.Manager, observer Observer) *Service {
	return &Service{
		provider: p,
		cache:    cacheStore,
		queue:    queueManager,
		observer: observer,
	}
}

// Generate 統一對外方法
func (s *Service) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	if s.provider == nil {
		return nil, ErrProviderNotConfigured
	}
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}

	model := s.provider.GetModel()
	key := s.cacheKey(req)

	// 檢查緩存；不合格的舊值視為未命中
	if s.cache != nil {
		if val, err := s.cache.Get(ctx, key); err == nil && val != "" && validate(req, val) == nil {
			s.observe(model, 0, true, nil)
			return &provider.Response{Content: val, Model: model, CacheHit: true}, nil
		} else if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
			common.LogWarn("讀取快取失敗", zap.Error(err))
		}
	}

	start := time.Now()
	resp, err := s.call(ctx, req)
	duration := time.Since(start)

	common.LogAICall(model, duration, err)
	s.observe(model, duration, false, err)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := validate(req, resp.Content); err != nil {
			common.LogWarn("回應未通過檢查，不寫入快取", zap.String("model", model), zap.Error(err))
		} else if err := s.cache.Set(ctx, key, resp.Content); err != nil {
			common.LogWarn("寫入快取失敗", zap.Error(err))
		}
	}

	return resp, nil
}

func validate(req *provider.Request, content string) error {
	if req.Validate == nil {
		return nil
	}
	return req.Validate(content)
}

// call 經由隊列呼叫供應商；未設定隊列時直接呼叫
func (s *Service) call(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	timeout := s.provider.GetTimeout()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if s.queue == nil {
		return s.provider.Generate(ctx, req)
	}

	value, err := s.queue.Submit(ctx, func(ctx context.Context) (interface{}, error) {
		return s.provider.Generate(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	resp, ok := value.(*provider.Response)
	if !ok || resp == nil {
		return nil, fmt.Errorf("unexpected provider result")
	}
	return resp, nil
}

// cacheKey 提示詞原文參與雜湊，不做空白壓縮
func (s *Service) cacheKey(req *provider.Request) string {
	schema := ""
	if req.Schema != nil {
		if data, err := common.ToJSON(req.Schema); err == nil {
			schema = data
		}
	}
	return cache.Key(s.provider.GetModel(), req.Prompt, schema)
}

func (s *Service) observe(model string, d time.Duration, cacheHit bool, err error) {
	if s.observer != nil {
		s.observer.ObserveAIRequest(model, d, cacheHit, err)
	}
}

// Model 目前使用的模型
func (s *Service) Model() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.GetModel()
}

// QueueStatus 隊列狀態
func (s *Service) QueueStatus() *queue.Status {
	if s.queue == nil {
		return nil
	}
	return s.queue.GetQueueStatus()
}

// Close 關閉供應商與隊列
func (s *Service) Close() error {
	if s.queue != nil {
		s.queue.Close()
	}
	if s.provider != nil {
		return s.provider.Close()
	}
	return nil
}
