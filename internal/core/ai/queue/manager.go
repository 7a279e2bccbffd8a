package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"recipe-share/internal/infrastructure/config"
	"recipe-share/internal/pkg/common"

	"go.uber.org/zap"
)

var (
	// ErrQueueFull 隊列已滿
	ErrQueueFull = errors.New("queue is full")
	// ErrQueueClosed 隊列已關閉
	ErrQueueClosed = errors.New("queue manager is closed")
)

// Job 交給 worker 執行的工作
type Job func(ctx context.Context) (interface{}, error)

// Result 處理結果
type Result struct {
	Value interface{}
	Error error
}

// request 隊列請求
type request struct {
	ctx    context.Context
	job    Job
	result chan Result
}

// Status 隊列狀態
type Status struct {
	QueueLength    int   `json:"queue_length"`
	ProcessedCount int64 `json:"processed_count"`
	RejectedCount  int64 `json:"rejected_count"`
	MaxQueueSize   int   `json:"max_queue_size"`
	Workers        int   `json:"workers"`
}

// Manager 隊列管理器，以固定數量的 worker 處理請求
type Manager struct {
	config    config.QueueConfig
	queue     chan *request
	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool
	processed int64
	rejected  int64
}

// NewManager 創建新的隊列管理器並啟動 worker
func NewManager(cfg config.QueueConfig) *Manager {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 1
	}

	m := &Manager{
		config: cfg,
		queue:  make(chan *request, cfg.MaxSize),
	}

	for i := 0; i < cfg.Workers; i++ {
		m.wg.Add(1)
		go m.worker(i)
	}

	common.LogInfo("請求隊列已啟動",
		zap.Int("workers", cfg.Workers),
		zap.Int("max_queue_size", cfg.MaxSize),
	)
	return m
}

// Submit 將工作加入隊列並等待結果；隊列已滿時立即返回 ErrQueueFull
func (m *Manager) Submit(ctx context.Context, job Job) (interface{}, error) {
	req := &request{
		ctx:    ctx,
		job:    job,
		result: make(chan Result, 1),
	}

	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return nil, ErrQueueClosed
	}
	select {
	case m.queue <- req:
		m.mu.RUnlock()
	default:
		m.mu.RUnlock()
		atomic.AddInt64(&m.rejected, 1)
		common.LogWarn("Request rejected, queue is full",
			zap.Int("max_queue_size", m.config.MaxSize),
		)
		return nil, ErrQueueFull
	}

	select {
	case res := <-req.result:
		return res.Value, res.Error
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *Manager) worker(id int) {
	defer m.wg.Done()

	for req := range m.queue {
		if err := req.ctx.Err(); err != nil {
			req.result <- Result{Error: err}
			continue
		}

		value, err := req.job(req.ctx)
		atomic.AddInt64(&m.processed, 1)
		req.result <- Result{Value: value, Error: err}

		common.LogDebug("Request processed", zap.Int("worker", id))
	}
}

// GetQueueStatus 獲取隊列狀態
func (m *Manager) GetQueueStatus() *Status {
	return &Status{
		QueueLength:    len(m.queue),
		ProcessedCount: atomic.LoadInt64(&m.processed),
		RejectedCount:  atomic.LoadInt64(&m.rejected),
		MaxQueueSize:   m.config.MaxSize,
		Workers:        m.config.Workers,
	}
}

// Close 停止接收請求並等待 worker 處理完畢
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	close(m.queue)
	m.mu.Unlock()

	m.wg.Wait()
	common.LogInfo("請求隊列已關閉", zap.Int64("processed", atomic.LoadInt64(&m.processed)))
}
