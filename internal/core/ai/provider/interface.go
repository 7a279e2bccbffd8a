package provider

import (
	"context"
	"strings"
	"time"
)

// Schema 結構化輸出描述，與供應商無關
// Type 使用大寫名稱（OBJECT、STRING、ARRAY…）
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// JSONSchema 轉換為標準 JSON Schema（小寫型別）
func (s *Schema) JSONSchema() map[string]interface{} {
	if s == nil {
		return nil
	}
	out := map[string]interface{}{
		"type": strings.ToLower(s.Type),
	}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Properties) > 0 {
		props := make(map[string]interface{}, len(s.Properties))
		for name, p := range s.Properties {
			props[name] = p.JSONSchema()
		}
		out["properties"] = props
		out["additionalProperties"] = false
	}
	if s.Items != nil {
		out["items"] = s.Items.JSONSchema()
	}
	if len(s.Required) > 0 {
		out["required"] = s.Required
	}
	return out
}

// Request 表示發送到 AI 提供者的請求
// Validate 非 nil 時，只有通過檢查的回應才會寫入快取
type Request struct {
	Prompt      string                     `json:"prompt"`
	Schema      *Schema                    `json:"schema,omitempty"`
	MaxTokens   int                        `json:"max_tokens,omitempty"`
	Temperature float64                    `json:"temperature,omitempty"`
	Validate    func(content string) error `json:"-"`
}

// Usage token 使用量
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response 表示從 AI 提供者收到的響應
type Response struct {
	Content  string `json:"content"`
	Model    string `json:"model"`
	Usage    Usage  `json:"usage"`
	CacheHit bool   `json:"-"`
}

// Provider 定義 AI 提供者介面
type Provider interface {
	// Generate 生成 AI 響應
	Generate(ctx context.Context, req *Request) (*Response, error)

	// GetModel 獲取當前使用的模型名稱
	GetModel() string

	// GetTimeout 獲取請求超時時間
	GetTimeout() time.Duration

	// Close 關閉提供者連接
	Close() error
}

// Config 定義 AI 提供者配置
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}
