package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"recipe-share/internal/core/ai/provider"
	"recipe-share/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel   = "google/gemini-2.0-flash-001"
)

// Client OpenRouter API 客戶端
type Client struct {
	client *resty.Client
	cfg    provider.Config
}

// Message 消息結構
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat 結構化輸出設定
type ResponseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *JSONSchema `json:"json_schema,omitempty"`
}

// JSONSchema response_format.json_schema
type JSONSchema struct {
	Name   string                 `json:"name"`
	Strict bool                   `json:"strict"`
	Schema map[string]interface{} `json:"schema"`
}

// Request 表示 API 請求
type Request struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float64         `json:"temperature,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// Response OpenRouter 響應結構
type Response struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Usage provider.Usage `json:"usage"`
}

// NewClient 創建新的 OpenRouter 客戶端
func NewClient(cfg provider.Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("HTTP-Referer", "https://recipe-share.app").
		SetHeader("X-Title", "Recipe Share")

	return &Client{
		client: client,
		cfg:    cfg,
	}
}

// Generate 生成回應
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	body := &Request{
		Model: c.cfg.Model,
		Messages: []Message{
			{Role: "user", Content: req.Prompt},
		},
		MaxTokens:   firstPositive(req.MaxTokens, c.cfg.MaxTokens),
		Temperature: req.Temperature,
	}
	if body.Temperature == 0 {
		body.Temperature = c.cfg.Temperature
	}
	if req.Schema != nil {
		body.ResponseFormat = &ResponseFormat{
			Type: "json_schema",
			JSONSchema: &JSONSchema{
				Name:   "response",
				Strict: false,
				Schema: req.Schema.JSONSchema(),
			},
		}
	}

	common.LogDebug("Sending request to OpenRouter", zap.String("model", body.Model))

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		common.LogError("OpenRouter returned error status",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("model", body.Model),
		)
		return nil, fmt.Errorf("OpenRouter API returned error (status %d): %s", resp.StatusCode(), resp.String())
	}

	var result Response
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse OpenRouter response: %w", err)
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("no choices in OpenRouter response")
	}

	content := result.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("empty content in OpenRouter response")
	}

	model := result.Model
	if model == "" {
		model = c.cfg.Model
	}
	return &provider.Response{
		Content: content,
		Model:   model,
		Usage:   result.Usage,
	}, nil
}

// GetModel 獲取模型名稱
func (c *Client) GetModel() string {
	return c.cfg.Model
}

// GetTimeout 獲取超時時間
func (c *Client) GetTimeout() time.Duration {
	return c.cfg.Timeout
}

// Close 關閉客戶端
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
