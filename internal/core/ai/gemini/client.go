package gemini

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
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-3-flash-preview"
)

// Client Gemini generateContent 客戶端
type Client struct {
	client *resty.Client
	cfg    provider.Config
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string           `json:"responseMimeType,omitempty"`
	ResponseSchema   *provider.Schema `json:"responseSchema,omitempty"`
	MaxOutputTokens  int              `json:"maxOutputTokens,omitempty"`
	Temperature      *float64         `json:"temperature,omitempty"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	ModelVersion string `json:"modelVersion"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// NewClient 創建 Gemini 客戶端
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
		SetHeader("x-goog-api-key", cfg.APIKey)

	return &Client{
		client: client,
		cfg:    cfg,
	}
}

// Generate 呼叫 generateContent，有 Schema 時要求 JSON 輸出
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	body := &generateRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: req.Prompt}}},
		},
	}

	gc := &generationConfig{}
	if req.Schema != nil {
		gc.ResponseMimeType = "application/json"
		gc.ResponseSchema = req.Schema
	}
	if req.MaxTokens > 0 {
		gc.MaxOutputTokens = req.MaxTokens
	} else if c.cfg.MaxTokens > 0 {
		gc.MaxOutputTokens = c.cfg.MaxTokens
	}
	if t := req.Temperature; t > 0 {
		gc.Temperature = &t
	} else if t := c.cfg.Temperature; t > 0 {
		gc.Temperature = &t
	}
	body.GenerationConfig = gc

	common.LogDebug("Sending request to Gemini", zap.String("model", c.cfg.Model))

	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("model", c.cfg.Model).
		SetBody(body).
		Post("/models/{model}:generateContent")
	if err != nil {
		return nil, fmt.Errorf("failed to send request to Gemini: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		var apiErr errorResponse
		msg := resp.String()
		if json.Unmarshal(resp.Body(), &apiErr) == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		common.LogError("Gemini returned error status",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("model", c.cfg.Model),
		)
		return nil, fmt.Errorf("Gemini API returned error (status %d): %s", resp.StatusCode(), msg)
	}

	var result generateResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse Gemini response: %w", err)
	}
	if len(result.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in Gemini response")
	}

	var sb strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty content in Gemini response (finish reason: %s)", result.Candidates[0].FinishReason)
	}

	model := result.ModelVersion
	if model == "" {
		model = c.cfg.Model
	}
	return &provider.Response{
		Content: text,
		Model:   model,
		Usage: provider.Usage{
			PromptTokens:     result.UsageMetadata.PromptTokenCount,
			CompletionTokens: result.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      result.UsageMetadata.TotalTokenCount,
		},
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
