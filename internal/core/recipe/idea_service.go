package recipe

import (
	"context"
	"fmt"
	"strings"

	"recipe-share/internal/core/ai/provider"
	"recipe-share/internal/pkg/common"

	"go.uber.org/zap"
)

const (
	ideaPromptTemplate = "根据以下食材提供一个适合留学生的食谱：%s。请返回JSON格式，包含：title (标题), description (简短描述), ingredients (数组, 每项包含name和amount), steps (数组, 每项包含description)。"

	stepImagePromptPrefix = "A high quality, appetizing real-life photo of cooking step: "
)

// TextGenerator 文字生成介面，由 AI 服務實作
type TextGenerator interface {
	Generate(ctx context.Context, req *provider.Request) (*provider.Response, error)
}

// IdeaSchema 食譜靈感的固定輸出結構
func IdeaSchema() *provider.Schema {
	return &provider.Schema{
		Type: "OBJECT",
		Properties: map[string]*provider.Schema{
			"title":       {Type: "STRING"},
			"description": {Type: "STRING"},
			"ingredients": {
				Type: "ARRAY",
				Items: &provider.Schema{
					Type: "OBJECT",
					Properties: map[string]*provider.Schema{
						"name":   {Type: "STRING"},
						"amount": {Type: "STRING"},
					},
				},
			},
			"steps": {
				Type: "ARRAY",
				Items: &provider.Schema{
					Type: "OBJECT",
					Properties: map[string]*provider.Schema{
						"description": {Type: "STRING"},
					},
				},
			},
		},
		Required: []string{"title", "description", "ingredients", "steps"},
	}
}

// BuildIdeaPrompt 組合食材提示詞
func BuildIdeaPrompt(ingredientsText string) string {
	return fmt.Sprintf(ideaPromptTemplate, ingredientsText)
}

// IdeaService 根據食材生成食譜靈感
type IdeaService struct {
	generator TextGenerator
}

// NewIdeaService 創建食譜靈感服務
func NewIdeaService(generator TextGenerator) *IdeaService {
	return &IdeaService{generator: generator}
}

// Suggest 根據食材文字生成食譜
func (s *IdeaService) Suggest(ctx context.Context, ingredientsText string) (*Idea, error) {
	text := strings.TrimSpace(ingredientsText)
	if text == "" {
		return nil, common.NewValidationError("Ingredients are required")
	}
	if s.generator == nil {
		common.LogWarn("AI 服務未設定")
		return nil, common.NewGenerationError(fmt.Errorf("text generator not configured"))
	}

	resp, err := s.generator.Generate(ctx, &provider.Request{
		Prompt:   BuildIdeaPrompt(text),
		Schema:   IdeaSchema(),
		Validate: func(content string) error {
			_, err := parseIdea(content)
			return err
		},
	})
	if err != nil {
		return nil, common.NewGenerationError(err)
	}
	if resp == nil {
		return nil, common.NewGenerationError(fmt.Errorf("empty AI response"))
	}

	idea, err := parseIdea(resp.Content)
	if err != nil {
		common.LogWarn("解析 AI 回應失敗",
			zap.String("content", truncate(resp.Content, 200)),
			zap.Error(err),
		)
		return nil, common.NewGenerationError(err)
	}
	return idea, nil
}

// parseIdea 從模型輸出取出食譜 JSON
func parseIdea(content string) (*Idea, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("empty AI response")
	}

	jsonStr, err := common.ExtractJSONObject(content)
	if err != nil {
		return nil, err
	}

	var idea Idea
	if err := common.ParseJSON(jsonStr, &idea); err != nil {
		return nil, err
	}
	if idea.Ingredients == nil {
		idea.Ingredients = []Ingredient{}
	}
	if idea.Steps == nil {
		idea.Steps = []IdeaStep{}
	}
	return &idea, nil
}

// StepImagePrompt 生成步驟配圖的提示詞
func (s *IdeaService) StepImagePrompt(description string) (string, error) {
	desc := strings.TrimSpace(description)
	if desc == "" {
		return "", common.NewValidationError("Step description is required")
	}
	return stepImagePromptPrefix + desc, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
