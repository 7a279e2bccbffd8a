package recipe

import (
	"net/http"

	recipeService "recipe-share/internal/core/recipe"
	"recipe-share/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GenerateRequest 依食材生成食譜靈感
type GenerateRequest struct {
	Ingredients string `json:"ingredients"`
}

// StepImagePromptRequest 步驟配圖提示詞請求
type StepImagePromptRequest struct {
	Description string `json:"description"`
}

// IdeaHandler AI 食譜靈感處理程序
type IdeaHandler struct {
	ideas *recipeService.IdeaService
}

// NewIdeaHandler 創建 AI 食譜靈感處理程序
func NewIdeaHandler(ideas *recipeService.IdeaService) *IdeaHandler {
	return &IdeaHandler{ideas: ideas}
}

// HandleGenerate POST /api/gemini/generate
func (h *IdeaHandler) HandleGenerate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, common.ErrInvalidRequest)
		return
	}

	common.LogInfo("開始處理食譜靈感請求",
		zap.String("request_id", requestID(c)),
		zap.String("client_ip", c.ClientIP()),
	)

	idea, err := h.ideas.Suggest(c.Request.Context(), req.Ingredients)
	if err != nil {
		writeError(c, err)
		return
	}

	common.LogInfo("食譜靈感生成成功",
		zap.String("request_id", requestID(c)),
		zap.String("title", idea.Title),
	)
	c.JSON(http.StatusOK, idea)
}

// HandleStepImagePrompt POST /api/gemini/step-image-prompt
func (h *IdeaHandler) HandleStepImagePrompt(c *gin.Context) {
	var req StepImagePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, common.ErrInvalidRequest)
		return
	}

	prompt, err := h.ideas.StepImagePrompt(req.Description)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prompt": prompt})
}
