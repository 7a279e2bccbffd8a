package recipe

import (
	"net/http"

	recipeService "recipe-share/internal/core/recipe"
	"recipe-share/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recorder 業務指標
type Recorder interface {
	RecipeCreated()
	RecipeViewed()
}

// Handler 食譜處理程序
type Handler struct {
	aggregator *recipeService.Aggregator
	writer     *recipeService.Writer
	recorder   Recorder
}

// NewHandler 創建新的食譜處理程序；recorder 可為 nil
func NewHandler(aggregator *recipeService.Aggregator, writer *recipeService.Writer, recorder Recorder) *Handler {
	return &Handler{
		aggregator: aggregator,
		writer:     writer,
		recorder:   recorder,
	}
}

// HandleList GET /api/recipes
func (h *Handler) HandleList(c *gin.Context) {
	recipes, err := h.aggregator.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	common.LogDebug("食譜列表查詢成功",
		zap.String("request_id", requestID(c)),
		zap.Int("count", len(recipes)),
	)
	c.JSON(http.StatusOK, recipes)
}

// HandleGet GET /api/recipes/:id
func (h *Handler) HandleGet(c *gin.Context) {
	id := c.Param("id")

	view, err := h.aggregator.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	if h.recorder != nil {
		h.recorder.RecipeViewed()
	}
	c.JSON(http.StatusOK, view)
}

// HandleCreate POST /api/recipes
func (h *Handler) HandleCreate(c *gin.Context) {
	var req recipeService.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID(c)),
		)
		writeError(c, common.ErrInvalidRequest)
		return
	}

	common.LogInfo("開始建立食譜",
		zap.String("request_id", requestID(c)),
		zap.String("title", req.Title),
		zap.Int("ingredients", len(req.Ingredients)),
		zap.Int("steps", len(req.Steps)),
	)

	result, err := h.writer.Create(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	if h.recorder != nil {
		h.recorder.RecipeCreated()
	}
	c.JSON(http.StatusCreated, result)
}
