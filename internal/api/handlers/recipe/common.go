package recipe

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-share/internal/pkg/common"
)

// writeError 將錯誤轉成 {"error", "code"} 回應
func writeError(c *gin.Context, err error) {
	status := common.StatusOf(err)
	switch {
	case status >= 500:
		common.LogError("請求處理失敗",
			zap.Error(err),
			zap.String("request_id", requestID(c)),
			zap.String("path", c.Request.URL.Path),
		)
	case common.IsValidationError(err):
		common.LogWarn("請求驗證失敗",
			zap.String("request_id", requestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.String("reason", common.MessageOf(err)),
		)
	}
	c.JSON(status, common.ErrorResponse{
		Error: common.MessageOf(err),
		Code:  common.CodeOf(err),
	})
}

// requestID 取得請求 ID，優先使用 requestid 中間件產生的值
func requestID(c *gin.Context) string {
	if id := requestid.Get(c); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}
