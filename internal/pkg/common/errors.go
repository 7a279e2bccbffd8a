package common

import (
	"errors"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Error string `json:"error"` // 錯誤信息
	Code  string `json:"code"`  // 錯誤代碼
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 回傳給用戶端的信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Err.Error()
	}
	return e.Code + ": " + e.Message
}

// Unwrap 支援 errors.Is / errors.As
func (e *CustomError) Unwrap() error {
	return e.Err
}

// Is 以錯誤代碼比對，讓 errors.Is(err, ErrNotFound) 可用
func (e *CustomError) Is(target error) bool {
	t, ok := target.(*CustomError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest  = "INVALID_REQUEST"   // 400
	ErrCodeValidation      = "VALIDATION_ERROR"  // 400
	ErrCodeNotFound        = "NOT_FOUND"         // 404
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS" // 429

	// 服務器錯誤 (5xx)
	ErrCodeInternalError      = "INTERNAL_ERROR"      // 500
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE" // 503
	ErrCodeGatewayTimeout     = "GATEWAY_TIMEOUT"     // 504

	// 業務錯誤
	ErrCodeDataFetch        = "DATA_FETCH_ERROR"
	ErrCodeAuthorCreation   = "AUTHOR_CREATION_ERROR"
	ErrCodeRecipeInsert     = "RECIPE_INSERT_ERROR"
	ErrCodeIngredientInsert = "INGREDIENT_INSERT_ERROR"
	ErrCodeStepInsert       = "STEP_INSERT_ERROR"
	ErrCodeGeneration       = "GENERATION_ERROR"
)

// 預定義錯誤（僅用於 errors.Is 比對）
var (
	ErrInvalidRequest     = NewError(ErrCodeInvalidRequest, "Invalid request format", http.StatusBadRequest, nil)
	ErrValidation         = NewError(ErrCodeValidation, "Invalid request", http.StatusBadRequest, nil)
	ErrNotFound           = NewError(ErrCodeNotFound, "Recipe not found", http.StatusNotFound, nil)
	ErrTooManyRequests    = NewError(ErrCodeTooManyRequests, "Too many requests", http.StatusTooManyRequests, nil)
	ErrInternalError      = NewError(ErrCodeInternalError, "Internal server error", http.StatusInternalServerError, nil)
	ErrServiceUnavailable = NewError(ErrCodeServiceUnavailable, "Record store not configured", http.StatusServiceUnavailable, nil)
	ErrGeneration         = NewError(ErrCodeGeneration, "Failed to generate recipe idea", http.StatusInternalServerError, nil)
)

// NewValidationError 創建新的驗證錯誤
func NewValidationError(message string) error {
	return NewError(ErrCodeValidation, message, http.StatusBadRequest, nil)
}

// IsValidationError 檢查是否為驗證錯誤
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// NewDataFetchError 讀取失敗，訊息沿用底層錯誤
func NewDataFetchError(err error) error {
	return wrapWithCause(ErrCodeDataFetch, err)
}

// NewAuthorCreationError 作者建立失敗
func NewAuthorCreationError(err error) error {
	return NewError(ErrCodeAuthorCreation, "User creation failed: "+causeMessage(err), http.StatusInternalServerError, err)
}

// NewRecipeInsertError 食譜寫入失敗
func NewRecipeInsertError(err error) error {
	return wrapWithCause(ErrCodeRecipeInsert, err)
}

// NewIngredientInsertError 食材寫入失敗
func NewIngredientInsertError(err error) error {
	return wrapWithCause(ErrCodeIngredientInsert, err)
}

// NewStepInsertError 步驟寫入失敗
func NewStepInsertError(err error) error {
	return wrapWithCause(ErrCodeStepInsert, err)
}

// NewGenerationError AI 生成失敗；不向用戶端透露供應商細節
func NewGenerationError(err error) error {
	return NewError(ErrCodeGeneration, ErrGeneration.Message, http.StatusInternalServerError, err)
}

func wrapWithCause(code string, err error) error {
	return NewError(code, causeMessage(err), http.StatusInternalServerError, err)
}

func causeMessage(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

// StatusOf 取得錯誤對應的 HTTP 狀態碼
func StatusOf(err error) int {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Status != 0 {
		return ce.Status
	}
	return http.StatusInternalServerError
}

// CodeOf 取得錯誤代碼
func CodeOf(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ErrCodeInternalError
}

// MessageOf 取得可回傳給用戶端的訊息
func MessageOf(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Message
	}
	return ErrInternalError.Message
}
