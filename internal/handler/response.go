package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/michojekunle/BitGive/internal/logic"
	"github.com/michojekunle/BitGive/internal/model"
)

// Response 统一响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Data:    nil,
	})
}

// FailWithError 按业务错误类型映射HTTP状态码
func FailWithError(c *gin.Context, err error) {
	ErrorResponse(c, statusForError(err), err.Error())
}

// statusForError 业务错误到HTTP状态码的映射
func statusForError(err error) int {
	switch {
	case errors.Is(err, logic.ErrUnauthorized),
		errors.Is(err, logic.ErrNotVerifier),
		errors.Is(err, logic.ErrNotOwner),
		errors.Is(err, logic.ErrNotMinter):
		return http.StatusForbidden
	case errors.Is(err, logic.ErrEmptyName),
		errors.Is(err, logic.ErrInvalidGoal),
		errors.Is(err, logic.ErrInvalidDuration),
		errors.Is(err, logic.ErrInvalidAmount),
		errors.Is(err, logic.ErrInvalidAddress),
		errors.Is(err, logic.ErrInvalidRole),
		errors.Is(err, logic.ErrInvalidTier),
		errors.Is(err, logic.ErrFeeOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, logic.ErrCampaignNotFound),
		errors.Is(err, logic.ErrDonationNotFound),
		errors.Is(err, logic.ErrTokenNotFound):
		return http.StatusNotFound
	case errors.Is(err, logic.ErrPlatformPaused),
		errors.Is(err, logic.ErrCampaignNotVerified),
		errors.Is(err, logic.ErrCampaignNotActive),
		errors.Is(err, logic.ErrCampaignEnded),
		errors.Is(err, logic.ErrCannotWithdraw),
		errors.Is(err, logic.ErrInsufficientBalance),
		errors.Is(err, logic.ErrLastAdmin):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// callerAddress 从请求头提取调用者地址。
// 钱包签名校验由外部网关完成，这里只取已认证的地址。
func callerAddress(c *gin.Context) string {
	return model.NormalizeAddress(c.GetHeader("X-Caller-Address"))
}
