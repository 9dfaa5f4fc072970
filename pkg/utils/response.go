package utils

import (
	"net/http"

	"project-tracker/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Response 统一错误响应结构
type Response struct {
	Code    int         `json:"code"`
	Reason  string      `json:"reason,omitempty"`
	Message string      `json:"message"`
	Detail  string      `json:"detail,omitempty"` // 详细错误信息（可选）
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应, 直接输出载荷
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// SuccessWithMessage 带消息的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    errors.CodeSuccess,
		Message: message,
		Data:    data,
	})
}

// Error 错误响应, HTTP 状态码取自 AppError
func Error(c *gin.Context, err error) {
	if appErr, ok := errors.As(err); ok {
		c.JSON(appErr.HTTPStatus(), Response{
			Code:    appErr.Code,
			Reason:  appErr.Reason,
			Message: appErr.Message,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, Response{
		Code:    errors.CodeInternalError,
		Message: err.Error(),
	})
}

// ErrorWithCode 自定义错误响应
func ErrorWithCode(c *gin.Context, code int, message string) {
	appErr := errors.New(code, message)
	c.JSON(appErr.HTTPStatus(), Response{
		Code:    code,
		Message: message,
	})
}

// BindError 请求绑定/校验失败, detail 为可读的字段错误
func BindError(c *gin.Context, err error) {
	ErrorWithDetail(c, errors.CodeBadRequest, "请求参数错误", FormatValidationError(err))
}

// ErrorWithDetail 带详细信息的错误响应
func ErrorWithDetail(c *gin.Context, code int, message, detail string) {
	appErr := errors.New(code, message)
	reason := ""
	if code == errors.CodeBadRequest {
		reason = errors.ReasonValidation
	}
	c.JSON(appErr.HTTPStatus(), Response{
		Code:    code,
		Reason:  reason,
		Message: message,
		Detail:  detail,
	})
}
