// Package response 提供统一的 HTTP 响应格式
// 所有 API 都使用相同的响应结构，便于前端处理
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
// success: 请求是否成功
// data: 成功时的响应数据
// message: 失败时的提示信息
// errors: 字段级校验错误列表，仅校验失败时出现
type Response struct {
	Success bool         `json:"success"`           // 是否成功
	Data    interface{}  `json:"data,omitempty"`    // 响应数据，可选
	Message string       `json:"message,omitempty"` // 提示信息
	Errors  []FieldError `json:"errors,omitempty"`  // 字段级错误，可选
}

// FieldError 单个字段的校验错误
type FieldError struct {
	Field   string `json:"field"`   // 出错的字段名
	Message string `json:"message"` // 错误描述
}

// Success 返回 200 成功响应
// 参数:
//   - c: Gin 上下文
//   - data: 响应数据，可以是任意类型
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// Created 返回 201 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// Fail 返回失败响应（通用）
// 参数:
//   - c: Gin 上下文
//   - httpCode: HTTP 状态码
//   - message: 错误信息
func Fail(c *gin.Context, httpCode int, message string) {
	c.JSON(httpCode, Response{
		Success: false,
		Message: message,
	})
}

// ValidationFailed 返回 400 校验失败响应
// 携带字段级错误列表，便于前端逐项提示
func ValidationFailed(c *gin.Context, errs []FieldError) {
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Message: "Validation error",
		Errors:  errs,
	})
}

// NotFound 返回 404 错误（资源不存在）
func NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, Response{
		Success: false,
		Message: message,
	})
}

// InternalError 返回 500 错误（服务器内部错误）
func InternalError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, Response{
		Success: false,
		Message: message,
	})
}

// TooManyRequests 返回 429 错误（同一会话存在进行中的请求）
func TooManyRequests(c *gin.Context, message string) {
	c.JSON(http.StatusTooManyRequests, Response{
		Success: false,
		Message: message,
	})
}
