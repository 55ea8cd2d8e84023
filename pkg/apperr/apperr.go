// Package apperr 提供带 HTTP 状态码的应用错误类型
// 所有业务错误最终通过 handler 层的统一出口映射为响应
package apperr

import (
	"errors"
	"net/http"
)

// AppError 应用错误
// Status: 映射到 HTTP 响应的状态码
// Message: 返回给调用方的提示信息
type AppError struct {
	Status  int    // HTTP 状态码
	Message string // 错误信息
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	return e.Message
}

// New 创建指定状态码的应用错误
func New(status int, message string) *AppError {
	return &AppError{Status: status, Message: message}
}

// Validation 创建 400 校验错误
// 校验错误在任何副作用发生之前返回
func Validation(message string) *AppError {
	return New(http.StatusBadRequest, message)
}

// Configuration 创建 500 配置错误
// 使用固定文案，绝不透出上游携带的密钥信息
func Configuration() *AppError {
	return New(http.StatusInternalServerError, "Invalid API key configuration")
}

// Timeout 创建 504 超时错误，提示调用方重试
func Timeout() *AppError {
	return New(http.StatusGatewayTimeout, "AI response timeout - please try again")
}

// EmptyResponse 创建 500 空响应错误
func EmptyResponse() *AppError {
	return New(http.StatusInternalServerError, "No response from AI model")
}

// Generation 创建生成失败错误
// status 为 0 时默认 500
func Generation(message string, status int) *AppError {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	if message == "" {
		message = "Failed to generate AI response"
	}
	return New(status, message)
}

// From 将任意错误收敛为 AppError
// 已分类的错误原样返回，未分类的错误包装为 fallback 文案的 500
// 分类信息只会被默认，不会被丢弃
func From(err error, fallback string) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return New(http.StatusInternalServerError, fallback)
}
