package models

import (
	"errors"
	"fmt"
	"strings"
)

// 错误类型常量
const (
	ErrorTypeValidation = "VALIDATION_ERROR" // 输入验证错误
	ErrorTypeExtraction = "EXTRACTION_ERROR" // 文本提取或生成结果为空
	ErrorTypeInternal   = "INTERNAL_ERROR"   // 内部错误
)

// 面向用户的提示信息
const (
	MsgEmptyPrompt    = "Please provide a prompt for question generation."
	MsgInvalidLang    = "Invalid language selected."
	MsgNoFile         = "No file uploaded."
	MsgNoFileSelected = "No file selected."
	MsgInvalidType    = "Invalid file type. Please upload a PDF file."
	MsgFileTooLarge   = "File too large. Please upload a smaller PDF file."
	MsgInvalidTotal   = "Invalid number of questions specified."
	MsgNoQuestions    = "No questions could be generated. Please try with different content or settings."
	MsgInternal       = "An error occurred while processing your request. Please try again."
)

var (
	// ErrUnsupportedLanguage 不支持的语言
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrNoGenerator 未配置对应语言的生成器
	ErrNoGenerator = errors.New("no generator configured for language")
)

// AppError 应用错误结构体
type AppError struct {
	Type    string // 错误类型
	Message string // 面向用户的错误消息
	Details string // 详细错误信息
}

// Error 实现error接口
func (e AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// NewValidationError 创建输入验证错误
func NewValidationError(message string, details ...string) AppError {
	return AppError{
		Type:    ErrorTypeValidation,
		Message: message,
		Details: strings.Join(details, "; "),
	}
}

// NewExtractionError 创建无结果错误
func NewExtractionError(message string, details ...string) AppError {
	return AppError{
		Type:    ErrorTypeExtraction,
		Message: message,
		Details: strings.Join(details, "; "),
	}
}

// NewInternalError 创建内部错误
func NewInternalError(message string, details ...string) AppError {
	return AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Details: strings.Join(details, "; "),
	}
}

// IsValidation 判断是否为输入验证错误
func IsValidation(err error) bool {
	var appErr AppError
	return errors.As(err, &appErr) && appErr.Type == ErrorTypeValidation
}

// UserMessage 返回面向用户的提示信息
func UserMessage(err error) string {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return MsgInternal
}
