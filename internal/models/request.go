package models

import (
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// GenerationRequest 问题生成请求
// TopNChunks和QuestionsPerChunk为0时使用对应语言的默认值
type GenerationRequest struct {
	Prompt            string `json:"prompt" validate:"required"`
	Language          string `json:"language" validate:"required,language"`
	TotalQuestions    int    `json:"total_questions" validate:"gt=0"`
	TopNChunks        int    `json:"top_n_chunks" validate:"gte=0"`
	QuestionsPerChunk int    `json:"questions_per_chunk" validate:"gte=0"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// getValidator 返回注册了自定义规则的验证器
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("language", func(fl validator.FieldLevel) bool {
			return ValidateLanguage(fl.Field().String())
		})
	})
	return validate
}

// Normalize 规范化请求字段
func (r *GenerationRequest) Normalize() {
	r.Language = strings.ToLower(strings.TrimSpace(r.Language))
	r.Prompt = strings.TrimSpace(r.Prompt)
}

// Validate 验证请求，返回带有用户提示信息的AppError
func (r *GenerationRequest) Validate() error {
	r.Normalize()

	err := getValidator().Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewInternalError(MsgInternal, err.Error())
	}

	// 按字段返回第一个错误
	for _, fe := range verrs {
		switch fe.Field() {
		case "Prompt":
			return NewValidationError(MsgEmptyPrompt, fe.Error())
		case "Language":
			return NewValidationError(MsgInvalidLang, fe.Error())
		default:
			return NewValidationError(MsgInvalidTotal, fe.Error())
		}
	}
	return NewValidationError(MsgInternal, err.Error())
}

// Lang 返回请求的语言名称
func (r *GenerationRequest) Lang() Language {
	lang, _ := ParseLanguage(r.Language)
	return lang
}
