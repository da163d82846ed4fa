package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestValidateLanguage 测试语言验证忽略大小写
func TestValidateLanguage(t *testing.T) {
	assert.True(t, ValidateLanguage("ENGLISH"))
	assert.True(t, ValidateLanguage("english"))
	assert.True(t, ValidateLanguage(" Hindi "))
	assert.True(t, ValidateLanguage("sanskrit"))
	assert.False(t, ValidateLanguage("french"))
	assert.False(t, ValidateLanguage(""))
}

// TestLanguageCode 测试语言代码映射
func TestLanguageCode(t *testing.T) {
	for name, code := range map[string]string{"English": "en", "hindi": "hi", "SANSKRIT": "sa"} {
		lang, ok := ParseLanguage(name)
		assert.True(t, ok, name)
		assert.Equal(t, code, lang.Code())
	}

	lang, ok := ParseLanguage("french")
	assert.False(t, ok)
	assert.Equal(t, "", lang.Code())

	assert.Equal(t, []string{"english", "hindi", "sanskrit"}, LanguageNames())

	// 返回的是副本
	langs := SupportedLanguages()
	langs["french"] = "fr"
	assert.False(t, ValidateLanguage("french"))
}

// TestGenerationRequestValidate 测试请求验证
func TestGenerationRequestValidate(t *testing.T) {
	t.Run("valid request", func(t *testing.T) {
		req := GenerationRequest{Language: "English", Prompt: "  history of rome ", TotalQuestions: 5}
		require.NoError(t, req.Validate())
		assert.Equal(t, "english", req.Language)
		assert.Equal(t, "history of rome", req.Prompt)
		assert.Equal(t, English, req.Lang())
	})

	cases := []struct {
		name    string
		req     GenerationRequest
		message string
	}{
		{"empty prompt", GenerationRequest{Language: "english", Prompt: "   ", TotalQuestions: 5}, MsgEmptyPrompt},
		{"invalid language", GenerationRequest{Language: "french", Prompt: "p", TotalQuestions: 5}, MsgInvalidLang},
		{"zero total", GenerationRequest{Language: "hindi", Prompt: "p", TotalQuestions: 0}, MsgInvalidTotal},
		{"negative top n", GenerationRequest{Language: "hindi", Prompt: "p", TotalQuestions: 3, TopNChunks: -1}, MsgInvalidTotal},
		{"prompt checked first", GenerationRequest{Language: "french", Prompt: "", TotalQuestions: 0}, MsgEmptyPrompt},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			assert.Equal(t, tc.message, UserMessage(err))
		})
	}
}

// TestAppError 测试错误包装与提示信息
func TestAppError(t *testing.T) {
	err := NewValidationError(MsgNoFile, "file path is empty")
	assert.Contains(t, err.Error(), ErrorTypeValidation)
	assert.Contains(t, err.Error(), "file path is empty")

	wrapped := fmt.Errorf("process: %w", err)
	assert.True(t, IsValidation(wrapped))
	assert.Equal(t, MsgNoFile, UserMessage(wrapped))

	assert.False(t, IsValidation(NewExtractionError(MsgNoQuestions)))
	assert.Equal(t, MsgInternal, UserMessage(errors.New("boom")))
}
