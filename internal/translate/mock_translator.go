package translate

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockTranslator 基于testify mock的翻译客户端替身，供测试使用
type MockTranslator struct {
	mock.Mock
}

// Translate 实现Translator接口
func (m *MockTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	args := m.Called(ctx, text, source, target)
	return args.String(0), args.Error(1)
}

// Name 实现Translator接口
func (m *MockTranslator) Name() string {
	return "mock"
}

// MapTranslator 按固定映射翻译的替身，未命中的文本返回错误
type MapTranslator struct {
	Entries map[string]string
	Calls   int
}

// Translate 实现Translator接口
func (m *MapTranslator) Translate(_ context.Context, text, _, _ string) (string, error) {
	m.Calls++
	if out, ok := m.Entries[text]; ok {
		return out, nil
	}
	return "", ErrEmptyTranslation
}

// Name 实现Translator接口
func (m *MapTranslator) Name() string {
	return "map"
}
