// Package translate 文本翻译客户端及其装饰器
package translate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fyerfyer/doc-QG-system/internal/llm"
	"github.com/fyerfyer/doc-QG-system/internal/pyprovider"
)

// 翻译错误
var (
	ErrEmptyTranslation = errors.New("translation result is empty")
	ErrSameLanguage     = errors.New("source and target language are the same")
	ErrEmptyText        = errors.New("text to translate is empty")
)

// Translator 翻译客户端接口
// 语言使用ISO 639-1代码
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
	Name() string
}

// 已注册的翻译提供方
const (
	ProviderPython = "python"
	ProviderGoogle = "google"
	ProviderVertex = "vertex"
)

// Config 翻译客户端配置
type Config struct {
	Provider string            // 提供方
	APIKey   string            // Google翻译API密钥
	Endpoint string            // 自定义服务端点
	Model    string            // 模型翻译使用的模型名称
	Project  string            // 云项目ID
	Location string            // 云区域
	Timeout  time.Duration     // 单次调用超时
	PyClient pyprovider.Client // Python推理服务客户端
	LLM      llm.Client        // 已创建的生成模型客户端
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Provider: ProviderPython,
		Model:    llm.ModelGeminiFlash,
		Location: "us-central1",
		Timeout:  10 * time.Second,
	}
}

// Factory 翻译客户端工厂函数类型
type Factory func(config Config) (Translator, error)

var factories = make(map[string]Factory)

// Register 注册翻译客户端工厂函数
func Register(name string, factory Factory) {
	factories[name] = factory
}

// New 根据配置创建翻译客户端
func New(config Config) (Translator, error) {
	factory, ok := factories[config.Provider]
	if !ok {
		return nil, fmt.Errorf("translation provider not registered: %s", config.Provider)
	}
	return factory(config)
}

// checkArgs 校验公共参数
func checkArgs(text, source, target string) error {
	if text == "" {
		return ErrEmptyText
	}
	if source == target {
		return ErrSameLanguage
	}
	return nil
}
