package llm

import (
	"context"
	"time"

	"github.com/fyerfyer/doc-QG-system/internal/pyprovider"
)

// Client 生成模型客户端接口
// 负责根据提示词生成一个或多个候选文本
type Client interface {
	// Generate 根据提示词生成候选文本
	Generate(ctx context.Context, prompt string, options ...GenerateOption) (*Response, error)

	// Name 返回模型名称
	Name() string
}

// Loader 需要显式加载模型的客户端
type Loader interface {
	// Load 确认模型可用，失败时返回错误
	Load(ctx context.Context) error
}

// Config 生成模型客户端配置
type Config struct {
	APIKey      string            // API密钥
	BaseURL     string            // API基础URL
	Model       string            // 模型名称
	Project     string            // 云项目ID
	Location    string            // 云区域
	Timeout     time.Duration     // 请求超时时间
	MaxRetries  int               // 最大重试次数
	MaxTokens   int               // 最大生成长度
	Temperature float32           // 采样温度(0.0-2.0)
	TopP        float32           // 核采样概率阈值(0.0-1.0)
	NumBeams    int               // 束搜索宽度
	Sampling    bool              // 是否启用采样
	PyClient    pyprovider.Client // Python推理服务客户端
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Model:       ModelFlanT5Small,
		Location:    "us-central1",
		Timeout:     60 * time.Second,
		MaxRetries:  3,
		MaxTokens:   100,
		Temperature: 0.7,
		TopP:        0.9,
		NumBeams:    5,
		Sampling:    true,
	}
}

// Option 客户端配置选项函数类型
type Option func(*Config)

// WithAPIKey 设置API密钥
func WithAPIKey(apiKey string) Option {
	return func(c *Config) {
		c.APIKey = apiKey
	}
}

// WithBaseURL 设置API基础URL
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithModel 设置模型名称
func WithModel(model string) Option {
	return func(c *Config) {
		c.Model = model
	}
}

// WithProject 设置云项目和区域
func WithProject(project, location string) Option {
	return func(c *Config) {
		c.Project = project
		if location != "" {
			c.Location = location
		}
	}
}

// WithTimeout 设置请求超时时间
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithMaxRetries 设置最大重试次数
func WithMaxRetries(retries int) Option {
	return func(c *Config) {
		c.MaxRetries = retries
	}
}

// WithMaxTokens 设置最大生成长度
func WithMaxTokens(tokens int) Option {
	return func(c *Config) {
		c.MaxTokens = tokens
	}
}

// WithTemperature 设置采样温度
func WithTemperature(temp float32) Option {
	return func(c *Config) {
		c.Temperature = temp
	}
}

// WithNumBeams 设置束搜索宽度
func WithNumBeams(beams int) Option {
	return func(c *Config) {
		c.NumBeams = beams
	}
}

// WithSampling 设置是否启用采样
func WithSampling(enable bool) Option {
	return func(c *Config) {
		c.Sampling = enable
	}
}

// WithPyClient 设置Python推理服务客户端
func WithPyClient(client pyprovider.Client) Option {
	return func(c *Config) {
		c.PyClient = client
	}
}

// NewConfig 创建一个新的配置并应用选项
func NewConfig(opts ...Option) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// GenerateOption 生成请求的选项
type GenerateOption func(*GenerateOptions)

// GenerateOptions 生成请求的选项集合
// 未设置的字段使用客户端配置
type GenerateOptions struct {
	MaxTokens    *int     // 最大生成长度
	Temperature  *float32 // 采样温度
	TopP         *float32 // 核采样概率阈值
	NumBeams     *int     // 束搜索宽度
	Sampling     *bool    // 是否启用采样
	NumSequences int      // 返回的候选数量
}

// NewGenerateOptions 应用选项，候选数量至少为1
func NewGenerateOptions(options ...GenerateOption) *GenerateOptions {
	opts := &GenerateOptions{NumSequences: 1}
	for _, opt := range options {
		opt(opts)
	}
	if opts.NumSequences < 1 {
		opts.NumSequences = 1
	}
	return opts
}

// WithGenerateMaxTokens 设置生成请求的最大长度
func WithGenerateMaxTokens(tokens int) GenerateOption {
	return func(o *GenerateOptions) {
		o.MaxTokens = &tokens
	}
}

// WithGenerateTemperature 设置生成请求的采样温度
func WithGenerateTemperature(temp float32) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = &temp
	}
}

// WithGenerateTopP 设置生成请求的核采样概率阈值
func WithGenerateTopP(topP float32) GenerateOption {
	return func(o *GenerateOptions) {
		o.TopP = &topP
	}
}

// WithGenerateNumBeams 设置束搜索宽度
func WithGenerateNumBeams(beams int) GenerateOption {
	return func(o *GenerateOptions) {
		o.NumBeams = &beams
	}
}

// WithGenerateSampling 设置是否启用采样
func WithGenerateSampling(enable bool) GenerateOption {
	return func(o *GenerateOptions) {
		o.Sampling = &enable
	}
}

// WithGenerateNumSequences 设置返回的候选数量
func WithGenerateNumSequences(n int) GenerateOption {
	return func(o *GenerateOptions) {
		o.NumSequences = n
	}
}

// Factory 生成模型客户端工厂函数类型
type Factory func(opts ...Option) (Client, error)

// 全局注册的客户端工厂函数
var clientFactories = make(map[string]Factory)

// RegisterClient 注册客户端工厂函数
func RegisterClient(name string, factory Factory) {
	clientFactories[name] = factory
}

// NewClient 根据名称创建客户端
func NewClient(name string, opts ...Option) (Client, error) {
	factory, exists := clientFactories[name]
	if !exists {
		return nil, NewLLMError(
			ErrCodeInvalidRequest,
			"llm client type not registered: "+name)
	}
	return factory(opts...)
}
