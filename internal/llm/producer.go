package llm

import (
	"context"
	"strings"
	"sync"
	"time"
)

// DefaultQuestionTemplate 默认问题生成提示词模板
// 包含变量：
// {{.Context}} - 文本块内容
const DefaultQuestionTemplate = `Generate a question about: {{.Context}}`

// ProducerConfig 问题生成配置
type ProducerConfig struct {
	// 提示词模板
	Template string
	// 最大生成长度
	MaxTokens int
	// 束搜索宽度
	NumBeams int
	// 温度参数
	Temperature float32
	// 是否启用采样
	Sampling bool
	// 单个文本块的超时时间
	Timeout time.Duration
}

// DefaultProducerConfig 默认问题生成配置
func DefaultProducerConfig() *ProducerConfig {
	return &ProducerConfig{
		Template:    DefaultQuestionTemplate,
		MaxTokens:   100,
		NumBeams:    5,
		Temperature: 0.7,
		Sampling:    true,
		Timeout:     60 * time.Second,
	}
}

// ProducerOption 问题生成配置选项函数类型
type ProducerOption func(*ProducerConfig)

// WithTemplate 设置提示词模板
func WithTemplate(template string) ProducerOption {
	return func(c *ProducerConfig) {
		c.Template = template
	}
}

// WithProducerMaxTokens 设置最大生成长度
func WithProducerMaxTokens(tokens int) ProducerOption {
	return func(c *ProducerConfig) {
		c.MaxTokens = tokens
	}
}

// WithProducerNumBeams 设置束搜索宽度
func WithProducerNumBeams(beams int) ProducerOption {
	return func(c *ProducerConfig) {
		c.NumBeams = beams
	}
}

// WithProducerTemperature 设置温度参数
func WithProducerTemperature(temp float32) ProducerOption {
	return func(c *ProducerConfig) {
		c.Temperature = temp
	}
}

// WithProducerSampling 设置是否启用采样
func WithProducerSampling(enable bool) ProducerOption {
	return func(c *ProducerConfig) {
		c.Sampling = enable
	}
}

// WithProducerTimeout 设置单个文本块的超时时间
func WithProducerTimeout(timeout time.Duration) ProducerOption {
	return func(c *ProducerConfig) {
		c.Timeout = timeout
	}
}

// QuestionProducer 根据文本块生成候选问题
type QuestionProducer struct {
	Client Client          // 生成模型客户端
	config *ProducerConfig // 配置
	mu     sync.RWMutex    // 配置互斥锁
}

// NewQuestionProducer 创建问题生成器
func NewQuestionProducer(client Client, opts ...ProducerOption) *QuestionProducer {
	cfg := DefaultProducerConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &QuestionProducer{
		Client: client,
		config: cfg,
	}
}

// Produce 为一个文本块生成n个原始候选
// 空白文本块不调用模型
func (p *QuestionProducer) Produce(ctx context.Context, chunk string, n int) ([]string, error) {
	if strings.TrimSpace(chunk) == "" || n <= 0 {
		return nil, nil
	}

	p.mu.RLock()
	cfg := *p.config
	p.mu.RUnlock()

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	resp, err := p.Client.Generate(
		ctx,
		p.BuildPrompt(chunk),
		WithGenerateNumSequences(n),
		WithGenerateNumBeams(cfg.NumBeams),
		WithGenerateSampling(cfg.Sampling),
		WithGenerateTemperature(cfg.Temperature),
		WithGenerateMaxTokens(cfg.MaxTokens),
	)
	if err != nil {
		return nil, err
	}

	if len(resp.Texts) == 0 && resp.Text != "" {
		return []string{resp.Text}, nil
	}
	return resp.Texts, nil
}

// BuildPrompt 用文本块填充提示词模板
func (p *QuestionProducer) BuildPrompt(chunk string) string {
	p.mu.RLock()
	template := p.config.Template
	p.mu.RUnlock()

	return strings.ReplaceAll(template, "{{.Context}}", chunk)
}

// SetTemplate 设置自定义提示词模板
func (p *QuestionProducer) SetTemplate(template string) *QuestionProducer {
	p.mu.Lock()
	p.config.Template = template
	p.mu.Unlock()
	return p
}
