package services

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/doc-QG-system/internal/logger"
	"github.com/fyerfyer/doc-QG-system/internal/models"
)

// generatorOptions 生成器的公共配置
type generatorOptions struct {
	defaults    *Defaults      // 默认参数，nil时使用语言默认值
	minLength   int            // 问题最小长度
	maxPerChunk int            // 每块问题数的兜底值
	timeout     time.Duration  // 单次翻译超时
	pivot       string         // 中间语言代码
	logger      *logrus.Logger // 日志
}

// resolve 按语言默认值解析请求参数
func (o *generatorOptions) resolve(lang models.Language, req models.GenerationRequest) (resolved, error) {
	d := DefaultsFor(lang)
	if o.defaults != nil {
		d = *o.defaults
	}
	return d.resolve(req, o.maxPerChunk)
}

// GeneratorOption 生成器配置选项
type GeneratorOption func(*generatorOptions)

// WithDefaults 设置默认生成参数
func WithDefaults(d Defaults) GeneratorOption {
	return func(o *generatorOptions) {
		o.defaults = &d
	}
}

// WithMinLength 设置问题最小长度
func WithMinLength(n int) GeneratorOption {
	return func(o *generatorOptions) {
		o.minLength = n
	}
}

// WithMaxPerChunk 设置每块问题数的兜底值
func WithMaxPerChunk(n int) GeneratorOption {
	return func(o *generatorOptions) {
		o.maxPerChunk = n
	}
}

// WithTranslateTimeout 设置单次翻译超时
func WithTranslateTimeout(timeout time.Duration) GeneratorOption {
	return func(o *generatorOptions) {
		o.timeout = timeout
	}
}

// WithPivot 设置中间语言
func WithPivot(code string) GeneratorOption {
	return func(o *generatorOptions) {
		o.pivot = code
	}
}

// WithLogger 设置日志
func WithLogger(l *logrus.Logger) GeneratorOption {
	return func(o *generatorOptions) {
		o.logger = l
	}
}

func newGeneratorOptions(minLength int, opts []GeneratorOption) generatorOptions {
	o := generatorOptions{
		minLength:   minLength,
		maxPerChunk: 3,
		timeout:     10 * time.Second,
		pivot:       "en",
		logger:      logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
