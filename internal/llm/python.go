package llm

import (
	"context"
	"strings"
	"time"

	"github.com/fyerfyer/doc-QG-system/internal/pyprovider"
)

// PythonClient 通过Python推理服务调用序列到序列模型
type PythonClient struct {
	llm         *pyprovider.LLMClient
	model       string
	maxTokens   int
	numBeams    int
	temperature float32
	sampling    bool
}

// NewPythonClient 创建Python推理服务客户端
func NewPythonClient(opts ...Option) (Client, error) {
	cfg := NewConfig(opts...)

	if cfg.Model == "" {
		return nil, NewLLMError(ErrCodeInvalidRequest, "model name cannot be empty")
	}

	py := cfg.PyClient
	if py == nil {
		pyCfg := pyprovider.DefaultConfig()
		if cfg.BaseURL != "" {
			pyCfg.WithBaseURL(cfg.BaseURL)
		}
		if cfg.Timeout > 0 {
			pyCfg.WithTimeout(cfg.Timeout)
		}
		pyCfg.WithRetry(cfg.MaxRetries, pyCfg.RetryDelay)
		var err error
		if py, err = pyprovider.NewClient(pyCfg); err != nil {
			return nil, WrapError(err, ErrCodeInvalidRequest)
		}
	}

	return &PythonClient{
		llm:         pyprovider.NewLLMClient(py),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		numBeams:    cfg.NumBeams,
		temperature: cfg.Temperature,
		sampling:    cfg.Sampling,
	}, nil
}

// Name 返回模型名称
func (c *PythonClient) Name() string {
	return c.model
}

// Load 请求服务加载模型
func (c *PythonClient) Load(ctx context.Context) error {
	if _, err := c.llm.Load(ctx, c.model); err != nil {
		return WrapError(err, ErrCodeModelUnavailable)
	}
	return nil
}

// Generate 一次请求返回多个候选序列
func (c *PythonClient) Generate(ctx context.Context, prompt string, options ...GenerateOption) (*Response, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, NewLLMError(ErrCodeEmptyPrompt, ErrMsgEmptyPrompt)
	}

	opts := NewGenerateOptions(options...)

	maxTokens := c.maxTokens
	if opts.MaxTokens != nil {
		maxTokens = *opts.MaxTokens
	}
	beams := c.numBeams
	if opts.NumBeams != nil {
		beams = *opts.NumBeams
	}
	temperature := c.temperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}
	sampling := c.sampling
	if opts.Sampling != nil {
		sampling = *opts.Sampling
	}

	resp, err := c.llm.Generate(ctx, prompt,
		pyprovider.WithModel(c.model),
		pyprovider.WithMaxLength(maxTokens),
		pyprovider.WithNumBeams(beams),
		pyprovider.WithNumReturnSequences(opts.NumSequences),
		pyprovider.WithSampling(sampling),
		pyprovider.WithTemperature(float64(temperature)),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, NewLLMError(ErrCodeTimeout, ctx.Err().Error())
		}
		return nil, WrapError(err, ErrCodeServerError)
	}
	if len(resp.Texts) == 0 {
		return nil, NewLLMError(ErrCodeEmptyResponse, ErrMsgEmptyResponse)
	}

	return &Response{
		Text:       resp.Texts[0],
		Texts:      resp.Texts,
		ModelName:  c.model,
		FinishTime: time.Now(),
	}, nil
}

func init() {
	RegisterClient(ProviderPython, NewPythonClient)
}
