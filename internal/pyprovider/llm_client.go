package pyprovider

import (
	"context"

	"github.com/pkg/errors"
)

// GenerateRequest 序列到序列模型的生成请求
type GenerateRequest struct {
	Prompt             string  `json:"prompt"`
	Model              string  `json:"model,omitempty"`
	MaxLength          int     `json:"max_length,omitempty"`
	NumBeams           int     `json:"num_beams,omitempty"`
	NumReturnSequences int     `json:"num_return_sequences,omitempty"`
	DoSample           bool    `json:"do_sample"`
	Temperature        float64 `json:"temperature,omitempty"`
}

// GenerateResponse 生成请求的响应，包含多个候选序列
type GenerateResponse struct {
	Texts          []string `json:"texts"`
	Model          string   `json:"model"`
	ProcessingTime float64  `json:"processing_time"`
}

// LoadRequest 模型加载请求
type LoadRequest struct {
	Model string `json:"model"`
}

// LoadResponse 模型加载响应
type LoadResponse struct {
	Model  string `json:"model"`
	Loaded bool   `json:"loaded"`
	Detail string `json:"detail,omitempty"`
}

// LLMClient 是生成模型服务的客户端
type LLMClient struct {
	client Client
}

// GenerateOption 是Generate方法的选项函数
type GenerateOption func(*GenerateRequest)

// NewLLMClient 创建一个新的LLM客户端
func NewLLMClient(client Client) *LLMClient {
	return &LLMClient{
		client: client,
	}
}

// WithModel 设置模型名称
func WithModel(model string) GenerateOption {
	return func(req *GenerateRequest) {
		req.Model = model
	}
}

// WithTemperature 设置温度参数
func WithTemperature(temperature float64) GenerateOption {
	return func(req *GenerateRequest) {
		req.Temperature = temperature
	}
}

// WithMaxLength 设置最大生成长度
func WithMaxLength(maxLength int) GenerateOption {
	return func(req *GenerateRequest) {
		req.MaxLength = maxLength
	}
}

// WithNumBeams 设置束搜索宽度
func WithNumBeams(beams int) GenerateOption {
	return func(req *GenerateRequest) {
		req.NumBeams = beams
	}
}

// WithNumReturnSequences 设置返回的候选数量
func WithNumReturnSequences(n int) GenerateOption {
	return func(req *GenerateRequest) {
		req.NumReturnSequences = n
	}
}

// WithSampling 设置是否启用采样
func WithSampling(enable bool) GenerateOption {
	return func(req *GenerateRequest) {
		req.DoSample = enable
	}
}

// Load 请求服务加载指定模型
func (c *LLMClient) Load(ctx context.Context, model string) (*LoadResponse, error) {
	var response LoadResponse
	if err := c.client.Post(ctx, "/python/llm/load", LoadRequest{Model: model}, &response); err != nil {
		return nil, errors.Wrapf(err, "failed to load model %s", model)
	}
	if !response.Loaded {
		return nil, errors.Errorf("model %s not loaded: %s", model, response.Detail)
	}
	return &response, nil
}

// Generate 生成候选文本
func (c *LLMClient) Generate(ctx context.Context, prompt string, options ...GenerateOption) (*GenerateResponse, error) {
	req := GenerateRequest{
		Prompt:             prompt,
		MaxLength:          100,
		NumBeams:           5,
		NumReturnSequences: 1,
		DoSample:           true,
		Temperature:        0.7,
	}

	for _, option := range options {
		option(&req)
	}

	var response GenerateResponse
	if err := c.client.Post(ctx, "/python/llm/generate", req, &response); err != nil {
		return nil, errors.Wrap(err, "failed to generate text")
	}

	return &response, nil
}
