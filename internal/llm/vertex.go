package llm

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/vertexai/genai"
)

// VertexClient 基于Vertex AI托管模型的客户端
// 多个候选通过CandidateCount一次返回
type VertexClient struct {
	base  *genai.Client
	model *genai.GenerativeModel
	name  string
	cfg   *Config
}

// NewVertexClient 创建Vertex AI客户端
func NewVertexClient(opts ...Option) (Client, error) {
	cfg := NewConfig(opts...)
	if cfg.Project == "" || cfg.Location == "" {
		return nil, NewLLMError(ErrCodeInvalidRequest, "vertex project and location cannot be empty")
	}
	if cfg.Model == "" {
		cfg.Model = ModelGeminiFlash
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	base, err := genai.NewClient(ctx, cfg.Project, cfg.Location)
	if err != nil {
		return nil, WrapError(err, ErrCodeNetworkError)
	}

	return &VertexClient{
		base:  base,
		model: base.GenerativeModel(cfg.Model),
		name:  cfg.Model,
		cfg:   cfg,
	}, nil
}

// Name 返回模型名称
func (c *VertexClient) Name() string {
	return c.name
}

// Load 通过一次token计数确认模型可访问
func (c *VertexClient) Load(ctx context.Context) error {
	if _, err := c.model.CountTokens(ctx, genai.Text("ping")); err != nil {
		return WrapError(err, ErrCodeModelUnavailable)
	}
	return nil
}

// Generate 根据提示词生成候选文本
func (c *VertexClient) Generate(ctx context.Context, prompt string, options ...GenerateOption) (*Response, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, NewLLMError(ErrCodeEmptyPrompt, ErrMsgEmptyPrompt)
	}

	opts := NewGenerateOptions(options...)

	temperature := c.cfg.Temperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}
	maxTokens := c.cfg.MaxTokens
	if opts.MaxTokens != nil {
		maxTokens = *opts.MaxTokens
	}

	// 生成配置按请求设置，模型对象本身不共享可变状态
	model := c.base.GenerativeModel(c.name)
	model.GenerationConfig = genai.GenerationConfig{
		Temperature:     genai.Ptr[float32](temperature),
		CandidateCount:  genai.Ptr[int32](int32(opts.NumSequences)),
		MaxOutputTokens: genai.Ptr[int32](int32(maxTokens)),
	}
	if opts.TopP != nil {
		model.GenerationConfig.TopP = opts.TopP
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		if ctx.Err() != nil {
			return nil, NewLLMError(ErrCodeTimeout, ctx.Err().Error())
		}
		return nil, WrapError(err, ErrCodeServerError)
	}

	texts := candidateTexts(resp)
	if len(texts) == 0 {
		if blocked(resp) {
			return nil, NewLLMError(ErrCodeContentFilter, ErrMsgContentFilter)
		}
		return nil, NewLLMError(ErrCodeEmptyResponse, ErrMsgEmptyResponse)
	}

	result := &Response{
		Text:       texts[0],
		Texts:      texts,
		ModelName:  c.name,
		FinishTime: time.Now(),
	}
	if resp.UsageMetadata != nil {
		result.TokenCount = int(resp.UsageMetadata.TotalTokenCount)
	}
	return result, nil
}

// Close 释放底层连接
func (c *VertexClient) Close() error {
	if c.base != nil {
		return c.base.Close()
	}
	return nil
}

// blocked 判断响应是否被安全策略拦截
func blocked(resp *genai.GenerateContentResponse) bool {
	if resp == nil {
		return false
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		return true
	}
	for _, cand := range resp.Candidates {
		if cand != nil && cand.FinishReason == genai.FinishReasonSafety {
			return true
		}
	}
	return false
}

// candidateTexts 拼接每个候选的文本片段
func candidateTexts(resp *genai.GenerateContentResponse) []string {
	if resp == nil {
		return nil
	}
	var texts []string
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		var b strings.Builder
		for _, part := range cand.Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				b.WriteString(string(txt))
			}
		}
		if text := strings.TrimSpace(b.String()); text != "" {
			texts = append(texts, text)
		}
	}
	return texts
}

func init() {
	RegisterClient(ProviderVertex, NewVertexClient)
}
