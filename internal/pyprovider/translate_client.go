package pyprovider

import (
	"context"

	"github.com/pkg/errors"
)

// TranslateRequest 翻译请求
type TranslateRequest struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// TranslateResponse 翻译响应
type TranslateResponse struct {
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
	Target string `json:"target,omitempty"`
}

// TranslateClient 是翻译服务的客户端
type TranslateClient struct {
	client Client
}

// NewTranslateClient 创建翻译客户端
func NewTranslateClient(client Client) *TranslateClient {
	return &TranslateClient{client: client}
}

// Translate 将文本从source翻译为target
func (c *TranslateClient) Translate(ctx context.Context, text, source, target string) (string, error) {
	req := TranslateRequest{
		Text:   text,
		Source: source,
		Target: target,
	}

	var response TranslateResponse
	if err := c.client.Post(ctx, "/python/translate", req, &response); err != nil {
		return "", errors.Wrapf(err, "failed to translate %s->%s", source, target)
	}
	return response.Text, nil
}
