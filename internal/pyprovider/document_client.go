package pyprovider

import (
	"context"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// DocumentParseResult 表示文档解析结果
type DocumentParseResult struct {
	DocumentID string         `json:"document_id"`
	Content    string         `json:"content"`
	Title      string         `json:"title"`
	Meta       map[string]any `json:"meta"`
	Pages      int            `json:"pages"`
	Words      int            `json:"words"`
	Chars      int            `json:"chars"`
}

// DocumentParseResponse 表示文档解析API的响应
type DocumentParseResponse struct {
	Success       bool                `json:"success"`
	DocumentID    string              `json:"document_id"`
	Result        DocumentParseResult `json:"result"`
	Error         string              `json:"error,omitempty"`
	ProcessTimeMs int                 `json:"process_time_ms"`
}

// DocumentClient 是Python文档解析服务的客户端
type DocumentClient struct {
	client Client
}

// NewDocumentClient 创建一个新的文档解析客户端
func NewDocumentClient(client Client) *DocumentClient {
	return &DocumentClient{
		client: client,
	}
}

// ParseDocument 解析指定路径的文档
// 服务与本进程共享文件系统，只传递路径
func (c *DocumentClient) ParseDocument(ctx context.Context, filePath string) (*DocumentParseResult, error) {
	form := map[string]string{
		"document_id":       uuid.New().String(),
		"file_path":         filePath,
		"original_filename": filepath.Base(filePath),
	}

	var response DocumentParseResponse
	if err := c.client.PostForm(ctx, "/python/documents/parse", form, &response); err != nil {
		return nil, errors.Wrap(err, "document parse request failed")
	}

	if !response.Success {
		return nil, errors.Errorf("document parse failed: %s", response.Error)
	}

	return &response.Result, nil
}
