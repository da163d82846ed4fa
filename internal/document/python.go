package document

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fyerfyer/doc-QG-system/internal/pyprovider"
)

// PythonParser 使用Python服务的文档解析器实现
type PythonParser struct {
	client *pyprovider.DocumentClient
}

// NewPythonParser 创建一个新的Python解析器
func NewPythonParser(client *pyprovider.DocumentClient) Parser {
	return &PythonParser{client: client}
}

// Name 返回解析器名称
func (p *PythonParser) Name() string {
	return "python"
}

// Parse 通过Python服务解析文档
func (p *PythonParser) Parse(ctx context.Context, filePath string) (string, error) {
	if p.client == nil {
		return "", errors.New("python client uninitialized")
	}

	result, err := p.client.ParseDocument(ctx, filePath)
	if err != nil {
		return "", fmt.Errorf("failed to parse document by python: %w", err)
	}

	content := strings.TrimSpace(result.Content)
	if content == "" {
		return "", fmt.Errorf("python service returned no text")
	}
	return content, nil
}
