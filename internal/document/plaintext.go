package document

import (
	"context"
	"fmt"
	"os"
)

// PlainTextParser 纯文本解析器
type PlainTextParser struct{}

// NewPlainTextParser 创建一个新的纯文本解析器
func NewPlainTextParser() Parser {
	return &PlainTextParser{}
}

// Name 返回解析器名称
func (p *PlainTextParser) Name() string {
	return "plaintext"
}

// Parse 解析纯文本文件
func (p *PlainTextParser) Parse(_ context.Context, filePath string) (string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read text file: %v", err)
	}
	return string(content), nil
}
