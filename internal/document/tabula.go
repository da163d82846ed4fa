package document

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tsawler/tabula"

	"github.com/fyerfyer/doc-QG-system/internal/logger"
)

// TabulaParser 基于tabula的PDF文本提取器
type TabulaParser struct {
	logger *logrus.Logger
}

// NewTabulaParser 创建tabula解析器
func NewTabulaParser() Parser {
	return &TabulaParser{logger: logger.GetLogger()}
}

// Name 返回解析器名称
func (p *TabulaParser) Name() string {
	return "tabula"
}

// Parse 提取PDF文本，去除页眉页脚并合并段落
func (p *TabulaParser) Parse(ctx context.Context, filePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text, warnings, err := tabula.Open(filePath).
		ExcludeHeadersAndFooters().
		JoinParagraphs().
		Text()
	if err != nil {
		return "", fmt.Errorf("tabula extraction failed: %v", err)
	}

	if len(warnings) > 0 {
		p.logger.WithFields(logrus.Fields{
			logger.FieldPath: filePath,
			"warnings":       len(warnings),
		}).Debug("tabula reported extraction warnings")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("no text content found in PDF")
	}
	return text, nil
}
