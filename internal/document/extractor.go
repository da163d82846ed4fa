package document

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/doc-QG-system/internal/logger"
	"github.com/fyerfyer/doc-QG-system/internal/pyprovider"
)

// 提取后端名称
const (
	BackendTabula = "tabula"
	BackendPDFCPU = "pdfcpu"
	BackendPython = "python"
)

// DefaultBackends 默认的PDF提取顺序
var DefaultBackends = []string{BackendTabula, BackendPDFCPU}

// Strategy 一个命名的提取策略
type Strategy struct {
	Name   string
	Parser Parser
}

// Extractor 按顺序尝试多个提取策略，返回第一个非空结果
type Extractor struct {
	strategies []Strategy
	cleaner    *Cleaner // 判断结果是否为空之前的清洗，nil时不清洗
	logger     *logrus.Logger
}

// ExtractorOption 提取器配置选项
type ExtractorOption func(*Extractor)

// WithStrategies 设置PDF提取策略
func WithStrategies(strategies ...Strategy) ExtractorOption {
	return func(e *Extractor) {
		e.strategies = strategies
	}
}

// WithCleaner 设置提取结果的清洗器
// 清洗后为空的结果视为提取失败，继续尝试下一个后端
func WithCleaner(c *Cleaner) ExtractorOption {
	return func(e *Extractor) {
		e.cleaner = c
	}
}

// WithExtractorLogger 设置日志记录器
func WithExtractorLogger(l *logrus.Logger) ExtractorOption {
	return func(e *Extractor) {
		e.logger = l
	}
}

// NewExtractor 创建提取器，默认先用tabula再用pdfcpu
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		strategies: []Strategy{
			{Name: BackendTabula, Parser: NewTabulaParser()},
			{Name: BackendPDFCPU, Parser: NewPDFParser()},
		},
		logger: logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StrategiesFromBackends 根据后端名称列表构建策略
// python后端需要文档客户端
func StrategiesFromBackends(names []string, docClient *pyprovider.DocumentClient) ([]Strategy, error) {
	if len(names) == 0 {
		names = DefaultBackends
	}

	strategies := make([]Strategy, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		switch name {
		case BackendTabula:
			strategies = append(strategies, Strategy{Name: name, Parser: NewTabulaParser()})
		case BackendPDFCPU:
			strategies = append(strategies, Strategy{Name: name, Parser: NewPDFParser()})
		case BackendPython:
			if docClient == nil {
				return nil, fmt.Errorf("extraction backend %q requires a python service client", name)
			}
			strategies = append(strategies, Strategy{Name: name, Parser: NewPythonParser(docClient)})
		default:
			return nil, fmt.Errorf("unknown extraction backend: %s", name)
		}
	}
	return strategies, nil
}

// Strategies 返回当前的PDF提取策略名称
func (e *Extractor) Strategies() []string {
	names := make([]string, len(e.strategies))
	for i, s := range e.strategies {
		names[i] = s.Name
	}
	return names
}

// Extract 提取文档文本
// 所有策略失败时返回false，不返回错误
func (e *Extractor) Extract(ctx context.Context, filePath string) (string, bool) {
	return e.ExtractWith(ctx, filePath, e.cleaner)
}

// ExtractWith 使用指定清洗器提取文档文本，返回清洗后的结果
func (e *Extractor) ExtractWith(ctx context.Context, filePath string, cleaner *Cleaner) (string, bool) {
	strategies := e.strategies
	if DetectContentType(filePath) != PDF {
		parser, err := ParserFactory(filePath)
		if err != nil {
			logger.Failure(e.logger, "extract", filePath).WithError(err).Error("No parser for document")
			return "", false
		}
		strategies = []Strategy{{Name: parser.Name(), Parser: parser}}
	}

	for _, s := range strategies {
		text, err := s.Parser.Parse(ctx, filePath)
		if err != nil {
			logger.Failure(e.logger, "extract", filePath).
				WithField("backend", s.Name).
				WithError(err).
				Warn("Extraction backend failed")
			continue
		}
		if cleaner != nil {
			text = cleaner.Clean(text)
		}
		if strings.TrimSpace(text) == "" {
			e.logger.WithFields(logrus.Fields{
				logger.FieldPath: filePath,
				"backend":        s.Name,
			}).Warn("Extraction backend returned no text")
			continue
		}

		e.logger.WithFields(logrus.Fields{
			logger.FieldPath: filePath,
			"backend":        s.Name,
			"chars":          len([]rune(text)),
		}).Info("Extracted text from document")
		return text, true
	}

	logger.Failure(e.logger, "extract", filePath).Error("Failed to extract text from document")
	return "", false
}
