package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/doc-QG-system/internal/document"
	"github.com/fyerfyer/doc-QG-system/internal/logger"
	"github.com/fyerfyer/doc-QG-system/internal/models"
)

// Generator 按语言生成问题的策略
// 抽取失败和外部服务失败只会得到空列表，只有请求本身不合法时才返回错误
type Generator interface {
	// GenerateQuestions 从文档生成问题
	GenerateQuestions(ctx context.Context, path string, req models.GenerationRequest) ([]string, error)

	// Language 返回生成器负责的语言
	Language() models.Language
}

// Defaults 单个语言的默认生成参数
type Defaults struct {
	TotalQuestions    int `mapstructure:"total_questions"`
	TopNChunks        int `mapstructure:"top_n_chunks"`
	QuestionsPerChunk int `mapstructure:"questions_per_chunk"`
}

// EnglishDefaults 英语默认参数
func EnglishDefaults() Defaults {
	return Defaults{TotalQuestions: 20, TopNChunks: 5, QuestionsPerChunk: 2}
}

// SanskritDefaults 梵语默认参数
func SanskritDefaults() Defaults {
	return Defaults{TotalQuestions: 10, TopNChunks: 5, QuestionsPerChunk: 3}
}

// HindiDefaults 印地语默认参数，规则路径不使用分块参数
func HindiDefaults() Defaults {
	return Defaults{TotalQuestions: 20}
}

// DefaultsFor 返回语言的默认参数
func DefaultsFor(lang models.Language) Defaults {
	switch lang {
	case models.Sanskrit:
		return SanskritDefaults()
	case models.Hindi:
		return HindiDefaults()
	default:
		return EnglishDefaults()
	}
}

// resolved 补全默认值后的请求参数
type resolved struct {
	prompt   string
	total    int
	topN     int
	perChunk int
}

// resolve 校验请求并用默认值填充为0的字段
// fallbackPerChunk 是每块问题数的最终兜底值
func (d Defaults) resolve(req models.GenerationRequest, fallbackPerChunk int) (resolved, error) {
	total := req.TotalQuestions
	if total == 0 {
		total = d.TotalQuestions
	}
	if total <= 0 || req.TopNChunks < 0 || req.QuestionsPerChunk < 0 {
		return resolved{}, models.NewValidationError(models.MsgInvalidTotal,
			fmt.Sprintf("total=%d top_n=%d per_chunk=%d", req.TotalQuestions, req.TopNChunks, req.QuestionsPerChunk))
	}

	r := resolved{
		prompt:   strings.TrimSpace(req.Prompt),
		total:    total,
		topN:     req.TopNChunks,
		perChunk: req.QuestionsPerChunk,
	}
	if r.topN == 0 {
		r.topN = d.TopNChunks
	}
	if r.perChunk == 0 {
		r.perChunk = d.QuestionsPerChunk
	}
	if r.perChunk == 0 {
		r.perChunk = fallbackPerChunk
	}
	return r, nil
}

// TextExtractor 文档文本提取器
type TextExtractor interface {
	Extract(ctx context.Context, path string) (string, bool)
}

// CleaningExtractor 在判断后端结果是否为空之前先清洗文本的提取器
type CleaningExtractor interface {
	TextExtractor
	ExtractWith(ctx context.Context, path string, cleaner *document.Cleaner) (string, bool)
}

// TextSource 负责提取、清洗和切分文档文本
type TextSource struct {
	extractor TextExtractor
	cleaner   *document.Cleaner
	chunkSize int
	logger    *logrus.Logger
}

// NewTextSource 创建文本来源
// cleaner为nil时使用默认白名单
func NewTextSource(extractor TextExtractor, cleaner *document.Cleaner, chunkSize int) *TextSource {
	if cleaner == nil {
		cleaner = document.NewCleaner()
	}
	if chunkSize <= 0 {
		chunkSize = document.DefaultChunkSize
	}
	return &TextSource{
		extractor: extractor,
		cleaner:   cleaner,
		chunkSize: chunkSize,
		logger:    logger.GetLogger(),
	}
}

// Text 返回清洗后的全文，提取失败时返回空字符串
func (s *TextSource) Text(ctx context.Context, path string) string {
	if ce, ok := s.extractor.(CleaningExtractor); ok {
		text, ok := ce.ExtractWith(ctx, path, s.cleaner)
		if !ok {
			s.logger.WithField(logger.FieldPath, path).Warn("No text extracted from document")
			return ""
		}
		return text
	}

	raw, ok := s.extractor.Extract(ctx, path)
	if !ok {
		s.logger.WithField(logger.FieldPath, path).Warn("No text extracted from document")
		return ""
	}
	return s.cleaner.Clean(raw)
}

// Chunks 返回定长文本块
func (s *TextSource) Chunks(ctx context.Context, path string) []string {
	text := s.Text(ctx, path)
	if text == "" {
		return nil
	}
	config := document.DefaultSplitterConfig()
	config.ChunkSize = s.chunkSize
	chunks := s.split(path, text, config)
	s.logger.WithFields(logrus.Fields{
		logger.FieldPath: path,
		"chunks":         len(chunks),
	}).Debug("Split document into chunks")
	return chunks
}

// Sentences 按句末标点切分文本
// 清洗器必须保留该标点，否则整篇文本会变成一个句子
func (s *TextSource) Sentences(ctx context.Context, path, delimiter string) []string {
	text := s.Text(ctx, path)
	if text == "" {
		return nil
	}
	return s.split(path, text, document.SentenceSplitterConfig(delimiter))
}

func (s *TextSource) split(path, text string, config document.SplitterConfig) []string {
	segments, err := document.NewTextSplitter(config).Split(text)
	if err != nil {
		s.logger.WithError(err).WithField(logger.FieldPath, path).Warn("Failed to split document text")
		return nil
	}

	parts := make([]string, len(segments))
	for i, seg := range segments {
		parts[i] = seg.Text
	}
	return parts
}

// Registry 按语言选择生成器
type Registry struct {
	mu         sync.RWMutex
	generators map[models.Language]Generator
}

// NewRegistry 创建生成器注册表
func NewRegistry(generators ...Generator) *Registry {
	r := &Registry{generators: make(map[models.Language]Generator)}
	for _, g := range generators {
		r.Register(g)
	}
	return r
}

// Register 注册生成器，同一语言后注册的覆盖先注册的
func (r *Registry) Register(g Generator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generators[g.Language()] = g
}

// Get 返回语言对应的生成器
func (r *Registry) Get(language string) (Generator, error) {
	lang, ok := models.ParseLanguage(language)
	if !ok {
		return nil, models.NewValidationError(models.MsgInvalidLang, language)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.generators[lang]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrNoGenerator, lang)
	}
	return g, nil
}

// Languages 返回已注册的语言，按名称排序
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.generators))
	for lang := range r.generators {
		names = append(names, string(lang))
	}
	sort.Strings(names)
	return names
}
