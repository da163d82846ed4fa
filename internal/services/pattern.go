package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/doc-QG-system/internal/document"
	"github.com/fyerfyer/doc-QG-system/internal/grammar"
	"github.com/fyerfyer/doc-QG-system/internal/logger"
	"github.com/fyerfyer/doc-QG-system/internal/models"
	"github.com/fyerfyer/doc-QG-system/internal/question"
)

// PatternGenerator 基于语法规则的印地语问题生成器
// 逐句匹配规则表，不调用任何外部服务
type PatternGenerator struct {
	source *TextSource
	rules  grammar.RuleSet
	opts   generatorOptions
}

// NewPatternGenerator 创建规则生成器
// 文本清洗时保留达尼达，句子切分依赖它
func NewPatternGenerator(extractor TextExtractor, opts ...GeneratorOption) *PatternGenerator {
	return &PatternGenerator{
		source: NewTextSource(extractor, document.NewCleaner(document.DandaPunctuation), 0),
		rules:  grammar.HindiRules(),
		opts:   newGeneratorOptions(question.ShortMinLength, opts),
	}
}

// Language 实现Generator接口
func (g *PatternGenerator) Language() models.Language {
	return models.Hindi
}

// GenerateQuestions 实现Generator接口
// TopNChunks和QuestionsPerChunk对规则路径没有意义，被忽略
func (g *PatternGenerator) GenerateQuestions(ctx context.Context, path string, req models.GenerationRequest) ([]string, error) {
	r, err := g.opts.resolve(g.Language(), req)
	if err != nil {
		return nil, err
	}

	sentences := g.source.Sentences(ctx, path, document.HindiDelimiter)
	if len(sentences) == 0 {
		g.opts.logger.WithField(logger.FieldPath, path).Warn("No sentences extracted from document")
		return []string{}, nil
	}

	questions := g.FromSentences(sentences, r.total)
	g.opts.logger.WithFields(logrus.Fields{
		logger.FieldLanguage: g.Language(),
		"sentences":          len(sentences),
		"count":              len(questions),
	}).Info("Generated questions")
	return questions, nil
}

// FromSentences 对每个句子应用规则，按句子顺序输出
func (g *PatternGenerator) FromSentences(sentences []string, total int) []string {
	var all []string
	for _, sentence := range sentences {
		q, rule, ok := g.rules.Match(sentence)
		if !ok {
			continue
		}
		g.opts.logger.WithField("rule", rule).Debug("Pattern rule matched")
		if q, ok = question.Sanitize(q, g.opts.minLength); ok {
			all = append(all, q)
		}
	}
	return question.Finalize(all, total)
}
