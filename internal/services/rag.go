package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/doc-QG-system/internal/logger"
	"github.com/fyerfyer/doc-QG-system/internal/models"
	"github.com/fyerfyer/doc-QG-system/internal/question"
)

// Ranker 按与prompt的相关度选取文本块
type Ranker interface {
	Rank(prompt string, chunks []string, topN int) []string
}

// Producer 为单个文本块生成候选问题
type Producer interface {
	Produce(ctx context.Context, chunk string, n int) ([]string, error)
}

// RAGGenerator 检索增强的问题生成器
// 先按相关度选取文本块，再逐块调用生成模型
type RAGGenerator struct {
	source   *TextSource
	ranker   Ranker
	producer Producer
	opts     generatorOptions
}

// NewRAGGenerator 创建检索增强生成器
func NewRAGGenerator(source *TextSource, ranker Ranker, producer Producer, opts ...GeneratorOption) *RAGGenerator {
	return &RAGGenerator{
		source:   source,
		ranker:   ranker,
		producer: producer,
		opts:     newGeneratorOptions(question.DefaultMinLength, opts),
	}
}

// Language 实现Generator接口
func (g *RAGGenerator) Language() models.Language {
	return models.English
}

// GenerateQuestions 实现Generator接口
func (g *RAGGenerator) GenerateQuestions(ctx context.Context, path string, req models.GenerationRequest) ([]string, error) {
	r, err := g.opts.resolve(g.Language(), req)
	if err != nil {
		return nil, err
	}

	chunks := g.source.Chunks(ctx, path)
	if len(chunks) == 0 {
		g.opts.logger.WithField(logger.FieldPath, path).Warn("No text chunks extracted from document")
		return []string{}, nil
	}

	questions := g.fromChunks(ctx, chunks, r)
	g.opts.logger.WithFields(logrus.Fields{
		logger.FieldLanguage: g.Language(),
		"count":              len(questions),
	}).Info("Generated questions")
	return questions, nil
}

// FromChunks 对已切分好的文本块执行检索和生成
func (g *RAGGenerator) FromChunks(ctx context.Context, chunks []string, req models.GenerationRequest) ([]string, error) {
	r, err := g.opts.resolve(g.Language(), req)
	if err != nil {
		return nil, err
	}
	return g.fromChunks(ctx, chunks, r), nil
}

func (g *RAGGenerator) fromChunks(ctx context.Context, chunks []string, r resolved) []string {
	ranked := g.ranker.Rank(r.prompt, chunks, r.topN)

	var all []string
	for i, chunk := range ranked {
		if err := ctx.Err(); err != nil {
			g.opts.logger.WithError(err).Warn("Generation cancelled")
			break
		}

		all = append(all, g.chunkQuestions(ctx, i, chunk, r.perChunk)...)
		// 达到数量后不再调用模型
		if len(all) >= r.total {
			break
		}
	}
	return question.Finalize(all, r.total)
}

// chunkQuestions 为一个文本块生成并过滤问题，生成失败时返回空
func (g *RAGGenerator) chunkQuestions(ctx context.Context, index int, chunk string, n int) []string {
	candidates, err := g.producer.Produce(ctx, chunk, n)
	if err != nil {
		logger.Failure(g.opts.logger, "generate", chunk).
			WithField(logger.FieldChunkIndex, index).
			WithError(err).
			Warn("Question generation failed for chunk")
		return nil
	}

	return question.Dedupe(question.SanitizeAll(candidates, g.opts.minLength))
}

