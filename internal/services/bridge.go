package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/doc-QG-system/internal/logger"
	"github.com/fyerfyer/doc-QG-system/internal/models"
	"github.com/fyerfyer/doc-QG-system/internal/question"
	"github.com/fyerfyer/doc-QG-system/internal/translate"
)

// BridgeGenerator 通过中间语言生成梵语问题
// prompt和文本块先翻译成中间语言，生成的问题再翻译回来
// 每次翻译失败只跳过当前单元
type BridgeGenerator struct {
	rag        *RAGGenerator
	translator translate.Translator
	opts       generatorOptions
}

// NewBridgeGenerator 创建翻译桥接生成器
func NewBridgeGenerator(rag *RAGGenerator, translator translate.Translator, opts ...GeneratorOption) *BridgeGenerator {
	return &BridgeGenerator{
		rag:        rag,
		translator: translator,
		opts:       newGeneratorOptions(question.ShortMinLength, opts),
	}
}

// Language 实现Generator接口
func (g *BridgeGenerator) Language() models.Language {
	return models.Sanskrit
}

// GenerateQuestions 实现Generator接口
func (g *BridgeGenerator) GenerateQuestions(ctx context.Context, path string, req models.GenerationRequest) ([]string, error) {
	r, err := g.opts.resolve(g.Language(), req)
	if err != nil {
		return nil, err
	}

	chunks := g.rag.source.Chunks(ctx, path)
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

// FromChunks 对已切分好的文本块执行翻译桥接生成
func (g *BridgeGenerator) FromChunks(ctx context.Context, chunks []string, req models.GenerationRequest) ([]string, error) {
	r, err := g.opts.resolve(g.Language(), req)
	if err != nil {
		return nil, err
	}
	return g.fromChunks(ctx, chunks, r), nil
}

func (g *BridgeGenerator) fromChunks(ctx context.Context, chunks []string, r resolved) []string {
	source := g.Language().Code()
	pivot := g.opts.pivot

	// prompt翻译失败时按空prompt处理，排序退化为前N块
	prompt, ok := g.translate(ctx, r.prompt, source, pivot)
	if !ok && r.prompt != "" {
		g.opts.logger.WithField(logger.FieldLanguage, g.Language()).
			Warn("Prompt translation failed, ranking without prompt")
	}

	ranked := g.rag.ranker.Rank(prompt, chunks, r.topN)

	var all []string
	for i, chunk := range ranked {
		if err := ctx.Err(); err != nil {
			g.opts.logger.WithError(err).Warn("Generation cancelled")
			break
		}

		translated, ok := g.translate(ctx, chunk, source, pivot)
		if !ok {
			g.opts.logger.WithField(logger.FieldChunkIndex, i).Debug("Skipping chunk after failed translation")
			continue
		}

		for _, q := range g.rag.chunkQuestions(ctx, i, translated, r.perChunk) {
			back, ok := g.translate(ctx, q, pivot, source)
			if !ok {
				continue
			}
			if back, ok = question.Sanitize(back, g.opts.minLength); ok {
				all = append(all, back)
			}
		}

		if len(all) >= r.total {
			break
		}
	}
	return question.Finalize(all, r.total)
}

func (g *BridgeGenerator) translate(ctx context.Context, text, source, target string) (string, bool) {
	return translate.SafeTranslate(ctx, g.translator, text, source, target, g.opts.timeout)
}
