package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fyerfyer/doc-QG-system/internal/document"
	"github.com/fyerfyer/doc-QG-system/internal/llm"
	"github.com/fyerfyer/doc-QG-system/internal/models"
	"github.com/fyerfyer/doc-QG-system/internal/rank"
)

func englishRequest(total int) models.GenerationRequest {
	return models.GenerationRequest{
		Prompt:         "",
		Language:       "english",
		TotalQuestions: total,
	}
}

// TestRAGEmptyDocument 测试没有文本的文档返回空列表
func TestRAGEmptyDocument(t *testing.T) {
	producer := &stubProducer{fn: numbered}
	source := NewTextSource(stubExtractor{ok: false}, nil, 0)
	g := NewRAGGenerator(source, rank.NewRanker(), producer)

	questions, err := g.GenerateQuestions(context.Background(), "empty.pdf", englishRequest(5))
	require.NoError(t, err)
	assert.NotNil(t, questions)
	assert.Empty(t, questions)
	assert.Equal(t, 0, producer.calls())

	// 只有URL的文本清洗后为空
	source = NewTextSource(stubExtractor{text: "https://example.com/a.html", ok: true}, nil, 0)
	g = NewRAGGenerator(source, rank.NewRanker(), producer)
	questions, err = g.GenerateQuestions(context.Background(), "links.pdf", englishRequest(5))
	require.NoError(t, err)
	assert.Empty(t, questions)
	assert.Equal(t, 0, producer.calls())
}

// TestRAGDedupeAndCap 测试去重后按总数截取
func TestRAGDedupeAndCap(t *testing.T) {
	repeated := []string{
		"What river runs through Rome?",
		"What river runs through Rome?",
		"Who founded the city of Rome?",
	}
	producer := &stubProducer{fn: func(string, int) ([]string, error) { return repeated, nil }}
	g := NewRAGGenerator(nil, rank.NewRanker(), producer)

	chunks := []string{"chunk one", "chunk two", "chunk three"}

	t.Run("total above unique count", func(t *testing.T) {
		questions, err := g.FromChunks(context.Background(), chunks, englishRequest(10))
		require.NoError(t, err)
		assert.Equal(t, []string{
			"What river runs through Rome?",
			"Who founded the city of Rome?",
		}, questions)
	})

	t.Run("total below unique count", func(t *testing.T) {
		questions, err := g.FromChunks(context.Background(), chunks, englishRequest(1))
		require.NoError(t, err)
		assert.Equal(t, []string{"What river runs through Rome?"}, questions)
	})
}

// TestRAGEarlyStop 测试达到总数后不再调用模型
func TestRAGEarlyStop(t *testing.T) {
	producer := &stubProducer{fn: numbered}
	g := NewRAGGenerator(nil, rank.NewRanker(), producer)

	chunks := []string{"alpha", "beta", "gamma", "delta", "epsilon"}
	req := englishRequest(3)
	req.TopNChunks = 5
	req.QuestionsPerChunk = 2

	questions, err := g.FromChunks(context.Background(), chunks, req)
	require.NoError(t, err)
	assert.Len(t, questions, 3)
	// 前两块产生4个问题后停止
	assert.Equal(t, 2, producer.calls())
	assert.Equal(t, []string{"alpha", "beta"}, producer.chunks)
}

// TestRAGSkipsFailedChunks 测试单块生成失败不影响其他块
func TestRAGSkipsFailedChunks(t *testing.T) {
	producer := &stubProducer{fn: func(chunk string, n int) ([]string, error) {
		if chunk == "broken" {
			return nil, errors.New("model timeout")
		}
		return numbered(chunk, n)
	}}
	g := NewRAGGenerator(nil, rank.NewRanker(), producer)

	questions, err := g.FromChunks(context.Background(), []string{"broken", "healthy"}, englishRequest(10))
	require.NoError(t, err)
	assert.Len(t, questions, 2)
	for _, q := range questions {
		assert.Contains(t, q, "healthy")
	}
	assert.Equal(t, 2, producer.calls())
}

// TestRAGSanitizes 测试过短和笼统的候选被过滤
func TestRAGSanitizes(t *testing.T) {
	producer := &stubProducer{fn: func(string, int) ([]string, error) {
		return []string{
			"What?",
			"what is",
			"  What   is the capital of France?  ",
			"Visit https://example.com for details about Paris?",
		}, nil
	}}
	g := NewRAGGenerator(nil, rank.NewRanker(), producer)

	questions, err := g.FromChunks(context.Background(), []string{"France"}, englishRequest(10))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"What is the capital of France?",
		"Visit for details about Paris?",
	}, questions)
}

// TestRAGRanking 测试只处理相关度最高的块
func TestRAGRanking(t *testing.T) {
	producer := &stubProducer{fn: numbered}
	g := NewRAGGenerator(nil, rank.NewRanker(), producer)

	chunks := []string{
		"Photosynthesis converts light into chemical energy.",
		"The Roman senate advised the consuls of Rome.",
		"Volcanoes erupt molten rock.",
	}
	req := models.GenerationRequest{
		Prompt:            "roman senate",
		Language:          "english",
		TotalQuestions:    10,
		TopNChunks:        1,
		QuestionsPerChunk: 1,
	}

	questions, err := g.FromChunks(context.Background(), chunks, req)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, []string{chunks[1]}, producer.chunks)
}

// TestRAGDefaults 测试为0的参数使用语言默认值
func TestRAGDefaults(t *testing.T) {
	var gotN []int
	producer := &stubProducer{fn: func(chunk string, n int) ([]string, error) {
		gotN = append(gotN, n)
		return numbered(chunk, n)
	}}

	chunks := make([]string, 8)
	for i := range chunks {
		chunks[i] = fmt.Sprintf("chunk %d", i)
	}

	g := NewRAGGenerator(nil, rank.NewRanker(), producer)
	_, err := g.FromChunks(context.Background(), chunks, englishRequest(100))
	require.NoError(t, err)
	// 英语默认每块2个，取前5块
	assert.Equal(t, []int{2, 2, 2, 2, 2}, gotN)

	gotN = nil
	g = NewRAGGenerator(nil, rank.NewRanker(), producer,
		WithDefaults(Defaults{TotalQuestions: 20, TopNChunks: 2}),
		WithMaxPerChunk(3),
	)
	_, err = g.FromChunks(context.Background(), chunks, englishRequest(100))
	require.NoError(t, err)
	assert.Equal(t, []int{3, 3}, gotN)
}

// TestRAGInvalidRequest 测试非法参数返回验证错误
func TestRAGInvalidRequest(t *testing.T) {
	producer := &stubProducer{fn: numbered}
	g := NewRAGGenerator(nil, rank.NewRanker(), producer)

	_, err := g.FromChunks(context.Background(), []string{"a"}, englishRequest(-1))
	require.Error(t, err)
	assert.True(t, models.IsValidation(err))
	assert.Equal(t, models.MsgInvalidTotal, models.UserMessage(err))

	req := englishRequest(5)
	req.TopNChunks = -2
	_, err = g.FromChunks(context.Background(), []string{"a"}, req)
	assert.True(t, models.IsValidation(err))
	assert.Equal(t, 0, producer.calls())
}

// TestRAGWithModelClient 测试通过模型客户端生成
func TestRAGWithModelClient(t *testing.T) {
	client := llm.NewMockClient(t)
	client.On("Generate", mock.Anything, "Generate a question about: Rome was founded on the Tiber.",
		mock.MatchedBy(func(o *llm.GenerateOptions) bool {
			return o.NumSequences == 2 && o.NumBeams != nil && *o.NumBeams == 5
		}),
	).Return(&llm.Response{Texts: []string{
		"Where was Rome founded?",
		"Which river flows by Rome?",
	}}, nil).Once()

	text := "Rome was founded on the Tiber."
	source := NewTextSource(stubExtractor{text: text, ok: true}, nil, 0)
	g := NewRAGGenerator(source, rank.NewRanker(), llm.NewQuestionProducer(client))

	questions, err := g.GenerateQuestions(context.Background(), "rome.pdf", englishRequest(20))
	require.NoError(t, err)
	assert.Equal(t, []string{"Where was Rome founded?", "Which river flows by Rome?"}, questions)
}

// TestTextSource 测试文本清洗和切分
func TestTextSource(t *testing.T) {
	text := strings.Repeat("abcde ", 10)
	source := NewTextSource(stubExtractor{text: text, ok: true}, nil, 12)

	chunks := source.Chunks(context.Background(), "doc.pdf")
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c)), 12)
		assert.Equal(t, strings.TrimSpace(c), c)
	}

	sentences := NewTextSource(stubExtractor{text: "One.  Two. Three", ok: true}, nil, 0).
		Sentences(context.Background(), "doc.pdf", ".")
	assert.Equal(t, []string{"One.", "Two.", "Three"}, sentences)

	// 没有句末标点时无法切分
	assert.Empty(t, NewTextSource(stubExtractor{text: "One. Two.", ok: true}, nil, 0).
		Sentences(context.Background(), "doc.pdf", ""))
}

// TestTextSourceJunkBackendFallsBack 测试清洗后为空的后端结果会切换到下一个后端
func TestTextSourceJunkBackendFallsBack(t *testing.T) {
	newExtractor := func(secondaryText string) (*document.Extractor, *fixedParser) {
		primary := &fixedParser{name: "primary", text: "@@@ ### $$$ ©©©"}
		secondary := &fixedParser{name: "secondary", text: secondaryText}
		return document.NewExtractor(document.WithStrategies(
			document.Strategy{Name: primary.name, Parser: primary},
			document.Strategy{Name: secondary.name, Parser: secondary},
		)), secondary
	}

	ex, secondary := newExtractor("Real text about photosynthesis.")
	chunks := NewTextSource(ex, nil, 0).Chunks(context.Background(), "doc.pdf")
	assert.Equal(t, []string{"Real text about photosynthesis."}, chunks)
	assert.Equal(t, 1, secondary.calls)

	// 使用调用方的清洗器，保留句末标点
	ex, _ = newExtractor("दिल्ली एक शहर है। यह भारत की राजधानी है।")
	sentences := NewTextSource(ex, document.NewCleaner(document.DandaPunctuation), 0).
		Sentences(context.Background(), "doc.pdf", "।")
	assert.Equal(t, []string{"दिल्ली एक शहर है।", "यह भारत की राजधानी है।"}, sentences)
}
