package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyerfyer/doc-QG-system/internal/cache"
	"github.com/fyerfyer/doc-QG-system/internal/models"
	"github.com/fyerfyer/doc-QG-system/pkg/storage"
)

func validRequest() models.GenerationRequest {
	return models.GenerationRequest{
		Prompt:         "roman history",
		Language:       "English",
		TotalQuestions: 5,
	}
}

// setupQuestionService 创建使用本地暂存的问题生成服务
func setupQuestionService(t *testing.T, gen *recordingGenerator, opts ...ServiceOption) (*QuestionService, storage.Storage) {
	t.Helper()
	store, err := storage.NewLocalStorage(storage.LocalConfig{Path: t.TempDir()})
	require.NoError(t, err)

	opts = append([]ServiceOption{WithStorage(store)}, opts...)
	return NewQuestionService(NewRegistry(gen), opts...), store
}

// TestQuestionServiceValidation 测试请求和文件校验
func TestQuestionServiceValidation(t *testing.T) {
	gen := &recordingGenerator{lang: models.English, questions: []string{"Who founded Rome?"}}
	svc, _ := setupQuestionService(t, gen, WithMaxSize(64*1024))
	pdf := createTempPDF(t, "Rome was founded on the banks of the Tiber.")

	tests := []struct {
		name    string
		mutate  func(*models.GenerationRequest)
		path    string
		message string
	}{
		{"empty prompt", func(r *models.GenerationRequest) { r.Prompt = "   " }, pdf, models.MsgEmptyPrompt},
		{"unknown language", func(r *models.GenerationRequest) { r.Language = "french" }, pdf, models.MsgInvalidLang},
		{"zero total", func(r *models.GenerationRequest) { r.TotalQuestions = 0 }, pdf, models.MsgInvalidTotal},
		{"negative per chunk", func(r *models.GenerationRequest) { r.QuestionsPerChunk = -1 }, pdf, models.MsgInvalidTotal},
		{"no path", nil, "", models.MsgNoFileSelected},
		{"missing file", nil, filepath.Join(t.TempDir(), "missing.pdf"), models.MsgNoFile},
		{"directory", nil, t.TempDir(), models.MsgNoFile},
		{"wrong extension", nil, createTempFile(t, "plain text", ".txt"), models.MsgInvalidType},
		{"not a pdf", nil, createTempFile(t, "this is not a pdf", ".pdf"), models.MsgInvalidType},
		{"too large", nil, createTempFile(t, strings.Repeat("x", 70*1024), ".PDF"), models.MsgFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			if tt.mutate != nil {
				tt.mutate(&req)
			}
			_, err := svc.Generate(context.Background(), req, tt.path)
			require.Error(t, err)
			assert.True(t, models.IsValidation(err), "expected validation error, got %v", err)
			assert.Equal(t, tt.message, models.UserMessage(err))
		})
	}

	assert.Empty(t, gen.paths, "generator must not run for rejected requests")
}

// TestQuestionServiceStaging 测试文档暂存并在处理后删除
func TestQuestionServiceStaging(t *testing.T) {
	gen := &recordingGenerator{lang: models.English, questions: []string{"Who founded Rome?"}}
	svc, store := setupQuestionService(t, gen)
	pdf := createTempPDF(t, "Rome was founded on the banks of the Tiber.")

	questions, err := svc.Generate(context.Background(), validRequest(), pdf)
	require.NoError(t, err)
	assert.Equal(t, []string{"Who founded Rome?"}, questions)

	// 生成器读取的是暂存副本
	require.Len(t, gen.paths, 1)
	assert.NotEqual(t, pdf, gen.paths[0])
	assert.True(t, gen.exists[0])
	assert.Equal(t, ".pdf", filepath.Ext(gen.paths[0]))

	// 暂存副本已删除，原文件保留
	files, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, files)
	_, err = os.Stat(pdf)
	assert.NoError(t, err)
}

// TestQuestionServiceGeneratorError 测试生成器错误原样返回且暂存被清理
func TestQuestionServiceGeneratorError(t *testing.T) {
	gen := &recordingGenerator{
		lang: models.English,
		err:  models.NewValidationError(models.MsgInvalidTotal, "bad"),
	}
	svc, store := setupQuestionService(t, gen)
	pdf := createTempPDF(t, "Some text.")

	_, err := svc.Generate(context.Background(), validRequest(), pdf)
	assert.True(t, models.IsValidation(err))

	files, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, files)
}

// TestQuestionServiceNoGenerator 测试语言合法但没有配置生成器
func TestQuestionServiceNoGenerator(t *testing.T) {
	gen := &recordingGenerator{lang: models.English}
	svc, _ := setupQuestionService(t, gen)
	pdf := createTempPDF(t, "Some text.")

	req := validRequest()
	req.Language = "hindi"
	_, err := svc.Generate(context.Background(), req, pdf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNoGenerator))
	assert.Equal(t, []string{"english"}, svc.Languages())
}

// TestQuestionServiceCache 测试结果缓存
func TestQuestionServiceCache(t *testing.T) {
	c, err := cache.NewMemoryCache(cache.DefaultConfig())
	require.NoError(t, err)
	defer c.Close()

	gen := &recordingGenerator{lang: models.English, questions: []string{"Who founded Rome?"}}
	svc, _ := setupQuestionService(t, gen, WithCache(c, 0))
	pdf := createTempPDF(t, "Rome was founded on the banks of the Tiber.")

	first, err := svc.Generate(context.Background(), validRequest(), pdf)
	require.NoError(t, err)
	second, err := svc.Generate(context.Background(), validRequest(), pdf)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, gen.paths, 1, "second call should be served from cache")

	// 参数不同不命中缓存
	req := validRequest()
	req.TotalQuestions = 6
	_, err = svc.Generate(context.Background(), req, pdf)
	require.NoError(t, err)
	assert.Len(t, gen.paths, 2)
}

// TestQuestionServiceEmptyResultNotCached 测试空结果不写缓存
func TestQuestionServiceEmptyResultNotCached(t *testing.T) {
	c, err := cache.NewMemoryCache(cache.DefaultConfig())
	require.NoError(t, err)
	defer c.Close()

	gen := &recordingGenerator{lang: models.English, questions: []string{}}
	svc, _ := setupQuestionService(t, gen, WithCache(c, 0))
	pdf := createTempPDF(t)

	for i := 0; i < 2; i++ {
		questions, err := svc.Generate(context.Background(), validRequest(), pdf)
		require.NoError(t, err)
		assert.Empty(t, questions)
	}
	assert.Len(t, gen.paths, 2)
}

// TestQuestionServiceAllowed 测试扩展名白名单
func TestQuestionServiceAllowed(t *testing.T) {
	svc := NewQuestionService(NewRegistry())
	assert.True(t, svc.Allowed("report.PDF"))
	assert.False(t, svc.Allowed("notes.md"))

	svc = NewQuestionService(NewRegistry(), WithAllowedExtensions(".MD", " txt ", ""))
	assert.True(t, svc.Allowed("notes.md"))
	assert.True(t, svc.Allowed("notes.txt"))
	assert.False(t, svc.Allowed("report.pdf"))
}

// TestRegistry 测试生成器注册表
func TestRegistry(t *testing.T) {
	english := &recordingGenerator{lang: models.English}
	hindi := &recordingGenerator{lang: models.Hindi}
	r := NewRegistry(english, hindi)

	g, err := r.Get("ENGLISH")
	require.NoError(t, err)
	assert.Same(t, english, g)

	_, err = r.Get("french")
	assert.True(t, models.IsValidation(err))

	_, err = r.Get("sanskrit")
	assert.ErrorIs(t, err, models.ErrNoGenerator)

	assert.Equal(t, []string{"english", "hindi"}, r.Languages())
}

// TestDefaultsFor 测试各语言默认参数
func TestDefaultsFor(t *testing.T) {
	assert.Equal(t, Defaults{TotalQuestions: 20, TopNChunks: 5, QuestionsPerChunk: 2}, DefaultsFor(models.English))
	assert.Equal(t, Defaults{TotalQuestions: 10, TopNChunks: 5, QuestionsPerChunk: 3}, DefaultsFor(models.Sanskrit))
	assert.Equal(t, 20, DefaultsFor(models.Hindi).TotalQuestions)
}
