package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/doc-QG-system/internal/cache"
	"github.com/fyerfyer/doc-QG-system/internal/document"
	"github.com/fyerfyer/doc-QG-system/internal/logger"
	"github.com/fyerfyer/doc-QG-system/internal/models"
	"github.com/fyerfyer/doc-QG-system/pkg/storage"
)

// DefaultMaxUploadSize 默认上传大小上限（16MiB）
const DefaultMaxUploadSize int64 = 16 * 1024 * 1024

// QuestionService 问题生成服务
// 负责校验请求和文件、暂存文档并调用对应语言的生成器
type QuestionService struct {
	registry   *Registry       // 生成器注册表
	storage    storage.Storage // 文档暂存，nil时直接读取原路径
	cache      cache.Cache     // 结果缓存，nil时不缓存
	cacheTTL   time.Duration   // 缓存有效期
	maxSize    int64           // 文件大小上限
	extensions []string        // 允许的扩展名（不含点，小写）
	logger     *logrus.Logger  // 日志
}

// ServiceOption 问题生成服务配置选项
type ServiceOption func(*QuestionService)

// NewQuestionService 创建问题生成服务实例
func NewQuestionService(registry *Registry, opts ...ServiceOption) *QuestionService {
	service := &QuestionService{
		registry:   registry,
		cacheTTL:   24 * time.Hour, // 默认缓存24小时
		maxSize:    DefaultMaxUploadSize,
		extensions: []string{"pdf"},
		logger:     logger.GetLogger(),
	}

	// 应用配置选项
	for _, opt := range opts {
		opt(service)
	}

	return service
}

// WithStorage 设置文档暂存
func WithStorage(s storage.Storage) ServiceOption {
	return func(qs *QuestionService) {
		qs.storage = s
	}
}

// WithCache 设置结果缓存
func WithCache(c cache.Cache, ttl time.Duration) ServiceOption {
	return func(qs *QuestionService) {
		qs.cache = c
		if ttl > 0 {
			qs.cacheTTL = ttl
		}
	}
}

// WithMaxSize 设置文件大小上限
func WithMaxSize(size int64) ServiceOption {
	return func(qs *QuestionService) {
		if size > 0 {
			qs.maxSize = size
		}
	}
}

// WithAllowedExtensions 设置允许的扩展名
func WithAllowedExtensions(exts ...string) ServiceOption {
	return func(qs *QuestionService) {
		normalized := make([]string, 0, len(exts))
		for _, ext := range exts {
			if ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), ".")); ext != "" {
				normalized = append(normalized, ext)
			}
		}
		if len(normalized) > 0 {
			qs.extensions = normalized
		}
	}
}

// WithServiceLogger 设置日志
func WithServiceLogger(l *logrus.Logger) ServiceOption {
	return func(qs *QuestionService) {
		qs.logger = l
	}
}

// Generate 为文档生成问题
// 校验失败返回VALIDATION_ERROR；没有生成任何问题时返回空列表
func (s *QuestionService) Generate(ctx context.Context, req models.GenerationRequest, path string) ([]string, error) {
	// 1. 校验请求
	if err := req.Validate(); err != nil {
		return nil, err
	}
	generator, err := s.registry.Get(req.Language)
	if err != nil {
		return nil, err
	}

	// 2. 校验文件
	if err := s.checkFile(path); err != nil {
		return nil, err
	}

	// 3. 查缓存
	cacheKey := ""
	if s.cache != nil {
		cacheKey, err = s.resultKey(req, path)
		if err != nil {
			s.logger.WithError(err).Warn("Failed to build result cache key")
		} else if questions, ok := s.cached(ctx, cacheKey); ok {
			return questions, nil
		}
	}

	// 4. 暂存文档并取得本地路径
	localPath, release, err := s.stage(ctx, path)
	if err != nil {
		return nil, models.NewInternalError(models.MsgInternal, err.Error())
	}
	defer release()

	// 5. 生成
	questions, err := generator.GenerateQuestions(ctx, localPath, req)
	if err != nil {
		return nil, err
	}

	// 6. 写缓存
	if cacheKey != "" && len(questions) > 0 {
		if data, err := json.Marshal(questions); err == nil {
			if err := s.cache.Set(ctx, cacheKey, string(data), s.cacheTTL); err != nil {
				s.logger.WithError(err).Warn("Failed to cache generated questions")
			}
		}
	}

	return questions, nil
}

// Languages 返回可用的语言
func (s *QuestionService) Languages() []string {
	return s.registry.Languages()
}

// Allowed 判断文件扩展名是否允许
func (s *QuestionService) Allowed(path string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	for _, allowed := range s.extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// checkFile 检查文件存在、扩展名、大小，PDF还要能读出页数
func (s *QuestionService) checkFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return models.NewValidationError(models.MsgNoFileSelected)
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return models.NewValidationError(models.MsgNoFile, path)
	}

	if !s.Allowed(path) {
		return models.NewValidationError(models.MsgInvalidType, filepath.Ext(path))
	}
	if info.Size() > s.maxSize {
		return models.NewValidationError(models.MsgFileTooLarge,
			fmt.Sprintf("%d bytes exceeds %d", info.Size(), s.maxSize))
	}

	if document.DetectContentType(path) == document.PDF {
		pages, err := document.PageCount(path)
		if err != nil || pages < 1 {
			details := "document has no pages"
			if err != nil {
				details = err.Error()
			}
			return models.NewValidationError(models.MsgInvalidType, details)
		}
	}
	return nil
}

// stage 把文档放入暂存并返回可读取的本地路径
// 释放函数会删除暂存副本，删除失败只记录日志
func (s *QuestionService) stage(ctx context.Context, path string) (string, func(), error) {
	if s.storage == nil {
		return path, func() {}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to open document: %v", err)
	}
	info, err := s.storage.Save(ctx, f, filepath.Base(path))
	f.Close()
	if err != nil {
		return "", nil, fmt.Errorf("failed to stage document: %v", err)
	}

	remove := func() {
		// 使用独立的context，请求取消后也要清理
		if err := s.storage.Delete(context.Background(), info.ID); err != nil {
			logger.Failure(s.logger, "cleanup", info.Name).
				WithError(err).
				Warn("Failed to delete staged document")
		}
	}

	localPath, cleanup, err := storage.LocalPath(ctx, s.storage, info)
	if err != nil {
		remove()
		return "", nil, fmt.Errorf("failed to resolve staged document: %v", err)
	}

	s.logger.WithFields(logrus.Fields{
		logger.FieldPath: path,
		"staged_id":      info.ID,
	}).Debug("Staged document")

	return localPath, func() {
		cleanup()
		remove()
	}, nil
}

// resultKey 生成结果缓存键
// 由语言、文件内容哈希、prompt哈希和数量参数组成
func (s *QuestionService) resultKey(req models.GenerationRequest, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}

	return cache.GenerateCacheKey(
		"questions",
		string(req.Lang()),
		cache.Hash(content),
		cache.HashString(req.Prompt),
		strconv.Itoa(req.TotalQuestions),
		strconv.Itoa(req.TopNChunks),
		strconv.Itoa(req.QuestionsPerChunk),
	), nil
}

// cached 读取缓存的结果，解析失败按未命中处理
func (s *QuestionService) cached(ctx context.Context, key string) ([]string, bool) {
	value, found, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to read result cache")
		return nil, false
	}
	if !found {
		return nil, false
	}

	var questions []string
	if err := json.Unmarshal([]byte(value), &questions); err != nil {
		s.logger.WithError(err).Warn("Failed to unmarshal cached questions")
		return nil, false
	}
	s.logger.WithField("key", key).Debug("Result cache hit")
	return questions, true
}
