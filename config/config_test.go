package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyerfyer/doc-QG-system/internal/models"
)

// TestLoadDefaults 测试配置文件不存在时使用默认值并写出文件
func TestLoadDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, int64(16*1024*1024), cfg.Upload.MaxSize)
	assert.Equal(t, []string{"pdf"}, cfg.Upload.AllowedExtensions)
	assert.Equal(t, "local", cfg.Upload.Storage)

	assert.Equal(t, 1000, cfg.Generation.ChunkSize)
	assert.Equal(t, 3, cfg.Generation.MaxQuestionsPerChunk)
	assert.Equal(t, 15, cfg.Generation.MinQuestionLength)
	assert.Equal(t, 10, cfg.Generation.RuleMinQuestionLength)

	assert.Equal(t, "python", cfg.Model.Provider)
	assert.Equal(t, []string{"google/flan-t5-small", "google/flan-t5-base"}, cfg.ModelNames())
	assert.Equal(t, 5, cfg.Model.NumBeams)
	assert.InDelta(t, 0.7, cfg.Model.Temperature, 1e-6)
	assert.True(t, cfg.Model.DoSample)
	assert.Equal(t, 3, cfg.Model.MaxRetries)
	assert.Empty(t, cfg.Model.Template)

	assert.Equal(t, 10*time.Second, cfg.Translation.Timeout)
	assert.Equal(t, "en", cfg.Translation.Pivot)
	assert.Equal(t, []string{"tabula", "pdfcpu"}, cfg.Extraction.Backends)
	assert.Equal(t, 86400, cfg.Cache.TTL)
	assert.Equal(t, 60*time.Second, cfg.PythonService.Timeout)

	// 默认配置被写出
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

// TestLoadFile 测试从配置文件读取并展开环境变量
func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
model:
  provider: tongyi
  primary: qwen-turbo
  fallback: qwen-turbo
  api_key: ${DOCQG_TEST_API_KEY}
translation:
  provider: google
  timeout: 3s
  api_key: ${DOCQG_TEST_MISSING_KEY}
generation:
  english:
    total_questions: 8
cache:
  type: bolt
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("DOCQG_TEST_API_KEY", "sk-test")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "tongyi", cfg.Model.Provider)
	assert.Equal(t, []string{"qwen-turbo"}, cfg.ModelNames())
	assert.Equal(t, "sk-test", cfg.Model.APIKey)
	assert.Empty(t, cfg.Translation.APIKey)
	assert.Equal(t, 3*time.Second, cfg.Translation.Timeout)
	assert.Equal(t, "bolt", cfg.Cache.Type)
	assert.Equal(t, "data/cache.db", cfg.Cache.Path)

	english := cfg.Defaults(models.English)
	assert.Equal(t, LanguageDefaults{TotalQuestions: 8, TopNChunks: 5, QuestionsPerChunk: 2}, english)
	assert.Equal(t, LanguageDefaults{TotalQuestions: 10, TopNChunks: 5, QuestionsPerChunk: 3}, cfg.Defaults(models.Sanskrit))
	assert.Equal(t, LanguageDefaults{TotalQuestions: 20, TopNChunks: 5, QuestionsPerChunk: 3}, cfg.Defaults(models.Hindi))
}

// TestLoadEnvOverride 测试环境变量覆盖配置
func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("MODEL_PROVIDER", "vertex")
	t.Setenv("APP_LOG_LEVEL", "debug")
	t.Setenv("GENERATION_CHUNK_SIZE", "500")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "vertex", cfg.Model.Provider)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, 500, cfg.Generation.ChunkSize)
}

// TestLoadInvalidFile 测试格式错误的配置文件
func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

// TestLanguages 测试语言映射
func TestLanguages(t *testing.T) {
	cfg := &Config{}
	langs := cfg.Languages()
	assert.Equal(t, map[string]string{"english": "en", "hindi": "hi", "sanskrit": "sa"}, langs)

	// 修改返回值不影响全局映射
	langs["french"] = "fr"
	assert.Len(t, cfg.Languages(), 3)
}
