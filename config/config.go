package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/fyerfyer/doc-QG-system/internal/logger"
	"github.com/fyerfyer/doc-QG-system/internal/models"
)

// Config 应用程序配置结构体
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Upload        UploadConfig        `mapstructure:"upload"`
	Generation    GenerationConfig    `mapstructure:"generation"`
	Model         ModelConfig         `mapstructure:"model"`
	Translation   TranslationConfig   `mapstructure:"translation"`
	Extraction    ExtractionConfig    `mapstructure:"extraction"`
	Cache         CacheConfig         `mapstructure:"cache"`
	PythonService PythonServiceConfig `mapstructure:"python_service"`
}

// AppConfig 应用配置
type AppConfig struct {
	LogLevel string `mapstructure:"log_level"` // 日志级别
	LogFile  string `mapstructure:"log_file"`  // 日志文件，为空时只输出到标准输出
}

// UploadConfig 上传文件配置
type UploadConfig struct {
	Dir               string      `mapstructure:"dir"`                // 本地暂存目录
	MaxSize           int64       `mapstructure:"max_size"`           // 文件大小上限（字节）
	AllowedExtensions []string    `mapstructure:"allowed_extensions"` // 允许的扩展名
	Storage           string      `mapstructure:"storage"`            // 暂存类型：local, minio, gcs
	Minio             MinioConfig `mapstructure:"minio"`
	GCS               GCSConfig   `mapstructure:"gcs"`
}

// MinioConfig MinIO配置
type MinioConfig struct {
	Endpoint  string `mapstructure:"endpoint"` // MinIO端点
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`  // 桶名称
	UseSSL    bool   `mapstructure:"use_ssl"` // 是否使用SSL
}

// GCSConfig Google Cloud Storage配置
type GCSConfig struct {
	Bucket string `mapstructure:"bucket"`
}

// LanguageDefaults 单个语言的默认生成参数
type LanguageDefaults struct {
	TotalQuestions    int `mapstructure:"total_questions"`
	TopNChunks        int `mapstructure:"top_n_chunks"`
	QuestionsPerChunk int `mapstructure:"questions_per_chunk"`
}

// GenerationConfig 问题生成配置
type GenerationConfig struct {
	ChunkSize               int              `mapstructure:"chunk_size"`                 // 分块大小（字符数）
	MaxQuestionsPerChunk    int              `mapstructure:"max_questions_per_chunk"`    // 每块问题数兜底值
	DefaultTotalQuestions   int              `mapstructure:"default_total_questions"`    // 默认问题总数
	DefaultTopNChunks       int              `mapstructure:"default_top_n_chunks"`       // 默认选取块数
	MinQuestionLength       int              `mapstructure:"min_question_length"`        // 模型生成问题的最小长度
	RuleMinQuestionLength   int              `mapstructure:"rule_min_question_length"`   // 规则问题的最小长度
	BridgeMinQuestionLength int              `mapstructure:"bridge_min_question_length"` // 回译问题的最小长度
	English                 LanguageDefaults `mapstructure:"english"`
	Hindi                   LanguageDefaults `mapstructure:"hindi"`
	Sanskrit                LanguageDefaults `mapstructure:"sanskrit"`
}

// ModelConfig 生成模型配置
type ModelConfig struct {
	Provider    string        `mapstructure:"provider"`    // 提供方：python, vertex, tongyi
	Primary     string        `mapstructure:"primary"`     // 首选模型
	Fallback    string        `mapstructure:"fallback"`    // 备用模型
	MaxLength   int           `mapstructure:"max_length"`  // 最大生成长度
	NumBeams    int           `mapstructure:"num_beams"`   // 束搜索宽度
	Temperature float32       `mapstructure:"temperature"` // 采样温度
	DoSample    bool          `mapstructure:"do_sample"`   // 是否启用采样
	Timeout     time.Duration `mapstructure:"timeout"`     // 单次生成超时
	MaxRetries  int           `mapstructure:"max_retries"` // 托管模型请求重试次数
	Template    string        `mapstructure:"template"`    // 提示词模板，为空时使用内置模板
	APIKey      string        `mapstructure:"api_key"`     // 通义API密钥
	Endpoint    string        `mapstructure:"endpoint"`    // 自定义API端点
	Project     string        `mapstructure:"project"`     // Vertex项目ID
	Location    string        `mapstructure:"location"`    // Vertex区域
}

// TranslationConfig 翻译配置
type TranslationConfig struct {
	Provider string        `mapstructure:"provider"` // 提供方：python, google, vertex
	Timeout  time.Duration `mapstructure:"timeout"`  // 单次翻译超时
	Pivot    string        `mapstructure:"pivot"`    // 中间语言代码
	APIKey   string        `mapstructure:"api_key"`  // Google翻译API密钥
	Endpoint string        `mapstructure:"endpoint"` // 自定义服务端点
	Model    string        `mapstructure:"model"`    // Vertex翻译模型
	Project  string        `mapstructure:"project"`  // Vertex项目ID
	Location string        `mapstructure:"location"` // Vertex区域
}

// ExtractionConfig 文本提取配置
type ExtractionConfig struct {
	Backends []string `mapstructure:"backends"` // 按顺序尝试的提取后端
}

// CacheConfig 缓存配置
type CacheConfig struct {
	Enable    bool   `mapstructure:"enable"`    // 是否启用缓存
	Type      string `mapstructure:"type"`      // 缓存类型：memory, redis, bolt
	Address   string `mapstructure:"address"`   // Redis地址
	Password  string `mapstructure:"password"`  // Redis密码
	DB        int    `mapstructure:"db"`        // Redis数据库
	Path      string `mapstructure:"path"`      // Bolt数据库文件
	Namespace string `mapstructure:"namespace"` // 键名前缀
	TTL       int    `mapstructure:"ttl"`       // 缓存TTL（秒）
}

// PythonServiceConfig Python服务配置
type PythonServiceConfig struct {
	BaseURL    string        `mapstructure:"base_url"`    // Python服务基础URL
	Timeout    time.Duration `mapstructure:"timeout"`     // 请求超时时间
	MaxRetries int           `mapstructure:"max_retries"` // 最大重试次数
	RetryDelay time.Duration `mapstructure:"retry_delay"` // 重试间隔
}

// Languages 返回支持的语言名称到代码的映射，只读
func (c *Config) Languages() map[string]string {
	return models.SupportedLanguages()
}

// Defaults 返回语言的默认生成参数
// 未配置的字段使用generation下的通用默认值
func (c *Config) Defaults(lang models.Language) LanguageDefaults {
	var d LanguageDefaults
	switch lang {
	case models.English:
		d = c.Generation.English
	case models.Hindi:
		d = c.Generation.Hindi
	case models.Sanskrit:
		d = c.Generation.Sanskrit
	}
	if d.TotalQuestions <= 0 {
		d.TotalQuestions = c.Generation.DefaultTotalQuestions
	}
	if d.TopNChunks <= 0 {
		d.TopNChunks = c.Generation.DefaultTopNChunks
	}
	if d.QuestionsPerChunk <= 0 {
		d.QuestionsPerChunk = c.Generation.MaxQuestionsPerChunk
	}
	return d
}

// ModelNames 返回按顺序尝试的模型名称
func (c *Config) ModelNames() []string {
	names := []string{c.Model.Primary}
	if c.Model.Fallback != "" && c.Model.Fallback != c.Model.Primary {
		names = append(names, c.Model.Fallback)
	}
	return names
}

// Load 从文件和环境变量加载配置
func Load(configPath string) (*Config, error) {
	var config Config
	log := logger.GetLogger()

	// .env不存在时忽略
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.WithError(err).Warn("Failed to load .env file")
	}

	// 设置默认配置路径
	if configPath == "" {
		configPath = "config.yaml"
	}

	// 初始化viper
	v := viper.New()
	v.SetConfigFile(configPath)

	// 设置默认值
	setDefaults(v)

	// 尝试读取配置文件
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %v", err)
		}

		// 找不到配置文件时写入默认配置
		log.WithField(logger.FieldPath, configPath).Warn("Config file not found, using defaults")
		if err := os.MkdirAll(filepath.Dir(configPath), 0755); err == nil {
			if err := v.WriteConfigAs(configPath); err != nil {
				log.WithError(err).WithField(logger.FieldPath, configPath).Warn("Could not write default config")
			}
		}
	} else {
		log.WithField(logger.FieldPath, v.ConfigFileUsed()).Info("Using config file")
	}

	// 支持环境变量覆盖
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 解析配置到结构体
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %v", err)
	}

	return processEnvironmentVariables(&config), nil
}

var envPlaceholder = regexp.MustCompile(`^\$\{([A-Za-z_][A-Za-z0-9_]*)\}$`)

// expandEnv 将${VAR}形式的值替换为环境变量，变量未设置时为空
func expandEnv(value string) string {
	m := envPlaceholder.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return value
	}
	return os.Getenv(m[1])
}

// processEnvironmentVariables 处理密钥类配置项中的环境变量
func processEnvironmentVariables(cfg *Config) *Config {
	for _, field := range []*string{
		&cfg.Model.APIKey,
		&cfg.Model.Project,
		&cfg.Translation.APIKey,
		&cfg.Translation.Project,
		&cfg.Upload.Minio.AccessKey,
		&cfg.Upload.Minio.SecretKey,
		&cfg.Upload.GCS.Bucket,
		&cfg.Cache.Password,
	} {
		*field = expandEnv(*field)
	}
	return cfg
}

// setDefaults 设置配置的默认值
func setDefaults(v *viper.Viper) {
	// 应用默认配置
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_file", "")

	// 上传默认配置
	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.max_size", 16*1024*1024) // 16MiB
	v.SetDefault("upload.allowed_extensions", []string{"pdf"})
	v.SetDefault("upload.storage", "local")
	v.SetDefault("upload.minio.endpoint", "localhost:9000")
	v.SetDefault("upload.minio.access_key", "${MINIO_ACCESS_KEY}")
	v.SetDefault("upload.minio.secret_key", "${MINIO_SECRET_KEY}")
	v.SetDefault("upload.minio.bucket", "docqg")
	v.SetDefault("upload.minio.use_ssl", false)
	v.SetDefault("upload.gcs.bucket", "")

	// 生成默认配置
	v.SetDefault("generation.chunk_size", 1000)
	v.SetDefault("generation.max_questions_per_chunk", 3)
	v.SetDefault("generation.default_total_questions", 20)
	v.SetDefault("generation.default_top_n_chunks", 5)
	v.SetDefault("generation.min_question_length", 15)
	v.SetDefault("generation.rule_min_question_length", 10)
	v.SetDefault("generation.bridge_min_question_length", 10)
	v.SetDefault("generation.english.total_questions", 20)
	v.SetDefault("generation.english.top_n_chunks", 5)
	v.SetDefault("generation.english.questions_per_chunk", 2)
	v.SetDefault("generation.sanskrit.total_questions", 10)
	v.SetDefault("generation.sanskrit.top_n_chunks", 5)
	v.SetDefault("generation.sanskrit.questions_per_chunk", 3)

	// 模型默认配置
	v.SetDefault("model.provider", "python")
	v.SetDefault("model.primary", "google/flan-t5-small")
	v.SetDefault("model.fallback", "google/flan-t5-base")
	v.SetDefault("model.max_length", 100)
	v.SetDefault("model.num_beams", 5)
	v.SetDefault("model.temperature", 0.7)
	v.SetDefault("model.do_sample", true)
	v.SetDefault("model.timeout", "60s")
	v.SetDefault("model.max_retries", 3)
	v.SetDefault("model.template", "")
	v.SetDefault("model.api_key", "${DASHSCOPE_API_KEY}")
	v.SetDefault("model.endpoint", "")
	v.SetDefault("model.project", "${GOOGLE_CLOUD_PROJECT}")
	v.SetDefault("model.location", "us-central1")

	// 翻译默认配置
	v.SetDefault("translation.provider", "python")
	v.SetDefault("translation.timeout", "10s")
	v.SetDefault("translation.pivot", "en")
	v.SetDefault("translation.api_key", "${GOOGLE_TRANSLATE_API_KEY}")
	v.SetDefault("translation.endpoint", "")
	v.SetDefault("translation.model", "gemini-1.5-flash")
	v.SetDefault("translation.project", "${GOOGLE_CLOUD_PROJECT}")
	v.SetDefault("translation.location", "us-central1")

	// 提取默认配置
	v.SetDefault("extraction.backends", []string{"tabula", "pdfcpu"})

	// 缓存默认配置
	v.SetDefault("cache.enable", true)
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.address", "localhost:6379")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.path", "data/cache.db")
	v.SetDefault("cache.namespace", "docqg")
	v.SetDefault("cache.ttl", 86400) // 24小时

	// Python服务默认配置
	v.SetDefault("python_service.base_url", "http://localhost:8000/api")
	v.SetDefault("python_service.timeout", "60s")
	v.SetDefault("python_service.max_retries", 2)
	v.SetDefault("python_service.retry_delay", "1s")
}
