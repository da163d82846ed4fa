package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	qgconfig "github.com/fyerfyer/doc-QG-system/config"
	"github.com/fyerfyer/doc-QG-system/internal/cache"
	"github.com/fyerfyer/doc-QG-system/internal/document"
	"github.com/fyerfyer/doc-QG-system/internal/llm"
	"github.com/fyerfyer/doc-QG-system/internal/logger"
	"github.com/fyerfyer/doc-QG-system/internal/models"
	"github.com/fyerfyer/doc-QG-system/internal/pyprovider"
	"github.com/fyerfyer/doc-QG-system/internal/rank"
	"github.com/fyerfyer/doc-QG-system/internal/services"
	"github.com/fyerfyer/doc-QG-system/internal/translate"
	"github.com/fyerfyer/doc-QG-system/pkg/storage"
)

// 退出码
const (
	exitOK          = 0
	exitFatal       = 1
	exitValidation  = 2
	exitNoQuestions = 3
)

// 命令行选项
type options struct {
	ConfigFile string // 配置文件路径
	Lang       string // 问题语言
	Prompt     string // 引导生成的提示
	File       string // 文档路径
	Total      int    // 问题总数，0表示使用语言默认值
	TopN       int    // 选取的文本块数量
	PerChunk   int    // 每块生成的问题数
	Format     string // 输出格式：text, json
	LogLevel   string // 日志级别，为空时使用配置文件
	WatchDir   string // 监听目录
	OutDir     string // 结果输出目录
}

// result 输出结构
type result struct {
	Language  string   `json:"language"`
	Prompt    string   `json:"prompt"`
	Questions []string `json:"questions"`
}

func main() {
	os.Exit(run(parseFlags()))
}

func run(opts options) int {
	// 加载配置
	appConfig, err := qgconfig.Load(opts.ConfigFile)
	if err != nil {
		logger.GetLogger().Errorf("Failed to load config: %v", err)
		return exitFatal
	}

	// 初始化日志
	level := opts.LogLevel
	if level == "" {
		level = appConfig.App.LogLevel
	}
	log := setupLogger(level, appConfig.App.LogFile)

	lang, ok := models.ParseLanguage(opts.Lang)
	if !ok {
		return reportError(log, models.NewValidationError(models.MsgInvalidLang, opts.Lang))
	}
	if opts.Format != "text" && opts.Format != "json" {
		log.Errorf("Unknown output format: %s", opts.Format)
		return exitValidation
	}

	req := models.GenerationRequest{
		Prompt:            opts.Prompt,
		Language:          string(lang),
		TotalQuestions:    opts.Total,
		TopNChunks:        opts.TopN,
		QuestionsPerChunk: opts.PerChunk,
	}
	if req.TotalQuestions == 0 {
		req.TotalQuestions = appConfig.Defaults(lang).TotalQuestions
	}
	if err := req.Validate(); err != nil {
		return reportError(log, err)
	}

	ctx := context.Background()
	svc, closeFn := setupService(ctx, appConfig, lang, log)
	defer closeFn()

	if opts.WatchDir != "" {
		outDir := opts.OutDir
		if outDir == "" {
			outDir = opts.WatchDir
		}
		w := newWatcher(svc, req, outDir, log)
		if err := w.Run(ctx, opts.WatchDir); err != nil {
			log.WithError(err).Error("Watch mode stopped with error")
			return exitFatal
		}
		return exitOK
	}

	// 单次运行，收到信号时取消生成
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	questions, err := svc.Generate(ctx, req, opts.File)
	if err != nil {
		return reportError(log, err)
	}
	if len(questions) == 0 {
		return reportError(log, models.NewExtractionError(models.MsgNoQuestions, opts.File))
	}

	res := result{Language: string(lang), Prompt: opts.Prompt, Questions: questions}
	if err := writeResult(os.Stdout, res, opts.Format); err != nil {
		log.WithError(err).Error("Failed to write output")
		return exitFatal
	}
	if opts.OutDir != "" {
		path, err := saveResult(opts.OutDir, opts.File, res)
		if err != nil {
			log.WithError(err).Error("Failed to save output")
			return exitFatal
		}
		log.WithField(logger.FieldPath, path).Info("Saved questions")
	}
	return exitOK
}

// parseFlags 解析命令行参数
func parseFlags() options {
	opts := options{}

	flag.StringVar(&opts.ConfigFile, "config", "config.yaml", "Path to config file")
	flag.StringVar(&opts.Lang, "lang", "english", "Question language ("+strings.Join(models.LanguageNames(), "/")+")")
	flag.StringVar(&opts.Prompt, "prompt", "", "Prompt guiding question generation")
	flag.StringVar(&opts.File, "file", "", "Path to the PDF document")
	flag.IntVar(&opts.Total, "total", 0, "Total number of questions (0 uses the language default)")
	flag.IntVar(&opts.TopN, "top-n", 0, "Number of relevant chunks to use (0 uses the language default)")
	flag.IntVar(&opts.PerChunk, "per-chunk", 0, "Questions per chunk (0 uses the language default)")
	flag.StringVar(&opts.Format, "format", "text", "Output format (text/json)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug/info/warn/error)")
	flag.StringVar(&opts.WatchDir, "watch", "", "Watch a directory and process documents dropped into it")
	flag.StringVar(&opts.OutDir, "out", "", "Directory for <name>.questions.json results")

	flag.Parse()
	return opts
}

// reportError 向用户输出提示信息并返回退出码
func reportError(log *logrus.Logger, err error) int {
	fmt.Fprintln(os.Stderr, models.UserMessage(err))

	var appErr models.AppError
	code := exitFatal
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case models.ErrorTypeValidation:
			code = exitValidation
		case models.ErrorTypeExtraction:
			code = exitNoQuestions
		}
	}
	log.WithError(err).WithField("exit_code", code).Warn("Question generation did not complete")
	return code
}

// writeResult 按格式输出结果
func writeResult(w io.Writer, res result, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	for i, q := range res.Questions {
		if _, err := fmt.Fprintf(w, "%d. %s\n", i+1, q); err != nil {
			return err
		}
	}
	return nil
}

// outputPath 返回文档对应的结果文件路径
func outputPath(outDir, docPath string) string {
	base := filepath.Base(docPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outDir, base+".questions.json")
}

// saveResult 把结果写入输出目录，先写临时文件再重命名
func saveResult(outDir, docPath string, res result) (string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %v", err)
	}

	path := outputPath(outDir, docPath)
	tmp, err := os.CreateTemp(outDir, ".questions-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmp.Name())

	if err := writeResult(tmp, res, "json"); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to write result file: %v", err)
	}
	return path, nil
}

// setupService 按配置组装问题生成服务，只创建所选语言的生成器
// 初始化失败直接退出
func setupService(ctx context.Context, cfg *qgconfig.Config, lang models.Language, log *logrus.Logger) (*services.QuestionService, func()) {
	var closers []func()
	closeFn := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	fileStorage, err := setupStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	cacheService := setupCache(cfg, log)
	if cacheService != nil {
		closers = append(closers, func() { cacheService.Close() })
	}

	pyClient, err := setupPythonClient(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize python service client: %v", err)
	}

	extractor, err := setupExtractor(cfg, pyClient, log)
	if err != nil {
		log.Fatalf("Failed to initialize extractor: %v", err)
	}

	generator := setupGenerator(ctx, cfg, lang, extractor, pyClient, cacheService, log)

	serviceOpts := []services.ServiceOption{
		services.WithStorage(fileStorage),
		services.WithMaxSize(cfg.Upload.MaxSize),
		services.WithAllowedExtensions(cfg.Upload.AllowedExtensions...),
		services.WithServiceLogger(log),
	}
	if cacheService != nil {
		serviceOpts = append(serviceOpts, services.WithCache(cacheService, cacheTTL(cfg)))
	}

	return services.NewQuestionService(services.NewRegistry(generator), serviceOpts...), closeFn
}

// setupLogger 设置日志系统
func setupLogger(level, file string) *logrus.Logger {
	return logger.Setup(level, file)
}

// setupStorage 设置文档暂存
func setupStorage(ctx context.Context, cfg *qgconfig.Config) (storage.Storage, error) {
	return storage.New(ctx, storage.Config{
		Type:  cfg.Upload.Storage,
		Local: storage.LocalConfig{Path: cfg.Upload.Dir},
		Minio: storage.MinioConfig{
			Endpoint:  cfg.Upload.Minio.Endpoint,
			AccessKey: cfg.Upload.Minio.AccessKey,
			SecretKey: cfg.Upload.Minio.SecretKey,
			UseSSL:    cfg.Upload.Minio.UseSSL,
			Bucket:    cfg.Upload.Minio.Bucket,
		},
		GCS: storage.GCSConfig{Bucket: cfg.Upload.GCS.Bucket},
	})
}

// setupCache 设置缓存，不可用时不使用缓存
func setupCache(cfg *qgconfig.Config, log *logrus.Logger) cache.Cache {
	if !cfg.Cache.Enable {
		return nil
	}

	c, err := cache.NewCache(cache.Config{
		Type:            cfg.Cache.Type,
		RedisAddr:       cfg.Cache.Address,
		RedisPassword:   cfg.Cache.Password,
		RedisDB:         cfg.Cache.DB,
		BoltPath:        cfg.Cache.Path,
		Namespace:       cfg.Cache.Namespace,
		DefaultTTL:      cacheTTL(cfg),
		CleanupInterval: 10 * time.Minute,
	})
	if err != nil {
		log.WithError(err).WithField("type", cfg.Cache.Type).Warn("Cache unavailable, continuing without cache")
		return nil
	}
	return c
}

func cacheTTL(cfg *qgconfig.Config) time.Duration {
	return time.Duration(cfg.Cache.TTL) * time.Second
}

// setupPythonClient 创建Python推理服务客户端
func setupPythonClient(cfg *qgconfig.Config) (pyprovider.Client, error) {
	pyConfig := pyprovider.DefaultConfig().
		WithBaseURL(cfg.PythonService.BaseURL).
		WithRetry(cfg.PythonService.MaxRetries, cfg.PythonService.RetryDelay)
	if cfg.PythonService.Timeout > 0 {
		pyConfig.WithTimeout(cfg.PythonService.Timeout)
	}
	return pyprovider.NewClient(pyConfig)
}

// setupExtractor 按配置的后端顺序创建文本提取器
func setupExtractor(cfg *qgconfig.Config, pyClient pyprovider.Client, log *logrus.Logger) (*document.Extractor, error) {
	strategies, err := document.StrategiesFromBackends(cfg.Extraction.Backends, pyprovider.NewDocumentClient(pyClient))
	if err != nil {
		return nil, err
	}
	extractor := document.NewExtractor(
		document.WithStrategies(strategies...),
		document.WithExtractorLogger(log),
	)
	log.WithField("backends", extractor.Strategies()).Debug("Extractor ready")
	return extractor, nil
}

// setupLLM 加载生成模型，首选模型不可用时尝试备用模型
func setupLLM(ctx context.Context, cfg *qgconfig.Config, pyClient pyprovider.Client) (llm.Client, error) {
	opts := []llm.Option{
		llm.WithPyClient(pyClient),
		llm.WithAPIKey(cfg.Model.APIKey),
		llm.WithProject(cfg.Model.Project, cfg.Model.Location),
		llm.WithMaxTokens(cfg.Model.MaxLength),
		llm.WithTemperature(cfg.Model.Temperature),
		llm.WithNumBeams(cfg.Model.NumBeams),
		llm.WithSampling(cfg.Model.DoSample),
		llm.WithMaxRetries(cfg.Model.MaxRetries),
	}
	if cfg.Model.Endpoint != "" {
		opts = append(opts, llm.WithBaseURL(cfg.Model.Endpoint))
	}
	if cfg.Model.Timeout > 0 {
		opts = append(opts, llm.WithTimeout(cfg.Model.Timeout))
	}
	return llm.LoadFirst(ctx, cfg.Model.Provider, cfg.ModelNames(), opts...)
}

// setupTranslator 创建翻译客户端，启用缓存时包装缓存层
func setupTranslator(cfg *qgconfig.Config, pyClient pyprovider.Client, c cache.Cache) (translate.Translator, error) {
	t, err := translate.New(translate.Config{
		Provider: cfg.Translation.Provider,
		APIKey:   cfg.Translation.APIKey,
		Endpoint: cfg.Translation.Endpoint,
		Model:    cfg.Translation.Model,
		Project:  cfg.Translation.Project,
		Location: cfg.Translation.Location,
		Timeout:  cfg.Translation.Timeout,
		PyClient: pyClient,
	})
	if err != nil {
		return nil, err
	}
	if c != nil {
		return translate.NewCachedTranslator(t, c, cacheTTL(cfg)), nil
	}
	return t, nil
}

// setupGenerator 创建所选语言的生成器
func setupGenerator(
	ctx context.Context,
	cfg *qgconfig.Config,
	lang models.Language,
	extractor *document.Extractor,
	pyClient pyprovider.Client,
	c cache.Cache,
	log *logrus.Logger,
) services.Generator {
	d := cfg.Defaults(lang)
	common := []services.GeneratorOption{
		services.WithDefaults(services.Defaults{
			TotalQuestions:    d.TotalQuestions,
			TopNChunks:        d.TopNChunks,
			QuestionsPerChunk: d.QuestionsPerChunk,
		}),
		services.WithMaxPerChunk(cfg.Generation.MaxQuestionsPerChunk),
		services.WithLogger(log),
	}

	if lang == models.Hindi {
		return services.NewPatternGenerator(extractor,
			append(common, services.WithMinLength(cfg.Generation.RuleMinQuestionLength))...)
	}

	client, err := setupLLM(ctx, cfg, pyClient)
	if err != nil {
		log.Fatalf("Failed to load generation model: %v", err)
	}
	producerOpts := []llm.ProducerOption{
		llm.WithProducerMaxTokens(cfg.Model.MaxLength),
		llm.WithProducerNumBeams(cfg.Model.NumBeams),
		llm.WithProducerTemperature(cfg.Model.Temperature),
		llm.WithProducerSampling(cfg.Model.DoSample),
		llm.WithProducerTimeout(cfg.Model.Timeout),
	}
	if cfg.Model.Template != "" {
		producerOpts = append(producerOpts, llm.WithTemplate(cfg.Model.Template))
	}
	producer := llm.NewQuestionProducer(client, producerOpts...)

	source := services.NewTextSource(extractor, nil, cfg.Generation.ChunkSize)
	rag := services.NewRAGGenerator(source, rank.NewRanker(), producer,
		append(common, services.WithMinLength(cfg.Generation.MinQuestionLength))...)
	if lang == models.English {
		return rag
	}

	translator, err := setupTranslator(cfg, pyClient, c)
	if err != nil {
		log.Fatalf("Failed to initialize translator: %v", err)
	}
	return services.NewBridgeGenerator(rag, translator,
		append(common,
			services.WithMinLength(cfg.Generation.BridgeMinQuestionLength),
			services.WithTranslateTimeout(cfg.Translation.Timeout),
			services.WithPivot(cfg.Translation.Pivot),
		)...)
}
