package logger

import (
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var log = logrus.New()

// 初始化日志配置
func init() {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})

	// 根据环境变量设置日志级别
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		log.SetLevel(ParseLevel(lvl))
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
}

// 日志字段名
const (
	FieldOperation  = "operation"
	FieldInput      = "input"
	FieldLanguage   = "language"
	FieldChunkIndex = "chunk_index"
	FieldPath       = "path"
)

// MaxInputLength 日志中输入内容的最大字符数
const MaxInputLength = 80

// GetLogger 获取全局日志实例
func GetLogger() *logrus.Logger {
	return log
}

// Setup 设置日志级别和输出文件
// file为空时只输出到标准错误，标准输出留给问题结果
func Setup(level, file string) *logrus.Logger {
	log.SetLevel(ParseLevel(level))

	if file != "" {
		rotating := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    50, // MB
			MaxBackups: 5,
			MaxAge:     30, // 天
			Compress:   true,
		}
		log.SetOutput(io.MultiWriter(os.Stderr, rotating))
	}

	return log
}

// ParseLevel 解析日志级别，无法识别时使用info
func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Truncate 截断日志中的输入内容
func Truncate(s string) string {
	if utf8.RuneCountInString(s) <= MaxInputLength {
		return s
	}
	runes := []rune(s)
	return string(runes[:MaxInputLength]) + "..."
}

// Failure 构建软失败日志的公共字段
func Failure(l logrus.FieldLogger, operation, input string) *logrus.Entry {
	return l.WithFields(logrus.Fields{
		FieldOperation: operation,
		FieldInput:     Truncate(input),
	})
}
