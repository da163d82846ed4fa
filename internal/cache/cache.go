package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache 字符串缓存接口
// 缓存只是加速手段，调用方应把错误当作未命中处理
type Cache interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Close() error
}

// Factory 缓存工厂函数类型
type Factory func(config Config) (Cache, error)

// 注册的缓存实现
var registry = make(map[string]Factory)

// RegisterCache 注册缓存实现
func RegisterCache(name string, factory Factory) {
	registry[name] = factory
}

// NewCache 创建缓存实例
func NewCache(config Config) (Cache, error) {
	if factory, ok := registry[config.Type]; ok {
		return factory(config)
	}
	// 默认使用内存缓存
	return NewMemoryCache(config)
}

// 缓存类型
const (
	TypeMemory = "memory"
	TypeRedis  = "redis"
	TypeBolt   = "bolt"
)

// Config 缓存配置
type Config struct {
	// 缓存类型: "memory", "redis", "bolt"
	Type string
	// Redis连接地址 (仅Redis缓存使用)
	RedisAddr string
	// Redis密码 (仅Redis缓存使用)
	RedisPassword string
	// Redis数据库编号 (仅Redis缓存使用)
	RedisDB int
	// 数据库文件路径 (仅Bolt缓存使用)
	BoltPath string
	// 键名前缀，Clear只清理带该前缀的键
	Namespace string
	// 默认缓存过期时间
	DefaultTTL time.Duration
	// 自动清理间隔时间 (仅内存缓存使用)
	CleanupInterval time.Duration
}

// DefaultConfig 返回默认缓存配置
func DefaultConfig() Config {
	return Config{
		Type:            TypeMemory,
		BoltPath:        "data/cache.db",
		Namespace:       "docqg",
		DefaultTTL:      time.Hour * 24,
		CleanupInterval: time.Minute * 10,
	}
}

// GenerateCacheKey 生成标准化的缓存键
// 各部分以冒号连接
func GenerateCacheKey(prefix string, parts ...string) string {
	if len(parts) == 0 {
		return prefix
	}
	return prefix + ":" + strings.Join(parts, ":")
}

// Hash 返回内容的sha256十六进制摘要，用于构造定长的键
func Hash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// HashString 返回字符串的sha256十六进制摘要
func HashString(s string) string {
	return Hash([]byte(s))
}

// TranslationKey 翻译结果的缓存键
func TranslationKey(source, target, text string) string {
	return GenerateCacheKey("translate", source, target, HashString(text))
}
