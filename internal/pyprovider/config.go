package pyprovider

import (
	"time"
)

// PyServiceConfig 存储Python推理服务连接配置
type PyServiceConfig struct {
	BaseURL    string        // Python服务基础URL
	Timeout    time.Duration // 单次请求超时时间
	MaxRetries int           // 最大重试次数
	RetryDelay time.Duration // 重试间隔，按尝试次数线性增长
	UserAgent  string        // 请求User-Agent
}

// DefaultConfig 返回默认配置
func DefaultConfig() *PyServiceConfig {
	return &PyServiceConfig{
		BaseURL:    "http://localhost:8000/api",
		Timeout:    60 * time.Second,
		MaxRetries: 2,
		RetryDelay: time.Second,
		UserAgent:  "Doc-QG-Go-Client/1.0",
	}
}

// WithBaseURL 设置基础URL
func (c *PyServiceConfig) WithBaseURL(url string) *PyServiceConfig {
	c.BaseURL = url
	return c
}

// WithTimeout 设置请求超时时间
func (c *PyServiceConfig) WithTimeout(timeout time.Duration) *PyServiceConfig {
	c.Timeout = timeout
	return c
}

// WithRetry 设置重试参数
func (c *PyServiceConfig) WithRetry(maxRetries int, retryDelay time.Duration) *PyServiceConfig {
	c.MaxRetries = maxRetries
	c.RetryDelay = retryDelay
	return c
}
