package pyprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/doc-QG-system/internal/logger"
)

// Client 是Python服务的HTTP客户端接口
type Client interface {
	// Get 发送GET请求
	Get(ctx context.Context, path string, result interface{}) error
	// Post 发送JSON格式的POST请求
	Post(ctx context.Context, path string, data interface{}, result interface{}) error
	// PostForm 发送表单格式的POST请求
	PostForm(ctx context.Context, path string, form map[string]string, result interface{}) error
	// GetConfig 获取客户端配置
	GetConfig() *PyServiceConfig
}

// HTTPClient 实现了Python服务的HTTP客户端
type HTTPClient struct {
	client  *http.Client
	config  *PyServiceConfig
	headers map[string]string
	logger  *logrus.Logger
}

// APIError 表示API调用返回的错误
type APIError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Detail     string `json:"detail"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status code: %d): %s - %s", e.StatusCode, e.Message, e.Detail)
}

// Retryable 服务端错误可以重试
func (e *APIError) Retryable() bool {
	return e.StatusCode >= 500
}

// NewClient 创建一个新的Python服务HTTP客户端
func NewClient(config *PyServiceConfig) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		return nil, errors.New("python service base url is empty")
	}

	client := &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = DefaultConfig().UserAgent
	}

	return &HTTPClient{
		client: client,
		config: config,
		headers: map[string]string{
			"Accept":     "application/json",
			"User-Agent": userAgent,
		},
		logger: logger.GetLogger(),
	}, nil
}

// Get 发送GET请求到Python服务
func (c *HTTPClient) Get(ctx context.Context, path string, result interface{}) error {
	return c.doRequestWithRetry(ctx, http.MethodGet, path, "", nil, result)
}

// Post 发送POST请求到Python服务
func (c *HTTPClient) Post(ctx context.Context, path string, data interface{}, result interface{}) error {
	var body []byte
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			return errors.Wrap(err, "failed to marshal request data")
		}
		body = jsonData
	}
	return c.doRequestWithRetry(ctx, http.MethodPost, path, "application/json", body, result)
}

// PostForm 发送表单POST请求到Python服务
func (c *HTTPClient) PostForm(ctx context.Context, path string, form map[string]string, result interface{}) error {
	values := url.Values{}
	for k, v := range form {
		values.Set(k, v)
	}
	body := []byte(values.Encode())
	return c.doRequestWithRetry(ctx, http.MethodPost, path, "application/x-www-form-urlencoded", body, result)
}

// doRequestWithRetry 执行HTTP请求并支持重试
// 每次尝试都重新构建请求体，只对网络错误和5xx重试
func (c *HTTPClient) doRequestWithRetry(ctx context.Context, method, path, contentType string, body []byte, result interface{}) error {
	endpoint := c.config.BaseURL + path

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return errors.Wrap(ctx.Err(), "request context canceled")
			case <-time.After(c.config.RetryDelay * time.Duration(attempt)):
			}
		}

		lastErr = c.do(ctx, method, endpoint, contentType, body, result)
		if lastErr == nil {
			return nil
		}

		var apiErr *APIError
		if errors.As(lastErr, &apiErr) && !apiErr.Retryable() {
			return lastErr
		}
		if ctx.Err() != nil {
			return errors.Wrap(ctx.Err(), "request context canceled")
		}

		c.logger.WithFields(logrus.Fields{
			"attempt": attempt + 1,
			"path":    path,
			"error":   lastErr.Error(),
		}).Warn("Python service request failed")
	}

	return lastErr
}

// do 执行单次请求
func (c *HTTPClient) do(ctx context.Context, method, endpoint, contentType string, body []byte, result interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "HTTP request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    "API call failed",
		}

		// 尝试解析错误详情
		var errResp struct {
			Detail string `json:"detail"`
		}
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Detail != "" {
			apiErr.Detail = errResp.Detail
		} else {
			apiErr.Detail = string(respBody)
		}
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return errors.Wrap(err, "failed to unmarshal response JSON")
		}
	}
	return nil
}

// GetConfig 返回客户端配置
func (c *HTTPClient) GetConfig() *PyServiceConfig {
	return c.config
}
