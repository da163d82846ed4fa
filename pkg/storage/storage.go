package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileInfo 文件元数据结构
type FileInfo struct {
	ID       string // 文件唯一标识符
	Name     string // 原始文件名
	Size     int64  // 文件大小(字节)
	MimeType string // 文件MIME类型(可选)
	Path     string // 内部存储路径(实现相关)
}

// Storage 文件存储接口
// 上传的文档在处理前暂存于此，处理结束后删除
type Storage interface {
	// Save 保存文件并返回文件信息
	Save(ctx context.Context, reader io.Reader, filename string) (FileInfo, error)

	// Get 获取文件内容
	Get(ctx context.Context, id string) (io.ReadCloser, error)

	// Delete 删除文件
	Delete(ctx context.Context, id string) error

	// List 列出所有文件
	List(ctx context.Context) ([]FileInfo, error)

	// Exists 检查文件是否存在
	Exists(ctx context.Context, id string) (bool, error)
}

// Localizer 可以直接给出本地文件路径的存储
type Localizer interface {
	LocalPath(info FileInfo) string
}

// 存储类型
const (
	TypeLocal = "local"
	TypeMinio = "minio"
	TypeGCS   = "gcs"
)

// Config 存储配置
type Config struct {
	Type  string
	Local LocalConfig
	Minio MinioConfig
	GCS   GCSConfig
}

// New 根据配置创建存储实例
func New(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Type {
	case TypeLocal, "":
		return NewLocalStorage(cfg.Local)
	case TypeMinio:
		return NewMinioStorage(ctx, cfg.Minio)
	case TypeGCS:
		return NewGCSStorage(ctx, cfg.GCS)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// LocalPath 返回可供解析器读取的本地路径
// 远程存储会下载到临时文件，调用方使用完后应调用cleanup
func LocalPath(ctx context.Context, s Storage, info FileInfo) (path string, cleanup func(), err error) {
	if l, ok := s.(Localizer); ok {
		return l.LocalPath(info), func() {}, nil
	}

	reader, err := s.Get(ctx, info.ID)
	if err != nil {
		return "", nil, err
	}
	defer reader.Close()

	tmp, err := os.CreateTemp("", "docqg-*"+filepath.Ext(info.Name))
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp file: %v", err)
	}
	cleanup = func() { os.Remove(tmp.Name()) }

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		cleanup()
		return "", nil, fmt.Errorf("failed to download file: %v", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to write temp file: %v", err)
	}
	return tmp.Name(), cleanup, nil
}

// objectName 生成按日期分目录的对象名
func objectName(id, filename string) string {
	now := time.Now()
	return fmt.Sprintf("%04d/%02d/%02d/%s%s", now.Year(), now.Month(), now.Day(), id, filepath.Ext(filename))
}

// idFromName 从对象名中提取ID
func idFromName(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// getMimeType 简单根据文件扩展名判断MIME类型
func getMimeType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".md", ".markdown":
		return "text/markdown"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
