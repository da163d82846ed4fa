package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
)

// GCSStorage Google Cloud Storage存储实现
type GCSStorage struct {
	client *gcs.Client
	bucket *gcs.BucketHandle
}

// GCSConfig GCS存储配置
type GCSConfig struct {
	Bucket string // 存储桶名称
}

// NewGCSStorage 创建GCS存储实例，凭据来自应用默认凭据
func NewGCSStorage(ctx context.Context, cfg GCSConfig) (*GCSStorage, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("gcs bucket cannot be empty")
	}

	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &GCSStorage{
		client: client,
		bucket: client.Bucket(cfg.Bucket),
	}, nil
}

// Save 上传文件，对象不存在时才写入
func (s *GCSStorage) Save(ctx context.Context, reader io.Reader, filename string) (FileInfo, error) {
	id := uuid.New().String()
	name := objectName(id, filename)
	contentType := getMimeType(filename)

	writer := s.bucket.Object(name).If(gcs.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = contentType

	size, err := io.Copy(writer, reader)
	if err != nil {
		writer.Close()
		return FileInfo{}, fmt.Errorf("failed to upload file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return FileInfo{}, fmt.Errorf("failed to finalize upload: %w", err)
	}

	return FileInfo{
		ID:       id,
		Name:     filename,
		Size:     size,
		MimeType: contentType,
		Path:     name,
	}, nil
}

// Get 获取文件内容
func (s *GCSStorage) Get(ctx context.Context, id string) (io.ReadCloser, error) {
	name, err := s.findObject(ctx, id)
	if err != nil {
		return nil, err
	}
	reader, err := s.bucket.Object(name).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open object: %w", err)
	}
	return reader, nil
}

// Delete 删除文件
func (s *GCSStorage) Delete(ctx context.Context, id string) error {
	name, err := s.findObject(ctx, id)
	if err != nil {
		return err
	}
	if err := s.bucket.Object(name).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// List 列出存储桶中的所有文件
func (s *GCSStorage) List(ctx context.Context) ([]FileInfo, error) {
	var files []FileInfo

	it := s.bucket.Objects(ctx, nil)
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error listing objects: %w", err)
		}
		files = append(files, FileInfo{
			ID:       idFromName(attrs.Name),
			Name:     attrs.Name,
			Size:     attrs.Size,
			MimeType: attrs.ContentType,
			Path:     attrs.Name,
		})
	}
	return files, nil
}

// Exists 检查文件是否存在
func (s *GCSStorage) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.findObject(ctx, id)
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, err
}

// Close 关闭客户端
func (s *GCSStorage) Close() error {
	return s.client.Close()
}

// findObject 根据ID查找对象名
func (s *GCSStorage) findObject(ctx context.Context, id string) (string, error) {
	files, err := s.List(ctx)
	if err != nil {
		return "", err
	}
	for _, file := range files {
		if file.ID == id {
			return file.Path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, id)
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
