package cache

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

var bucketEntries = []byte("entries")

// BoltCache 基于bbolt的持久化缓存，进程重启后仍然有效
// 每个值前8字节存放过期时间(UnixNano)，0表示永不过期
type BoltCache struct {
	db         *bbolt.DB
	defaultTTL time.Duration
	now        func() time.Time
}

// NewBoltCache 打开或创建缓存数据库文件
func NewBoltCache(config Config) (Cache, error) {
	path := config.BoltPath
	if path == "" {
		path = DefaultConfig().BoltPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt cache: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketEntries)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltCache{
		db:         db,
		defaultTTL: config.DefaultTTL,
		now:        time.Now,
	}, nil
}

// Get 获取缓存内容，过期的条目会被顺带删除
func (b *BoltCache) Get(_ context.Context, key string) (string, bool, error) {
	var (
		value   string
		found   bool
		expired bool
	)
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketEntries).Get([]byte(key))
		if len(data) < 8 {
			return nil
		}
		deadline := int64(binary.BigEndian.Uint64(data[:8]))
		if deadline != 0 && b.now().UnixNano() > deadline {
			expired = true
			return nil
		}
		value = string(data[8:])
		found = true
		return nil
	})
	if err != nil {
		return "", false, err
	}

	if expired {
		_ = b.db.Update(func(tx *bbolt.Tx) error {
			return tx.Bucket(bucketEntries).Delete([]byte(key))
		})
	}
	return value, found, nil
}

// Set 设置缓存内容
func (b *BoltCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	if ttl == 0 {
		ttl = b.defaultTTL
	}

	var deadline int64
	if ttl > 0 {
		deadline = b.now().Add(ttl).UnixNano()
	}

	data := make([]byte, 8+len(value))
	binary.BigEndian.PutUint64(data[:8], uint64(deadline))
	copy(data[8:], value)

	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketEntries).Put([]byte(key), data)
	})
}

// Delete 删除缓存项
func (b *BoltCache) Delete(_ context.Context, key string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketEntries).Delete([]byte(key))
	})
}

// Clear 清空所有缓存
func (b *BoltCache) Clear(_ context.Context) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketEntries); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketEntries)
		return err
	})
}

// Close 关闭数据库文件
func (b *BoltCache) Close() error {
	return b.db.Close()
}

// 在包初始化时注册Bolt缓存
func init() {
	RegisterCache(TypeBolt, NewBoltCache)
}
