package cache

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache 进程内缓存，键的命名空间规则与RedisCache一致
type MemoryCache struct {
	store     *gocache.Cache
	namespace string
}

// NewMemoryCache 创建内存缓存
func NewMemoryCache(config Config) (Cache, error) {
	ttl := config.DefaultTTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	interval := config.CleanupInterval
	if interval == 0 {
		interval = 10 * time.Minute
	}

	return &MemoryCache{
		store:     gocache.New(ttl, interval),
		namespace: config.Namespace,
	}, nil
}

func (m *MemoryCache) key(key string) string {
	if m.namespace == "" {
		return key
	}
	return m.namespace + ":" + key
}

// Get 读取缓存，非字符串的值视为未命中
func (m *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	value, found := m.store.Get(m.key(key))
	if !found {
		return "", false, nil
	}
	str, ok := value.(string)
	return str, ok, nil
}

// Set 写入缓存，ttl为0时使用默认过期时间，小于0时不过期
func (m *MemoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	switch {
	case ttl == 0:
		ttl = gocache.DefaultExpiration
	case ttl < 0:
		ttl = gocache.NoExpiration
	}
	m.store.Set(m.key(key), value, ttl)
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.store.Delete(m.key(key))
	return nil
}

// Clear 清空命名空间下的缓存
// 没有命名空间时清空全部
func (m *MemoryCache) Clear(_ context.Context) error {
	if m.namespace == "" {
		m.store.Flush()
		return nil
	}

	prefix := m.namespace + ":"
	for k := range m.store.Items() {
		if strings.HasPrefix(k, prefix) {
			m.store.Delete(k)
		}
	}
	return nil
}

// Close 内存缓存无需释放资源
func (m *MemoryCache) Close() error {
	return nil
}

func init() {
	RegisterCache(TypeMemory, NewMemoryCache)
}
