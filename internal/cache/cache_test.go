package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testCacheBehavior 各实现共用的基本功能测试
func testCacheBehavior(t *testing.T, cache Cache) {
	ctx := context.Background()

	// 测试Set和Get
	err := cache.Set(ctx, "key1", "value1", 0) // 使用默认TTL
	require.NoError(t, err)

	val, found, err := cache.Get(ctx, "key1")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "value1", val)

	// 非ASCII内容
	require.NoError(t, cache.Set(ctx, "hindi", "यह किसकी राजधानी है?", 0))
	val, found, err = cache.Get(ctx, "hindi")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "यह किसकी राजधानी है?", val)

	// 测试不存在的键
	val, found, err = cache.Get(ctx, "non-existent")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, val)

	// 测试删除
	require.NoError(t, cache.Set(ctx, "to-delete", "delete-me", 0))
	require.NoError(t, cache.Delete(ctx, "to-delete"))
	_, found, err = cache.Get(ctx, "to-delete")
	assert.NoError(t, err)
	assert.False(t, found)

	// 测试清空
	require.NoError(t, cache.Set(ctx, "key2", "value2", 0))
	require.NoError(t, cache.Clear(ctx))
	_, found, err = cache.Get(ctx, "key2")
	assert.NoError(t, err)
	assert.False(t, found)
}

// TestMemoryCache 测试内存缓存
func TestMemoryCache(t *testing.T) {
	cache, err := NewMemoryCache(Config{
		Type:            TypeMemory,
		DefaultTTL:      time.Second * 2,
		CleanupInterval: time.Second,
	})
	require.NoError(t, err)
	defer cache.Close()

	testCacheBehavior(t, cache)

	// 测试过期
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "expire-soon", "temp-value", time.Millisecond*50))
	time.Sleep(time.Millisecond * 100)

	val, found, err := cache.Get(ctx, "expire-soon")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, val)
}

// TestMemoryCacheNamespace 测试内存缓存的命名空间
func TestMemoryCacheNamespace(t *testing.T) {
	cache, err := NewMemoryCache(Config{Type: TypeMemory, Namespace: "docqg"})
	require.NoError(t, err)
	mem := cache.(*MemoryCache)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "scoped", "v", 0))
	_, found := mem.store.Get("docqg:scoped")
	assert.True(t, found)

	// Clear不影响命名空间外的键
	mem.store.Set("foreign", "keep", 0)
	require.NoError(t, cache.Clear(ctx))
	_, found = mem.store.Get("docqg:scoped")
	assert.False(t, found)
	_, found = mem.store.Get("foreign")
	assert.True(t, found)

	// 非字符串的值视为未命中
	mem.store.Set("docqg:number", 42, 0)
	val, found, err := cache.Get(ctx, "number")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, val)

	// 负的ttl不过期
	require.NoError(t, cache.Set(ctx, "forever", "kept", -1))
	_, expiry, found := mem.store.GetWithExpiration("docqg:forever")
	assert.True(t, found)
	assert.True(t, expiry.IsZero())
}

// TestRedisCache 测试Redis缓存，使用miniredis模拟服务端
func TestRedisCache(t *testing.T) {
	server := miniredis.RunT(t)

	cache, err := NewRedisCache(Config{
		Type:       TypeRedis,
		RedisAddr:  server.Addr(),
		Namespace:  "docqg",
		DefaultTTL: time.Hour,
	})
	require.NoError(t, err)
	defer cache.Close()

	testCacheBehavior(t, cache)

	ctx := context.Background()

	// 键带命名空间前缀，Clear不影响命名空间外的键
	require.NoError(t, cache.Set(ctx, "scoped", "v", 0))
	assert.True(t, server.Exists("docqg:scoped"))
	require.NoError(t, server.Set("foreign", "keep"))
	require.NoError(t, cache.Clear(ctx))
	assert.False(t, server.Exists("docqg:scoped"))
	assert.True(t, server.Exists("foreign"))

	// 测试过期
	require.NoError(t, cache.Set(ctx, "expire-soon", "temp-value", time.Second))
	server.FastForward(2 * time.Second)
	_, found, err := cache.Get(ctx, "expire-soon")
	assert.NoError(t, err)
	assert.False(t, found)
}

// TestRedisCacheUnavailable 测试连接失败
func TestRedisCacheUnavailable(t *testing.T) {
	server := miniredis.RunT(t)
	addr := server.Addr()
	server.Close()

	_, err := NewRedisCache(Config{Type: TypeRedis, RedisAddr: addr})
	assert.Error(t, err)
}

// TestBoltCache 测试Bolt缓存
func TestBoltCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.db")

	cache, err := NewBoltCache(Config{Type: TypeBolt, BoltPath: path, DefaultTTL: time.Hour})
	require.NoError(t, err)

	testCacheBehavior(t, cache)

	// 测试过期，使用可控的时钟
	bolt := cache.(*BoltCache)
	now := time.Now()
	bolt.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "expire-soon", "temp-value", time.Minute))
	require.NoError(t, cache.Set(ctx, "forever", "kept", -1))

	now = now.Add(2 * time.Minute)
	_, found, err := cache.Get(ctx, "expire-soon")
	assert.NoError(t, err)
	assert.False(t, found)

	val, found, err := cache.Get(ctx, "forever")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "kept", val)

	// 重新打开后数据仍然存在
	require.NoError(t, cache.Close())
	reopened, err := NewBoltCache(Config{Type: TypeBolt, BoltPath: path})
	require.NoError(t, err)
	defer reopened.Close()

	val, found, err = reopened.Get(ctx, "forever")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "kept", val)
}

// TestCacheFactory 测试缓存工厂函数
func TestCacheFactory(t *testing.T) {
	memCache, err := NewCache(DefaultConfig())
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, memCache)

	server := miniredis.RunT(t)
	redisCache, err := NewCache(Config{Type: TypeRedis, RedisAddr: server.Addr()})
	require.NoError(t, err)
	assert.IsType(t, &RedisCache{}, redisCache)
	redisCache.Close()

	boltCache, err := NewCache(Config{Type: TypeBolt, BoltPath: filepath.Join(t.TempDir(), "c.db")})
	require.NoError(t, err)
	assert.IsType(t, &BoltCache{}, boltCache)
	boltCache.Close()

	// 测试未知缓存类型（应该返回默认内存缓存）
	unknownCache, err := NewCache(Config{Type: "unknown-type"})
	assert.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, unknownCache)
}

// TestGenerateCacheKey 测试缓存键生成
func TestGenerateCacheKey(t *testing.T) {
	assert.Equal(t, "prefix", GenerateCacheKey("prefix"))
	assert.Equal(t, "prefix:part1", GenerateCacheKey("prefix", "part1"))
	assert.Equal(t, "prefix:part1:part2:part3", GenerateCacheKey("prefix", "part1", "part2", "part3"))

	// sha256摘要
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", HashString(""))
	assert.Len(t, HashString("संस्कृतम्"), 64)

	key := TranslationKey("sa", "en", "नमः")
	assert.Equal(t, "translate:sa:en:"+HashString("नमः"), key)
}
