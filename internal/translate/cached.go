package translate

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/doc-QG-system/internal/cache"
	"github.com/fyerfyer/doc-QG-system/internal/logger"
)

// CachedTranslator 缓存成功的翻译结果
// 缓存读写失败只记录日志，不影响翻译
type CachedTranslator struct {
	inner  Translator
	cache  cache.Cache
	ttl    time.Duration
	logger logrus.FieldLogger
}

// NewCachedTranslator 为翻译客户端添加缓存
func NewCachedTranslator(inner Translator, c cache.Cache, ttl time.Duration) *CachedTranslator {
	return &CachedTranslator{
		inner:  inner,
		cache:  c,
		ttl:    ttl,
		logger: logger.GetLogger(),
	}
}

// Name 返回被装饰的提供方名称
func (t *CachedTranslator) Name() string {
	return t.inner.Name()
}

// Translate 先查缓存，未命中时调用底层客户端
func (t *CachedTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	if err := checkArgs(text, source, target); err != nil {
		return "", err
	}

	key := cache.TranslationKey(source, target, text)
	if value, found, err := t.cache.Get(ctx, key); err != nil {
		t.logger.WithError(err).WithField("key", key).Warn("Translation cache read failed")
	} else if found {
		return value, nil
	}

	out, err := t.inner.Translate(ctx, text, source, target)
	if err != nil {
		return "", err
	}

	if err := t.cache.Set(ctx, key, out, t.ttl); err != nil {
		t.logger.WithError(err).WithField("key", key).Warn("Translation cache write failed")
	}
	return out, nil
}
