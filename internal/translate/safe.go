package translate

import (
	"context"
	"strings"
	"time"

	"github.com/fyerfyer/doc-QG-system/internal/logger"
)

// SafeTranslate 带超时的翻译调用，失败时返回false而不是错误
// 空白输入不调用翻译客户端，源语言与目标语言相同时原样返回
func SafeTranslate(ctx context.Context, t Translator, text, source, target string, timeout time.Duration) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	if source == target {
		return text, true
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	out, err := t.Translate(ctx, text, source, target)
	if err == nil && strings.TrimSpace(out) == "" {
		err = ErrEmptyTranslation
	}
	if err != nil {
		logger.Failure(logger.GetLogger(), "translate", text).
			WithError(err).
			WithField("source", source).
			WithField("target", target).
			Warn("Translation failed")
		return "", false
	}
	return out, true
}
