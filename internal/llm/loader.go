package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/fyerfyer/doc-QG-system/internal/logger"
)

// LoadFirst 按顺序尝试候选模型，返回第一个可用的客户端
// 实现了Loader的客户端会先调用Load确认模型可用
func LoadFirst(ctx context.Context, provider string, names []string, opts ...Option) (Client, error) {
	log := logger.GetLogger()

	var failures []string
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}

		modelOpts := make([]Option, 0, len(opts)+1)
		modelOpts = append(modelOpts, opts...)
		modelOpts = append(modelOpts, WithModel(name))

		client, err := NewClient(provider, modelOpts...)
		if err != nil {
			log.WithError(err).WithField("model", name).Warn("Failed to create model client")
			failures = append(failures, fmt.Sprintf("%s: %v", name, err))
			continue
		}

		if loader, ok := client.(Loader); ok {
			if err := loader.Load(ctx); err != nil {
				log.WithError(err).WithField("model", name).Warn("Failed to load model, trying next candidate")
				failures = append(failures, fmt.Sprintf("%s: %v", name, err))
				continue
			}
		}

		log.WithField("model", client.Name()).WithField("provider", provider).Info("Generation model loaded")
		return client, nil
	}

	msg := ErrMsgModelUnavailable
	if len(failures) > 0 {
		msg += ": " + strings.Join(failures, "; ")
	}
	return nil, NewLLMError(ErrCodeModelUnavailable, msg)
}
