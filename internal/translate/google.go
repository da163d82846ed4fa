package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	gtranslate "google.golang.org/api/translate/v2"
)

// GoogleTranslator 基于Google Cloud Translation v2接口
type GoogleTranslator struct {
	service *gtranslate.Service
}

// NewGoogleTranslator 创建Google翻译客户端
func NewGoogleTranslator(config Config) (Translator, error) {
	if config.APIKey == "" {
		return nil, errors.New("google translate api key is empty")
	}

	opts := []option.ClientOption{option.WithAPIKey(config.APIKey)}
	if config.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(config.Endpoint))
	}

	service, err := gtranslate.NewService(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create translate service: %w", err)
	}
	return &GoogleTranslator{service: service}, nil
}

// Name 返回提供方名称
func (t *GoogleTranslator) Name() string {
	return ProviderGoogle
}

// Translate 翻译文本，按纯文本格式返回
func (t *GoogleTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	if err := checkArgs(text, source, target); err != nil {
		return "", err
	}

	resp, err := t.service.Translations.List([]string{text}, target).
		Source(source).
		Format("text").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("google translate %s->%s: %w", source, target, err)
	}
	if len(resp.Translations) == 0 || strings.TrimSpace(resp.Translations[0].TranslatedText) == "" {
		return "", ErrEmptyTranslation
	}
	return resp.Translations[0].TranslatedText, nil
}

func init() {
	Register(ProviderGoogle, NewGoogleTranslator)
}
