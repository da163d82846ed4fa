package translate

import (
	"context"
	"strings"

	"github.com/fyerfyer/doc-QG-system/internal/pyprovider"
)

// PythonTranslator 通过Python推理服务翻译
type PythonTranslator struct {
	client *pyprovider.TranslateClient
}

// NewPythonTranslator 创建Python服务翻译客户端
func NewPythonTranslator(config Config) (Translator, error) {
	py := config.PyClient
	if py == nil {
		pyCfg := pyprovider.DefaultConfig()
		if config.Endpoint != "" {
			pyCfg.WithBaseURL(config.Endpoint)
		}
		var err error
		if py, err = pyprovider.NewClient(pyCfg); err != nil {
			return nil, err
		}
	}
	return &PythonTranslator{client: pyprovider.NewTranslateClient(py)}, nil
}

// Name 返回提供方名称
func (t *PythonTranslator) Name() string {
	return ProviderPython
}

// Translate 翻译文本
func (t *PythonTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	if err := checkArgs(text, source, target); err != nil {
		return "", err
	}
	out, err := t.client.Translate(ctx, text, source, target)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", ErrEmptyTranslation
	}
	return out, nil
}

func init() {
	Register(ProviderPython, NewPythonTranslator)
}
