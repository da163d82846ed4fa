package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/fyerfyer/doc-QG-system/internal/llm"
)

// DefaultTranslatePrompt 模型翻译提示词
const DefaultTranslatePrompt = `Translate the following text from %s to %s. Return only the translation, with no explanation or quotes.

%s`

// languageNames 提示词中使用的语言名称
var languageNames = map[string]string{
	"en": "English",
	"hi": "Hindi",
	"sa": "Sanskrit",
}

// ModelTranslator 通过生成模型完成翻译
type ModelTranslator struct {
	client llm.Client
}

// NewModelTranslator 用已有的生成模型客户端创建翻译客户端
func NewModelTranslator(client llm.Client) *ModelTranslator {
	return &ModelTranslator{client: client}
}

// NewVertexTranslator 创建基于Vertex AI的翻译客户端
func NewVertexTranslator(config Config) (Translator, error) {
	if config.LLM != nil {
		return NewModelTranslator(config.LLM), nil
	}

	client, err := llm.NewClient(llm.ProviderVertex,
		llm.WithProject(config.Project, config.Location),
		llm.WithModel(config.Model),
		llm.WithTemperature(0),
		llm.WithMaxTokens(1024),
	)
	if err != nil {
		return nil, err
	}
	return NewModelTranslator(client), nil
}

// Name 返回提供方名称
func (t *ModelTranslator) Name() string {
	return ProviderVertex + ":" + t.client.Name()
}

// Translate 翻译文本
func (t *ModelTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	if err := checkArgs(text, source, target); err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(DefaultTranslatePrompt, languageName(source), languageName(target), text)
	resp, err := t.client.Generate(ctx, prompt, llm.WithGenerateNumSequences(1), llm.WithGenerateTemperature(0))
	if err != nil {
		return "", err
	}

	out := strings.Trim(strings.TrimSpace(resp.Text), "\"'`")
	if out == "" {
		return "", ErrEmptyTranslation
	}
	return out, nil
}

func languageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}

func init() {
	Register(ProviderVertex, NewVertexTranslator)
}
