package document

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SplitType 文本分段的类型
type SplitType string

const (
	// ByLength 按固定字符数分割
	ByLength SplitType = "length"
	// BySentence 按句末标点分割
	BySentence SplitType = "sentence"
)

// DefaultChunkSize 默认分块大小（字符数）
const DefaultChunkSize = 1000

// HindiDelimiter 印地语句末标点
const HindiDelimiter = "।"

// SplitterConfig 分段器配置
type SplitterConfig struct {
	SplitType SplitType // 分割类型
	ChunkSize int       // 分块大小（按字符数），仅ByLength使用
	Delimiter string    // 句末标点，仅BySentence使用
	MaxChunks int       // 最大分块数量（0表示不限制）
}

// DefaultSplitterConfig 返回默认分段器配置
func DefaultSplitterConfig() SplitterConfig {
	return SplitterConfig{
		SplitType: ByLength,
		ChunkSize: DefaultChunkSize,
	}
}

// SentenceSplitterConfig 返回按句分割的配置
func SentenceSplitterConfig(delimiter string) SplitterConfig {
	return SplitterConfig{
		SplitType: BySentence,
		Delimiter: delimiter,
	}
}

// TextSplitter 实现文本分段器接口
type TextSplitter struct {
	config SplitterConfig
}

// NewTextSplitter 创建新的文本分段器
func NewTextSplitter(config SplitterConfig) *TextSplitter {
	if config.SplitType == ByLength && config.ChunkSize <= 0 {
		config.ChunkSize = DefaultChunkSize
	}
	return &TextSplitter{
		config: config,
	}
}

// Split 将文本分割成内容段落
func (s *TextSplitter) Split(text string) ([]Content, error) {
	if text == "" {
		return []Content{}, nil
	}

	var chunks []string

	switch s.config.SplitType {
	case ByLength:
		chunks = SplitFixed(text, s.config.ChunkSize)
	case BySentence:
		if s.config.Delimiter == "" {
			return nil, fmt.Errorf("sentence splitter requires a delimiter")
		}
		chunks = SplitSentences(text, s.config.Delimiter)
	default:
		return nil, fmt.Errorf("unknown split type: %s", s.config.SplitType)
	}

	// 应用最大分块数量限制
	if s.config.MaxChunks > 0 && len(chunks) > s.config.MaxChunks {
		chunks = chunks[:s.config.MaxChunks]
	}

	contents := make([]Content, len(chunks))
	for i, chunk := range chunks {
		contents[i] = Content{
			Text:  chunk,
			Index: i,
		}
	}
	return contents, nil
}

// SplitFixed 按字符数切分为不重叠的块
// 每块去除首尾空白，空块被丢弃
func SplitFixed(text string, size int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}

	var chunks []string
	runes := []rune(text)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

// SplitSentences 在句末标点后紧跟空白处切分
// 标点保留在句子末尾，空句被丢弃
func SplitSentences(text, delimiter string) []string {
	var sentences []string

	rest := text
	start := 0
	for {
		idx := strings.Index(rest[start:], delimiter)
		if idx < 0 {
			break
		}
		cut := start + idx + len(delimiter)

		// 标点后必须是空白
		r, size := utf8.DecodeRuneInString(rest[cut:])
		if size == 0 || !unicode.IsSpace(r) {
			start = cut
			continue
		}

		if sentence := strings.TrimSpace(rest[:cut]); sentence != "" {
			sentences = append(sentences, sentence)
		}
		rest = strings.TrimLeftFunc(rest[cut:], unicode.IsSpace)
		start = 0
	}

	if sentence := strings.TrimSpace(rest); sentence != "" {
		sentences = append(sentences, sentence)
	}
	return sentences
}
