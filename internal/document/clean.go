package document

import (
	"regexp"
	"strings"
	"unicode"
)

// 基础标点白名单
const basePunctuation = `.,!?;:-()[]{}`

// DandaPunctuation 天城文句末标点
const DandaPunctuation = "।॥"

var (
	urlPattern        = regexp.MustCompile(`http\S+|www\S+|file:\S+|\S+\.html`)
	whitespacePattern = regexp.MustCompile(`[\s\p{Z}]+`)

	defaultCleaner = NewCleaner()
)

// Cleaner 文本清洗器
// 保留字母、组合符号、数字、下划线、空白以及白名单中的标点
type Cleaner struct {
	disallowed *regexp.Regexp
}

// NewCleaner 创建文本清洗器，extra为额外保留的字符
func NewCleaner(extra ...string) *Cleaner {
	keep := basePunctuation + strings.Join(extra, "")
	pattern := `[^\p{L}\p{M}\p{N}_\s\p{Z}` + escapeClass(keep) + `]`
	return &Cleaner{
		disallowed: regexp.MustCompile(pattern),
	}
}

// Clean 清洗文本
// 先删除非白名单字符再删除URL，保证重复清洗结果不变
func (c *Cleaner) Clean(text string) string {
	if text == "" {
		return ""
	}

	text = c.disallowed.ReplaceAllString(text, "")
	text = whitespacePattern.ReplaceAllString(text, " ")
	text = urlPattern.ReplaceAllString(text, "")
	text = whitespacePattern.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}

// Clean 使用默认白名单清洗文本
func Clean(text string) string {
	return defaultCleaner.Clean(text)
}

// escapeClass 转义字符类中的ASCII标点
func escapeClass(chars string) string {
	var b strings.Builder
	for _, r := range chars {
		if r < 0x80 && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
