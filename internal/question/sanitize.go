// Package question 过滤生成的问题并去重
package question

import (
	"strings"
	"unicode/utf8"

	"github.com/fyerfyer/doc-QG-system/internal/document"
)

// 默认的问题最小长度
const (
	DefaultMinLength = 15
	ShortMinLength   = 10
)

// genericTemplates 过于笼统的问题模板
var genericTemplates = map[string]struct{}{
	"what is":  {},
	"who is":   {},
	"where is": {},
	"when is":  {},
	"how is":   {},
}

// Sanitize 清洗问题文本
// 长度不足或命中笼统模板时返回false
func Sanitize(text string, minLength int) (string, bool) {
	return SanitizeWith(document.Clean, text, minLength)
}

// SanitizeWith 使用指定的清洗函数过滤问题
func SanitizeWith(clean func(string) string, text string, minLength int) (string, bool) {
	cleaned := clean(text)
	if cleaned == "" || utf8.RuneCountInString(cleaned) < minLength {
		return "", false
	}
	if _, generic := genericTemplates[strings.ToLower(cleaned)]; generic {
		return "", false
	}
	return cleaned, true
}

// SanitizeAll 过滤一组问题，保留通过的结果
func SanitizeAll(items []string, minLength int) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if q, ok := Sanitize(item, minLength); ok {
			out = append(out, q)
		}
	}
	return out
}

// Dedupe 去除重复项，保留首次出现的顺序
func Dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

// Cap 截取前n项
func Cap(items []string, n int) []string {
	if n < 0 {
		n = 0
	}
	if len(items) > n {
		return items[:n]
	}
	return items
}

// Finalize 去重后截取，返回的切片不为nil
func Finalize(items []string, total int) []string {
	out := Cap(Dedupe(items), total)
	if out == nil {
		return []string{}
	}
	return out
}
