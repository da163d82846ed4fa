package models

import (
	"sort"
	"strings"
)

// Language 支持的语言名称
type Language string

const (
	English  Language = "english"
	Hindi    Language = "hindi"
	Sanskrit Language = "sanskrit"
)

// supportedLanguages 语言名称到语言代码的映射
var supportedLanguages = map[Language]string{
	English:  "en",
	Hindi:    "hi",
	Sanskrit: "sa",
}

// ParseLanguage 将输入转换为语言名称，忽略大小写
func ParseLanguage(name string) (Language, bool) {
	lang := Language(strings.ToLower(strings.TrimSpace(name)))
	_, ok := supportedLanguages[lang]
	return lang, ok
}

// ValidateLanguage 检查语言是否受支持
func ValidateLanguage(name string) bool {
	_, ok := ParseLanguage(name)
	return ok
}

// SupportedLanguages 返回语言映射的副本
func SupportedLanguages() map[string]string {
	out := make(map[string]string, len(supportedLanguages))
	for lang, code := range supportedLanguages {
		out[string(lang)] = code
	}
	return out
}

// LanguageNames 返回排序后的语言名称列表
func LanguageNames() []string {
	names := make([]string, 0, len(supportedLanguages))
	for lang := range supportedLanguages {
		names = append(names, string(lang))
	}
	sort.Strings(names)
	return names
}

// Code 返回语言代码
func (l Language) Code() string {
	return supportedLanguages[l]
}
