// Package grammar 基于规则的句子到问题转换
package grammar

import (
	"regexp"
	"strings"
)

// Builder 根据捕获组构造问题，不适用时返回false
type Builder func(groups []string) (string, bool)

// Rule 一条转换规则：匹配模式和问题构造函数
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Build   Builder
}

// RuleSet 按顺序求值的规则表，第一个成功的规则生效
type RuleSet []Rule

// Apply 对单个句子应用规则
// 规则匹配但构造函数拒绝时继续尝试后面的规则
func (rs RuleSet) Apply(sentence string) (string, bool) {
	q, _, ok := rs.Match(sentence)
	return q, ok
}

// Match 返回生成的问题和生效的规则名称
func (rs RuleSet) Match(sentence string) (question, rule string, ok bool) {
	for _, r := range rs {
		groups := r.Pattern.FindStringSubmatch(sentence)
		if groups == nil {
			continue
		}
		if q, built := r.Build(groups); built {
			return q, r.Name, true
		}
	}
	return "", "", false
}

// DropLastWord 去掉短语的最后一个词
// 短语不足两个词时返回false
func DropLastWord(phrase string) (string, bool) {
	words := strings.Fields(phrase)
	if len(words) < 2 {
		return "", false
	}
	return strings.Join(words[:len(words)-1], " "), true
}
