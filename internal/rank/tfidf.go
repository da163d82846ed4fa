// Package rank 按词汇相似度对文本块排序
package rank

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// tokenPattern 至少两个字符的词
var tokenPattern = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]{2,}`)

// Ranker 使用TF-IDF余弦相似度对文本块排序
// 每次调用重新计算，不保存状态
type Ranker struct{}

// NewRanker 创建排序器
func NewRanker() *Ranker {
	return &Ranker{}
}

// Scored 带相似度分数的文本块
type Scored struct {
	Index int
	Text  string
	Score float64
}

// Rank 返回与prompt最相关的topN个文本块，按分数降序
// 分数相同时保持原始顺序；prompt为空或词表退化时返回前topN个
func (r *Ranker) Rank(prompt string, chunks []string, topN int) []string {
	scored := r.Score(prompt, chunks, topN)
	out := make([]string, len(scored))
	for i, s := range scored {
		out[i] = s.Text
	}
	return out
}

// Score 与Rank相同，但返回分数和原始位置
func (r *Ranker) Score(prompt string, chunks []string, topN int) []Scored {
	if len(chunks) == 0 || topN <= 0 {
		return []Scored{}
	}
	if topN > len(chunks) {
		topN = len(chunks)
	}

	if strings.TrimSpace(prompt) == "" {
		return firstN(chunks, topN)
	}

	docs := make([][]string, 0, len(chunks)+1)
	docs = append(docs, Tokenize(prompt))
	for _, c := range chunks {
		docs = append(docs, Tokenize(c))
	}

	vectors, ok := vectorize(docs)
	if !ok {
		return firstN(chunks, topN)
	}

	query := vectors[0]
	if len(query) == 0 {
		return firstN(chunks, topN)
	}

	scored := make([]Scored, len(chunks))
	for i, c := range chunks {
		scored[i] = Scored{
			Index: i,
			Text:  c,
			Score: dot(query, vectors[i+1]),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored[:topN]
}

// Tokenize 小写化并切分为词
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// vectorize 计算L2归一化的TF-IDF向量
// idf = ln((1+n)/(1+df)) + 1
func vectorize(docs [][]string) ([]map[string]float64, bool) {
	df := make(map[string]int)
	for _, tokens := range docs {
		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	if len(df) == 0 {
		return nil, false
	}

	n := float64(len(docs))
	idf := make(map[string]float64, len(df))
	for term, count := range df {
		idf[term] = math.Log((1+n)/(1+float64(count))) + 1
	}

	vectors := make([]map[string]float64, len(docs))
	for i, tokens := range docs {
		vec := make(map[string]float64, len(tokens))
		for _, tok := range tokens {
			vec[tok]++
		}
		var norm float64
		for term, tf := range vec {
			w := tf * idf[term]
			vec[term] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for term := range vec {
				vec[term] /= norm
			}
		}
		vectors[i] = vec
	}
	return vectors, true
}

func dot(a, b map[string]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for term, w := range a {
		sum += w * b[term]
	}
	return sum
}

func firstN(chunks []string, n int) []Scored {
	out := make([]Scored, n)
	for i := 0; i < n; i++ {
		out[i] = Scored{Index: i, Text: chunks[i]}
	}
	return out
}
