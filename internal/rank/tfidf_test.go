package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testChunks = []string{
	"The Roman senate advised the consuls on matters of state.",
	"Photosynthesis converts light energy into chemical energy in plants.",
	"Chlorophyll absorbs light, which drives photosynthesis in leaves.",
	"Aqueducts carried water into Roman cities.",
}

// TestRankByRelevance 测试按相关度排序
func TestRankByRelevance(t *testing.T) {
	r := NewRanker()

	got := r.Rank("photosynthesis light", testChunks, 2)
	require.Len(t, got, 2)
	assert.ElementsMatch(t, []string{testChunks[1], testChunks[2]}, got)

	got = r.Rank("roman", testChunks, 4)
	require.Len(t, got, 4)
	assert.Contains(t, got[:2], testChunks[0])
	assert.Contains(t, got[:2], testChunks[3])
}

// TestRankScoresDescending 测试分数降序
func TestRankScoresDescending(t *testing.T) {
	scored := NewRanker().Score("roman senate consuls", testChunks, 4)
	require.Len(t, scored, 4)
	assert.Equal(t, 0, scored[0].Index)
	for i := 1; i < len(scored); i++ {
		assert.GreaterOrEqual(t, scored[i-1].Score, scored[i].Score)
	}
	assert.InDelta(t, 0.0, scored[3].Score, 1e-9)
}

// TestRankTieBreak 测试分数相同时保持原始顺序
func TestRankTieBreak(t *testing.T) {
	chunks := []string{"alpha beta", "gamma delta", "epsilon zeta", "alpha beta"}
	got := NewRanker().Score("unrelated words", chunks, 4)
	require.Len(t, got, 4)
	for i, s := range got {
		assert.Equal(t, i, s.Index)
	}

	got = NewRanker().Score("alpha", chunks, 2)
	assert.Equal(t, 0, got[0].Index)
	assert.Equal(t, 3, got[1].Index)
}

// TestRankEdgeCases 测试边界情况
func TestRankEdgeCases(t *testing.T) {
	r := NewRanker()

	t.Run("empty prompt returns first n unmodified", func(t *testing.T) {
		assert.Equal(t, testChunks[:3], r.Rank("", testChunks, 3))
		assert.Equal(t, testChunks[:2], r.Rank("   ", testChunks, 2))
	})

	t.Run("empty chunks", func(t *testing.T) {
		assert.Empty(t, r.Rank("roman", nil, 5))
		assert.Empty(t, r.Rank("", []string{}, 5))
	})

	t.Run("top n larger than chunks", func(t *testing.T) {
		assert.Len(t, r.Rank("roman", testChunks, 10), len(testChunks))
	})

	t.Run("non positive top n", func(t *testing.T) {
		assert.Empty(t, r.Rank("roman", testChunks, 0))
	})

	t.Run("degenerate vocabulary", func(t *testing.T) {
		chunks := []string{"a b", "c d", "e"}
		assert.Equal(t, chunks[:2], r.Rank("x y", chunks, 2))
	})

	t.Run("prompt without tokens", func(t *testing.T) {
		assert.Equal(t, testChunks[:2], r.Rank("? !", testChunks, 2))
	})
}

// TestTokenize 测试分词
func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"hello", "world", "42"}, Tokenize("Hello, a World! 42"))
	assert.Equal(t, []string{"संस्कृतम्", "भाषा"}, Tokenize("संस्कृतम् भाषा"))
}
