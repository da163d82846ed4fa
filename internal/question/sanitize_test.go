package question

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSanitize 测试问题过滤
func TestSanitize(t *testing.T) {
	q, ok := Sanitize("What is the capital of France?", DefaultMinLength)
	assert.True(t, ok)
	assert.Equal(t, "What is the capital of France?", q)

	_, ok = Sanitize("What?", ShortMinLength)
	assert.False(t, ok, "too short")

	_, ok = Sanitize("what is", 0)
	assert.False(t, ok, "generic template")

	_, ok = Sanitize("  WHERE   IS ", 0)
	assert.False(t, ok, "generic template after cleaning")

	_, ok = Sanitize("", 0)
	assert.False(t, ok)

	q, ok = Sanitize("Who wrote   <b>Hamlet</b>?", DefaultMinLength)
	assert.True(t, ok)
	assert.Equal(t, "Who wrote bHamletb?", q)

	// 长度按字符计算
	q, ok = Sanitize("भारत की राजधानी?", ShortMinLength)
	assert.True(t, ok)
	assert.Equal(t, "भारत की राजधानी?", q)
}

// TestSanitizeAll 测试批量过滤
func TestSanitizeAll(t *testing.T) {
	out := SanitizeAll([]string{"how is", "Why did the empire fall?", "short"}, DefaultMinLength)
	assert.Equal(t, []string{"Why did the empire fall?"}, out)
}

// TestDedupe 测试保序去重
func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c", "d"}, Dedupe([]string{"a", "b", "a", "c", "b", "d"}))
	assert.Empty(t, Dedupe(nil))
	assert.Equal(t, []string{"A", "a"}, Dedupe([]string{"A", "a", "A"}))
}

// TestFinalize 测试去重截取后的长度为min(total, unique)
func TestFinalize(t *testing.T) {
	raw := make([]string, 0, 40)
	for i := 0; i < 40; i++ {
		raw = append(raw, fmt.Sprintf("question %d", i%13))
	}

	for _, total := range []int{1, 5, 13, 20} {
		out := Finalize(raw, total)
		expected := total
		if expected > 13 {
			expected = 13
		}
		assert.Len(t, out, expected)
		assert.Equal(t, "question 0", out[0])
	}

	assert.NotNil(t, Finalize(nil, 5))
	assert.Empty(t, Finalize(nil, 5))
}
