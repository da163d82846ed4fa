package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		" WARN ":  logrus.WarnLevel,
		"warning": logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"info":    logrus.InfoLevel,
		"verbose": logrus.InfoLevel,
		"":        logrus.InfoLevel,
	}
	for input, want := range tests {
		assert.Equal(t, want, ParseLevel(input), "level %q", input)
	}
}

// TestTruncate 测试按字符截断
func TestTruncate(t *testing.T) {
	short := "रामः वनं गच्छति"
	assert.Equal(t, short, Truncate(short))

	long := strings.Repeat("क", MaxInputLength+5)
	got := Truncate(long)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, strings.Repeat("क", MaxInputLength)+"...", got)
}

// TestFailure 测试软失败日志字段
func TestFailure(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.JSONFormatter{})

	Failure(l, "translate", strings.Repeat("a", 100)).Warn("Translation failed")

	out := buf.String()
	assert.Contains(t, out, `"operation":"translate"`)
	assert.Contains(t, out, `"input":"`+strings.Repeat("a", MaxInputLength)+`..."`)
	assert.Contains(t, out, "Translation failed")
}

// TestSetupWithFile 测试日志同时写入文件
func TestSetupWithFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "app.log")
	l := Setup("debug", file)
	defer l.SetOutput(os.Stderr)
	defer l.SetLevel(logrus.InfoLevel)

	assert.Same(t, GetLogger(), l)
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())

	l.Debug("written to file")
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}
