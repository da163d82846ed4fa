package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jung-kurt/gofpdf"

	"github.com/fyerfyer/doc-QG-system/internal/models"
)

// stubExtractor 返回固定文本的提取器
type stubExtractor struct {
	text string
	ok   bool
}

func (e stubExtractor) Extract(_ context.Context, _ string) (string, bool) {
	return e.text, e.ok
}

// fixedParser 返回固定文本的文档解析器
type fixedParser struct {
	name  string
	text  string
	calls int
}

func (p *fixedParser) Parse(_ context.Context, _ string) (string, error) {
	p.calls++
	return p.text, nil
}

func (p *fixedParser) Name() string {
	return p.name
}

// stubProducer 记录调用的候选生成器
type stubProducer struct {
	mu     sync.Mutex
	chunks []string
	fn     func(chunk string, n int) ([]string, error)
}

func (p *stubProducer) Produce(_ context.Context, chunk string, n int) ([]string, error) {
	p.mu.Lock()
	p.chunks = append(p.chunks, chunk)
	p.mu.Unlock()
	return p.fn(chunk, n)
}

func (p *stubProducer) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.chunks)
}

// numbered 每次生成n个带块序号的不同问题
func numbered(chunk string, n int) ([]string, error) {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("What does the passage %q say in point %d?", chunk, i+1)
	}
	return out, nil
}

// recordingGenerator 记录收到的路径并返回固定结果
type recordingGenerator struct {
	lang      models.Language
	questions []string
	err       error
	paths     []string
	exists    []bool
}

func (g *recordingGenerator) Language() models.Language { return g.lang }

func (g *recordingGenerator) GenerateQuestions(_ context.Context, path string, _ models.GenerationRequest) ([]string, error) {
	g.paths = append(g.paths, path)
	_, err := os.Stat(path)
	g.exists = append(g.exists, err == nil)
	return g.questions, g.err
}

// createTempPDF 创建包含指定文本行的临时PDF
func createTempPDF(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.pdf")

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(false)
	pdf.AddPage()
	pdf.SetFont("Arial", "", 12)
	for _, line := range lines {
		pdf.MultiCell(0, 10, line, "", "", false)
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		t.Fatalf("Failed to write PDF: %v", err)
	}
	return path
}

// createTempFile 创建指定扩展名的临时文件
func createTempFile(t *testing.T, content, ext string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample"+ext)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	return path
}
