package document

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
)

// MarkdownParser Markdown文档解析器
type MarkdownParser struct{}

// NewMarkdownParser 创建新的Markdown解析器
func NewMarkdownParser() Parser {
	return &MarkdownParser{}
}

// Name 返回解析器名称
func (p *MarkdownParser) Name() string {
	return "markdown"
}

// Parse 解析Markdown文件并提取文本内容
func (p *MarkdownParser) Parse(_ context.Context, filePath string) (string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read markdown file: %v", err)
	}
	return MarkdownText(content), nil
}

// MarkdownText 遍历Markdown语法树，收集文本节点
// 块级元素之间以换行分隔
func MarkdownText(content []byte) string {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	doc := parser.NewWithExtensions(extensions).Parse(content)

	var b strings.Builder
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		switch n := node.(type) {
		case *ast.Text, *ast.Code, *ast.CodeBlock:
			if entering {
				if leaf := n.AsLeaf(); leaf != nil {
					b.Write(leaf.Literal)
				}
			}
		case *ast.Softbreak, *ast.Hardbreak:
			if entering {
				b.WriteString(" ")
			}
		case *ast.Paragraph, *ast.Heading, *ast.ListItem, *ast.TableRow:
			if !entering {
				b.WriteString("\n")
			}
		case *ast.TableCell:
			if !entering {
				b.WriteString(" ")
			}
		}
		return ast.GoToNext
	})

	lines := strings.Split(b.String(), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
