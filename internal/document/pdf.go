package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFParser 基于pdfcpu的PDF解析器
// 从页面内容流中提取文本绘制操作的字符串
type PDFParser struct{}

// NewPDFParser 创建一个新的PDF解析器
func NewPDFParser() Parser {
	return &PDFParser{}
}

// Name 返回解析器名称
func (p *PDFParser) Name() string {
	return "pdfcpu"
}

var pageSuffix = regexp.MustCompile(`(\d+)\.txt$`)

// Parse 解析PDF文件并提取其文本内容
func (p *PDFParser) Parse(ctx context.Context, filePath string) (string, error) {
	tmpDir, err := os.MkdirTemp("", "pdfcpu_extract_")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	conf := model.NewDefaultConfiguration()

	// 导出每页的内容流
	if err := api.ExtractContentFile(filePath, tmpDir, nil, conf); err != nil {
		return "", fmt.Errorf("failed to extract content from PDF: %v", err)
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		return "", fmt.Errorf("failed to read extracted content dir: %v", err)
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".txt") {
			files = append(files, e.Name())
		}
	}

	// 按页码排序
	sort.SliceStable(files, func(i, j int) bool {
		return pageNumber(files[i]) < pageNumber(files[j])
	})

	var pages []string
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		data, err := os.ReadFile(filepath.Join(tmpDir, name))
		if err != nil {
			continue
		}
		if text := strings.TrimSpace(contentStreamText(string(data))); text != "" {
			pages = append(pages, text)
		}
	}

	result := strings.Join(pages, "\n")
	if result == "" {
		return "", fmt.Errorf("no text content found in PDF")
	}
	return result, nil
}

// PageCount 返回PDF页数，用于校验上传文件
func PageCount(filePath string) (int, error) {
	n, err := api.PageCountFile(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to read PDF page count: %v", err)
	}
	return n, nil
}

func pageNumber(name string) int {
	m := pageSuffix.FindStringSubmatch(name)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// contentStreamText 从内容流中提取Tj、TJ、'和"操作绘制的字面量和十六进制字符串
func contentStreamText(stream string) string {
	var out strings.Builder
	var operands []string

	flush := func(sep string) {
		if len(operands) > 0 {
			out.WriteString(strings.Join(operands, ""))
			out.WriteString(sep)
		}
		operands = nil
	}

	for i := 0; i < len(stream); {
		c := stream[i]
		switch {
		case c == '(':
			s, next := readLiteral(stream, i)
			operands = append(operands, s)
			i = next
		case c == '<' && i+1 < len(stream) && stream[i+1] == '<':
			// 字典
			i += 2
		case c == '<':
			s, next := readHex(stream, i)
			operands = append(operands, s)
			i = next
		case c == '%':
			for i < len(stream) && stream[i] != '\n' && stream[i] != '\r' {
				i++
			}
		case isOperatorByte(c):
			start := i
			for i < len(stream) && isOperatorByte(stream[i]) {
				i++
			}
			switch stream[start:i] {
			case "Tj", "TJ", "'", "\"":
				flush(" ")
			case "ET":
				flush("")
				out.WriteString("\n")
			case "Td", "TD", "T*", "Tm":
				flush("")
				out.WriteString(" ")
			default:
				operands = nil
			}
		default:
			i++
		}
	}

	return whitespacePattern.ReplaceAllStringFunc(out.String(), func(ws string) string {
		if strings.Contains(ws, "\n") {
			return "\n"
		}
		return " "
	})
}

func isOperatorByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '*' || c == '\'' || c == '"'
}

// readLiteral 读取从start处开始的字面量字符串，返回内容和结束位置
func readLiteral(stream string, start int) (string, int) {
	var b strings.Builder
	depth := 0
	i := start
	for i < len(stream) {
		c := stream[i]
		switch c {
		case '(':
			if depth > 0 {
				b.WriteByte(c)
			}
			depth++
			i++
		case ')':
			depth--
			i++
			if depth == 0 {
				return b.String(), i
			}
			b.WriteByte(c)
		case '\\':
			i++
			if i >= len(stream) {
				return b.String(), i
			}
			e := stream[i]
			switch e {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'b', 'f':
			case '\r', '\n':
				// 续行
			default:
				if e >= '0' && e <= '7' {
					j := i
					for j < len(stream) && j < i+3 && stream[j] >= '0' && stream[j] <= '7' {
						j++
					}
					v, _ := strconv.ParseUint(stream[i:j], 8, 8)
					b.WriteByte(byte(v))
					i = j
					continue
				}
				b.WriteByte(e)
			}
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), i
}

// readHex 读取从start处开始的十六进制字符串，奇数位末尾补0
func readHex(stream string, start int) (string, int) {
	var digits []byte
	i := start + 1
	for i < len(stream) && stream[i] != '>' {
		if c := stream[i]; isHexDigit(c) {
			digits = append(digits, c)
		}
		i++
	}
	if i < len(stream) {
		i++
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}

	out := make([]byte, 0, len(digits)/2)
	for j := 0; j < len(digits); j += 2 {
		v, _ := strconv.ParseUint(string(digits[j:j+2]), 16, 8)
		out = append(out, byte(v))
	}
	return string(out), i
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
