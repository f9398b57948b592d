// Package loader 按内容类型或文件扩展名选择加载器并提取文档文本。
package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"rag-system-go/pkg/log"
)

// ErrUnsupportedType 表示没有加载器能处理给定的文件类型。
var ErrUnsupportedType = errors.New("unsupported file type")

// Page 是加载器提取出的一个文本单元。纯文本文件只有第 0 页；
// PDF 按页返回，Number 从 1 开始。
type Page struct {
	Number int
	Text   string
}

// Load 根据声明的 Content-Type 或文件扩展名选择加载器并提取文本。
// 不支持的类型返回 ErrUnsupportedType，由调用方转换为单文件错误状态。
func Load(path, filename, contentType string) ([]Page, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case contentType == "application/pdf" || ext == ".pdf":
		return loadPDF(path)
	case contentType == "text/plain" || ext == ".txt":
		return loadText(path)
	default:
		return nil, ErrUnsupportedType
	}
}

// loadText 读取整个文件作为单页文本。
func loadText(path string) ([]Page, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取文本文件失败: %w", err)
	}
	return []Page{{Number: 0, Text: string(content)}}, nil
}

// loadPDF 按页提取 PDF 的纯文本。单页提取失败只跳过该页。
func loadPDF(path string) ([]Page, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开 PDF 失败: %w", err)
	}
	defer f.Close()

	var pages []Page
	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		p := reader.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			log.Warnf("[Loader] 提取 PDF 第 %d 页失败: %v", i, err)
			continue
		}
		pages = append(pages, Page{Number: i, Text: text})
	}
	return pages, nil
}
