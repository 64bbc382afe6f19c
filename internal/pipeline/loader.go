// Package pipeline 定义了文档接入的核心流程。
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"legal-nav-go/pkg/tika"

	"github.com/ledongthuc/pdf"
)

// Unit 是从文档中装载出的一个文本单元。
// 装载策略：PDF 每页一个单元（页码 1 起始），DOCX/TXT 整个文件一个单元。
type Unit struct {
	Text string
	Page int
}

// Loader 负责按文件类型装载原始文本单元。
type Loader struct {
	tikaClient *tika.Client
}

// NewLoader 创建一个新的 Loader 实例。
func NewLoader(tikaClient *tika.Client) *Loader {
	return &Loader{tikaClient: tikaClient}
}

// Load 根据扩展名选择装载方式，返回非空的文本单元序列。
func (l *Loader) Load(path, fileName string) ([]Unit, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".pdf":
		return l.loadPDF(path)
	case ".docx":
		return l.loadWithTika(path, fileName)
	case ".txt":
		return l.loadPlainText(path)
	default:
		return nil, fmt.Errorf("不支持的文件类型: %s", ext)
	}
}

// loadPDF 逐页提取 PDF 文本，跳过无文本的页面。
func (l *Loader) loadPDF(path string) ([]Unit, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开 PDF 失败: %w", err)
	}
	defer f.Close()

	var units []Unit
	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("提取 PDF 第 %d 页文本失败: %w", i, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		units = append(units, Unit{Text: text, Page: i})
	}
	return units, nil
}

// loadWithTika 通过 Tika 服务器提取整篇文本（DOCX 等复合格式）。
func (l *Loader) loadWithTika(path, fileName string) ([]Unit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开文件失败: %w", err)
	}
	defer f.Close()

	text, err := l.tikaClient.ExtractText(f, fileName)
	if err != nil {
		return nil, fmt.Errorf("使用 Tika 提取文本失败: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	return []Unit{{Text: text, Page: 1}}, nil
}

// loadPlainText 直接读取纯文本文件。
func (l *Loader) loadPlainText(path string) ([]Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取文本文件失败: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}
	return []Unit{{Text: string(data), Page: 1}}, nil
}
