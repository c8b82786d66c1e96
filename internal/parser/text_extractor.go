package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// 文本获取层错误,解析层本身不产生错误
var (
	ErrFileNotFound      = errors.New("文件不存在")
	ErrUnsupportedFormat = errors.New("不支持的文件格式")
)

// TextExtractor 从简历文件提取纯文本的统一接口
type TextExtractor interface {
	// ExtractFromFile 从文件提取文本和元数据
	ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error)

	// ExtractTextFromReader 从io.Reader提取文本和元数据
	ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, options interface{}) (string, map[string]interface{}, error)

	// ExtractTextFromBytes 从字节数组提取文本和元数据
	ExtractTextFromBytes(ctx context.Context, data []byte, uri string, options interface{}) (string, map[string]interface{}, error)
}

// PlainTextExtractor 纯文本文件直接读取,不经过任何解析服务
type PlainTextExtractor struct{}

var _ TextExtractor = (*PlainTextExtractor)(nil)

// NewPlainTextExtractor 创建纯文本提取器
func NewPlainTextExtractor() *PlainTextExtractor {
	return &PlainTextExtractor{}
}

// ExtractFromFile 读取文本文件内容
func (e *PlainTextExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("%w: %s", ErrFileNotFound, filePath)
		}
		return "", nil, fmt.Errorf("读取文本文件失败: %w", err)
	}
	return e.ExtractTextFromBytes(ctx, data, filePath, nil)
}

// ExtractTextFromReader 从io.Reader读取文本内容
func (e *PlainTextExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, options interface{}) (string, map[string]interface{}, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", nil, fmt.Errorf("读取文本内容失败: %w", err)
	}
	return e.ExtractTextFromBytes(ctx, data, uri, options)
}

// ExtractTextFromBytes 把字节数组当作UTF-8文本返回
func (e *PlainTextExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string, options interface{}) (string, map[string]interface{}, error) {
	text := string(data)
	metadata := map[string]interface{}{
		"source_file_path": uri,
		"extraction_time":  time.Now().Format(time.RFC3339),
		"text_length":      len(text),
	}
	return text, metadata, nil
}

// FormatRouter 按扩展名把简历文件分发给对应格式的提取器
// 支持 pdf、docx、txt 和 jpg/jpeg/png 图片,图片走OCR通道
type FormatRouter struct {
	pdf    TextExtractor
	docx   TextExtractor
	plain  TextExtractor
	image  TextExtractor
	logger *log.Logger
}

var _ TextExtractor = (*FormatRouter)(nil)

// RouterOption 路由器配置选项
type RouterOption func(*FormatRouter)

// WithPDFExtractor 配置PDF提取器
func WithPDFExtractor(e TextExtractor) RouterOption {
	return func(r *FormatRouter) {
		r.pdf = e
	}
}

// WithDocxExtractor 配置DOCX提取器
func WithDocxExtractor(e TextExtractor) RouterOption {
	return func(r *FormatRouter) {
		r.docx = e
	}
}

// WithImageExtractor 配置图片OCR提取器
func WithImageExtractor(e TextExtractor) RouterOption {
	return func(r *FormatRouter) {
		r.image = e
	}
}

// WithRouterLogger 配置自定义日志记录器
func WithRouterLogger(logger *log.Logger) RouterOption {
	return func(r *FormatRouter) {
		r.logger = logger
	}
}

// NewFormatRouter 创建格式路由器,纯文本提取器内置
func NewFormatRouter(options ...RouterOption) *FormatRouter {
	r := &FormatRouter{
		plain:  NewPlainTextExtractor(),
		logger: log.New(os.Stderr, "[文本提取] ", log.LstdFlags),
	}
	for _, option := range options {
		option(r)
	}
	return r
}

// ExtractFromFile 检查文件存在后按扩展名分发,并把文件信息并入元数据
func (r *FormatRouter) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("%w: %s", ErrFileNotFound, filePath)
		}
		return "", nil, fmt.Errorf("访问文件失败: %w", err)
	}

	ext := normalizeExt(filePath)
	extractor, err := r.extractorFor(ext)
	if err != nil {
		return "", nil, err
	}

	r.logger.Printf("提取文件文本: %s (格式: %s)", filePath, ext)
	text, metadata, err := extractor.ExtractFromFile(ctx, filePath)
	if err != nil {
		return "", nil, err
	}

	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	metadata["file_name"] = filepath.Base(filePath)
	metadata["file_extension"] = ext
	metadata["file_size_bytes"] = info.Size()
	metadata["file_modified"] = info.ModTime().Format(time.RFC3339)
	return text, metadata, nil
}

// ExtractTextFromReader 按URI扩展名分发
func (r *FormatRouter) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, options interface{}) (string, map[string]interface{}, error) {
	extractor, err := r.extractorFor(normalizeExt(uri))
	if err != nil {
		return "", nil, err
	}
	return extractor.ExtractTextFromReader(ctx, reader, uri, options)
}

// ExtractTextFromBytes 按URI扩展名分发
func (r *FormatRouter) ExtractTextFromBytes(ctx context.Context, data []byte, uri string, options interface{}) (string, map[string]interface{}, error) {
	extractor, err := r.extractorFor(normalizeExt(uri))
	if err != nil {
		return "", nil, err
	}
	return extractor.ExtractTextFromBytes(ctx, data, uri, options)
}

func (r *FormatRouter) extractorFor(ext string) (TextExtractor, error) {
	var extractor TextExtractor
	switch ext {
	case "pdf":
		extractor = r.pdf
	case "docx":
		extractor = r.docx
	case "txt":
		extractor = r.plain
	case "jpg", "jpeg", "png":
		extractor = r.image
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	if extractor == nil {
		return nil, fmt.Errorf("%w: %s (未配置该格式的提取器)", ErrUnsupportedFormat, ext)
	}
	return extractor, nil
}

// normalizeExt 取小写扩展名,不带点
func normalizeExt(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}
