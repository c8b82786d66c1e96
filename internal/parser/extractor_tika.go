package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

// 按扩展名映射Tika请求的Content-Type。
// Tika也能自动探测类型，显式声明可以省掉一次探测并让日志更可读。
var tikaContentTypes = map[string]string{
	"pdf":  "application/pdf",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"txt":  "text/plain",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
}

// TikaExtractor 基于Apache Tika服务的文本提取器。
// 同一个实例可以处理pdf/docx/图片，图片经由Tika内置的tesseract做OCR。
type TikaExtractor struct {
	// Tika服务器地址，例如 http://localhost:9998
	ServerURL string
	// HTTP客户端，可配置超时等参数
	Client *http.Client
	// 是否提取完整元数据
	extractFullMetadata bool
	// 是否提取精简元数据
	extractMinimalMetadata bool
	// 是否提取链接注释文本
	extractAnnotations bool
	// OCR语言，透传给Tika的tesseract，如 "eng" 或 "eng+chi_sim"
	ocrLanguage string
	// 日志记录
	logger *log.Logger
}

// TikaOption 定义配置选项函数
type TikaOption func(*TikaExtractor)

// WithFullMetadata 配置是否提取完整元数据
func WithFullMetadata(extract bool) TikaOption {
	return func(e *TikaExtractor) {
		e.extractFullMetadata = extract
	}
}

// WithMinimalMetadata 配置是否提取精简的关键元数据
func WithMinimalMetadata(extract bool) TikaOption {
	return func(e *TikaExtractor) {
		e.extractMinimalMetadata = extract
	}
}

// WithAnnotations 配置是否提取PDF链接注释文本
func WithAnnotations(extract bool) TikaOption {
	return func(e *TikaExtractor) {
		e.extractAnnotations = extract
	}
}

// WithOCRLanguage 配置图片OCR识别语言
func WithOCRLanguage(lang string) TikaOption {
	return func(e *TikaExtractor) {
		e.ocrLanguage = lang
	}
}

// WithTikaLogger 配置自定义日志记录器
func WithTikaLogger(logger *log.Logger) TikaOption {
	return func(e *TikaExtractor) {
		e.logger = logger
	}
}

// WithTimeout 配置HTTP客户端超时时间
func WithTimeout(timeout time.Duration) TikaOption {
	return func(e *TikaExtractor) {
		e.Client.Timeout = timeout
	}
}

// 确保TikaExtractor实现了TextExtractor接口
var _ TextExtractor = (*TikaExtractor)(nil)

// NewTikaExtractor 创建一个新的Tika文本提取器
func NewTikaExtractor(serverURL string, options ...TikaOption) *TikaExtractor {
	extractor := &TikaExtractor{
		ServerURL: serverURL,
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
		extractFullMetadata:    false,
		extractMinimalMetadata: true,
		extractAnnotations:     true,
		logger:                 log.New(os.Stderr, "[TikaExtractor] ", log.LstdFlags),
	}

	// 应用选项
	for _, option := range options {
		option(extractor)
	}

	return extractor
}

// ExtractFromFile 从文件提取文本内容
func (e *TikaExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	startTime := time.Now()
	e.logger.Printf("开始处理文件: %s", filePath)

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("%w: %s", ErrFileNotFound, filePath)
		}
		return "", nil, fmt.Errorf("打开文件 %s 失败: %w", filePath, err)
	}
	defer file.Close()

	if fileInfo, statErr := file.Stat(); statErr == nil {
		e.logger.Printf("文件大小: %.2f MB", float64(fileInfo.Size())/1024/1024)
	}

	text, metadata, err := e.ExtractTextFromReader(ctx, file, filePath, nil)

	duration := time.Since(startTime)
	if err != nil {
		e.logger.Printf("文件处理失败: %s (用时 %.2f秒)", err, duration.Seconds())
		return "", nil, err
	}

	e.logger.Printf("文件处理完成: 提取了 %d 个字符 (用时 %.2f秒)", len(text), duration.Seconds())
	return text, metadata, nil
}

// ExtractTextFromReader 从io.Reader提取文本内容
func (e *TikaExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, options interface{}) (string, map[string]interface{}, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", nil, fmt.Errorf("读取文件内容失败: %w", err)
	}
	return e.ExtractTextFromBytes(ctx, data, uri, options)
}

// ExtractTextFromBytes 从字节数组提取文本内容
func (e *TikaExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string, options interface{}) (string, map[string]interface{}, error) {
	startTime := time.Now()

	// 基本元数据，无论如何都会包含
	baseMetadata := map[string]interface{}{
		"extraction_time":  time.Now().Format(time.RFC3339),
		"source_file_path": uri,
	}

	req, err := e.newTikaRequest(ctx, "/tika", data, uri)
	if err != nil {
		return "", baseMetadata, err
	}
	req.Header.Set("Accept", "text/plain")

	// 根据配置决定是否提取注释文本
	if !e.extractAnnotations {
		req.Header.Set("X-Tika-PDFExtractAnnotationText", "false")
	}

	resp, err := e.Client.Do(req)
	if err != nil {
		return "", baseMetadata, fmt.Errorf("发送请求到Tika服务器失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", baseMetadata, fmt.Errorf("tika服务器返回错误状态码: %d", resp.StatusCode)
	}

	textBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", baseMetadata, fmt.Errorf("读取Tika响应失败: %w", err)
	}

	text := string(textBytes)
	baseMetadata["text_length"] = len(text)
	baseMetadata["processing_duration_ms"] = time.Since(startTime).Milliseconds()

	// 如果不需要任何元数据，直接返回基本元数据
	if !e.extractMinimalMetadata && !e.extractFullMetadata {
		return text, baseMetadata, nil
	}

	metadataStartTime := time.Now()
	rawMetadata, err := e.extractMetadata(ctx, data, uri)
	if err != nil {
		e.logger.Printf("元数据提取失败: %v, 继续使用基本元数据", err)
		return text, baseMetadata, nil
	}

	if e.extractFullMetadata {
		for k, v := range rawMetadata {
			baseMetadata[k] = v
		}
	} else {
		// 只保留重要的元数据
		for k, v := range rawMetadata {
			if isImportantMetadata(k) {
				baseMetadata[k] = v
			}
		}
	}
	baseMetadata["metadata_processing_ms"] = time.Since(metadataStartTime).Milliseconds()

	return text, baseMetadata, nil
}

// extractMetadata 调用Tika的/meta端点提取文档元数据
func (e *TikaExtractor) extractMetadata(ctx context.Context, data []byte, uri string) (map[string]interface{}, error) {
	req, err := e.newTikaRequest(ctx, "/meta", data, uri)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := e.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送请求到Tika服务器失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tika服务器返回错误状态码: %d", resp.StatusCode)
	}

	metadataBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取Tika响应失败: %w", err)
	}

	var metadata map[string]interface{}
	if err := json.Unmarshal(metadataBytes, &metadata); err != nil {
		return nil, fmt.Errorf("解析元数据JSON失败: %w", err)
	}

	return metadata, nil
}

// newTikaRequest 构建带公共头信息的Tika请求
func (e *TikaExtractor) newTikaRequest(ctx context.Context, path string, data []byte, uri string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, e.ServerURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}

	contentType := "application/octet-stream"
	if ct, ok := tikaContentTypes[normalizeExt(uri)]; ok {
		contentType = ct
	}
	req.Header.Set("Content-Type", contentType)

	if uri != "" {
		req.Header.Set("X-Tika-Resource-Name", uri)
	}
	if e.ocrLanguage != "" {
		req.Header.Set("X-Tika-OCRLanguage", e.ocrLanguage)
	}

	return req, nil
}

// isImportantMetadata 判断元数据字段是否值得保留
func isImportantMetadata(key string) bool {
	importantKeys := map[string]bool{
		"pdf:PDFVersion":                true,
		"xmpTPg:NPages":                 true,
		"dcterms:created":               true,
		"language":                      true,
		"pdf:charsPerPage":              true,
		"dc:title":                      true,
		"Content-Type":                  true,
		"pdf:docinfo:title":             true,
		"pdf:docinfo:created":           true,
		"pdf:totalUnmappedUnicodeChars": true,
		"meta:page-count":               true,
		"extended-properties:Company":   true,
	}
	return importantKeys[key]
}
