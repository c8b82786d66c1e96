package parser

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mockTikaText = "这是从简历文件中提取的测试文本内容。"

// createMockTikaServer 模拟Tika服务器的/tika和/meta端点
func createMockTikaServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tika":
			w.Header().Set("Content-Type", "text/plain")
			w.Write([]byte(mockTikaText))
		case "/meta":
			metadata := map[string]interface{}{
				"pdf:PDFVersion":   "1.7",
				"xmpTPg:NPages":    float64(2),
				"dc:title":         "测试简历",
				"Content-Type":     "application/pdf",
				"X-TIKA:Parsed-By": "org.apache.tika.parser.pdf.PDFParser",
				"meta:author":      "张三",
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(metadata)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestNewTikaExtractorDefaults(t *testing.T) {
	extractor := NewTikaExtractor("http://localhost:9998")

	assert.Equal(t, "http://localhost:9998", extractor.ServerURL)
	require.NotNil(t, extractor.Client)
	assert.Equal(t, 60*time.Second, extractor.Client.Timeout, "默认超时应为60秒")
	assert.False(t, extractor.extractFullMetadata, "默认不提取完整元数据")
	assert.True(t, extractor.extractMinimalMetadata, "默认提取精简元数据")
	assert.True(t, extractor.extractAnnotations, "默认提取注释文本")
	assert.Empty(t, extractor.ocrLanguage)
}

func TestNewTikaExtractorOptions(t *testing.T) {
	logger := log.New(os.Stderr, "[测试] ", log.LstdFlags)
	extractor := NewTikaExtractor("http://tika:9998",
		WithFullMetadata(true),
		WithMinimalMetadata(false),
		WithAnnotations(false),
		WithOCRLanguage("eng+chi_sim"),
		WithTikaLogger(logger),
		WithTimeout(30*time.Second),
	)

	assert.True(t, extractor.extractFullMetadata)
	assert.False(t, extractor.extractMinimalMetadata)
	assert.False(t, extractor.extractAnnotations)
	assert.Equal(t, "eng+chi_sim", extractor.ocrLanguage)
	assert.Equal(t, 30*time.Second, extractor.Client.Timeout)
	assert.Same(t, logger, extractor.logger)
}

func TestTikaExtractTextFromReader(t *testing.T) {
	server := createMockTikaServer()
	defer server.Close()

	extractor := NewTikaExtractor(server.URL)
	text, metadata, err := extractor.ExtractTextFromReader(context.Background(),
		strings.NewReader("%PDF-1.4 fake content"), "resume.pdf", nil)

	require.NoError(t, err, "提取不应失败")
	assert.Equal(t, mockTikaText, text, "应返回Tika响应的文本")

	// 精简模式:保留关键元数据,过滤解析器内部信息
	assert.Equal(t, "resume.pdf", metadata["source_file_path"])
	assert.Equal(t, len(mockTikaText), metadata["text_length"])
	assert.Equal(t, "1.7", metadata["pdf:PDFVersion"])
	assert.Equal(t, float64(2), metadata["xmpTPg:NPages"])
	assert.Equal(t, "测试简历", metadata["dc:title"])
	_, hasParsedBy := metadata["X-TIKA:Parsed-By"]
	assert.False(t, hasParsedBy, "精简模式不应保留解析器信息")
	_, hasAuthor := metadata["meta:author"]
	assert.False(t, hasAuthor, "精简模式不应保留非关键字段")
}

func TestTikaMetadataModes(t *testing.T) {
	server := createMockTikaServer()
	defer server.Close()
	ctx := context.Background()
	data := []byte("%PDF-1.4 fake content")

	// 关闭所有元数据提取:只有基本元数据,不请求/meta
	noMeta := NewTikaExtractor(server.URL, WithMinimalMetadata(false))
	_, metadata, err := noMeta.ExtractTextFromBytes(ctx, data, "resume.pdf", nil)
	require.NoError(t, err)
	assert.Contains(t, metadata, "extraction_time")
	assert.Contains(t, metadata, "processing_duration_ms")
	_, hasVersion := metadata["pdf:PDFVersion"]
	assert.False(t, hasVersion, "关闭元数据提取时不应有文档元数据")

	// 完整模式:Tika返回的所有字段都保留
	full := NewTikaExtractor(server.URL, WithFullMetadata(true))
	_, metadata, err = full.ExtractTextFromBytes(ctx, data, "resume.pdf", nil)
	require.NoError(t, err)
	assert.Equal(t, "org.apache.tika.parser.pdf.PDFParser", metadata["X-TIKA:Parsed-By"],
		"完整模式应保留解析器信息")
	assert.Equal(t, "张三", metadata["meta:author"])
	assert.Contains(t, metadata, "metadata_processing_ms")
}

func TestTikaRequestHeaders(t *testing.T) {
	var captured http.Header
	var capturedMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Header.Clone()
		capturedMethod = r.Method
		w.Write([]byte("识别结果"))
	}))
	defer server.Close()

	extractor := NewTikaExtractor(server.URL,
		WithMinimalMetadata(false),
		WithAnnotations(false),
		WithOCRLanguage("eng"),
	)
	_, _, err := extractor.ExtractTextFromBytes(context.Background(), []byte("fake image"), "scan.png", nil)

	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, capturedMethod, "Tika端点应使用PUT请求")
	assert.Equal(t, "image/png", captured.Get("Content-Type"), "Content-Type应按扩展名映射")
	assert.Equal(t, "text/plain", captured.Get("Accept"))
	assert.Equal(t, "scan.png", captured.Get("X-Tika-Resource-Name"))
	assert.Equal(t, "eng", captured.Get("X-Tika-OCRLanguage"), "OCR语言应透传给Tika")
	assert.Equal(t, "false", captured.Get("X-Tika-PDFExtractAnnotationText"))
}

func TestTikaServerErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	extractor := NewTikaExtractor(server.URL)
	_, metadata, err := extractor.ExtractTextFromBytes(context.Background(), []byte("data"), "resume.pdf", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "tika服务器返回错误状态码")
	assert.Equal(t, "resume.pdf", metadata["source_file_path"], "失败时也应返回基本元数据")
}

func TestTikaConnectionError(t *testing.T) {
	extractor := NewTikaExtractor("http://localhost:1", WithTimeout(2*time.Second))

	_, _, err := extractor.ExtractTextFromBytes(context.Background(), []byte("data"), "resume.pdf", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "发送请求到Tika服务器失败")
}

func TestTikaMetadataFailureFallsBack(t *testing.T) {
	// /meta失败时降级为基本元数据,文本提取不受影响
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/tika" {
			w.Write([]byte(mockTikaText))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	extractor := NewTikaExtractor(server.URL)
	text, metadata, err := extractor.ExtractTextFromBytes(context.Background(), []byte("data"), "resume.pdf", nil)

	require.NoError(t, err, "元数据失败不应导致整体失败")
	assert.Equal(t, mockTikaText, text)
	assert.Equal(t, "resume.pdf", metadata["source_file_path"])
	_, hasVersion := metadata["pdf:PDFVersion"]
	assert.False(t, hasVersion)
}

func TestTikaExtractFromFile(t *testing.T) {
	server := createMockTikaServer()
	defer server.Close()

	path := filepath.Join(t.TempDir(), "resume.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 fake"), 0644))

	extractor := NewTikaExtractor(server.URL)
	text, metadata, err := extractor.ExtractFromFile(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, mockTikaText, text)
	assert.Equal(t, path, metadata["source_file_path"])
}

func TestTikaExtractFromFileNotFound(t *testing.T) {
	extractor := NewTikaExtractor("http://localhost:9998")

	_, _, err := extractor.ExtractFromFile(context.Background(), "/nonexistent/resume.pdf")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFileNotFound)
}
