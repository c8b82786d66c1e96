package parser

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainTextExtractorReadsFile(t *testing.T) {
	extractor := NewPlainTextExtractor()
	ctx := context.Background()

	content := "张三\n软件工程师\n五年后端开发经验"
	path := filepath.Join(t.TempDir(), "resume.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	text, metadata, err := extractor.ExtractFromFile(ctx, path)
	require.NoError(t, err, "读取文本文件不应失败")
	assert.Equal(t, content, text, "文本内容应原样返回")
	assert.Equal(t, path, metadata["source_file_path"])
	assert.Equal(t, len(content), metadata["text_length"])
}

func TestPlainTextExtractorFromReader(t *testing.T) {
	extractor := NewPlainTextExtractor()
	ctx := context.Background()

	text, metadata, err := extractor.ExtractTextFromReader(ctx,
		strings.NewReader("简历正文"), "mem://resume.txt", nil)

	require.NoError(t, err)
	assert.Equal(t, "简历正文", text)
	assert.Equal(t, "mem://resume.txt", metadata["source_file_path"])
}

func TestFormatRouterRoutesTxt(t *testing.T) {
	router := NewFormatRouter()
	ctx := context.Background()

	content := "resume plain text"
	path := filepath.Join(t.TempDir(), "resume.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	text, metadata, err := router.ExtractFromFile(ctx, path)
	require.NoError(t, err, "txt格式应由内置纯文本提取器处理")
	assert.Equal(t, content, text)
	assert.Equal(t, "resume.txt", metadata["file_name"])
	assert.Equal(t, "txt", metadata["file_extension"])
	assert.Equal(t, int64(len(content)), metadata["file_size_bytes"])
}

func TestFormatRouterFileNotFound(t *testing.T) {
	router := NewFormatRouter()

	_, _, err := router.ExtractFromFile(context.Background(),
		filepath.Join(t.TempDir(), "missing.txt"))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFileNotFound, "不存在的文件应返回文件不存在错误")
}

func TestFormatRouterUnsupportedExtension(t *testing.T) {
	router := NewFormatRouter()

	path := filepath.Join(t.TempDir(), "data.xyz")
	require.NoError(t, os.WriteFile(path, []byte("binary"), 0644))

	_, _, err := router.ExtractFromFile(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFormatRouterUnconfiguredExtractor(t *testing.T) {
	// 没有配置PDF提取器时,pdf文件应报不支持而不是崩溃
	router := NewFormatRouter()

	path := filepath.Join(t.TempDir(), "scan.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0644))

	_, _, err := router.ExtractFromFile(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), "未配置")
}

func TestFormatRouterConfiguredExtractorOption(t *testing.T) {
	// 通过选项注入的提取器应接管对应格式
	router := NewFormatRouter(WithPDFExtractor(NewPlainTextExtractor()))
	ctx := context.Background()

	text, metadata, err := router.ExtractTextFromBytes(ctx, []byte("extracted pdf text"), "cv.pdf", nil)
	require.NoError(t, err)
	assert.Equal(t, "extracted pdf text", text)
	assert.Equal(t, "cv.pdf", metadata["source_file_path"])
}

func TestFormatRouterBytesRouting(t *testing.T) {
	router := NewFormatRouter()
	ctx := context.Background()

	text, _, err := router.ExtractTextFromBytes(ctx, []byte("note"), "note.txt", nil)
	require.NoError(t, err)
	assert.Equal(t, "note", text)

	_, _, err = router.ExtractTextFromBytes(ctx, []byte("note"), "note.docx", nil)
	assert.ErrorIs(t, err, ErrUnsupportedFormat, "未配置docx提取器时应报不支持")
}

func TestNormalizeExt(t *testing.T) {
	assert.Equal(t, "pdf", normalizeExt("/tmp/Resume.PDF"), "扩展名应转小写且不带点")
	assert.Equal(t, "gz", normalizeExt("archive.tar.gz"))
	assert.Equal(t, "", normalizeExt("noext"))
}
