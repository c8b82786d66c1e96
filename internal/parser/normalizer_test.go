package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLineEndings(t *testing.T) {
	norm := NewTextNormalizer()

	assert.Equal(t, "a\nb\nc", norm.Normalize("a\r\nb\rc"), "CRLF和CR都应规整为LF")
}

func TestNormalizeCollapsesSpacesAndTabs(t *testing.T) {
	norm := NewTextNormalizer()

	assert.Equal(t, "Line one here\nLine two",
		norm.Normalize("Line  one\t here  \nLine   two"), "行内空白应折叠,行尾空白应去掉")
}

func TestNormalizeStripsLineLeadingWhitespace(t *testing.T) {
	norm := NewTextNormalizer()

	assert.Equal(t, "title\nindented line", norm.Normalize("title\n   indented line"))
}

func TestNormalizeCollapsesBlankRuns(t *testing.T) {
	norm := NewTextNormalizer()

	assert.Equal(t, "a\n\nb", norm.Normalize("a\n\n\n\n\nb"), "连续空行应压成一个空行")
}

func TestNormalizeEmpty(t *testing.T) {
	norm := NewTextNormalizer()

	assert.Equal(t, "", norm.Normalize(""))
	assert.Equal(t, "", norm.Normalize("  \n\t\n  "))
}

func TestFlatten(t *testing.T) {
	norm := NewTextNormalizer()

	assert.Equal(t, "a b c", norm.Flatten("  a \n\n b\tc  "), "压平应把所有空白合成单个空格")
	assert.Equal(t, "", norm.Flatten(""))
}
