package parser

import (
	"regexp"
	"strings"
)

// TextNormalizer 文本规整器,清理OCR和PDF抽取带来的脏字符
// Normalize保留换行结构供章节切分使用,Flatten压平为单行供字段匹配使用
type TextNormalizer struct{}

// NewTextNormalizer 创建文本规整器
func NewTextNormalizer() *TextNormalizer {
	return &TextNormalizer{}
}

var (
	spaceRunRe    = regexp.MustCompile(`[ \t]+`)
	blankRunRe    = regexp.MustCompile(`\n{3,}`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
	trailingWsRe  = regexp.MustCompile(`[ \t]+\n`)
	leadingNlWsRe = regexp.MustCompile(`\n[ \t]+`)
)

// Normalize 规整文本但保留行结构
// 换行符统一为\n,行内空白压缩为单个空格,连续空行压缩为一个
func (n *TextNormalizer) Normalize(text string) string {
	if text == "" {
		return ""
	}

	// 统一换行符
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	// 行内空白压缩,去掉行首行尾空白
	text = spaceRunRe.ReplaceAllString(text, " ")
	text = trailingWsRe.ReplaceAllString(text, "\n")
	text = leadingNlWsRe.ReplaceAllString(text, "\n")

	// 三个以上连续换行压缩为两个,保留空行作为条目分隔信号
	text = blankRunRe.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

// Flatten 把所有空白(含换行)压成单个空格
// 用于字段正则匹配和条目原文存档
func (n *TextNormalizer) Flatten(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}
