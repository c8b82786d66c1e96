package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCertificationsExtractOnePerLine(t *testing.T) {
	extractor := NewCertificationsExtractor()

	text := "Project Management Professional, PMI, 2019\nCCNA Routing Certificate, Cisco, March 2022"
	entries := extractor.Extract(text)

	require.Len(t, entries, 2, "一行一条的证书应各成一条")

	assert.Equal(t, "Project Management Professional", entries[0].Name, "名称应取第一个分隔符前的部分")
	assert.Equal(t, "PMI", entries[0].Issuer, "机构应命中发证机构词表")
	assert.Equal(t, "2019", entries[0].Date)

	assert.Equal(t, "CCNA Routing Certificate", entries[1].Name)
	assert.Equal(t, "Cisco", entries[1].Issuer)
	assert.Equal(t, "2022", entries[1].Date, "年份优先于月份写法")
}

func TestCertificationsCredentialID(t *testing.T) {
	extractor := NewCertificationsExtractor()

	text := "Azure Fundamentals Certificate, Microsoft, 2023, Credential ID: AZ-900-4821"
	entries := extractor.Extract(text)

	require.Len(t, entries, 1)
	assert.Equal(t, "Azure Fundamentals Certificate", entries[0].Name)
	assert.Equal(t, "Microsoft", entries[0].Issuer)
	assert.Equal(t, "2023", entries[0].Date)
	assert.Equal(t, "AZ-900-4821", entries[0].CredentialID, "凭证编号应取标签后的编码")
}

func TestCertificationsKnownFormatOverride(t *testing.T) {
	extractor := NewCertificationsExtractor()

	// 覆盖表命中的已知格式直接按表产出
	text := "MongoDB Developers Tool Kit – GeeksforGeeks, 2024"
	entries := extractor.Extract(text)

	require.Len(t, entries, 1)
	assert.Equal(t, "MongoDB Developers Tool Kit", entries[0].Name)
	assert.Equal(t, "GeeksforGeeks", entries[0].Issuer)
	assert.Equal(t, "2024", entries[0].Date)
}

func TestCertificationsOverrideTakesOverWithoutName(t *testing.T) {
	extractor := NewCertificationsExtractor()

	// 触发词齐了但名称模式不匹配时,该章节产出为空,不再走通用规则
	text := "Working with MongoDB at GeeksforGeeks since 2024"
	entries := extractor.Extract(text)

	assert.Empty(t, entries, "名称模式不匹配时不应兜底产出条目")
	assert.NotNil(t, entries)
}

func TestCertificationsEmptyInput(t *testing.T) {
	extractor := NewCertificationsExtractor()

	assert.Empty(t, extractor.Extract(""), "空输入应返回空列表")
}
