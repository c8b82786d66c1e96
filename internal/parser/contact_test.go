package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContactExtractTypical(t *testing.T) {
	extractor := NewContactExtractor()

	text := "John Doe\njohn.doe@example.com\n(555) 123-4567\nlinkedin.com/in/johndoe\nhttps://github.com/johndoe"
	info := extractor.Extract(text)

	assert.Equal(t, []string{"john.doe@example.com"}, info.Emails)
	assert.Equal(t, []string{"(555) 123-4567"}, info.Phones, "555保留号段长度可行,应予保留")
	assert.Contains(t, info.URLs, "linkedin.com/in/johndoe")
	assert.Contains(t, info.URLs, "github.com/johndoe")
}

func TestContactYearsNotTreatedAsPhones(t *testing.T) {
	extractor := NewContactExtractor()

	// 简历里的年份串不应被当成电话号码
	info := extractor.Extract("Worked 2019 2020 and again 2021 2022")

	assert.Empty(t, info.Phones, "年份不应通过电话粗筛")
	assert.NotNil(t, info.Phones)
}

func TestContactEmailsDeduped(t *testing.T) {
	extractor := NewContactExtractor()

	info := extractor.Extract("a@b.com\nc@d.org\na@b.com")

	assert.Equal(t, []string{"a@b.com", "c@d.org"}, info.Emails, "重复邮箱应去重并保留首次出现顺序")
}

func TestContactEmptyInput(t *testing.T) {
	extractor := NewContactExtractor()

	info := extractor.Extract("")

	assert.Empty(t, info.Emails)
	assert.Empty(t, info.Phones)
	assert.Empty(t, info.URLs)
	assert.NotNil(t, info.Emails, "容器字段应初始化为空列表而不是nil")
}
