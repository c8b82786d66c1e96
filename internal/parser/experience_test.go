package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExperienceExtractTypicalEntry(t *testing.T) {
	extractor := NewExperienceExtractor()

	text := "Software Engineer\nABC Tech, San Francisco, CA\nJune 2020 - Present\n• Did X\n• Did Y"
	entries := extractor.Extract(text)

	require.Len(t, entries, 1, "应提取出一条工作经历")
	entry := entries[0]
	assert.Equal(t, "Software Engineer", entry.JobTitle, "职位应命中具体职位表")
	assert.Equal(t, "ABC Tech", entry.Company, "公司应命中已知公司表")
	assert.Equal(t, "June 2020 - Present", entry.DateRange, "日期区间应完整保留月份")
	assert.Equal(t, []string{"Did X", "Did Y"}, entry.Responsibilities, "项目符号行应逐条提取")
	assert.NotEmpty(t, entry.RawText)
}

func TestExperienceMonthRangeNotTruncatedToYears(t *testing.T) {
	extractor := NewExperienceExtractor()

	// 月份写法的区间不能被裸年份模式咬成"2020 - Present"
	entries := extractor.Extract("Software Engineer\nABC Tech\nJune 2020 - Present\n• Built APIs")
	require.Len(t, entries, 1)
	assert.Equal(t, "June 2020 - Present", entries[0].DateRange)

	entries = extractor.Extract("Developer\nInitech Systems\nJanuary 2019 - March 2021\n• Shipped features")
	require.Len(t, entries, 1)
	assert.Equal(t, "January 2019 - March 2021", entries[0].DateRange)
}

func TestExperienceMultipleEntries(t *testing.T) {
	extractor := NewExperienceExtractor()

	text := "Software Engineer\nABC Tech\nJune 2020 - Present\n• Built APIs\n\n" +
		"Data Scientist\nXYZ Solutions\nJanuary 2018 - May 2020\n• Trained models"
	entries := extractor.Extract(text)

	require.Len(t, entries, 2, "空行分隔的两段经历应各成一条")
	assert.Equal(t, "Software Engineer", entries[0].JobTitle)
	assert.Equal(t, "ABC Tech", entries[0].Company)
	assert.Equal(t, []string{"Built APIs"}, entries[0].Responsibilities)

	assert.Equal(t, "Data Scientist", entries[1].JobTitle)
	assert.Equal(t, "XYZ Solutions", entries[1].Company)
	assert.Equal(t, "January 2018 - May 2020", entries[1].DateRange)
	assert.Equal(t, []string{"Trained models"}, entries[1].Responsibilities)
}

func TestExperienceResponsibilitiesLineFallback(t *testing.T) {
	extractor := NewExperienceExtractor()

	// 没有项目符号时,跳过职位和公司两行逐行收集
	text := "Software Engineer\nABC Tech\nBuilt the data pipeline\nMaintained the cluster"
	entries := extractor.Extract(text)

	require.Len(t, entries, 1)
	assert.Equal(t, []string{"Built the data pipeline", "Maintained the cluster"}, entries[0].Responsibilities)
	assert.Empty(t, entries[0].DateRange, "无日期时区间应为空")
}

func TestExperiencePipeEmployerLine(t *testing.T) {
	extractor := NewExperienceExtractor()

	// 第二行"公司 | 地点"排版,竖线前的部分是雇主
	text := "Lead Platform Engineer\nInitech | Austin, TX\n2016 - 2019\n• Ran the migration program"
	entries := extractor.Extract(text)

	require.Len(t, entries, 1)
	assert.Equal(t, "Lead Platform Engineer", entries[0].JobTitle)
	assert.Equal(t, "Initech", entries[0].Company, "竖线前的部分应作为公司名")
	assert.Equal(t, "2016 - 2019", entries[0].DateRange)
	assert.Equal(t, []string{"Ran the migration program"}, entries[0].Responsibilities)
}

func TestExperienceSlashDateFormat(t *testing.T) {
	extractor := NewExperienceExtractor()

	text := "DevOps Engineer\nCloudOps LLC\n03/2020 - 11/2022"
	entries := extractor.Extract(text)

	require.Len(t, entries, 1)
	assert.Equal(t, "DevOps Engineer", entries[0].JobTitle)
	assert.Equal(t, "CloudOps LLC", entries[0].Company, "下一行的两个词应作为雇主名")
	assert.Equal(t, "03/2020 - 11/2022", entries[0].DateRange, "MM/YYYY格式应整段保留")
}

func TestExperienceKnownCompanyCanonicalSpelling(t *testing.T) {
	extractor := NewExperienceExtractor()

	// 词表命中时返回表内的规范拼写而不是原文大小写
	entries := extractor.Extract("Developer\nabc tech, downtown office\n2019 - 2021")

	require.Len(t, entries, 1)
	assert.Equal(t, "Developer", entries[0].JobTitle)
	assert.Equal(t, "ABC Tech", entries[0].Company)
	assert.Equal(t, "2019 - 2021", entries[0].DateRange)
}

func TestExperienceTooShortInput(t *testing.T) {
	extractor := NewExperienceExtractor()

	assert.Empty(t, extractor.Extract(""), "空输入应返回空列表")
	assert.Empty(t, extractor.Extract("short"), "过短文本应返回空列表")
}
