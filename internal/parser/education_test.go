package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEducationExtractTypicalEntry(t *testing.T) {
	extractor := NewEducationExtractor()

	// 最常见的四行排版:学位、院校、年份区间、成绩
	text := "Bachelor of Science in Computer Science\nNew York University\n2016 - 2020\nGPA: 3.8/4.0"
	entries := extractor.Extract(text)

	require.Len(t, entries, 1, "应提取出一条教育经历")
	entry := entries[0]
	assert.Equal(t, "Bachelor of Science in Computer Science", entry.Degree, "学位应包含in后缀专业")
	assert.Equal(t, "Computer Science", entry.FieldOfStudy, "专业应命中常见学科表")
	assert.Equal(t, "New York University", entry.Institution, "院校应命中知名院校表")
	assert.Equal(t, []string{"2016 - 2020"}, entry.Dates, "年份区间应原样保留")
	assert.Equal(t, "GPA: 3.8", entry.Score, "GPA应取斜杠前的数值")
	assert.NotEmpty(t, entry.RawText, "原始文本应压平后存档")
}

func TestEducationExtractMultipleEntries(t *testing.T) {
	extractor := NewEducationExtractor()

	// 空行是条目切分的首选信号
	text := "Master of Science in Data Science\nStanford University\n2018 - 2020\n\n" +
		"Bachelor of Arts\nYale University\n2014 - 2018"
	entries := extractor.Extract(text)

	require.Len(t, entries, 2, "空行分隔的两条记录应各成一条")
	assert.Equal(t, "Master of Science in Data Science", entries[0].Degree)
	assert.Equal(t, "Stanford University", entries[0].Institution)
	assert.Equal(t, []string{"2018 - 2020"}, entries[0].Dates)

	assert.Equal(t, "Bachelor of Arts", entries[1].Degree)
	assert.Equal(t, "Yale University", entries[1].Institution)
	assert.Equal(t, []string{"2014 - 2018"}, entries[1].Dates)
}

func TestEducationExtractTooShortInput(t *testing.T) {
	extractor := NewEducationExtractor()

	assert.Empty(t, extractor.Extract(""), "空输入应返回空列表")
	assert.Empty(t, extractor.Extract("BS"), "过短文本应返回空列表")
}

func TestEducationEntriesWithoutAnchorDropped(t *testing.T) {
	extractor := NewEducationExtractor()

	// 既没有学位也没有院校的片段不应产出条目
	text := "some random text line\n\nanother random note"
	assert.Empty(t, extractor.Extract(text), "无学位无院校的文本不应产出条目")
}

func TestEducationDegreeFieldCombination(t *testing.T) {
	extractor := NewEducationExtractor()

	// 学位缩写里没有in时,提取出的专业要拼回学位
	text := "MBA, majored in Business Administration\nHarvard University"
	entries := extractor.Extract(text)

	require.Len(t, entries, 1)
	assert.Equal(t, "MBA in Business Administration", entries[0].Degree, "学位应拼上in和专业")
	assert.Equal(t, "Business Administration", entries[0].FieldOfStudy)
	assert.Equal(t, "Harvard University", entries[0].Institution)
	assert.Empty(t, entries[0].Dates, "无日期时Dates应为空列表")
	assert.NotNil(t, entries[0].Dates)
}

func TestEducationInvalidFieldRejected(t *testing.T) {
	extractor := NewEducationExtractor()

	// "in"后面的碎片过短时不能当专业,该行也因无锚点被丢弃
	text := "MS in Goo\nStanford University"
	entries := extractor.Extract(text)

	require.Len(t, entries, 1, "只有院校行应成为条目")
	assert.Equal(t, "Stanford University", entries[0].Institution)
	assert.Empty(t, entries[0].Degree)
	assert.Empty(t, entries[0].FieldOfStudy, "过短的专业候选应被拒绝")
}

func TestEducationHonorsAsScore(t *testing.T) {
	extractor := NewEducationExtractor()

	text := "Bachelor of Arts in History\nYale University\nMagna Cum Laude"
	entries := extractor.Extract(text)

	require.Len(t, entries, 1)
	assert.Equal(t, "Bachelor of Arts in History", entries[0].Degree)
	assert.Equal(t, "History", entries[0].FieldOfStudy)
	assert.Equal(t, "Magna Cum Laude", entries[0].Score, "没有GPA时荣誉应作为成绩")
}

func TestEducationPresentDateRange(t *testing.T) {
	extractor := NewEducationExtractor()

	text := "Master of Science\nMIT\n2022 - Present"
	entries := extractor.Extract(text)

	require.Len(t, entries, 1)
	assert.Equal(t, "Master of Science", entries[0].Degree)
	assert.Equal(t, "MIT", entries[0].Institution)
	assert.Equal(t, []string{"2022 - Present"}, entries[0].Dates, "进行中的区间应规整为Present结尾")
}
