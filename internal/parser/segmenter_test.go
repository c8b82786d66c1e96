package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-parser-go/internal/types"
)

func TestSegmentEmptyInput(t *testing.T) {
	segmenter := NewSectionSegmenter()

	// 空串和纯空白都应返回空列表而不是panic
	assert.Empty(t, segmenter.Segment(""), "空输入应返回空章节列表")
	assert.Empty(t, segmenter.Segment("   \n\t\n  "), "纯空白输入应返回空章节列表")
}

func TestSegmentNoStructureFallsBackToUnknown(t *testing.T) {
	segmenter := NewSectionSegmenter()

	// 没有任何标题和关键词信号时,整篇归入unknown,保证全文覆盖
	text := "just some plain sentence about nothing interesting"
	sections := segmenter.Segment(text)

	require.Len(t, sections, 1, "无结构文本应只产出一个章节")
	assert.Equal(t, types.SectionUnknown, sections[0].Name, "章节名应为unknown")
	assert.Equal(t, text, sections[0].Text, "unknown章节应包含全部输入文本")
	assert.Equal(t, 0, sections[0].Order)
}

func TestSegmentUppercaseTitles(t *testing.T) {
	segmenter := NewSectionSegmenter()

	text := "John Doe\njohn@example.com\n\n" +
		"EXPERIENCE\nSoftware Engineer\nABC Tech\nJune 2020 - Present\n\n" +
		"EDUCATION\nBachelor of Science in Computer Science\nNew York University\n2016 - 2020\n\n" +
		"SKILLS\nProgramming Languages: Python, Go"

	sections := segmenter.Segment(text)

	// 正文前的姓名和邮箱被认领为header,其余按全大写标题切分
	names := sections.Names()
	assert.Equal(t, []string{"header", "experience", "education", "skills"}, names)

	headerText, ok := sections.Get(types.SectionHeader)
	require.True(t, ok)
	assert.Contains(t, headerText, "John Doe")
	assert.Contains(t, headerText, "john@example.com")

	// 标题行必须被剥掉,正文保留
	expText, ok := sections.Get(types.SectionExperience)
	require.True(t, ok)
	assert.NotContains(t, expText, "EXPERIENCE", "章节正文不应包含标题行")
	assert.Contains(t, expText, "Software Engineer")

	eduText, ok := sections.Get(types.SectionEducation)
	require.True(t, ok)
	assert.Contains(t, eduText, "New York University")

	// Order 按出现顺序重新编号
	for i, s := range sections {
		assert.Equal(t, i, s.Order, "章节Order应与列表下标一致")
	}
}

func TestSegmentSynonymTitles(t *testing.T) {
	segmenter := NewSectionSegmenter()

	// 同义词表大小写不敏感:Work History、Academic Background都应被识别
	text := "Work History\nDeveloper at Foo\n\nAcademic Background\nSome University degree"
	sections := segmenter.Segment(text)

	_, hasExp := sections.Get(types.SectionExperience)
	_, hasEdu := sections.Get(types.SectionEducation)
	assert.True(t, hasExp, "Work History应识别为experience")
	assert.True(t, hasEdu, "Academic Background应识别为education")
}

func TestSegmentSeparatorClaimsNextTitle(t *testing.T) {
	segmenter := NewSectionSegmenter()

	text := "----------\nEducation\n----------\nB.S. in Mathematics\nState University"
	sections := segmenter.Segment(text)

	eduText, ok := sections.Get(types.SectionEducation)
	require.True(t, ok, "分隔线下一行的标题应被识别")
	assert.Contains(t, eduText, "B.S. in Mathematics")
	assert.NotContains(t, eduText, "Education", "标题行应随分隔线一起剥掉")
}

func TestSegmentCertificationSplitFromEducation(t *testing.T) {
	segmenter := NewSectionSegmenter()

	text := "EDUCATION\nB.S. in Computer Science\nMIT\n2015 - 2019\n" +
		"Certifications: AWS Certified Developer - Associate, Amazon Web Services, 2021"

	sections := segmenter.Segment(text)

	// 教育章节里混入的证书内容应在关键词处切开移入certifications
	eduText, ok := sections.Get(types.SectionEducation)
	require.True(t, ok)
	assert.NotContains(t, strings.ToLower(eduText), "certification", "证书内容不应留在education里")
	assert.Contains(t, eduText, "MIT")

	certText, ok := sections.Get(types.SectionCertifications)
	require.True(t, ok, "切出的证书内容应形成certifications章节")
	assert.Contains(t, certText, "AWS Certified Developer")

	// certifications紧跟在education之后
	names := sections.Names()
	for i, n := range names {
		if n == "education" {
			require.Less(t, i+1, len(names))
			assert.Equal(t, "certifications", names[i+1])
		}
	}
}

func TestSegmentCertificationNotSplitWhenSectionExists(t *testing.T) {
	segmenter := NewSectionSegmenter()

	// 已有独立证书章节时education里的关键词不再触发切分
	text := "EDUCATION\nB.S. in Physics\nMIT\nCertified lab assistant program\n\n" +
		"CERTIFICATIONS\nAWS Certified Developer, Amazon, 2021"

	sections := segmenter.Segment(text)

	eduText, _ := sections.Get(types.SectionEducation)
	assert.Contains(t, eduText, "Certified lab assistant", "已有certifications章节时education保持原样")
}

func TestSegmentRepeatedHeadersConcatenate(t *testing.T) {
	segmenter := NewSectionSegmenter()

	text := "EXPERIENCE\nSoftware Engineer\nABC Tech\n\n" +
		"EDUCATION\nMIT\n\n" +
		"EXPERIENCE\nData Scientist\nXYZ Solutions"

	sections := segmenter.Segment(text)

	// 同名章节按文档顺序拼接,只出现一次
	expText, ok := sections.Get(types.SectionExperience)
	require.True(t, ok)
	assert.Contains(t, expText, "Software Engineer")
	assert.Contains(t, expText, "Data Scientist")

	count := 0
	for _, n := range sections.Names() {
		if n == "experience" {
			count++
		}
	}
	assert.Equal(t, 1, count, "experience章节应只出现一次")
}

func TestSegmentFallbackKeywords(t *testing.T) {
	segmenter := NewSectionSegmenter()

	// 无任何标题时按关键词兜底:university行起education,company行起experience
	text := "Jane Smith\nGraduated from Stanford University in 2020\nWorked at a software company as engineer"
	sections := segmenter.Segment(text)

	_, hasEdu := sections.Get(types.SectionEducation)
	assert.True(t, hasEdu, "university关键词应兜底出education章节")
	_, hasExp := sections.Get(types.SectionExperience)
	assert.True(t, hasExp, "company关键词应兜底出experience章节")
}

func TestSegmentIdempotentOnIsolatedSection(t *testing.T) {
	segmenter := NewSectionSegmenter()

	// 对已切出的章节正文重复切分,不应凭空造出其它章节
	isolated := "B.S. in Computer Science\nMIT\n2015 - 2019"
	sections := segmenter.Segment(isolated)

	require.Len(t, sections, 1, "无关键词的章节正文重切应只有unknown")
	assert.Equal(t, types.SectionUnknown, sections[0].Name)

	// 含education关键词的正文允许被兜底认领为education,但不应出现experience/skills
	withKeyword := "Bachelor degree\nNew York University\n2016 - 2020"
	resegmented := segmenter.Segment(withKeyword)
	for _, s := range resegmented {
		assert.NotEqual(t, types.SectionExperience, s.Name, "不应造出experience章节")
		assert.NotEqual(t, types.SectionSkills, s.Name, "不应造出skills章节")
	}
}
