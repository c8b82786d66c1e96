package parser

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmptyInputReturnsCompleteRecord(t *testing.T) {
	parser := NewResumeParser()

	record := parser.Parse("")
	require.NotNil(t, record, "空输入也应产出记录")

	// 所有容器字段都应是空列表而不是nil,序列化后不出现null
	assert.NotNil(t, record.Sections)
	assert.Empty(t, record.Sections)
	assert.NotNil(t, record.Education)
	assert.Empty(t, record.Education)
	assert.NotNil(t, record.Experience)
	assert.NotNil(t, record.Projects)
	assert.NotNil(t, record.Certifications)
	assert.True(t, record.Skills.IsEmpty())
	assert.NotNil(t, record.Contact.Emails)

	data, err := json.Marshal(record)
	require.NoError(t, err)
	payload := string(data)
	assert.Contains(t, payload, `"sections":[]`)
	assert.Contains(t, payload, `"education":[]`)
	assert.Contains(t, payload, `"experience":[]`)
	assert.Contains(t, payload, `"projects":[]`)
	assert.Contains(t, payload, `"certifications":[]`)
	assert.NotContains(t, payload, "null", "序列化结果不应含null")
}

func TestParseFullResume(t *testing.T) {
	parser := NewResumeParser()

	text := "John Doe\njohn.doe@example.com\n(555) 123-4567\n\n" +
		"EXPERIENCE\nSoftware Engineer\nABC Tech\nJune 2020 - Present\n• Did X\n• Did Y\n\n" +
		"EDUCATION\nBachelor of Science in Computer Science\nNew York University\n2016 - 2020\nGPA: 3.8/4.0\n\n" +
		"SKILLS\nProgramming Languages: Python, JavaScript\nDatabases: PostgreSQL\n\n" +
		"PROJECTS\nInventory Tracker: warehouse management app built with Go\n• Tracks stock levels\n\n" +
		"CERTIFICATIONS\nProject Management Professional, PMI, 2019"

	record := parser.Parse(text)

	assert.Equal(t, []string{"header", "experience", "education", "skills", "projects", "certifications"},
		record.Sections, "章节应按文档顺序排列")

	assert.Equal(t, []string{"john.doe@example.com"}, record.Contact.Emails)
	assert.Equal(t, []string{"(555) 123-4567"}, record.Contact.Phones)

	require.Len(t, record.Experience, 1)
	assert.Equal(t, "Software Engineer", record.Experience[0].JobTitle)
	assert.Equal(t, "ABC Tech", record.Experience[0].Company)
	assert.Equal(t, "June 2020 - Present", record.Experience[0].DateRange)
	assert.Equal(t, []string{"Did X", "Did Y"}, record.Experience[0].Responsibilities)

	require.Len(t, record.Education, 1)
	assert.Equal(t, "Bachelor of Science in Computer Science", record.Education[0].Degree)
	assert.Equal(t, "New York University", record.Education[0].Institution)
	assert.Equal(t, "GPA: 3.8", record.Education[0].Score)

	assert.Equal(t, []string{"Python", "JavaScript", "PostgreSQL"}, record.Skills.All,
		"技能章节有标签行时应按标签解析")

	require.Len(t, record.Projects, 1)
	assert.Equal(t, "Inventory Tracker", record.Projects[0].Name)
	assert.Equal(t, []string{"Go"}, record.Projects[0].Technologies)

	require.Len(t, record.Certifications, 1)
	assert.Equal(t, "Project Management Professional", record.Certifications[0].Name)
	assert.Equal(t, "PMI", record.Certifications[0].Issuer)
}

func TestParseRescuesUnrecognizedSkillsHeading(t *testing.T) {
	parser := NewResumeParser()

	// "MY TOP SKILLS"切分认不出来,但救捞模式能按大写标题截到内容
	text := "EDUCATION\nB.S. in Computer Science\nMIT\n\nMY TOP SKILLS\nPython, Docker"
	record := parser.Parse(text)

	assert.Equal(t, []string{"education", "skills"},
		record.Sections, "救回的技能章节应补登到章节列表")
	assert.Equal(t, []string{"Docker", "Python"}, record.Skills.All)

	require.Len(t, record.Education, 1)
	assert.Equal(t, "B.S. in Computer Science", record.Education[0].Degree)
	assert.Equal(t, "MIT", record.Education[0].Institution)
}

func TestParseAppliesEducationOverride(t *testing.T) {
	parser := NewResumeParser()

	text := "EDUCATION\nBachelor degree in Computer Engineering\nMarathwada MMM campus Pune\n2018 - 2022"
	record := parser.Parse(text)

	require.Len(t, record.Education, 1)
	assert.Equal(t, "Marathwada Mitra Mandal's College of Engineering", record.Education[0].Institution,
		"已知院校触发词应补全机构名")
	assert.Equal(t, "Bachelor of Engineering in Computer Engineering", record.Education[0].Degree,
		"学位应修正为规范写法")
	assert.Equal(t, "Computer Engineering", record.Education[0].FieldOfStudy)
}

func TestParseCertificationLinesFromEducation(t *testing.T) {
	parser := NewResumeParser()

	// 没有独立证书章节时,教育章节里夹带的证书行单独再提一次
	text := "EDUCATION\nB.S. in Physics\nMIT\n2012 - 2016\nEarned AWS certification in 2020"
	record := parser.Parse(text)

	require.Len(t, record.Education, 1)
	assert.Equal(t, "B.S. in Physics", record.Education[0].Degree)
	assert.Equal(t, []string{"2012 - 2016"}, record.Education[0].Dates)

	require.Len(t, record.Certifications, 1)
	assert.Contains(t, record.Certifications[0].Name, "AWS certification")
	assert.Equal(t, "2020", record.Certifications[0].Date)
}

func TestParseCertificationSectionSplitFromEducation(t *testing.T) {
	parser := NewResumeParser()

	// 教育章节末尾的Certifications行应拆成独立章节,并命中覆盖表
	text := "EDUCATION\nB.S. in Computer Science\nMIT\n2015 - 2019\n" +
		"Certifications: AWS Certified Developer - Associate, Amazon Web Services, 2021"
	record := parser.Parse(text)

	assert.Equal(t, []string{"education", "certifications"},
		record.Sections)

	require.Len(t, record.Education, 1)
	assert.Equal(t, "B.S. in Computer Science", record.Education[0].Degree)
	assert.Equal(t, "MIT", record.Education[0].Institution)

	require.Len(t, record.Certifications, 1)
	assert.Equal(t, "AWS Certified Developer - Associate", record.Certifications[0].Name)
	assert.Equal(t, "Amazon Web Services", record.Certifications[0].Issuer)
	assert.Equal(t, "2021", record.Certifications[0].Date)
}
