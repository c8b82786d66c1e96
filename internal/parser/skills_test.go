package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-parser-go/internal/types"
)

func TestSkillsExtractLabeledLines(t *testing.T) {
	extractor := NewSkillsExtractor()

	text := "Programming Languages: Python, JavaScript\nDatabases: PostgreSQL"
	set := extractor.Extract(text)

	assert.Equal(t, []string{"Python", "JavaScript", "PostgreSQL"}, set.All, "标签行解析应保留书写顺序")
	assert.Equal(t, []string{"Python", "JavaScript"}, set.Technical["programming_languages"])
	assert.Equal(t, []string{"PostgreSQL"}, set.Technical["databases"])
	assert.Empty(t, set.SoftSkills)
	assert.Empty(t, set.Tools)
}

func TestSkillsLabeledDashAndSpaceSplit(t *testing.T) {
	extractor := NewSkillsExtractor()

	// 破折号装饰要去掉;没有逗号的值按空白拆分
	text := "Tools: Git Docker\nSoft Skills: — Communication, Teamwork"
	set := extractor.Extract(text)

	assert.Equal(t, []string{"Git", "Docker"}, set.Tools)
	assert.Equal(t, []string{"Communication", "Teamwork"}, set.SoftSkills, "破折号装饰应被去掉")
	assert.Equal(t, []string{"Git", "Docker", "Communication", "Teamwork"}, set.All)
}

func TestSkillsVocabularyScan(t *testing.T) {
	extractor := NewSkillsExtractor()

	// 没有标签行时回退到词表扫描:长词优先、保留原文写法、结果排序
	text := "Experienced with Python, C++, SQL Server and problem solving. Built dashboards in Tableau."
	set := extractor.Extract(text)

	assert.Equal(t,
		[]string{"C", "C++", "Python", "SQL", "SQL Server", "Tableau", "problem solving"},
		set.All, "全量列表应去重并排序")
	assert.Equal(t, []string{"C", "C++", "Python", "SQL"}, set.Technical["programming_languages"])
	assert.Equal(t, []string{"SQL Server"}, set.Technical["databases"], "SQL Server不应被拆成SQL")
	assert.Equal(t, []string{"Tableau"}, set.Technical["ai_ml_data"])
	assert.Len(t, set.Technical, 3, "未命中的类目不应出现在结果里")
	assert.Equal(t, []string{"problem solving"}, set.SoftSkills)
	assert.Empty(t, set.Tools)
}

func TestSkillsSoftSkillInflection(t *testing.T) {
	extractor := NewSkillsExtractor()

	// 软技能词干允许ing/ed变形,命中时只保留词干部分
	set := extractor.Extract("Researched new frameworks and mentoring junior developers")

	assert.Equal(t, []string{"Research", "mentoring"}, set.SoftSkills)
	assert.Empty(t, set.Technical, "这段文本不应命中任何技术类目")
	assert.Equal(t, []string{"Research", "mentoring"}, set.All)
}

func TestSkillsExtractEmptyInput(t *testing.T) {
	extractor := NewSkillsExtractor()

	set := extractor.Extract("")
	assert.True(t, set.IsEmpty(), "空输入应返回空技能集")
	assert.NotNil(t, set.All, "容器字段应初始化为空列表而不是nil")
	assert.NotNil(t, set.Technical)
}

func TestSkillsExtractFromSectionsLabeledTakeover(t *testing.T) {
	extractor := NewSkillsExtractor()

	// 技能章节有标签行时单独使用该章节,不并入其他章节
	sections := types.SectionList{
		{Name: types.SectionSkills, Text: "Programming Languages: Go, Rust", Order: 0},
		{Name: types.SectionExperience, Text: "Built services in Python with Kafka", Order: 1},
	}
	set := extractor.ExtractFromSections(sections)

	assert.Equal(t, []string{"Go", "Rust"}, set.All)
	assert.NotContains(t, set.All, "Python", "标签行命中时不应并入经历章节")
}

func TestSkillsExtractFromSectionsMergesVocabulary(t *testing.T) {
	extractor := NewSkillsExtractor()

	// 技能章节没有标签行时,以词表扫描为底并入经历章节的命中
	sections := types.SectionList{
		{Name: types.SectionSkills, Text: "Python and Docker experience", Order: 0},
		{Name: types.SectionExperience, Text: "Built APIs in Java with PostgreSQL", Order: 1},
	}
	set := extractor.ExtractFromSections(sections)

	assert.Equal(t, []string{"Docker", "Java", "PostgreSQL", "Python"}, set.All, "合并结果应去重排序")
	assert.Equal(t, []string{"Java", "Python"}, set.Technical["programming_languages"])
	assert.Equal(t, []string{"PostgreSQL"}, set.Technical["databases"])
	assert.Equal(t, []string{"Docker"}, set.Technical["devops_cloud"])
	assert.Equal(t, []string{"Docker"}, set.Tools)
}

func TestSkillsPluralWordNotMatched(t *testing.T) {
	extractor := NewSkillsExtractor()

	// 词表按整词匹配,"APIs"不应命中"api"
	set := extractor.Extract("Maintained several internal APIs")
	require.NotNil(t, set.All)
	assert.NotContains(t, set.All, "API")
	assert.NotContains(t, set.All, "APIs")
}
