package parser

import (
	"regexp"
	"sort"
	"strings"

	"resume-parser-go/internal/types"
)

// skillLabelRule 技能标签行规则
// category 非空时值写入 technical 对应类目,否则按 dest 进独立桶
type skillLabelRule struct {
	labelRes []*regexp.Regexp
	category string
	dest     string
}

func newSkillLabelRule(category, dest string, labels ...string) skillLabelRule {
	rule := skillLabelRule{category: category, dest: dest}
	for _, label := range labels {
		rule.labelRes = append(rule.labelRes,
			regexp.MustCompile(`^\s*`+regexp.QuoteMeta(label)+`\s*:\s*(.*)$`))
	}
	return rule
}

var skillLabelRules = []skillLabelRule{
	newSkillLabelRule("programming_languages", "", "Programming Languages"),
	newSkillLabelRule("web_development", "", "Web Development", "Web Technologies"),
	newSkillLabelRule("databases", "", "Databases"),
	newSkillLabelRule("", "tools", "Software Tools", "Tools"),
	newSkillLabelRule("", "soft", "Soft Skills"),
}

func (r skillLabelRule) matchLine(line string) ([]string, bool) {
	for _, re := range r.labelRes {
		if m := re.FindStringSubmatch(line); m != nil {
			return splitSkillValues(m[1]), true
		}
	}
	return nil, false
}

// splitSkillValues 去掉列表前的破折号装饰,有逗号按逗号拆,否则按空白拆
func splitSkillValues(raw string) []string {
	raw = strings.TrimLeft(strings.TrimSpace(raw), "—–- \t")
	var parts []string
	if strings.Contains(raw, ",") {
		parts = strings.Split(raw, ",")
	} else {
		parts = strings.Fields(raw)
	}
	values := []string{}
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			values = append(values, v)
		}
	}
	return values
}

// SkillsExtractor 技能提取器
// 标签行格式整齐时按标签解析并保留书写顺序,否则回退到词表扫描
type SkillsExtractor struct {
	norm  *TextNormalizer
	tech  []namedSkillMatcher
	soft  *skillMatcher
	tools *skillMatcher
}

type namedSkillMatcher struct {
	name    string
	matcher *skillMatcher
}

// NewSkillsExtractor 创建技能提取器,词表在构造时编译
func NewSkillsExtractor() *SkillsExtractor {
	s := &SkillsExtractor{
		norm:  NewTextNormalizer(),
		soft:  newSoftSkillMatcher(softSkillStems),
		tools: newSkillMatcher(toolsSoftwareSkills),
	}
	for _, cat := range techSkillCategories {
		s.tech = append(s.tech, namedSkillMatcher{cat.name, newSkillMatcher(cat.entries)})
	}
	return s
}

// Extract 从技能章节文本提取技能集
func (s *SkillsExtractor) Extract(text string) types.SkillSet {
	if set, ok := s.extractLabeled(text); ok {
		return set
	}
	return s.extractByVocabulary(text)
}

// extractLabeled 解析 "标签: 值" 形式的技能行
// 第二个返回值表示是否命中过任何标签行
func (s *SkillsExtractor) extractLabeled(text string) (types.SkillSet, bool) {
	set := types.NewSkillSet()
	matched := false

	for _, line := range strings.Split(text, "\n") {
		for _, rule := range skillLabelRules {
			values, ok := rule.matchLine(line)
			if !ok {
				continue
			}
			matched = true
			set.All = append(set.All, values...)
			switch {
			case rule.category != "":
				set.Technical[rule.category] = append(set.Technical[rule.category], values...)
			case rule.dest == "tools":
				set.Tools = append(set.Tools, values...)
			default:
				set.SoftSkills = append(set.SoftSkills, values...)
			}
			break
		}
	}
	return set, matched
}

// extractByVocabulary 压平文本后逐类目扫描词表
func (s *SkillsExtractor) extractByVocabulary(text string) types.SkillSet {
	set := types.NewSkillSet()
	flat := s.norm.Flatten(text)
	if flat == "" {
		return set
	}

	seen := map[string]struct{}{}
	collect := func(items []string) {
		for _, it := range items {
			if _, ok := seen[it]; !ok {
				seen[it] = struct{}{}
				set.All = append(set.All, it)
			}
		}
	}

	for _, cat := range s.tech {
		found := cat.matcher.find(flat)
		if len(found) == 0 {
			continue
		}
		set.Technical[cat.name] = found
		collect(found)
	}
	set.SoftSkills = s.soft.find(flat)
	collect(set.SoftSkills)
	set.Tools = s.tools.find(flat)
	collect(set.Tools)

	sort.Strings(set.All)
	return set
}

// ExtractFromSections 跨章节提取技能
// 技能章节有标签行时单独使用该章节;否则以技能章节为底,
// 并入经历、简介、项目章节的词表命中
func (s *SkillsExtractor) ExtractFromSections(sections types.SectionList) types.SkillSet {
	skillsText, _ := sections.Get(types.SectionSkills)
	if set, ok := s.extractLabeled(skillsText); ok {
		return set
	}

	result := s.extractByVocabulary(skillsText)
	for _, name := range []types.SectionName{types.SectionExperience, types.SectionProfile, types.SectionProjects} {
		if text, ok := sections.Get(name); ok {
			result.Merge(s.Extract(text))
		}
	}
	return result
}
