package parser

import (
	"regexp"
	"strings"

	"resume-parser-go/internal/types"
)

// 章节救捞模式,在未归一化的原文里按大写标题直接截取内容
// 截取范围到下一个全大写标题行或文末为止
var (
	educationRescueRe      = rescuePattern("EDUCATION")
	experienceRescueRe     = rescuePattern("EXPERIENCE")
	internshipRescueRe     = rescuePattern("INTERNSHIP")
	skillsRescueRe         = rescuePattern("SKILLS")
	projectsRescueRe       = rescuePattern("PROJECTS")
	certificationsRescueRe = rescuePattern("CERTIFICATIONS")
)

func rescuePattern(heading string) *regexp.Regexp {
	return regexp.MustCompile(`(?s)` + heading + `\s*\n(.*?)(?:\n\s*[A-Z]{2,}|\z)`)
}

// certKeywords 教育章节里夹带证书行的识别词
var certKeywords = []string{"certification", "certificate", "certified", "credential", "license"}

// ResumeParser 简历文本解析门面,串起章节切分和各字段提取器
// Parse 是全函数:任何输入都产出结构完整的记录,空输入产出全空记录
type ResumeParser struct {
	norm           *TextNormalizer
	contact        *ContactExtractor
	segmenter      *SectionSegmenter
	education      *EducationExtractor
	experience     *ExperienceExtractor
	skills         *SkillsExtractor
	projects       *ProjectsExtractor
	certifications *CertificationsExtractor
}

// NewResumeParser 创建解析门面,所有提取器词表在此一次编译
func NewResumeParser() *ResumeParser {
	return &ResumeParser{
		norm:           NewTextNormalizer(),
		contact:        NewContactExtractor(),
		segmenter:      NewSectionSegmenter(),
		education:      NewEducationExtractor(),
		experience:     NewExperienceExtractor(),
		skills:         NewSkillsExtractor(),
		projects:       NewProjectsExtractor(),
		certifications: NewCertificationsExtractor(),
	}
}

// Parse 解析简历纯文本
// 联系方式和章节救捞在原文上做,章节切分在归一化文本上做
func (p *ResumeParser) Parse(text string) *types.ResumeRecord {
	record := types.NewResumeRecord()
	record.Contact = p.contact.Extract(text)

	sections := p.segmenter.Segment(p.norm.Normalize(text))

	// 教育
	eduText, _ := sections.Get(types.SectionEducation)
	if eduText == "" {
		if rescued, ok := rescueSection(educationRescueRe, text); ok {
			eduText = rescued
			sections = registerSection(sections, types.SectionEducation, rescued)
		}
	}
	record.Education = p.education.Extract(eduText)
	applyEducationOverrides(text, record.Education)

	// 经历:切分没找到或没提出条目时,按大写标题再捞一次,实习章节也算
	expText, _ := sections.Get(types.SectionExperience)
	record.Experience = p.experience.Extract(expText)
	if len(record.Experience) == 0 {
		for _, re := range []*regexp.Regexp{experienceRescueRe, internshipRescueRe} {
			rescued, ok := rescueSection(re, text)
			if !ok {
				continue
			}
			sections = registerSection(sections, types.SectionExperience, rescued)
			record.Experience = p.experience.Extract(rescued)
			if len(record.Experience) > 0 {
				break
			}
		}
	}

	// 技能
	if skillsText, _ := sections.Get(types.SectionSkills); skillsText == "" {
		if rescued, ok := rescueSection(skillsRescueRe, text); ok {
			sections = registerSection(sections, types.SectionSkills, rescued)
		}
	}
	record.Skills = p.skills.ExtractFromSections(sections)

	// 项目
	projText, _ := sections.Get(types.SectionProjects)
	if projText == "" {
		if rescued, ok := rescueSection(projectsRescueRe, text); ok {
			projText = rescued
			sections = registerSection(sections, types.SectionProjects, rescued)
		}
	}
	record.Projects = p.projects.Extract(projText)

	// 证书
	certText, _ := sections.Get(types.SectionCertifications)
	if certText == "" {
		if rescued, ok := rescueSection(certificationsRescueRe, text); ok {
			certText = rescued
			sections = registerSection(sections, types.SectionCertifications, rescued)
		}
	}
	record.Certifications = p.certifications.Extract(certText)

	// 没有独立证书章节时,教育章节里夹带的证书行单独再提一次
	if len(record.Certifications) == 0 && eduText != "" &&
		strings.Contains(strings.ToLower(eduText), "certification") {
		if certLines := collectCertificationLines(eduText); certLines != "" {
			record.Certifications = p.certifications.Extract(certLines)
		}
	}

	record.Sections = sections.Names()
	return record
}

// rescueSection 用救捞模式截取章节内容,内容为空视作未命中
func rescueSection(re *regexp.Regexp, text string) (string, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	content := strings.TrimSpace(m[1])
	return content, content != ""
}

// registerSection 补登救回的章节,已存在时替换文本,否则追加到末尾
func registerSection(sections types.SectionList, name types.SectionName, text string) types.SectionList {
	for i := range sections {
		if sections[i].Name == name {
			sections[i].Text = text
			return sections
		}
	}
	return append(sections, types.Section{Name: name, Text: text, Order: len(sections)})
}

// collectCertificationLines 收集教育文本里带证书关键词的行
func collectCertificationLines(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		lowered := strings.ToLower(line)
		for _, kw := range certKeywords {
			if strings.Contains(lowered, kw) {
				lines = append(lines, line)
				break
			}
		}
	}
	return strings.Join(lines, "\n")
}
