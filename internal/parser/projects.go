package parser

import (
	"regexp"
	"strings"

	"resume-parser-go/internal/types"
)

var projDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:^|\s)(\d{4}\s*-\s*\d{4}|\d{4}\s*-\s*present|\d{4}\s*-\s*ongoing)(?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]* \d{4}\s*-\s*(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]* \d{4}(?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]* \d{4}\s*-\s*(Present|Ongoing|Current)(?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(\d{4})(?:\s|$|,|\.)`),
}

var (
	// techLabelRe 技术栈标签行,标签后的内容取到行尾
	techLabelRe = regexp.MustCompile(`(?i)(?:^|\s)(Technologies|Tools|Tech Stack|Built with|Developed using|Implemented using|Stack)(?:\s|:|$)`)
	// techPrepRe 介词引出的技术列表
	techPrepRe = regexp.MustCompile(`(?i)(?:^|\s)(using|with|in|through)\s+([A-Za-z0-9, ]+)(?:\s|$|\.)`)
	// projEntryStartRe 行首大写词开头的行,多半是新项目名
	projEntryStartRe = regexp.MustCompile(`\n([A-Z][a-zA-Z0-9 ]+)[\s:–-]`)
	techSplitRe      = regexp.MustCompile(`[,;]`)
)

// ProjectsExtractor 项目经历提取器,条目必须有名称才会输出
type ProjectsExtractor struct {
	norm *TextNormalizer
}

// NewProjectsExtractor 创建项目经历提取器
func NewProjectsExtractor() *ProjectsExtractor {
	return &ProjectsExtractor{norm: NewTextNormalizer()}
}

// Extract 从项目章节文本提取条目
func (p *ProjectsExtractor) Extract(text string) []types.ProjectEntry {
	entries := []types.ProjectEntry{}
	for _, span := range p.splitEntries(text) {
		if p.norm.Flatten(span) == "" {
			continue
		}
		name := p.extractName(span)
		if name == "" {
			continue
		}
		entries = append(entries, types.ProjectEntry{
			Name:         name,
			DateRange:    p.extractDateRange(span),
			Technologies: p.extractTechnologies(span),
			Description:  p.extractDescription(span),
			RawText:      p.norm.Flatten(span),
		})
	}
	return entries
}

// splitEntries 空行切不开时按大写开头的行切,项目名通常顶格大写
func (p *ProjectsExtractor) splitEntries(text string) []string {
	if spans := splitByBlankLines(text); len(spans) > 1 {
		return spans
	}

	positions := []int{0}
	for _, loc := range projEntryStartRe.FindAllStringIndex(text, -1) {
		positions = append(positions, loc[0])
	}
	return spansFromPositions(text, positions)
}

// extractName 首行冒号前的部分,没有冒号就取首行第一段
func (p *ProjectsExtractor) extractName(span string) string {
	firstLine := span
	if i := strings.IndexByte(span, '\n'); i >= 0 {
		firstLine = span[:i]
	}
	if i := strings.IndexByte(firstLine, ':'); i >= 0 {
		return strings.TrimSpace(firstLine[:i])
	}
	return strings.TrimSpace(fieldSepRe.Split(firstLine, -1)[0])
}

func (p *ProjectsExtractor) extractDateRange(span string) string {
	for _, re := range projDatePatterns {
		if m := re.FindString(span); m != "" {
			return strings.TrimSpace(m)
		}
	}
	return ""
}

// extractTechnologies 标签行和介词两路都取,合并去重并保留出现顺序
func (p *ProjectsExtractor) extractTechnologies(span string) []string {
	technologies := []string{}

	if loc := techLabelRe.FindStringIndex(span); loc != nil {
		end := strings.IndexByte(span[loc[1]:], '\n')
		if end == -1 {
			end = len(span) - loc[1]
		}
		techText := strings.TrimSpace(span[loc[1] : loc[1]+end])
		if i := strings.IndexByte(techText, ':'); i >= 0 {
			techText = strings.TrimSpace(techText[i+1:])
		}
		for _, tech := range techSplitRe.Split(techText, -1) {
			if t := strings.TrimSpace(tech); t != "" && !containsString(technologies, t) {
				technologies = append(technologies, t)
			}
		}
	}

	if m := techPrepRe.FindStringSubmatch(span); m != nil {
		for _, tech := range strings.Split(m[2], ",") {
			if t := strings.TrimSpace(tech); t != "" && !containsString(technologies, t) {
				technologies = append(technologies, t)
			}
		}
	}

	return technologies
}

// extractDescription 项目符号行优先,否则取首行之后的非空行,都去重
func (p *ProjectsExtractor) extractDescription(span string) []string {
	description := extractBullets(span, true)
	if len(description) > 0 {
		return description
	}

	lines := strings.Split(span, "\n")
	if len(lines) <= 1 {
		return description
	}
	for _, line := range lines[1:] {
		l := strings.TrimSpace(line)
		if l != "" && !containsString(description, l) {
			description = append(description, l)
		}
	}
	return description
}
