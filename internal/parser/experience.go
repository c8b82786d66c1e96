package parser

import (
	"regexp"
	"strings"

	"resume-parser-go/internal/types"
)

// jobTitlePatterns 职位标记词,既用于条目切分也用于职位段落匹配
var jobTitlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:^|\s)(Engineer|Developer|Manager|Director|Analyst|Consultant|Specialist|Coordinator|Administrator|Assistant|Intern|Architect|Designer|Lead|Head|Chief|Officer|VP|President|Supervisor)(?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(Software|Web|UI|UX|Front[\s-]End|Back[\s-]End|Full[\s-]Stack|Mobile|DevOps|QA|Test|Data|Machine Learning|AI|Cloud|Network|Systems|Security|Product|Project|Program|Business|Marketing|Sales|HR|Operations)(?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(Data Scientist|Machine Learning Engineer|DevOps Engineer|Site Reliability Engineer|Software Engineer|Junior Developer)(?:\s|$|,|\.)`),
}

// companyPatterns 公司后缀和行业词
var companyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:^|\s)(Inc\.|LLC|Ltd\.|Limited|Corp\.|Corporation|Company|Co\.)(?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(Technologies|Solutions|Systems|Services|Group|Partners|Associates|Consultants)(?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(Tech)(?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(Analytics|Digital|Software|Labs|Innovations)(?:\s|$|,|\.)`),
}

// 月份写法在前:裸年份区间会从"June 2020 - Present"里只咬走"2020 - Present"
var expDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:^|\s)(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]* \d{4}\s*-\s*(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]* \d{4}(?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]* \d{4}\s*-\s*(Present|Ongoing|Current)(?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(\d{4}\s*-\s*\d{4}|\d{4}\s*-\s*present|\d{4}\s*-\s*ongoing)(?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(\d{2}/\d{4}\s*-\s*\d{2}/\d{4}|\d{2}/\d{4}\s*-\s*Present)(?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(\d{2}/\d{2}/\d{4}\s*-\s*\d{2}/\d{2}/\d{4}|\d{2}/\d{2}/\d{4}\s*-\s*Present)(?:\s|$|,|\.)`),
}

// knownCompanies 已知公司词表,命中时返回表内的规范拼写
var knownCompanies = []string{
	"ABC Tech", "XYZ Solutions", "DataCorp Analytics", "TechStart Solutions",
	"Insight Data Systems", "Tech Innovations", "Global Systems", "Digital Solutions",
	"CodeClause",
}

// bulletPatterns 要点行标记,projects 提取描述时复用
var bulletPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:^|\n)\s*[•\-*]`),
	regexp.MustCompile(`(?:^|\n)\s*\d+\.`),
	regexp.MustCompile(`(?:^|\n)\s*\[\+\]`),
}

var (
	specificTitleRe = regexp.MustCompile(`(?i)(Software Engineer|Junior Developer|Senior Developer|Web Developer|Data Scientist|Lead Data Scientist|Senior Data Scientist|Machine Learning Engineer|DevOps Engineer)`)
	employerLeadRe  = regexp.MustCompile(`^([A-Za-z0-9]+\s+[A-Za-z0-9]+)(?:,|\s+|$)`)
	employerTailRe  = regexp.MustCompile(`([A-Za-z0-9]+\s+[A-Za-z0-9]+(?:\s+(?:Analytics|Tech|Solutions|Inc\.|LLC|Ltd\.|Systems|Corp\.|Corporation))?)`)
	locationWordRe  = regexp.MustCompile(`\b(in|at|for)\b`)
	trailingCommaRe = regexp.MustCompile(`,\s*$`)
	fieldSepRe      = regexp.MustCompile(`[,;|]`)
)

// ExperienceExtractor 工作经历提取器
// 条目必须带职位或公司才会输出,要点从原始文本取以保留项目符号行
type ExperienceExtractor struct {
	norm         *TextNormalizer
	titleRules   ruleSet
	companyRules ruleSet
}

// NewExperienceExtractor 创建工作经历提取器
func NewExperienceExtractor() *ExperienceExtractor {
	e := &ExperienceExtractor{norm: NewTextNormalizer()}
	e.titleRules = ruleSet{
		{name: "specific-title", match: e.matchSpecificTitle},
		{name: "title-line-segment", match: e.matchTitleLineSegment},
		{name: "first-segment", match: e.matchFirstSegment},
	}
	e.companyRules = ruleSet{
		{name: "known-company", match: e.matchKnownCompany},
		{name: "employer-line-leading", match: e.matchEmployerLineLeading},
		{name: "employer-line-suffix", match: e.matchEmployerLineSuffix},
		{name: "employer-line-pipe", match: e.matchEmployerLinePipe},
		{name: "company-keyword-segment", match: e.matchCompanyKeywordSegment},
	}
	return e
}

// Extract 从工作经历章节文本提取条目
func (e *ExperienceExtractor) Extract(text string) []types.ExperienceEntry {
	entries := []types.ExperienceEntry{}
	if len(text) < 10 {
		return entries
	}

	for _, span := range e.splitEntries(text) {
		if e.norm.Flatten(span) == "" {
			continue
		}
		entry := types.ExperienceEntry{
			JobTitle:         e.titleRules.apply(span),
			Company:          e.companyRules.apply(span),
			DateRange:        e.extractDateRange(span),
			Responsibilities: e.extractResponsibilities(span),
			RawText:          e.norm.Flatten(span),
		}
		if entry.JobTitle == "" && entry.Company == "" {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

func (e *ExperienceExtractor) splitEntries(text string) []string {
	if spans := splitByBlankLines(text); len(spans) > 1 {
		return spans
	}
	if spans, found := splitByLineMarkers(text, jobTitlePatterns); found {
		return spans
	}
	return splitByLines(text)
}

func (e *ExperienceExtractor) matchSpecificTitle(span string) string {
	if m := specificTitleRe.FindStringSubmatch(span); m != nil {
		return m[1]
	}
	return ""
}

// matchTitleLineSegment 首行按分隔符拆段,取第一个带职位词的段
func (e *ExperienceExtractor) matchTitleLineSegment(span string) string {
	firstLine := span
	if i := strings.IndexByte(span, '\n'); i >= 0 {
		firstLine = span[:i]
	}
	for _, seg := range fieldSepRe.Split(firstLine, -1) {
		seg = strings.TrimSpace(seg)
		for _, re := range jobTitlePatterns {
			if re.MatchString(seg) {
				return seg
			}
		}
	}
	return ""
}

func (e *ExperienceExtractor) matchFirstSegment(span string) string {
	firstLine := span
	if i := strings.IndexByte(span, '\n'); i >= 0 {
		firstLine = span[:i]
	}
	segments := fieldSepRe.Split(firstLine, -1)
	if len(segments) == 0 {
		return ""
	}
	return strings.TrimSpace(segments[0])
}

func (e *ExperienceExtractor) matchKnownCompany(span string) string {
	for _, company := range knownCompanies {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(company) + `\b`)
		if re.MatchString(span) {
			return company
		}
	}
	return ""
}

// matchEmployerLineLeading 职位行的下一行以两个词开头时视作雇主名
func (e *ExperienceExtractor) matchEmployerLineLeading(span string) string {
	lines := strings.Split(span, "\n")
	if len(lines) < 2 {
		return ""
	}
	if m := employerLeadRe.FindStringSubmatch(strings.TrimSpace(lines[1])); m != nil {
		return m[1]
	}
	return ""
}

func (e *ExperienceExtractor) matchEmployerLineSuffix(span string) string {
	lines := strings.Split(span, "\n")
	if len(lines) < 2 {
		return ""
	}
	if m := employerTailRe.FindStringSubmatch(lines[1]); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// matchEmployerLinePipe 第二行竖线前的部分,含介词的当位置信息拒掉
func (e *ExperienceExtractor) matchEmployerLinePipe(span string) string {
	lines := strings.Split(span, "\n")
	if len(lines) < 2 {
		return ""
	}
	parts := strings.Split(lines[1], "|")
	candidate := strings.TrimSpace(parts[0])
	if candidate == "" || locationWordRe.MatchString(strings.ToLower(candidate)) {
		return ""
	}
	return trailingCommaRe.ReplaceAllString(candidate, "")
}

func (e *ExperienceExtractor) matchCompanyKeywordSegment(span string) string {
	lines := strings.Split(span, "\n")
	if len(lines) > 2 {
		lines = lines[:2]
	}
	for _, line := range lines {
		for _, seg := range fieldSepRe.Split(line, -1) {
			seg = strings.TrimSpace(seg)
			for _, re := range companyPatterns {
				if re.MatchString(seg) {
					return seg
				}
			}
		}
	}
	return ""
}

func (e *ExperienceExtractor) extractDateRange(span string) string {
	for _, re := range expDatePatterns {
		if m := re.FindString(span); m != "" {
			return strings.TrimSpace(m)
		}
	}
	return ""
}

// extractResponsibilities 先取项目符号行,一个都没有时跳过头两行逐行取
func (e *ExperienceExtractor) extractResponsibilities(span string) []string {
	bullets := extractBullets(span, false)
	if len(bullets) > 0 {
		return bullets
	}

	lines := strings.Split(span, "\n")
	if len(lines) <= 2 {
		return bullets
	}
	for _, line := range lines[2:] {
		if l := strings.TrimSpace(line); l != "" {
			bullets = append(bullets, l)
		}
	}
	return bullets
}

// extractBullets 提取项目符号行,每条从标记结束到下一个同类标记为止
func extractBullets(span string, dedup bool) []string {
	bullets := []string{}
	for _, re := range bulletPatterns {
		locs := re.FindAllStringIndex(span, -1)
		for i, loc := range locs {
			start := loc[1]
			end := len(span)
			if i+1 < len(locs) {
				end = locs[i+1][0]
			}
			b := strings.TrimSpace(span[start:end])
			if b == "" {
				continue
			}
			if dedup && containsString(bullets, b) {
				continue
			}
			bullets = append(bullets, b)
		}
	}
	return bullets
}
