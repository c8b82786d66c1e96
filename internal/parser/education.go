package parser

import (
	"regexp"
	"sort"
	"strings"

	"resume-parser-go/internal/types"
)

// 学位封闭词表,顺序即优先级,本科在前研究生在后,中学学历垫底
var degreePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:^|\s)(B\.Tech|Bachelor of Technology)(?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(B\.E\.|Bachelor of Engineering)(?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(Bachelor of Engineering in [A-Za-z\s]+)(?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(B\.Sc\.|Bachelor of Science)(?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(B\.S\.|B\.S\.? in .+?|Bachelor of Science)(?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(Bachelor of Science in)(?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(Bachelor of Science)(?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(B\.A\.|Bachelor of Arts)(?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(B\.Com\.|Bachelor of Commerce)(?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(M\.Tech|Master of Technology)(?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(M\.E\.|Master of Engineering)(?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(M\.Sc\.|Master of Science)(?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(M\.S\.|M\.S\.? in .+?|Master of Science)(?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(Master of Science in)(?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(Master of Science)(?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(M\.A\.|Master of Arts)(?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(M\.Com\.|Master of Commerce)(?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(MBA|Master of Business Administration)(?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(Ph\.D\.|Doctor of Philosophy)(?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(Diploma|Associate Degree)(?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(HSC|12th|XII|Higher Secondary)(?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(SSC|10th|X|Secondary)(?:\s|$|,|\.)`),
}

// fullDegreeIndicators 完整学位短语,用于长文本的激进二次切分
var fullDegreeIndicators = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(Bachelor['’]s degree|Master['’]s degree|Doctorate|Ph\.D|MBA)`),
	regexp.MustCompile(`(?i)(B\.S\.|B\.A\.|B\.Tech|B\.E\.|M\.S\.|M\.A\.|M\.Tech|M\.B\.A|Associate's|A\.A\.|A\.S\.)`),
	regexp.MustCompile(`(?i)(Bachelor of|Master of|Doctor of|Associate of)`),
}

// institutionKeywordPatterns 院校通用关键词
var institutionKeywordPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:^|\s)(University|College|Institute|School)(?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(Academy|Education|Educational|Vidyalaya)(?:\s|$|,|\.)`),
}

// knownInstitutions 知名院校,直接整词命中
var knownInstitutions = []string{
	"Harvard University", "Yale University", "Princeton University",
	"Stanford University", "Massachusetts Institute of Technology", "MIT",
	"California Institute of Technology", "Columbia University",
	"University of Chicago", "University of Pennsylvania", "Penn",
	"University of California, Berkeley", "Cornell University",
	"University of Michigan", "University of Cambridge", "University of Oxford",
	"Imperial College London", "ETH Zurich", "National University of Singapore",
	"Tsinghua University", "University of Toronto", "Carnegie Mellon University",
	"New York University", "Marathwada Mitra Mandal's College", "Marathwada Mitra Mandal",
}

var eduDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:^|\s)(\d{4}\s*-\s*\d{4}|\d{4}\s*-\s*present|\d{4}\s*-\s*ongoing)(?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(\d{4})(?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]* \d{4}(?:\s|$|,|\.)`),
}

var scorePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:^|\s|:)(GPA|CGPA|Percentage|Score|Marks)[\s:]*(\d+\.\d+|\d+\.|\d+)[%]?(?:[\s/]|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(\d+\.\d+|\d+)[/](\d+\.\d+|\d+)(?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(\d+\.\d+|\d+)[%](?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(Cum Laude|Magna Cum Laude|Summa Cum Laude|Distinction|Merit|First Class|Second Class)`),
}

// fieldPatterns 专业匹配,只在学位关键词附近找,避免把普通介词短语当专业
var fieldPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:degree|bachelor|master|ms|ma|mba|phd|bs|ba)\s+in\s+([A-Za-z][A-Za-z\s]+?)(?:,|\.|$|\n)`),
	regexp.MustCompile(`(?i)(?:majoring|majored)\s+in\s+([A-Za-z][A-Za-z\s]+?)(?:,|\.|$|\n)`),
	regexp.MustCompile(`(?i)(?:studied|study|studies)\s+in\s+([A-Za-z][A-Za-z\s]+?)(?:,|\.|$|\n)`),
	regexp.MustCompile(`(?i)(?:in|of)\s+([A-Za-z][A-Za-z\s]+?)(?:\s+(?:from|at|in)\s+(?:the\s+)?(?:university|college|institute|school))`),
}

// commonFields 常见学科,用于专业校验和直接命中
var commonFields = []string{
	"computer science", "information technology", "electrical engineering",
	"mechanical engineering", "civil engineering", "chemical engineering",
	"biology", "chemistry", "physics", "mathematics", "statistics",
	"business administration", "finance", "economics", "accounting",
	"marketing", "management", "psychology", "sociology", "history",
	"english", "literature", "communications", "journalism", "political science",
	"international relations", "philosophy", "education", "nursing", "medicine",
	"law", "criminal justice", "art", "design", "music", "theater", "film",
	"architecture", "agriculture", "environmental science", "geography",
	"anthropology", "linguistics", "information systems", "data science",
	"artificial intelligence", "machine learning", "cybersecurity",
}

var concentrationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(Concentration|Specialization|Focus|Major|Track|Emphasis)(?:: | in )([A-Za-z\s]+?)(?:,|\.|$|\n)`),
	regexp.MustCompile(`(?i)(?:with|,) ([A-Za-z\s]+) (Concentration|Specialization|Focus|Major|Track|Emphasis)(?:,|\.|$|\n)`),
}

var (
	knownInstitutionRe = compileAlternation(knownInstitutions, "(?i)(", ")")
	commonFieldsRe     = regexp.MustCompile(`(?i)\b(` + strings.Join(commonFields, "|") + `)\b`)
	genericInstRe      = regexp.MustCompile(`(?i)([A-Za-z\s&]+(?:University|College|Institute|School))`)
	eduDateRangeRe     = regexp.MustCompile(`(\d{4})\s*-\s*(\d{4}|\s*Present|\s*Current)`)
	gpaRe              = regexp.MustCompile(`(?i)GPA\s*(?::|of|=)?\s*(\d+\.\d+)[/]?(?:\d+\.\d+)?`)
	honorsRe           = regexp.MustCompile(`(?i)(Cum Laude|Magna Cum Laude|Summa Cum Laude|with Honors|with Distinction|with High Distinction)`)
	fieldSuffixRe      = regexp.MustCompile(`(?i)(science|engineering|studies|technology|arts|management|design|analysis|systems)`)
	exactFullDegreeRe  = regexp.MustCompile(`Bachelor of Engineering in Computer Engineering`)
)

// compileAlternation 把字面量列表编译成转义后的选择分支
func compileAlternation(items []string, prefix, suffix string) *regexp.Regexp {
	quoted := make([]string, len(items))
	for i, it := range items {
		quoted[i] = regexp.QuoteMeta(it)
	}
	return regexp.MustCompile(prefix + strings.Join(quoted, "|") + suffix)
}

// EducationExtractor 教育经历提取器
// 先切条目再逐字段跑规则组,条目必须带学位或院校才会输出
type EducationExtractor struct {
	norm        *TextNormalizer
	degreeRules ruleSet
}

// NewEducationExtractor 创建教育经历提取器
func NewEducationExtractor() *EducationExtractor {
	e := &EducationExtractor{norm: NewTextNormalizer()}
	e.degreeRules = ruleSet{
		{name: "exact-full-degree", match: e.matchExactFullDegree},
		{name: "degree-vocabulary", match: e.matchDegreeVocabulary},
		{name: "degree-keyword-phrase", match: e.matchDegreeKeywordPhrase},
	}
	return e
}

// Extract 从教育章节文本提取条目,文本过短或无信号时返回空列表
func (e *EducationExtractor) Extract(text string) []types.EducationEntry {
	entries := []types.EducationEntry{}
	if len(text) < 10 {
		return entries
	}

	spans := e.splitEntries(text)
	// 切出来只有一段但文本很长,多半是多条记录粘连,用完整学位短语再切一次
	if len(spans) <= 1 && len(text) > 100 {
		spans = e.splitByDegreeIndicators(text)
	}

	for _, span := range spans {
		if e.norm.Flatten(span) == "" {
			continue
		}
		entry := e.extractEntry(span)
		if entry.Degree == "" && entry.Institution == "" {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

// splitEntries 空行优先;再按行首学位标记切;全无标记才逐行兜底
func (e *EducationExtractor) splitEntries(text string) []string {
	if spans := splitByBlankLines(text); len(spans) > 1 {
		return spans
	}
	if spans, found := splitByLineMarkers(text, degreePatterns); found {
		return spans
	}
	return splitByLines(text)
}

// splitByDegreeIndicators 按完整学位短语切分,短语前是换行或标点才算边界
func (e *EducationExtractor) splitByDegreeIndicators(text string) []string {
	positions := map[int]struct{}{0: {}}
	for _, re := range fullDegreeIndicators {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			pos := loc[0]
			if pos == 0 {
				continue
			}
			switch text[pos-1] {
			case '\n', '.', ',', ';':
				positions[pos] = struct{}{}
			}
		}
	}

	sorted := make([]int, 0, len(positions))
	for p := range positions {
		sorted = append(sorted, p)
	}
	sort.Ints(sorted)
	return spansFromPositions(text, sorted)
}

func (e *EducationExtractor) extractEntry(span string) types.EducationEntry {
	degree := e.degreeRules.apply(span)
	field := e.extractFieldOfStudy(span)
	concentration := e.extractConcentration(span)
	institution := e.extractInstitution(span)
	dates := e.extractDates(span)
	score := e.extractScore(span)

	if field != "" && !e.isValidField(field) {
		field = ""
	}

	// 学位和专业都有且学位里还没有in时拼成完整学位
	if degree != "" && field != "" && !strings.Contains(strings.ToLower(degree), "in") {
		degree = degree + " in " + field
	}
	if degree != "" && concentration != "" && !strings.Contains(strings.ToLower(degree), "concentration") {
		degree = degree + ", " + concentration + " Concentration"
	}

	// 两个都没命中时试最常见的两行排版:首行学位,次行院校
	if degree == "" && institution == "" {
		degree, institution = e.twoLineFallback(span)
	}

	return types.EducationEntry{
		Degree:        degree,
		FieldOfStudy:  field,
		Concentration: concentration,
		Institution:   institution,
		Dates:         dates,
		Score:         score,
		RawText:       e.norm.Flatten(span),
	}
}

func (e *EducationExtractor) matchExactFullDegree(span string) string {
	return exactFullDegreeRe.FindString(span)
}

func (e *EducationExtractor) matchDegreeVocabulary(span string) string {
	for _, re := range degreePatterns {
		m := re.FindStringSubmatch(span)
		if m == nil {
			continue
		}
		degree := m[1]
		// 学位后紧跟 "in <专业>" 时连专业一起取
		suffixRe := regexp.MustCompile(regexp.QuoteMeta(degree) + `\s+in\s+([A-Za-z][A-Za-z\s]+?)(?:,|\.|$|\n)`)
		if sm := suffixRe.FindStringSubmatch(span); sm != nil {
			return degree + " in " + sm[1]
		}
		return degree
	}
	return ""
}

func (e *EducationExtractor) matchDegreeKeywordPhrase(span string) string {
	flat := e.norm.Flatten(span)
	keywords := []string{"Bachelor", "Master", "PhD", "Doctorate", "Associate", "Certificate", "Diploma"}
	for _, kw := range keywords {
		kwRe := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)
		if !kwRe.MatchString(flat) {
			continue
		}
		phraseRe := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(kw) + `[\w\s]+(?:,|\.|$|\n)`)
		if m := phraseRe.FindString(flat); m != "" {
			return strings.TrimRight(strings.TrimSpace(m), ",.;")
		}
		return kw
	}
	return ""
}

func (e *EducationExtractor) extractFieldOfStudy(span string) string {
	hasDegreeKeyword := false
	lowered := strings.ToLower(span)
	for _, kw := range []string{"degree", "bachelor", "master", "phd", "bs", "ms", "ba", "ma", "education", "studies", "major"} {
		if strings.Contains(lowered, kw) {
			hasDegreeKeyword = true
			break
		}
	}
	if !hasDegreeKeyword {
		return ""
	}

	for _, re := range fieldPatterns {
		if m := re.FindStringSubmatch(span); m != nil {
			field := strings.TrimSpace(m[1])
			if e.isValidField(field) {
				return field
			}
		}
	}

	return commonFieldsRe.FindString(span)
}

// isValidField 过短、停用词、既不在学科表也不带学科后缀的一律拒绝
func (e *EducationExtractor) isValidField(field string) bool {
	if len(field) < 4 {
		return false
	}
	switch strings.ToLower(field) {
	case "the", "and", "with", "from", "also", "have", "this", "that", "there":
		return false
	}
	if commonFieldsRe.MatchString(field) {
		return true
	}
	return fieldSuffixRe.MatchString(field)
}

func (e *EducationExtractor) extractConcentration(span string) string {
	for _, re := range concentrationPatterns {
		m := re.FindStringSubmatch(span)
		if m == nil {
			continue
		}
		if len(m) >= 3 && m[2] != "" {
			return strings.TrimSpace(m[2])
		}
		return strings.TrimSpace(m[1])
	}
	return ""
}

func (e *EducationExtractor) extractInstitution(span string) string {
	// 知名院校直接命中
	if m := knownInstitutionRe.FindStringSubmatch(span); m != nil {
		return m[1]
	}

	// <名称>University/College/Institute/School 通用模式,在压平文本上取避免跨行前缀
	if m := genericInstRe.FindStringSubmatch(e.norm.Flatten(span)); m != nil {
		return strings.TrimSpace(m[1])
	}

	hasKeyword := false
	for _, re := range institutionKeywordPatterns {
		if re.MatchString(span) {
			hasKeyword = true
			break
		}
	}

	if !hasKeyword {
		// 逐行找带院校词的行,再按分隔符拆出名称
		for _, line := range strings.Split(span, "\n") {
			lowered := strings.ToLower(line)
			if !strings.Contains(lowered, "university") && !strings.Contains(lowered, "college") && !strings.Contains(lowered, "institute") {
				continue
			}
			for _, part := range regexp.MustCompile(`[|,]`).Split(line, -1) {
				pl := strings.ToLower(part)
				if strings.Contains(pl, "university") || strings.Contains(pl, "college") || strings.Contains(pl, "institute") {
					return strings.TrimSpace(part)
				}
			}
		}
		return ""
	}

	segments := regexp.MustCompile(`[,;|\n]`).Split(span, -1)
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		for _, re := range institutionKeywordPatterns {
			if re.MatchString(seg) {
				return seg
			}
		}
	}

	// 没有哪段带院校词,取第一段非学位文本兜底
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		isDegree := false
		for _, re := range degreePatterns {
			if re.MatchString(seg) {
				isDegree = true
				break
			}
		}
		if !isDegree {
			return seg
		}
	}
	return ""
}

func (e *EducationExtractor) extractDates(span string) []string {
	if m := eduDateRangeRe.FindStringSubmatch(span); m != nil {
		end := strings.TrimSpace(m[2])
		switch {
		case end == "Present" || end == "Current":
			return []string{m[1] + " - Present"}
		case isDigits(end):
			return []string{m[1] + " - " + end}
		default:
			return []string{m[1]}
		}
	}

	dates := []string{}
	for _, re := range eduDatePatterns {
		for _, m := range re.FindAllString(span, -1) {
			d := strings.TrimSpace(m)
			if !containsString(dates, d) {
				dates = append(dates, d)
			}
		}
	}
	return dates
}

func (e *EducationExtractor) extractScore(span string) string {
	if m := gpaRe.FindStringSubmatch(span); m != nil {
		return "GPA: " + m[1]
	}
	if m := honorsRe.FindStringSubmatch(span); m != nil {
		return m[1]
	}
	for _, re := range scorePatterns {
		if m := re.FindString(span); m != "" {
			return strings.TrimSpace(m)
		}
	}
	return ""
}

func (e *EducationExtractor) twoLineFallback(span string) (degree, institution string) {
	lines := strings.Split(span, "\n")
	if len(lines) < 2 {
		return "", ""
	}

	first := strings.TrimSpace(lines[0])
	firstLower := strings.ToLower(first)
	for _, kw := range []string{"bachelor", "master", "degree", "bs", "ms", "ba", "ma", "phd"} {
		if strings.Contains(firstLower, kw) {
			degree = first
			break
		}
	}

	second := strings.TrimSpace(lines[1])
	secondLower := strings.ToLower(second)
	for _, kw := range []string{"university", "college", "institute", "school"} {
		if strings.Contains(secondLower, kw) {
			institution = second
			break
		}
	}
	return degree, institution
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, it := range list {
		if it == s {
			return true
		}
	}
	return false
}
