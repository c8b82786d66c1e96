package parser

import (
	"regexp"
	"strings"
	"unicode"

	"resume-parser-go/internal/types"
)

// headerClaimWindow 文档开头多少个字符以内的正文可以被认领为header章节
const headerClaimWindow = 200

// SectionSegmenter 章节切分器,把规整后的简历文本切成命名章节
// 逐行扫描识别边界:视觉分隔线、全大写精确标题、同义词标题、带样式的短标题
// 完全找不到边界且关键词兜底也无命中时,整篇归入unknown章节
type SectionSegmenter struct{}

// NewSectionSegmenter 创建章节切分器
func NewSectionSegmenter() *SectionSegmenter {
	return &SectionSegmenter{}
}

// certInEducationRe 教育章节里混入证书内容时的切分点
var certInEducationRe = regexp.MustCompile(`(?i)(\n|^)\s*(certification|certified|credential|license|accredit)`)

type boundary struct {
	name types.SectionName
	pos  int
}

// Segment 切分文本为章节列表,永不失败
// 空输入返回空列表;有内容但无结构时返回单个unknown章节
func (s *SectionSegmenter) Segment(text string) types.SectionList {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return types.SectionList{}
	}

	boundaries := s.identifyBoundaries(text)
	if len(boundaries) == 0 {
		return types.SectionList{{Name: types.SectionUnknown, Text: trimmed, Order: 0}}
	}

	// 按边界切片,剥掉标题行,同名章节按文档顺序拼接
	ordered := []types.SectionName{}
	byName := map[types.SectionName]string{}
	for i, b := range boundaries {
		end := len(text)
		if i+1 < len(boundaries) {
			end = boundaries[i+1].pos
		}
		if b.pos > end {
			continue
		}
		sectionText := strings.TrimSpace(text[b.pos:end])
		if b.name == "" || sectionText == "" {
			continue
		}
		sectionText = s.stripTitle(sectionText, b.name)
		if existing, ok := byName[b.name]; ok {
			byName[b.name] = existing + "\n\n" + sectionText
		} else {
			byName[b.name] = sectionText
			ordered = append(ordered, b.name)
		}
	}

	ordered, byName = s.splitCertificationsFromEducation(ordered, byName)

	sections := make(types.SectionList, 0, len(ordered))
	for i, name := range ordered {
		sections = append(sections, types.Section{Name: name, Text: byName[name], Order: i})
	}
	return sections
}

// identifyBoundaries 逐行扫描,返回(章节名,文本偏移)对
func (s *SectionSegmenter) identifyBoundaries(text string) []boundary {
	lines := strings.Split(text, "\n")

	var boundaries []boundary
	headerFound := false
	// 分隔线已用下一行认领标题时置位,避免同一标题产生两个边界
	skipNextTitle := false

	claimHeader := func(lineStart int) {
		if !headerFound && lineStart < headerClaimWindow {
			if len(boundaries) == 0 || boundaries[0].name != types.SectionHeader {
				boundaries = append([]boundary{{types.SectionHeader, 0}}, boundaries...)
				headerFound = true
			}
		}
	}

	pos := 0
	for i, line := range lines {
		lineStart := pos
		pos += len(line) + 1

		clean := strings.TrimSpace(line)
		if len(clean) < 2 {
			continue
		}

		if skipNextTitle {
			skipNextTitle = false
			continue
		}

		if isSeparatorLine(clean) && i+1 < len(lines) {
			if name, ok := identifySectionTitle(lines[i+1]); ok {
				claimHeader(lineStart)
				boundaries = append(boundaries, boundary{name, lineStart})
				skipNextTitle = true
				continue
			}
		}

		// 全大写精确标题优先于同义词表
		name, ok := matchUppercaseTitle(clean)
		if !ok {
			name, ok = identifySectionTitle(clean)
		}
		if ok {
			claimHeader(lineStart)
			boundaries = append(boundaries, boundary{name, lineStart})
		}
	}

	if len(boundaries) == 0 {
		boundaries = s.fallbackBoundaries(lines)
	}
	return boundaries
}

// fallbackBoundaries 标题扫描全部落空时的关键词兜底
// 每个章节只认领一次,一行只能认领一个章节;全无命中时返回空让上层落到unknown
func (s *SectionSegmenter) fallbackBoundaries(lines []string) []boundary {
	var found []boundary
	claimed := map[types.SectionName]bool{}

	pos := 0
	for _, line := range lines {
		clean := strings.ToLower(strings.TrimSpace(line))
		for _, fk := range fallbackKeywords {
			if claimed[fk.name] {
				continue
			}
			if fk.pattern.MatchString(clean) {
				found = append(found, boundary{fk.name, pos})
				claimed[fk.name] = true
				break
			}
		}
		pos += len(line) + 1
	}

	if len(found) == 0 {
		return nil
	}
	return append([]boundary{{types.SectionHeader, 0}}, found...)
}

func isSeparatorLine(clean string) bool {
	for _, re := range sectionSeparators {
		if re.MatchString(clean) {
			return true
		}
	}
	return false
}

func matchUppercaseTitle(clean string) (types.SectionName, bool) {
	for _, ut := range uppercaseTitles {
		if ut.pattern.MatchString(clean) {
			return ut.name, true
		}
	}
	return "", false
}

// identifySectionTitle 判断一行是否章节标题
// 先剔除装饰字符按同义词表匹配,再对短的全大写/首字母大写行按关键词组匹配
func identifySectionTitle(line string) (types.SectionName, bool) {
	stripped := strings.TrimSpace(titleDecorationRe.ReplaceAllString(strings.TrimSpace(line), ""))
	lowered := strings.ToLower(stripped)

	for _, entry := range sectionSynonyms {
		for _, re := range entry.patterns {
			if re.MatchString(lowered) {
				return entry.name, true
			}
		}
	}

	if (isUpperLine(stripped) || isTitleLine(stripped)) && len(stripped) < 30 {
		for _, kw := range styledTitleKeywords {
			if !kw.pattern.MatchString(line) {
				continue
			}
			if kw.exclude != nil && kw.exclude.MatchString(line) {
				continue
			}
			return kw.name, true
		}
	}

	return "", false
}

// stripTitle 去掉章节开头的标题行
// 第一行是本章节标题则去一行;第一行是分隔线、第二行是标题则去两行
func (s *SectionSegmenter) stripTitle(sectionText string, name types.SectionName) string {
	lines := strings.Split(sectionText, "\n")

	if len(lines) > 0 {
		if n, ok := identifySectionTitle(lines[0]); ok && n == name {
			return strings.TrimSpace(strings.Join(lines[1:], "\n"))
		}
	}
	if len(lines) > 1 {
		if n, ok := identifySectionTitle(lines[1]); ok && n == name {
			return strings.TrimSpace(strings.Join(lines[2:], "\n"))
		}
	}
	return sectionText
}

// splitCertificationsFromEducation 教育章节内混入证书内容且不存在证书章节时,
// 在第一个证书关键词处切开,后半段移入certifications
func (s *SectionSegmenter) splitCertificationsFromEducation(
	ordered []types.SectionName, byName map[types.SectionName]string,
) ([]types.SectionName, map[types.SectionName]string) {
	eduText, hasEdu := byName[types.SectionEducation]
	if !hasEdu {
		return ordered, byName
	}
	if _, hasCerts := byName[types.SectionCertifications]; hasCerts {
		return ordered, byName
	}
	loc := certInEducationRe.FindStringIndex(eduText)
	if loc == nil {
		return ordered, byName
	}

	byName[types.SectionEducation] = strings.TrimSpace(eduText[:loc[0]])
	byName[types.SectionCertifications] = strings.TrimSpace(eduText[loc[0]:])

	// certifications插到education之后
	out := make([]types.SectionName, 0, len(ordered)+1)
	for _, n := range ordered {
		out = append(out, n)
		if n == types.SectionEducation {
			out = append(out, types.SectionCertifications)
		}
	}
	return out, byName
}

// isUpperLine 至少含一个有大小写的字符且全部为大写
func isUpperLine(s string) bool {
	hasCased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasCased = true
		}
	}
	return hasCased
}

// isTitleLine 每个连续字母串以大写开头、后续皆小写
func isTitleLine(s string) bool {
	hasCased := false
	prevCased := false
	for _, r := range s {
		switch {
		case unicode.IsUpper(r) || unicode.IsTitle(r):
			if prevCased {
				return false
			}
			prevCased = true
			hasCased = true
		case unicode.IsLower(r):
			if !prevCased {
				return false
			}
			prevCased = true
			hasCased = true
		default:
			prevCased = false
		}
	}
	return hasCased
}
