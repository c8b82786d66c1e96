package parser

import (
	"regexp"
	"strings"

	"resume-parser-go/internal/types"
)

var (
	// issuerVocabRe 常见发证机构词表
	issuerVocabRe = regexp.MustCompile(`(?i)(?:^|\s)(Microsoft|AWS|Amazon|Google|Oracle|IBM|Cisco|CompTIA|PMI|Salesforce|Adobe|Axelos|SAP|HubSpot|Coursera|Udemy|edX|LinkedIn Learning|Pluralsight|FreeCodeCamp|DataCamp|Kaggle|Scrum Alliance|ISC2|EC-Council|ISACA|Certified|University|Institute|Academy|College|GeeksforGeeks)(?:\s|$|,|\.)`)
	// certSepRe 证书行里名称和机构之间的常见分隔符
	certSepRe    = regexp.MustCompile(`[,|–-]`)
	credentialRe = regexp.MustCompile(`(?i)(?:^|\s)(ID|No|Number|Credential ID|Certificate ID|Certification Number|#)[:\s]+([A-Za-z0-9\-]+)(?:\s|$|,|\.)`)
)

var certDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:^|\s)(\d{4})(?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]* \d{4}(?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(January|February|March|April|May|June|July|August|September|October|November|December),? \d{4}(?:\s|$|,|\.)`),
	regexp.MustCompile(`(?i)(?:^|\s)(\d{1,2}/\d{1,2}/\d{2,4}|\d{1,2}-\d{1,2}-\d{2,4})(?:\s|$|,|\.)`),
}

// CertificationsExtractor 证书条目提取器,条目必须有名称才会输出
type CertificationsExtractor struct {
	norm *TextNormalizer
}

// NewCertificationsExtractor 创建证书提取器
func NewCertificationsExtractor() *CertificationsExtractor {
	return &CertificationsExtractor{norm: NewTextNormalizer()}
}

// Extract 从证书章节文本提取条目
// 先查覆盖表,命中的格式直接按表产出,不再走通用规则
func (c *CertificationsExtractor) Extract(text string) []types.CertificationEntry {
	if entries, ok := applyCertificationOverrides(text, c.norm.Flatten); ok {
		return entries
	}

	entries := []types.CertificationEntry{}
	for _, span := range c.splitEntries(text) {
		if c.norm.Flatten(span) == "" {
			continue
		}
		name := c.extractName(span)
		if name == "" {
			continue
		}
		entries = append(entries, types.CertificationEntry{
			Name:         name,
			Issuer:       c.extractIssuer(span),
			Date:         c.extractDate(span),
			CredentialID: c.extractCredentialID(span),
			RawText:      c.norm.Flatten(span),
		})
	}
	return entries
}

// splitEntries 证书一般一行一条,空行切不开就按行切
func (c *CertificationsExtractor) splitEntries(text string) []string {
	if spans := splitByBlankLines(text); len(spans) > 1 {
		return spans
	}
	return splitByLines(text)
}

func (c *CertificationsExtractor) extractName(span string) string {
	segments := certSepRe.Split(span, 2)
	return strings.TrimSpace(segments[0])
}

// extractIssuer 从机构词表命中处向后取到最近的分隔符
// 取出的片段过长说明误匹配了描述文本,退回只给关键词本身
func (c *CertificationsExtractor) extractIssuer(span string) string {
	if m := issuerVocabRe.FindStringSubmatchIndex(span); m != nil {
		start := m[0]
		end := len(span)
		for _, marker := range []string{",", ".", "\n"} {
			if i := strings.Index(span[start:], marker); i >= 0 && start+i < end {
				end = start + i
			}
		}
		issuer := strings.TrimSpace(span[start:end])
		if len(strings.Fields(issuer)) > 5 {
			return span[m[2]:m[3]]
		}
		return issuer
	}

	segments := certSepRe.Split(span, 2)
	if len(segments) > 1 {
		return strings.TrimSpace(segments[1])
	}
	return ""
}

func (c *CertificationsExtractor) extractDate(span string) string {
	for _, re := range certDatePatterns {
		if m := re.FindString(span); m != "" {
			return strings.TrimSpace(m)
		}
	}
	return ""
}

func (c *CertificationsExtractor) extractCredentialID(span string) string {
	if m := credentialRe.FindStringSubmatch(span); m != nil {
		return strings.TrimSpace(m[2])
	}
	return ""
}
