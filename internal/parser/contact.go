package parser

import (
	"regexp"

	"github.com/nyaruka/phonenumbers"

	"resume-parser-go/internal/types"
)

// ContactExtractor 从原始文本中提取邮箱、电话和链接
// 电话候选先用正则粗筛,再交给phonenumbers做可行性过滤,避免把日期、编号当成号码
type ContactExtractor struct {
	defaultRegion string
}

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	phoneRes = []*regexp.Regexp{
		regexp.MustCompile(`\+?\d{1,3}[-.\s]?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
		regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
		regexp.MustCompile(`\d{3}[-.\s]?\d{3}[-.\s]?\d{4}`),
		regexp.MustCompile(`\d{5}[-.\s]?\d{6}`),
	}

	urlRes = []*regexp.Regexp{
		regexp.MustCompile(`https?://(?:[-\w.]|(?:%[\da-fA-F]{2}))+`),
		regexp.MustCompile(`www\.[a-zA-Z0-9][-a-zA-Z0-9]*\.[a-zA-Z0-9]+(?:[-a-zA-Z0-9/_\.]+)?`),
		regexp.MustCompile(`(?:linkedin\.com|github\.com|bitbucket\.org|twitter\.com)[-a-zA-Z0-9/_\.]+`),
		regexp.MustCompile(`(?:[a-zA-Z0-9][-a-zA-Z0-9]*\.)+(?:com|org|net|edu|io|gov|mil|co|info)(?:[-a-zA-Z0-9/_\.]+)?`),
	}
)

// NewContactExtractor 创建联系方式提取器,默认按美式区号解析电话
func NewContactExtractor() *ContactExtractor {
	return &ContactExtractor{defaultRegion: "US"}
}

// Extract 扫描原始文本(未经规整),返回去重后的联系方式
func (e *ContactExtractor) Extract(text string) types.ContactInfo {
	info := types.NewContactInfo()
	if text == "" {
		return info
	}
	info.Emails = dedupOrdered(emailRe.FindAllString(text, -1))
	info.Phones = e.extractPhones(text)
	info.URLs = e.extractURLs(text)
	return info
}

func (e *ContactExtractor) extractPhones(text string) []string {
	var candidates []string
	for _, re := range phoneRes {
		candidates = append(candidates, re.FindAllString(text, -1)...)
	}

	phones := []string{}
	for _, c := range dedupOrdered(candidates) {
		num, err := phonenumbers.Parse(c, e.defaultRegion)
		if err != nil {
			continue
		}
		// 长度可行即可,不要求号段真实存在,测试简历常用555等保留号段
		if phonenumbers.IsPossibleNumber(num) {
			phones = append(phones, c)
		}
	}
	return phones
}

func (e *ContactExtractor) extractURLs(text string) []string {
	var found []string
	for _, re := range urlRes {
		found = append(found, re.FindAllString(text, -1)...)
	}
	return dedupOrdered(found)
}

// dedupOrdered 去重并保留首次出现顺序
func dedupOrdered(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := []string{}
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
