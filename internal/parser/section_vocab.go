package parser

import (
	"regexp"

	"resume-parser-go/internal/types"
)

// sectionSynonyms 章节标题同义词表,整行锚定、大小写不敏感
// 切片顺序即匹配优先级:header排最前,所以摘要类标题会先被header认领
var sectionSynonyms = []struct {
	name     types.SectionName
	patterns []*regexp.Regexp
}{
	{types.SectionHeader, []*regexp.Regexp{
		regexp.MustCompile(`(?i)^\s*(?:name|personal\s+information|contact(?:\s+information)?)\s*$`),
		regexp.MustCompile(`(?i)^\s*(?:profile|summary|professional\s+summary|executive\s+summary|career\s+summary)\s*$`),
	}},
	{types.SectionProfile, []*regexp.Regexp{
		regexp.MustCompile(`(?i)^\s*(?:profile|summary|about\s+me|professional\s+summary|executive\s+summary|career\s+summary)\s*$`),
		regexp.MustCompile(`(?i)^\s*(?:career\s+objective|objective|career\s+goal|professional\s+profile)\s*$`),
	}},
	{types.SectionExperience, []*regexp.Regexp{
		regexp.MustCompile(`(?i)^\s*(?:experience|work\s+experience|professional\s+experience|employment(?:\s+history)?|work\s+history)\s*$`),
		regexp.MustCompile(`(?i)^\s*(?:career(?:\s+history)?|professional\s+background|relevant\s+experience|professional\s+history)\s*$`),
		regexp.MustCompile(`(?i)^\s*(?:internship|internships|intern\s+experience)\s*$`),
	}},
	{types.SectionEducation, []*regexp.Regexp{
		regexp.MustCompile(`(?i)^\s*(?:education(?:al)?(?:\s+background|(?:\s+and\s+training)?)?|academic(?:s|(?:\s+background)?))\s*$`),
		regexp.MustCompile(`(?i)^\s*(?:qualifications|educational\s+qualifications|schooling)\s*$`),
		regexp.MustCompile(`(?i)^\s*(?:degrees?|academic\s+degrees?)\s*$`),
	}},
	{types.SectionSkills, []*regexp.Regexp{
		regexp.MustCompile(`(?i)^\s*(?:(?:technical\s+)?skills|(?:core\s+)?competenc(?:y|ies)|areas\s+of\s+expertise|expertise)\s*$`),
		regexp.MustCompile(`(?i)^\s*(?:technical|languages|computer|professional|specialized|specific|special)\s+skills\s*$`),
		regexp.MustCompile(`(?i)^\s*(?:skill\s+set|skill\s+summary|technical\s+expertise|technical\s+proficiencies)\s*$`),
		regexp.MustCompile(`(?i)^\s*(?:technologies|tools|software|programming\s+languages|languages|frameworks|platforms)\s*$`),
	}},
	{types.SectionCertifications, []*regexp.Regexp{
		regexp.MustCompile(`(?i)^\s*(?:certifications?|professional\s+certifications?|accreditations?|credentials?)\s*$`),
		regexp.MustCompile(`(?i)^\s*(?:licenses?|professional\s+licenses?|technical\s+certifications?)\s*$`),
	}},
	{types.SectionProjects, []*regexp.Regexp{
		regexp.MustCompile(`(?i)^\s*(?:projects?|personal\s+projects?|academic\s+projects?|key\s+projects?)\s*$`),
		regexp.MustCompile(`(?i)^\s*(?:portfolio|work\s+samples|relevant\s+projects|professional\s+projects?)\s*$`),
	}},
	{types.SectionPublications, []*regexp.Regexp{
		regexp.MustCompile(`(?i)^\s*(?:publications?|research(?:\s+publications?)?|papers|articles|conference\s+(?:papers|presentations))\s*$`),
		regexp.MustCompile(`(?i)^\s*(?:journals?|published\s+works?|scholarly\s+works?|academic\s+(?:publications?|papers))\s*$`),
	}},
	{types.SectionAwards, []*regexp.Regexp{
		regexp.MustCompile(`(?i)^\s*(?:awards?|honors?|recognitions?|achievements?|accomplishments?)\s*$`),
		regexp.MustCompile(`(?i)^\s*(?:prizes?|scholarships?|fellowships?|grants?|academic\s+honors?)\s*$`),
	}},
	{types.SectionLanguages, []*regexp.Regexp{
		regexp.MustCompile(`(?i)^\s*(?:languages?|language\s+skills?|language\s+proficiency|linguistic\s+proficiency)\s*$`),
		regexp.MustCompile(`(?i)^\s*(?:foreign\s+languages?|spoken\s+languages?|language\s+fluency)\s*$`),
	}},
	{types.SectionInterests, []*regexp.Regexp{
		regexp.MustCompile(`(?i)^\s*(?:interests?|hobbies?|activities|personal\s+interests?|other\s+interests?)\s*$`),
		regexp.MustCompile(`(?i)^\s*(?:extracurricular\s+activities|personal\s+activities|leisure\s+activities)\s*$`),
	}},
	{types.SectionReferences, []*regexp.Regexp{
		regexp.MustCompile(`(?i)^\s*(?:references?|professional\s+references?|character\s+references?)\s*$`),
		regexp.MustCompile(`(?i)^\s*(?:recommendations?|endorsements?|referees?)\s*$`),
	}},
	{types.SectionVolunteer, []*regexp.Regexp{
		regexp.MustCompile(`(?i)^\s*(?:volunteer(?:\s+experience)?|community\s+service|community\s+involvement)\s*$`),
		regexp.MustCompile(`(?i)^\s*(?:social\s+work|civic\s+activities|philanthropy|voluntary\s+work)\s*$`),
	}},
}

// sectionSeparators 视觉分隔线,如成行的横线、星号,或被横线包住的标题
var sectionSeparators = []*regexp.Regexp{
	regexp.MustCompile(`^[\s\-_=]{3,}$`),
	regexp.MustCompile(`^[\*\+\#]{3,}$`),
	regexp.MustCompile(`^[\-\=]{2,}\s*[\w\s]+\s*[\-\=]{2,}$`),
}

// uppercaseTitles 全大写精确标题,大小写敏感,优先于同义词表
var uppercaseTitles = []struct {
	name    types.SectionName
	pattern *regexp.Regexp
}{
	{types.SectionExperience, regexp.MustCompile(`^\s*EXPERIENCE\s*$`)},
	{types.SectionEducation, regexp.MustCompile(`^\s*EDUCATION\s*$`)},
	{types.SectionSkills, regexp.MustCompile(`^\s*SKILLS\s*$`)},
	{types.SectionProjects, regexp.MustCompile(`^\s*PROJECTS\s*$`)},
	{types.SectionCertifications, regexp.MustCompile(`^\s*CERTIFICATIONS\s*$`)},
}

// styledTitleKeywords 短的全大写或首字母大写行的关键词组
// 只对原始大小写的行做大小写敏感匹配,正文行都是小写不会误中
var styledTitleKeywords = []struct {
	name    types.SectionName
	pattern *regexp.Regexp
	exclude *regexp.Regexp
}{
	{types.SectionExperience, regexp.MustCompile(`\b(EXPERIENCE|WORK|EMPLOYMENT|PROFESSIONAL)\b`), nil},
	{types.SectionEducation, regexp.MustCompile(`\b(EDUCATION|ACADEMIC|QUALIFICATION|DEGREE)\b`), nil},
	{types.SectionSkills, regexp.MustCompile(`\b(SKILL|COMPETENC|EXPERTISE|PROFICIENC)\b`), nil},
	{types.SectionCertifications, regexp.MustCompile(`\b(CERTIFICATE|CERTIFICATION|LICENSE|CREDENTIAL)\b`), nil},
	{types.SectionProjects, regexp.MustCompile(`\b(PROJECT|PORTFOLIO|CASE STUD)\b`), nil},
	{types.SectionLanguages, regexp.MustCompile(`\b(LANGUAGE)\b`), regexp.MustCompile(`\b(PROGRAMMING|COMPUTER)\b`)},
}

// fallbackKeywords 无边界时的逐行关键词兜底,每个章节最多认领一次
var fallbackKeywords = []struct {
	name    types.SectionName
	pattern *regexp.Regexp
}{
	{types.SectionEducation, regexp.MustCompile(`\b(degree|university|college|school|gpa|bachelor|master|phd|diploma)\b`)},
	{types.SectionExperience, regexp.MustCompile(`\b(experience|work|job|position|employer|company|responsibilities)\b`)},
	{types.SectionSkills, regexp.MustCompile(`\b(skills|proficient|expertise|competenc|abilities)\b`)},
	{types.SectionCertifications, regexp.MustCompile(`\b(certification|certified|license|accredit|credential)\b`)},
}

// titleDecorationRe 标题行里的装饰字符,识别前全部剔除
var titleDecorationRe = regexp.MustCompile(`[:\-_=*#•■□▪▫]`)
