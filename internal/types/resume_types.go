package types

import "sort"

// SectionName 表示简历章节的规范名称
type SectionName string

const (
	// SectionHeader 文档头部（姓名、联系方式等正文前内容）
	SectionHeader SectionName = "header"
	// SectionProfile 个人简介/摘要章节
	SectionProfile SectionName = "profile"
	// SectionExperience 工作经历章节
	SectionExperience SectionName = "experience"
	// SectionEducation 教育经历章节
	SectionEducation SectionName = "education"
	// SectionSkills 技能章节
	SectionSkills SectionName = "skills"
	// SectionCertifications 证书章节
	SectionCertifications SectionName = "certifications"
	// SectionProjects 项目经历章节
	SectionProjects SectionName = "projects"
	// SectionPublications 出版物章节
	SectionPublications SectionName = "publications"
	// SectionAwards 获奖经历章节
	SectionAwards SectionName = "awards"
	// SectionLanguages 语言能力章节
	SectionLanguages SectionName = "languages"
	// SectionInterests 兴趣爱好章节
	SectionInterests SectionName = "interests"
	// SectionReferences 推荐人章节
	SectionReferences SectionName = "references"
	// SectionVolunteer 志愿服务章节
	SectionVolunteer SectionName = "volunteer"
	// SectionUnknown 未分类内容章节（兜底，保证全文覆盖）
	SectionUnknown SectionName = "unknown"
)

// AllSectionNames 返回全部规范章节名，按固定顺序
func AllSectionNames() []SectionName {
	return []SectionName{
		SectionHeader, SectionProfile, SectionExperience, SectionEducation,
		SectionSkills, SectionCertifications, SectionProjects,
		SectionPublications, SectionAwards, SectionLanguages,
		SectionInterests, SectionReferences, SectionVolunteer, SectionUnknown,
	}
}

// Section 简历中一个已命名的连续文本区段
type Section struct {
	Name  SectionName `json:"name"`  // 规范章节名
	Text  string      `json:"text"`  // 去掉标题行后的章节正文
	Order int         `json:"order"` // 在文档中的出现顺序，从0开始
}

// SectionList 按文档顺序排列的章节集合
type SectionList []Section

// Get 返回指定章节的正文，不存在时返回空串和false
func (l SectionList) Get(name SectionName) (string, bool) {
	for _, s := range l {
		if s.Name == name {
			return s.Text, true
		}
	}
	return "", false
}

// Names 按出现顺序返回章节名列表
func (l SectionList) Names() []string {
	names := make([]string, 0, len(l))
	for _, s := range l {
		names = append(names, string(s.Name))
	}
	return names
}

// EducationEntry 一条教育经历
type EducationEntry struct {
	Degree        string   `json:"degree,omitempty"`         // 学位（可能含 "in <专业>" 后缀）
	FieldOfStudy  string   `json:"field_of_study,omitempty"` // 专业
	Concentration string   `json:"concentration,omitempty"`  // 方向/细分领域
	Institution   string   `json:"institution,omitempty"`    // 院校
	Dates         []string `json:"dates"`                    // 日期Token，保持出现顺序
	Score         string   `json:"score,omitempty"`          // GPA/荣誉/百分比成绩
	RawText       string   `json:"raw_text"`                 // 原始条目文本
}

// ExperienceEntry 一条工作经历
type ExperienceEntry struct {
	JobTitle         string   `json:"job_title,omitempty"`
	Company          string   `json:"company,omitempty"`
	DateRange        string   `json:"date_range,omitempty"`
	Responsibilities []string `json:"responsibilities"` // 职责描述，保持出现顺序
	RawText          string   `json:"raw_text"`
}

// ProjectEntry 一条项目经历
type ProjectEntry struct {
	Name         string   `json:"name,omitempty"`
	DateRange    string   `json:"date_range,omitempty"`
	Technologies []string `json:"technologies"`
	Description  []string `json:"description"`
	RawText      string   `json:"raw_text"`
}

// CertificationEntry 一条证书记录
type CertificationEntry struct {
	Name         string `json:"name,omitempty"`
	Issuer       string `json:"issuer,omitempty"`
	Date         string `json:"date,omitempty"`
	CredentialID string `json:"credential_id,omitempty"`
	RawText      string `json:"raw_text"`
}

// SkillSet 分类后的技能集合。所有列表去重且排序。
type SkillSet struct {
	// All 全部技能的去重排序并集
	All []string `json:"all"`
	// Technical 技术技能，按类别分桶；只包含命中≥1项的类别
	Technical map[string][]string `json:"technical"`
	// SoftSkills 软技能
	SoftSkills []string `json:"soft_skills"`
	// Tools 工具/软件
	Tools []string `json:"tools_software"`
}

// NewSkillSet 返回全空但容器齐全的SkillSet
func NewSkillSet() SkillSet {
	return SkillSet{
		All:        []string{},
		Technical:  map[string][]string{},
		SoftSkills: []string{},
		Tools:      []string{},
	}
}

// IsEmpty 判断技能集是否完全为空
func (s SkillSet) IsEmpty() bool {
	return len(s.All) == 0 && len(s.Technical) == 0 &&
		len(s.SoftSkills) == 0 && len(s.Tools) == 0
}

// Merge 合并另一个SkillSet：并集去重后排序，类别桶逐类合并
func (s *SkillSet) Merge(other SkillSet) {
	s.All = MergeSorted(s.All, other.All)
	s.SoftSkills = MergeSorted(s.SoftSkills, other.SoftSkills)
	s.Tools = MergeSorted(s.Tools, other.Tools)
	if s.Technical == nil {
		s.Technical = map[string][]string{}
	}
	for cat, items := range other.Technical {
		if len(items) == 0 {
			continue
		}
		s.Technical[cat] = MergeSorted(s.Technical[cat], items)
	}
}

// MergeSorted 返回两个列表去重排序后的并集。
// 去重时忽略大小写和空白差异，保留先出现的写法。
func MergeSorted(a, b []string) []string {
	seen := make(map[string]string, len(a)+len(b))
	order := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, item := range list {
			key := foldKey(item)
			if key == "" {
				continue
			}
			if _, ok := seen[key]; !ok {
				seen[key] = item
				order = append(order, item)
			}
		}
	}
	sort.Strings(order)
	return order
}

func foldKey(s string) string {
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c == ' ' || c == '\t' {
			continue
		}
		b = append(b, c)
	}
	return string(b)
}

// ContactInfo 联系方式，由单遍正则扫描得到
type ContactInfo struct {
	Emails []string `json:"emails"`
	Phones []string `json:"phones"`
	URLs   []string `json:"urls"`
}

// NewContactInfo 返回容器齐全的空ContactInfo
func NewContactInfo() ContactInfo {
	return ContactInfo{Emails: []string{}, Phones: []string{}, URLs: []string{}}
}

// ResumeRecord 一次解析的完整结构化结果。
// 所有容器字段永远非nil，序列化时不会缺省，空输入也返回完整类型。
type ResumeRecord struct {
	// Sections 按出现顺序排列的章节名
	Sections []string `json:"sections"`
	// Contact 联系方式
	Contact ContactInfo `json:"contact_info"`
	// Education 教育经历条目
	Education []EducationEntry `json:"education"`
	// Experience 工作经历条目
	Experience []ExperienceEntry `json:"experience"`
	// Skills 技能集合
	Skills SkillSet `json:"skills"`
	// Projects 项目条目
	Projects []ProjectEntry `json:"projects"`
	// Certifications 证书条目
	Certifications []CertificationEntry `json:"certifications"`
}

// NewResumeRecord 返回全空但容器齐全的ResumeRecord
func NewResumeRecord() *ResumeRecord {
	return &ResumeRecord{
		Sections:       []string{},
		Contact:        NewContactInfo(),
		Education:      []EducationEntry{},
		Experience:     []ExperienceEntry{},
		Skills:         NewSkillSet(),
		Projects:       []ProjectEntry{},
		Certifications: []CertificationEntry{},
	}
}
