package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Candidate 候选人主表
type Candidate struct {
	CandidateID     string          `gorm:"type:char(36);primaryKey"`
	PrimaryName     string          `gorm:"type:varchar(255)"`
	PrimaryPhone    string          `gorm:"type:varchar(50);uniqueIndex:idx_candidates_primary_phone_unique"`
	PrimaryEmail    string          `gorm:"type:varchar(255);uniqueIndex:idx_candidates_primary_email_unique"`
	BirthDate       *datatypes.Date `gorm:"type:date"`
	CurrentLocation string          `gorm:"type:varchar(255)"`
	ProfileSummary  string          `gorm:"type:text"`
	CreatedAt       time.Time       `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt       time.Time       `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (Candidate) TableName() string {
	return "candidates"
}

// ResumeSubmission 简历提交/快照表
type ResumeSubmission struct {
	SubmissionUUID      string    `gorm:"type:char(36);primaryKey"`
	CandidateID         *string   `gorm:"type:char(36);index:idx_rs_candidate_id"` // 可空，解析出联系方式后回填
	SubmissionTimestamp time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);index:idx_rs_submission_timestamp"`
	SourceChannel       string    `gorm:"type:varchar(100)"`
	OriginalFilename    string    `gorm:"type:varchar(255)"`
	OriginalFilePathOSS string    `gorm:"type:varchar(1024)"`
	ParsedTextPathOSS   string    `gorm:"type:varchar(1024)"`
	ParsedRecordPathOSS string    `gorm:"type:varchar(1024)"`
	RawFileMD5          string    `gorm:"type:char(32);index:idx_rs_raw_file_md5"`
	RawTextMD5          string    `gorm:"type:char(32);index:idx_rs_raw_text_md5"`
	ProcessingStatus    string    `gorm:"type:varchar(50);default:'UPLOADED';index:idx_rs_processing_status"`
	ParserVersion       string    `gorm:"type:varchar(50)"`
	ErrorDetail         string    `gorm:"type:text"`
	CreatedAt           time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt           time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`

	Candidate *Candidate `gorm:"foreignKey:CandidateID;references:CandidateID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

func (ResumeSubmission) TableName() string {
	return "resume_submissions"
}

// ParsedResume 结构化解析结果表，与提交记录一一对应
type ParsedResume struct {
	SubmissionUUID     string         `gorm:"type:char(36);primaryKey"`
	ContactInfoJSON    datatypes.JSON `gorm:"type:json"`
	EducationJSON      datatypes.JSON `gorm:"type:json"`
	ExperienceJSON     datatypes.JSON `gorm:"type:json"`
	ProjectsJSON       datatypes.JSON `gorm:"type:json"`
	CertificationsJSON datatypes.JSON `gorm:"type:json"`
	SkillsJSON         datatypes.JSON `gorm:"type:json"`
	SectionsJSON       datatypes.JSON `gorm:"type:json"` // 分段原文，便于追溯字段来源
	SectionCount       int            `gorm:"default:0"`
	ParserVersion      string         `gorm:"type:varchar(50);index:idx_pr_parser_version"`
	CreatedAt          time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt          time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`

	ResumeSubmission *ResumeSubmission `gorm:"foreignKey:SubmissionUUID;references:SubmissionUUID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (ParsedResume) TableName() string {
	return "parsed_resumes"
}

// StringToJSON Helper function to convert string to datatypes.JSON
func StringToJSON(s string) datatypes.JSON {
	return datatypes.JSON(s)
}

// ToJSON Helper function to marshal any value to datatypes.JSON
func ToJSON(v interface{}) (datatypes.JSON, error) {
	bytes, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes, nil
}

// StringMapToJSON Helper function to convert map[string]string to datatypes.JSON
func StringMapToJSON(m map[string]string) (datatypes.JSON, error) {
	bytes, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return bytes, nil
}
