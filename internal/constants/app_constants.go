package constants

import "time"

const (
	// Application-level constants
	DefaultParserVer = "1.0" // 解析器版本号，随提取规则变更递增

	// Storage-related constants
	ParsedRecordCacheDuration     = 24 * time.Hour
	SubmissionStatusCacheDuration = 10 * time.Minute
)

// 简历处理状态流转
const (
	StatusUploaded         = "UPLOADED"
	StatusQueuedForExtract = "QUEUED_FOR_EXTRACTION"
	StatusTextExtracted    = "TEXT_EXTRACTED"
	StatusQueuedForParse   = "QUEUED_FOR_PARSING"
	StatusParsed           = "PARSED"
	StatusExtractFailed    = "EXTRACTION_FAILED"
	StatusParseFailed      = "PARSE_FAILED"
	// StatusDuplicateSkipped 提取文本与已有简历完全相同，跳过后续解析
	StatusDuplicateSkipped = "DUPLICATE_CONTENT_SKIPPED"
)

// 支持的简历文件类型（扩展名，小写，不带点）
const (
	FileTypePDF  = "pdf"
	FileTypeDocx = "docx"
	FileTypeTxt  = "txt"
	FileTypeJPG  = "jpg"
	FileTypeJPEG = "jpeg"
	FileTypePNG  = "png"
)

// AllowedStatusesForExtract 允许进入文本提取的状态集合。
// 消费端以此做幂等检查，状态不在集合内的消息视为重复投递，直接确认。
var AllowedStatusesForExtract = map[string]struct{}{
	StatusUploaded:         {},
	StatusQueuedForExtract: {},
	StatusExtractFailed:    {}, // 允许失败后重试
}

// AllowedStatusesForParse 允许进入结构化解析的状态集合
var AllowedStatusesForParse = map[string]struct{}{
	StatusTextExtracted:  {},
	StatusQueuedForParse: {},
	StatusParseFailed:    {},
}

// CacheableStatuses 状态查询接口允许写入缓存的状态。
// 只缓存不会再流转的终态，中间状态缓存后会变成脏数据。
var CacheableStatuses = map[string]struct{}{
	StatusParsed:           {},
	StatusDuplicateSkipped: {},
}

// IsStatusAllowed 判断当前状态是否在允许集合内
func IsStatusAllowed(status string, allowed map[string]struct{}) bool {
	_, ok := allowed[status]
	return ok
}
