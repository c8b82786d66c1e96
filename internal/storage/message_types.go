package storage

import "time"

// ResumeUploadMessage 简历上传消息。
// 上传接口批量落库后发往上传队列，由文本提取消费者处理。
type ResumeUploadMessage struct {
	// 与数据库表字段一致的主要字段
	SubmissionUUID      string    `json:"submission_uuid"`          // 提交UUID，主键
	SubmissionTimestamp time.Time `json:"submission_timestamp"`     // 提交时间戳
	SourceChannel       string    `json:"source_channel,omitempty"` // 来源渠道
	OriginalFilename    string    `json:"original_filename"`        // 原始文件名
	OriginalFilePathOSS string    `json:"original_file_path_oss"`   // MinIO中的对象路径
	RawFileMD5          string    `json:"raw_file_md5,omitempty"`   // 原始文件的MD5，用于失败时回滚去重集合
}

// ResumeParsingMessage 简历解析消息。
// 文本提取完成后经outbox发出，由结构化解析消费者处理。
type ResumeParsingMessage struct {
	SubmissionUUID    string `json:"submission_uuid"`                // 提交UUID
	ParsedTextPathOSS string `json:"parsed_text_path_oss,omitempty"` // 解析文本在MinIO中的路径
	RawTextMD5        string `json:"raw_text_md5,omitempty"`         // 提取文本的MD5
	ProcessingTime    int64  `json:"processing_time,omitempty"`      // 文本提取完成的Unix时间戳

	// 文本内容 (当不想通过存储服务传递时使用)
	ParsedText string `json:"parsed_text,omitempty"` // 提取后的纯文本内容

	Error string `json:"error,omitempty"` // 错误信息
}

// ResumeParsedEvent 解析完成事件。
// 发往事件交换机供下游系统订阅，本服务不消费。
type ResumeParsedEvent struct {
	SubmissionUUID      string `json:"submission_uuid"`                  // 提交UUID
	CandidateID         string `json:"candidate_id,omitempty"`           // 关联的候选人ID
	ParserVersion       string `json:"parser_version"`                   // 解析器版本
	SectionCount        int    `json:"section_count"`                    // 识别出的简历区块数
	ParsedRecordPathOSS string `json:"parsed_record_path_oss,omitempty"` // 结构化结果在MinIO中的路径
	ParsedAt            int64  `json:"parsed_at"`                        // 解析完成的Unix时间戳
}
