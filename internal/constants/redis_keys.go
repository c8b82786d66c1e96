package constants

// Redis Key 前缀和格式常量
// 使用统一的命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// ResumeModulePrefix 简历模块
	ResumeModulePrefix = "resume"
	// FileModulePrefix 文件模块
	FileModulePrefix = "file"
	// SearchModulePrefix 搜索模块
	SearchModulePrefix = "search"

	// EntityRecord 解析结果实体
	EntityRecord = "record"
	// EntityStatus 状态实体
	EntityStatus = "status"
	// EntityDedupSet 去重集合实体
	EntityDedupSet = "dedup_set"
	// EntityTextDedupSet 提取文本去重集合实体
	EntityTextDedupSet = "text_dedup_set"
	// EntityMD5ToUUID MD5到UUID的映射实体
	EntityMD5ToUUID = "md5_to_uuid"

	// KeyParsedRecord 解析结果缓存 (STRING, JSON)
	// 格式: app:resume:record:{submissionUUID}
	KeyParsedRecord = AppPrefix + ":" + ResumeModulePrefix + ":" + EntityRecord + ":%s"

	// KeySubmissionStatus 提交状态缓存 (STRING)
	// 格式: app:resume:status:{submissionUUID}
	KeySubmissionStatus = AppPrefix + ":" + ResumeModulePrefix + ":" + EntityStatus + ":%s"

	// KeyFileMD5Set 文件MD5集合，用于快速去重 (SET)
	// 格式: app:file:dedup_set
	KeyFileMD5Set = AppPrefix + ":" + FileModulePrefix + ":" + EntityDedupSet

	// KeyTextMD5Set 提取文本MD5集合，内容级去重 (SET)
	// 格式: app:resume:text_dedup_set
	KeyTextMD5Set = AppPrefix + ":" + ResumeModulePrefix + ":" + EntityTextDedupSet

	// KeyFileMD5ToSubmissionUUID MD5到SubmissionUUID的映射 (STRING)
	// 格式: app:file:md5_to_uuid:{md5}
	KeyFileMD5ToSubmissionUUID = AppPrefix + ":" + FileModulePrefix + ":" + EntityMD5ToUUID + ":%s"

	// KeyReindexLock 重建搜索索引任务的分布式锁 (STRING)
	// 格式: app:search:reindex_lock
	KeyReindexLock = AppPrefix + ":" + SearchModulePrefix + ":reindex_lock"
)
