package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/constants"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/processor"
	"resume-parser-go/internal/storage"
	"resume-parser-go/internal/storage/models"

	"github.com/gofrs/uuid/v5"
	"gorm.io/gorm"
)

// ErrUnsupportedFileType 上传了不在白名单内的文件类型
var ErrUnsupportedFileType = errors.New("不支持的文件类型")

// allowedUploadExts 允许上传的扩展名白名单，与提取器支持的格式保持一致
var allowedUploadExts = map[string]struct{}{
	"." + constants.FileTypePDF:  {},
	"." + constants.FileTypeDocx: {},
	"." + constants.FileTypeTxt:  {},
	"." + constants.FileTypeJPG:  {},
	"." + constants.FileTypeJPEG: {},
	"." + constants.FileTypePNG:  {},
}

// ResumeHandler 简历上传入口与管道消费者的协调器
type ResumeHandler struct {
	cfg     *config.Config
	storage *storage.Storage
	service processor.ResumeService
}

// NewResumeHandler 创建一个新的简历处理器
func NewResumeHandler(cfg *config.Config, storage *storage.Storage, service processor.ResumeService) *ResumeHandler {
	return &ResumeHandler{
		cfg:     cfg,
		storage: storage,
		service: service,
	}
}

// ResumeUploadResponse 简历上传响应
type ResumeUploadResponse struct {
	SubmissionUUID string `json:"submission_uuid"`
	Status         string `json:"status"`
}

// HandleResumeUpload 处理简历上传请求。
// 文件流式写入MinIO并同步计算MD5；重复文件直接返回已有提交的UUID；
// 新文件在一个事务里落库并写入outbox事件，由消息中继异步投递。
func (h *ResumeHandler) HandleResumeUpload(ctx context.Context, reader io.Reader, fileSize int64,
	filename string, sourceChannel string) (*ResumeUploadResponse, error) {

	// 1. 校验扩展名，不支持的格式在付出存储成本之前拒绝
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = "." + constants.FileTypePDF // 无扩展名按PDF处理
	}
	if _, ok := allowedUploadExts[ext]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, ext)
	}

	// 2. 生成UUIDv7，提交ID随时间单调递增
	uuidV7, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("生成UUIDv7失败: %w", err)
	}
	submissionUUID := uuidV7.String()

	// 3. 流式上传到MinIO，TeeReader边传边算MD5，大文件不落内存
	objectKey, fileMD5Hex, err := h.storage.MinIO.UploadResumeFileStreaming(ctx, submissionUUID, ext, reader, fileSize)
	if err != nil {
		return nil, fmt.Errorf("上传简历到MinIO失败: %w", err)
	}

	// 4. 文件MD5去重。命中时清理刚上传的对象，并把已有提交的UUID还给调用方，
	// 调用方可以直接用它轮询处理结果
	exists, existingUUID, dedupErr := h.storage.Redis.CheckAndSetFileMD5(ctx, fileMD5Hex, submissionUUID)
	if dedupErr != nil {
		// Redis不可用时放弃文件级去重继续处理，文本MD5去重是第二道防线
		logger.Warn().
			Err(dedupErr).
			Str("md5", fileMD5Hex).
			Msg("文件MD5去重检查失败，跳过文件级去重")
	} else if exists {
		logger.Info().
			Str("md5", fileMD5Hex).
			Str("filename", filename).
			Str("existing_uuid", existingUUID).
			Msg("检测到重复文件，跳过处理")
		if err := h.storage.MinIO.DeleteFile(ctx, objectKey); err != nil {
			logger.Warn().Err(err).Str("object_key", objectKey).Msg("清理重复上传的对象失败")
		}
		return &ResumeUploadResponse{
			SubmissionUUID: existingUUID,
			Status:         "DUPLICATE_FILE_SKIPPED",
		}, nil
	}

	// 5. 同一事务写入提交记录与outbox事件，投递由消息中继完成，
	// 避免"记录已落库但消息丢失"或反过来的不一致
	now := time.Now()
	message := storage.ResumeUploadMessage{
		SubmissionUUID:      submissionUUID,
		SubmissionTimestamp: now,
		SourceChannel:       sourceChannel,
		OriginalFilename:    filename,
		OriginalFilePathOSS: objectKey,
		RawFileMD5:          fileMD5Hex,
	}
	payload, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("序列化上传事件失败: %w", err)
	}

	err = h.storage.MySQL.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		submission := models.ResumeSubmission{
			SubmissionUUID:      submissionUUID,
			SubmissionTimestamp: now,
			SourceChannel:       sourceChannel,
			OriginalFilename:    filename,
			OriginalFilePathOSS: objectKey,
			RawFileMD5:          fileMD5Hex,
			ProcessingStatus:    constants.StatusUploaded,
		}
		if err := tx.Create(&submission).Error; err != nil {
			return fmt.Errorf("创建提交记录失败: %w", err)
		}

		outboxEntry := models.OutboxMessage{
			AggregateID:      submissionUUID,
			EventType:        "resume.uploaded",
			Payload:          string(payload),
			TargetExchange:   h.cfg.RabbitMQ.ResumeEventsExchange,
			TargetRoutingKey: h.cfg.RabbitMQ.UploadedRoutingKey,
		}
		if err := tx.Create(&outboxEntry).Error; err != nil {
			return fmt.Errorf("创建outbox记录失败: %w", err)
		}
		return nil
	})
	if err != nil {
		// 回滚Redis里的MD5占位，否则同一文件的重试请求会被误判为重复
		if rmErr := h.storage.Redis.RemoveRawFileMD5(ctx, fileMD5Hex); rmErr != nil {
			logger.Warn().Err(rmErr).Str("md5", fileMD5Hex).Msg("回滚文件MD5记录失败")
		}
		return nil, fmt.Errorf("写入提交记录失败: %w", err)
	}

	logger.Info().
		Str("submission_uuid", submissionUUID).
		Str("filename", filename).
		Str("source_channel", sourceChannel).
		Int64("file_size", fileSize).
		Msg("简历上传受理成功")

	return &ResumeUploadResponse{
		SubmissionUUID: submissionUUID,
		Status:         constants.StatusUploaded,
	}, nil
}

// StartResumeUploadConsumer 启动上传事件消费者，负责文本提取阶段。
// processTimeout 为单条消息的处理时限，0表示不限制。
func (h *ResumeHandler) StartResumeUploadConsumer(ctx context.Context, prefetchCount int, processTimeout time.Duration) error {
	logger.Info().
		Str("exchange", h.cfg.RabbitMQ.ResumeEventsExchange).
		Str("queue", h.cfg.RabbitMQ.RawResumeQueue).
		Str("routing_key", h.cfg.RabbitMQ.UploadedRoutingKey).
		Int("prefetch_count", prefetchCount).
		Dur("process_timeout", processTimeout).
		Msg("初始化上传消费者")

	// 1. 确保交换机和队列存在
	if err := h.storage.RabbitMQ.EnsureExchange(h.cfg.RabbitMQ.ResumeEventsExchange, "direct", true); err != nil {
		return fmt.Errorf("确保交换机存在失败: %w", err)
	}
	if err := h.storage.RabbitMQ.EnsureQueue(h.cfg.RabbitMQ.RawResumeQueue, true); err != nil {
		return fmt.Errorf("确保队列存在失败: %w", err)
	}
	if err := h.storage.RabbitMQ.BindQueue(
		h.cfg.RabbitMQ.RawResumeQueue,
		h.cfg.RabbitMQ.ResumeEventsExchange,
		h.cfg.RabbitMQ.UploadedRoutingKey,
	); err != nil {
		return fmt.Errorf("绑定队列失败: %w", err)
	}

	// 2. 启动消费者
	_, err := h.storage.RabbitMQ.StartConsumer(h.cfg.RabbitMQ.RawResumeQueue, prefetchCount, func(data []byte) bool {
		var message storage.ResumeUploadMessage
		if err := json.Unmarshal(data, &message); err != nil {
			// 无法解析的消息重新入队也不会成功，确认后丢弃
			logger.Error().Err(err).Msg("解析上传消息失败，丢弃消息")
			return true
		}
		if message.SubmissionUUID == "" {
			logger.Error().RawJSON("message", data).Msg("上传消息缺少submission_uuid，丢弃消息")
			return true
		}

		msgCtx, cancel := consumerContext(ctx, processTimeout)
		defer cancel()

		// 外部渠道可能绕过上传接口直接投递事件，这里兜底补建提交记录；
		// 记录已存在时ON DUPLICATE KEY为空操作
		submissions := []models.ResumeSubmission{{
			SubmissionUUID:      message.SubmissionUUID,
			SubmissionTimestamp: message.SubmissionTimestamp,
			SourceChannel:       message.SourceChannel,
			OriginalFilename:    message.OriginalFilename,
			OriginalFilePathOSS: message.OriginalFilePathOSS,
			RawFileMD5:          message.RawFileMD5,
			ProcessingStatus:    constants.StatusUploaded,
		}}
		if err := h.storage.MySQL.BatchInsertResumeSubmissions(msgCtx, submissions); err != nil {
			logger.Error().Err(err).Str("submission_uuid", message.SubmissionUUID).Msg("补建提交记录失败")
			return false
		}

		if err := h.service.ProcessUploadedResume(msgCtx, message); err != nil {
			logger.Error().Err(err).Str("submission_uuid", message.SubmissionUUID).Msg("处理上传简历失败")
			return false
		}
		return true
	})
	if err != nil {
		return fmt.Errorf("启动上传消费者失败: %w", err)
	}
	return nil
}

// StartResumeParseConsumer 启动解析任务消费者，负责结构化解析阶段
func (h *ResumeHandler) StartResumeParseConsumer(ctx context.Context, prefetchCount int, processTimeout time.Duration) error {
	logger.Info().
		Str("exchange", h.cfg.RabbitMQ.ProcessingEventsExchange).
		Str("queue", h.cfg.RabbitMQ.ParsingQueue).
		Str("routing_key", h.cfg.RabbitMQ.ExtractedRoutingKey).
		Int("prefetch_count", prefetchCount).
		Dur("process_timeout", processTimeout).
		Msg("初始化解析消费者")

	if err := h.storage.RabbitMQ.EnsureExchange(h.cfg.RabbitMQ.ProcessingEventsExchange, "direct", true); err != nil {
		return fmt.Errorf("确保交换机存在失败: %w", err)
	}
	if err := h.storage.RabbitMQ.EnsureQueue(h.cfg.RabbitMQ.ParsingQueue, true); err != nil {
		return fmt.Errorf("确保队列存在失败: %w", err)
	}
	if err := h.storage.RabbitMQ.BindQueue(
		h.cfg.RabbitMQ.ParsingQueue,
		h.cfg.RabbitMQ.ProcessingEventsExchange,
		h.cfg.RabbitMQ.ExtractedRoutingKey,
	); err != nil {
		return fmt.Errorf("绑定队列失败: %w", err)
	}

	_, err := h.storage.RabbitMQ.StartConsumer(h.cfg.RabbitMQ.ParsingQueue, prefetchCount, func(data []byte) bool {
		var message storage.ResumeParsingMessage
		if err := json.Unmarshal(data, &message); err != nil {
			logger.Error().Err(err).Msg("解析任务消息失败，丢弃消息")
			return true
		}
		if message.SubmissionUUID == "" {
			logger.Error().RawJSON("message", data).Msg("任务消息缺少submission_uuid，丢弃消息")
			return true
		}

		msgCtx, cancel := consumerContext(ctx, processTimeout)
		defer cancel()

		if err := h.service.ProcessParseTasks(msgCtx, message); err != nil {
			logger.Error().Err(err).Str("submission_uuid", message.SubmissionUUID).Msg("处理解析任务失败")
			return false
		}
		return true
	})
	if err != nil {
		return fmt.Errorf("启动解析消费者失败: %w", err)
	}
	return nil
}

// consumerContext 为单条消息派生处理上下文，timeout为0表示不限制
func consumerContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return parent, func() {}
	}
	return context.WithTimeout(parent, timeout)
}

// StartMD5CleanupTask 启动MD5记录维护任务。
// 定期检查两个去重集合的过期时间，缺失时补设，防止集合无限增长。
func (h *ResumeHandler) StartMD5CleanupTask(ctx context.Context) {
	cleanupInterval := 7 * 24 * time.Hour

	logger.Info().
		Dur("interval", cleanupInterval).
		Msg("启动MD5记录维护任务")

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	// 启动时先执行一次
	h.cleanupMD5Records(ctx)

	for {
		select {
		case <-ticker.C:
			h.cleanupMD5Records(ctx)
		case <-ctx.Done():
			logger.Info().Msg("MD5记录维护任务退出")
			return
		}
	}
}

// cleanupMD5Records 检查去重集合是否带过期时间，没有则按配置补设
func (h *ResumeHandler) cleanupMD5Records(ctx context.Context) {
	for _, setKey := range []string{constants.KeyFileMD5Set, constants.KeyTextMD5Set} {
		ttl, err := h.storage.Redis.Client.TTL(ctx, setKey).Result()
		if err != nil {
			logger.Error().Err(err).Str("set_key", setKey).Msg("获取MD5集合过期时间失败")
			continue
		}
		if ttl >= 0 {
			continue // 已有过期时间
		}
		expiry := h.storage.Redis.GetMD5ExpireDuration()
		if err := h.storage.Redis.Client.Expire(ctx, setKey, expiry).Err(); err != nil {
			logger.Error().Err(err).Str("set_key", setKey).Msg("设置MD5集合过期时间失败")
			continue
		}
		logger.Info().Str("set_key", setKey).Dur("expiry", expiry).Msg("已补设MD5集合过期时间")
	}
}
