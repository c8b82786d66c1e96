package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/constants"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/parser"
	"resume-parser-go/internal/storage"
	"resume-parser-go/internal/storage/models"
	"resume-parser-go/internal/tracing"
	"resume-parser-go/internal/types"
	"resume-parser-go/pkg/utils"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 定义公共错误类型，用于整个服务
var (
	ErrStorageNotInit   = errors.New("storage is not initialized")   // 存储未初始化错误
	ErrExtractorNotInit = errors.New("extractor is not initialized") // 提取器未初始化错误
	ErrParserNotInit    = errors.New("parser is not initialized")    // 解析器未初始化错误
	ErrDuplicateContent = errors.New("duplicate content detected")   // 内容重复错误
	ErrEmptyText        = errors.New("extracted text is empty")      // 提取文本为空错误
)

// 定义tracer
var tracer = otel.Tracer("processor")

// ResumeService 定义简历处理服务的接口
// 提供统一的服务层接口，隐藏内部实现细节
type ResumeService interface {
	// ProcessUploadedResume 处理上传的简历：下载原始文件、提取文本、文本去重
	ProcessUploadedResume(ctx context.Context, message storage.ResumeUploadMessage) error

	// ProcessParseTasks 处理结构化解析任务：下载文本、解析为结构化记录、落库并写入索引
	ProcessParseTasks(ctx context.Context, message storage.ResumeParsingMessage) error
}

// resumeServiceImpl 是ResumeService的实现
// 内部持有所有需要的组件，但不暴露给外部
type resumeServiceImpl struct {
	components Components      // 组件依赖
	config     *config.Config  // 配置信息
	logger     *zerolog.Logger // 结构化日志
}

// NewResumeService 创建新的简历服务实例
func NewResumeService(cfg *config.Config, storageManager *storage.Storage, serviceLogger *zerolog.Logger, opts ...ComponentOpt) (ResumeService, error) {
	if serviceLogger == nil {
		// 如果未提供logger，创建一个默认的
		defaultLogger := zerolog.Nop()
		serviceLogger = &defaultLogger
	}

	// 创建组件
	components, err := createComponents(cfg, storageManager, serviceLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create components: %w", err)
	}

	// 应用选项，允许调用方替换默认组件（测试场景）
	for _, opt := range opts {
		opt(&components)
	}

	return &resumeServiceImpl{
		components: components,
		config:     cfg,
		logger:     serviceLogger,
	}, nil
}

// createComponents 创建所有必要的组件
func createComponents(cfg *config.Config, storageManager *storage.Storage, serviceLogger *zerolog.Logger) (Components, error) {
	components := Components{
		Storage: storageManager,

		// 结构化解析器是纯本地规则引擎，无外部依赖，总是可用
		RecordParser: parser.NewResumeParser(),
	}

	var routerOpts []parser.RouterOption

	// Tika服务可用时，pdf/docx和图片OCR都经由Tika提取
	if cfg.Tika.ServerURL != "" {
		tikaOptions := []parser.TikaOption{
			parser.WithAnnotations(true),
		}

		switch cfg.Tika.MetadataMode {
		case "full":
			tikaOptions = append(tikaOptions, parser.WithFullMetadata(true))
		case "none":
			tikaOptions = append(tikaOptions, parser.WithMinimalMetadata(false))
		default:
			tikaOptions = append(tikaOptions, parser.WithMinimalMetadata(true))
		}

		if serviceLogger != nil {
			// 转换zerolog为标准log，因为Tika提取器使用标准log库
			stdLogger := log.New(
				zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
					w.NoColor = false
					w.TimeFormat = "15:04:05"
				}),
				"[TikaExtractor] ",
				log.LstdFlags,
			)
			tikaOptions = append(tikaOptions, parser.WithTikaLogger(stdLogger))
		}

		tikaTimeout := time.Duration(cfg.Tika.Timeout) * time.Second
		if tikaTimeout > 0 {
			tikaOptions = append(tikaOptions, parser.WithTimeout(tikaTimeout))
		}

		tika := parser.NewTikaExtractor(cfg.Tika.ServerURL, tikaOptions...)
		routerOpts = append(routerOpts,
			parser.WithPDFExtractor(tika),
			parser.WithDocxExtractor(tika),
			parser.WithImageExtractor(tika),
		)
	}

	// 显式指定eino或未配置Tika时，PDF改走本地解析器
	if cfg.Tika.Type == "eino" || cfg.Tika.ServerURL == "" {
		einoExtractor, err := parser.NewEinoPDFExtractor(context.Background())
		if err != nil {
			if cfg.Tika.ServerURL == "" {
				// 没有Tika兜底时PDF无法处理，直接失败
				return components, fmt.Errorf("初始化本地PDF提取器失败: %w", err)
			}
		} else {
			routerOpts = append(routerOpts, parser.WithPDFExtractor(einoExtractor))
		}
	}

	components.TextExtractor = parser.NewFormatRouter(routerOpts...)
	return components, nil
}

// ProcessUploadedResume 处理上传的简历
// 实现ResumeService接口
func (rs *resumeServiceImpl) ProcessUploadedResume(ctx context.Context, message storage.ResumeUploadMessage) error {
	// 创建span
	ctx, span := tracer.Start(ctx, "ProcessUploadedResume",
		trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()

	// 添加关键业务属性
	span.SetAttributes(
		attribute.String("submission_uuid", message.SubmissionUUID),
		attribute.String("source_channel", message.SourceChannel),
	)

	// 使用带trace信息的logger
	ctx = logger.WithSubmissionUUID(ctx, message.SubmissionUUID)
	log := logger.FromContext(ctx)

	log.Debug().Msg("开始处理上传的简历")

	// 检查组件初始化
	if rs.components.Storage == nil {
		span.RecordError(ErrStorageNotInit)
		span.SetStatus(codes.Error, "存储未初始化")
		return ErrStorageNotInit
	}
	if rs.components.TextExtractor == nil {
		span.RecordError(ErrExtractorNotInit)
		span.SetStatus(codes.Error, "提取器未初始化")
		return ErrExtractorNotInit
	}

	var skip bool

	// 使用数据库事务确保操作的原子性
	err := rs.components.Storage.MySQL.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. 锁定记录，防止并发消费者同时处理同一条提交
		var submission models.ResumeSubmission
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("submission_uuid = ?", message.SubmissionUUID).
			First(&submission).Error; err != nil {

			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Info().Msg("ResumeSubmission记录未找到，可能已被删除")
				skip = true
				return nil // 记录不存在，直接确认消息
			}
			log.Error().Err(err).Msg("获取ResumeSubmission记录失败")
			return NewDatabaseError(message.SubmissionUUID, err.Error())
		}

		// 2. 幂等性检查：状态不在允许集合内说明是重复投递
		if !constants.IsStatusAllowed(submission.ProcessingStatus, constants.AllowedStatusesForExtract) {
			log.Debug().Str("current_status", submission.ProcessingStatus).Msg("跳过重复/无效状态的消息")
			span.SetAttributes(
				attribute.String("skipped_reason", "invalid_status"),
				attribute.String("current_status", submission.ProcessingStatus),
			)
			skip = true
			return nil
		}

		// 3. 占位状态，标记提取开始
		if err := tx.Model(&submission).
			Update("processing_status", constants.StatusQueuedForExtract).Error; err != nil {
			log.Error().Err(err).Msg("更新简历状态为QUEUED_FOR_EXTRACTION失败")
			return NewUpdateError(message.SubmissionUUID, fmt.Sprintf("更新状态为%s失败", constants.StatusQueuedForExtract))
		}

		// 4. 下载、提取文本并去重 - 创建子span
		extractCtx, extractSpan := tracer.Start(ctx, "ExtractAndDeduplicate")
		text, textMD5Hex, err := rs.extractAndDeduplicate(extractCtx, tx, message)
		extractSpan.End()

		if err != nil {
			if errors.Is(err, ErrDuplicateContent) {
				log.Info().Msg("检测到重复内容，跳过后续解析")
				skip = true
				return nil // 内容重复是正常流程，提交状态更新并返回nil，事务将提交
			}
			return err // 其他错误则回滚事务
		}

		// 5. 上传提取后的文本到MinIO - 只记录事件而不创建子span
		span.AddEvent("uploading_to_minio")
		textObjectKey, err := rs.components.Storage.MinIO.UploadParsedText(ctx, message.SubmissionUUID, text)
		if err != nil {
			log.Error().Err(err).Msg("上传提取文本到MinIO失败")
			return NewStoreError(message.SubmissionUUID, err.Error())
		}
		log.Debug().Str("object_key", textObjectKey).Msg("提取文本已上传到MinIO")

		// 6. 构建解析队列消息
		parsingMessage := storage.ResumeParsingMessage{
			SubmissionUUID:    message.SubmissionUUID,
			ParsedTextPathOSS: textObjectKey,
			RawTextMD5:        textMD5Hex,
			ProcessingTime:    time.Now().Unix(),
		}

		// 7. [Outbox] 将消息写入 Outbox 表，而不是直接发布
		_, outboxSpan := tracer.Start(ctx, "WriteToOutbox")
		payloadBytes, err := json.Marshal(parsingMessage)
		if err != nil {
			log.Error().Err(err).Msg("序列化outbox payload失败")
			outboxSpan.RecordError(err)
			outboxSpan.SetStatus(codes.Error, "序列化失败")
			outboxSpan.End()
			return NewUpdateError(message.SubmissionUUID, "序列化outbox payload失败")
		}

		outboxEntry := models.OutboxMessage{
			AggregateID:      message.SubmissionUUID,
			EventType:        "resume.text_extracted",
			Payload:          string(payloadBytes),
			TargetExchange:   rs.config.RabbitMQ.ProcessingEventsExchange,
			TargetRoutingKey: rs.config.RabbitMQ.ExtractedRoutingKey,
		}

		if err := tx.Create(&outboxEntry).Error; err != nil {
			log.Error().Err(err).Msg("插入outbox记录失败")
			outboxSpan.RecordError(err)
			outboxSpan.SetStatus(codes.Error, "插入失败")
			outboxSpan.End()
			return NewUpdateError(message.SubmissionUUID, "插入outbox记录失败")
		}
		outboxSpan.End()
		log.Debug().Msg("成功创建outbox记录")

		// 8. 更新数据库记录
		if err := tx.Model(&models.ResumeSubmission{}).
			Where("submission_uuid = ?", message.SubmissionUUID).
			Updates(map[string]interface{}{
				"parsed_text_path_oss": textObjectKey,
				"raw_text_md5":         textMD5Hex,
				"processing_status":    constants.StatusTextExtracted,
			}).Error; err != nil {
			log.Error().Err(err).Msg("更新数据库记录失败")
			return NewUpdateError(message.SubmissionUUID, "更新数据库失败")
		}

		span.SetStatus(codes.Ok, "处理成功")
		return nil // 事务成功
	})

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		// 事务失败时记录失败状态和错误详情
		rs.markFailed(ctx, message.SubmissionUUID, constants.StatusExtractFailed, err)
		return err // 返回原始错误
	}

	if skip {
		return nil
	}

	log.Info().Msg("文本提取任务处理成功完成")
	return nil
}

// extractAndDeduplicate 内部辅助方法：下载原始文件、提取文本并检查是否重复
func (rs *resumeServiceImpl) extractAndDeduplicate(ctx context.Context, tx *gorm.DB, message storage.ResumeUploadMessage) (string, string, error) {
	// 获取带trace的日志
	log := logger.FromContext(ctx)
	span := trace.SpanFromContext(ctx)

	// 从MinIO获取原始简历文件
	originalFileBytes, err := rs.components.Storage.MinIO.GetResumeFile(ctx, message.OriginalFilePathOSS)
	if err != nil {
		log.Error().Err(err).Msg("从MinIO下载简历失败")
		tracing.RecordErrorWithInfo(span, err, tracing.ErrorTypeExternal,
			attribute.String("error.stage", "download"))
		return "", "", fmt.Errorf("下载简历失败: %w", err)
	}
	log.Debug().Int("size_bytes", len(originalFileBytes)).Msg("从MinIO下载简历成功")
	span.SetAttributes(attribute.Int("file_size_bytes", len(originalFileBytes)))

	// 按文件扩展名路由到对应格式的提取器
	text, _, err := rs.components.TextExtractor.ExtractTextFromReader(ctx, bytes.NewReader(originalFileBytes), message.OriginalFilePathOSS, nil)
	if err != nil {
		log.Error().Err(err).Msg("提取简历文本失败")
		tracing.RecordErrorWithInfo(span, err, tracing.ErrorTypeExternal,
			attribute.String("error.stage", "extract"))
		return "", "", fmt.Errorf("提取文本失败: %w", err)
	}
	if len(bytes.TrimSpace([]byte(text))) == 0 {
		log.Warn().Msg("提取结果为空文本")
		tracing.RecordError(span, ErrEmptyText, tracing.ErrorTypeValidation)
		return "", "", fmt.Errorf("%w (来源: %s)", ErrEmptyText, message.OriginalFilePathOSS)
	}
	log.Debug().Int("text_length", len(text)).Msg("成功提取文本")
	span.SetAttributes(attribute.Int("text_length", len(text)))

	// 记录一个事件表示文本提取完成
	span.AddEvent("text_extraction_completed")

	// 计算文本MD5用于去重
	textMD5Hex := utils.CalculateMD5([]byte(text))
	log.Debug().Str("md5", textMD5Hex).Msg("计算得到文本MD5")

	// 在Redis中原子地检查并添加文本MD5
	textExists, err := rs.components.Storage.Redis.CheckAndAddParsedTextMD5(ctx, textMD5Hex)
	if err != nil {
		log.Warn().Err(err).Msg("Redis检查文本MD5失败，将继续处理，但文本去重可能失效")
	} else if textExists {
		log.Info().Str("md5", textMD5Hex).Msg("检测到重复的文本MD5，标记为重复内容")
		if err := tx.Model(&models.ResumeSubmission{}).
			Where("submission_uuid = ?", message.SubmissionUUID).
			Updates(map[string]interface{}{
				"processing_status": constants.StatusDuplicateSkipped,
				"raw_text_md5":      textMD5Hex,
			}).Error; err != nil {
			return "", "", fmt.Errorf("更新重复内容状态失败: %w", err)
		}
		span.SetAttributes(
			attribute.Bool("duplicate_content", true),
			attribute.String("md5", textMD5Hex),
		)
		return "", "", ErrDuplicateContent
	}

	log.Debug().Msg("文本MD5不存在于Redis，继续处理")
	return text, textMD5Hex, nil
}

// ProcessParseTasks 处理结构化解析任务
// 实现ResumeService接口
func (rs *resumeServiceImpl) ProcessParseTasks(ctx context.Context, message storage.ResumeParsingMessage) error {
	// 创建span
	ctx, span := tracer.Start(ctx, "ProcessParseTasks",
		trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()

	// 添加关键属性
	span.SetAttributes(
		attribute.String("submission_uuid", message.SubmissionUUID),
	)

	// 使用带trace信息的logger
	ctx = logger.WithSubmissionUUID(ctx, message.SubmissionUUID)
	log := logger.FromContext(ctx).With().Str("method", "ProcessParseTasks").Logger()

	log.Debug().Msg("开始处理结构化解析任务")

	// 检查组件初始化
	if rs.components.Storage == nil {
		span.RecordError(ErrStorageNotInit)
		span.SetStatus(codes.Error, "存储未初始化")
		return ErrStorageNotInit
	}
	if rs.components.RecordParser == nil {
		span.RecordError(ErrParserNotInit)
		span.SetStatus(codes.Error, "解析器未初始化")
		return ErrParserNotInit
	}

	var skip bool

	// 使用事务来保证读取-更新的原子性和幂等性
	err := rs.components.Storage.MySQL.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. 获取最新的 ResumeSubmission 记录并锁定，防止并发处理
		txCtx, txSpan := tracer.Start(ctx, "GetAndLockSubmission")
		defer txSpan.End()
		var submission models.ResumeSubmission
		if err := tx.WithContext(txCtx).Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("submission_uuid = ?", message.SubmissionUUID).
			First(&submission).Error; err != nil {

			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Info().Msg("ResumeSubmission记录未找到，可能已被删除")
				txSpan.SetStatus(codes.Error, "记录不存在")
				skip = true
				return nil // 记录不存在，直接确认消息
			}
			log.Error().Err(err).Msg("获取ResumeSubmission记录失败")
			txSpan.RecordError(err)
			txSpan.SetStatus(codes.Error, "查询失败")
			return fmt.Errorf("获取ResumeSubmission记录失败: %w", err)
		}

		// 2. 幂等性检查
		if !constants.IsStatusAllowed(submission.ProcessingStatus, constants.AllowedStatusesForParse) {
			log.Debug().Str("current_status", submission.ProcessingStatus).Msg("跳过重复/无效状态的消息")
			span.SetAttributes(
				attribute.String("skipped_reason", "invalid_status"),
				attribute.String("current_status", submission.ProcessingStatus),
			)
			skip = true
			return nil
		}

		// 3. 更新状态为 QUEUED_FOR_PARSING，表示开始处理
		if err := tx.WithContext(txCtx).Model(&submission).
			Update("processing_status", constants.StatusQueuedForParse).Error; err != nil {
			log.Error().Err(err).Msg("更新状态到QUEUED_FOR_PARSING失败")
			return fmt.Errorf("更新状态失败: %w", err)
		}

		return nil // 事务成功提交
	})

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "事务处理失败")
		return err
	}

	if skip {
		return nil
	}

	// --- 事务外执行IO操作：下载文本并解析 ---
	downloadCtx, downloadSpan := tracer.Start(ctx, "DownloadParsedText")
	parsedText, err := rs.downloadParsedText(downloadCtx, message)
	downloadSpan.End()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "下载解析文本失败")
		rs.markFailed(ctx, message.SubmissionUUID, constants.StatusParseFailed, err)
		return err
	}

	// 结构化解析是纯函数，任何输入都产出完整记录
	_, parseSpan := tracer.Start(ctx, "ParseResumeRecord")
	record := rs.components.RecordParser.Parse(parsedText)
	parseSpan.SetAttributes(
		attribute.Int("section_count", len(record.Sections)),
		attribute.Int("education_count", len(record.Education)),
		attribute.Int("experience_count", len(record.Experience)),
		attribute.Int("skill_count", len(record.Skills.All)),
	)
	parseSpan.End()

	// 序列化结构化结果并上传到MinIO归档
	recordJSON, err := json.Marshal(record)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "序列化解析结果失败")
		rs.markFailed(ctx, message.SubmissionUUID, constants.StatusParseFailed, err)
		return fmt.Errorf("序列化解析结果失败: %w", err)
	}

	recordObjectKey, err := rs.components.Storage.MinIO.UploadParsedRecord(ctx, message.SubmissionUUID, recordJSON)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "上传解析结果失败")
		rs.markFailed(ctx, message.SubmissionUUID, constants.StatusParseFailed, err)
		return fmt.Errorf("上传解析结果失败: %w", err)
	}

	// 使用事务来保证最终的数据库更新
	finalCtx, finalTxSpan := tracer.Start(ctx, "ExecuteFinalTransaction")
	defer finalTxSpan.End()
	err = rs.components.Storage.MySQL.DB().WithContext(finalCtx).Transaction(func(tx *gorm.DB) error {
		return rs.executeParseTransaction(finalCtx, tx, message, record, recordObjectKey)
	})

	if err != nil {
		log.Error().Err(err).Msg("解析最终事务失败")
		span.RecordError(err)
		span.SetStatus(codes.Error, "最终事务失败")
		rs.markFailed(ctx, message.SubmissionUUID, constants.StatusParseFailed, err)
		return err
	}

	// --- 事务后执行非事务性副作用：搜索索引和缓存，失败只告警不回滚 ---
	if rs.components.Storage.SearchIndex != nil {
		if err := rs.components.Storage.SearchIndex.IndexParsedResume(ctx, message.SubmissionUUID, record, rs.config.ActiveParserVersion); err != nil {
			log.Warn().Err(err).Msg("写入搜索索引失败，不影响解析结果")
		}
	}
	if rs.components.Storage.Redis != nil {
		if err := rs.components.Storage.Redis.CacheParsedRecord(ctx, message.SubmissionUUID, record); err != nil {
			log.Warn().Err(err).Msg("缓存解析结果失败")
		}
		if err := rs.components.Storage.Redis.CacheSubmissionStatus(ctx, message.SubmissionUUID, constants.StatusParsed); err != nil {
			log.Warn().Err(err).Msg("缓存提交状态失败")
		}
	}

	span.SetStatus(codes.Ok, "处理成功")
	log.Info().Msg("结构化解析任务处理成功完成")
	return nil
}

// downloadParsedText 获取提取后的纯文本。
// 消息体内联了文本时直接使用，否则从MinIO下载。
func (rs *resumeServiceImpl) downloadParsedText(ctx context.Context, message storage.ResumeParsingMessage) (string, error) {
	log := rs.logger.With().
		Str("submission_uuid", message.SubmissionUUID).
		Str("method", "downloadParsedText").
		Logger()

	if message.ParsedText != "" {
		log.Debug().Int("text_length", len(message.ParsedText)).Msg("使用消息内联的解析文本")
		return message.ParsedText, nil
	}

	if message.ParsedTextPathOSS == "" {
		return "", fmt.Errorf("消息缺少解析文本路径")
	}

	parsedText, err := rs.components.Storage.MinIO.GetParsedText(ctx, message.ParsedTextPathOSS)
	if err != nil {
		log.Error().Err(err).Str("path", message.ParsedTextPathOSS).Msg("从MinIO下载解析文本失败")
		return "", fmt.Errorf("下载解析文本失败: %w", err)
	}
	log.Debug().Int("text_length", len(parsedText)).Msg("成功下载解析文本")

	return parsedText, nil
}

// executeParseTransaction 执行解析结果落库的最终事务
func (rs *resumeServiceImpl) executeParseTransaction(
	ctx context.Context,
	tx *gorm.DB,
	message storage.ResumeParsingMessage,
	record *types.ResumeRecord,
	recordObjectKey string,
) error {
	log := rs.logger.With().
		Str("submission_uuid", message.SubmissionUUID).
		Str("method", "executeParseTransaction").
		Logger()

	// 1. 保存结构化记录到MySQL
	if err := rs.components.Storage.MySQL.SaveParsedRecord(tx, message.SubmissionUUID, record, rs.config.ActiveParserVersion); err != nil {
		log.Error().Err(err).Msg("保存结构化记录到MySQL失败")
		return fmt.Errorf("保存结构化记录失败: %w", err)
	}

	// 2. 依据联系方式关联或创建候选人
	candidateID := ""
	basicInfo := rs.candidateBasicInfo(record)
	if len(basicInfo) > 0 {
		candidate, err := rs.components.Storage.MySQL.FindOrCreateCandidate(ctx, tx, basicInfo)
		if err != nil {
			// 候选人归并失败不中断解析主流程
			log.Warn().Err(err).Msg("关联候选人失败，提交保持未关联状态")
		} else if candidate != nil {
			candidateID = candidate.CandidateID
		}
	} else {
		log.Debug().Msg("记录缺少联系方式，跳过候选人关联")
	}

	// 3. [Outbox] 写入解析完成事件供下游订阅
	event := storage.ResumeParsedEvent{
		SubmissionUUID:      message.SubmissionUUID,
		CandidateID:         candidateID,
		ParserVersion:       rs.config.ActiveParserVersion,
		SectionCount:        len(record.Sections),
		ParsedRecordPathOSS: recordObjectKey,
		ParsedAt:            time.Now().Unix(),
	}
	payloadBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("序列化解析完成事件失败: %w", err)
	}
	outboxEntry := models.OutboxMessage{
		AggregateID:      message.SubmissionUUID,
		EventType:        "resume.parsed",
		Payload:          string(payloadBytes),
		TargetExchange:   rs.config.RabbitMQ.ResumeEventsExchange,
		TargetRoutingKey: rs.config.RabbitMQ.ParsedRoutingKey,
	}
	if err := tx.Create(&outboxEntry).Error; err != nil {
		return fmt.Errorf("插入outbox记录失败: %w", err)
	}

	// 4. 更新最终状态
	updates := map[string]interface{}{
		"processing_status":      constants.StatusParsed,
		"parsed_record_path_oss": recordObjectKey,
		"parser_version":         rs.config.ActiveParserVersion,
		"error_detail":           "",
	}
	if candidateID != "" {
		updates["candidate_id"] = candidateID
	}
	if err := tx.Model(&models.ResumeSubmission{}).
		Where("submission_uuid = ?", message.SubmissionUUID).
		Updates(updates).Error; err != nil {
		log.Error().Err(err).Msg("更新最终状态到MySQL失败")
		return fmt.Errorf("更新最终状态失败: %w", err)
	}

	log.Debug().Msg("成功执行解析落库事务")
	return nil
}

// candidateBasicInfo 从解析结果提取候选人归并所需的联系字段。
// 没有任何可识别身份的字段时返回空map，调用方跳过归并。
func (rs *resumeServiceImpl) candidateBasicInfo(record *types.ResumeRecord) map[string]string {
	basicInfo := map[string]string{}
	if len(record.Contact.Emails) > 0 {
		basicInfo["email"] = record.Contact.Emails[0]
	}
	if len(record.Contact.Phones) > 0 {
		basicInfo["phone"] = record.Contact.Phones[0]
	}
	return basicInfo
}

// markFailed 记录失败状态和错误详情，更新失败只记日志
func (rs *resumeServiceImpl) markFailed(ctx context.Context, submissionUUID, status string, cause error) {
	log := logger.FromContext(ctx)

	detail := ""
	if cause != nil {
		detail = cause.Error()
		if len(detail) > 2000 {
			detail = detail[:2000]
		}
	}

	db := rs.components.Storage.MySQL.DB().WithContext(ctx)
	if err := rs.components.Storage.MySQL.UpdateResumeSubmissionFields(db, submissionUUID, map[string]interface{}{
		"processing_status": status,
		"error_detail":      detail,
	}); err != nil {
		log.Error().Err(err).Str("target_status", status).Msg("更新失败状态时出错")
	}
}
