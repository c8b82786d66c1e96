// Package outbox 实现事务性发件箱的消息中继。
// 业务事务只负责把事件写进outbox表，真正的投递由中继轮询完成，
// 数据库和消息队列之间不需要分布式事务。
package outbox

import (
	"context"
	"time"

	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/storage"
	"resume-parser-go/internal/storage/models"
	"resume-parser-go/pkg/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultPollingInterval = 5 * time.Second // 轮询outbox表的间隔
	defaultBatchSize       = 10              // 每轮处理的消息数
	maxRetryCount          = 5               // 投递失败的最大重试次数
)

// MessageRelay 轮询outbox表并把待投递消息发布到RabbitMQ
type MessageRelay struct {
	db              *gorm.DB
	publisher       *storage.RabbitMQ
	pollingInterval time.Duration
	batchSize       int
	done            chan struct{}
	tracer          trace.Tracer
}

// NewMessageRelay 创建消息中继
func NewMessageRelay(db *gorm.DB, publisher *storage.RabbitMQ) *MessageRelay {
	return &MessageRelay{
		db:              db,
		publisher:       publisher,
		pollingInterval: defaultPollingInterval,
		batchSize:       defaultBatchSize,
		done:            make(chan struct{}),
		tracer:          otel.Tracer("outbox-relay"),
	}
}

// Start 启动后台轮询
func (r *MessageRelay) Start() {
	logger.Info().
		Dur("polling_interval", r.pollingInterval).
		Int("batch_size", r.batchSize).
		Msg("消息中继启动")

	ticker := time.NewTicker(r.pollingInterval)
	go func() {
		for {
			select {
			case <-r.done:
				ticker.Stop()
				logger.Info().Msg("消息中继已停止")
				return
			case <-ticker.C:
				if err := r.processPendingMessages(context.Background()); err != nil {
					logger.Error().Err(err).Msg("处理待投递消息失败")
				}
			}
		}
	}()
}

// Stop 停止消息中继
func (r *MessageRelay) Stop() {
	close(r.done)
}

// processPendingMessages 取出一批待投递消息逐条发布并更新状态。
// FOR UPDATE SKIP LOCKED让多实例部署时各实例处理不同的行，
// 锁住的行在事务提交前对其他实例不可见。
func (r *MessageRelay) processPendingMessages(ctx context.Context) error {
	var messages []models.OutboxMessage

	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer tx.Rollback() // 提交后回滚是空操作

	err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status = ?", models.OutboxStatusPending).
		Order("created_at asc").
		Limit(r.batchSize).
		Find(&messages).Error
	if err != nil {
		return err
	}

	if len(messages) == 0 {
		return tx.Commit().Error
	}

	// 空轮询占大多数，只在有消息时才建span
	ctx, span := r.tracer.Start(ctx, "outbox.ProcessBatch",
		trace.WithAttributes(
			attribute.Int("messaging.batch.message_count", len(messages)),
		),
	)
	defer span.End()

	logger.Debug().Int("count", len(messages)).Msg("取到待投递消息")

	for _, msg := range messages {
		err := r.publisher.PublishMessage(
			ctx,
			msg.TargetExchange,
			msg.TargetRoutingKey,
			[]byte(msg.Payload),
			true, // 持久化消息
		)

		if err != nil {
			logger.Warn().
				Err(err).
				Uint64("message_id", msg.ID).
				Str("aggregate_id", msg.AggregateID).
				Int("retry_count", msg.RetryCount+1).
				Msg("投递outbox消息失败")
			msg.RetryCount++
			msg.ErrorMessage = err.Error()
			if msg.RetryCount >= maxRetryCount {
				msg.Status = models.OutboxStatusFailed
				logger.Error().
					Uint64("message_id", msg.ID).
					Str("aggregate_id", msg.AggregateID).
					Str("event_type", msg.EventType).
					Msg("outbox消息重试耗尽，标记为FAILED")
			}
		} else {
			msg.Status = models.OutboxStatusSent
			msg.ProcessedAt = utils.TimePtr(time.Now())
			msg.ErrorMessage = ""
		}

		// 更新失败则整个事务回滚，这批消息下一轮重新拾取
		if err := tx.Save(&msg).Error; err != nil {
			logger.Error().Err(err).Uint64("message_id", msg.ID).Msg("更新outbox消息状态失败")
			return err
		}
	}

	return tx.Commit().Error
}
