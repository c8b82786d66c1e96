package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/constants"
	"resume-parser-go/internal/storage"
	"resume-parser-go/internal/storage/models"
	"resume-parser-go/pkg/ratelimit"

	"github.com/google/uuid"
)

// 重建搜索索引工具：遍历MySQL中的全部解析结果，逐条写回bleve索引。
// 用于索引文件损坏、换机迁移或索引结构升级后的全量重建。
var (
	configPath  = flag.String("config", "", "配置文件路径，为空时在默认位置查找")
	concurrency = flag.Int("workers", 5, "并发写索引的worker数")
	indexQPM    = flag.Int("qpm", 0, "每分钟写入上限，0表示不限速")
	lockTTL     = flag.Duration("lock-ttl", 30*time.Minute, "重建锁的过期时间，需大于预计重建耗时")
)

func main() {
	flag.Parse()

	// 日志同时输出到控制台和文件，方便事后排查
	logFile, err := os.Create("reindex.log")
	if err != nil {
		log.Fatalf("创建日志文件失败: %v", err)
	}
	defer logFile.Close()
	log.SetOutput(io.MultiWriter(os.Stdout, logFile))
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	ctx := context.Background()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("初始化存储失败: %v", err)
	}
	defer storageManager.Close()

	if storageManager.SearchIndex == nil {
		log.Fatalf("搜索索引未启用，无法重建")
	}
	if storageManager.MySQL == nil {
		log.Fatalf("MySQL未配置，无法读取解析结果")
	}

	// 用分布式锁阻止多个重建任务同时跑，避免互相覆盖
	if storageManager.Redis != nil {
		lockValue, err := storageManager.Redis.AcquireLock(ctx, constants.KeyReindexLock, *lockTTL)
		if err != nil {
			log.Fatalf("获取重建锁失败: %v", err)
		}
		if lockValue == "" {
			log.Fatalf("已有重建任务在运行，本次退出")
		}
		defer func() {
			if released, err := storageManager.Redis.ReleaseLock(ctx, constants.KeyReindexLock, lockValue); err != nil {
				log.Printf("释放重建锁失败: %v", err)
			} else if !released {
				log.Printf("重建锁已过期或被他人持有，未释放")
			}
		}()
	} else {
		log.Printf("Redis未配置，跳过重建锁")
	}

	// 可选限速，避免重建期间索引写入挤占线上查询
	var limiter *ratelimit.TokenBucket
	if *indexQPM > 0 {
		limiter = ratelimit.NewTokenBucket(*indexQPM, *indexQPM/6)
	}

	startTime := time.Now()
	indexed, skipped, failed, runErr := reindexAll(ctx, cfg, storageManager, limiter)
	if runErr != nil {
		// 不用log.Fatalf，保证defer的锁释放和连接关闭执行
		log.Printf("重建中断: %v", runErr)
	}

	total, err := storageManager.SearchIndex.Count(ctx)
	if err != nil {
		log.Printf("统计索引文档数失败: %v", err)
	}

	log.Printf("重建完成: 写入 %d 条, 跳过 %d 条, 失败 %d 条, 耗时 %v, 索引现有 %d 篇文档",
		indexed, skipped, failed, time.Since(startTime), total)
}

// reindexAll 按主键游标分批拉取解析结果并并发写入索引
func reindexAll(ctx context.Context, cfg *config.Config, storageManager *storage.Storage, limiter *ratelimit.TokenBucket) (indexed, skipped, failed int64, runErr error) {
	batchSize := cfg.SearchIndex.ReindexBatchSize

	semaphore := make(chan struct{}, *concurrency)
	var wg sync.WaitGroup

	cursor := ""
	batchNo := 0
	for {
		var rows []models.ParsedResume
		err := storageManager.MySQL.DB().WithContext(ctx).
			Where("submission_uuid > ?", cursor).
			Order("submission_uuid asc").
			Limit(batchSize).
			Find(&rows).Error
		if err != nil {
			return indexed, skipped, failed, fmt.Errorf("读取解析结果批次失败 (游标 %s): %w", cursor, err)
		}
		if len(rows) == 0 {
			break
		}

		batchNo++
		log.Printf("处理批次 %d, 共 %d 条, 起始游标 %s", batchNo, len(rows), cursor)
		cursor = rows[len(rows)-1].SubmissionUUID

		for i := range rows {
			row := rows[i]

			// 脏数据直接跳过，不让单条坏记录中断全量重建
			if uuid.Validate(row.SubmissionUUID) != nil {
				log.Printf("跳过非法UUID记录: %q", row.SubmissionUUID)
				atomic.AddInt64(&skipped, 1)
				continue
			}

			wg.Add(1)
			semaphore <- struct{}{}

			go func(row models.ParsedResume) {
				defer func() {
					<-semaphore
					wg.Done()
				}()

				if err := indexOne(ctx, cfg, storageManager, limiter, &row); err != nil {
					log.Printf("写入索引失败 %s: %v", row.SubmissionUUID, err)
					atomic.AddInt64(&failed, 1)
					return
				}
				atomic.AddInt64(&indexed, 1)
			}(row)
		}

		// 等当前批次全部落盘再拉下一批，控制内存占用
		wg.Wait()
	}

	return indexed, skipped, failed, nil
}

// indexOne 还原单条解析结果并写入索引
func indexOne(ctx context.Context, cfg *config.Config, storageManager *storage.Storage, limiter *ratelimit.TokenBucket, row *models.ParsedResume) error {
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("等待限速令牌失败: %w", err)
		}
	}

	record, err := storage.ParsedResumeToRecord(row)
	if err != nil {
		return fmt.Errorf("还原解析结果失败: %w", err)
	}

	parserVersion := row.ParserVersion
	if parserVersion == "" {
		parserVersion = cfg.ActiveParserVersion
	}

	return storageManager.SearchIndex.IndexParsedResume(ctx, row.SubmissionUUID, record, parserVersion)
}
