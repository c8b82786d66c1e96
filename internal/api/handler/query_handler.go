package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/constants"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/storage"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ResumeQueryHandler 简历查询侧处理器，覆盖状态查询、结果查询、列表与关键词搜索
type ResumeQueryHandler struct {
	cfg     *config.Config
	storage *storage.Storage
}

// NewResumeQueryHandler 创建查询处理器
func NewResumeQueryHandler(cfg *config.Config, storage *storage.Storage) *ResumeQueryHandler {
	return &ResumeQueryHandler{
		cfg:     cfg,
		storage: storage,
	}
}

// SubmissionStatusResponse 状态查询响应
type SubmissionStatusResponse struct {
	SubmissionUUID string `json:"submission_uuid"`
	Status         string `json:"status"`
	ErrorDetail    string `json:"error_detail,omitempty"`
}

// SubmissionSummary 列表接口返回的提交概要
type SubmissionSummary struct {
	SubmissionUUID      string    `json:"submission_uuid"`
	Status              string    `json:"status"`
	OriginalFilename    string    `json:"original_filename"`
	SourceChannel       string    `json:"source_channel"`
	SubmissionTimestamp time.Time `json:"submission_timestamp"`
	ParserVersion       string    `json:"parser_version,omitempty"`
}

// SubmissionListResponse 分页列表响应
type SubmissionListResponse struct {
	Submissions []SubmissionSummary `json:"submissions"`
	Total       int64               `json:"total"`
	Cursor      int64               `json:"cursor"`
	Size        int64               `json:"size"`
	NextCursor  int64               `json:"next_cursor"`
}

// SearchResultItem 搜索结果条目，分数来自全文索引，其余字段来自数据库
type SearchResultItem struct {
	SubmissionUUID      string    `json:"submission_uuid"`
	Score               float64   `json:"score"`
	Status              string    `json:"status"`
	OriginalFilename    string    `json:"original_filename"`
	SubmissionTimestamp time.Time `json:"submission_timestamp"`
}

// SearchResponse 关键词搜索响应
type SearchResponse struct {
	Query   string             `json:"query"`
	Total   int64              `json:"total"`
	From    int                `json:"from"`
	Size    int                `json:"size"`
	Results []SearchResultItem `json:"results"`
}

// HandleGetStatus 查询提交的处理状态。
// 先查Redis缓存，未命中回源MySQL；只有终态会写回缓存，
// 中间状态还会流转，缓存了就是脏数据。
func (h *ResumeQueryHandler) HandleGetStatus(ctx context.Context, c *app.RequestContext) {
	submissionUUID := c.Param("uuid")
	if err := uuid.Validate(submissionUUID); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "无效的提交UUID"})
		return
	}

	// 1. 查缓存。缓存里只有终态，终态没有错误详情需要补
	status, err := h.storage.Redis.GetCachedSubmissionStatus(ctx, submissionUUID)
	if err == nil {
		c.JSON(consts.StatusOK, SubmissionStatusResponse{
			SubmissionUUID: submissionUUID,
			Status:         status,
		})
		return
	}
	if !errors.Is(err, redis.Nil) {
		logger.Warn().Err(err).Str("submission_uuid", submissionUUID).Msg("查询状态缓存失败，回源数据库")
	}

	// 2. 回源数据库
	submission, err := h.storage.MySQL.GetSubmission(ctx, submissionUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(consts.StatusNotFound, utils.H{"error": "提交记录不存在"})
			return
		}
		logger.Error().Err(err).Str("submission_uuid", submissionUUID).Msg("查询提交记录失败")
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "查询提交记录失败"})
		return
	}

	// 3. 终态写回缓存，失败不影响本次响应
	if constants.IsStatusAllowed(submission.ProcessingStatus, constants.CacheableStatuses) {
		if cacheErr := h.storage.Redis.CacheSubmissionStatus(ctx, submissionUUID, submission.ProcessingStatus); cacheErr != nil {
			logger.Warn().Err(cacheErr).Str("submission_uuid", submissionUUID).Msg("写入状态缓存失败")
		}
	}

	c.JSON(consts.StatusOK, SubmissionStatusResponse{
		SubmissionUUID: submissionUUID,
		Status:         submission.ProcessingStatus,
		ErrorDetail:    submission.ErrorDetail,
	})
}

// HandleGetRecord 查询结构化解析结果，缓存未命中时回源MySQL并回填缓存
func (h *ResumeQueryHandler) HandleGetRecord(ctx context.Context, c *app.RequestContext) {
	submissionUUID := c.Param("uuid")
	if err := uuid.Validate(submissionUUID); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "无效的提交UUID"})
		return
	}

	record, err := h.storage.Redis.GetCachedParsedRecord(ctx, submissionUUID)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn().Err(err).Str("submission_uuid", submissionUUID).Msg("查询解析结果缓存失败，回源数据库")
		}
		record, err = h.storage.MySQL.GetResumeRecord(ctx, submissionUUID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(consts.StatusNotFound, utils.H{"error": "解析结果不存在"})
				return
			}
			logger.Error().Err(err).Str("submission_uuid", submissionUUID).Msg("查询解析结果失败")
			c.JSON(consts.StatusInternalServerError, utils.H{"error": "查询解析结果失败"})
			return
		}
		if cacheErr := h.storage.Redis.CacheParsedRecord(ctx, submissionUUID, record); cacheErr != nil {
			logger.Warn().Err(cacheErr).Str("submission_uuid", submissionUUID).Msg("写入解析结果缓存失败")
		}
	}

	c.JSON(consts.StatusOK, utils.H{
		"submission_uuid": submissionUUID,
		"record":          record,
	})
}

// HandleList 分页列出简历提交，支持按处理状态过滤
func (h *ResumeQueryHandler) HandleList(ctx context.Context, c *app.RequestContext) {
	status := c.Query("status")

	cursor := int64(0)
	if cursorStr := c.Query("cursor"); cursorStr != "" {
		if parsed, err := strconv.ParseInt(cursorStr, 10, 64); err == nil && parsed >= 0 {
			cursor = parsed
		}
	}

	size := int64(10)
	if sizeStr := c.Query("size"); sizeStr != "" {
		if parsed, err := strconv.ParseInt(sizeStr, 10, 64); err == nil && parsed > 0 && parsed <= 100 {
			size = parsed
		}
	}

	submissions, total, err := h.storage.MySQL.ListSubmissions(ctx, status, cursor, size)
	if err != nil {
		logger.Error().Err(err).Str("status", status).Msg("查询提交列表失败")
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "查询提交列表失败"})
		return
	}

	summaries := make([]SubmissionSummary, 0, len(submissions))
	for _, s := range submissions {
		summaries = append(summaries, SubmissionSummary{
			SubmissionUUID:      s.SubmissionUUID,
			Status:              s.ProcessingStatus,
			OriginalFilename:    s.OriginalFilename,
			SourceChannel:       s.SourceChannel,
			SubmissionTimestamp: s.SubmissionTimestamp,
			ParserVersion:       s.ParserVersion,
		})
	}

	nextCursor := cursor + size
	if nextCursor > total {
		nextCursor = total
	}

	c.JSON(consts.StatusOK, SubmissionListResponse{
		Submissions: summaries,
		Total:       total,
		Cursor:      cursor,
		Size:        size,
		NextCursor:  nextCursor,
	})
}

// HandleSearch 对已解析的简历做关键词搜索。
// 命中列表来自全文索引，再按UUID批量回查数据库补全展示字段，
// 索引里有但库里已删除的条目直接跳过。
func (h *ResumeQueryHandler) HandleSearch(ctx context.Context, c *app.RequestContext) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "缺少查询关键词q"})
		return
	}

	from := 0
	if fromStr := c.Query("from"); fromStr != "" {
		if parsed, err := strconv.Atoi(fromStr); err == nil && parsed >= 0 {
			from = parsed
		}
	}

	size := 10
	if sizeStr := c.Query("size"); sizeStr != "" {
		if parsed, err := strconv.Atoi(sizeStr); err == nil && parsed > 0 && parsed <= 100 {
			size = parsed
		}
	}

	hits, total, err := h.storage.SearchIndex.Search(ctx, query, from, size)
	if err != nil {
		logger.Error().Err(err).Str("query", query).Msg("搜索简历失败")
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "搜索简历失败"})
		return
	}

	uuids := make([]string, 0, len(hits))
	for _, hit := range hits {
		uuids = append(uuids, hit.SubmissionUUID)
	}
	submissions, err := h.storage.MySQL.GetSubmissionsByUUIDs(ctx, uuids)
	if err != nil {
		logger.Error().Err(err).Str("query", query).Msg("回查提交记录失败")
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "搜索简历失败"})
		return
	}
	byUUID := make(map[string]*storageSubmission, len(submissions))
	for i := range submissions {
		byUUID[submissions[i].SubmissionUUID] = &storageSubmission{
			status:              submissions[i].ProcessingStatus,
			originalFilename:    submissions[i].OriginalFilename,
			submissionTimestamp: submissions[i].SubmissionTimestamp,
		}
	}

	results := make([]SearchResultItem, 0, len(hits))
	for _, hit := range hits {
		meta, ok := byUUID[hit.SubmissionUUID]
		if !ok {
			continue
		}
		results = append(results, SearchResultItem{
			SubmissionUUID:      hit.SubmissionUUID,
			Score:               hit.Score,
			Status:              meta.status,
			OriginalFilename:    meta.originalFilename,
			SubmissionTimestamp: meta.submissionTimestamp,
		})
	}

	c.JSON(consts.StatusOK, SearchResponse{
		Query:   query,
		Total:   total,
		From:    from,
		Size:    size,
		Results: results,
	})
}

// storageSubmission 搜索回查时用到的展示字段
type storageSubmission struct {
	status              string
	originalFilename    string
	submissionTimestamp time.Time
}
