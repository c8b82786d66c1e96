package storage

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/types"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// 定义搜索索引的专用tracer
var searchIndexTracer = otel.Tracer("resume-parser-go/storage/searchindex")

// KeywordSearcher 关键词搜索接口
type KeywordSearcher interface {
	// IndexParsedResume 将一份解析完成的简历写入索引
	IndexParsedResume(ctx context.Context, submissionUUID string, record *types.ResumeRecord, parserVersion string) error

	// DeleteResume 从索引中删除一份简历
	DeleteResume(ctx context.Context, submissionUUID string) error

	// Search 按关键词搜索简历，返回按相关度排序的命中列表
	Search(ctx context.Context, queryText string, from, size int) ([]ResumeHit, int64, error)
}

// 确保SearchIndex实现了KeywordSearcher接口
var _ KeywordSearcher = (*SearchIndex)(nil)

// ResumeHit 表示一条搜索命中
type ResumeHit struct {
	SubmissionUUID string  // 简历提交UUID
	Score          float64 // 相关度分数
}

// resumeSearchDocument 是写入bleve的扁平化文档。
// 把结构化的解析结果拍平成若干可检索字段，让一条match查询
// 就能覆盖技能、公司、职位、学校等所有维度。
type resumeSearchDocument struct {
	SubmissionUUID string    `json:"submission_uuid"`
	Skills         string    `json:"skills"`
	Companies      string    `json:"companies"`
	JobTitles      string    `json:"job_titles"`
	Institutions   string    `json:"institutions"`
	Degrees        string    `json:"degrees"`
	Certifications string    `json:"certifications"`
	Projects       string    `json:"projects"`
	Content        string    `json:"content"`
	Emails         []string  `json:"emails"`
	ParserVersion  string    `json:"parser_version"`
	IndexedAt      time.Time `json:"indexed_at"`
}

// SearchIndex 基于bleve的简历关键词搜索索引。
// 替代向量检索方案：解析结果本身就是结构化文本，倒排索引足以支撑
// 按技能/公司/学校等关键词召回，且无需外部服务。
type SearchIndex struct {
	index        bleve.Index
	path         string
	defaultLimit int
	mu           sync.RWMutex
}

// SearchIndexOption 定义SearchIndex构造函数选项
type SearchIndexOption func(*SearchIndex)

// WithDefaultSearchLimit 设置默认返回条数
func WithDefaultSearchLimit(limit int) SearchIndexOption {
	return func(s *SearchIndex) {
		if limit > 0 {
			s.defaultLimit = limit
		}
	}
}

// NewSearchIndex 创建或打开简历搜索索引。
// cfg.Path为空或cfg.InMemory为true时使用纯内存索引（测试场景），
// 否则在磁盘目录上创建/打开持久化索引。
func NewSearchIndex(cfg *config.SearchIndexConfig, opts ...SearchIndexOption) (*SearchIndex, error) {
	if cfg == nil {
		return nil, fmt.Errorf("搜索索引配置不能为空")
	}

	s := &SearchIndex{
		path:         cfg.Path,
		defaultLimit: cfg.DefaultSearchLimit,
	}
	if s.defaultLimit <= 0 {
		s.defaultLimit = 10
	}

	for _, opt := range opts {
		opt(s)
	}

	var (
		idx bleve.Index
		err error
	)

	if cfg.InMemory || cfg.Path == "" {
		idx, err = bleve.NewMemOnly(buildResumeIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("创建内存搜索索引失败: %w", err)
		}
	} else {
		if _, statErr := os.Stat(cfg.Path); os.IsNotExist(statErr) {
			idx, err = bleve.New(cfg.Path, buildResumeIndexMapping())
			if err != nil {
				return nil, fmt.Errorf("创建搜索索引 '%s' 失败: %w", cfg.Path, err)
			}
		} else {
			idx, err = bleve.Open(cfg.Path)
			if err != nil {
				return nil, fmt.Errorf("打开搜索索引 '%s' 失败: %w", cfg.Path, err)
			}
		}
	}

	s.index = idx
	return s, nil
}

// buildResumeIndexMapping 构建简历文档的索引映射。
// 文本字段使用standard分词器参与全文检索；
// parser_version和emails作为keyword字段支持精确过滤。
func buildResumeIndexMapping() mapping.IndexMapping {
	docMapping := bleve.NewDocumentMapping()

	textField := bleve.NewTextFieldMapping()
	textField.Analyzer = standard.Name
	textField.Store = false

	for _, field := range []string{
		"skills", "companies", "job_titles",
		"institutions", "degrees", "certifications",
		"projects", "content",
	} {
		docMapping.AddFieldMappingsAt(field, textField)
	}

	// submission_uuid需要存储并随命中返回，不参与_all检索
	uuidField := bleve.NewKeywordFieldMapping()
	uuidField.Store = true
	uuidField.IncludeInAll = false
	docMapping.AddFieldMappingsAt("submission_uuid", uuidField)

	keywordField := bleve.NewKeywordFieldMapping()
	keywordField.IncludeInAll = false
	docMapping.AddFieldMappingsAt("parser_version", keywordField)
	docMapping.AddFieldMappingsAt("emails", keywordField)

	dateField := bleve.NewDateTimeFieldMapping()
	dateField.IncludeInAll = false
	docMapping.AddFieldMappingsAt("indexed_at", dateField)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = standard.Name

	return indexMapping
}

// buildSearchDocument 把解析结果拍平成可索引文档
func buildSearchDocument(submissionUUID string, record *types.ResumeRecord, parserVersion string) resumeSearchDocument {
	doc := resumeSearchDocument{
		SubmissionUUID: submissionUUID,
		ParserVersion:  parserVersion,
		IndexedAt:      time.Now().UTC(),
	}

	if record == nil {
		return doc
	}

	doc.Skills = strings.Join(record.Skills.All, " ")

	var companies, titles []string
	for _, exp := range record.Experience {
		if exp.Company != "" {
			companies = append(companies, exp.Company)
		}
		if exp.JobTitle != "" {
			titles = append(titles, exp.JobTitle)
		}
	}
	doc.Companies = strings.Join(companies, " ")
	doc.JobTitles = strings.Join(titles, " ")

	var institutions, degrees []string
	for _, edu := range record.Education {
		if edu.Institution != "" {
			institutions = append(institutions, edu.Institution)
		}
		if edu.Degree != "" {
			degrees = append(degrees, edu.Degree)
		}
	}
	doc.Institutions = strings.Join(institutions, " ")
	doc.Degrees = strings.Join(degrees, " ")

	var certs []string
	for _, cert := range record.Certifications {
		if cert.Name != "" {
			certs = append(certs, cert.Name)
		}
	}
	doc.Certifications = strings.Join(certs, " ")

	var projects []string
	for _, proj := range record.Projects {
		if proj.Name != "" {
			projects = append(projects, proj.Name)
		}
	}
	doc.Projects = strings.Join(projects, " ")

	// 正文字段取各条目的描述性文本，保证仅凭数据库记录就能重建索引
	var content []string
	for _, exp := range record.Experience {
		content = append(content, exp.Responsibilities...)
	}
	for _, proj := range record.Projects {
		content = append(content, proj.Description...)
	}
	doc.Content = strings.Join(content, "\n")

	doc.Emails = append(doc.Emails, record.Contact.Emails...)

	return doc
}

// IndexParsedResume 将解析完成的简历写入索引。
// 同一submissionUUID重复写入时覆盖旧文档，天然支持重新解析后的更新。
func (s *SearchIndex) IndexParsedResume(ctx context.Context, submissionUUID string, record *types.ResumeRecord, parserVersion string) error {
	_, span := searchIndexTracer.Start(ctx, "SearchIndex.IndexParsedResume",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "bleve"),
			attribute.String("db.operation", "index"),
			attribute.String("submission_uuid", submissionUUID),
		))
	defer span.End()

	if submissionUUID == "" {
		err := fmt.Errorf("submissionUUID不能为空")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	doc := buildSearchDocument(submissionUUID, record, parserVersion)

	s.mu.Lock()
	err := s.index.Index(submissionUUID, doc)
	s.mu.Unlock()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("写入搜索索引失败 (uuid: %s): %w", submissionUUID, err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// DeleteResume 从索引中删除一份简历。文档不存在时不视为错误。
func (s *SearchIndex) DeleteResume(ctx context.Context, submissionUUID string) error {
	_, span := searchIndexTracer.Start(ctx, "SearchIndex.DeleteResume",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "bleve"),
			attribute.String("db.operation", "delete"),
			attribute.String("submission_uuid", submissionUUID),
		))
	defer span.End()

	s.mu.Lock()
	err := s.index.Delete(submissionUUID)
	s.mu.Unlock()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("从搜索索引删除失败 (uuid: %s): %w", submissionUUID, err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Search 按关键词搜索简历。
// 查询词经match解析后在_all复合字段上检索，覆盖全部文本字段；
// from/size做结果分页，size<=0时回退到默认条数。
// 返回命中列表、总命中数和错误。
func (s *SearchIndex) Search(ctx context.Context, queryText string, from, size int) ([]ResumeHit, int64, error) {
	_, span := searchIndexTracer.Start(ctx, "SearchIndex.Search",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "bleve"),
			attribute.String("db.operation", "search"),
			attribute.Int("search.from", from),
			attribute.Int("search.size", size),
		))
	defer span.End()

	queryText = strings.TrimSpace(queryText)
	if queryText == "" {
		err := fmt.Errorf("搜索关键词不能为空")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, err
	}

	if size <= 0 {
		size = s.defaultLimit
	}
	if from < 0 {
		from = 0
	}

	query := bleve.NewMatchQuery(queryText)
	searchRequest := bleve.NewSearchRequest(query)
	searchRequest.From = from
	searchRequest.Size = size
	searchRequest.Fields = []string{"submission_uuid"}

	s.mu.RLock()
	result, err := s.index.Search(searchRequest)
	s.mu.RUnlock()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("搜索索引查询失败: %w", err)
	}

	hits := make([]ResumeHit, 0, len(result.Hits))
	for _, hit := range result.Hits {
		h := ResumeHit{
			SubmissionUUID: hit.ID,
			Score:          hit.Score,
		}
		// 优先从存储字段取UUID，文档ID兜底
		if v, ok := hit.Fields["submission_uuid"].(string); ok && v != "" {
			h.SubmissionUUID = v
		}
		hits = append(hits, h)
	}

	span.SetAttributes(attribute.Int64("search.total_hits", int64(result.Total)))
	span.SetStatus(codes.Ok, "")
	return hits, int64(result.Total), nil
}

// Count 返回索引中的文档总数，供重建索引后校验使用
func (s *SearchIndex) Count(ctx context.Context) (uint64, error) {
	_, span := searchIndexTracer.Start(ctx, "SearchIndex.Count",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("db.system", "bleve")))
	defer span.End()

	s.mu.RLock()
	count, err := s.index.DocCount()
	s.mu.RUnlock()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("获取索引文档数失败: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return count, nil
}

// Close 关闭底层索引
func (s *SearchIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return nil
	}
	err := s.index.Close()
	s.index = nil
	return err
}
