package storage

import (
	"context"
	"path/filepath"
	"testing"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMemorySearchIndex 创建测试用的纯内存索引
func newMemorySearchIndex(t *testing.T) *SearchIndex {
	t.Helper()
	idx, err := NewSearchIndex(&config.SearchIndexConfig{InMemory: true, DefaultSearchLimit: 10})
	require.NoError(t, err, "创建内存索引不应失败")
	t.Cleanup(func() { idx.Close() })
	return idx
}

// sampleResumeRecord 构造一份字段齐全的解析结果
func sampleResumeRecord() *types.ResumeRecord {
	record := types.NewResumeRecord()
	record.Skills.All = []string{"Go", "Kubernetes", "PostgreSQL"}
	record.Experience = []types.ExperienceEntry{
		{
			JobTitle:         "Backend Engineer",
			Company:          "Acme Corp",
			Responsibilities: []string{"Built distributed task pipelines in Go"},
		},
	}
	record.Education = []types.EducationEntry{
		{Degree: "Bachelor of Science", Institution: "Tsinghua University"},
	}
	record.Certifications = []types.CertificationEntry{{Name: "Certified Kubernetes Administrator"}}
	record.Projects = []types.ProjectEntry{
		{Name: "Log Pipeline", Description: []string{"Streaming ingestion with RabbitMQ"}},
	}
	record.Contact.Emails = []string{"dev@example.com"}
	return record
}

func TestSearchIndexRoundTrip(t *testing.T) {
	idx := newMemorySearchIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.IndexParsedResume(ctx, "uuid-go", sampleResumeRecord(), "v1.0"))

	pythonRecord := types.NewResumeRecord()
	pythonRecord.Skills.All = []string{"Python", "Django"}
	require.NoError(t, idx.IndexParsedResume(ctx, "uuid-python", pythonRecord, "v1.0"))

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count, "索引中应有两份简历")

	// 按技能检索只命中对应简历
	hits, total, err := idx.Search(ctx, "Kubernetes", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, hits, 1)
	assert.Equal(t, "uuid-go", hits[0].SubmissionUUID)
	assert.Greater(t, hits[0].Score, 0.0, "命中应有相关度分数")

	hits, total, err = idx.Search(ctx, "Django", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, hits, 1)
	assert.Equal(t, "uuid-python", hits[0].SubmissionUUID)

	// 公司名、学校名同样可检索
	_, total, err = idx.Search(ctx, "Acme", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total, "公司名应参与检索")

	_, total, err = idx.Search(ctx, "Tsinghua", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total, "学校名应参与检索")
}

func TestSearchIndexOverwrite(t *testing.T) {
	idx := newMemorySearchIndex(t)
	ctx := context.Background()

	first := types.NewResumeRecord()
	first.Skills.All = []string{"Java"}
	require.NoError(t, idx.IndexParsedResume(ctx, "uuid-1", first, "v1.0"))

	// 同一UUID重复写入应覆盖旧文档
	second := types.NewResumeRecord()
	second.Skills.All = []string{"Go"}
	require.NoError(t, idx.IndexParsedResume(ctx, "uuid-1", second, "v1.1"))

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count, "覆盖写入不应增加文档数")

	_, total, err := idx.Search(ctx, "Java", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total, "旧技能不应再命中")

	_, total, err = idx.Search(ctx, "Go", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestSearchIndexDelete(t *testing.T) {
	idx := newMemorySearchIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.IndexParsedResume(ctx, "uuid-1", sampleResumeRecord(), "v1.0"))
	require.NoError(t, idx.DeleteResume(ctx, "uuid-1"))

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	_, total, err := idx.Search(ctx, "Kubernetes", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	// 删除不存在的文档不视为错误
	assert.NoError(t, idx.DeleteResume(ctx, "uuid-missing"))
}

func TestSearchIndexPagination(t *testing.T) {
	idx := newMemorySearchIndex(t)
	ctx := context.Background()

	for _, uuid := range []string{"uuid-1", "uuid-2", "uuid-3"} {
		record := types.NewResumeRecord()
		record.Skills.All = []string{"Go"}
		require.NoError(t, idx.IndexParsedResume(ctx, uuid, record, "v1.0"))
	}

	hits, total, err := idx.Search(ctx, "Go", 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total, "total应为全部命中数")
	assert.Len(t, hits, 2, "第一页只返回size条")

	hits, _, err = idx.Search(ctx, "Go", 2, 2)
	require.NoError(t, err)
	assert.Len(t, hits, 1, "第二页返回剩余命中")

	// size<=0 回退到默认条数
	hits, _, err = idx.Search(ctx, "Go", 0, 0)
	require.NoError(t, err)
	assert.Len(t, hits, 3)
}

func TestSearchIndexEmptyQuery(t *testing.T) {
	idx := newMemorySearchIndex(t)

	_, _, err := idx.Search(context.Background(), "   ", 0, 10)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "搜索关键词不能为空")
}

func TestSearchIndexEmptyUUID(t *testing.T) {
	idx := newMemorySearchIndex(t)

	err := idx.IndexParsedResume(context.Background(), "", sampleResumeRecord(), "v1.0")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "submissionUUID不能为空")
}

func TestSearchIndexNilRecord(t *testing.T) {
	idx := newMemorySearchIndex(t)
	ctx := context.Background()

	// record为nil时仍写入占位文档,避免重建索引流程因个别脏数据中断
	require.NoError(t, idx.IndexParsedResume(ctx, "uuid-nil", nil, "v1.0"))

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	_, total, err := idx.Search(ctx, "resume", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total, "占位文档没有可检索文本")
}

func TestSearchIndexNilConfig(t *testing.T) {
	_, err := NewSearchIndex(nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "配置不能为空")
}

func TestSearchIndexDefaultLimit(t *testing.T) {
	idx, err := NewSearchIndex(&config.SearchIndexConfig{InMemory: true})
	require.NoError(t, err)
	defer idx.Close()
	assert.Equal(t, 10, idx.defaultLimit, "未配置时默认返回10条")

	idx2, err := NewSearchIndex(&config.SearchIndexConfig{InMemory: true, DefaultSearchLimit: 5},
		WithDefaultSearchLimit(25))
	require.NoError(t, err)
	defer idx2.Close()
	assert.Equal(t, 25, idx2.defaultLimit, "选项应覆盖配置值")
}

func TestSearchIndexPersistentReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume-index")
	cfg := &config.SearchIndexConfig{Path: path, DefaultSearchLimit: 10}
	ctx := context.Background()

	idx, err := NewSearchIndex(cfg)
	require.NoError(t, err, "创建磁盘索引不应失败")
	require.NoError(t, idx.IndexParsedResume(ctx, "uuid-1", sampleResumeRecord(), "v1.0"))
	require.NoError(t, idx.Close())

	// 重新打开后数据仍在
	reopened, err := NewSearchIndex(cfg)
	require.NoError(t, err, "打开已有索引不应失败")
	defer reopened.Close()

	count, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count, "重新打开后文档应保留")

	_, total, err := reopened.Search(ctx, "Kubernetes", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestBuildSearchDocument(t *testing.T) {
	doc := buildSearchDocument("uuid-1", sampleResumeRecord(), "v2.0")

	assert.Equal(t, "uuid-1", doc.SubmissionUUID)
	assert.Equal(t, "v2.0", doc.ParserVersion)
	assert.False(t, doc.IndexedAt.IsZero())
	assert.Equal(t, "Go Kubernetes PostgreSQL", doc.Skills)
	assert.Equal(t, "Acme Corp", doc.Companies)
	assert.Equal(t, "Backend Engineer", doc.JobTitles)
	assert.Equal(t, "Tsinghua University", doc.Institutions)
	assert.Equal(t, "Bachelor of Science", doc.Degrees)
	assert.Equal(t, "Certified Kubernetes Administrator", doc.Certifications)
	assert.Equal(t, "Log Pipeline", doc.Projects)
	assert.Contains(t, doc.Content, "Built distributed task pipelines in Go")
	assert.Contains(t, doc.Content, "Streaming ingestion with RabbitMQ")
	assert.Equal(t, []string{"dev@example.com"}, doc.Emails)

	// nil记录只保留标识字段
	empty := buildSearchDocument("uuid-2", nil, "v2.0")
	assert.Equal(t, "uuid-2", empty.SubmissionUUID)
	assert.Empty(t, empty.Skills)
	assert.Empty(t, empty.Content)
}
