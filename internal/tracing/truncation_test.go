package tracing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskPII(t *testing.T) {
	// 空值与单字符
	assert.Equal(t, "", MaskPII(""))
	assert.Equal(t, "*", MaskPII("A"))

	// 短字符串:中文姓名
	assert.Equal(t, "张*", MaskPII("张三"))
	assert.Equal(t, "王*明", MaskPII("王小明"))
	assert.Equal(t, "a**d", MaskPII("abcd"))

	// 长字符串保留首尾各2位
	assert.Equal(t, "13*******78", MaskPII("13812345678"))
	assert.Equal(t, "de***********om", MaskPII("dev@example.com"))
}

func TestTruncateString(t *testing.T) {
	// 长度未超限时原样返回
	assert.Equal(t, "hello", TruncateString("hello", 10))
	assert.Equal(t, "hello", TruncateString("hello", 5))

	// 超限时保留首尾并用省略号连接
	assert.Equal(t, "ab...ij", TruncateString("abcdefghij", 7))

	// maxLength过小时直接硬截断
	assert.Equal(t, "abc", TruncateString("abcdef", 3))
	assert.Equal(t, "ab", TruncateString("abcdef", 2))

	// 按rune截断,多字节字符不会被截坏
	assert.Equal(t, "简历...文档", TruncateString("简历解析服务处理流程说明文档", 7))
}

func TestSafeAttributeValue(t *testing.T) {
	// 敏感字段名触发掩码
	assert.Equal(t, "de***********om", SafeAttributeValue("user.email", "dev@example.com", 200))
	assert.Equal(t, "13*******78", SafeAttributeValue("User.PHONE", "13812345678", 200), "字段名匹配应不区分大小写")
	assert.Equal(t, "张*", SafeAttributeValue("候选人姓名", "张三", 200))

	// token等凭证类字段同样掩码
	masked := SafeAttributeValue("auth.token", "abcd1234secret99", 200)
	assert.Equal(t, "ab************99", masked)

	// 非敏感字段只截断
	assert.Equal(t, "GET", SafeAttributeValue("http.method", "GET", 200))
	truncated := SafeAttributeValue("db.statement", strings.Repeat("SELECT ", 40), 10)
	assert.Contains(t, truncated, "...")
	assert.LessOrEqual(t, len([]rune(truncated)), 10)
}

func TestSafeSQL(t *testing.T) {
	short := "SELECT id FROM resume_submissions WHERE submission_uuid = ?"
	assert.Equal(t, short, SafeSQL(short), "短SQL不应被截断")

	long := "SELECT " + strings.Repeat("column_name, ", 50) + "id FROM resume_submissions"
	result := SafeSQL(long)
	assert.Contains(t, result, "...")
	assert.Equal(t, 499, len([]rune(result)), "截断后长度为首尾各248加省略号")
	assert.True(t, strings.HasPrefix(result, "SELECT "))
}

func TestSafeRedisKey(t *testing.T) {
	short := "resume_status:uuid-1234"
	assert.Equal(t, short, SafeRedisKey(short))

	long := "resume_status:" + strings.Repeat("a", 150)
	result := SafeRedisKey(long)
	assert.Contains(t, result, "...")
	assert.Equal(t, 99, len([]rune(result)))
	assert.True(t, strings.HasPrefix(result, "resume_status:"))
}

func TestSafeResumeContent(t *testing.T) {
	short := "工作经历:后端开发工程师"
	assert.Equal(t, short, SafeResumeContent(short))

	long := strings.Repeat("简历内容", 60)
	result := SafeResumeContent(long)
	assert.Contains(t, result, "...")
	assert.Equal(t, 149, len([]rune(result)), "截断后长度为首尾各73加省略号")
}
