package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimePtr(t *testing.T) {
	// 零值时间返回nil,数据库可空列不写入占位时间
	assert.Nil(t, TimePtr(time.Time{}))

	now := time.Now()
	ptr := TimePtr(now)
	require.NotNil(t, ptr)
	assert.True(t, ptr.Equal(now))
}

func TestCalculateMD5(t *testing.T) {
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", CalculateMD5(nil), "空输入应得到标准空摘要")
	assert.Equal(t, "900150983cd24fb0d6963f7d28e17f72", CalculateMD5([]byte("abc")))

	// 相同内容摘要一致,不同内容摘要不同
	assert.Equal(t, CalculateMD5([]byte("resume")), CalculateMD5([]byte("resume")))
	assert.NotEqual(t, CalculateMD5([]byte("resume")), CalculateMD5([]byte("resume!")))
}
