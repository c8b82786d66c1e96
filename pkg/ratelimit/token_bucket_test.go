package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucketAllowBurst(t *testing.T) {
	// 初始桶是满的,允许冷启动突发
	tb := NewTokenBucket(60, 5)

	for i := 0; i < 5; i++ {
		assert.True(t, tb.Allow(), "第%d次请求应在突发容量内", i+1)
	}
	assert.False(t, tb.Allow(), "超出突发容量应被拒绝")
}

func TestTokenBucketCapacityDefaults(t *testing.T) {
	tb := NewTokenBucket(60, 0)
	assert.Equal(t, 30.0, tb.capacity, "容量缺省为qpm的一半")
	assert.Equal(t, 1.0, tb.rate, "60 qpm应折算为每秒1个令牌")

	tiny := NewTokenBucket(1, 0)
	assert.Equal(t, 1.0, tiny.capacity, "容量最小为1")

	explicit := NewTokenBucket(120, 5)
	assert.Equal(t, 5.0, explicit.capacity)
	assert.Equal(t, 2.0, explicit.rate)
}

func TestTokenBucketRefill(t *testing.T) {
	// 100 tokens/s,容量2
	tb := NewTokenBucket(6000, 2)

	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow(), "桶空后应被拒绝")

	// 等待补充,令牌数封顶在容量
	time.Sleep(100 * time.Millisecond)
	assert.True(t, tb.Allow(), "补充后应重新放行")
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow(), "补充量不应超过桶容量")
}

func TestTokenBucketWaitPaces(t *testing.T) {
	// 10 tokens/s,容量1:第二次获取需要等约100ms
	tb := NewTokenBucket(600, 1)
	require.True(t, tb.Allow())

	start := time.Now()
	err := tb.Wait(context.Background())
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond, "Wait应阻塞到令牌补充")
	assert.Less(t, elapsed, 3*time.Second)
}

func TestTokenBucketWaitContextCanceled(t *testing.T) {
	// 1 qpm:下一个令牌要等约60秒,上下文超时应抢先返回
	tb := NewTokenBucket(1, 1)
	require.True(t, tb.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := tb.Wait(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second, "取消后不应继续等待令牌")
}

func TestRetryWithBackoffSuccessAfterRetry(t *testing.T) {
	tb := NewTokenBucket(600000, 10).WithRetryPolicy(10*time.Millisecond, 3)

	attempts := 0
	err := tb.RetryWithBackoff(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("read tcp: connection reset by peer")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts, "瞬时错误应重试到成功")
}

func TestRetryWithBackoffNonRetryable(t *testing.T) {
	tb := NewTokenBucket(600000, 10).WithRetryPolicy(10*time.Millisecond, 3)

	attempts := 0
	err := tb.RetryWithBackoff(context.Background(), func() error {
		attempts++
		return errors.New("简历格式无效")
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts, "业务错误不应重试")
}

func TestRetryWithBackoffExhausted(t *testing.T) {
	tb := NewTokenBucket(600000, 10).WithRetryPolicy(10*time.Millisecond, 2)

	attempts := 0
	err := tb.RetryWithBackoff(context.Background(), func() error {
		attempts++
		return errors.New("dial tcp: i/o timeout")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
	assert.Equal(t, 3, attempts, "首次执行加两次重试后放弃")
}

func TestRetryWithBackoffContextCanceled(t *testing.T) {
	// 退避等待期间上下文取消应立即退出
	tb := NewTokenBucket(600000, 10).WithRetryPolicy(5*time.Second, 3)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	attempts := 0
	start := time.Now()
	err := tb.RetryWithBackoff(ctx, func() error {
		attempts++
		return errors.New("connection refused")
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, attempts)
	assert.Less(t, time.Since(start), 2*time.Second, "不应等完整个退避周期")
}

func TestIsRetryableError(t *testing.T) {
	retryable := []error{
		errors.New("dial tcp: i/o timeout"),
		errors.New("context deadline exceeded"),
		errors.New("read: connection reset by peer"),
		errors.New("unexpected EOF"),
		errors.New("dial tcp: connection refused"),
		errors.New("429 Too Many Requests"),
		errors.New("rate limit exceeded"),
		errors.New("lookup minio: no such host"),
	}
	for _, err := range retryable {
		assert.True(t, isRetryableError(err), "应判定为可重试: %v", err)
	}

	permanent := []error{
		errors.New("记录不存在"),
		errors.New("invalid argument"),
		errors.New("简历解析失败"),
	}
	for _, err := range permanent {
		assert.False(t, isRetryableError(err), "应判定为不可重试: %v", err)
	}
	assert.False(t, isRetryableError(nil))
}
