package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nimasrn/purchase-ledger/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, redis.RedisAdapter) {
	mr := miniredis.RunT(t)
	client := goredis.NewUniversalClient(&goredis.UniversalOptions{Addrs: []string{mr.Addr()}})
	t.Cleanup(func() { _ = client.Close() })
	return mr, redis.NewFromClient(client, "")
}

func testIdempotencyConfig() IdempotencyConfig {
	cfg := DefaultIdempotencyConfig()
	cfg.LockTTL = time.Second
	cfg.MaxRetries = 2
	return cfg
}

func TestIdempotencyService_AcquireProcessingLock_FirstAttempt(t *testing.T) {
	mr, adapter := setupTestRedis(t)
	svc := NewIdempotencyService(adapter, testIdempotencyConfig())

	pc, err := svc.AcquireProcessingLock(context.Background(), "req-1")
	require.NoError(t, err)
	assert.Equal(t, "req-1", pc.RequestID)
	assert.Equal(t, 0, pc.RetryCount)
	assert.False(t, pc.IsRetry)
	assert.True(t, mr.Exists("compensation:lock:req-1"))
}

func TestIdempotencyService_AcquireProcessingLock_Concurrent(t *testing.T) {
	_, adapter := setupTestRedis(t)
	svc := NewIdempotencyService(adapter, testIdempotencyConfig())
	ctx := context.Background()

	_, err := svc.AcquireProcessingLock(ctx, "req-1")
	require.NoError(t, err)

	_, err = svc.AcquireProcessingLock(ctx, "req-1")
	assert.ErrorIs(t, err, ErrLockAcquireFailed)
}

func TestIdempotencyService_LockExpires(t *testing.T) {
	mr, adapter := setupTestRedis(t)
	svc := NewIdempotencyService(adapter, testIdempotencyConfig())
	ctx := context.Background()

	_, err := svc.AcquireProcessingLock(ctx, "req-1")
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	_, err = svc.AcquireProcessingLock(ctx, "req-1")
	assert.NoError(t, err)
}

func TestIdempotencyService_MarkSuccess(t *testing.T) {
	mr, adapter := setupTestRedis(t)
	svc := NewIdempotencyService(adapter, testIdempotencyConfig())
	ctx := context.Background()

	pc, err := svc.AcquireProcessingLock(ctx, "req-1")
	require.NoError(t, err)
	require.NoError(t, svc.MarkFailure(ctx, pc, errors.New("boom")))

	pc, err = svc.AcquireProcessingLock(ctx, "req-1")
	require.NoError(t, err)
	require.NoError(t, svc.MarkSuccess(ctx, pc))

	assert.False(t, mr.Exists("compensation:lock:req-1"))
	assert.False(t, mr.Exists("compensation:retry:req-1"))

	processed, err := svc.IsProcessed(ctx, "req-1")
	require.NoError(t, err)
	assert.True(t, processed)

	_, err = svc.AcquireProcessingLock(ctx, "req-1")
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestIdempotencyService_MarkFailure_WithRetry(t *testing.T) {
	_, adapter := setupTestRedis(t)
	svc := NewIdempotencyService(adapter, testIdempotencyConfig())
	ctx := context.Background()

	pc, err := svc.AcquireProcessingLock(ctx, "req-1")
	require.NoError(t, err)
	require.NoError(t, svc.MarkFailure(ctx, pc, errors.New("db down")))

	count, err := svc.GetRetryCount(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	pc, err = svc.AcquireProcessingLock(ctx, "req-1")
	require.NoError(t, err)
	assert.True(t, pc.IsRetry)
	assert.Equal(t, 1, pc.RetryCount)
}

func TestIdempotencyService_MaxRetriesExceeded(t *testing.T) {
	_, adapter := setupTestRedis(t)
	svc := NewIdempotencyService(adapter, testIdempotencyConfig())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		pc, err := svc.AcquireProcessingLock(ctx, "req-1")
		require.NoError(t, err)
		require.NoError(t, svc.MarkFailure(ctx, pc, errors.New("db down")))
	}

	_, err := svc.AcquireProcessingLock(ctx, "req-1")
	assert.ErrorIs(t, err, ErrMaxRetriesExceeded)
}

func TestIdempotencyService_ReleaseLock(t *testing.T) {
	mr, adapter := setupTestRedis(t)
	svc := NewIdempotencyService(adapter, testIdempotencyConfig())
	ctx := context.Background()

	pc, err := svc.AcquireProcessingLock(ctx, "req-1")
	require.NoError(t, err)
	require.NoError(t, svc.ReleaseLock(ctx, pc))
	assert.False(t, mr.Exists("compensation:lock:req-1"))

	// second release and nil context are no-ops
	assert.NoError(t, svc.ReleaseLock(ctx, pc))
	assert.NoError(t, svc.ReleaseLock(ctx, nil))
}

func TestIdempotencyService_GetRetryCount(t *testing.T) {
	mr, adapter := setupTestRedis(t)
	svc := NewIdempotencyService(adapter, testIdempotencyConfig())
	ctx := context.Background()

	count, err := svc.GetRetryCount(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, mr.Set("compensation:retry:bad", "x"))
	_, err = svc.GetRetryCount(ctx, "bad")
	assert.Error(t, err)
}
