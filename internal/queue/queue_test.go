package queue

import (
	"context"
	"errors"
	"sync/atomic"
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

func testConfig() QueueConfig {
	return QueueConfig{
		Name:              "test:compensation",
		ConsumerGroup:     "test-group",
		ConsumerName:      "test-consumer",
		MaxRetries:        2,
		VisibilityTimeout: 50 * time.Millisecond,
		PollInterval:      20 * time.Millisecond,
		BatchSize:         10,
		MaxLen:            1000,
		EnableDLQ:         true,
	}
}

type payload struct {
	TransactionID int64 `json:"transactionId"`
}

func TestQueue_PublishAndPoll(t *testing.T) {
	_, adapter := setupTestRedis(t)
	ctx := context.Background()

	q, err := NewQueue(adapter, testConfig())
	require.NoError(t, err)

	_, err = q.PublishJSON(ctx, payload{TransactionID: 42}, map[string]string{"request_id": "r-1"})
	require.NoError(t, err)

	var got *Message
	q.handler = func(ctx context.Context, msg *Message) error {
		got = msg
		return nil
	}
	q.Poll(ctx)

	require.NotNil(t, got)
	var p payload
	require.NoError(t, got.DecodeJSON(&p))
	assert.Equal(t, int64(42), p.TransactionID)
	assert.Equal(t, "r-1", got.Metadata["request_id"])
	assert.Equal(t, 1, got.Attempts)
	assert.WithinDuration(t, time.Now(), got.Timestamp, 5*time.Second)

	stats, err := q.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalMessages)
	assert.Zero(t, stats.PendingMessages, "handled message is acked")
}

func TestQueue_GroupAlreadyExists(t *testing.T) {
	_, adapter := setupTestRedis(t)

	_, err := NewQueue(adapter, testConfig())
	require.NoError(t, err)
	_, err = NewQueue(adapter, testConfig())
	require.NoError(t, err)

	_, err = NewQueue(adapter, QueueConfig{})
	assert.Error(t, err)
}

func TestQueue_RetryThenDeadLetter(t *testing.T) {
	_, adapter := setupTestRedis(t)
	ctx := context.Background()

	q, err := NewQueue(adapter, testConfig())
	require.NoError(t, err)

	_, err = q.PublishJSON(ctx, payload{TransactionID: 7}, nil)
	require.NoError(t, err)

	var attempts []int
	q.handler = func(ctx context.Context, msg *Message) error {
		attempts = append(attempts, msg.Attempts)
		return errors.New("database unavailable")
	}

	q.Poll(ctx)
	stats, err := q.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.PendingMessages, "failed message stays pending")

	for i := 0; i < 2; i++ {
		time.Sleep(80 * time.Millisecond)
		q.Poll(ctx)
	}

	assert.Equal(t, []int{1, 2}, attempts)

	stats, err = q.GetStats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.PendingMessages)
	assert.Equal(t, int64(1), stats.DeadLetters)
}

func TestQueue_ConsumeAndStop(t *testing.T) {
	_, adapter := setupTestRedis(t)
	ctx := context.Background()

	q, err := NewQueue(adapter, testConfig())
	require.NoError(t, err)
	require.Error(t, q.Consume(nil))

	var handled atomic.Int32
	require.NoError(t, q.Consume(func(ctx context.Context, msg *Message) error {
		handled.Add(1)
		return nil
	}))

	for i := 0; i < 3; i++ {
		_, err := q.Publish(ctx, []byte(`{}`), nil)
		require.NoError(t, err)
	}

	assert.Eventually(t, func() bool { return handled.Load() == 3 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, q.Stop(time.Second))
}

func TestStreamMessageToMessage(t *testing.T) {
	msg := streamMessageToMessage(redis.StreamMessage{
		ID: "1700000000000-0",
		Values: map[string]interface{}{
			"data":       `{"a":1}`,
			"meta_trace": "abc",
		},
	})
	assert.Equal(t, []byte(`{"a":1}`), msg.Data)
	assert.Equal(t, "abc", msg.Metadata["trace"])
	assert.Equal(t, int64(1700000000000), msg.Timestamp.UnixMilli())
}
