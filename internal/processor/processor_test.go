package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/nimasrn/purchase-ledger/internal/model"
	"github.com/nimasrn/purchase-ledger/internal/queue"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCompensator struct {
	mock.Mock
}

func (m *MockCompensator) Compensate(ctx context.Context, transactionID int64) (*model.CompensationResult, error) {
	args := m.Called(ctx, transactionID)
	if res := args.Get(0); res != nil {
		return res.(*model.CompensationResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func compensationMessage(t *testing.T, req model.CompensationRequest) *queue.Message {
	t.Helper()
	data, err := json.Marshal(req)
	require.NoError(t, err)
	return &queue.Message{ID: "1-0", Data: data, Attempts: 1}
}

func okResult(id int64) *model.CompensationResult {
	return &model.CompensationResult{TransactionID: id, RefundedAmount: decimal.NewFromInt(2), RestoredItems: 1}
}

func TestCompensationProcessor_Process(t *testing.T) {
	ctx := context.Background()

	t.Run("compensates once per request", func(t *testing.T) {
		_, adapter := setupTestRedis(t)
		comp := new(MockCompensator)
		p := NewCompensationProcessor(comp, NewIdempotencyService(adapter, testIdempotencyConfig()))
		comp.On("Compensate", mock.Anything, int64(7)).Return(okResult(7), nil).Once()

		msg := compensationMessage(t, model.CompensationRequest{RequestID: "r-1", TransactionID: 7})
		require.NoError(t, p.Process(ctx, msg))
		require.NoError(t, p.Process(ctx, msg))

		comp.AssertExpectations(t)
		assert.Equal(t, "compensation", p.GetType())
	})

	t.Run("transient failure is retried", func(t *testing.T) {
		_, adapter := setupTestRedis(t)
		comp := new(MockCompensator)
		idem := NewIdempotencyService(adapter, testIdempotencyConfig())
		p := NewCompensationProcessor(comp, idem)
		comp.On("Compensate", mock.Anything, int64(7)).Return(nil, errors.New("connection reset")).Once()
		comp.On("Compensate", mock.Anything, int64(7)).Return(okResult(7), nil).Once()

		msg := compensationMessage(t, model.CompensationRequest{RequestID: "r-1", TransactionID: 7})
		assert.Error(t, p.Process(ctx, msg))

		count, err := idem.GetRetryCount(ctx, "r-1")
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		require.NoError(t, p.Process(ctx, msg))
		comp.AssertExpectations(t)
	})

	t.Run("retries exhausted", func(t *testing.T) {
		_, adapter := setupTestRedis(t)
		comp := new(MockCompensator)
		p := NewCompensationProcessor(comp, NewIdempotencyService(adapter, testIdempotencyConfig()))
		comp.On("Compensate", mock.Anything, int64(7)).Return(nil, errors.New("connection reset")).Twice()

		msg := compensationMessage(t, model.CompensationRequest{RequestID: "r-1", TransactionID: 7})
		assert.Error(t, p.Process(ctx, msg))
		assert.Error(t, p.Process(ctx, msg))

		err := p.Process(ctx, msg)
		assert.ErrorIs(t, err, ErrMaxRetriesExceeded)
		comp.AssertExpectations(t)
	})

	t.Run("catalog error is not retried", func(t *testing.T) {
		_, adapter := setupTestRedis(t)
		comp := new(MockCompensator)
		idem := NewIdempotencyService(adapter, testIdempotencyConfig())
		p := NewCompensationProcessor(comp, idem)
		comp.On("Compensate", mock.Anything, int64(9)).Return(nil, model.ErrTransactionNotFound).Once()

		msg := compensationMessage(t, model.CompensationRequest{RequestID: "r-2", TransactionID: 9})
		require.NoError(t, p.Process(ctx, msg))
		require.NoError(t, p.Process(ctx, msg))

		processed, err := idem.IsProcessed(ctx, "r-2")
		require.NoError(t, err)
		assert.True(t, processed)
		comp.AssertExpectations(t)
	})

	t.Run("message id stands in for a missing request id", func(t *testing.T) {
		_, adapter := setupTestRedis(t)
		comp := new(MockCompensator)
		idem := NewIdempotencyService(adapter, testIdempotencyConfig())
		p := NewCompensationProcessor(comp, idem)
		comp.On("Compensate", mock.Anything, int64(3)).Return(okResult(3), nil).Once()

		require.NoError(t, p.Process(ctx, compensationMessage(t, model.CompensationRequest{TransactionID: 3})))

		processed, err := idem.IsProcessed(ctx, "1-0")
		require.NoError(t, err)
		assert.True(t, processed)
	})

	t.Run("malformed payload", func(t *testing.T) {
		_, adapter := setupTestRedis(t)
		comp := new(MockCompensator)
		p := NewCompensationProcessor(comp, NewIdempotencyService(adapter, testIdempotencyConfig()))

		assert.Error(t, p.Process(ctx, &queue.Message{ID: "1-0", Data: []byte("{")}))
		assert.Error(t, p.Process(ctx, compensationMessage(t, model.CompensationRequest{RequestID: "r-3"})))
		comp.AssertNotCalled(t, "Compensate", mock.Anything, mock.Anything)
	})
}

func TestProcessorService_ConsumesQueue(t *testing.T) {
	_, adapter := setupTestRedis(t)
	comp := new(MockCompensator)
	done := make(chan int64, 2)
	comp.On("Compensate", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { done <- args.Get(1).(int64) }).
		Return(okResult(0), nil)

	qc := queue.QueueConfig{
		Name:              "test:compensation",
		ConsumerGroup:     "compensators",
		ConsumerName:      "test",
		MaxRetries:        3,
		VisibilityTimeout: time.Second,
		PollInterval:      10 * time.Millisecond,
		BatchSize:         10,
		EnableDLQ:         true,
	}

	svc, err := NewProcessorService(adapter, NewCompensationProcessor(comp, NewIdempotencyService(adapter, testIdempotencyConfig())), Options{Queue: qc, Consumers: 2, Workers: 2})
	require.NoError(t, err)
	require.NoError(t, svc.Start())

	publisher, err := queue.NewQueue(adapter, qc)
	require.NoError(t, err)
	ctx := context.Background()
	for _, id := range []int64{11, 12} {
		_, err := publisher.PublishJSON(ctx, model.CompensationRequest{RequestID: fmt.Sprintf("req-%d", id), TransactionID: id}, nil)
		require.NoError(t, err)
	}

	seen := map[int64]bool{}
	for len(seen) < 2 {
		select {
		case id := <-done:
			seen[id] = true
		case <-time.After(2 * time.Second):
			t.Fatalf("compensations not processed, saw %v", seen)
		}
	}

	svc.Stop()

	assert.True(t, seen[11])
	assert.True(t, seen[12])
	assert.Equal(t, int64(2), svc.Metrics().Snapshot().Processed)

	stats, err := publisher.GetStats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.PendingMessages)
}

func TestNewProcessorService_RequiresProcessor(t *testing.T) {
	_, adapter := setupTestRedis(t)
	_, err := NewProcessorService(adapter, nil, Options{})
	assert.Error(t, err)
}

func TestServiceMetrics(t *testing.T) {
	m := NewServiceMetrics()
	m.RecordSuccess(10 * time.Millisecond)
	m.RecordSuccess(30 * time.Millisecond)
	m.RecordFailure()

	s := m.Snapshot()
	assert.Equal(t, int64(2), s.Processed)
	assert.Equal(t, int64(1), s.Failed)
	assert.Equal(t, 20*time.Millisecond, s.AvgDuration)

	m.Reset()
	assert.Zero(t, m.Snapshot().Processed)
}
