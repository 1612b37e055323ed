package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerManager_ProcessesJobs(t *testing.T) {
	w := NewWorkerManager(10, 3)
	var sum int64
	w.SetWorker(func(ctx context.Context, workerIndex int, job interface{}) {
		atomic.AddInt64(&sum, int64(job.(int)))
	})

	done := make(chan error, 1)
	go func() { done <- w.Start(context.Background()) }()

	for i := 1; i <= 10; i++ {
		require.NoError(t, w.Enqueue(context.Background(), i))
	}

	assert.Eventually(t, func() bool { return atomic.LoadInt64(&sum) == 55 }, time.Second, 5*time.Millisecond)

	w.Exit()
	w.Exit()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrStopped)
	case <-time.After(time.Second):
		t.Fatal("workers did not stop")
	}

	assert.ErrorIs(t, w.Enqueue(context.Background(), 1), ErrStopped)
}

func TestWorkerManager_StopsOnContext(t *testing.T) {
	w := NewWorkerManager(1, 2)
	w.SetWorker(func(ctx context.Context, workerIndex int, job interface{}) {})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrStopped)
	case <-time.After(time.Second):
		t.Fatal("workers did not stop")
	}
}

func TestWorkerManager_RequiresHandler(t *testing.T) {
	w := NewWorkerManager(1, 1)
	assert.Error(t, w.Start(context.Background()))
	assert.Equal(t, 1, w.Size())
}

func TestWorkerManager_EnqueueRespectsContext(t *testing.T) {
	w := NewWorkerManager(1, 1)
	require.NoError(t, w.Enqueue(context.Background(), 1))
	assert.Equal(t, int64(1), w.GetUnreadCount())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, w.Enqueue(ctx, 2), context.DeadlineExceeded)
}
