package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nimasrn/purchase-ledger/internal/queue"
	"github.com/nimasrn/purchase-ledger/pkg/logger"
	"github.com/nimasrn/purchase-ledger/pkg/prom"
	"github.com/nimasrn/purchase-ledger/pkg/redis"
	"github.com/nimasrn/purchase-ledger/pkg/worker"
)

const ProcessingTimeout = time.Second * 30
const HealthInterval = time.Second * 30
const MetricsInterval = time.Second * 30
const ShutdownTimeout = time.Minute
const HighLagThreshold = 1000

// Processor handles one kind of queue message.
type Processor interface {
	Process(ctx context.Context, message *queue.Message) error
	GetType() string
}

type Options struct {
	Queue     queue.QueueConfig
	Consumers int
	Workers   int
}

// ProcessorService reads a stream with a set of consumers of one group and
// hands every message to a worker pool running the registered processor.
type ProcessorService struct {
	adapter   redis.RedisAdapter
	options   Options
	queues    []*queue.Queue
	processor Processor
	metrics   *ServiceMetrics
	worker    *worker.WorkerManager
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewProcessorService(adapter redis.RedisAdapter, processor Processor, options Options) (*ProcessorService, error) {
	if processor == nil {
		return nil, fmt.Errorf("processor is required")
	}
	if options.Consumers <= 0 {
		options.Consumers = 1
	}
	if options.Workers <= 0 {
		options.Workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &ProcessorService{
		adapter:   adapter,
		options:   options,
		processor: processor,
		metrics:   NewServiceMetrics(),
		worker:    worker.NewWorkerManager(options.Workers*2, options.Workers),
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

func (s *ProcessorService) Metrics() *ServiceMetrics {
	return s.metrics
}

func (s *ProcessorService) Start() error {
	logger.Info("starting processor service", "type", s.processor.GetType())

	s.worker.SetWorker(s.workerHandler)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.worker.Start(s.ctx); err != nil {
			logger.Info("worker manager stopped", "reason", err)
		}
	}()

	for i := 0; i < s.options.Consumers; i++ {
		qc := s.options.Queue
		qc.ConsumerName = fmt.Sprintf("%s-instance-%d", qc.ConsumerName, i)

		q, err := queue.NewQueue(s.adapter, qc)
		if err != nil {
			return fmt.Errorf("failed to create queue %d: %w", i, err)
		}
		if err := q.Consume(s.messageHandler); err != nil {
			return fmt.Errorf("failed to start consumer %d: %w", i, err)
		}
		s.queues = append(s.queues, q)
	}

	s.wg.Add(2)
	go s.metricsReporter()
	go s.healthChecker()

	logger.Info("processor service started", "consumers", len(s.queues), "workers", s.worker.Size())
	return nil
}

func (s *ProcessorService) metricsReporter() {
	defer s.wg.Done()

	ticker := time.NewTicker(MetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.reportMetrics()
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *ProcessorService) reportMetrics() {
	stats := s.metrics.Snapshot()
	logger.Info("processor metrics",
		"total_processed", stats.Processed,
		"total_failed", stats.Failed,
		"rate_per_second", stats.RatePerSecond,
		"avg_duration_ms", stats.AvgDuration.Milliseconds(),
		"uptime_seconds", stats.Uptime.Seconds())

	if len(s.queues) == 0 {
		return
	}
	// every consumer reads the same stream
	if qStats, err := s.queues[0].GetStats(context.Background()); err == nil {
		logger.Info("queue stats",
			"queue", s.queues[0].Name(),
			"total", qStats.TotalMessages,
			"pending", qStats.PendingMessages,
			"dead_letters", qStats.DeadLetters)
		prom.SetCompensationBacklog(qStats.PendingMessages, qStats.DeadLetters)
	}
}

func (s *ProcessorService) healthChecker() {
	defer s.wg.Done()

	ticker := time.NewTicker(HealthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.performHealthCheck()
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *ProcessorService) performHealthCheck() {
	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()

	if err := s.adapter.Client().Ping(ctx).Err(); err != nil {
		logger.Error("health check failed: redis unreachable", "error", err)
		return
	}
	if len(s.queues) == 0 {
		return
	}
	stats, err := s.queues[0].GetStats(ctx)
	if err != nil {
		logger.Warn("health check: queue stats unavailable", "error", err)
		return
	}
	if stats.PendingMessages > HighLagThreshold {
		logger.Warn("health check: queue has high lag", "pending_messages", stats.PendingMessages)
	}
}

// Stop stops the consumers, then the workers, and waits for both.
func (s *ProcessorService) Stop() {
	logger.Info("shutting down processor service")

	var stopping sync.WaitGroup
	for i, q := range s.queues {
		stopping.Add(1)
		go func(index int, q *queue.Queue) {
			defer stopping.Done()
			if err := q.Stop(ShutdownTimeout); err != nil {
				logger.Error("error stopping queue", "queue", index, "error", err)
			}
		}(i, q)
	}
	stopping.Wait()

	s.cancel()
	s.worker.Exit()
	s.wg.Wait()

	s.reportMetrics()
	logger.Info("processor service stopped")
}

type job struct {
	ctx    context.Context
	msg    *queue.Message
	result chan error
}

// messageHandler runs on the consumer goroutine and blocks until a worker
// has processed the message, so the queue acks only finished work.
func (s *ProcessorService) messageHandler(ctx context.Context, msg *queue.Message) error {
	msgCtx, cancel := context.WithTimeout(ctx, ProcessingTimeout)
	defer cancel()

	j := &job{ctx: msgCtx, msg: msg, result: make(chan error, 1)}
	if err := s.worker.Enqueue(msgCtx, j); err != nil {
		return fmt.Errorf("enqueue message %s: %w", msg.ID, err)
	}

	select {
	case err := <-j.result:
		return err
	case <-msgCtx.Done():
		return fmt.Errorf("timeout waiting for worker to process message: %w", msgCtx.Err())
	}
}

func (s *ProcessorService) workerHandler(_ context.Context, workerIndex int, payload interface{}) {
	j, ok := payload.(*job)
	if !ok {
		logger.Error("invalid job type in worker", "worker", workerIndex)
		return
	}
	if j.ctx.Err() != nil {
		logger.Warn("job expired before processing started", "worker", workerIndex, "message_id", j.msg.ID)
		return
	}

	start := time.Now()
	err := s.processor.Process(j.ctx, j.msg)
	if err != nil {
		s.metrics.RecordFailure()
		logger.Error("failed to process message", "worker", workerIndex, "message_id", j.msg.ID, "attempt", j.msg.Attempts, "error", err)
	} else {
		s.metrics.RecordSuccess(time.Since(start))
	}

	// result is buffered so a timed out handler never blocks the worker
	j.result <- err
}
