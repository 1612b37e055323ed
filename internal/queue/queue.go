package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nimasrn/purchase-ledger/pkg/logger"
	"github.com/nimasrn/purchase-ledger/pkg/redis"
)

const (
	fieldData      = "data"
	fieldTimestamp = "timestamp"
	metaPrefix     = "meta_"
	dlqSuffix      = ":dlq"
)

type Message struct {
	ID        string
	Data      []byte
	Metadata  map[string]string
	Timestamp time.Time
	// Attempts is the delivery count of the message, 1 on first delivery.
	Attempts int
}

// DecodeJSON unmarshals the payload into v.
func (m *Message) DecodeJSON(v any) error {
	return json.Unmarshal(m.Data, v)
}

// MessageHandler processes one message. A nil error acks it; any error
// leaves it pending so it is claimed again after the visibility timeout.
type MessageHandler func(ctx context.Context, msg *Message) error

type QueueConfig struct {
	Name              string
	ConsumerGroup     string
	ConsumerName      string
	MaxRetries        int
	VisibilityTimeout time.Duration
	PollInterval      time.Duration
	BatchSize         int64
	MaxLen            int64
	EnableDLQ         bool
}

// Queue is a redis stream consumed by one consumer of a consumer group.
type Queue struct {
	adapter redis.RedisAdapter
	config  QueueConfig
	handler MessageHandler
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

type QueueStats struct {
	TotalMessages   int64
	PendingMessages int64
	ConsumerCount   int64
	DeadLetters     int64
}

// NewQueue creates a new queue instance and makes sure the stream and its
// consumer group exist.
func NewQueue(adapter redis.RedisAdapter, config QueueConfig) (*Queue, error) {
	if config.Name == "" {
		return nil, fmt.Errorf("queue name is required")
	}
	if config.ConsumerGroup == "" {
		config.ConsumerGroup = "default-group"
	}
	if config.ConsumerName == "" {
		config.ConsumerName = fmt.Sprintf("consumer-%d", time.Now().UnixNano())
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.VisibilityTimeout == 0 {
		config.VisibilityTimeout = 30 * time.Second
	}
	if config.PollInterval == 0 {
		config.PollInterval = 1 * time.Second
	}
	if config.BatchSize == 0 {
		config.BatchSize = 10
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		adapter: adapter,
		config:  config,
		ctx:     ctx,
		cancel:  cancel,
	}

	err := adapter.XGroupCreateMkStream(ctx, config.Name, config.ConsumerGroup, "0")
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		cancel()
		return nil, fmt.Errorf("create consumer group %s: %w", config.ConsumerGroup, err)
	}
	return q, nil
}

func (q *Queue) Name() string {
	return q.config.Name
}

func (q *Queue) DeadLetterName() string {
	return q.config.Name + dlqSuffix
}

// Publish adds a message to the stream and trims it to MaxLen.
func (q *Queue) Publish(ctx context.Context, data []byte, metadata map[string]string) (string, error) {
	values := map[string]interface{}{
		fieldData:      string(data),
		fieldTimestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
	for k, v := range metadata {
		values[metaPrefix+k] = v
	}

	id, err := q.adapter.XAdd(ctx, q.config.Name, values)
	if err != nil {
		return "", fmt.Errorf("failed to publish message: %w", err)
	}

	if q.config.MaxLen > 0 {
		if err := q.adapter.XTrimApprox(ctx, q.config.Name, q.config.MaxLen); err != nil {
			logger.Warn("stream trim failed", "queue", q.config.Name, "error", err)
		}
	}
	return id, nil
}

// PublishJSON publishes a JSON-encoded message
func (q *Queue) PublishJSON(ctx context.Context, data interface{}, metadata map[string]string) (string, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return q.Publish(ctx, jsonData, metadata)
}

// Consume starts polling the stream in the background.
func (q *Queue) Consume(handler MessageHandler) error {
	if handler == nil {
		return fmt.Errorf("message handler is required")
	}

	q.handler = handler
	q.wg.Add(1)
	go q.consumeLoop()
	return nil
}

func (q *Queue) consumeLoop() {
	defer q.wg.Done()

	ticker := time.NewTicker(q.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-q.ctx.Done():
			return
		case <-ticker.C:
			q.Poll(q.ctx)
		}
	}
}

// Poll runs one consume round: new messages first, then messages whose
// visibility timeout ran out.
func (q *Queue) Poll(ctx context.Context) {
	q.processMessages(ctx)
	q.claimStuckMessages(ctx)
}

func (q *Queue) processMessages(ctx context.Context) {
	messages, err := q.adapter.XReadGroup(ctx, q.config.ConsumerGroup, q.config.ConsumerName, q.config.Name, ">", q.config.BatchSize)
	if err != nil {
		if !errors.Is(err, redis.NilError) && ctx.Err() == nil {
			logger.Warn("stream read failed", "queue", q.config.Name, "error", err)
		}
		return
	}

	for _, streamMsg := range messages {
		msg := streamMessageToMessage(streamMsg)
		msg.Attempts = 1
		q.handleMessage(ctx, msg)
	}
}

func (q *Queue) claimStuckMessages(ctx context.Context) {
	pending, err := q.adapter.XPendingExt(ctx, q.config.Name, q.config.ConsumerGroup, 100)
	if err != nil || len(pending) == 0 {
		return
	}

	deliveries := make(map[string]int64)
	var idsToReclaim []string
	for _, p := range pending {
		if p.Idle >= q.config.VisibilityTimeout {
			idsToReclaim = append(idsToReclaim, p.ID)
			deliveries[p.ID] = p.RetryCount
		}
	}
	if len(idsToReclaim) == 0 {
		return
	}

	messages, err := q.adapter.XClaim(ctx, q.config.Name, q.config.ConsumerGroup, q.config.ConsumerName, q.config.VisibilityTimeout, idsToReclaim...)
	if err != nil {
		logger.Warn("stream claim failed", "queue", q.config.Name, "error", err)
		return
	}

	for _, streamMsg := range messages {
		msg := streamMessageToMessage(streamMsg)
		msg.Attempts = int(deliveries[msg.ID]) + 1
		q.handleMessage(ctx, msg)
	}
}

func (q *Queue) handleMessage(ctx context.Context, msg *Message) {
	if msg.Attempts > q.config.MaxRetries {
		q.moveToDeadLetterQueue(ctx, msg)
		q.ack(ctx, msg.ID)
		return
	}

	// in-flight messages run to completion when the queue is stopped
	ctx = context.WithoutCancel(ctx)
	hctx, cancel := context.WithTimeout(ctx, q.config.VisibilityTimeout)
	defer cancel()

	if err := q.handler(hctx, msg); err != nil {
		logger.Warn("message left pending for retry",
			"queue", q.config.Name,
			"message_id", msg.ID,
			"attempts", msg.Attempts,
			"error", err)
		return
	}
	q.ack(ctx, msg.ID)
}

func (q *Queue) ack(ctx context.Context, id string) {
	if err := q.adapter.XAck(ctx, q.config.Name, q.config.ConsumerGroup, id); err != nil {
		logger.Error("stream ack failed", "queue", q.config.Name, "message_id", id, "error", err)
	}
}

func (q *Queue) moveToDeadLetterQueue(ctx context.Context, msg *Message) {
	if !q.config.EnableDLQ {
		logger.Warn("dropping message after max retries", "queue", q.config.Name, "message_id", msg.ID)
		return
	}

	values := map[string]interface{}{
		fieldData:        string(msg.Data),
		"original_id":    msg.ID,
		"attempts":       msg.Attempts,
		"failed_at":      time.Now().UTC().Format(time.RFC3339Nano),
		"original_queue": q.config.Name,
	}
	for k, v := range msg.Metadata {
		values[metaPrefix+k] = v
	}

	if _, err := q.adapter.XAdd(ctx, q.DeadLetterName(), values); err != nil {
		logger.Error("dead letter publish failed", "queue", q.config.Name, "message_id", msg.ID, "error", err)
		return
	}
	logger.Warn("message moved to dead letter queue", "queue", q.config.Name, "message_id", msg.ID, "attempts", msg.Attempts)
}

func streamMessageToMessage(streamMsg redis.StreamMessage) *Message {
	msg := &Message{
		ID:       streamMsg.ID,
		Metadata: make(map[string]string),
	}

	for k, v := range streamMsg.Values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		switch {
		case k == fieldData:
			msg.Data = []byte(s)
		case k == fieldTimestamp:
			if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
				msg.Timestamp = ts
			}
		case strings.HasPrefix(k, metaPrefix):
			msg.Metadata[strings.TrimPrefix(k, metaPrefix)] = s
		}
	}

	if msg.Timestamp.IsZero() {
		msg.Timestamp = streamIDTime(streamMsg.ID)
	}
	return msg
}

// streamIDTime reads the millisecond part of a stream id.
func streamIDTime(id string) time.Time {
	ms, _, _ := strings.Cut(id, "-")
	n, err := strconv.ParseInt(ms, 10, 64)
	if err != nil {
		return time.Now()
	}
	return time.UnixMilli(n)
}

func (q *Queue) Stop(timeout time.Duration) error {
	q.cancel()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("timeout waiting for queue to stop")
	}
}

func (q *Queue) GetStats(ctx context.Context) (*QueueStats, error) {
	total, err := q.adapter.XLen(ctx, q.config.Name)
	if err != nil {
		return nil, err
	}
	stats := &QueueStats{TotalMessages: total}

	if pending, consumers, err := q.adapter.XPendingCount(ctx, q.config.Name, q.config.ConsumerGroup); err == nil {
		stats.PendingMessages = pending
		stats.ConsumerCount = consumers
	}
	if q.config.EnableDLQ {
		if dead, err := q.adapter.XLen(ctx, q.DeadLetterName()); err == nil {
			stats.DeadLetters = dead
		}
	}
	return stats, nil
}
