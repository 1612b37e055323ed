package processor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/nimasrn/purchase-ledger/pkg/logger"
	"github.com/nimasrn/purchase-ledger/pkg/redis"
)

var (
	ErrAlreadyProcessed   = errors.New("request already processed")
	ErrLockAcquireFailed  = errors.New("failed to acquire processing lock")
	ErrMaxRetriesExceeded = errors.New("maximum retries exceeded")
)

type IdempotencyConfig struct {
	LockTTL            time.Duration
	ProcessedTTL       time.Duration
	MaxRetries         int
	RetryKeyPrefix     string
	LockKeyPrefix      string
	ProcessedKeyPrefix string
}

func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		LockTTL:            30 * time.Second,
		ProcessedTTL:       24 * time.Hour,
		MaxRetries:         3,
		RetryKeyPrefix:     "compensation:retry:",
		LockKeyPrefix:      "compensation:lock:",
		ProcessedKeyPrefix: "compensation:processed:",
	}
}

// IdempotencyService keeps three redis keys per compensation request: a
// short lock while a worker owns it, a failure counter, and a long lived
// processed marker.
type IdempotencyService struct {
	redis  redis.RedisAdapter
	config IdempotencyConfig
}

func NewIdempotencyService(adapter redis.RedisAdapter, config IdempotencyConfig) *IdempotencyService {
	return &IdempotencyService{
		redis:  adapter,
		config: config,
	}
}

type ProcessingContext struct {
	RequestID    string
	RetryCount   int
	IsRetry      bool
	lockAcquired bool
}

func (s *IdempotencyService) AcquireProcessingLock(ctx context.Context, requestID string) (*ProcessingContext, error) {
	processed, err := s.IsProcessed(ctx, requestID)
	if err != nil {
		logger.Warn("failed to check processed marker", "request_id", requestID, "error", err)
	} else if processed {
		return nil, ErrAlreadyProcessed
	}

	retryCount, err := s.GetRetryCount(ctx, requestID)
	if err != nil {
		logger.Warn("failed to read retry counter", "request_id", requestID, "error", err)
	}
	if retryCount >= s.config.MaxRetries {
		return nil, fmt.Errorf("%w: request_id=%s, retries=%d", ErrMaxRetriesExceeded, requestID, retryCount)
	}

	lockValue := []byte(strconv.FormatInt(time.Now().UnixNano(), 10))
	acquired, err := s.redis.SetNX(ctx, s.config.LockKeyPrefix+requestID, lockValue, s.config.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLockAcquireFailed, err)
	}
	if !acquired {
		return nil, ErrLockAcquireFailed
	}

	logger.Debug("processing lock acquired", "request_id", requestID, "retry_count", retryCount)
	return &ProcessingContext{
		RequestID:    requestID,
		RetryCount:   retryCount,
		IsRetry:      retryCount > 0,
		lockAcquired: true,
	}, nil
}

// MarkSuccess writes the processed marker and drops the lock and counter.
func (s *IdempotencyService) MarkSuccess(ctx context.Context, pc *ProcessingContext) error {
	err := s.redis.Set(ctx, s.config.ProcessedKeyPrefix+pc.RequestID, []byte("1"), s.config.ProcessedTTL)
	if err != nil {
		return fmt.Errorf("failed to mark as processed: %w", err)
	}

	if err := s.redis.Del(ctx, s.config.LockKeyPrefix+pc.RequestID, s.config.RetryKeyPrefix+pc.RequestID); err != nil {
		logger.Warn("failed to cleanup idempotency keys", "request_id", pc.RequestID, "error", err)
	}
	pc.lockAcquired = false
	return nil
}

// MarkFailure bumps the failure counter and releases the lock so the next
// delivery can try again.
func (s *IdempotencyService) MarkFailure(ctx context.Context, pc *ProcessingContext, reason error) error {
	count, err := s.redis.Incr(ctx, s.config.RetryKeyPrefix+pc.RequestID, s.config.ProcessedTTL)
	if err != nil {
		logger.Error("failed to increment retry counter", "request_id", pc.RequestID, "error", err)
	}
	if err := s.ReleaseLock(ctx, pc); err != nil {
		return err
	}

	logger.Warn("compensation failed, will retry",
		"request_id", pc.RequestID,
		"retry_count", count,
		"max_retries", s.config.MaxRetries,
		"reason", reason)
	return nil
}

func (s *IdempotencyService) ReleaseLock(ctx context.Context, pc *ProcessingContext) error {
	if pc == nil || !pc.lockAcquired {
		return nil
	}
	if err := s.redis.Del(ctx, s.config.LockKeyPrefix+pc.RequestID); err != nil {
		logger.Warn("failed to release lock", "request_id", pc.RequestID, "error", err)
		return err
	}
	pc.lockAcquired = false
	return nil
}

func (s *IdempotencyService) GetRetryCount(ctx context.Context, requestID string) (int, error) {
	raw, err := s.redis.Get(ctx, s.config.RetryKeyPrefix+requestID)
	if err != nil {
		if errors.Is(err, redis.NilError) {
			return 0, nil
		}
		return 0, err
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, fmt.Errorf("corrupt retry counter %q: %w", raw, err)
	}
	return n, nil
}

func (s *IdempotencyService) IsProcessed(ctx context.Context, requestID string) (bool, error) {
	exists, err := s.redis.Exist(ctx, s.config.ProcessedKeyPrefix+requestID)
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}
