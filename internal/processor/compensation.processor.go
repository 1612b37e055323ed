package processor

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/nimasrn/purchase-ledger/internal/model"
	"github.com/nimasrn/purchase-ledger/internal/queue"
	"github.com/nimasrn/purchase-ledger/pkg/logger"
)

type Compensator interface {
	Compensate(ctx context.Context, transactionID int64) (*model.CompensationResult, error)
}

// CompensationProcessor consumes compensation requests and undoes the
// referenced purchase. The request id is the idempotency key.
type CompensationProcessor struct {
	compensator Compensator
	idempotency *IdempotencyService
}

func NewCompensationProcessor(compensator Compensator, idempotency *IdempotencyService) *CompensationProcessor {
	return &CompensationProcessor{
		compensator: compensator,
		idempotency: idempotency,
	}
}

func (p *CompensationProcessor) GetType() string {
	return "compensation"
}

func (p *CompensationProcessor) Process(ctx context.Context, msg *queue.Message) error {
	var req model.CompensationRequest
	if err := msg.DecodeJSON(&req); err != nil {
		logger.Error("failed to decode compensation request", "message_id", msg.ID, "error", err)
		return fmt.Errorf("decode compensation request: %w", err)
	}
	if req.TransactionID <= 0 {
		logger.Error("compensation request without transaction", "message_id", msg.ID)
		return fmt.Errorf("compensation request %s has no transaction id", msg.ID)
	}

	requestID := req.RequestID
	if requestID == "" {
		requestID = msg.ID
	}

	pc, err := p.idempotency.AcquireProcessingLock(ctx, requestID)
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyProcessed):
			logger.Info("compensation already processed, skipping", "request_id", requestID)
			return nil
		case errors.Is(err, ErrMaxRetriesExceeded):
			// left pending so the queue moves it to the dead letter stream
			logger.Error("compensation retries exhausted", "request_id", requestID, "transaction_id", req.TransactionID)
			return err
		default:
			return err
		}
	}
	defer func() {
		_ = p.idempotency.ReleaseLock(ctx, pc)
	}()

	logger.Info("compensating purchase",
		"request_id", requestID,
		"transaction_id", req.TransactionID,
		"reason", req.Reason,
		"attempt", msg.Attempts,
		"is_retry", pc.IsRetry)

	res, err := p.compensator.Compensate(ctx, req.TransactionID)
	if err != nil {
		if permanent(err) {
			logger.Error("compensation rejected", "request_id", requestID, "transaction_id", req.TransactionID, "error", err)
			return p.idempotency.MarkSuccess(ctx, pc)
		}
		if markErr := p.idempotency.MarkFailure(ctx, pc, err); markErr != nil {
			logger.Error("failed to mark failure", "request_id", requestID, "error", markErr)
		}
		return err
	}

	logger.Info("purchase compensated",
		"request_id", requestID,
		"transaction_id", res.TransactionID,
		"refunded", res.RefundedAmount.String(),
		"restored_items", res.RestoredItems,
		"already_reverted", res.AlreadyReverted)

	return p.idempotency.MarkSuccess(ctx, pc)
}

// permanent reports whether retrying err can never succeed.
func permanent(err error) bool {
	var e *model.Error
	return errors.As(err, &e) && e.Status < http.StatusInternalServerError
}
