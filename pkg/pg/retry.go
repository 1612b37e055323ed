package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sethvargo/go-retry"
)

const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"

	maxTxRetries   = 3
	baseRetryDelay = 2 * time.Millisecond
)

// IsRetryable reports whether err aborted a transaction that can simply be
// run again.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == sqlStateSerializationFailure || pgErr.Code == sqlStateDeadlockDetected
	}
	return false
}

// WithinTransactionRetry is WithinTransaction with exponential backoff
// (2ms, 4ms, 8ms) on serialization failures and deadlocks. fn must not
// have side effects outside the database.
func (r *DB) WithinTransactionRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	if InTransaction(ctx) {
		return r.WithinTransaction(ctx, fn)
	}

	backoff := retry.WithMaxRetries(maxTxRetries, retry.NewExponential(baseRetryDelay))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := r.WithinTransaction(ctx, fn)
		if IsRetryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}
