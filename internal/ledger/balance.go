package ledger

import (
	"context"
	"fmt"

	"github.com/nimasrn/purchase-ledger/internal/model"
	"github.com/shopspring/decimal"
)

type UserStore interface {
	GetForUpdate(ctx context.Context, id int64) (*model.User, error)
	UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal) error
}

// DebitBalance takes amount from u. u is left untouched when the balance
// does not cover the amount.
func DebitBalance(u *model.User, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return model.ErrInvalidRequest.WithMessage("amount must not be negative")
	}
	if u.Balance.LessThan(amount) {
		return model.ErrInvalidBalance.WithMessage("user %d has %s, %s requested", u.ID, u.Balance.String(), amount.String())
	}
	u.Balance = u.Balance.Sub(amount)
	return nil
}

// BalanceLedger debits and credits user balances under a row lock.
type BalanceLedger struct {
	users UserStore
}

func NewBalanceLedger(users UserStore) *BalanceLedger {
	return &BalanceLedger{users: users}
}

func (l *BalanceLedger) Debit(ctx context.Context, userID int64, amount decimal.Decimal) (*model.User, error) {
	u, err := l.users.GetForUpdate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := DebitBalance(u, amount); err != nil {
		return nil, err
	}
	if err := l.users.UpdateBalance(ctx, u.ID, u.Balance); err != nil {
		return nil, fmt.Errorf("write balance of user %d: %w", u.ID, err)
	}
	return u, nil
}

// Credit returns amount to a user. Used when a settled purchase is undone.
func (l *BalanceLedger) Credit(ctx context.Context, userID int64, amount decimal.Decimal) (*model.User, error) {
	if amount.IsNegative() {
		return nil, model.ErrInvalidRequest.WithMessage("amount must not be negative")
	}
	u, err := l.users.GetForUpdate(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.Balance = u.Balance.Add(amount)
	if err := l.users.UpdateBalance(ctx, u.ID, u.Balance); err != nil {
		return nil, fmt.Errorf("write balance of user %d: %w", u.ID, err)
	}
	return u, nil
}
