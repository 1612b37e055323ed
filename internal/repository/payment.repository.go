package repository

import (
	"context"

	"github.com/nimasrn/purchase-ledger/internal/model"
	"github.com/nimasrn/purchase-ledger/pkg/pg"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type UserPaymentTransactionRepository struct {
	*pg.DB
	store liveStore[UserPaymentTransactionEntity]
}

func NewUserPaymentTransactionRepository(db *pg.DB) *UserPaymentTransactionRepository {
	return &UserPaymentTransactionRepository{
		DB:    db,
		store: newLiveStore[UserPaymentTransactionEntity](db, model.ErrUserPaymentTransactionNotFound, model.ErrUserPaymentTransactionAlreadyExists),
	}
}

func (r *UserPaymentTransactionRepository) Create(ctx context.Context, p *model.UserPaymentTransaction) (*model.UserPaymentTransaction, error) {
	entity := toPaymentEntity(p)
	entity.ID = 0
	if err := r.store.Create(ctx, entity); err != nil {
		return nil, err
	}
	return toPaymentModel(entity), nil
}

func (r *UserPaymentTransactionRepository) Get(ctx context.Context, id int64) (*model.UserPaymentTransaction, error) {
	e, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toPaymentModel(e), nil
}

// FindByTransaction returns the live settlement of a transaction.
func (r *UserPaymentTransactionRepository) FindByTransaction(ctx context.Context, transactionID int64) (*model.UserPaymentTransaction, error) {
	e, err := r.store.FindByUnique(ctx, "transaction_id", transactionID)
	if err != nil {
		return nil, err
	}
	return toPaymentModel(e), nil
}

func (r *UserPaymentTransactionRepository) SoftDelete(ctx context.Context, id int64) (*model.UserPaymentTransaction, error) {
	e, err := r.store.SoftDelete(ctx, id)
	if err != nil {
		return nil, err
	}
	return toPaymentModel(e), nil
}

func (r *UserPaymentTransactionRepository) List(ctx context.Context, p model.PageRequest) ([]*model.UserPaymentTransaction, int64, error) {
	rows, total, err := r.store.Page(ctx, p)
	if err != nil {
		return nil, 0, err
	}
	return toPaymentModels(rows), total, nil
}

// ListByUser returns the live payments of a user, newest first.
func (r *UserPaymentTransactionRepository) ListByUser(ctx context.Context, userID int64) ([]*model.UserPaymentTransaction, error) {
	rows, err := r.store.FindAll(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("user_id = ?", userID).Order("date DESC")
	})
	if err != nil {
		return nil, err
	}
	return toPaymentModels(rows), nil
}

func (r *UserPaymentTransactionRepository) TotalPaid(ctx context.Context, userID int64) (decimal.Decimal, error) {
	return r.store.SumDecimal(ctx, "user_id", userID, "amount")
}
