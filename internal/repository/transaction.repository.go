package repository

import (
	"context"

	"github.com/nimasrn/purchase-ledger/internal/model"
	"github.com/nimasrn/purchase-ledger/pkg/pg"
)

type TransactionRepository struct {
	*pg.DB
	store liveStore[TransactionEntity]
}

func NewTransactionRepository(db *pg.DB) *TransactionRepository {
	return &TransactionRepository{
		DB:    db,
		store: newLiveStore[TransactionEntity](db, model.ErrTransactionNotFound, model.ErrTransactionAlreadyExists),
	}
}

func (r *TransactionRepository) Create(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	entity := toTransactionEntity(txn)
	entity.ID = 0
	if err := r.store.Create(ctx, entity); err != nil {
		return nil, err
	}
	return toTransactionModel(entity), nil
}

func (r *TransactionRepository) Get(ctx context.Context, id int64) (*model.Transaction, error) {
	e, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTransactionModel(e), nil
}

// GetForUpdate locks the transaction row so concurrent steps of the same
// purchase run one after another.
func (r *TransactionRepository) GetForUpdate(ctx context.Context, id int64) (*model.Transaction, error) {
	e, err := r.store.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTransactionModel(e), nil
}

func (r *TransactionRepository) GetIncludingDeleted(ctx context.Context, id int64) (*model.Transaction, error) {
	e, err := r.store.GetIncludingDeleted(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTransactionModel(e), nil
}

func (r *TransactionRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return r.store.Exists(ctx, id)
}

func (r *TransactionRepository) UpdateStage(ctx context.Context, id int64, stage model.PurchaseStage) error {
	return r.store.Updates(ctx, id, map[string]any{"stage": string(stage)})
}

func (r *TransactionRepository) SoftDelete(ctx context.Context, id int64) (*model.Transaction, error) {
	e, err := r.store.SoftDelete(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTransactionModel(e), nil
}

func (r *TransactionRepository) List(ctx context.Context, p model.PageRequest) ([]*model.Transaction, int64, error) {
	rows, total, err := r.store.Page(ctx, p)
	if err != nil {
		return nil, 0, err
	}
	return toTransactionModels(rows), total, nil
}

func (r *TransactionRepository) ListByUser(ctx context.Context, userID int64) ([]*model.Transaction, error) {
	rows, err := r.store.FindAll(ctx, where("user_id", userID))
	if err != nil {
		return nil, err
	}
	return toTransactionModels(rows), nil
}
