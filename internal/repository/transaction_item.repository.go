package repository

import (
	"context"

	"github.com/nimasrn/purchase-ledger/internal/model"
	"github.com/nimasrn/purchase-ledger/pkg/pg"
	"gorm.io/gorm"
)

type TransactionItemRepository struct {
	*pg.DB
	store liveStore[TransactionItemEntity]
}

func NewTransactionItemRepository(db *pg.DB) *TransactionItemRepository {
	return &TransactionItemRepository{
		DB:    db,
		store: newLiveStore[TransactionItemEntity](db, model.ErrTransactionItemNotFound, model.ErrTransactionItemAlreadyExists),
	}
}

func (r *TransactionItemRepository) Create(ctx context.Context, item *model.TransactionItem) (*model.TransactionItem, error) {
	entity := toTransactionItemEntity(item)
	entity.ID = 0
	if err := r.store.Create(ctx, entity); err != nil {
		return nil, err
	}
	return toTransactionItemModel(entity), nil
}

func (r *TransactionItemRepository) Get(ctx context.Context, id int64) (*model.TransactionItem, error) {
	e, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTransactionItemModel(e), nil
}

func (r *TransactionItemRepository) Update(ctx context.Context, item *model.TransactionItem) (*model.TransactionItem, error) {
	entity := toTransactionItemEntity(item)
	if err := r.store.Save(ctx, entity); err != nil {
		return nil, err
	}
	return toTransactionItemModel(entity), nil
}

func (r *TransactionItemRepository) SoftDelete(ctx context.Context, id int64) (*model.TransactionItem, error) {
	e, err := r.store.SoftDelete(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTransactionItemModel(e), nil
}

// SoftDeleteByTransaction hides every live item of a transaction.
func (r *TransactionItemRepository) SoftDeleteByTransaction(ctx context.Context, transactionID int64) (int64, error) {
	return r.store.SoftDeleteWhere(ctx, "transaction_id", transactionID)
}

func (r *TransactionItemRepository) List(ctx context.Context, p model.PageRequest) ([]*model.TransactionItem, int64, error) {
	rows, total, err := r.store.Page(ctx, p)
	if err != nil {
		return nil, 0, err
	}
	return toTransactionItemModels(rows), total, nil
}

func (r *TransactionItemRepository) ListByTransaction(ctx context.Context, transactionID int64) ([]*model.TransactionItem, error) {
	rows, err := r.store.FindAll(ctx, where("transaction_id", transactionID))
	if err != nil {
		return nil, err
	}
	return toTransactionItemModels(rows), nil
}

// TotalQuantity sums the counts of the live items of a transaction.
func (r *TransactionItemRepository) TotalQuantity(ctx context.Context, transactionID int64) (int64, error) {
	return r.store.SumInt(ctx, "transaction_id", transactionID, "count")
}

// PendingQuantity sums the counts of live items of productID in the
// transaction whose stock has not been deducted yet.
func (r *TransactionItemRepository) PendingQuantity(ctx context.Context, transactionID, productID int64) (int64, error) {
	var total int64
	err := r.store.live(r.Read(ctx)).
		Select("COALESCE(SUM(count), 0)").
		Where("transaction_id = ? AND product_id = ? AND stock_applied = ?", transactionID, productID, false).
		Row().Scan(&total)
	return total, err
}

// MarkStockApplied flags the pending items of productID in the transaction
// as deducted.
func (r *TransactionItemRepository) MarkStockApplied(ctx context.Context, transactionID, productID int64) (int64, error) {
	res := r.store.live(r.Write(ctx)).
		Where("transaction_id = ? AND product_id = ? AND stock_applied = ?", transactionID, productID, false).
		Update("stock_applied", true)
	return res.RowsAffected, res.Error
}

// CountPending returns how many live items of the transaction still wait
// for their stock deduction.
func (r *TransactionItemRepository) CountPending(ctx context.Context, transactionID int64) (int64, error) {
	var n int64
	err := r.store.live(r.Read(ctx)).
		Where("transaction_id = ? AND stock_applied = ?", transactionID, false).
		Count(&n).Error
	return n, err
}

// HasProduct reports whether the transaction has any live item of productID.
func (r *TransactionItemRepository) HasProduct(ctx context.Context, transactionID, productID int64) (bool, error) {
	rows, err := r.store.FindAll(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("transaction_id = ? AND product_id = ?", transactionID, productID).Limit(1)
	})
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}
