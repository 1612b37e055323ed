package repository

import (
	"time"

	"github.com/nimasrn/purchase-ledger/internal/model"
	"github.com/nimasrn/purchase-ledger/pkg/pg"
	"github.com/shopspring/decimal"
)

type TransactionEntity struct {
	pg.Model
	UserID      int64           `gorm:"column:user_id;not null;index"`
	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:numeric(20,2);not null"`
	Date        time.Time       `gorm:"column:date;not null"`
	Stage       string          `gorm:"column:stage;size:32;not null"`
}

func (TransactionEntity) TableName() string {
	return "transactions"
}

func toTransactionEntity(m *model.Transaction) *TransactionEntity {
	return &TransactionEntity{
		Model:       pg.Model{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		UserID:      m.UserID,
		TotalAmount: m.TotalAmount,
		Date:        m.Date,
		Stage:       string(m.Stage),
	}
}

func toTransactionModel(e *TransactionEntity) *model.Transaction {
	return &model.Transaction{
		ID:          e.ID,
		UserID:      e.UserID,
		TotalAmount: e.TotalAmount,
		Date:        e.Date,
		Stage:       model.PurchaseStage(e.Stage),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toTransactionModels(entities []*TransactionEntity) []*model.Transaction {
	models := make([]*model.Transaction, len(entities))
	for i, e := range entities {
		models[i] = toTransactionModel(e)
	}
	return models
}

type TransactionItemEntity struct {
	pg.Model
	ProductID     int64           `gorm:"column:product_id;not null;index"`
	Count         int64           `gorm:"column:count;not null;check:chk_transaction_items_count,count > 0"`
	Amount        decimal.Decimal `gorm:"column:amount;type:numeric(20,2);not null"`
	TotalAmount   decimal.Decimal `gorm:"column:total_amount;type:numeric(20,2);not null"`
	TransactionID int64           `gorm:"column:transaction_id;not null;index"`
	StockApplied  bool            `gorm:"column:stock_applied;not null;default:false"`
}

func (TransactionItemEntity) TableName() string {
	return "transaction_items"
}

func toTransactionItemEntity(m *model.TransactionItem) *TransactionItemEntity {
	return &TransactionItemEntity{
		Model:         pg.Model{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		ProductID:     m.ProductID,
		Count:         m.Count,
		Amount:        m.Amount,
		TotalAmount:   m.TotalAmount,
		TransactionID: m.TransactionID,
		StockApplied:  m.StockApplied,
	}
}

func toTransactionItemModel(e *TransactionItemEntity) *model.TransactionItem {
	return &model.TransactionItem{
		ID:            e.ID,
		ProductID:     e.ProductID,
		Count:         e.Count,
		Amount:        e.Amount,
		TotalAmount:   e.TotalAmount,
		TransactionID: e.TransactionID,
		StockApplied:  e.StockApplied,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func toTransactionItemModels(entities []*TransactionItemEntity) []*model.TransactionItem {
	models := make([]*model.TransactionItem, len(entities))
	for i, e := range entities {
		models[i] = toTransactionItemModel(e)
	}
	return models
}

type UserPaymentTransactionEntity struct {
	pg.Model
	UserID        int64           `gorm:"column:user_id;not null;index"`
	TransactionID *int64          `gorm:"column:transaction_id;uniqueIndex:idx_payments_transaction_live,where:deleted = false"`
	Amount        decimal.Decimal `gorm:"column:amount;type:numeric(20,2);not null"`
	Date          time.Time       `gorm:"column:date;not null"`
}

func (UserPaymentTransactionEntity) TableName() string {
	return "user_payment_transactions"
}

func toPaymentEntity(m *model.UserPaymentTransaction) *UserPaymentTransactionEntity {
	return &UserPaymentTransactionEntity{
		Model:         pg.Model{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		UserID:        m.UserID,
		TransactionID: m.TransactionID,
		Amount:        m.Amount,
		Date:          m.Date,
	}
}

func toPaymentModel(e *UserPaymentTransactionEntity) *model.UserPaymentTransaction {
	return &model.UserPaymentTransaction{
		ID:            e.ID,
		UserID:        e.UserID,
		TransactionID: e.TransactionID,
		Amount:        e.Amount,
		Date:          e.Date,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func toPaymentModels(entities []*UserPaymentTransactionEntity) []*model.UserPaymentTransaction {
	models := make([]*model.UserPaymentTransaction, len(entities))
	for i, e := range entities {
		models[i] = toPaymentModel(e)
	}
	return models
}
