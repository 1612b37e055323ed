package services

import (
	"context"
	"errors"

	"github.com/nimasrn/purchase-ledger/internal/model"
	"github.com/shopspring/decimal"
)

const DefaultLowStockThreshold = 5

type ReportTransactionRepository interface {
	GetIncludingDeleted(ctx context.Context, id int64) (*model.Transaction, error)
}

type ReportItemRepository interface {
	ListByTransaction(ctx context.Context, transactionID int64) ([]*model.TransactionItem, error)
}

type ReportPaymentRepository interface {
	FindByTransaction(ctx context.Context, transactionID int64) (*model.UserPaymentTransaction, error)
	ListByUser(ctx context.Context, userID int64) ([]*model.UserPaymentTransaction, error)
	TotalPaid(ctx context.Context, userID int64) (decimal.Decimal, error)
}

type ReportUserRepository interface {
	Get(ctx context.Context, id int64) (*model.User, error)
}

type ReportProductRepository interface {
	ListLowStock(ctx context.Context, threshold int64) ([]*model.Product, error)
}

// ReportService builds the read-only views served by the backoffice.
type ReportService struct {
	transactions ReportTransactionRepository
	items        ReportItemRepository
	payments     ReportPaymentRepository
	users        ReportUserRepository
	products     ReportProductRepository
}

func NewReportService(transactions ReportTransactionRepository, items ReportItemRepository, payments ReportPaymentRepository, users ReportUserRepository, products ReportProductRepository) *ReportService {
	return &ReportService{
		transactions: transactions,
		items:        items,
		payments:     payments,
		users:        users,
		products:     products,
	}
}

// Transaction reports deleted and compensated transactions too, so a
// cancelled purchase can still be audited.
func (s *ReportService) Transaction(ctx context.Context, id int64) (*model.TransactionReport, error) {
	txn, err := s.transactions.GetIncludingDeleted(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.items.ListByTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	r := &model.TransactionReport{Transaction: txn, Items: items}
	for _, item := range items {
		r.Quantity += item.Count
	}

	payment, err := s.payments.FindByTransaction(ctx, id)
	switch {
	case err == nil:
		r.Payment = payment
	case !errors.Is(err, model.ErrUserPaymentTransactionNotFound):
		return nil, err
	}
	return r, nil
}

func (s *ReportService) UserStatement(ctx context.Context, userID int64) (*model.UserStatement, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	payments, err := s.payments.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	total, err := s.payments.TotalPaid(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &model.UserStatement{User: u, Payments: payments, TotalPaid: total}, nil
}

func (s *ReportService) LowStock(ctx context.Context, threshold int64) (*model.LowStockReport, error) {
	if threshold < 0 {
		return nil, model.ErrInvalidRequest.WithMessage("threshold must not be negative")
	}
	products, err := s.products.ListLowStock(ctx, threshold)
	if err != nil {
		return nil, err
	}
	return &model.LowStockReport{Threshold: threshold, Products: products}, nil
}
