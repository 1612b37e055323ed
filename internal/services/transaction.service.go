package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/nimasrn/purchase-ledger/internal/ledger"
	"github.com/nimasrn/purchase-ledger/internal/model"
	"github.com/shopspring/decimal"
)

type TransactionRepository interface {
	Get(ctx context.Context, id int64) (*model.Transaction, error)
	GetForUpdate(ctx context.Context, id int64) (*model.Transaction, error)
	SoftDelete(ctx context.Context, id int64) (*model.Transaction, error)
	List(ctx context.Context, p model.PageRequest) ([]*model.Transaction, int64, error)
}

type TransactionItemRepository interface {
	Get(ctx context.Context, id int64) (*model.TransactionItem, error)
	Update(ctx context.Context, item *model.TransactionItem) (*model.TransactionItem, error)
	SoftDelete(ctx context.Context, id int64) (*model.TransactionItem, error)
	List(ctx context.Context, p model.PageRequest) ([]*model.TransactionItem, int64, error)
}

type PaymentRepository interface {
	Get(ctx context.Context, id int64) (*model.UserPaymentTransaction, error)
	SoftDelete(ctx context.Context, id int64) (*model.UserPaymentTransaction, error)
	List(ctx context.Context, p model.PageRequest) ([]*model.UserPaymentTransaction, int64, error)
}

// TransactionService exposes transactions as a resource. Creation goes
// through the purchase flow; there is no update because a total is fixed
// once the transaction exists.
type TransactionService struct {
	uow      UnitOfWork
	repo     TransactionRepository
	purchase *PurchaseService
}

func NewTransactionService(uow UnitOfWork, repo TransactionRepository, purchase *PurchaseService) *TransactionService {
	return &TransactionService{uow: uow, repo: repo, purchase: purchase}
}

func (s *TransactionService) List(ctx context.Context, p model.PageRequest) (*model.Page[model.Transaction], error) {
	txns, total, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, err
	}
	return model.NewPage(txns, total, p), nil
}

func (s *TransactionService) Get(ctx context.Context, id int64) (*model.Transaction, error) {
	return s.repo.Get(ctx, id)
}

func (s *TransactionService) Create(ctx context.Context, req model.TransactionCreateRequest) (*model.Transaction, error) {
	return s.purchase.CreateTransaction(ctx, req)
}

// Delete hides a transaction that holds nothing to undo: one that never got
// items or one that has been compensated. Anything in between has to be
// cancelled first.
func (s *TransactionService) Delete(ctx context.Context, id int64) (*model.Transaction, error) {
	var deleted *model.Transaction
	err := s.uow.WithinTransactionRetry(ctx, func(ctx context.Context) error {
		txn, err := s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if txn.Stage != model.StageCreated && txn.Stage != model.StageCompensated {
			return model.ErrPurchaseStageConflict.WithMessage("transaction %d is %s, cancel it before deleting", txn.ID, txn.Stage)
		}
		deleted, err = s.repo.SoftDelete(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// TransactionItemService exposes items as a resource. Items can be changed
// or removed only while their transaction still accepts items.
type TransactionItemService struct {
	uow          UnitOfWork
	repo         TransactionItemRepository
	transactions TransactionRepository
	products     PurchaseProductRepository
	purchase     *PurchaseService
}

func NewTransactionItemService(uow UnitOfWork, repo TransactionItemRepository, transactions TransactionRepository, products PurchaseProductRepository, purchase *PurchaseService) *TransactionItemService {
	return &TransactionItemService{
		uow:          uow,
		repo:         repo,
		transactions: transactions,
		products:     products,
		purchase:     purchase,
	}
}

func (s *TransactionItemService) List(ctx context.Context, p model.PageRequest) (*model.Page[model.TransactionItem], error) {
	items, total, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, err
	}
	return model.NewPage(items, total, p), nil
}

func (s *TransactionItemService) Get(ctx context.Context, id int64) (*model.TransactionItem, error) {
	return s.repo.Get(ctx, id)
}

func (s *TransactionItemService) Create(ctx context.Context, req model.TransactionItemCreateRequest) (*model.TransactionItem, error) {
	res, err := s.purchase.AttachItem(ctx, req)
	if err != nil {
		return nil, err
	}
	return res.Item, nil
}

func (s *TransactionItemService) Update(ctx context.Context, id int64, req model.TransactionItemUpdateRequest) (*model.TransactionItem, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var updated *model.TransactionItem
	err := s.uow.WithinTransactionRetry(ctx, func(ctx context.Context) error {
		item, err := s.editable(ctx, id)
		if err != nil {
			return err
		}

		if req.Count != nil {
			product, err := s.products.Get(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if err := ledger.CheckStock(product, *req.Count); err != nil {
				return err
			}
			item.Count = *req.Count
		}
		if req.Amount != nil {
			item.Amount = *req.Amount
		}
		switch {
		case req.TotalAmount != nil:
			item.TotalAmount = *req.TotalAmount
		case req.Count != nil || req.Amount != nil:
			item.TotalAmount = item.Amount.Mul(decimal.NewFromInt(item.Count))
		}

		updated, err = s.repo.Update(ctx, item)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *TransactionItemService) Delete(ctx context.Context, id int64) (*model.TransactionItem, error) {
	var deleted *model.TransactionItem
	err := s.uow.WithinTransactionRetry(ctx, func(ctx context.Context) error {
		if _, err := s.editable(ctx, id); err != nil {
			return err
		}
		var err error
		deleted, err = s.repo.SoftDelete(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// editable loads the item and locks its transaction, failing when the
// purchase has moved past the item stage.
func (s *TransactionItemService) editable(ctx context.Context, id int64) (*model.TransactionItem, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	txn, err := s.transactions.GetForUpdate(ctx, item.TransactionID)
	if err != nil {
		return nil, err
	}
	if !txn.Stage.Accepts(model.StepAttachItem) {
		return nil, model.ErrPurchaseStageConflict.WithMessage("items of transaction %d are locked while it is %s", txn.ID, txn.Stage)
	}
	return item, nil
}

// PaymentService exposes settlement records. A payment is created by
// settling its transaction and is never edited afterwards.
type PaymentService struct {
	uow          UnitOfWork
	repo         PaymentRepository
	transactions TransactionRepository
	purchase     *PurchaseService
}

func NewPaymentService(uow UnitOfWork, repo PaymentRepository, transactions TransactionRepository, purchase *PurchaseService) *PaymentService {
	return &PaymentService{uow: uow, repo: repo, transactions: transactions, purchase: purchase}
}

func (s *PaymentService) List(ctx context.Context, p model.PageRequest) (*model.Page[model.UserPaymentTransaction], error) {
	payments, total, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, err
	}
	return model.NewPage(payments, total, p), nil
}

func (s *PaymentService) Get(ctx context.Context, id int64) (*model.UserPaymentTransaction, error) {
	return s.repo.Get(ctx, id)
}

func (s *PaymentService) Create(ctx context.Context, req model.UserPaymentTransactionCreateRequest) (*model.UserPaymentTransaction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	res, err := s.purchase.SettlePayment(ctx, req.TransactionID, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("settle transaction %d: %w", req.TransactionID, err)
	}
	return res.Payment, nil
}

// Delete hides a payment whose transaction no longer counts it as settled.
// A settled payment is refunded only by compensating its transaction.
func (s *PaymentService) Delete(ctx context.Context, id int64) (*model.UserPaymentTransaction, error) {
	var deleted *model.UserPaymentTransaction
	err := s.uow.WithinTransactionRetry(ctx, func(ctx context.Context) error {
		payment, err := s.repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if payment.TransactionID != nil {
			txn, err := s.transactions.GetForUpdate(ctx, *payment.TransactionID)
			switch {
			case errors.Is(err, model.ErrTransactionNotFound):
			case err != nil:
				return err
			case txn.Stage == model.StagePaymentSettled || txn.Stage == model.StageStockFinalized:
				return model.ErrPurchaseStageConflict.WithMessage("payment %d settles transaction %d, cancel the purchase instead", payment.ID, txn.ID)
			}
		}
		deleted, err = s.repo.SoftDelete(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}
