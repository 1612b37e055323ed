package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/nimasrn/purchase-ledger/internal/ledger"
	"github.com/nimasrn/purchase-ledger/internal/model"
	"github.com/nimasrn/purchase-ledger/pkg/logger"
	"github.com/nimasrn/purchase-ledger/pkg/prom"
	"github.com/shopspring/decimal"
)

// UnitOfWork runs fn in one database transaction, retrying it on
// serialization failures.
type UnitOfWork interface {
	WithinTransactionRetry(ctx context.Context, fn func(ctx context.Context) error) error
}

type CompensationPublisher interface {
	PublishJSON(ctx context.Context, data interface{}, metadata map[string]string) (string, error)
}

type PurchaseUserRepository interface {
	Get(ctx context.Context, id int64) (*model.User, error)
}

type PurchaseProductRepository interface {
	Get(ctx context.Context, id int64) (*model.Product, error)
}

type PurchaseTransactionRepository interface {
	Create(ctx context.Context, txn *model.Transaction) (*model.Transaction, error)
	Get(ctx context.Context, id int64) (*model.Transaction, error)
	GetForUpdate(ctx context.Context, id int64) (*model.Transaction, error)
	UpdateStage(ctx context.Context, id int64, stage model.PurchaseStage) error
}

type PurchaseItemRepository interface {
	Create(ctx context.Context, item *model.TransactionItem) (*model.TransactionItem, error)
	ListByTransaction(ctx context.Context, transactionID int64) ([]*model.TransactionItem, error)
	HasProduct(ctx context.Context, transactionID, productID int64) (bool, error)
	CountPending(ctx context.Context, transactionID int64) (int64, error)
	SoftDeleteByTransaction(ctx context.Context, transactionID int64) (int64, error)
}

type PurchasePaymentRepository interface {
	Create(ctx context.Context, p *model.UserPaymentTransaction) (*model.UserPaymentTransaction, error)
	FindByTransaction(ctx context.Context, transactionID int64) (*model.UserPaymentTransaction, error)
	SoftDelete(ctx context.Context, id int64) (*model.UserPaymentTransaction, error)
}

type PurchaseRepositories struct {
	Users        PurchaseUserRepository
	Products     PurchaseProductRepository
	Transactions PurchaseTransactionRepository
	Items        PurchaseItemRepository
	Payments     PurchasePaymentRepository
}

// PurchaseService drives the four purchase steps and their compensation.
// It keeps no state between calls: every step after the first is keyed by
// the transaction id the caller got back from the first.
type PurchaseService struct {
	uow          UnitOfWork
	users        PurchaseUserRepository
	products     PurchaseProductRepository
	transactions PurchaseTransactionRepository
	items        PurchaseItemRepository
	payments     PurchasePaymentRepository
	guard        *ledger.Guard
	stock        *ledger.StockLedger
	balance      *ledger.BalanceLedger
	publisher    CompensationPublisher
	now          func() time.Time
}

func NewPurchaseService(uow UnitOfWork, repos PurchaseRepositories, guard *ledger.Guard, stock *ledger.StockLedger, balance *ledger.BalanceLedger, publisher CompensationPublisher) *PurchaseService {
	return &PurchaseService{
		uow:          uow,
		users:        repos.Users,
		products:     repos.Products,
		transactions: repos.Transactions,
		items:        repos.Items,
		payments:     repos.Payments,
		guard:        guard,
		stock:        stock,
		balance:      balance,
		publisher:    publisher,
		now:          time.Now,
	}
}

// ProcessRequest resolves which step req asks for and runs it in its own
// unit of work. A failed step leaves earlier steps committed.
func (s *PurchaseService) ProcessRequest(ctx context.Context, req model.PurchaseRequest) (*model.PurchaseResult, error) {
	step, err := req.ResolveStep()
	if err != nil {
		prom.ObservePurchaseStep("unresolved", outcome(err), 0)
		return nil, err
	}

	start := time.Now()
	res, err := s.runStep(ctx, step, req)
	prom.ObservePurchaseStep(string(step), outcome(err), time.Since(start).Seconds())
	if err != nil {
		logger.Warn("purchase step failed", "step", step, "error", err)
		return nil, err
	}

	res.Step = step
	logger.Info("purchase step done", "step", step, "transaction_id", res.Transaction.ID)
	return res, nil
}

func (s *PurchaseService) runStep(ctx context.Context, step model.PurchaseStep, req model.PurchaseRequest) (*model.PurchaseResult, error) {
	if step == model.StepCreateTransaction {
		txn, err := s.CreateTransaction(ctx, model.TransactionCreateRequest{
			UserID:      *req.UserID,
			TotalAmount: *req.TotalAmount,
			Date:        req.Date,
		})
		if err != nil {
			return nil, err
		}
		return &model.PurchaseResult{Transaction: txn}, nil
	}

	if req.TransactionID == nil || *req.TransactionID == 0 {
		return nil, model.ErrTransactionNotFound.WithMessage("transactionId is required for %s", step)
	}
	txnID := *req.TransactionID

	switch step {
	case model.StepAttachItem:
		return s.AttachItem(ctx, model.TransactionItemCreateRequest{
			TransactionID:   txnID,
			ProductID:       *req.ProductID,
			Count:           *req.Count,
			Amount:          *req.Amount,
			TotalAmountItem: req.TotalAmountItem,
		})
	case model.StepSettlePayment:
		return s.SettlePayment(ctx, txnID, *req.UserID)
	case model.StepFinalizeStock:
		return s.FinalizeStock(ctx, txnID, *req.ProductID)
	}
	return nil, model.ErrInvalidRequest.WithMessage("unknown step %q", step)
}

// CreateTransaction opens a purchase for an existing user.
func (s *PurchaseService) CreateTransaction(ctx context.Context, req model.TransactionCreateRequest) (*model.Transaction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	date := s.now()
	if req.Date != nil {
		date = *req.Date
	}

	var created *model.Transaction
	err := s.uow.WithinTransactionRetry(ctx, func(ctx context.Context) error {
		if err := s.guard.RequireUser(ctx, req.UserID); err != nil {
			return err
		}
		txn, err := s.transactions.Create(ctx, &model.Transaction{
			UserID:      req.UserID,
			TotalAmount: req.TotalAmount,
			Date:        date,
			Stage:       model.StageCreated,
		})
		if err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}
		created = txn
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// AttachItem records an item on a transaction. Stock is checked but not
// deducted; that happens when the stock is finalized.
func (s *PurchaseService) AttachItem(ctx context.Context, req model.TransactionItemCreateRequest) (*model.PurchaseResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	total := req.Amount.Mul(decimal.NewFromInt(req.Count))
	if req.TotalAmountItem != nil {
		total = *req.TotalAmountItem
	}
	if total.IsNegative() {
		return nil, model.ErrInvalidRequest.WithMessage("totalAmountItem must not be negative")
	}

	res := &model.PurchaseResult{}
	err := s.uow.WithinTransactionRetry(ctx, func(ctx context.Context) error {
		txn, err := s.lockForStep(ctx, req.TransactionID, model.StepAttachItem)
		if err != nil {
			return err
		}

		product, err := s.products.Get(ctx, req.ProductID)
		if err != nil {
			return err
		}
		if err := ledger.CheckStock(product, req.Count); err != nil {
			return err
		}

		item, err := s.items.Create(ctx, &model.TransactionItem{
			ProductID:     product.ID,
			Count:         req.Count,
			Amount:        req.Amount,
			TotalAmount:   total,
			TransactionID: txn.ID,
		})
		if err != nil {
			return fmt.Errorf("create item: %w", err)
		}

		if err := s.advance(ctx, txn, model.StageItemsAttached); err != nil {
			return err
		}
		res.Transaction, res.Item, res.Product = txn, item, product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// SettlePayment debits the owner of the transaction by the total quantity
// of its items and records the payment. Settling twice returns the first
// payment without debiting again.
func (s *PurchaseService) SettlePayment(ctx context.Context, transactionID, userID int64) (*model.PurchaseResult, error) {
	res := &model.PurchaseResult{}
	err := s.uow.WithinTransactionRetry(ctx, func(ctx context.Context) error {
		txn, err := s.lockForStep(ctx, transactionID, model.StepSettlePayment)
		if err != nil {
			return err
		}
		if txn.UserID != userID {
			if err := s.guard.RequireUser(ctx, userID); err != nil {
				return err
			}
			return model.ErrTransactionNotFound.WithMessage("transaction %d does not belong to user %d", transactionID, userID)
		}
		res.Transaction = txn

		if txn.Stage == model.StagePaymentSettled {
			payment, err := s.payments.FindByTransaction(ctx, txn.ID)
			if err != nil {
				return fmt.Errorf("load payment of settled transaction %d: %w", txn.ID, err)
			}
			user, err := s.users.Get(ctx, userID)
			if err != nil {
				return err
			}
			res.Payment, res.User = payment, user
			return nil
		}

		quantity, err := s.stock.TotalPurchasedQuantity(ctx, txn.ID)
		if err != nil {
			return err
		}
		if quantity == 0 {
			return model.ErrTransactionItemNotFound.WithMessage("transaction %d has no items to settle", txn.ID)
		}

		// one unit of balance per purchased unit
		amount := decimal.NewFromInt(quantity)
		user, err := s.balance.Debit(ctx, userID, amount)
		if err != nil {
			return err
		}

		payment, err := s.payments.Create(ctx, &model.UserPaymentTransaction{
			UserID:        userID,
			TransactionID: &txn.ID,
			Amount:        amount,
			Date:          s.now(),
		})
		if err != nil {
			return fmt.Errorf("create payment: %w", err)
		}

		if err := s.advance(ctx, txn, model.StagePaymentSettled); err != nil {
			return err
		}
		res.Payment, res.User = payment, user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// FinalizeStock deducts the not yet applied quantity of productID in the
// transaction. Once every item is applied the purchase is finalized.
func (s *PurchaseService) FinalizeStock(ctx context.Context, transactionID, productID int64) (*model.PurchaseResult, error) {
	res := &model.PurchaseResult{}
	err := s.uow.WithinTransactionRetry(ctx, func(ctx context.Context) error {
		txn, err := s.lockForStep(ctx, transactionID, model.StepFinalizeStock)
		if err != nil {
			return err
		}
		if err := s.guard.RequireProduct(ctx, productID); err != nil {
			return err
		}

		has, err := s.items.HasProduct(ctx, txn.ID, productID)
		if err != nil {
			return err
		}
		if !has {
			return model.ErrTransactionItemNotFound.WithMessage("transaction %d has no item of product %d", txn.ID, productID)
		}

		product, applied, err := s.stock.ApplyPending(ctx, txn.ID, productID)
		if err != nil {
			return err
		}

		pending, err := s.items.CountPending(ctx, txn.ID)
		if err != nil {
			return err
		}
		if pending == 0 {
			if err := s.advance(ctx, txn, model.StageStockFinalized); err != nil {
				return err
			}
		}

		logger.Debug("stock applied", "transaction_id", txn.ID, "product_id", productID, "quantity", applied, "pending_items", pending)
		res.Transaction, res.Product = txn, product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// RequestCancel queues a compensation for the transaction. The processor
// undoes it asynchronously.
func (s *PurchaseService) RequestCancel(ctx context.Context, transactionID int64, reason string) (*model.CompensationRequest, error) {
	txn, err := s.transactions.Get(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Stage == model.StageCompensated {
		return nil, model.ErrPurchaseStageConflict.WithMessage("transaction %d is already compensated", txn.ID)
	}
	if s.publisher == nil {
		return nil, errors.New("compensation queue is not configured")
	}

	req := &model.CompensationRequest{
		RequestID:     uuid.NewString(),
		TransactionID: txn.ID,
		Reason:        reason,
		RequestedAt:   s.now(),
	}
	_, err = s.publisher.PublishJSON(ctx, req, map[string]string{
		"request_id":     req.RequestID,
		"transaction_id": strconv.FormatInt(txn.ID, 10),
	})
	if err != nil {
		return nil, fmt.Errorf("publish compensation: %w", err)
	}

	logger.Info("compensation requested", "transaction_id", txn.ID, "request_id", req.RequestID)
	return req, nil
}

// Compensate undoes a purchase in one unit of work: applied stock goes back
// to the products, the payment is refunded and hidden, items are hidden and
// the transaction is marked compensated. A compensated transaction is left
// alone.
func (s *PurchaseService) Compensate(ctx context.Context, transactionID int64) (*model.CompensationResult, error) {
	start := time.Now()
	res := &model.CompensationResult{TransactionID: transactionID, RefundedAmount: decimal.Zero}

	err := s.uow.WithinTransactionRetry(ctx, func(ctx context.Context) error {
		res.RefundedAmount, res.RestoredItems, res.AlreadyReverted = decimal.Zero, 0, false

		txn, err := s.transactions.GetForUpdate(ctx, transactionID)
		if err != nil {
			return err
		}
		if txn.Stage == model.StageCompensated {
			res.AlreadyReverted = true
			return nil
		}

		items, err := s.items.ListByTransaction(ctx, txn.ID)
		if err != nil {
			return err
		}
		for _, item := range items {
			if !item.StockApplied {
				continue
			}
			if _, err := s.stock.Restore(ctx, item.ProductID, item.Count); err != nil {
				if errors.Is(err, model.ErrProductNotFound) {
					logger.Warn("skip stock restore of deleted product", "transaction_id", txn.ID, "product_id", item.ProductID)
					continue
				}
				return err
			}
			res.RestoredItems++
		}

		payment, err := s.payments.FindByTransaction(ctx, txn.ID)
		switch {
		case err == nil:
			if err := s.refund(ctx, payment); err != nil {
				return err
			}
			res.RefundedAmount = payment.Amount
		case !errors.Is(err, model.ErrUserPaymentTransactionNotFound):
			return err
		}

		if _, err := s.items.SoftDeleteByTransaction(ctx, txn.ID); err != nil {
			return fmt.Errorf("hide items: %w", err)
		}
		return s.transactions.UpdateStage(ctx, txn.ID, model.StageCompensated)
	})

	prom.ObserveCompensation(outcome(err), time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	logger.Info("purchase compensated",
		"transaction_id", transactionID,
		"refunded", res.RefundedAmount.String(),
		"restored_items", res.RestoredItems,
		"already_reverted", res.AlreadyReverted)
	return res, nil
}

func (s *PurchaseService) refund(ctx context.Context, payment *model.UserPaymentTransaction) error {
	if _, err := s.balance.Credit(ctx, payment.UserID, payment.Amount); err != nil {
		if !errors.Is(err, model.ErrUserNotFound) {
			return err
		}
		logger.Warn("skip refund to deleted user", "user_id", payment.UserID, "payment_id", payment.ID)
	}
	if _, err := s.payments.SoftDelete(ctx, payment.ID); err != nil {
		return fmt.Errorf("hide payment %d: %w", payment.ID, err)
	}
	return nil
}

// lockForStep locks the transaction row and checks that its stage lets step
// run.
func (s *PurchaseService) lockForStep(ctx context.Context, transactionID int64, step model.PurchaseStep) (*model.Transaction, error) {
	if transactionID == 0 {
		return nil, model.ErrTransactionNotFound.WithMessage("transactionId is required for %s", step)
	}
	txn, err := s.transactions.GetForUpdate(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !txn.Stage.Accepts(step) {
		return nil, model.ErrPurchaseStageConflict.WithMessage("%s is not allowed while transaction %d is %s", step, txn.ID, txn.Stage)
	}
	return txn, nil
}

func (s *PurchaseService) advance(ctx context.Context, txn *model.Transaction, stage model.PurchaseStage) error {
	if txn.Stage == stage {
		return nil
	}
	if err := s.transactions.UpdateStage(ctx, txn.ID, stage); err != nil {
		return fmt.Errorf("move transaction %d to %s: %w", txn.ID, stage, err)
	}
	txn.Stage = stage
	return nil
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var e *model.Error
	if errors.As(err, &e) {
		return e.Key
	}
	return model.ErrInternal.Key
}
