package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseStage tracks how far a purchase has progressed.
type PurchaseStage string

const (
	StageCreated        PurchaseStage = "created"
	StageItemsAttached  PurchaseStage = "items_attached"
	StagePaymentSettled PurchaseStage = "payment_settled"
	StageStockFinalized PurchaseStage = "stock_finalized"
	StageCompensated    PurchaseStage = "compensated"
)

// Accepts reports whether step may run while the purchase is in stage s.
// Settling an already settled purchase and finalizing a finalized one are
// accepted so both steps can be retried safely.
func (s PurchaseStage) Accepts(step PurchaseStep) bool {
	switch step {
	case StepAttachItem:
		return s == StageCreated || s == StageItemsAttached
	case StepSettlePayment:
		return s == StageItemsAttached || s == StagePaymentSettled
	case StepFinalizeStock:
		return s == StagePaymentSettled || s == StageStockFinalized
	}
	return false
}

type Transaction struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"userId"`
	UserName    string          `json:"userName,omitempty"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Date        time.Time       `json:"date"`
	Stage       PurchaseStage   `json:"stage"`
	CreatedAt   time.Time       `json:"createdDate"`
	UpdatedAt   time.Time       `json:"modifiedDate"`
}

type TransactionCreateRequest struct {
	UserID      int64           `json:"userId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Date        *time.Time      `json:"date"`
}

func (r TransactionCreateRequest) Validate() error {
	if r.UserID == 0 {
		return ErrInvalidRequest.WithMessage("userId is required")
	}
	if r.TotalAmount.IsNegative() {
		return ErrInvalidRequest.WithMessage("totalAmount must not be negative")
	}
	return nil
}

type TransactionItem struct {
	ID            int64           `json:"id"`
	ProductID     int64           `json:"productId"`
	ProductName   string          `json:"productName,omitempty"`
	Count         int64           `json:"count"`
	Amount        decimal.Decimal `json:"amount"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	TransactionID int64           `json:"transactionId"`
	StockApplied  bool            `json:"stockApplied"`
	CreatedAt     time.Time       `json:"createdDate"`
	UpdatedAt     time.Time       `json:"modifiedDate"`
}

type TransactionItemCreateRequest struct {
	TransactionID   int64            `json:"transactionId"`
	ProductID       int64            `json:"productId"`
	Count           int64            `json:"count"`
	Amount          decimal.Decimal  `json:"amount"`
	TotalAmountItem *decimal.Decimal `json:"totalAmount"`
}

func (r TransactionItemCreateRequest) Validate() error {
	if r.TransactionID == 0 {
		return ErrTransactionNotFound.WithMessage("transactionId is required")
	}
	if r.ProductID == 0 {
		return ErrInvalidRequest.WithMessage("productId is required")
	}
	if r.Count <= 0 {
		return ErrInvalidRequest.WithMessage("count must be positive")
	}
	if r.Amount.IsNegative() {
		return ErrInvalidRequest.WithMessage("amount must not be negative")
	}
	return nil
}

// TransactionItemUpdateRequest patches an item while its purchase still
// accepts items.
type TransactionItemUpdateRequest struct {
	Count       *int64           `json:"count"`
	Amount      *decimal.Decimal `json:"amount"`
	TotalAmount *decimal.Decimal `json:"totalAmount"`
}

func (r TransactionItemUpdateRequest) Validate() error {
	if r.Count != nil && *r.Count <= 0 {
		return ErrInvalidRequest.WithMessage("count must be positive")
	}
	if r.Amount != nil && r.Amount.IsNegative() {
		return ErrInvalidRequest.WithMessage("amount must not be negative")
	}
	if r.TotalAmount != nil && r.TotalAmount.IsNegative() {
		return ErrInvalidRequest.WithMessage("totalAmount must not be negative")
	}
	return nil
}

type UserPaymentTransaction struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"userId"`
	UserName      string          `json:"userName,omitempty"`
	TransactionID *int64          `json:"transactionId,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	CreatedAt     time.Time       `json:"createdDate"`
	UpdatedAt     time.Time       `json:"modifiedDate"`
}

// UserPaymentTransactionCreateRequest settles a transaction on behalf of
// its owner.
type UserPaymentTransactionCreateRequest struct {
	UserID        int64 `json:"userId"`
	TransactionID int64 `json:"transactionId"`
}

func (r UserPaymentTransactionCreateRequest) Validate() error {
	if r.TransactionID == 0 {
		return ErrTransactionNotFound.WithMessage("transactionId is required")
	}
	if r.UserID == 0 {
		return ErrInvalidRequest.WithMessage("userId is required")
	}
	return nil
}
