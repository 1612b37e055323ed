package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PurchaseStep string

const (
	StepCreateTransaction PurchaseStep = "create_transaction"
	StepAttachItem        PurchaseStep = "attach_item"
	StepSettlePayment     PurchaseStep = "settle_payment"
	StepFinalizeStock     PurchaseStep = "finalize_stock"
)

// PurchaseRequest drives one step of a purchase. Step selects the step
// explicitly; when it is empty the step is inferred from which fields are set.
// TransactionID is the id returned by the create step and must be sent with
// every later step.
type PurchaseRequest struct {
	Step            PurchaseStep     `json:"step,omitempty"`
	UserID          *int64           `json:"userId,omitempty"`
	TransactionID   *int64           `json:"transactionId,omitempty"`
	TotalAmount     *decimal.Decimal `json:"totalAmount,omitempty"`
	Date            *time.Time       `json:"date,omitempty"`
	ProductID       *int64           `json:"productId,omitempty"`
	Count           *int64           `json:"count,omitempty"`
	Amount          *decimal.Decimal `json:"amount,omitempty"`
	TotalAmountItem *decimal.Decimal `json:"totalAmountItem,omitempty"`
}

// ResolveStep returns the step this request runs, or ErrInvalidRequest.
//
// Inference rules, first match wins:
//  1. userId, totalAmount and date          -> create transaction
//  2. productId, count and amount           -> attach item
//  3. userId and nothing else               -> settle payment
//  4. productId and count, no amount        -> finalize stock
func (r PurchaseRequest) ResolveStep() (PurchaseStep, error) {
	if r.Step != "" {
		return r.Step, r.validateTagged()
	}

	switch {
	case r.UserID != nil && r.TotalAmount != nil && r.Date != nil:
		return StepCreateTransaction, nil
	case r.ProductID != nil && r.Count != nil && r.Amount != nil:
		return StepAttachItem, nil
	case r.UserID != nil && r.onlyUser():
		return StepSettlePayment, nil
	case r.ProductID != nil && r.Count != nil && r.Amount == nil:
		return StepFinalizeStock, nil
	}
	return "", ErrInvalidRequest.WithMessage("request does not match any purchase step")
}

func (r PurchaseRequest) onlyUser() bool {
	return r.TotalAmount == nil && r.Date == nil && r.ProductID == nil &&
		r.Count == nil && r.Amount == nil && r.TotalAmountItem == nil
}

func (r PurchaseRequest) validateTagged() error {
	switch r.Step {
	case StepCreateTransaction:
		if r.UserID == nil || r.TotalAmount == nil || r.Date == nil {
			return ErrInvalidRequest.WithMessage("create_transaction needs userId, totalAmount and date")
		}
	case StepAttachItem:
		if r.ProductID == nil || r.Count == nil || r.Amount == nil {
			return ErrInvalidRequest.WithMessage("attach_item needs productId, count and amount")
		}
	case StepSettlePayment:
		if r.UserID == nil {
			return ErrInvalidRequest.WithMessage("settle_payment needs userId")
		}
	case StepFinalizeStock:
		if r.ProductID == nil {
			return ErrInvalidRequest.WithMessage("finalize_stock needs productId")
		}
	default:
		return ErrInvalidRequest.WithMessage("unknown step %q", r.Step)
	}
	return nil
}

// PurchaseResult carries whatever the executed step produced.
type PurchaseResult struct {
	Step        PurchaseStep            `json:"step"`
	Transaction *Transaction            `json:"transaction,omitempty"`
	Item        *TransactionItem        `json:"item,omitempty"`
	Payment     *UserPaymentTransaction `json:"payment,omitempty"`
	Product     *Product                `json:"product,omitempty"`
	User        *User                   `json:"user,omitempty"`
}

// CompensationRequest asks the processor to undo a purchase.
type CompensationRequest struct {
	RequestID     string    `json:"requestId"`
	TransactionID int64     `json:"transactionId"`
	Reason        string    `json:"reason,omitempty"`
	RequestedAt   time.Time `json:"requestedAt"`
}

// CompensationResult summarizes what a compensation undid.
type CompensationResult struct {
	TransactionID   int64           `json:"transactionId"`
	RefundedAmount  decimal.Decimal `json:"refundedAmount"`
	RestoredItems   int             `json:"restoredItems"`
	AlreadyReverted bool            `json:"alreadyReverted"`
}
