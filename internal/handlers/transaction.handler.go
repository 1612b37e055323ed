package handlers

import (
	"context"

	"github.com/nimasrn/purchase-ledger/internal/model"
	xhttp "github.com/nimasrn/purchase-ledger/pkg/http"
)

type TransactionService interface {
	List(ctx context.Context, p model.PageRequest) (*model.Page[model.Transaction], error)
	Get(ctx context.Context, id int64) (*model.Transaction, error)
	Create(ctx context.Context, req model.TransactionCreateRequest) (*model.Transaction, error)
	Delete(ctx context.Context, id int64) (*model.Transaction, error)
}

type TransactionItemService interface {
	List(ctx context.Context, p model.PageRequest) (*model.Page[model.TransactionItem], error)
	Get(ctx context.Context, id int64) (*model.TransactionItem, error)
	Create(ctx context.Context, req model.TransactionItemCreateRequest) (*model.TransactionItem, error)
	Update(ctx context.Context, id int64, req model.TransactionItemUpdateRequest) (*model.TransactionItem, error)
	Delete(ctx context.Context, id int64) (*model.TransactionItem, error)
}

type PaymentService interface {
	List(ctx context.Context, p model.PageRequest) (*model.Page[model.UserPaymentTransaction], error)
	Get(ctx context.Context, id int64) (*model.UserPaymentTransaction, error)
	Create(ctx context.Context, req model.UserPaymentTransactionCreateRequest) (*model.UserPaymentTransaction, error)
	Delete(ctx context.Context, id int64) (*model.UserPaymentTransaction, error)
}

// TransactionHandler serves transactions, their items and the payments
// settling them.
type TransactionHandler struct {
	transactions TransactionService
	items        TransactionItemService
	payments     PaymentService
}

func NewTransactionHandler(transactions TransactionService, items TransactionItemService, payments PaymentService) *TransactionHandler {
	return &TransactionHandler{transactions: transactions, items: items, payments: payments}
}

func RegisterTransactionRoutes(e *xhttp.Group, h *TransactionHandler) {
	e.GET("/transactions", h.ListTransactions)
	e.GET("/transactions/{id}", h.GetTransaction)
	e.POST("/transactions", h.CreateTransaction)
	e.DELETE("/transactions/{id}", h.DeleteTransaction)

	e.GET("/transaction-items", h.ListItems)
	e.GET("/transaction-items/{id}", h.GetItem)
	e.POST("/transaction-items", h.CreateItem)
	e.PUT("/transaction-items/{id}", h.UpdateItem)
	e.DELETE("/transaction-items/{id}", h.DeleteItem)

	e.GET("/user-payment-transactions", h.ListPayments)
	e.GET("/user-payment-transactions/{id}", h.GetPayment)
	e.POST("/user-payment-transactions", h.CreatePayment)
	e.DELETE("/user-payment-transactions/{id}", h.DeletePayment)
}

func (h *TransactionHandler) ListTransactions(ctx *xhttp.RequestCtx) {
	handleList(ctx, h.transactions.List)
}

func (h *TransactionHandler) GetTransaction(ctx *xhttp.RequestCtx) {
	handleByID(ctx, h.transactions.Get)
}

func (h *TransactionHandler) CreateTransaction(ctx *xhttp.RequestCtx) {
	handleCreate(ctx, h.transactions.Create)
}

func (h *TransactionHandler) DeleteTransaction(ctx *xhttp.RequestCtx) {
	handleByID(ctx, h.transactions.Delete)
}

func (h *TransactionHandler) ListItems(ctx *xhttp.RequestCtx)  { handleList(ctx, h.items.List) }
func (h *TransactionHandler) GetItem(ctx *xhttp.RequestCtx)    { handleByID(ctx, h.items.Get) }
func (h *TransactionHandler) CreateItem(ctx *xhttp.RequestCtx) { handleCreate(ctx, h.items.Create) }
func (h *TransactionHandler) UpdateItem(ctx *xhttp.RequestCtx) { handleUpdate(ctx, h.items.Update) }
func (h *TransactionHandler) DeleteItem(ctx *xhttp.RequestCtx) { handleByID(ctx, h.items.Delete) }

func (h *TransactionHandler) ListPayments(ctx *xhttp.RequestCtx) { handleList(ctx, h.payments.List) }
func (h *TransactionHandler) GetPayment(ctx *xhttp.RequestCtx)   { handleByID(ctx, h.payments.Get) }
func (h *TransactionHandler) DeletePayment(ctx *xhttp.RequestCtx) {
	handleByID(ctx, h.payments.Delete)
}

// CreatePayment settles a transaction. The transaction id may come from the
// body or the transactionId query parameter.
func (h *TransactionHandler) CreatePayment(ctx *xhttp.RequestCtx) {
	var req model.UserPaymentTransactionCreateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, err)
		return
	}
	if req.TransactionID == 0 {
		if v := ctx.QueryArgs().GetUintOrZero("transactionId"); v > 0 {
			req.TransactionID = int64(v)
		}
	}
	p, err := h.payments.Create(ctx, req)
	if err != nil {
		writeError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, p)
}
