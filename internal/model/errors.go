package model

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a client visible failure with a stable numeric code. Two errors
// match under errors.Is when their codes match, so callers may attach detail
// with WithMessage and still compare against the catalog values below.
type Error struct {
	Code    int    `json:"code"`
	Key     string `json:"-"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Key, e.Message)
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithMessage returns a copy of e carrying a more specific message.
func (e *Error) WithMessage(format string, args ...any) *Error {
	c := *e
	c.Message = fmt.Sprintf(format, args...)
	return &c
}

func newError(code int, key, message string, status int) *Error {
	return &Error{Code: code, Key: key, Message: message, Status: status}
}

var (
	ErrUserNotFound      = newError(100, "USER_NOT_FOUND", "user not found", http.StatusNotFound)
	ErrUserAlreadyExists = newError(101, "USER_ALREADY_EXISTS", "username is already taken", http.StatusConflict)
	ErrInvalidBalance    = newError(102, "INVALID_BALANCE", "balance is not enough", http.StatusConflict)

	ErrCategoryNotFound      = newError(200, "CATEGORY_NOT_FOUND", "category not found", http.StatusNotFound)
	ErrCategoryAlreadyExists = newError(201, "CATEGORY_ALREADY_EXISTS", "category name is already taken", http.StatusConflict)

	ErrProductNotFound      = newError(300, "PRODUCT_NOT_FOUND", "product not found", http.StatusNotFound)
	ErrProductAlreadyExists = newError(301, "PRODUCT_ALREADY_EXISTS", "product name is already taken", http.StatusConflict)
	ErrProductNotEnough     = newError(302, "PRODUCT_NOT_ENOUGH", "product stock is not enough", http.StatusConflict)

	ErrTransactionNotFound      = newError(400, "TRANSACTION_NOT_FOUND", "transaction not found", http.StatusNotFound)
	ErrTransactionAlreadyExists = newError(401, "TRANSACTION_ALREADY_EXISTS", "transaction already exists", http.StatusConflict)
	ErrPurchaseStageConflict    = newError(410, "PURCHASE_STAGE_CONFLICT", "step is not allowed in the current purchase stage", http.StatusConflict)

	ErrTransactionItemNotFound      = newError(500, "TRANSACTION_ITEM_NOT_FOUND", "transaction item not found", http.StatusNotFound)
	ErrTransactionItemAlreadyExists = newError(501, "TRANSACTION_ITEM_ALREADY_EXISTS", "transaction item already exists", http.StatusConflict)

	ErrUserPaymentTransactionNotFound      = newError(600, "USER_PAYMENT_TRANSACTION_NOT_FOUND", "user payment transaction not found", http.StatusNotFound)
	ErrUserPaymentTransactionAlreadyExists = newError(601, "USER_PAYMENT_TRANSACTION_ALREADY_EXISTS", "user payment transaction already exists", http.StatusConflict)

	ErrInvalidRequest = newError(900, "INVALID_REQUEST", "invalid request data", http.StatusBadRequest)
	ErrInternal       = newError(999, "INTERNAL_ERROR", "internal error", http.StatusInternalServerError)
)

// AsError extracts the catalog error from err. Anything outside the catalog
// is reported as ErrInternal.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return ErrInternal
}
