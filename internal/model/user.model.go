package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID        int64           `json:"id"`
	Fullname  string          `json:"fullname"`
	Username  string          `json:"username"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"createdDate"`
	UpdatedAt time.Time       `json:"modifiedDate"`
}

type UserCreateRequest struct {
	Fullname string          `json:"fullname"`
	Username string          `json:"username"`
	Balance  decimal.Decimal `json:"balance"`
}

func (r UserCreateRequest) Validate() error {
	if r.Fullname == "" {
		return ErrInvalidRequest.WithMessage("fullname is required")
	}
	if r.Username == "" {
		return ErrInvalidRequest.WithMessage("username is required")
	}
	if r.Balance.IsNegative() {
		return ErrInvalidRequest.WithMessage("balance must not be negative")
	}
	return nil
}

// UserUpdateRequest patches the non-nil fields.
type UserUpdateRequest struct {
	Fullname *string          `json:"fullname"`
	Username *string          `json:"username"`
	Balance  *decimal.Decimal `json:"balance"`
}

func (r UserUpdateRequest) Validate() error {
	if r.Username != nil && *r.Username == "" {
		return ErrInvalidRequest.WithMessage("username must not be empty")
	}
	if r.Balance != nil && r.Balance.IsNegative() {
		return ErrInvalidRequest.WithMessage("balance must not be negative")
	}
	return nil
}
