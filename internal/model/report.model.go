package model

import "github.com/shopspring/decimal"

// TransactionReport is a transaction with everything recorded against it.
type TransactionReport struct {
	Transaction *Transaction            `json:"transaction"`
	Items       []*TransactionItem      `json:"items"`
	Payment     *UserPaymentTransaction `json:"payment,omitempty"`
	Quantity    int64                   `json:"quantity"`
}

type UserStatement struct {
	User      *User                     `json:"user"`
	Payments  []*UserPaymentTransaction `json:"payments"`
	TotalPaid decimal.Decimal           `json:"totalPaid"`
}

type LowStockReport struct {
	Threshold int64      `json:"threshold"`
	Products  []*Product `json:"products"`
}
