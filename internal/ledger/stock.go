package ledger

import (
	"context"
	"fmt"

	"github.com/nimasrn/purchase-ledger/internal/model"
)

type ProductStore interface {
	GetForUpdate(ctx context.Context, id int64) (*model.Product, error)
	UpdateCount(ctx context.Context, id int64, count int64) error
}

type ItemStore interface {
	TotalQuantity(ctx context.Context, transactionID int64) (int64, error)
	PendingQuantity(ctx context.Context, transactionID, productID int64) (int64, error)
	MarkStockApplied(ctx context.Context, transactionID, productID int64) (int64, error)
}

// CheckStock fails with ErrProductNotEnough when p cannot cover quantity.
func CheckStock(p *model.Product, quantity int64) error {
	if quantity < 0 {
		return model.ErrInvalidRequest.WithMessage("quantity must not be negative")
	}
	if p.Count < quantity {
		return model.ErrProductNotEnough.WithMessage("product %d has %d left, %d requested", p.ID, p.Count, quantity)
	}
	return nil
}

// DeductStock removes quantity units from p. p is left untouched when the
// stock does not cover the quantity.
func DeductStock(p *model.Product, quantity int64) error {
	if err := CheckStock(p, quantity); err != nil {
		return err
	}
	p.Count -= quantity
	return nil
}

// StockLedger aggregates purchased quantities and moves product stock.
// Every mutating method expects to run inside a unit of work.
type StockLedger struct {
	products ProductStore
	items    ItemStore
}

func NewStockLedger(products ProductStore, items ItemStore) *StockLedger {
	return &StockLedger{products: products, items: items}
}

// TotalPurchasedQuantity sums the counts of the live items of a transaction.
func (l *StockLedger) TotalPurchasedQuantity(ctx context.Context, transactionID int64) (int64, error) {
	total, err := l.items.TotalQuantity(ctx, transactionID)
	if err != nil {
		return 0, fmt.Errorf("sum item counts of transaction %d: %w", transactionID, err)
	}
	return total, nil
}

// Deduct locks the product row, checks the stock and writes the new count.
func (l *StockLedger) Deduct(ctx context.Context, productID int64, quantity int64) (*model.Product, error) {
	p, err := l.products.GetForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := DeductStock(p, quantity); err != nil {
		return nil, err
	}
	if err := l.products.UpdateCount(ctx, p.ID, p.Count); err != nil {
		return nil, fmt.Errorf("write count of product %d: %w", p.ID, err)
	}
	return p, nil
}

// Restore puts quantity units back on a product.
func (l *StockLedger) Restore(ctx context.Context, productID int64, quantity int64) (*model.Product, error) {
	p, err := l.products.GetForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}
	p.Count += quantity
	if err := l.products.UpdateCount(ctx, p.ID, p.Count); err != nil {
		return nil, fmt.Errorf("write count of product %d: %w", p.ID, err)
	}
	return p, nil
}

// ApplyPending deducts the not yet applied quantity of productID in the
// transaction and flags those items applied. A second call finds nothing
// pending and leaves the stock alone. The returned quantity is what was
// deducted by this call.
func (l *StockLedger) ApplyPending(ctx context.Context, transactionID, productID int64) (*model.Product, int64, error) {
	p, err := l.products.GetForUpdate(ctx, productID)
	if err != nil {
		return nil, 0, err
	}

	pending, err := l.items.PendingQuantity(ctx, transactionID, productID)
	if err != nil {
		return nil, 0, fmt.Errorf("pending quantity of product %d: %w", productID, err)
	}
	if pending == 0 {
		return p, 0, nil
	}

	if err := DeductStock(p, pending); err != nil {
		return nil, 0, err
	}
	if err := l.products.UpdateCount(ctx, p.ID, p.Count); err != nil {
		return nil, 0, fmt.Errorf("write count of product %d: %w", p.ID, err)
	}
	if _, err := l.items.MarkStockApplied(ctx, transactionID, productID); err != nil {
		return nil, 0, fmt.Errorf("mark items applied: %w", err)
	}
	return p, pending, nil
}
