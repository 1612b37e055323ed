package ledger

import (
	"context"
	"fmt"

	"github.com/nimasrn/purchase-ledger/internal/model"
)

type Kind string

const (
	KindUser     Kind = "user"
	KindCategory Kind = "category"
	KindProduct  Kind = "product"
)

type ExistenceChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type NameChecker interface {
	NameAvailable(ctx context.Context, name string, excludeID int64) (bool, error)
}

type NamedStore interface {
	ExistenceChecker
	NameChecker
}

// Guard answers existence and uniqueness questions over live rows.
type Guard struct {
	users        NamedStore
	categories   NamedStore
	products     NamedStore
	transactions ExistenceChecker
}

func NewGuard(users, categories, products NamedStore, transactions ExistenceChecker) *Guard {
	return &Guard{users: users, categories: categories, products: products, transactions: transactions}
}

func (g *Guard) UserExists(ctx context.Context, id int64) (bool, error) {
	return g.users.Exists(ctx, id)
}

func (g *Guard) CategoryExists(ctx context.Context, id int64) (bool, error) {
	return g.categories.Exists(ctx, id)
}

func (g *Guard) ProductExists(ctx context.Context, id int64) (bool, error) {
	return g.products.Exists(ctx, id)
}

func (g *Guard) TransactionExists(ctx context.Context, id int64) (bool, error) {
	return g.transactions.Exists(ctx, id)
}

// UniqueName reports whether no live row of kind other than id carries name.
// Users are named by username.
func (g *Guard) UniqueName(ctx context.Context, kind Kind, id int64, name string) (bool, error) {
	var s NameChecker
	switch kind {
	case KindUser:
		s = g.users
	case KindCategory:
		s = g.categories
	case KindProduct:
		s = g.products
	default:
		return false, fmt.Errorf("unique name: unknown kind %q", kind)
	}
	return s.NameAvailable(ctx, name, id)
}

// RequireUser fails with ErrUserNotFound unless the user is live.
func (g *Guard) RequireUser(ctx context.Context, id int64) error {
	return require(ctx, g.users, id, model.ErrUserNotFound)
}

func (g *Guard) RequireCategory(ctx context.Context, id int64) error {
	return require(ctx, g.categories, id, model.ErrCategoryNotFound)
}

func (g *Guard) RequireProduct(ctx context.Context, id int64) error {
	return require(ctx, g.products, id, model.ErrProductNotFound)
}

func (g *Guard) RequireTransaction(ctx context.Context, id int64) error {
	return require(ctx, g.transactions, id, model.ErrTransactionNotFound)
}

// RequireUniqueName fails with conflict unless name is free for kind.
func (g *Guard) RequireUniqueName(ctx context.Context, kind Kind, id int64, name string, conflict *model.Error) error {
	ok, err := g.UniqueName(ctx, kind, id, name)
	if err != nil {
		return err
	}
	if !ok {
		return conflict
	}
	return nil
}

func require(ctx context.Context, s ExistenceChecker, id int64, notFound *model.Error) error {
	ok, err := s.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return notFound
	}
	return nil
}
