package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/nimasrn/purchase-ledger/internal/model"
	"github.com/nimasrn/purchase-ledger/internal/repository"
	"github.com/nimasrn/purchase-ledger/pkg/pg"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	db           *pg.DB
	users        *repository.UserRepository
	categories   *repository.CategoryRepository
	products     *repository.ProductRepository
	transactions *repository.TransactionRepository
	items        *repository.TransactionItemRepository
}

func newEnv(t *testing.T) env {
	db := repository.NewTestDB(t)
	return env{
		db:           db,
		users:        repository.NewUserRepository(db),
		categories:   repository.NewCategoryRepository(db),
		products:     repository.NewProductRepository(db),
		transactions: repository.NewTransactionRepository(db),
		items:        repository.NewTransactionItemRepository(db),
	}
}

func TestDeductStock(t *testing.T) {
	p := &model.Product{ID: 1, Count: 5}

	require.NoError(t, DeductStock(p, 5))
	assert.Equal(t, int64(0), p.Count)

	err := DeductStock(p, 1)
	assert.ErrorIs(t, err, model.ErrProductNotEnough)
	assert.Equal(t, int64(0), p.Count)

	assert.ErrorIs(t, DeductStock(p, -1), model.ErrInvalidRequest)
}

func TestDebitBalance(t *testing.T) {
	u := &model.User{ID: 1, Balance: decimal.NewFromInt(1000)}

	require.NoError(t, DebitBalance(u, decimal.NewFromInt(2)))
	assert.True(t, u.Balance.Equal(decimal.NewFromInt(998)))

	err := DebitBalance(u, decimal.NewFromInt(999))
	assert.ErrorIs(t, err, model.ErrInvalidBalance)
	assert.True(t, u.Balance.Equal(decimal.NewFromInt(998)))

	require.NoError(t, DebitBalance(u, decimal.NewFromInt(998)))
	assert.True(t, u.Balance.IsZero())
}

func TestStockLedger(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	stock := NewStockLedger(e.products, e.items)

	u, err := e.users.Create(ctx, &model.User{Fullname: "U", Username: "u", Balance: decimal.NewFromInt(10)})
	require.NoError(t, err)
	c, err := e.categories.Create(ctx, &model.Category{Name: "C"})
	require.NoError(t, err)
	p, err := e.products.Create(ctx, &model.Product{Name: "P", Count: 10, CategoryID: c.ID})
	require.NoError(t, err)
	txn, err := e.transactions.Create(ctx, &model.Transaction{UserID: u.ID, TotalAmount: decimal.NewFromInt(1), Date: time.Now(), Stage: model.StageCreated})
	require.NoError(t, err)

	t.Run("total of an empty transaction is zero", func(t *testing.T) {
		total, err := stock.TotalPurchasedQuantity(ctx, txn.ID)
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("deduct within stock", func(t *testing.T) {
		got, err := stock.Deduct(ctx, p.ID, 3)
		require.NoError(t, err)
		assert.Equal(t, int64(7), got.Count)

		stored, err := e.products.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(7), stored.Count)
	})

	t.Run("deduct beyond stock leaves count unchanged", func(t *testing.T) {
		_, err := stock.Deduct(ctx, p.ID, 8)
		assert.ErrorIs(t, err, model.ErrProductNotEnough)

		stored, err := e.products.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(7), stored.Count)
	})

	t.Run("deduct unknown product", func(t *testing.T) {
		_, err := stock.Deduct(ctx, 9999, 1)
		assert.ErrorIs(t, err, model.ErrProductNotFound)
	})

	t.Run("restore", func(t *testing.T) {
		got, err := stock.Restore(ctx, p.ID, 3)
		require.NoError(t, err)
		assert.Equal(t, int64(10), got.Count)
	})

	t.Run("apply pending once", func(t *testing.T) {
		for _, n := range []int64{2, 3} {
			_, err := e.items.Create(ctx, &model.TransactionItem{ProductID: p.ID, Count: n, Amount: decimal.NewFromInt(1), TotalAmount: decimal.NewFromInt(n), TransactionID: txn.ID})
			require.NoError(t, err)
		}

		total, err := stock.TotalPurchasedQuantity(ctx, txn.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)

		err = e.db.WithinTransaction(ctx, func(ctx context.Context) error {
			got, applied, err := stock.ApplyPending(ctx, txn.ID, p.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(5), applied)
			assert.Equal(t, int64(5), got.Count)
			return nil
		})
		require.NoError(t, err)

		got, applied, err := stock.ApplyPending(ctx, txn.ID, p.ID)
		require.NoError(t, err)
		assert.Zero(t, applied)
		assert.Equal(t, int64(5), got.Count)
	})
}

func TestStockLedger_ApplyPendingShortStockRollsBack(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	stock := NewStockLedger(e.products, e.items)

	u, err := e.users.Create(ctx, &model.User{Fullname: "U", Username: "u"})
	require.NoError(t, err)
	c, err := e.categories.Create(ctx, &model.Category{Name: "C"})
	require.NoError(t, err)
	p, err := e.products.Create(ctx, &model.Product{Name: "P", Count: 1, CategoryID: c.ID})
	require.NoError(t, err)
	txn, err := e.transactions.Create(ctx, &model.Transaction{UserID: u.ID, Date: time.Now(), Stage: model.StageCreated})
	require.NoError(t, err)
	_, err = e.items.Create(ctx, &model.TransactionItem{ProductID: p.ID, Count: 2, TransactionID: txn.ID})
	require.NoError(t, err)

	err = e.db.WithinTransaction(ctx, func(ctx context.Context) error {
		_, _, err := stock.ApplyPending(ctx, txn.ID, p.ID)
		return err
	})
	assert.ErrorIs(t, err, model.ErrProductNotEnough)

	pending, err := e.items.PendingQuantity(ctx, txn.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pending)
}

func TestBalanceLedger(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	balance := NewBalanceLedger(e.users)

	u, err := e.users.Create(ctx, &model.User{Fullname: "U", Username: "u", Balance: decimal.NewFromInt(1000)})
	require.NoError(t, err)

	got, err := balance.Debit(ctx, u.ID, decimal.NewFromInt(2))
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(998)), got.Balance.String())

	_, err = balance.Debit(ctx, u.ID, decimal.NewFromInt(5000))
	assert.ErrorIs(t, err, model.ErrInvalidBalance)

	stored, err := e.users.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, stored.Balance.Equal(decimal.NewFromInt(998)), stored.Balance.String())

	got, err = balance.Credit(ctx, u.ID, decimal.NewFromInt(2))
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(1000)), got.Balance.String())

	_, err = balance.Debit(ctx, 9999, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestGuard(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	g := NewGuard(e.users, e.categories, e.products, e.transactions)

	u, err := e.users.Create(ctx, &model.User{Fullname: "U", Username: "alice"})
	require.NoError(t, err)
	c, err := e.categories.Create(ctx, &model.Category{Name: "Books"})
	require.NoError(t, err)
	p, err := e.products.Create(ctx, &model.Product{Name: "Pen", Count: 1, CategoryID: c.ID})
	require.NoError(t, err)

	ok, err := g.UserExists(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.ProductExists(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.TransactionExists(ctx, 42)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, g.RequireTransaction(ctx, 42), model.ErrTransactionNotFound)
	assert.ErrorIs(t, g.RequireCategory(ctx, 42), model.ErrCategoryNotFound)
	assert.NoError(t, g.RequireUser(ctx, u.ID))

	t.Run("name held by another row", func(t *testing.T) {
		ok, err := g.UniqueName(ctx, KindUser, 0, "alice")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("name held by the same row", func(t *testing.T) {
		ok, err := g.UniqueName(ctx, KindProduct, p.ID, "Pen")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("name of a deleted row is free", func(t *testing.T) {
		_, err := e.categories.SoftDelete(ctx, c.ID)
		require.NoError(t, err)

		ok, err := g.UniqueName(ctx, KindCategory, 0, "Books")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = g.CategoryExists(ctx, c.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("conflict error", func(t *testing.T) {
		err := g.RequireUniqueName(ctx, KindUser, 0, "alice", model.ErrUserAlreadyExists)
		assert.ErrorIs(t, err, model.ErrUserAlreadyExists)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := g.UniqueName(ctx, Kind("order"), 0, "x")
		assert.Error(t, err)
	})
}
