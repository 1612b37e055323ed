package repository

import (
	"testing"

	"github.com/nimasrn/purchase-ledger/pkg/pg"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Entities lists every table of the ledger in dependency order.
func Entities() []any {
	return []any{
		&UserEntity{},
		&CategoryEntity{},
		&ProductEntity{},
		&TransactionEntity{},
		&TransactionItemEntity{},
		&UserPaymentTransactionEntity{},
	}
}

// NewTestDB opens a private in-memory sqlite database with the ledger schema.
// The pool is pinned to one connection so every query sees the same database.
func NewTestDB(t testing.TB) *pg.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), pg.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(Entities()...))

	return pg.New(db, db)
}
