package services

import (
	"github.com/nimasrn/purchase-ledger/internal/ledger"
	"github.com/nimasrn/purchase-ledger/internal/repository"
	"github.com/nimasrn/purchase-ledger/pkg/pg"
)

// Services is every service of the ledger wired over one database.
type Services struct {
	Users            *UserService
	Categories       *CategoryService
	Products         *ProductService
	Transactions     *TransactionService
	TransactionItems *TransactionItemService
	Payments         *PaymentService
	Purchase         *PurchaseService
	Reports          *ReportService
}

// New builds the repositories, ledgers and services over db. publisher may
// be nil for binaries that never request a compensation.
func New(db *pg.DB, publisher CompensationPublisher) *Services {
	users := repository.NewUserRepository(db)
	categories := repository.NewCategoryRepository(db)
	products := repository.NewProductRepository(db)
	transactions := repository.NewTransactionRepository(db)
	items := repository.NewTransactionItemRepository(db)
	payments := repository.NewUserPaymentTransactionRepository(db)

	guard := ledger.NewGuard(users, categories, products, transactions)
	stock := ledger.NewStockLedger(products, items)
	balance := ledger.NewBalanceLedger(users)

	purchase := NewPurchaseService(db, PurchaseRepositories{
		Users:        users,
		Products:     products,
		Transactions: transactions,
		Items:        items,
		Payments:     payments,
	}, guard, stock, balance, publisher)

	return &Services{
		Users:            NewUserService(db, users, guard),
		Categories:       NewCategoryService(db, categories, guard),
		Products:         NewProductService(db, products, guard),
		Transactions:     NewTransactionService(db, transactions, purchase),
		TransactionItems: NewTransactionItemService(db, items, transactions, products, purchase),
		Payments:         NewPaymentService(db, payments, transactions, purchase),
		Purchase:         purchase,
		Reports:          NewReportService(transactions, items, payments, users, products),
	}
}

