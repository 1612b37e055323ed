package fixtures

import (
	"time"

	"github.com/nimasrn/purchase-ledger/internal/model"
	"github.com/shopspring/decimal"
)

var (
	TestUser = model.UserCreateRequest{
		Fullname: "Ada Buyer",
		Username: "ada",
		Balance:  decimal.NewFromInt(1000),
	}

	TestCategory = model.CategoryCreateRequest{
		Name:       "Books",
		OrderValue: 1,
	}
)

func TestProduct(categoryID int64, count int64) model.ProductCreateRequest {
	return model.ProductCreateRequest{Name: "Go Programming", Count: count, CategoryID: categoryID}
}

func ptr[T any](v T) *T { return &v }

// CreateTransaction matches the create step by userId, totalAmount and date.
func CreateTransaction(userID, totalAmount int64) model.PurchaseRequest {
	return model.PurchaseRequest{
		UserID:      ptr(userID),
		TotalAmount: ptr(decimal.NewFromInt(totalAmount)),
		Date:        ptr(time.Now().UTC()),
	}
}

// AttachItem matches the attach step by productId, count and amount.
func AttachItem(transactionID, productID, count, amount int64) model.PurchaseRequest {
	return model.PurchaseRequest{
		TransactionID:   ptr(transactionID),
		ProductID:       ptr(productID),
		Count:           ptr(count),
		Amount:          ptr(decimal.NewFromInt(amount)),
		TotalAmountItem: ptr(decimal.NewFromInt(amount * count)),
	}
}

// SettlePayment matches the settle step by a lone userId.
func SettlePayment(transactionID, userID int64) model.PurchaseRequest {
	return model.PurchaseRequest{
		TransactionID: ptr(transactionID),
		UserID:        ptr(userID),
	}
}

// FinalizeStock matches the finalize step by productId and count without amount.
func FinalizeStock(transactionID, productID, count int64) model.PurchaseRequest {
	return model.PurchaseRequest{
		TransactionID: ptr(transactionID),
		ProductID:     ptr(productID),
		Count:         ptr(count),
	}
}
