package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestPurchaseRequest_ResolveStep(t *testing.T) {
	now := time.Now()
	amount := decimal.NewFromInt(100)

	tests := []struct {
		name    string
		req     PurchaseRequest
		want    PurchaseStep
		wantErr bool
	}{
		{
			name: "create transaction",
			req:  PurchaseRequest{UserID: ptr(int64(1)), TotalAmount: &amount, Date: &now},
			want: StepCreateTransaction,
		},
		{
			name: "attach item",
			req:  PurchaseRequest{UserID: ptr(int64(1)), TransactionID: ptr(int64(9)), ProductID: ptr(int64(2)), Count: ptr(int64(2)), Amount: &amount},
			want: StepAttachItem,
		},
		{
			name: "settle payment with only user",
			req:  PurchaseRequest{UserID: ptr(int64(1)), TransactionID: ptr(int64(9))},
			want: StepSettlePayment,
		},
		{
			name: "finalize stock without amount",
			req:  PurchaseRequest{UserID: ptr(int64(1)), ProductID: ptr(int64(2)), Count: ptr(int64(2))},
			want: StepFinalizeStock,
		},
		{
			name: "create wins over attach when both present",
			req:  PurchaseRequest{UserID: ptr(int64(1)), TotalAmount: &amount, Date: &now, ProductID: ptr(int64(2)), Count: ptr(int64(1)), Amount: &amount},
			want: StepCreateTransaction,
		},
		{
			name:    "only date present",
			req:     PurchaseRequest{Date: &now},
			wantErr: true,
		},
		{
			name:    "user with date is not settle",
			req:     PurchaseRequest{UserID: ptr(int64(1)), Date: &now},
			wantErr: true,
		},
		{
			name:    "total without user",
			req:     PurchaseRequest{TotalAmount: &amount, Date: &now},
			wantErr: true,
		},
		{
			name:    "empty",
			req:     PurchaseRequest{},
			wantErr: true,
		},
		{
			name: "explicit tag",
			req:  PurchaseRequest{Step: StepSettlePayment, UserID: ptr(int64(1)), Date: &now},
			want: StepSettlePayment,
		},
		{
			name:    "explicit tag missing fields",
			req:     PurchaseRequest{Step: StepAttachItem, ProductID: ptr(int64(1))},
			wantErr: true,
		},
		{
			name:    "unknown tag",
			req:     PurchaseRequest{Step: "refund", UserID: ptr(int64(1))},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.req.ResolveStep()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidRequest)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPurchaseStage_Accepts(t *testing.T) {
	assert.True(t, StageCreated.Accepts(StepAttachItem))
	assert.True(t, StageItemsAttached.Accepts(StepAttachItem))
	assert.False(t, StagePaymentSettled.Accepts(StepAttachItem))

	assert.False(t, StageCreated.Accepts(StepSettlePayment))
	assert.True(t, StageItemsAttached.Accepts(StepSettlePayment))
	assert.True(t, StagePaymentSettled.Accepts(StepSettlePayment))

	assert.False(t, StageItemsAttached.Accepts(StepFinalizeStock))
	assert.True(t, StagePaymentSettled.Accepts(StepFinalizeStock))
	assert.True(t, StageStockFinalized.Accepts(StepFinalizeStock))

	assert.False(t, StageCompensated.Accepts(StepAttachItem))
	assert.False(t, StageCompensated.Accepts(StepFinalizeStock))
}
