package backoffice

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nimasrn/purchase-ledger/internal/model"
	"github.com/nimasrn/purchase-ledger/internal/queue"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Transaction(ctx context.Context, id int64) (*model.TransactionReport, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*model.TransactionReport), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReportService) UserStatement(ctx context.Context, userID int64) (*model.UserStatement, error) {
	args := m.Called(ctx, userID)
	if r := args.Get(0); r != nil {
		return r.(*model.UserStatement), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReportService) LowStock(ctx context.Context, threshold int64) (*model.LowStockReport, error) {
	args := m.Called(ctx, threshold)
	if r := args.Get(0); r != nil {
		return r.(*model.LowStockReport), args.Error(1)
	}
	return nil, args.Error(1)
}

type stubQueue struct {
	stats *queue.QueueStats
	err   error
}

func (s stubQueue) GetStats(ctx context.Context) (*queue.QueueStats, error) {
	return s.stats, s.err
}

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, router http.Handler, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)

	body := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return w, body
}

func TestHandler_TransactionReport(t *testing.T) {
	reports := new(MockReportService)
	router := SetupRouter(NewHandler(reports, nil))

	reports.On("Transaction", mock.Anything, int64(4)).Return(&model.TransactionReport{
		Transaction: &model.Transaction{ID: 4, UserID: 1, Stage: model.StageStockFinalized},
		Items:       []*model.TransactionItem{{ID: 1, TransactionID: 4, ProductID: 2, Count: 2}},
		Quantity:    2,
	}, nil).Once()
	reports.On("Transaction", mock.Anything, int64(5)).Return(nil, model.ErrTransactionNotFound).Once()

	w, body := serve(t, router, "/reports/transactions/4")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), body["quantity"])

	w, body = serve(t, router, "/reports/transactions/5")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, float64(model.ErrTransactionNotFound.Code), body["code"])

	w, body = serve(t, router, "/reports/transactions/abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, float64(model.ErrInvalidRequest.Code), body["code"])

	reports.AssertExpectations(t)
}

func TestHandler_UserStatement(t *testing.T) {
	reports := new(MockReportService)
	router := SetupRouter(NewHandler(reports, nil))

	reports.On("UserStatement", mock.Anything, int64(1)).Return(&model.UserStatement{
		User:      &model.User{ID: 1, Username: "u", Balance: decimal.NewFromInt(998)},
		TotalPaid: decimal.NewFromInt(2),
	}, nil).Once()
	reports.On("UserStatement", mock.Anything, int64(2)).Return(nil, errors.New("connection refused")).Once()

	w, body := serve(t, router, "/reports/users/1/statement")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", body["totalPaid"])

	w, body = serve(t, router, "/reports/users/2/statement")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, float64(model.ErrInternal.Code), body["code"])

	reports.AssertExpectations(t)
}

func TestHandler_LowStock(t *testing.T) {
	reports := new(MockReportService)
	router := SetupRouter(NewHandler(reports, nil))

	reports.On("LowStock", mock.Anything, int64(5)).Return(&model.LowStockReport{Threshold: 5}, nil).Once()
	reports.On("LowStock", mock.Anything, int64(20)).Return(&model.LowStockReport{Threshold: 20}, nil).Once()

	w, body := serve(t, router, "/reports/products/low-stock")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(5), body["threshold"])

	w, body = serve(t, router, "/reports/products/low-stock?threshold=20")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(20), body["threshold"])

	w, _ = serve(t, router, "/reports/products/low-stock?threshold=many")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	reports.AssertExpectations(t)
}

func TestHandler_CompensationQueue(t *testing.T) {
	w, _ := serve(t, SetupRouter(NewHandler(new(MockReportService), nil)), "/reports/compensations")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	q := stubQueue{stats: &queue.QueueStats{TotalMessages: 3, PendingMessages: 1, DeadLetters: 1}}
	w, body := serve(t, SetupRouter(NewHandler(new(MockReportService), q)), "/reports/compensations")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), body["total"])
	assert.Equal(t, float64(1), body["deadLetters"])
}

func TestHandler_HealthCheck(t *testing.T) {
	w, body := serve(t, SetupRouter(NewHandler(new(MockReportService), nil)), "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
}
