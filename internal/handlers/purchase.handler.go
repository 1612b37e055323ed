package handlers

import (
	"context"

	"github.com/nimasrn/purchase-ledger/internal/model"
	xhttp "github.com/nimasrn/purchase-ledger/pkg/http"
)

type PurchaseService interface {
	ProcessRequest(ctx context.Context, req model.PurchaseRequest) (*model.PurchaseResult, error)
	RequestCancel(ctx context.Context, transactionID int64, reason string) (*model.CompensationRequest, error)
}

type PurchaseHandler struct {
	svc PurchaseService
}

func NewPurchaseHandler(svc PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{svc: svc}
}

func RegisterPurchaseRoutes(e *xhttp.Group, h *PurchaseHandler) {
	e.POST("/purchase/process", h.Process)
	e.POST("/purchase/{id}/cancel", h.Cancel)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h *PurchaseHandler) Process(ctx *xhttp.RequestCtx) {
	var req model.PurchaseRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, err)
		return
	}
	res, err := h.svc.ProcessRequest(ctx, req)
	if err != nil {
		writeError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, res)
}

// Cancel accepts a compensation request. The purchase is undone later by
// the processor.
func (h *PurchaseHandler) Cancel(ctx *xhttp.RequestCtx) {
	id, err := pathID(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	var body cancelRequest
	if len(ctx.PostBody()) > 0 {
		if err := readJSON(ctx, &body); err != nil {
			writeError(ctx, err)
			return
		}
	}
	req, err := h.svc.RequestCancel(ctx, id, body.Reason)
	if err != nil {
		writeError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusAccepted, req)
}
