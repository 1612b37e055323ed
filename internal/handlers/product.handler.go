package handlers

import (
	"context"

	"github.com/nimasrn/purchase-ledger/internal/model"
	xhttp "github.com/nimasrn/purchase-ledger/pkg/http"
)

type ProductService interface {
	List(ctx context.Context, p model.PageRequest) (*model.Page[model.Product], error)
	Get(ctx context.Context, id int64) (*model.Product, error)
	Create(ctx context.Context, req model.ProductCreateRequest) (*model.Product, error)
	Update(ctx context.Context, id int64, req model.ProductUpdateRequest) (*model.Product, error)
	Delete(ctx context.Context, id int64) (*model.Product, error)
}

type ProductHandler struct {
	svc ProductService
}

func NewProductHandler(svc ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

func RegisterProductRoutes(e *xhttp.Group, h *ProductHandler) {
	e.GET("/products", h.List)
	e.GET("/products/{id}", h.Get)
	e.POST("/products", h.Create)
	e.PUT("/products/{id}", h.Update)
	e.DELETE("/products/{id}", h.Delete)
}

func (h *ProductHandler) List(ctx *xhttp.RequestCtx)   { handleList(ctx, h.svc.List) }
func (h *ProductHandler) Get(ctx *xhttp.RequestCtx)    { handleByID(ctx, h.svc.Get) }
func (h *ProductHandler) Create(ctx *xhttp.RequestCtx) { handleCreate(ctx, h.svc.Create) }
func (h *ProductHandler) Update(ctx *xhttp.RequestCtx) { handleUpdate(ctx, h.svc.Update) }
func (h *ProductHandler) Delete(ctx *xhttp.RequestCtx) { handleByID(ctx, h.svc.Delete) }
