package handlers

import (
	"context"

	"github.com/nimasrn/purchase-ledger/internal/model"
	xhttp "github.com/nimasrn/purchase-ledger/pkg/http"
)

type CategoryService interface {
	List(ctx context.Context, p model.PageRequest) (*model.Page[model.Category], error)
	Get(ctx context.Context, id int64) (*model.Category, error)
	Create(ctx context.Context, req model.CategoryCreateRequest) (*model.Category, error)
	Update(ctx context.Context, id int64, req model.CategoryUpdateRequest) (*model.Category, error)
	Delete(ctx context.Context, id int64) (*model.Category, error)
}

type CategoryHandler struct {
	svc CategoryService
}

func NewCategoryHandler(svc CategoryService) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

func RegisterCategoryRoutes(e *xhttp.Group, h *CategoryHandler) {
	e.GET("/categories", h.List)
	e.GET("/categories/{id}", h.Get)
	e.POST("/categories", h.Create)
	e.PUT("/categories/{id}", h.Update)
	e.DELETE("/categories/{id}", h.Delete)
}

func (h *CategoryHandler) List(ctx *xhttp.RequestCtx)   { handleList(ctx, h.svc.List) }
func (h *CategoryHandler) Get(ctx *xhttp.RequestCtx)    { handleByID(ctx, h.svc.Get) }
func (h *CategoryHandler) Create(ctx *xhttp.RequestCtx) { handleCreate(ctx, h.svc.Create) }
func (h *CategoryHandler) Update(ctx *xhttp.RequestCtx) { handleUpdate(ctx, h.svc.Update) }
func (h *CategoryHandler) Delete(ctx *xhttp.RequestCtx) { handleByID(ctx, h.svc.Delete) }
