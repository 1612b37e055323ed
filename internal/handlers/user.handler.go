package handlers

import (
	"context"

	"github.com/nimasrn/purchase-ledger/internal/model"
	xhttp "github.com/nimasrn/purchase-ledger/pkg/http"
)

type UserService interface {
	List(ctx context.Context, p model.PageRequest) (*model.Page[model.User], error)
	Get(ctx context.Context, id int64) (*model.User, error)
	Create(ctx context.Context, req model.UserCreateRequest) (*model.User, error)
	Update(ctx context.Context, id int64, req model.UserUpdateRequest) (*model.User, error)
	Delete(ctx context.Context, id int64) (*model.User, error)
}

type UserHandler struct {
	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

func RegisterUserRoutes(e *xhttp.Group, h *UserHandler) {
	e.GET("/users", h.List)
	e.GET("/users/{id}", h.Get)
	e.POST("/users", h.Create)
	e.PUT("/users/{id}", h.Update)
	e.DELETE("/users/{id}", h.Delete)
}

func (h *UserHandler) List(ctx *xhttp.RequestCtx)   { handleList(ctx, h.svc.List) }
func (h *UserHandler) Get(ctx *xhttp.RequestCtx)    { handleByID(ctx, h.svc.Get) }
func (h *UserHandler) Create(ctx *xhttp.RequestCtx) { handleCreate(ctx, h.svc.Create) }
func (h *UserHandler) Update(ctx *xhttp.RequestCtx) { handleUpdate(ctx, h.svc.Update) }
func (h *UserHandler) Delete(ctx *xhttp.RequestCtx) { handleByID(ctx, h.svc.Delete) }
