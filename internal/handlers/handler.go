package handlers

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/nimasrn/purchase-ledger/internal/config"
	"github.com/nimasrn/purchase-ledger/internal/model"
	xhttp "github.com/nimasrn/purchase-ledger/pkg/http"
	"github.com/nimasrn/purchase-ledger/pkg/logger"
)

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	if len(body) == 0 {
		return model.ErrInvalidRequest.WithMessage("request body is empty")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return model.ErrInvalidRequest.WithMessage("invalid JSON: %s", err.Error())
	}
	return nil
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

// writeError renders err as {code, message}. Errors outside the catalog are
// logged and hidden behind the internal error.
func writeError(ctx *xhttp.RequestCtx, err error) {
	e := model.AsError(err)
	if e.Is(model.ErrInternal) {
		logger.Error("request failed",
			"request_id", xhttp.RequestID(ctx),
			"path", string(ctx.Path()),
			"error", err)
	}
	writeJSON(ctx, e.Status, errorResponse{Code: e.Code, Message: e.Message})
}

func pathID(ctx *xhttp.RequestCtx) (int64, error) {
	raw, _ := ctx.UserValue("id").(string)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, model.ErrInvalidRequest.WithMessage("invalid id %q", raw)
	}
	return id, nil
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

// pageRequest reads page and size from the query string. page is zero based;
// size falls back to and is capped by the configured page sizes.
func pageRequest(ctx *xhttp.RequestCtx) (model.PageRequest, error) {
	var p model.PageRequest
	if v := query(ctx, "page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return p, model.ErrInvalidRequest.WithMessage("invalid page %q", v)
		}
		p.Page = n
	}
	requested := 0
	if v := query(ctx, "size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return p, model.ErrInvalidRequest.WithMessage("invalid size %q", v)
		}
		requested = n
	}
	p.Size = config.Get().PageSize(requested)
	return p, nil
}

func handleList[T any](ctx *xhttp.RequestCtx, list func(context.Context, model.PageRequest) (*model.Page[T], error)) {
	p, err := pageRequest(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	page, err := list(ctx, p)
	if err != nil {
		writeError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, page)
}

func handleByID[T any](ctx *xhttp.RequestCtx, fn func(context.Context, int64) (*T, error)) {
	id, err := pathID(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	v, err := fn(ctx, id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, v)
}

func handleCreate[R, T any](ctx *xhttp.RequestCtx, create func(context.Context, R) (*T, error)) {
	var req R
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, err)
		return
	}
	v, err := create(ctx, req)
	if err != nil {
		writeError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, v)
}

func handleUpdate[R, T any](ctx *xhttp.RequestCtx, update func(context.Context, int64, R) (*T, error)) {
	id, err := pathID(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	var req R
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, err)
		return
	}
	v, err := update(ctx, id, req)
	if err != nil {
		writeError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, v)
}
