package xhttp

import (
	"github.com/fasthttp/router"
)

type Router = router.Router
type Group = router.Group

func NewRouter() *Router {
	return router.New()
}

// CreateDefaultRouter returns a router with strict path matching and the
// JSON not-found handler installed.
func CreateDefaultRouter() *Router {
	r := NewRouter()
	r.RedirectFixedPath = true
	r.RedirectTrailingSlash = true
	r.SaveMatchedRoutePath = true
	r.NotFound = NotFoundHandler
	r.MethodNotAllowed = MethodNotAllowedHandler
	r.HandleOPTIONS = false
	r.HandleMethodNotAllowed = true
	return r
}

func NotFoundHandler(ctx *RequestCtx) {
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(StatusNotFound)
	ctx.SetBodyString(`{"code":404,"message":"route not found"}`)
}

func MethodNotAllowedHandler(ctx *RequestCtx) {
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(fasthttpStatusMethodNotAllowed)
	ctx.SetBodyString(`{"code":405,"message":"method not allowed"}`)
}
