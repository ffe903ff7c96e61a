// Package ctx gives handlers a single request/response object with
// helpers for params, binding and the JSON envelope.
//
//	func (c *ShopController) Show(x *ctx.Context) {
//	    id, ok := x.ParamUint("id")
//	    if !ok {
//	        return
//	    }
//	    ...
//	    x.Success(shop)
//	}
//
//	g.Get("/shops/{id}", "shops.show", ctx.Wrap(shops.Show))
package ctx

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/uniformhub/pkg/auth"
	"github.com/shashiranjanraj/uniformhub/pkg/bind"
	"github.com/shashiranjanraj/uniformhub/pkg/orm"
	"github.com/shashiranjanraj/uniformhub/pkg/response"
	"github.com/shashiranjanraj/uniformhub/pkg/validate"
)

type HandlerFunc func(c *Context)

// Wrap adapts a HandlerFunc to http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	status int
}

var pool = sync.Pool{New: func() any { return &Context{} }}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W, c.R, c.status = w, r, 0
	return c
}

func release(c *Context) {
	c.W, c.R = nil, nil
	pool.Put(c)
}

// Context returns the request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// Principal is the signed-in user, or nil.
func (c *Context) Principal() *auth.Principal { return auth.FromContext(c.R.Context()) }

func (c *Context) Param(key string) string { return chi.URLParam(c.R, key) }

// ParamUint parses a numeric path parameter. On failure it writes a 404
// and returns false.
func (c *Context) ParamUint(key string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(key), 10, 64)
	if err != nil || n == 0 {
		c.NotFound()
		return 0, false
	}
	return uint(n), true
}

func (c *Context) Query(key string) string { return c.R.URL.Query().Get(key) }

// QueryUint returns a positive integer query value or 0.
func (c *Context) QueryUint(key string) uint {
	n, err := strconv.ParseUint(c.Query(key), 10, 64)
	if err != nil {
		return 0
	}
	return uint(n)
}

// QueryInt64 returns the query value as int64, and whether it was present
// and well formed.
func (c *Context) QueryInt64(key string) (int64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	return n, err == nil
}

// Page reads page and per_page.
func (c *Context) Page() orm.PageRequest {
	return orm.ParsePage(c.Query("page"), c.Query("per_page"))
}

func (c *Context) Header(key string) string { return c.R.Header.Get(key) }

func (c *Context) UserAgent() string { return c.R.UserAgent() }

// ClientIP is the host part of RemoteAddr. Behind a trusted proxy the
// middleware.TrustedProxies handler has already rewritten it.
func (c *Context) ClientIP() string {
	host, _, err := net.SplitHostPort(c.R.RemoteAddr)
	if err != nil {
		return c.R.RemoteAddr
	}
	return host
}

// BindJSON decodes and validates the body. It writes 400 or 422 itself
// and returns false when the handler should stop.
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.R, dest)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	if validate.HasErrors(errs) {
		c.ValidationError(errs)
		return false
	}
	return true
}

func (c *Context) write(code int, body response.Envelope) {
	c.status = code
	response.Write(c.W, code, body)
}

func (c *Context) Success(data any) {
	c.write(http.StatusOK, response.Envelope{Status: http.StatusOK, Data: data})
}

// Message sends a 200 with only a message.
func (c *Context) Message(msg string) {
	c.write(http.StatusOK, response.Envelope{Status: http.StatusOK, Message: msg})
}

func (c *Context) Created(data any) {
	c.write(http.StatusCreated, response.Envelope{Status: http.StatusCreated, Data: data})
}

// Accepted sends a 202 with a message and optional data.
func (c *Context) Accepted(msg string, data any) {
	c.write(http.StatusAccepted, response.Envelope{Status: http.StatusAccepted, Message: msg, Data: data})
}

func (c *Context) NoContent() {
	c.status = http.StatusNoContent
	c.W.WriteHeader(http.StatusNoContent)
}

func (c *Context) Paginated(items any, p orm.Pagination) {
	c.Success(map[string]any{"items": items, "pagination": p})
}

func (c *Context) Error(code int, message string) {
	c.write(code, response.Envelope{Status: code, Message: message})
}

// ErrorData sends an error status that also carries data (the 403 for a
// banned account includes the ban reason).
func (c *Context) ErrorData(code int, message string, data any) {
	c.write(code, response.Envelope{Status: code, Message: message, Data: data})
}

func (c *Context) ValidationError(errs map[string]string) {
	c.write(http.StatusUnprocessableEntity, response.Envelope{
		Status:  http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  errs,
	})
}

func (c *Context) Unauthorized() { c.Error(http.StatusUnauthorized, "Unauthorized") }

func (c *Context) Forbidden(message ...string) {
	msg := "Forbidden"
	if len(message) > 0 {
		msg = message[0]
	}
	c.Error(http.StatusForbidden, msg)
}

func (c *Context) NotFound(message ...string) {
	msg := "Not found"
	if len(message) > 0 {
		msg = message[0]
	}
	c.Error(http.StatusNotFound, msg)
}

// WrittenStatus is the status written so far, or 0.
func (c *Context) WrittenStatus() int { return c.status }
