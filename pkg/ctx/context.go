// Package ctx gives handlers a single request context instead of the
// (http.ResponseWriter, *http.Request) pair:
//
//	func (mc *MarketController) Show(c *ctx.Context) {
//	    id, ok := c.ParamUint("id")
//	    ...
//	    c.Success(market)
//	}
//
//	router.Get("/markets/{id}", "markets.show", ctx.Wrap(mc.Show))
package ctx

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/agromap/agromap/pkg/auth"
	"github.com/agromap/agromap/pkg/bind"
	"github.com/agromap/agromap/pkg/logger"
	"github.com/agromap/agromap/pkg/middleware"
	"github.com/agromap/agromap/pkg/response"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc to a standard http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// Context wraps a request/response pair.
type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	status int
}

var pool = sync.Pool{
	New: func() any { return &Context{} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	c.status = 0
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// ─── Request helpers ──────────────────────────────────────────────────────────

// Param returns a URL path parameter.
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// ParamUint parses a positive integer path parameter.
func (c *Context) ParamUint(key string) (uint, bool) {
	return parseID(c.Param(key))
}

// Query returns a query-string value. Returns "" if not present.
func (c *Context) Query(key string) string {
	return c.R.URL.Query().Get(key)
}

// QueryUint parses a positive integer query value.
func (c *Context) QueryUint(key string) (uint, bool) {
	return parseID(c.Query(key))
}

// Context returns the underlying request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// Claims returns the identified caller. Routes behind rbac.Require always
// have one.
func (c *Context) Claims() *auth.Claims {
	claims, _ := middleware.ClaimsFromCtx(c.R.Context())
	return claims
}

// UserID returns the caller's id, or 0 when anonymous.
func (c *Context) UserID() uint {
	if claims := c.Claims(); claims != nil {
		return claims.UserID
	}
	return 0
}

// Logger returns the request-scoped logger.
func (c *Context) Logger() *slog.Logger {
	return logger.WithCtx(c.R.Context())
}

func parseID(raw string) (uint, bool) {
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// ─── Binding ──────────────────────────────────────────────────────────────────

// BindJSON decodes the JSON body into dest. On a decode error it sends a 400
// and returns false; validation is the service's job.
//
//	var input services.SignupInput
//	if !c.BindJSON(&input) {
//	    return
//	}
func (c *Context) BindJSON(dest any) bool {
	if err := bind.JSON(c.R, dest); err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// ─── Response helpers ─────────────────────────────────────────────────────────

// SetSessionCookie stores the session token in an HttpOnly cookie.
func (c *Context) SetSessionCookie(token string, ttl time.Duration, secure bool) {
	http.SetCookie(c.W, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func (c *Context) ClearSessionCookie() {
	http.SetCookie(c.W, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// JSON writes v with the given status code.
func (c *Context) JSON(code int, v any) {
	c.status = code
	response.JSON(c.W, code, v)
}

// Success sends v as a 200.
func (c *Context) Success(v any) { c.JSON(http.StatusOK, v) }

// Created sends v as a 201.
func (c *Context) Created(v any) { c.JSON(http.StatusCreated, v) }

// Message sends {"message": msg} with a 200.
func (c *Context) Message(msg string) {
	c.JSON(http.StatusOK, map[string]string{"message": msg})
}

// Error sends the error envelope.
func (c *Context) Error(code int, message string) {
	c.status = code
	response.Error(c.W, code, message)
}

// ValidationError sends a 400 with field-level errors.
func (c *Context) ValidationError(errs map[string]string) {
	c.status = http.StatusBadRequest
	response.ValidationError(c.W, errs)
}

// Unauthorized sends a 401.
func (c *Context) Unauthorized(message ...string) {
	msg := "Unauthorized"
	if len(message) > 0 {
		msg = message[0]
	}
	c.Error(http.StatusUnauthorized, msg)
}

// NotFound sends a 404.
func (c *Context) NotFound(message ...string) {
	msg := "Not found"
	if len(message) > 0 {
		msg = message[0]
	}
	c.Error(http.StatusNotFound, msg)
}

// WrittenStatus returns the status written so far, or 0.
func (c *Context) WrittenStatus() int { return c.status }
