package ctx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/agromap/agromap/pkg/auth"
	appctx "github.com/agromap/agromap/pkg/ctx"
	"github.com/agromap/agromap/pkg/middleware"
)

func TestWrapAndJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	appctx.Wrap(func(c *appctx.Context) {
		c.Success(map[string]any{"ok": true})
	})(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != `{"ok":true}` {
		t.Errorf("success payloads are sent unwrapped, got %s", rec.Body.String())
	}
}

func TestParamUint(t *testing.T) {
	r := chi.NewRouter()
	var (
		id uint
		ok bool
	)
	r.Get("/products/{id}", appctx.Wrap(func(c *appctx.Context) {
		id, ok = c.ParamUint("id")
	}))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/products/12", nil))
	if !ok || id != 12 {
		t.Errorf("expected 12, got %d (ok=%v)", id, ok)
	}

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/products/abc", nil))
	if ok {
		t.Error("expected a non-numeric id to be rejected")
	}

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/products/0", nil))
	if ok {
		t.Error("expected id 0 to be rejected")
	}
}

func TestBindJSONInvalid(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))

	appctx.Wrap(func(c *appctx.Context) {
		var input struct {
			Name string `json:"name"`
		}
		if c.BindJSON(&input) {
			t.Error("expected BindJSON to fail")
		}
	})(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestClaims(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(middleware.WithClaims(req.Context(), &auth.Claims{UserID: 9, Role: "admin"}))

	appctx.Wrap(func(c *appctx.Context) {
		if c.UserID() != 9 {
			t.Errorf("expected 9, got %d", c.UserID())
		}
	})(httptest.NewRecorder(), req)

	appctx.Wrap(func(c *appctx.Context) {
		if c.Claims() != nil || c.UserID() != 0 {
			t.Error("expected an anonymous caller")
		}
	})(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestSessionCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	appctx.Wrap(func(c *appctx.Context) {
		c.SetSessionCookie("tok", time.Hour, false)
		c.Message("ok")
	})(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != auth.CookieName || !cookies[0].HttpOnly {
		t.Fatalf("unexpected cookies: %+v", cookies)
	}
	if cookies[0].MaxAge != 3600 {
		t.Errorf("expected max-age 3600, got %d", cookies[0].MaxAge)
	}
}

func TestErrorResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	appctx.Wrap(func(c *appctx.Context) {
		c.NotFound("Market not found")
	})(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"message":"Market not found"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}
