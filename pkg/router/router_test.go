package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupMiddlewareOrderAndParams(t *testing.T) {
	r := New()

	var order []string
	mw := func(tag string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				order = append(order, tag)
				next.ServeHTTP(w, req)
			})
		}
	}

	api := r.Group("/api", mw("group"))
	api.Group("/products").Get("/{id}", "products.show", func(w http.ResponseWriter, req *http.Request) {
		order = append(order, "handler:"+chi.URLParam(req, "id"))
	}, mw("route"))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/42", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"group", "route", "handler:42"}, order)
}

func TestNamedRoutes(t *testing.T) {
	r := New()
	r.Group("api").Get("markets/{id}/products", "markets.products", func(http.ResponseWriter, *http.Request) {})

	path, ok := r.Path("markets.products")
	require.True(t, ok)
	assert.Equal(t, "/api/markets/{id}/products", path)

	url, err := r.URL("markets.products", map[string]string{"id": "7"})
	require.NoError(t, err)
	assert.Equal(t, "/api/markets/7/products", url)

	_, err = r.URL("markets.products", nil)
	assert.Error(t, err)

	routes := r.Routes()
	require.Len(t, routes, 1)
	assert.Equal(t, http.MethodGet, routes[0].Method)
}

func TestJSONNotFoundAndMethodNotAllowed(t *testing.T) {
	r := New()
	r.Group("/api").Delete("/things/{id}", "things.delete", func(http.ResponseWriter, *http.Request) {})

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/things/1", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Body.String(), `"message":"Method not allowed"`)

	rec = httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
