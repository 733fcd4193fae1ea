package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agromap/agromap/pkg/auth"
	"github.com/agromap/agromap/pkg/middleware"
)

func TestCheck(t *testing.T) {
	manager := &auth.Claims{UserID: 1, Role: "manager"}

	assert.ErrorIs(t, Authenticated().Check(nil), ErrUnauthenticated)
	assert.NoError(t, Authenticated().Check(manager))
	assert.NoError(t, Roles("manager", "admin").Check(manager))
	assert.ErrorIs(t, Roles("admin").Check(manager), ErrForbidden)
	assert.ErrorIs(t, Roles("admin").Check(nil), ErrUnauthenticated)
}

func TestRequireAnswers401(t *testing.T) {
	h := Require(Roles("admin"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	serve := func(claims *auth.Claims) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
		if claims != nil {
			req = req.WithContext(middleware.WithClaims(req.Context(), claims))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusUnauthorized, serve(nil).Code)

	rec := serve(&auth.Claims{UserID: 2, Role: "consumer"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "permission")

	assert.Equal(t, http.StatusNoContent, serve(&auth.Claims{UserID: 3, Role: "admin"}).Code)
}
