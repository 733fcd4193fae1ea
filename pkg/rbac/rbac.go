// Package rbac decides who may reach a route. One Rule type covers both
// "must be signed in" and "must hold one of these roles".
package rbac

import (
	"errors"
	"net/http"
	"slices"

	"github.com/agromap/agromap/pkg/auth"
	"github.com/agromap/agromap/pkg/middleware"
	"github.com/agromap/agromap/pkg/response"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("insufficient role")
)

// Rule is an access predicate. The zero Rule admits any identified caller.
type Rule struct {
	roles []string
}

// Authenticated admits any signed-in user.
func Authenticated() Rule { return Rule{} }

// Roles admits signed-in users holding one of roles.
func Roles(roles ...string) Rule { return Rule{roles: roles} }

// Check returns nil when claims satisfy the rule.
func (r Rule) Check(claims *auth.Claims) error {
	if claims == nil {
		return ErrUnauthenticated
	}
	if len(r.roles) > 0 && !slices.Contains(r.roles, claims.Role) {
		return ErrForbidden
	}
	return nil
}

// Require is the middleware form of rule. Both failures answer 401.
// middleware.Identify must run first.
func Require(rule Rule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, _ := middleware.ClaimsFromCtx(r.Context())
			switch err := rule.Check(claims); {
			case errors.Is(err, ErrUnauthenticated):
				response.Unauthorized(w, "Authentication required")
			case errors.Is(err, ErrForbidden):
				response.Unauthorized(w, "You do not have permission to perform this action")
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
