package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/agromap/agromap/pkg/auth"
	"github.com/agromap/agromap/pkg/logger"
)

type ctxKey struct{}

// RoleLookup returns a user's current role. found is false when the account
// no longer exists.
type RoleLookup func(ctx context.Context, userID uint) (role string, found bool, err error)

// Identify reads the session token from the Authorization header or the
// session cookie and, when it verifies, attaches its claims to the request
// context. With a lookup, the role comes from the store rather than the
// token, and tokens of deleted accounts are ignored. It never rejects:
// access rules live in pkg/rbac.
func Identify(issuer *auth.Issuer, lookup RoleLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw := tokenFrom(r); raw != "" {
				if claims, err := issuer.Validate(raw); err == nil {
					if claims = refresh(r, claims, lookup); claims != nil {
						r = r.WithContext(WithClaims(r.Context(), claims))
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// refresh returns claims carrying the stored role, or nil when the caller
// must be treated as anonymous.
func refresh(r *http.Request, claims *auth.Claims, lookup RoleLookup) *auth.Claims {
	if lookup == nil {
		return claims
	}
	role, found, err := lookup(r.Context(), claims.UserID)
	if err != nil {
		logger.WithCtx(r.Context()).Warn("identify: role lookup failed", "user_id", claims.UserID, "error", err)
		return nil
	}
	if !found {
		return nil
	}
	if role != claims.Role {
		current := *claims
		current.Role = role
		return &current
	}
	return claims
}

func tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(auth.CookieName); err == nil {
		return c.Value
	}
	return ""
}

// WithClaims stores claims in ctx.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, claims)
}

// ClaimsFromCtx returns the caller's claims, if the request was identified.
func ClaimsFromCtx(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(ctxKey{}).(*auth.Claims)
	return claims, ok && claims != nil
}

func UserIDFromCtx(ctx context.Context) (uint, bool) {
	claims, ok := ClaimsFromCtx(ctx)
	if !ok {
		return 0, false
	}
	return claims.UserID, true
}

func RoleFromCtx(ctx context.Context) (string, bool) {
	claims, ok := ClaimsFromCtx(ctx)
	if !ok {
		return "", false
	}
	return claims.Role, true
}
