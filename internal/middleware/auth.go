package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/biyonik/project-management-tool/internal/model"
	"github.com/biyonik/project-management-tool/pkg/apierror"
)

type contextKey string

const claimsKey contextKey = "auth.claims"

// TokenValidator verifies an access token and returns the caller's claims.
type TokenValidator interface {
	ValidateToken(token string) (*model.AuthClaims, error)
}

// RequireAuth rejects requests without a valid Bearer token and stores the
// claims on the request context.
func RequireAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeError(w, apierror.CodeUnauthorized, "authentication required")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				writeError(w, apierror.CodeUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
		})
	}
}

// RequireRoles allows only callers whose role is in the given set. Must run
// after RequireAuth.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFrom(r.Context())
			if !ok {
				writeError(w, apierror.CodeUnauthorized, "authentication required")
				return
			}
			if _, ok := allowed[claims.Role]; !ok {
				writeError(w, apierror.CodeForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClaimsFrom returns the authenticated caller's claims, if any.
func ClaimsFrom(ctx context.Context) (*model.AuthClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(*model.AuthClaims)
	return claims, ok
}
