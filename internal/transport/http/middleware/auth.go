package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/lost-found-api/internal/domain"
)

type contextKey string

const IdentityKey contextKey = "identity"

// TokenVerifier turns a bearer credential into a verified identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*domain.Identity, error)
}

// Auth returns middleware that validates the Bearer token and injects the identity into context.
func Auth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid authorization header")
				return
			}
			ident, err := verifier.Verify(r.Context(), strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")))
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", tokenMessage(err))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), ident)))
		})
	}
}

func tokenMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		return "token has expired"
	case errors.Is(err, domain.ErrTokenMalformed):
		return "token is malformed"
	default:
		return "token is invalid"
	}
}

// WithIdentity stores ident in ctx.
func WithIdentity(ctx context.Context, ident *domain.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, ident)
}

// IdentityFromContext extracts the verified identity from the request context.
func IdentityFromContext(ctx context.Context) (*domain.Identity, bool) {
	ident, ok := ctx.Value(IdentityKey).(*domain.Identity)
	return ident, ok && ident != nil
}
