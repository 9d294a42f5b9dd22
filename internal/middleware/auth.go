// Package middleware provides HTTP middlewares for authentication and
// request logging on the dev server.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ddp-ipb/ddp-admin/internal/models"
)

type ctxKey string

const (
	userKey  ctxKey = "user"
	tokenKey ctxKey = "token"
)

// TokenValidator resolves a bearer token to its user. A nil user with
// a nil error means the token is unknown.
type TokenValidator interface {
	UserForToken(ctx context.Context, token string) (*models.User, error)
}

// BearerAuth enforces bearer-token authentication. Requests without a
// valid token get a 401 with the same JSON message shape the
// production backend emits, which is what the client's unauthorized
// interceptor keys on.
//
// On success the user and the raw token are stored in the request
// context for downstream handlers.
func BearerAuth(v TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				unauthenticated(w)
				return
			}
			user, err := v.UserForToken(r.Context(), token)
			if err != nil || user == nil {
				unauthenticated(w)
				return
			}
			ctx := context.WithValue(r.Context(), userKey, user)
			ctx = context.WithValue(ctx, tokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthenticated(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"message":"Unauthenticated."}`))
}

// UserFromContext extracts the authenticated user from the request
// context. Returns nil if not found.
func UserFromContext(ctx context.Context) *models.User {
	if u, ok := ctx.Value(userKey).(*models.User); ok {
		return u
	}
	return nil
}

// TokenFromContext extracts the raw bearer token from the request
// context. Returns an empty string if not found.
func TokenFromContext(ctx context.Context) string {
	if t, ok := ctx.Value(tokenKey).(string); ok {
		return t
	}
	return ""
}
