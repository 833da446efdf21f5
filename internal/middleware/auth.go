package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/taskit/taskit-go/internal/model"
)

type contextKey string

const (
	userKey  contextKey = "user"
	tokenKey contextKey = "token"
)

// SessionResolver maps a raw bearer token to its authenticated user plus the
// exact matched token. Implemented by service.AuthService.
type SessionResolver interface {
	Resolve(ctx context.Context, rawToken string) (*model.User, string, error)
}

// Auth returns middleware that authenticates requests via the Authorization
// header. The resolved user and the raw matched token are attached to the
// request context; logout handlers need the token to know which session to
// drop. The middleware only reads, it never mutates stored state.
func Auth(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONError(w, http.StatusUnauthorized, "please authenticate")
				return
			}

			raw, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found || raw == "" {
				writeJSONError(w, http.StatusUnauthorized, "please authenticate")
				return
			}

			user, token, err := resolver.Resolve(r.Context(), raw)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "please authenticate")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			ctx = context.WithValue(ctx, tokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext extracts the authenticated user from the request context.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok
}

// TokenFromContext extracts the matched session token from the request context.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey).(string)
	return token, ok
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
