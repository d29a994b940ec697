package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/meridian-admin/meridian/internal/rbac"
)

// Middleware resolves bearer credentials into a principal on the request
// context. Requests without a valid token pass through unauthenticated; the
// authorization guard decides whether that matters for the route.
type Middleware struct {
	Tokens *TokenManager
	Logger *slog.Logger
}

// Handler extracts the Authorization header and attaches the principal id.
func (m Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		userID, err := m.Tokens.Lookup(r.Context(), token)
		if err != nil {
			if !errors.Is(err, ErrTokenNotFound) && m.Logger != nil {
				m.Logger.Error("token lookup", slog.Any("error", err))
			}
			next.ServeHTTP(w, r)
			return
		}
		ctx := rbac.ContextWithPrincipal(r.Context(), userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
