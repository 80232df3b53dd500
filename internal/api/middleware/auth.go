package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/notasalud/clinicalnotes/backend/internal/domain/entities"
	"github.com/notasalud/clinicalnotes/backend/internal/domain/providers"
)

type contextKey string

const userContextKey contextKey = "user"

// AuthMiddleware guards API routes behind the identity provider. Auth and
// health endpoints stay open so the login flow itself can complete.
func AuthMiddleware(identity providers.IdentityProvider, enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled || identity == nil {
				next.ServeHTTP(w, r)
				return
			}

			if strings.HasPrefix(r.URL.Path, "/auth/") || r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := identity.Resolve(r.Context(), r)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser stores the session principal on the context
func WithUser(ctx context.Context, user *entities.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the session principal, or nil when unauthenticated
func UserFromContext(ctx context.Context) *entities.User {
	if user, ok := ctx.Value(userContextKey).(*entities.User); ok {
		return user
	}
	return nil
}
