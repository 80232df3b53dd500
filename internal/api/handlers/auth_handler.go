package handlers

import (
	"net/http"

	"github.com/notasalud/clinicalnotes/backend/internal/domain/providers"
)

// AuthHandler exposes session info; the login flow itself is handled by the
// identity provider
type AuthHandler struct {
	identity providers.IdentityProvider
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(identity providers.IdentityProvider) *AuthHandler {
	return &AuthHandler{
		identity: identity,
	}
}

// GetCurrentUser handles GET /auth/me
func (h *AuthHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	if h.identity == nil {
		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"authenticated": false,
		})
		return
	}

	user, err := h.identity.Resolve(r.Context(), r)
	if err != nil {
		respondWithJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"authenticated": false,
		})
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"authenticated": true,
		"user":          user,
	})
}
