package providers

import (
	"context"
	"net/http"

	"github.com/notasalud/clinicalnotes/backend/internal/domain/entities"
)

// IdentityProvider fronts the external identity service. The login flow is
// delegated entirely to the provider; the application only resolves sessions.
type IdentityProvider interface {
	// HandleLogin starts the provider's login flow
	HandleLogin(w http.ResponseWriter, r *http.Request)

	// HandleCallback completes the flow and establishes a session
	HandleCallback(w http.ResponseWriter, r *http.Request)

	// HandleLogout tears down the session
	HandleLogout(w http.ResponseWriter, r *http.Request)

	// Resolve returns the session principal for a request, or an error when
	// the request carries no valid session
	Resolve(ctx context.Context, r *http.Request) (*entities.User, error)
}
