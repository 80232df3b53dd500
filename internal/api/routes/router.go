package routes

import (
	"net/http"

	"github.com/notasalud/clinicalnotes/backend/internal/api/handlers"
	"github.com/notasalud/clinicalnotes/backend/internal/api/middleware"
	"github.com/notasalud/clinicalnotes/backend/internal/domain/providers"
	"github.com/notasalud/clinicalnotes/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	noteHandler      *handlers.NoteHandler
	ingestionHandler *handlers.IngestionHandler
	uploadHandler    *handlers.UploadHandler
	importsHandler   *handlers.ImportsHandler
	authHandler      *handlers.AuthHandler

	identity    providers.IdentityProvider
	authEnabled bool

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	noteHandler *handlers.NoteHandler,
	ingestionHandler *handlers.IngestionHandler,
	uploadHandler *handlers.UploadHandler,
	importsHandler *handlers.ImportsHandler,
	authHandler *handlers.AuthHandler,
	identity providers.IdentityProvider,
	authEnabled bool,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:              http.NewServeMux(),
		noteHandler:      noteHandler,
		ingestionHandler: ingestionHandler,
		uploadHandler:    uploadHandler,
		importsHandler:   importsHandler,
		authHandler:      authHandler,
		identity:         identity,
		authEnabled:      authEnabled,
		cacheMiddleware:  cacheMiddleware,
		metrics:          metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Note endpoints
	r.mux.HandleFunc("GET /api/notes", r.noteHandler.ListNotes)
	r.mux.HandleFunc("GET /api/notes/search", r.noteHandler.SearchNotes)
	r.mux.HandleFunc("GET /api/notes/{id}", r.noteHandler.GetNote)
	r.mux.HandleFunc("GET /api/notes/{id}/summary", r.noteHandler.GetNoteSummary)
	r.mux.HandleFunc("DELETE /api/notes/{id}", r.noteHandler.DeleteNote)
	r.mux.HandleFunc("GET /api/patients/{patientId}/notes", r.noteHandler.ListPatientNotes)

	// Bulk ingestion endpoint
	r.mux.HandleFunc("POST /api/notes/import", r.ingestionHandler.TriggerImport)

	// Upload endpoint (presigned PUT slots)
	r.mux.HandleFunc("POST /api/uploads", r.uploadHandler.CreateUpload)

	// Ingestion history endpoints
	r.mux.HandleFunc("GET /api/imports", r.importsHandler.ListImports)
	r.mux.HandleFunc("GET /api/imports/{id}", r.importsHandler.GetImport)

	// Auth endpoints
	if r.identity != nil {
		r.mux.HandleFunc("GET /auth/login", r.identity.HandleLogin)
		r.mux.HandleFunc("GET /auth/callback", r.identity.HandleCallback)
		r.mux.HandleFunc("GET /auth/logout", r.identity.HandleLogout)
		r.mux.HandleFunc("GET /auth/me", r.authHandler.GetCurrentUser)
	}

	// Apply middleware in reverse order (last middleware wraps first).
	// CORS must be outermost so cached responses also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.AuthMiddleware(r.identity, r.authEnabled)(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}
