package handlers

import (
	"net/http"

	"github.com/notasalud/clinicalnotes/backend/internal/domain/repositories"
)

// ImportsHandler exposes ingestion run history
type ImportsHandler struct {
	runRepo repositories.IngestionRunRepository
}

// NewImportsHandler creates a new imports handler
func NewImportsHandler(runRepo repositories.IngestionRunRepository) *ImportsHandler {
	return &ImportsHandler{
		runRepo: runRepo,
	}
}

// ListImports handles GET /api/imports
func (h *ImportsHandler) ListImports(w http.ResponseWriter, r *http.Request) {
	runs, err := h.runRepo.List(r.Context(), parseIntParam(r, "limit", 30), parseIntParam(r, "offset", 0))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list imports")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"imports": runs,
		"count":   len(runs),
	})
}

// GetImport handles GET /api/imports/{id}
func (h *ImportsHandler) GetImport(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("id")
	if runID == "" {
		respondWithError(w, http.StatusBadRequest, "import ID is required")
		return
	}

	run, err := h.runRepo.GetByID(r.Context(), runID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, run)
}
