package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/notasalud/clinicalnotes/backend/internal/application/services"
	"github.com/notasalud/clinicalnotes/backend/internal/domain/repositories"
	apperrors "github.com/notasalud/clinicalnotes/backend/pkg/errors"
)

// NoteHandler handles clinical note HTTP requests
type NoteHandler struct {
	noteService *services.NoteService
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(noteService *services.NoteService) *NoteHandler {
	return &NoteHandler{
		noteService: noteService,
	}
}

// GetNote handles GET /api/notes/{id}
func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	noteID := r.PathValue("id")
	if noteID == "" {
		respondWithError(w, http.StatusBadRequest, "note ID is required")
		return
	}

	note, err := h.noteService.GetByID(r.Context(), noteID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, note)
}

// ListNotes handles GET /api/notes
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	filter := repositories.NoteFilter{
		PatientID:  r.URL.Query().Get("patientId"),
		Specialty:  r.URL.Query().Get("specialty"),
		SourceFile: r.URL.Query().Get("sourceFile"),
		Limit:      parseIntParam(r, "limit", 30),
		Offset:     parseIntParam(r, "offset", 0),
	}

	notes, err := h.noteService.List(r.Context(), filter)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list notes")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"notes": notes,
		"count": len(notes),
	})
}

// SearchNotes handles GET /api/notes/search
func (h *NoteHandler) SearchNotes(w http.ResponseWriter, r *http.Request) {
	params := repositories.NoteSearchParams{
		Query:     r.URL.Query().Get("q"),
		PatientID: r.URL.Query().Get("patientId"),
		Specialty: r.URL.Query().Get("specialty"),
		Limit:     parseIntParam(r, "limit", 30),
		Offset:    parseIntParam(r, "offset", 0),
	}

	notes, err := h.noteService.Search(r.Context(), params)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to search notes")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"notes": notes,
		"count": len(notes),
	})
}

// GetNoteSummary handles GET /api/notes/{id}/summary. The summary is empty
// when summarization was disabled or failed during ingestion.
func (h *NoteHandler) GetNoteSummary(w http.ResponseWriter, r *http.Request) {
	noteID := r.PathValue("id")
	if noteID == "" {
		respondWithError(w, http.StatusBadRequest, "note ID is required")
		return
	}

	note, err := h.noteService.GetByID(r.Context(), noteID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"id":      note.ID,
		"summary": note.Summary,
	})
}

// ListPatientNotes handles GET /api/patients/{patientId}/notes
func (h *NoteHandler) ListPatientNotes(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("patientId")
	if patientID == "" {
		respondWithError(w, http.StatusBadRequest, "patient ID is required")
		return
	}

	filter := repositories.NoteFilter{
		PatientID: patientID,
		Limit:     parseIntParam(r, "limit", 30),
		Offset:    parseIntParam(r, "offset", 0),
	}

	notes, err := h.noteService.List(r.Context(), filter)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list notes")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"patientId": patientID,
		"notes":     notes,
		"count":     len(notes),
	})
}

// DeleteNote handles DELETE /api/notes/{id}
func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	noteID := r.PathValue("id")
	if noteID == "" {
		respondWithError(w, http.StatusBadRequest, "note ID is required")
		return
	}

	if err := h.noteService.Delete(r.Context(), noteID); err != nil {
		respondWithAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps the error taxonomy to HTTP status codes
func respondWithAppError(w http.ResponseWriter, err error) {
	if appErr, ok := err.(*apperrors.AppError); ok {
		switch appErr.Type {
		case apperrors.ErrorTypeNotFound:
			respondWithError(w, http.StatusNotFound, appErr.Message)
		case apperrors.ErrorTypeValidation:
			respondWithError(w, http.StatusBadRequest, appErr.Message)
		case apperrors.ErrorTypeConflict:
			respondWithError(w, http.StatusConflict, appErr.Message)
		case apperrors.ErrorTypeUnauthorized:
			respondWithError(w, http.StatusUnauthorized, appErr.Message)
		default:
			respondWithError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}
	respondWithError(w, http.StatusInternalServerError, "internal server error")
}

func parseIntParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
