package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notasalud/clinicalnotes/backend/internal/application/services"
	"github.com/notasalud/clinicalnotes/backend/internal/domain/entities"
)

func newNoteHandler(notes ...*entities.ClinicalNote) (*NoteHandler, *fakeNoteStore) {
	store := &fakeNoteStore{stored: notes}
	return NewNoteHandler(services.NewNoteService(store, nil)), store
}

func TestGetNoteReturnsNote(t *testing.T) {
	handler, _ := newNoteHandler(&entities.ClinicalNote{ID: "n1", PatientID: "P001"})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/notes/{id}", handler.GetNote)

	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/notes/n1", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	var note entities.ClinicalNote
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &note))
	assert.Equal(t, "P001", note.PatientID)
}

func TestGetNoteNotFound(t *testing.T) {
	handler, _ := newNoteHandler()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/notes/{id}", handler.GetNote)

	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/notes/missing", nil))

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestListNotesReturnsCount(t *testing.T) {
	handler, _ := newNoteHandler(
		&entities.ClinicalNote{ID: "n1"},
		&entities.ClinicalNote{ID: "n2"},
	)

	recorder := httptest.NewRecorder()
	handler.ListNotes(recorder, httptest.NewRequest(http.MethodGet, "/api/notes", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	var payload struct {
		Notes []*entities.ClinicalNote `json:"notes"`
		Count int                      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	assert.Equal(t, 2, payload.Count)
	assert.Len(t, payload.Notes, 2)
}

func TestSearchNotesFallsBackToStore(t *testing.T) {
	handler, _ := newNoteHandler(&entities.ClinicalNote{ID: "n1", Content: "hipertensión"})

	recorder := httptest.NewRecorder()
	handler.SearchNotes(recorder, httptest.NewRequest(http.MethodGet, "/api/notes/search?q=hipertensi%C3%B3n", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	var payload struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	assert.Equal(t, 1, payload.Count)
}

func TestGetNoteSummary(t *testing.T) {
	handler, _ := newNoteHandler(&entities.ClinicalNote{ID: "n1", Summary: "Resumen clínico."})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/notes/{id}/summary", handler.GetNoteSummary)

	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/notes/n1/summary", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	assert.Equal(t, "Resumen clínico.", payload["summary"])
}

func TestListPatientNotes(t *testing.T) {
	handler, _ := newNoteHandler(&entities.ClinicalNote{ID: "n1", PatientID: "P001"})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/patients/{patientId}/notes", handler.ListPatientNotes)

	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/patients/P001/notes", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	var payload struct {
		PatientID string                   `json:"patientId"`
		Notes     []*entities.ClinicalNote `json:"notes"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	assert.Equal(t, "P001", payload.PatientID)
	assert.Len(t, payload.Notes, 1)
}

func TestDeleteNoteRemovesAndReturns204(t *testing.T) {
	handler, store := newNoteHandler(&entities.ClinicalNote{ID: "n1"})

	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/notes/{id}", handler.DeleteNote)

	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodDelete, "/api/notes/n1", nil))

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Empty(t, store.stored)
}

func TestDeleteNoteNotFound(t *testing.T) {
	handler, _ := newNoteHandler()

	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/notes/{id}", handler.DeleteNote)

	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodDelete, "/api/notes/n1", nil))

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
