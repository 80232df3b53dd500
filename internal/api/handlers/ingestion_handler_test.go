package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notasalud/clinicalnotes/backend/internal/application/services"
	"github.com/notasalud/clinicalnotes/backend/internal/domain/entities"
	"github.com/notasalud/clinicalnotes/backend/internal/domain/providers"
	"github.com/notasalud/clinicalnotes/backend/internal/domain/repositories"
	apperrors "github.com/notasalud/clinicalnotes/backend/pkg/errors"
)

type fakeNoteStore struct {
	stored []*entities.ClinicalNote
}

func (s *fakeNoteStore) PutIfAbsent(ctx context.Context, note *entities.ClinicalNote) (repositories.PutOutcome, error) {
	s.stored = append(s.stored, note)
	return repositories.PutCreated, nil
}

func (s *fakeNoteStore) FindByPatientAndDate(ctx context.Context, patientID, noteDate string) ([]*entities.ExistingNote, error) {
	return nil, nil
}

func (s *fakeNoteStore) GetByID(ctx context.Context, id string) (*entities.ClinicalNote, error) {
	for _, note := range s.stored {
		if note.ID == id {
			return note, nil
		}
	}
	return nil, apperrors.NewNotFoundError("note not found")
}

func (s *fakeNoteStore) List(ctx context.Context, filter repositories.NoteFilter) ([]*entities.ClinicalNote, error) {
	return s.stored, nil
}

func (s *fakeNoteStore) Delete(ctx context.Context, id string) error {
	for i, note := range s.stored {
		if note.ID == id {
			s.stored = append(s.stored[:i], s.stored[i+1:]...)
			return nil
		}
	}
	return apperrors.NewNotFoundError("note not found")
}

type fakeFileSource struct {
	files map[string]string
}

func (f *fakeFileSource) Fetch(ctx context.Context, fileID string) (string, error) {
	text, ok := f.files[fileID]
	if !ok {
		return "", apperrors.NewNotFoundError("uploaded file not found: " + fileID)
	}
	return text, nil
}

func (f *fakeFileSource) PresignUpload(ctx context.Context, filename string) (*providers.PresignedUpload, error) {
	return &providers.PresignedUpload{FileID: "generated.csv", URL: "https://example.test/put", Method: http.MethodPut}, nil
}

type fakeCache struct {
	entries map[string][]byte
	err     error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, ok := c.entries[key]
	if !ok {
		return nil, errors.New("key not found")
	}
	return value, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	c.entries[key] = value
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	delete(c.entries, key)
	return nil
}

func (c *fakeCache) SetIfAbsent(ctx context.Context, key string, value []byte, expirationSeconds int) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	if _, ok := c.entries[key]; ok {
		return false, nil
	}
	c.entries[key] = value
	return true, nil
}

func newIngestionHandler(files map[string]string, cache providers.CacheProvider) (*IngestionHandler, *fakeNoteStore) {
	store := &fakeNoteStore{}
	service := services.NewIngestionService(store, nil, nil, nil, nil)
	handler := NewIngestionHandler(service, &fakeFileSource{files: files}, cache, 0)
	return handler, store
}

func postImport(handler *IngestionHandler, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/notes/import", strings.NewReader(body))
	for name, value := range headers {
		req.Header.Set(name, value)
	}
	recorder := httptest.NewRecorder()
	handler.TriggerImport(recorder, req)
	return recorder
}

func TestTriggerImportIngestsFile(t *testing.T) {
	files := map[string]string{
		"notas.csv": "Paciente_ID;Fecha;Contenido\nP001;05/03/2024;Paciente con hipertensión arterial",
	}
	handler, store := newIngestionHandler(files, nil)

	recorder := postImport(handler, `{"fileId":"notas.csv"}`, nil)

	require.Equal(t, http.StatusOK, recorder.Code)
	var result entities.IngestionResult
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	assert.Equal(t, "notas.csv", result.File)
	assert.Equal(t, 1, result.ProcessedCount)
	assert.Equal(t, 0, result.ErrorCount)
	assert.Len(t, store.stored, 1)
}

func TestTriggerImportRejectsInvalidBody(t *testing.T) {
	handler, _ := newIngestionHandler(nil, nil)

	recorder := postImport(handler, "{not json", nil)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestTriggerImportRequiresFileID(t *testing.T) {
	handler, _ := newIngestionHandler(nil, nil)

	recorder := postImport(handler, `{"fileId":"  "}`, nil)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestTriggerImportUnknownFileIs404(t *testing.T) {
	handler, _ := newIngestionHandler(map[string]string{}, nil)

	recorder := postImport(handler, `{"fileId":"missing.csv"}`, nil)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestTriggerImportEmptyFileIs400(t *testing.T) {
	handler, _ := newIngestionHandler(map[string]string{"vacio.csv": ""}, nil)

	recorder := postImport(handler, `{"fileId":"vacio.csv"}`, nil)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestTriggerImportIdempotencyKeyBlocksRetry(t *testing.T) {
	files := map[string]string{
		"notas.csv": "Paciente_ID;Fecha;Contenido\nP001;05/03/2024;Paciente con hipertensión arterial",
	}
	handler, store := newIngestionHandler(files, newFakeCache())
	headers := map[string]string{"Idempotency-Key": "req-123"}

	first := postImport(handler, `{"fileId":"notas.csv"}`, headers)
	require.Equal(t, http.StatusOK, first.Code)
	require.Len(t, store.stored, 1)

	second := postImport(handler, `{"fileId":"notas.csv"}`, headers)
	require.Equal(t, http.StatusOK, second.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &payload))
	assert.Equal(t, "duplicate", payload["status"])
	assert.Equal(t, "req-123", payload["idempotency_key"])
	assert.Len(t, store.stored, 1)
}

func TestTriggerImportCacheFailureDoesNotBlock(t *testing.T) {
	files := map[string]string{
		"notas.csv": "Paciente_ID;Fecha;Contenido\nP001;05/03/2024;Paciente con hipertensión arterial",
	}
	cache := newFakeCache()
	cache.err = errors.New("redis down")
	handler, store := newIngestionHandler(files, cache)

	recorder := postImport(handler, `{"fileId":"notas.csv"}`, map[string]string{"Idempotency-Key": "req-123"})

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Len(t, store.stored, 1)
}
