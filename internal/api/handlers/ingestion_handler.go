package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/notasalud/clinicalnotes/backend/internal/application/services"
	"github.com/notasalud/clinicalnotes/backend/internal/domain/providers"
)

// IngestionHandler triggers bulk note ingestion from uploaded files
type IngestionHandler struct {
	service        *services.IngestionService
	fileSource     providers.FileSource
	cache          providers.CacheProvider
	idempotencyTTL int
}

// NewIngestionHandler creates a new ingestion handler
func NewIngestionHandler(
	service *services.IngestionService,
	fileSource providers.FileSource,
	cache providers.CacheProvider,
	idempotencyTTLSecs int,
) *IngestionHandler {
	if idempotencyTTLSecs <= 0 {
		idempotencyTTLSecs = int((24 * time.Hour).Seconds())
	}
	return &IngestionHandler{
		service:        service,
		fileSource:     fileSource,
		cache:          cache,
		idempotencyTTL: idempotencyTTLSecs,
	}
}

type importRequest struct {
	FileID string `json:"fileId"`
}

// TriggerImport handles POST /api/notes/import
func (h *IngestionHandler) TriggerImport(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		respondWithError(w, http.StatusServiceUnavailable, "ingestion service not configured")
		return
	}

	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.FileID = strings.TrimSpace(req.FileID)
	if req.FileID == "" {
		respondWithError(w, http.StatusBadRequest, "fileId is required")
		return
	}

	if duplicate, key := h.isDuplicate(r.Context(), r); duplicate {
		respondWithJSON(w, http.StatusOK, map[string]string{
			"status":          "duplicate",
			"idempotency_key": key,
		})
		return
	}

	rawText, err := h.fileSource.Fetch(r.Context(), req.FileID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	result, err := h.service.Ingest(r.Context(), req.FileID, rawText)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// isDuplicate claims the request's idempotency key. A key that was already
// claimed means a retry of an import that already ran.
func (h *IngestionHandler) isDuplicate(ctx context.Context, r *http.Request) (bool, string) {
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key == "" {
		key = strings.TrimSpace(r.Header.Get("X-Idempotency-Key"))
	}
	if key == "" || h.cache == nil {
		return false, ""
	}

	cacheKey := "notes_import_idem:" + key
	stamp := []byte(time.Now().UTC().Format(time.RFC3339Nano))
	stored, err := h.cache.SetIfAbsent(ctx, cacheKey, stamp, h.idempotencyTTL)
	if err != nil {
		log.Warn().Err(err).Msg("idempotency check failed")
		return false, key
	}
	return !stored, key
}
