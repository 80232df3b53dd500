package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/notasalud/clinicalnotes/backend/internal/domain/providers"
)

// UploadHandler issues presigned upload slots for note files
type UploadHandler struct {
	fileSource providers.FileSource
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(fileSource providers.FileSource) *UploadHandler {
	return &UploadHandler{
		fileSource: fileSource,
	}
}

type uploadRequest struct {
	Filename string `json:"filename"`
}

// CreateUpload handles POST /api/uploads. The browser PUTs the file straight
// to object storage; the API never proxies file bytes.
func (h *UploadHandler) CreateUpload(w http.ResponseWriter, r *http.Request) {
	if h.fileSource == nil {
		respondWithError(w, http.StatusServiceUnavailable, "object storage not configured")
		return
	}

	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Filename = strings.TrimSpace(req.Filename)
	if req.Filename == "" {
		respondWithError(w, http.StatusBadRequest, "filename is required")
		return
	}

	upload, err := h.fileSource.PresignUpload(r.Context(), req.Filename)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, upload)
}
