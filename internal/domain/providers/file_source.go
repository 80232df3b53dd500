package providers

import (
	"context"
	"time"
)

// PresignedUpload is a browser-usable one-shot upload slot in object storage
type PresignedUpload struct {
	FileID    string    `json:"file_id"`
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expires_at"`
}

// FileSource retrieves uploaded delimited files from object storage and
// issues presigned upload slots. Retrieval failure is fatal for an ingestion.
type FileSource interface {
	// Fetch returns the decoded text of an uploaded file
	Fetch(ctx context.Context, fileID string) (string, error)

	// PresignUpload issues a presigned PUT for a new file
	PresignUpload(ctx context.Context, filename string) (*PresignedUpload, error)
}
