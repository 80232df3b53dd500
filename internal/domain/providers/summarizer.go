package providers

import (
	"context"
)

// Summarizer generates a short summary for cleaned note content. Calls are
// best-effort: ingestion swallows any error and leaves the summary empty.
type Summarizer interface {
	Summarize(ctx context.Context, cleanedContent string) (string, error)
}
