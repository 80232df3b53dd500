package repositories

import (
	"context"

	"github.com/notasalud/clinicalnotes/backend/internal/domain/entities"
)

// IngestionRunRepository persists the audit trail of ingestion invocations
type IngestionRunRepository interface {
	// Create stores one finished run
	Create(ctx context.Context, run *entities.IngestionRun) error

	// GetByID retrieves a run by ID
	GetByID(ctx context.Context, id string) (*entities.IngestionRun, error)

	// List retrieves recent runs, newest first
	List(ctx context.Context, limit, offset int) ([]*entities.IngestionRun, error)
}
