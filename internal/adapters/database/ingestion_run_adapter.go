package database

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/doug-martin/goqu/v9"

	"github.com/notasalud/clinicalnotes/backend/internal/domain/entities"
	"github.com/notasalud/clinicalnotes/backend/internal/domain/repositories"
	"github.com/notasalud/clinicalnotes/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/notasalud/clinicalnotes/backend/pkg/errors"
)

// IngestionRunAdapter implements IngestionRunRepository on PostgreSQL.
// Row errors are stored as a JSONB document alongside the run counters.
type IngestionRunAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewIngestionRunAdapter creates a new ingestion run adapter
func NewIngestionRunAdapter(client *postgres.Client) repositories.IngestionRunRepository {
	return &IngestionRunAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create persists a finished ingestion run
func (a *IngestionRunAdapter) Create(ctx context.Context, run *entities.IngestionRun) error {
	errorsJSON, err := json.Marshal(run.Errors)
	if err != nil {
		return apperrors.NewInternalError("failed to encode row errors", err)
	}

	query, args, err := a.db.Insert("ingestion_runs").
		Rows(goqu.Record{
			"id":              run.ID,
			"file":            run.File,
			"processed_count": run.ProcessedCount,
			"error_count":     run.ErrorCount,
			"errors":          string(errorsJSON),
			"started_at":      run.StartedAt,
			"finished_at":     run.FinishedAt,
		}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to persist ingestion run", err)
	}
	return nil
}

// GetByID retrieves an ingestion run by ID
func (a *IngestionRunAdapter) GetByID(ctx context.Context, id string) (*entities.IngestionRun, error) {
	query, args, err := a.db.Select(runColumns()...).
		From("ingestion_runs").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	run, err := scanRun(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("ingestion run not found: " + id)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get ingestion run", err)
	}
	return run, nil
}

// List retrieves ingestion runs, most recent first
func (a *IngestionRunAdapter) List(ctx context.Context, limit, offset int) ([]*entities.IngestionRun, error) {
	ds := a.db.Select(runColumns()...).
		From("ingestion_runs").
		Order(goqu.I("started_at").Desc())
	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}
	if offset > 0 {
		ds = ds.Offset(uint(offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list ingestion runs", err)
	}
	defer rows.Close()

	var runs []*entities.IngestionRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan ingestion run", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

func runColumns() []interface{} {
	return []interface{}{
		"id", "file", "processed_count", "error_count", "errors",
		"started_at", "finished_at",
	}
}

func scanRun(scanner rowScanner) (*entities.IngestionRun, error) {
	run := &entities.IngestionRun{}
	var errorsJSON []byte

	err := scanner.Scan(
		&run.ID,
		&run.File,
		&run.ProcessedCount,
		&run.ErrorCount,
		&errorsJSON,
		&run.StartedAt,
		&run.FinishedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(errorsJSON) > 0 {
		if err := json.Unmarshal(errorsJSON, &run.Errors); err != nil {
			return nil, err
		}
	}
	return run, nil
}
