package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notasalud/clinicalnotes/backend/internal/domain/entities"
	"github.com/notasalud/clinicalnotes/backend/internal/domain/repositories"
	"github.com/notasalud/clinicalnotes/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/notasalud/clinicalnotes/backend/pkg/errors"
)

func setupRunAdapter(t *testing.T) (repositories.IngestionRunRepository, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	adapter := NewIngestionRunAdapter(postgres.NewClientWithDB(db))
	return adapter, mock, func() { db.Close() }
}

func sampleRun() *entities.IngestionRun {
	return &entities.IngestionRun{
		ID:             "run-1",
		File:           "notas_marzo.csv",
		ProcessedCount: 4,
		ErrorCount:     1,
		Errors: []entities.RowError{
			{Row: 4, RawRow: entities.RawRow{"Paciente_ID": ""}, Message: "missing required fields: patient id"},
		},
		StartedAt:  time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2024, 3, 5, 10, 0, 2, 0, time.UTC),
	}
}

func TestCreateRunInsertsFileColumn(t *testing.T) {
	adapter, mock, cleanup := setupRunAdapter(t)
	defer cleanup()

	run := sampleRun()
	mock.ExpectExec(`INSERT INTO "ingestion_runs".*"file"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := adapter.Create(context.Background(), run)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRunByIDDecodesErrors(t *testing.T) {
	adapter, mock, cleanup := setupRunAdapter(t)
	defer cleanup()

	run := sampleRun()
	rows := sqlmock.NewRows([]string{
		"id", "file", "processed_count", "error_count", "errors",
		"started_at", "finished_at",
	}).AddRow(
		run.ID, run.File, run.ProcessedCount, run.ErrorCount,
		[]byte(`[{"row":4,"rawRowData":{"Paciente_ID":""},"message":"missing required fields: patient id"}]`),
		run.StartedAt, run.FinishedAt,
	)
	mock.ExpectQuery(`SELECT .* FROM "ingestion_runs" WHERE`).WillReturnRows(rows)

	got, err := adapter.GetByID(context.Background(), "run-1")

	require.NoError(t, err)
	assert.Equal(t, "notas_marzo.csv", got.File)
	require.Len(t, got.Errors, 1)
	assert.Equal(t, 4, got.Errors[0].Row)
}

func TestGetRunByIDNotFound(t *testing.T) {
	adapter, mock, cleanup := setupRunAdapter(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT .* FROM "ingestion_runs" WHERE`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "file", "processed_count", "error_count", "errors",
			"started_at", "finished_at",
		}))

	_, err := adapter.GetByID(context.Background(), "missing")

	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}
