package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/notasalud/clinicalnotes/backend/pkg/errors"
)

func buildFile(rows ...string) string {
	lines := append([]string{"Paciente_ID;Fecha;Medico;Contenido"}, rows...)
	return strings.Join(lines, "\n")
}

func TestIngestProcessesAllRows(t *testing.T) {
	repo := newFakeNoteRepo()
	service := NewIngestionService(repo, nil, nil, nil, nil)

	text := buildFile(
		"P001;05/03/2024;Dra. García;Paciente con hipertensión arterial severa",
		"P002;06/03/2024;Dr. Ruiz;Control de diabetes tipo dos estable",
	)
	result, err := service.Ingest(context.Background(), "notas_marzo.csv", text)

	require.NoError(t, err)
	assert.Equal(t, "notas_marzo.csv", result.File)
	assert.Equal(t, 2, result.ProcessedCount)
	assert.Equal(t, 0, result.ErrorCount)
	assert.Empty(t, result.Errors)
	assert.Len(t, repo.stored, 2)
	assert.Equal(t, 2, repo.stored[0].SourceRow)
	assert.Equal(t, 3, repo.stored[1].SourceRow)
}

func TestIngestPartialFailure(t *testing.T) {
	repo := newFakeNoteRepo()
	service := NewIngestionService(repo, nil, nil, nil, nil)

	// Five data rows; the third has an empty patient id
	text := buildFile(
		"P001;05/03/2024;Dra. García;Nota uno con contenido",
		"P002;05/03/2024;Dra. García;Nota dos con contenido",
		";05/03/2024;Dra. García;Nota tres con contenido",
		"P004;05/03/2024;Dra. García;Nota cuatro con contenido",
		"P005;05/03/2024;Dra. García;Nota cinco con contenido",
	)
	result, err := service.Ingest(context.Background(), "notas.csv", text)

	require.NoError(t, err)
	assert.Equal(t, 4, result.ProcessedCount)
	assert.Equal(t, 1, result.ErrorCount)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 4, result.Errors[0].Row)
	assert.Contains(t, result.Errors[0].Message, "patient id")
}

func TestIngestSecondRunPersistsNothing(t *testing.T) {
	repo := newFakeNoteRepo()
	service := NewIngestionService(repo, nil, nil, nil, nil)
	ctx := context.Background()

	text := buildFile(
		"P001;05/03/2024;Dra. García;Paciente con hipertensión arterial severa",
		"P002;06/03/2024;Dr. Ruiz;Control de diabetes tipo dos estable",
	)

	first, err := service.Ingest(ctx, "notas.csv", text)
	require.NoError(t, err)
	require.Equal(t, 2, first.ProcessedCount)

	second, err := service.Ingest(ctx, "notas.csv", text)
	require.NoError(t, err)
	assert.Equal(t, 0, second.ProcessedCount)
	assert.Equal(t, 0, second.ErrorCount)
	assert.Len(t, repo.stored, 2)
}

func TestIngestIntraFileDuplicatesBothPersisted(t *testing.T) {
	repo := newFakeNoteRepo()
	service := NewIngestionService(repo, nil, nil, nil, nil)

	// Same patient, date and content twice in one file: the duplicate
	// check only sees pre-file state, so both rows are stored.
	text := buildFile(
		"P001;05/03/2024;Dra. García;Paciente con hipertensión arterial severa",
		"P001;05/03/2024;Dra. García;Paciente con hipertensión arterial severa",
	)
	result, err := service.Ingest(context.Background(), "notas.csv", text)

	require.NoError(t, err)
	assert.Equal(t, 2, result.ProcessedCount)
	assert.Len(t, repo.stored, 2)
}

func TestIngestEmptyFileIsFileLevelError(t *testing.T) {
	service := NewIngestionService(newFakeNoteRepo(), nil, nil, nil, nil)

	for _, text := range []string{"", "Paciente_ID;Fecha;Contenido"} {
		result, err := service.Ingest(context.Background(), "vacio.csv", text)
		assert.Nil(t, result)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	}
}

func TestIngestStripsByteOrderMark(t *testing.T) {
	repo := newFakeNoteRepo()
	service := NewIngestionService(repo, nil, nil, nil, nil)

	text := "\uFEFF" + buildFile("P001;05/03/2024;Dra. García;Nota con contenido válido")
	result, err := service.Ingest(context.Background(), "notas.csv", text)

	require.NoError(t, err)
	assert.Equal(t, 1, result.ProcessedCount)
	assert.Equal(t, "P001", repo.stored[0].PatientID)
}

func TestIngestCommaSeparatedFile(t *testing.T) {
	repo := newFakeNoteRepo()
	service := NewIngestionService(repo, nil, nil, nil, nil)

	text := "Patient_ID,Date,Content\nP001,2024-03-05,Routine check without findings"
	result, err := service.Ingest(context.Background(), "notes.csv", text)

	require.NoError(t, err)
	assert.Equal(t, 1, result.ProcessedCount)
}

func TestIngestShortRecordsTolerated(t *testing.T) {
	repo := newFakeNoteRepo()
	service := NewIngestionService(repo, nil, nil, nil, nil)

	// The last row is missing trailing cells; they read as absent. It sits
	// below the separator sample window so detection stays on semicolons.
	text := buildFile(
		"P001;05/03/2024;Dra. García;Nota completa con contenido",
		"P003;05/03/2024;Dra. García;Otra nota con contenido",
		"P002;06/03/2024",
	)
	result, err := service.Ingest(context.Background(), "notas.csv", text)

	require.NoError(t, err)
	assert.Equal(t, 2, result.ProcessedCount)
	assert.Equal(t, 1, result.ErrorCount)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 4, result.Errors[0].Row)
	assert.Contains(t, result.Errors[0].Message, "content")
}

func TestIngestRecordsRunHistory(t *testing.T) {
	repo := newFakeNoteRepo()
	runRepo := &fakeRunRepo{}
	service := NewIngestionService(repo, runRepo, nil, nil, nil)

	text := buildFile(
		"P001;05/03/2024;Dra. García;Nota uno con contenido",
		";05/03/2024;Dra. García;Nota dos con contenido",
	)
	_, err := service.Ingest(context.Background(), "notas.csv", text)

	require.NoError(t, err)
	require.Len(t, runRepo.runs, 1)
	run := runRepo.runs[0]
	assert.Equal(t, "notas.csv", run.File)
	assert.Equal(t, 1, run.ProcessedCount)
	assert.Equal(t, 1, run.ErrorCount)
	assert.Len(t, run.Errors, 1)
	assert.False(t, run.FinishedAt.Before(run.StartedAt))
}

func TestIngestIndexesPersistedRows(t *testing.T) {
	repo := newFakeNoteRepo()
	searchRepo := &fakeSearchRepo{}
	service := NewIngestionService(repo, nil, searchRepo, nil, nil)

	text := buildFile(
		"P001;05/03/2024;Dra. García;Nota uno con contenido",
		";05/03/2024;Dra. García;Nota dos con contenido",
	)
	result, err := service.Ingest(context.Background(), "notas.csv", text)

	require.NoError(t, err)
	assert.Equal(t, 1, result.ProcessedCount)
	assert.Len(t, searchRepo.indexed, 1)
}

func TestIngestIndexFailureDoesNotFailRow(t *testing.T) {
	repo := newFakeNoteRepo()
	searchRepo := &fakeSearchRepo{indexErr: assert.AnError}
	service := NewIngestionService(repo, nil, searchRepo, nil, nil)

	text := buildFile("P001;05/03/2024;Dra. García;Nota con contenido válido")
	result, err := service.Ingest(context.Background(), "notas.csv", text)

	require.NoError(t, err)
	assert.Equal(t, 1, result.ProcessedCount)
	assert.Equal(t, 0, result.ErrorCount)
}

func TestIngestSummarizesPersistedRows(t *testing.T) {
	repo := newFakeNoteRepo()
	summarizer := &fakeSummarizer{summary: "Resumen."}
	service := NewIngestionService(repo, nil, nil, summarizer, nil)

	text := buildFile(
		"P001;05/03/2024;Dra. García;Nota uno con contenido",
		"P002;06/03/2024;Dr. Ruiz;Nota dos con contenido",
	)
	_, err := service.Ingest(context.Background(), "notas.csv", text)

	require.NoError(t, err)
	assert.Equal(t, 2, summarizer.calls)
	assert.Equal(t, "Resumen.", repo.stored[0].Summary)
}
