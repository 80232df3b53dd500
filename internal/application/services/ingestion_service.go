package services

import (
	"context"
	"encoding/csv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/notasalud/clinicalnotes/backend/internal/domain/entities"
	"github.com/notasalud/clinicalnotes/backend/internal/domain/providers"
	"github.com/notasalud/clinicalnotes/backend/internal/domain/repositories"
	"github.com/notasalud/clinicalnotes/backend/internal/infrastructure/observability"
	apperrors "github.com/notasalud/clinicalnotes/backend/pkg/errors"
)

const utf8BOM = "\uFEFF"

// IngestionService drives a whole uploaded file through the row pipeline.
// Rows are processed strictly sequentially in file order; one row's failure
// never aborts the rest, and there is no batch-level transaction: persisted
// rows stay persisted regardless of later failures.
type IngestionService struct {
	repo       repositories.NoteRepository
	runRepo    repositories.IngestionRunRepository
	searchRepo repositories.NoteSearchRepository
	summarizer providers.Summarizer
	separators *SeparatorDetector
	columns    *ColumnMapper
	metrics    *observability.Metrics
}

// NewIngestionService creates a new ingestion service. runRepo, searchRepo,
// summarizer and metrics may each be nil.
func NewIngestionService(
	repo repositories.NoteRepository,
	runRepo repositories.IngestionRunRepository,
	searchRepo repositories.NoteSearchRepository,
	summarizer providers.Summarizer,
	metrics *observability.Metrics,
) *IngestionService {
	return &IngestionService{
		repo:       repo,
		runRepo:    runRepo,
		searchRepo: searchRepo,
		summarizer: summarizer,
		separators: NewSeparatorDetector(),
		columns:    NewColumnMapper(),
		metrics:    metrics,
	}
}

// Ingest parses the decoded file text and processes every data row,
// returning one immutable IngestionResult. A file without at least one data
// row is rejected outright with a file-level error and no per-row results.
func (s *IngestionService) Ingest(ctx context.Context, fileID, rawText string) (*entities.IngestionResult, error) {
	logger := observability.LoggerFromContext(ctx)
	startedAt := time.Now().UTC()

	headers, rows, err := s.parse(rawText)
	if err != nil {
		return nil, err
	}

	mapping := s.columns.Map(headers)
	processor := NewRowProcessor(s.repo, s.summarizer)
	dupes := NewDuplicateDetector(s.repo)

	result := &entities.IngestionResult{File: fileID}
	skipped := 0

	for i, record := range rows {
		// 1-indexed against the file, offset for the header line
		rowNumber := i + 2
		row := buildRawRow(headers, record)

		outcome := processor.Process(ctx, row, mapping, dupes, fileID, rowNumber)
		switch outcome.Status {
		case entities.RowPersisted:
			result.ProcessedCount++
			if s.searchRepo != nil {
				if err := s.searchRepo.Index(ctx, outcome.Record); err != nil {
					logger.Warn().Err(err).Str("note_id", outcome.Record.ID).Msg("failed to index note")
				}
			}
		case entities.RowFailed:
			result.ErrorCount++
			result.Errors = append(result.Errors, *outcome.Err)
		case entities.RowSkippedDuplicate:
			skipped++
		}
	}

	logger.Info().
		Str("file", fileID).
		Int("processed", result.ProcessedCount).
		Int("errors", result.ErrorCount).
		Int("skipped_duplicates", skipped).
		Msg("file ingestion finished")

	observability.RecordIngestionMetrics(ctx, s.metrics, fileID, result.ProcessedCount, result.ErrorCount, skipped)

	if s.runRepo != nil {
		run := &entities.IngestionRun{
			ID:             uuid.NewString(),
			File:           fileID,
			ProcessedCount: result.ProcessedCount,
			ErrorCount:     result.ErrorCount,
			Errors:         result.Errors,
			StartedAt:      startedAt,
			FinishedAt:     time.Now().UTC(),
		}
		if err := s.runRepo.Create(ctx, run); err != nil {
			logger.Warn().Err(err).Str("file", fileID).Msg("failed to record ingestion run")
		}
	}

	return result, nil
}

// parse detects the separator and splits the file into a header row and
// data rows. Values are trimmed; blank lines are skipped; short records are
// tolerated (missing cells read as absent).
func (s *IngestionService) parse(rawText string) ([]string, [][]string, error) {
	text := strings.TrimPrefix(rawText, utf8BOM)

	separator := s.separators.Detect(text)

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = separator
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, apperrors.NewValidationError("unreadable file: " + err.Error())
	}
	if len(records) < 2 {
		return nil, nil, apperrors.NewValidationError("file contains no data rows")
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}

	return headers, records[1:], nil
}

func buildRawRow(headers []string, record []string) entities.RawRow {
	row := make(entities.RawRow, len(headers))
	for i, header := range headers {
		if header == "" {
			continue
		}
		if i < len(record) {
			row[header] = strings.TrimSpace(record[i])
		} else {
			row[header] = ""
		}
	}
	return row
}
