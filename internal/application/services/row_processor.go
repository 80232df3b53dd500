package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/notasalud/clinicalnotes/backend/internal/domain/entities"
	"github.com/notasalud/clinicalnotes/backend/internal/domain/providers"
	"github.com/notasalud/clinicalnotes/backend/internal/domain/repositories"
	"github.com/notasalud/clinicalnotes/backend/internal/infrastructure/observability"
)

// RowProcessor validates and normalizes one raw row, producing exactly one
// of: a persisted ClinicalNote, a silent duplicate skip, or a RowError.
type RowProcessor struct {
	repo       repositories.NoteRepository
	summarizer providers.Summarizer
	dates      *DateNormalizer
	text       *TextNormalizer
}

// NewRowProcessor creates a new row processor. summarizer may be nil, in
// which case summaries are simply left empty.
func NewRowProcessor(repo repositories.NoteRepository, summarizer providers.Summarizer) *RowProcessor {
	return &RowProcessor{
		repo:       repo,
		summarizer: summarizer,
		dates:      NewDateNormalizer(),
		text:       NewTextNormalizer(),
	}
}

// Process runs one row through validation, date normalization, the duplicate
// check, text normalization, best-effort summarization and persistence.
// Row-scoped failures become RowErrors; only storage access failures during
// the duplicate lookup or the final write surface as row errors too, so a
// broken row never aborts its siblings.
func (p *RowProcessor) Process(ctx context.Context, row entities.RawRow, mapping entities.ColumnMapping, dupes *DuplicateDetector, fileID string, rowNumber int) entities.RowOutcome {
	logger := observability.LoggerFromContext(ctx)

	patientID := extractField(row, mapping, entities.FieldPatientID)
	rawDate := extractField(row, mapping, entities.FieldNoteDate)
	content := extractField(row, mapping, entities.FieldContent)

	if missing := missingRequired(patientID, rawDate, content); len(missing) > 0 {
		return failRow(row, rowNumber, "missing required fields: "+strings.Join(missing, ", "))
	}

	noteDate, err := p.dates.Normalize(rawDate)
	if err != nil {
		return failRow(row, rowNumber, "unrecognized date format: "+rawDate)
	}

	isDup, err := dupes.IsDuplicate(ctx, patientID, noteDate, content)
	if err != nil {
		return failRow(row, rowNumber, "duplicate check failed: "+err.Error())
	}
	if isDup {
		logger.Info().
			Str("file", fileID).
			Int("row", rowNumber).
			Str("patient_id", patientID).
			Str("note_date", noteDate).
			Msg("row skipped as near-duplicate")
		return entities.RowOutcome{Status: entities.RowSkippedDuplicate}
	}

	cleaned := p.text.Clean(content)
	keywords := p.text.Keywords(cleaned)

	summary := ""
	if p.summarizer != nil {
		if s, err := p.summarizer.Summarize(ctx, cleaned); err != nil {
			logger.Warn().Err(err).
				Str("file", fileID).
				Int("row", rowNumber).
				Msg("summarization failed, leaving summary empty")
		} else {
			summary = s
		}
	}

	note := &entities.ClinicalNote{
		ID:           uuid.NewString(),
		PatientID:    patientID,
		NoteDate:     noteDate,
		Clinician:    extractField(row, mapping, entities.FieldClinician),
		Specialty:    extractField(row, mapping, entities.FieldSpecialty),
		VisitType:    extractField(row, mapping, entities.FieldVisitType),
		Content:      content,
		CleanContent: cleaned,
		Diagnoses:    splitListCell(extractField(row, mapping, entities.FieldDiagnoses)),
		Medications:  splitListCell(extractField(row, mapping, entities.FieldMedications)),
		Keywords:     keywords,
		Summary:      summary,
		SourceFile:   fileID,
		SourceRow:    rowNumber,
		IngestedAt:   time.Now().UTC(),
		Status:       entities.NoteStatusProcessed,
	}

	outcome, err := p.repo.PutIfAbsent(ctx, note)
	if err != nil {
		return failRow(row, rowNumber, "failed to persist note: "+err.Error())
	}
	if outcome == repositories.PutAlreadyExists {
		// IDs are freshly generated, so this only happens under a
		// theoretical race; the write is a no-op success.
		logger.Warn().
			Str("note_id", note.ID).
			Str("file", fileID).
			Int("row", rowNumber).
			Msg("note id already present, treating write as no-op")
	}

	return entities.RowOutcome{Status: entities.RowPersisted, Record: note}
}

func extractField(row entities.RawRow, mapping entities.ColumnMapping, field entities.StandardField) string {
	header := mapping.Header(field)
	if header == "" {
		return ""
	}
	return strings.TrimSpace(row[header])
}

func missingRequired(patientID, rawDate, content string) []string {
	var missing []string
	if patientID == "" {
		missing = append(missing, "patient id")
	}
	if rawDate == "" {
		missing = append(missing, "note date")
	}
	if content == "" {
		missing = append(missing, "content")
	}
	return missing
}

// splitListCell parses a diagnosis/medication cell into an ordered list.
// Entries keep their source order and duplicates are not removed.
func splitListCell(cell string) []string {
	if cell == "" {
		return nil
	}
	parts := strings.FieldsFunc(cell, func(r rune) bool {
		return r == ';' || r == ','
	})
	list := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	if len(list) == 0 {
		return nil
	}
	return list
}

func failRow(row entities.RawRow, rowNumber int, message string) entities.RowOutcome {
	return entities.RowOutcome{
		Status: entities.RowFailed,
		Err: &entities.RowError{
			Row:     rowNumber,
			RawRow:  row,
			Message: message,
		},
	}
}
