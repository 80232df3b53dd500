package database

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"

	"github.com/notasalud/clinicalnotes/backend/internal/domain/entities"
	"github.com/notasalud/clinicalnotes/backend/internal/domain/repositories"
	"github.com/notasalud/clinicalnotes/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/notasalud/clinicalnotes/backend/pkg/errors"
)

var noteColumns = []interface{}{
	"id", "patient_id", "note_date", "clinician", "specialty", "visit_type",
	"content", "clean_content", "diagnoses", "medications", "keywords",
	"summary", "source_file", "source_row", "ingested_at", "status",
}

// NoteAdapter implements NoteRepository on PostgreSQL
type NoteAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewNoteAdapter creates a new note adapter
func NewNoteAdapter(client *postgres.Client) repositories.NoteRepository {
	return &NoteAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// PutIfAbsent stores a note unless its ID already exists. The insert uses
// ON CONFLICT DO NOTHING so an existing ID is reported, not overwritten.
func (a *NoteAdapter) PutIfAbsent(ctx context.Context, note *entities.ClinicalNote) (repositories.PutOutcome, error) {
	record := goqu.Record{
		"id":            note.ID,
		"patient_id":    note.PatientID,
		"note_date":     note.NoteDate,
		"clinician":     sql.NullString{String: note.Clinician, Valid: note.Clinician != ""},
		"specialty":     sql.NullString{String: note.Specialty, Valid: note.Specialty != ""},
		"visit_type":    sql.NullString{String: note.VisitType, Valid: note.VisitType != ""},
		"content":       note.Content,
		"clean_content": note.CleanContent,
		"diagnoses":     pq.Array(note.Diagnoses),
		"medications":   pq.Array(note.Medications),
		"keywords":      pq.Array(note.Keywords),
		"summary":       sql.NullString{String: note.Summary, Valid: note.Summary != ""},
		"source_file":   note.SourceFile,
		"source_row":    note.SourceRow,
		"ingested_at":   note.IngestedAt,
		"status":        string(note.Status),
	}

	query, args, err := a.db.Insert("clinical_notes").
		Rows(record).
		OnConflict(goqu.DoNothing()).
		ToSQL()
	if err != nil {
		return repositories.PutCreated, apperrors.NewInternalError("failed to build insert query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return repositories.PutCreated, apperrors.NewInternalError("failed to persist note", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return repositories.PutCreated, apperrors.NewInternalError("failed to read insert result", err)
	}
	if affected == 0 {
		return repositories.PutAlreadyExists, nil
	}
	return repositories.PutCreated, nil
}

// FindByPatientAndDate returns the duplicate-check projection for one
// patient and one canonical note date
func (a *NoteAdapter) FindByPatientAndDate(ctx context.Context, patientID, noteDate string) ([]*entities.ExistingNote, error) {
	query, args, err := a.db.Select("id", "content").
		From("clinical_notes").
		Where(goqu.Ex{"patient_id": patientID, "note_date": noteDate}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query notes by patient and date", err)
	}
	defer rows.Close()

	var existing []*entities.ExistingNote
	for rows.Next() {
		record := &entities.ExistingNote{}
		if err := rows.Scan(&record.ID, &record.Content); err != nil {
			return nil, apperrors.NewInternalError("failed to scan note", err)
		}
		existing = append(existing, record)
	}

	return existing, rows.Err()
}

// GetByID retrieves a note by ID
func (a *NoteAdapter) GetByID(ctx context.Context, id string) (*entities.ClinicalNote, error) {
	query, args, err := a.db.Select(noteColumns...).
		From("clinical_notes").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	note, err := scanNote(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("note not found: " + id)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get note", err)
	}
	return note, nil
}

// List retrieves notes with filters, newest ingestion first
func (a *NoteAdapter) List(ctx context.Context, filter repositories.NoteFilter) ([]*entities.ClinicalNote, error) {
	ds := a.db.Select(noteColumns...).
		From("clinical_notes").
		Order(goqu.I("ingested_at").Desc())

	where := goqu.Ex{}
	if filter.PatientID != "" {
		where["patient_id"] = filter.PatientID
	}
	if filter.Specialty != "" {
		where["specialty"] = filter.Specialty
	}
	if filter.SourceFile != "" {
		where["source_file"] = filter.SourceFile
	}
	if len(where) > 0 {
		ds = ds.Where(where)
	}
	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list notes", err)
	}
	defer rows.Close()

	var notes []*entities.ClinicalNote
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan note", err)
		}
		notes = append(notes, note)
	}

	return notes, rows.Err()
}

// Delete removes a note
func (a *NoteAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete("clinical_notes").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete note", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.NewNotFoundError("note not found: " + id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNote(scanner rowScanner) (*entities.ClinicalNote, error) {
	note := &entities.ClinicalNote{}
	var clinician, specialty, visitType, summary sql.NullString
	var status string

	err := scanner.Scan(
		&note.ID,
		&note.PatientID,
		&note.NoteDate,
		&clinician,
		&specialty,
		&visitType,
		&note.Content,
		&note.CleanContent,
		pq.Array(&note.Diagnoses),
		pq.Array(&note.Medications),
		pq.Array(&note.Keywords),
		&summary,
		&note.SourceFile,
		&note.SourceRow,
		&note.IngestedAt,
		&status,
	)
	if err != nil {
		return nil, err
	}

	note.Clinician = clinician.String
	note.Specialty = specialty.String
	note.VisitType = visitType.String
	note.Summary = summary.String
	note.Status = entities.NoteStatus(status)
	return note, nil
}
