package repositories

import (
	"context"

	"github.com/notasalud/clinicalnotes/backend/internal/domain/entities"
)

// PutOutcome discriminates the result of a conditional write
type PutOutcome int

const (
	// PutCreated means the record was stored
	PutCreated PutOutcome = iota

	// PutAlreadyExists means a record with the same ID was already present.
	// Callers treat this as success; IDs are freshly generated so it only
	// guards a theoretical race.
	PutAlreadyExists
)

// NoteRepository defines the persistence surface for clinical notes
type NoteRepository interface {
	// PutIfAbsent stores a note unless its ID already exists
	PutIfAbsent(ctx context.Context, note *entities.ClinicalNote) (PutOutcome, error)

	// FindByPatientAndDate returns stored records for one patient and one
	// canonical note date; used only by the duplicate check
	FindByPatientAndDate(ctx context.Context, patientID, noteDate string) ([]*entities.ExistingNote, error)

	// GetByID retrieves a note by ID
	GetByID(ctx context.Context, id string) (*entities.ClinicalNote, error)

	// List retrieves notes with filters
	List(ctx context.Context, filter NoteFilter) ([]*entities.ClinicalNote, error)

	// Delete removes a note
	Delete(ctx context.Context, id string) error
}

// NoteSearchRepository defines the full-text search surface (Typesense)
type NoteSearchRepository interface {
	// Index upserts a note into the search collection
	Index(ctx context.Context, note *entities.ClinicalNote) error

	// Search runs a full-text query over content and keywords
	Search(ctx context.Context, params NoteSearchParams) ([]*entities.ClinicalNote, error)

	// Delete removes a note from the search collection
	Delete(ctx context.Context, id string) error
}

// NoteFilter defines filters for listing notes
type NoteFilter struct {
	PatientID  string
	Specialty  string
	SourceFile string
	Limit      int
	Offset     int
}

// NoteSearchParams defines a full-text search request
type NoteSearchParams struct {
	Query     string
	PatientID string
	Specialty string
	Limit     int
	Offset    int
}
