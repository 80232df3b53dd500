package entities

import (
	"time"
)

// StandardField names one of the eight logical columns of the note schema
type StandardField string

const (
	FieldPatientID   StandardField = "patient_id"
	FieldNoteDate    StandardField = "note_date"
	FieldClinician   StandardField = "clinician"
	FieldSpecialty   StandardField = "specialty"
	FieldVisitType   StandardField = "visit_type"
	FieldContent     StandardField = "content"
	FieldDiagnoses   StandardField = "diagnoses"
	FieldMedications StandardField = "medications"
)

// StandardFields lists the schema fields in mapping order
var StandardFields = []StandardField{
	FieldPatientID,
	FieldNoteDate,
	FieldClinician,
	FieldSpecialty,
	FieldVisitType,
	FieldContent,
	FieldDiagnoses,
	FieldMedications,
}

// RawRow maps the original header text of one data line to its trimmed value.
// Rows only live for the duration of one file's processing.
type RawRow map[string]string

// ColumnMapping binds each standard field to the exact header present in the
// file, computed once from the header row and immutable afterwards. Fields
// with no matching header are simply absent.
type ColumnMapping map[StandardField]string

// Header returns the bound header for a field, or "" when unbound
func (m ColumnMapping) Header(field StandardField) string {
	return m[field]
}

// RowError records a per-row, non-fatal ingestion failure. Row is 1-indexed
// against the file and includes the header line offset, so the first data
// line is row 2.
type RowError struct {
	Row     int    `json:"row"`
	RawRow  RawRow `json:"rawRowData"`
	Message string `json:"message"`
}

// RowStatus is the terminal state of one processed row
type RowStatus string

const (
	// RowPersisted means a ClinicalNote was created and stored
	RowPersisted RowStatus = "persisted"

	// RowSkippedDuplicate means the row near-duplicated a stored record and
	// was silently dropped: no record, no error, counted in neither bucket
	RowSkippedDuplicate RowStatus = "skipped_duplicate"

	// RowFailed means the row produced a RowError
	RowFailed RowStatus = "failed"
)

// RowOutcome is the tagged result of processing one row. Exactly one of
// Record or Err is set, matching Status.
type RowOutcome struct {
	Status RowStatus
	Record *ClinicalNote
	Err    *RowError
}

// IngestionResult aggregates one file's ingestion. It is returned once per
// Ingest call and never mutated afterwards. Duplicate-skipped rows appear in
// neither ProcessedCount nor ErrorCount.
type IngestionResult struct {
	File           string     `json:"file"`
	ProcessedCount int        `json:"processedCount"`
	ErrorCount     int        `json:"errorCount"`
	Errors         []RowError `json:"errors"`
}

// IngestionRun is the persisted audit record of one Ingest invocation
type IngestionRun struct {
	ID             string     `json:"id" db:"id"`
	File           string     `json:"file" db:"file"`
	ProcessedCount int        `json:"processed_count" db:"processed_count"`
	ErrorCount     int        `json:"error_count" db:"error_count"`
	Errors         []RowError `json:"errors" db:"-"`
	StartedAt      time.Time  `json:"started_at" db:"started_at"`
	FinishedAt     time.Time  `json:"finished_at" db:"finished_at"`
}
