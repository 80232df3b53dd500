package entities

import (
	"time"
)

// NoteStatus tags the lifecycle state of a persisted note
type NoteStatus string

const (
	// NoteStatusProcessed marks a note produced by a successful ingestion row
	NoteStatusProcessed NoteStatus = "processed"

	// NoteStatusArchived marks a note hidden from listings but retained
	NoteStatusArchived NoteStatus = "archived"
)

// ClinicalNote is the structured record produced from one valid ingested row.
// ID is generated once at creation and never reassigned. PatientID, NoteDate
// and Content are always non-empty. Diagnoses and Medications preserve the
// order of the source cell and are not deduplicated. Keywords hold at most
// 20 unique tokens in first-occurrence order.
type ClinicalNote struct {
	ID           string     `json:"id" db:"id"`
	PatientID    string     `json:"patient_id" db:"patient_id"`
	NoteDate     string     `json:"note_date" db:"note_date"`
	Clinician    string     `json:"clinician" db:"clinician"`
	Specialty    string     `json:"specialty" db:"specialty"`
	VisitType    string     `json:"visit_type" db:"visit_type"`
	Content      string     `json:"content" db:"content"`
	CleanContent string     `json:"clean_content" db:"clean_content"`
	Diagnoses    []string   `json:"diagnoses" db:"-"`
	Medications  []string   `json:"medications" db:"-"`
	Keywords     []string   `json:"keywords" db:"-"`
	Summary      string     `json:"summary,omitempty" db:"summary"`
	SourceFile   string     `json:"source_file" db:"source_file"`
	SourceRow    int        `json:"source_row" db:"source_row"`
	IngestedAt   time.Time  `json:"ingested_at" db:"ingested_at"`
	Status       NoteStatus `json:"status" db:"status"`
}

// ExistingNote is the projection the duplicate check needs: just enough of a
// previously stored record to compare content against a candidate row.
type ExistingNote struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}
