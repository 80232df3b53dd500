package services

import (
	"context"
	"errors"

	"github.com/notasalud/clinicalnotes/backend/internal/domain/entities"
	"github.com/notasalud/clinicalnotes/backend/internal/domain/repositories"
)

// fakeNoteRepo is an in-memory NoteRepository. Duplicate lookups see both
// seeded records and anything persisted through PutIfAbsent.
type fakeNoteRepo struct {
	seeded    []*entities.ClinicalNote
	stored    []*entities.ClinicalNote
	findCalls int
	findErr   error
	putErr    error
	putResult repositories.PutOutcome
}

func newFakeNoteRepo() *fakeNoteRepo {
	return &fakeNoteRepo{}
}

func (r *fakeNoteRepo) seed(patientID, noteDate, content string) {
	r.seeded = append(r.seeded, &entities.ClinicalNote{
		ID:        "seeded-" + patientID + "-" + noteDate,
		PatientID: patientID,
		NoteDate:  noteDate,
		Content:   content,
	})
}

func (r *fakeNoteRepo) PutIfAbsent(ctx context.Context, note *entities.ClinicalNote) (repositories.PutOutcome, error) {
	if r.putErr != nil {
		return repositories.PutCreated, r.putErr
	}
	r.stored = append(r.stored, note)
	return r.putResult, nil
}

func (r *fakeNoteRepo) FindByPatientAndDate(ctx context.Context, patientID, noteDate string) ([]*entities.ExistingNote, error) {
	r.findCalls++
	if r.findErr != nil {
		return nil, r.findErr
	}

	var existing []*entities.ExistingNote
	for _, note := range append(append([]*entities.ClinicalNote{}, r.seeded...), r.stored...) {
		if note.PatientID == patientID && note.NoteDate == noteDate {
			existing = append(existing, &entities.ExistingNote{ID: note.ID, Content: note.Content})
		}
	}
	return existing, nil
}

func (r *fakeNoteRepo) GetByID(ctx context.Context, id string) (*entities.ClinicalNote, error) {
	for _, note := range append(append([]*entities.ClinicalNote{}, r.seeded...), r.stored...) {
		if note.ID == id {
			return note, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *fakeNoteRepo) List(ctx context.Context, filter repositories.NoteFilter) ([]*entities.ClinicalNote, error) {
	return append(append([]*entities.ClinicalNote{}, r.seeded...), r.stored...), nil
}

func (r *fakeNoteRepo) Delete(ctx context.Context, id string) error {
	return nil
}

// fakeRunRepo records ingestion runs
type fakeRunRepo struct {
	runs      []*entities.IngestionRun
	createErr error
}

func (r *fakeRunRepo) Create(ctx context.Context, run *entities.IngestionRun) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.runs = append(r.runs, run)
	return nil
}

func (r *fakeRunRepo) GetByID(ctx context.Context, id string) (*entities.IngestionRun, error) {
	for _, run := range r.runs {
		if run.ID == id {
			return run, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *fakeRunRepo) List(ctx context.Context, limit, offset int) ([]*entities.IngestionRun, error) {
	return r.runs, nil
}

// fakeSearchRepo records index and delete calls
type fakeSearchRepo struct {
	indexed    []string
	deleted    []string
	results    []*entities.ClinicalNote
	indexErr   error
	searchErr  error
	deleteErr  error
	searchHits int
}

func (r *fakeSearchRepo) Index(ctx context.Context, note *entities.ClinicalNote) error {
	if r.indexErr != nil {
		return r.indexErr
	}
	r.indexed = append(r.indexed, note.ID)
	return nil
}

func (r *fakeSearchRepo) Search(ctx context.Context, params repositories.NoteSearchParams) ([]*entities.ClinicalNote, error) {
	r.searchHits++
	if r.searchErr != nil {
		return nil, r.searchErr
	}
	return r.results, nil
}

func (r *fakeSearchRepo) Delete(ctx context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.deleted = append(r.deleted, id)
	return nil
}

// fakeSummarizer returns a fixed summary or a fixed error
type fakeSummarizer struct {
	summary string
	err     error
	calls   int
}

func (s *fakeSummarizer) Summarize(ctx context.Context, cleanedContent string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.summary, nil
}
