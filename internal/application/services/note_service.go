package services

import (
	"context"

	"github.com/notasalud/clinicalnotes/backend/internal/domain/entities"
	"github.com/notasalud/clinicalnotes/backend/internal/domain/repositories"
	"github.com/notasalud/clinicalnotes/backend/internal/infrastructure/observability"
)

// NoteService handles read/delete access to ingested notes and keeps the
// search index in step with the store. Index writes are best-effort: a
// failed index never fails the underlying write (eventual consistency).
type NoteService struct {
	repo       repositories.NoteRepository
	searchRepo repositories.NoteSearchRepository
}

// NewNoteService creates a new note service
func NewNoteService(repo repositories.NoteRepository, searchRepo repositories.NoteSearchRepository) *NoteService {
	return &NoteService{
		repo:       repo,
		searchRepo: searchRepo,
	}
}

// GetByID retrieves a note by ID
func (s *NoteService) GetByID(ctx context.Context, id string) (*entities.ClinicalNote, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves notes with filters
func (s *NoteService) List(ctx context.Context, filter repositories.NoteFilter) ([]*entities.ClinicalNote, error) {
	return s.repo.List(ctx, filter)
}

// Index upserts a note into the search collection
func (s *NoteService) Index(ctx context.Context, note *entities.ClinicalNote) {
	if s.searchRepo == nil {
		return
	}
	if err := s.searchRepo.Index(ctx, note); err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Str("note_id", note.ID).
			Msg("failed to index note")
	}
}

// Search runs a full-text query, falling back to the store when no search
// engine is configured
func (s *NoteService) Search(ctx context.Context, params repositories.NoteSearchParams) ([]*entities.ClinicalNote, error) {
	if s.searchRepo != nil {
		return s.searchRepo.Search(ctx, params)
	}
	return s.repo.List(ctx, repositories.NoteFilter{
		PatientID: params.PatientID,
		Specialty: params.Specialty,
		Limit:     params.Limit,
		Offset:    params.Offset,
	})
}

// Delete removes a note from the store and the search collection
func (s *NoteService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.searchRepo != nil {
		if err := s.searchRepo.Delete(ctx, id); err != nil {
			observability.LoggerFromContext(ctx).Warn().
				Err(err).
				Str("note_id", id).
				Msg("failed to delete note from index")
		}
	}
	return nil
}
