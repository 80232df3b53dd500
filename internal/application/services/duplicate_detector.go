package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/notasalud/clinicalnotes/backend/internal/domain/entities"
	"github.com/notasalud/clinicalnotes/backend/internal/domain/repositories"
)

// duplicateSimilarityThreshold: above this Jaccard similarity a candidate
// row is considered a near-duplicate of a stored record
const duplicateSimilarityThreshold = 0.8

var tokenSplit = regexp.MustCompile(`[^a-z0-9_áéíóúñü]+`)

// DuplicateDetector decides whether a candidate row near-duplicates a
// previously stored record for the same patient and date. One detector is
// created per file invocation: store queries are cached per (patient, date)
// pair for the lifetime of that file, and the cache is never invalidated,
// so rows of the same file are only ever compared against pre-file state.
type DuplicateDetector struct {
	repo  repositories.NoteRepository
	cache map[string][]*entities.ExistingNote
}

// NewDuplicateDetector creates a detector scoped to one file's processing
func NewDuplicateDetector(repo repositories.NoteRepository) *DuplicateDetector {
	return &DuplicateDetector{
		repo:  repo,
		cache: make(map[string][]*entities.ExistingNote),
	}
}

// IsDuplicate reports whether any stored record for the same patient and
// canonical date has content with Jaccard similarity above the threshold.
func (d *DuplicateDetector) IsDuplicate(ctx context.Context, patientID, noteDate, content string) (bool, error) {
	existing, err := d.lookup(ctx, patientID, noteDate)
	if err != nil {
		return false, err
	}
	if len(existing) == 0 {
		return false, nil
	}

	candidate := tokenSet(content)
	for _, record := range existing {
		if jaccard(candidate, tokenSet(record.Content)) > duplicateSimilarityThreshold {
			return true, nil
		}
	}
	return false, nil
}

func (d *DuplicateDetector) lookup(ctx context.Context, patientID, noteDate string) ([]*entities.ExistingNote, error) {
	key := fmt.Sprintf("%s|%s", patientID, noteDate)
	if cached, ok := d.cache[key]; ok {
		return cached, nil
	}

	existing, err := d.repo.FindByPatientAndDate(ctx, patientID, noteDate)
	if err != nil {
		return nil, err
	}
	d.cache[key] = existing
	return existing, nil
}

func tokenSet(content string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, token := range tokenSplit.Split(strings.ToLower(content), -1) {
		if token != "" {
			set[token] = struct{}{}
		}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	intersection := 0
	for token := range a {
		if _, ok := b[token]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
