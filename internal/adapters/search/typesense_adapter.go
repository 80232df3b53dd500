package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/notasalud/clinicalnotes/backend/internal/domain/entities"
	"github.com/notasalud/clinicalnotes/backend/internal/domain/repositories"
	tsclient "github.com/notasalud/clinicalnotes/backend/internal/infrastructure/clients/typesense"
)

// TypesenseAdapter implements note search using Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

// Ensure TypesenseAdapter implements NoteSearchRepository
var _ repositories.NoteSearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the notes collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	// Check if collection exists
	_, err := a.client.Client().Collection(tsclient.NotesCollection).Retrieve(ctx)
	if err == nil {
		return nil // Collection exists
	}

	schema := &api.CollectionSchema{
		Name: tsclient.NotesCollection,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "patient_id", Type: "string", Facet: pointer.True()},
			{Name: "note_date", Type: "string"},
			{Name: "clinician", Type: "string", Optional: pointer.True()},
			{Name: "specialty", Type: "string", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "clean_content", Type: "string"},
			{Name: "keywords", Type: "string[]"},
			{Name: "summary", Type: "string", Optional: pointer.True()},
			{Name: "source_file", Type: "string", Facet: pointer.True()},
			{Name: "ingested_at", Type: "int64"},
		},
		DefaultSortingField: pointer.String("ingested_at"),
	}

	_, err = a.client.Client().Collections().Create(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create typesense collection: %w", err)
	}

	return nil
}

// Index upserts a note into the search collection
func (a *TypesenseAdapter) Index(ctx context.Context, note *entities.ClinicalNote) error {
	keywords := note.Keywords
	if keywords == nil {
		keywords = []string{}
	}

	document := map[string]interface{}{
		"id":            note.ID,
		"patient_id":    note.PatientID,
		"note_date":     note.NoteDate,
		"clinician":     note.Clinician,
		"specialty":     note.Specialty,
		"clean_content": note.CleanContent,
		"keywords":      keywords,
		"summary":       note.Summary,
		"source_file":   note.SourceFile,
		"ingested_at":   note.IngestedAt.Unix(),
	}

	_, err := a.client.Client().Collection(tsclient.NotesCollection).Documents().Upsert(ctx, document)
	if err != nil {
		return fmt.Errorf("failed to index note: %w", err)
	}

	return nil
}

// Delete removes a note from the search collection
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(tsclient.NotesCollection).Document(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete note from index: %w", err)
	}
	return nil
}

// Search runs a full-text query over the cleaned content and keywords
func (a *TypesenseAdapter) Search(ctx context.Context, params repositories.NoteSearchParams) ([]*entities.ClinicalNote, error) {
	query := params.Query
	if query == "" {
		query = "*"
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	searchParams := &api.SearchCollectionParams{
		Q:       pointer.String(query),
		QueryBy: pointer.String("clean_content,keywords,summary"),
		Page:    pointer.Int(params.Offset/limit + 1),
		PerPage: pointer.Int(limit),
		SortBy:  pointer.String("ingested_at:desc"),
	}

	filters := []string{}
	if params.PatientID != "" {
		filters = append(filters, fmt.Sprintf("patient_id:=%s", params.PatientID))
	}
	if params.Specialty != "" {
		filters = append(filters, fmt.Sprintf("specialty:=%s", params.Specialty))
	}
	if len(filters) > 0 {
		searchParams.FilterBy = pointer.String(strings.Join(filters, " && "))
	}

	result, err := a.client.Client().Collection(tsclient.NotesCollection).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search notes: %w", err)
	}

	notes := []*entities.ClinicalNote{}
	if result.Hits == nil {
		return notes, nil
	}
	for _, hit := range *result.Hits {
		doc := *hit.Document
		notes = append(notes, documentToNote(doc))
	}

	return notes, nil
}

// documentToNote rebuilds the searchable projection of a note.
// Typesense returns map[string]interface{}, so every cast is checked.
func documentToNote(doc map[string]interface{}) *entities.ClinicalNote {
	note := &entities.ClinicalNote{}

	if val, ok := doc["id"].(string); ok {
		note.ID = val
	}
	if val, ok := doc["patient_id"].(string); ok {
		note.PatientID = val
	}
	if val, ok := doc["note_date"].(string); ok {
		note.NoteDate = val
	}
	if val, ok := doc["clinician"].(string); ok {
		note.Clinician = val
	}
	if val, ok := doc["specialty"].(string); ok {
		note.Specialty = val
	}
	if val, ok := doc["clean_content"].(string); ok {
		note.CleanContent = val
	}
	if val, ok := doc["summary"].(string); ok {
		note.Summary = val
	}
	if val, ok := doc["source_file"].(string); ok {
		note.SourceFile = val
	}
	if val, ok := doc["ingested_at"].(float64); ok {
		note.IngestedAt = time.Unix(int64(val), 0).UTC()
	}
	if raw, ok := doc["keywords"].([]interface{}); ok {
		keywords := make([]string, 0, len(raw))
		for _, item := range raw {
			if kw, ok := item.(string); ok {
				keywords = append(keywords, kw)
			}
		}
		note.Keywords = keywords
	}

	note.Status = entities.NoteStatusProcessed
	return note
}
