package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/notasalud/clinicalnotes/backend/internal/adapters/database"
	"github.com/notasalud/clinicalnotes/backend/internal/adapters/search"
	"github.com/notasalud/clinicalnotes/backend/internal/domain/repositories"
	"github.com/notasalud/clinicalnotes/backend/internal/infrastructure/clients/postgres"
	"github.com/notasalud/clinicalnotes/backend/internal/infrastructure/clients/typesense"
	"github.com/notasalud/clinicalnotes/backend/internal/infrastructure/observability"
	"github.com/notasalud/clinicalnotes/backend/pkg/config"
)

const reindexPageSize = 500

func main() {
	var reset bool
	var intervalFlag string
	flag.BoolVar(&reset, "reset", false, "delete existing Typesense collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	observability.InitLogger("clinical-notes-indexer", os.Getenv("APP_ENV"))

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	var err error
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil {
			log.Fatal().Str("interval", intervalValue).Err(err).Msg("invalid interval")
		}
		if interval <= 0 {
			log.Fatal().Msg("interval must be greater than zero")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, reset); err != nil {
			log.Error().Err(err).Msg("reindex failed")
		}

		if interval <= 0 {
			break
		}

		reset = false
		log.Info().Dur("interval", interval).Msg("reindex complete, waiting for next run")

		select {
		case <-ctx.Done():
			log.Info().Msg("reindexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, reset bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	noteRepo := database.NewNoteAdapter(pgClient)

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		return err
	}

	if reset || os.Getenv("RESET_TYPESENSE") == "true" {
		log.Info().Msg("deleting notes collection before reindex")
		if _, err := tsClient.Client().Collection(typesense.NotesCollection).Delete(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to delete collection")
		}
	}

	adapter := search.NewTypesenseAdapter(tsClient)
	if err := adapter.InitSchema(ctx); err != nil {
		return err
	}

	indexed := 0
	for offset := 0; ; offset += reindexPageSize {
		notes, err := noteRepo.List(ctx, repositories.NoteFilter{Limit: reindexPageSize, Offset: offset})
		if err != nil {
			return err
		}
		if len(notes) == 0 {
			break
		}

		for _, note := range notes {
			if err := adapter.Index(ctx, note); err != nil {
				log.Warn().Err(err).Str("note_id", note.ID).Msg("failed to index note")
				continue
			}
			indexed++
		}
	}

	log.Info().Int("indexed", indexed).Msg("reindex finished")
	return nil
}
