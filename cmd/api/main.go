package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/notasalud/clinicalnotes/backend/internal/adapters/cache"
	"github.com/notasalud/clinicalnotes/backend/internal/adapters/database"
	"github.com/notasalud/clinicalnotes/backend/internal/adapters/identity"
	"github.com/notasalud/clinicalnotes/backend/internal/adapters/search"
	"github.com/notasalud/clinicalnotes/backend/internal/adapters/storage"
	"github.com/notasalud/clinicalnotes/backend/internal/api/handlers"
	"github.com/notasalud/clinicalnotes/backend/internal/api/middleware"
	"github.com/notasalud/clinicalnotes/backend/internal/api/routes"
	"github.com/notasalud/clinicalnotes/backend/internal/application/services"
	"github.com/notasalud/clinicalnotes/backend/internal/db"
	"github.com/notasalud/clinicalnotes/backend/internal/domain/providers"
	"github.com/notasalud/clinicalnotes/backend/internal/domain/repositories"
	"github.com/notasalud/clinicalnotes/backend/internal/infrastructure/clients/openai"
	"github.com/notasalud/clinicalnotes/backend/internal/infrastructure/clients/postgres"
	"github.com/notasalud/clinicalnotes/backend/internal/infrastructure/clients/redis"
	"github.com/notasalud/clinicalnotes/backend/internal/infrastructure/clients/typesense"
	"github.com/notasalud/clinicalnotes/backend/internal/infrastructure/observability"
	"github.com/notasalud/clinicalnotes/backend/pkg/config"
	"github.com/notasalud/clinicalnotes/backend/pkg/secrets"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Overlay Vault secrets onto the environment before reading config
	if result, err := secrets.ApplyVaultSecrets(ctx, secrets.LoadVaultConfigFromEnv()); err != nil {
		log.Warn().Err(err).Msg("failed to apply vault secrets")
	} else if result.Enabled {
		log.Info().Int("loaded", result.Loaded).Str("path", result.Path).Msg("vault secrets applied")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	// Run migrations on boot
	if err := db.RunMigrations(ctx, pgClient.DB(), cfg.Database.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Initialize Redis client; the app works without caching
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize Redis client, continuing without cache")
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	// Initialize Typesense client; listing falls back to Postgres without it
	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize Typesense client")
		typesenseClient = nil
	}

	var searchRepo repositories.NoteSearchRepository
	if typesenseClient != nil {
		adapter := search.NewTypesenseAdapter(typesenseClient)
		if err := adapter.InitSchema(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to init Typesense schema")
		}
		searchRepo = adapter
	}

	// Initialize adapters
	noteAdapter := database.NewNoteAdapter(pgClient)
	runAdapter := database.NewIngestionRunAdapter(pgClient)

	fileSource, err := storage.NewS3FileSource(ctx, &cfg.ObjectStore)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize object storage")
	}

	var summarizer providers.Summarizer
	if cfg.OpenAI.APIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY not set, note summarization disabled")
	} else {
		openaiClient, err := openai.NewClient(&cfg.OpenAI)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize OpenAI client")
		} else {
			summarizer = openaiClient
		}
	}

	var identityProvider providers.IdentityProvider
	if cfg.Auth.Enabled {
		if cacheProvider == nil {
			log.Fatal().Msg("auth requires Redis for session storage")
		}
		identityProvider = identity.NewGoogleProvider(&cfg.Auth, cacheProvider)
	}

	// Initialize services
	ingestionService := services.NewIngestionService(noteAdapter, runAdapter, searchRepo, summarizer, metrics)
	noteService := services.NewNoteService(noteAdapter, searchRepo)

	// Initialize handlers
	noteHandler := handlers.NewNoteHandler(noteService)
	ingestionHandler := handlers.NewIngestionHandler(ingestionService, fileSource, cacheProvider, cfg.Ingestion.IdempotencyTTLSecs)
	uploadHandler := handlers.NewUploadHandler(fileSource)
	importsHandler := handlers.NewImportsHandler(runAdapter)
	authHandler := handlers.NewAuthHandler(identityProvider)

	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider)
	}

	router := routes.NewRouter(
		noteHandler,
		ingestionHandler,
		uploadHandler,
		importsHandler,
		authHandler,
		identityProvider,
		cfg.Auth.Enabled,
		cacheMiddleware,
		metrics,
	)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	log.Info().Msg("server stopped")
}
