package bootstrap

import (
	"context"
	"fmt"

	"github.com/dsemenov/studycraft/internal/config"
	"github.com/dsemenov/studycraft/internal/core/ports"
	"github.com/dsemenov/studycraft/internal/core/usecase"
	"github.com/dsemenov/studycraft/internal/extractor"
	"github.com/dsemenov/studycraft/internal/infrastructure/repository/postgres"
	"github.com/dsemenov/studycraft/internal/infrastructure/resilience"
	"github.com/dsemenov/studycraft/internal/infrastructure/storage/localfs"
	s3storage "github.com/dsemenov/studycraft/internal/infrastructure/storage/s3"
	"github.com/dsemenov/studycraft/internal/infrastructure/transcription/openai"
	"github.com/dsemenov/studycraft/internal/observability/metrics"
	"github.com/dsemenov/studycraft/internal/serializer"
)

type App struct {
	Config  config.Config
	Metrics *metrics.HTTPServerMetrics

	IngestUC ports.DocumentIngestor
	ExportUC ports.ArtifactExporter

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	docRepo := postgres.NewDocumentRepository(db)
	if err := docRepo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure document schema: %w", err)
	}
	artifactRepo := postgres.NewArtifactRepository(db)
	if err := artifactRepo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure artifact schema: %w", err)
	}

	exec := resilience.NewExecutor(resilience.Policy{
		MaxAttempts:    cfg.RetryMaxAttempts,
		InitialBackoff: cfg.RetryInitialBackoff,
		BreakerEnabled: cfg.BreakerEnabled,
	})

	storage, err := newObjectStorage(ctx, cfg, exec)
	if err != nil {
		return nil, err
	}

	transcriber := openai.NewClient(openai.Config{
		APIKey:   cfg.TranscribeAPIKey,
		Model:    cfg.TranscribeModel,
		Endpoint: cfg.TranscribeEndpoint,
	}, exec)

	extractors := extractor.NewRegistry(transcriber)
	serializers := serializer.NewRegistry()

	return &App{
		Config:  cfg,
		Metrics: metrics.NewHTTPServerMetrics("api"),

		IngestUC: usecase.NewIngestDocumentUseCase(docRepo, storage, extractors),
		ExportUC: usecase.NewExportArtifactUseCase(artifactRepo, serializers),

		closeFn: func() {
			_ = db.Close()
		},
	}, nil
}

func newObjectStorage(ctx context.Context, cfg config.Config, exec *resilience.Executor) (ports.ObjectStorage, error) {
	switch cfg.StorageBackend {
	case "s3":
		store, err := s3storage.New(ctx, s3storage.Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Endpoint:  cfg.S3Endpoint,
		}, exec)
		if err != nil {
			return nil, fmt.Errorf("init s3 storage: %w", err)
		}
		return store, nil
	case "local", "":
		store, err := localfs.New(cfg.StoragePath)
		if err != nil {
			return nil, fmt.Errorf("init local storage: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
