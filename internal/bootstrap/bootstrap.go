package bootstrap

import (
	"context"
	"fmt"

	"github.com/OSH212/phmarcel-rpg/internal/config"
	"github.com/OSH212/phmarcel-rpg/internal/core/ports"
	"github.com/OSH212/phmarcel-rpg/internal/core/usecase"
	"github.com/OSH212/phmarcel-rpg/internal/infrastructure/annotator/qwenvl"
	"github.com/OSH212/phmarcel-rpg/internal/infrastructure/inspect"
	natsqueue "github.com/OSH212/phmarcel-rpg/internal/infrastructure/queue/nats"
	"github.com/OSH212/phmarcel-rpg/internal/infrastructure/repository/postgres"
	"github.com/OSH212/phmarcel-rpg/internal/infrastructure/resilience"
	"github.com/OSH212/phmarcel-rpg/internal/infrastructure/storage/localfs"
)

// App wires repositories, external adapters and use cases for both the api
// and worker binaries.
type App struct {
	Config config.Config

	Queue *natsqueue.Queue

	Clients   ports.ClientDirectory
	Intakes   ports.IntakeManager
	Ingestor  ports.DocumentIngestor
	Processor ports.DocumentProcessor
	Checklist ports.ChecklistReader
	Documents ports.DocumentReader

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	clientRepo := postgres.NewClientRepository(db)
	intakeRepo := postgres.NewIntakeRepository(db)
	documentRepo := postgres.NewDocumentRepository(db)
	checklistRepo := postgres.NewChecklistRepository(db)
	txManager := postgres.NewTxManager(db)

	blobs, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init blob storage: %w", err)
	}

	executorCfg := resilience.DefaultConfig()
	executorCfg.Retry.MaxAttempts = cfg.RetryMaxAttempts
	executorCfg.Breaker.Enabled = cfg.BreakerEnabled
	executor := resilience.NewExecutor(executorCfg)

	queue, err := natsqueue.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, natsqueue.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	annotator, err := qwenvl.New(cfg.SidecarURL, executor)
	if err != nil {
		queue.Close()
		return nil, fmt.Errorf("init sidecar client: %w", err)
	}

	reconciler := usecase.NewReconcileChecklistUseCase(txManager, intakeRepo, documentRepo, checklistRepo)
	processor := usecase.NewProcessDocumentUseCase(intakeRepo, documentRepo, annotator, reconciler)

	return &App{
		Config: cfg,
		Queue:  queue,

		Clients:   usecase.NewClientDirectoryUseCase(clientRepo),
		Intakes:   usecase.NewIntakeManagerUseCase(clientRepo, intakeRepo),
		Ingestor:  usecase.NewIngestDocumentUseCase(intakeRepo, documentRepo, inspect.New(), blobs, queue),
		Processor: processor,
		Checklist: usecase.NewChecklistViewUseCase(intakeRepo, checklistRepo),
		Documents: processor,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
