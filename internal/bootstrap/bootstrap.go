package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/mkravets/effidash/internal/config"
	"github.com/mkravets/effidash/internal/core/ports"
	"github.com/mkravets/effidash/internal/core/usecase"
	"github.com/mkravets/effidash/internal/infrastructure/extractor"
	"github.com/mkravets/effidash/internal/infrastructure/llm/completion"
	"github.com/mkravets/effidash/internal/infrastructure/report"
	"github.com/mkravets/effidash/internal/infrastructure/repository/postgres"
	"github.com/mkravets/effidash/internal/infrastructure/resilience"
	"github.com/mkravets/effidash/internal/infrastructure/storage/tempfs"
	"github.com/mkravets/effidash/internal/infrastructure/upload"
	"github.com/mkravets/effidash/internal/observability/metrics"
)

const serviceName = "effidash-api"

type App struct {
	Config config.Config

	Storage     ports.TempStorage
	Client      ports.AnalysisClient
	Prompts     ports.PromptStore
	Extractor   ports.ContentExtractor
	AnalyzeUC   *usecase.AnalyzeDocumentUseCase
	ReportsUC   *usecase.ReportsUseCase
	DashboardUC *usecase.DashboardUseCase
	Metrics     *metrics.HTTPServerMetrics

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	analysisRepo := postgres.NewAnalysisRepository(db)
	dashboardRepo := postgres.NewDashboardRepository(db)
	prompts := postgres.NewPromptStore(db)

	storage, err := tempfs.New(cfg.TempDir)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init staging storage: %w", err)
	}

	serverMetrics := metrics.NewHTTPServerMetrics(serviceName)

	executor := resilience.NewExecutor(resilience.Config{
		MaxRetries:        cfg.MaxRetries,
		RetryDelay:        cfg.RetryDelay,
		BackoffMultiplier: cfg.BackoffMultiplier,

		BreakerEnabled: true,
	})
	executor.SetOnRetry(func(operation string, _ int) {
		serverMetrics.RecordRetry(serviceName, operation)
	})

	client := completion.New(completion.Config{
		APIKey:             cfg.APIKey,
		BaseURL:            cfg.APIBaseURL,
		Model:              cfg.Model,
		MaxTokens:          cfg.MaxTokens,
		Temperature:        cfg.Temperature,
		RequestTimeout:     cfg.RequestTimeout,
		ConnectTimeout:     cfg.ConnectTimeout,
		MinRequestInterval: cfg.MinRequestInterval,
		DefaultPrompt:      cfg.DefaultPrompt,
	}, executor)

	validator := upload.NewValidator(cfg.MaxUploadBytes, cfg.SupportedTypes)
	registry := extractor.NewRegistry()
	assembler := report.NewAssembler()

	analyzeUC := usecase.NewAnalyzeDocumentUseCase(validator, storage, registry, client, assembler, analysisRepo, prompts)
	analyzeUC.SetOnExtraction(func(fileType string, duration time.Duration) {
		serverMetrics.RecordExtraction(serviceName, fileType, duration)
	})
	reportsUC := usecase.NewReportsUseCase(analysisRepo, assembler)
	dashboardUC := usecase.NewDashboardUseCase(dashboardRepo)

	return &App{
		Config: cfg,

		Storage:     storage,
		Client:      client,
		Prompts:     prompts,
		Extractor:   registry,
		AnalyzeUC:   analyzeUC,
		ReportsUC:   reportsUC,
		DashboardUC: dashboardUC,
		Metrics:     serverMetrics,

		closeFn: func() {
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
