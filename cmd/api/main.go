package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	httpadapter "github.com/mkravets/effidash/internal/adapters/http"
	"github.com/mkravets/effidash/internal/bootstrap"
	"github.com/mkravets/effidash/internal/config"
	"github.com/mkravets/effidash/internal/observability/logging"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logging.Setup("effidash-api", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	if removed, err := app.Storage.SweepOlderThan(cfg.SweepMaxAge); err != nil {
		logger.Warn("startup_sweep_failed", "error", err)
	} else if removed > 0 {
		logger.Info("startup_sweep", "removed", removed)
	}

	router := httpadapter.NewRouter(
		app.AnalyzeUC,
		app.ReportsUC,
		app.DashboardUC,
		app.Client,
		app.Prompts,
		app.Extractor,
		httpadapter.Options{
			Service:        "effidash-api",
			Model:          cfg.Model,
			BaseURL:        cfg.APIBaseURL,
			APIKeyPresent:  cfg.APIKey != "",
			MaxTokens:      cfg.MaxTokens,
			Temperature:    cfg.Temperature,
			MaxUploadBytes: cfg.MaxUploadBytes,
			DefaultPrompt:  cfg.DefaultPrompt,
			MaxPromptLen:   cfg.MaxPromptLen,
		},
		app.Metrics,
	).Handler()

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api_listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api_shutdown_error", "error", err)
	}
}
