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

	"github.com/mkravets/effidash/internal/config"
	"github.com/mkravets/effidash/internal/infrastructure/storage/tempfs"
	"github.com/mkravets/effidash/internal/observability/logging"
	"github.com/mkravets/effidash/internal/observability/metrics"
)

// The sweeper removes staged uploads that outlived their pipeline
// invocation, for example after a crash mid-request.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logging.Setup("effidash-sweeper", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := tempfs.New(cfg.TempDir)
	if err != nil {
		log.Fatalf("init staging storage: %v", err)
	}

	sweeperMetrics := metrics.NewSweeperMetrics("effidash-sweeper")
	mux := http.NewServeMux()
	mux.Handle("/metrics", sweeperMetrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	server := &http.Server{Addr: ":" + cfg.SweeperPort, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("sweeper server error: %v", err)
		}
	}()

	sweep := func() {
		start := time.Now()
		removed, err := storage.SweepOlderThan(cfg.SweepMaxAge)
		sweeperMetrics.FinishSweep("effidash-sweeper", removed, time.Since(start), err)
		if err != nil {
			logger.Error("sweep_failed", "error", err)
			return
		}
		logger.Info("sweep_done", "removed", removed, "max_age", cfg.SweepMaxAge.String())
	}

	sweep()
	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
			return
		case <-ticker.C:
			sweep()
		}
	}
}
