package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mkravets/effidash/internal/core/domain"
	"github.com/mkravets/effidash/internal/core/ports"
	"github.com/mkravets/effidash/internal/core/usecase"
	"github.com/mkravets/effidash/internal/observability/metrics"
)

// Options carries the service identity and the configuration values the
// config endpoint reports. The API key itself never leaves the process.
type Options struct {
	Service        string
	Model          string
	BaseURL        string
	APIKeyPresent  bool
	MaxTokens      int
	Temperature    float64
	MaxUploadBytes int64
	DefaultPrompt  string
	MaxPromptLen   int
}

type Router struct {
	analyzer  ports.DocumentAnalyzer
	reports   *usecase.ReportsUseCase
	dashboard ports.DashboardService
	client    ports.AnalysisClient
	prompts   ports.PromptStore
	extractor ports.ContentExtractor
	opts      Options
	metrics   *metrics.HTTPServerMetrics
}

func NewRouter(
	analyzer ports.DocumentAnalyzer,
	reports *usecase.ReportsUseCase,
	dashboard ports.DashboardService,
	client ports.AnalysisClient,
	prompts ports.PromptStore,
	extractor ports.ContentExtractor,
	opts Options,
	serverMetrics *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		analyzer:  analyzer,
		reports:   reports,
		dashboard: dashboard,
		client:    client,
		prompts:   prompts,
		extractor: extractor,
		opts:      opts,
		metrics:   serverMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)

	mux.HandleFunc("/api/ai-analysis/upload", rt.uploadDocument)
	mux.HandleFunc("/api/ai-analysis/history", rt.listHistory)
	mux.HandleFunc("/api/ai-analysis/results/", rt.handleResult)
	mux.HandleFunc("/api/ai-analysis/files/", rt.deleteFile)
	mux.HandleFunc("/api/ai-analysis/export/", rt.exportReport)
	mux.HandleFunc("/api/ai-analysis/config", rt.getConfig)
	mux.HandleFunc("/api/ai-analysis/config/test", rt.testConnection)
	mux.HandleFunc("/api/ai-analysis/test-connection", rt.probeConnection)
	mux.HandleFunc("/api/ai-analysis/config/prompt", rt.handlePrompt)
	mux.HandleFunc("/api/ai-analysis/stats", rt.getStats)

	mux.HandleFunc("/api/dashboard/metrics", rt.getMetrics)
	mux.HandleFunc("/api/dashboard/trends", rt.getTrends)
	mux.HandleFunc("/api/dashboard/rankings", rt.getRankings)
	mux.HandleFunc("/api/dashboard/details", rt.getProjectDetails)
	mux.HandleFunc("/api/departments", rt.getDepartments)
	mux.HandleFunc("/api/date-range", rt.getDateRange)
	mux.HandleFunc("/api/settings", rt.handleSettings)

	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.opts.Service, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps the error kind onto a status code. Messages carrying a
// recognized kind are curated upstream; anything else that lands on 500 is
// raw infrastructure text and stays in the server log.
func writeError(w http.ResponseWriter, err error) {
	status := mapErrorToHTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError && !domain.IsKind(err, domain.ErrAnalysis) {
		slog.Error("request_failed", "error", err)
		message = "Internal server error"
	}
	writeJSON(w, status, map[string]string{"error": message})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
}
