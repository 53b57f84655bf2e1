package httpadapter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mkravets/effidash/internal/core/domain"
	"github.com/mkravets/effidash/internal/core/ports"
)

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	start := time.Now()
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	result, err := rt.analyzer.AnalyzeUpload(r.Context(), ports.UploadRequest{
		Filename:     fileHeader.Filename,
		Size:         fileHeader.Size,
		Body:         file,
		CustomPrompt: strings.TrimSpace(r.FormValue("custom_prompt")),
	})
	if err != nil {
		rt.recordUpload(uploadOutcome(err), start)
		writeError(w, err)
		return
	}

	rt.recordUpload("completed", start)
	if rt.metrics != nil && result.Report != nil {
		rt.metrics.RecordTokenUsage(rt.opts.Service, result.Report.Analysis.ModelUsed, result.Report.Analysis.TokensUsed)
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) recordUpload(outcome string, start time.Time) {
	if rt.metrics == nil {
		return
	}
	rt.metrics.RecordUpload(rt.opts.Service, outcome, time.Since(start))
}

func uploadOutcome(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return "invalid"
	case domain.IsKind(err, domain.ErrExtraction):
		return "extraction_failed"
	case domain.IsKind(err, domain.ErrTemporary):
		return "temporary"
	case domain.IsKind(err, domain.ErrAnalysis):
		return "analysis_failed"
	default:
		return "error"
	}
}

func (rt *Router) listHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	page := intQuery(r, "page", 1)
	// The dashboard sends per_page, older clients page_size.
	perPage := intQuery(r, "per_page", intQuery(r, "page_size", 10))

	entries, total, err := rt.reports.History(r.Context(), page, perPage)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"history":  entries,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

func (rt *Router) handleResult(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/ai-analysis/results/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "analysis id is required"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		report, err := rt.reports.Get(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	case http.MethodDelete:
		if err := rt.reports.Delete(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	default:
		methodNotAllowed(w)
	}
}

func (rt *Router) deleteFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/ai-analysis/files/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file id is required"})
		return
	}

	if err := rt.reports.DeleteFile(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (rt *Router) exportReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/ai-analysis/export/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "analysis id is required"})
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "html"
	}

	data, err := rt.reports.Export(r.Context(), id, format)
	if err != nil {
		writeError(w, err)
		return
	}

	contentType := "application/json; charset=utf-8"
	ext := "json"
	if format == "html" {
		contentType = "text/html; charset=utf-8"
		ext = "html"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=analysis_report_%s.%s", id, ext))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (rt *Router) getConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	custom, err := rt.prompts.CustomPrompt(r.Context())
	if err != nil {
		slog.Warn("custom_prompt_read_failed", "error", err)
		custom = ""
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"config": map[string]any{
			"siliconflow": map[string]any{
				"model":              rt.opts.Model,
				"base_url":           rt.opts.BaseURL,
				"api_key_configured": rt.opts.APIKeyPresent,
				"max_tokens":         rt.opts.MaxTokens,
				"temperature":        rt.opts.Temperature,
			},
			"prompts": map[string]any{
				"default": rt.opts.DefaultPrompt,
				"custom":  custom,
			},
			"file_processing": map[string]any{
				"max_file_size":     rt.opts.MaxUploadBytes,
				"supported_formats": rt.extractor.SupportedFormats(),
			},
		},
	})
}

func (rt *Router) testConnection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, rt.client.TestConnection(r.Context()))
}

func (rt *Router) probeConnection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, rt.client.TestConnection(r.Context()))
}

func (rt *Router) handlePrompt(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		prompt, err := rt.prompts.CustomPrompt(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"prompt":    prompt,
			"is_custom": prompt != "",
		})
	case http.MethodPost:
		var req struct {
			Prompt string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
		prompt := strings.TrimSpace(req.Prompt)
		if prompt == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "prompt is required"})
			return
		}
		if rt.opts.MaxPromptLen > 0 && len([]rune(prompt)) > rt.opts.MaxPromptLen {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": fmt.Sprintf("prompt exceeds maximum length of %d characters", rt.opts.MaxPromptLen),
			})
			return
		}
		if err := rt.prompts.SetCustomPrompt(r.Context(), prompt); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	case http.MethodDelete:
		if err := rt.prompts.ClearCustomPrompt(r.Context()); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	default:
		methodNotAllowed(w)
	}
}

func (rt *Router) getStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	stats, err := rt.reports.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stats": stats})
}

func intQuery(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
