package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mkravets/effidash/internal/core/domain"
)

func seedAnalysis(t *testing.T, repo *memRepo, analysisID, fileID string) {
	t.Helper()

	now := time.Now().UTC()
	if err := repo.CreateFile(context.Background(), &domain.FileRecord{
		ID:         fileID,
		Filename:   "report.txt",
		FileType:   domain.TypeText,
		FileSize:   512,
		UploadTime: now,
		Status:     string(domain.StatusCompleted),
	}); err != nil {
		t.Fatalf("CreateFile() error = %v", err)
	}
	if err := repo.CreateAnalysis(context.Background(), &domain.AnalysisRecord{
		ID:             analysisID,
		FileID:         fileID,
		Content:        "这份文档总结了本季度的交付情况，整体表现稳定。",
		PromptUsed:     "默认分析提示",
		ModelUsed:      "test-model",
		TokensUsed:     34,
		ProcessingTime: 1.2,
		CreatedAt:      now,
	}); err != nil {
		t.Fatalf("CreateAnalysis() error = %v", err)
	}
}

func TestGetResultByID(t *testing.T) {
	env := newTestEnv(t, nil)
	seedAnalysis(t, env.repo, "analysis-1", "file-1")

	req := httptest.NewRequest(http.MethodGet, "/api/ai-analysis/results/analysis-1", nil)
	res := httptest.NewRecorder()
	env.handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}

	var report domain.Report
	if err := json.NewDecoder(res.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.ID != "analysis-1" || report.Status != domain.StatusCompleted {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.Analysis.TokensUsed != 34 {
		t.Fatalf("expected 34 tokens, got %d", report.Analysis.TokensUsed)
	}
}

func TestGetResultNotFound(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/ai-analysis/results/missing", nil)
	res := httptest.NewRecorder()
	env.handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestDeleteResultRemovesFileAndAnalyses(t *testing.T) {
	env := newTestEnv(t, nil)
	seedAnalysis(t, env.repo, "analysis-1", "file-1")

	req := httptest.NewRequest(http.MethodDelete, "/api/ai-analysis/results/analysis-1", nil)
	res := httptest.NewRecorder()
	env.handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if len(env.repo.files) != 0 || len(env.repo.analyses) != 0 {
		t.Fatalf("delete should remove the file and its analyses, got %d/%d", len(env.repo.files), len(env.repo.analyses))
	}
}

func TestDeleteByFileID(t *testing.T) {
	env := newTestEnv(t, nil)
	seedAnalysis(t, env.repo, "analysis-1", "file-1")

	req := httptest.NewRequest(http.MethodDelete, "/api/ai-analysis/files/file-1", nil)
	res := httptest.NewRecorder()
	env.handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if len(env.repo.files) != 0 || len(env.repo.analyses) != 0 {
		t.Fatalf("file delete should cascade, got %d/%d", len(env.repo.files), len(env.repo.analyses))
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/ai-analysis/files/file-1", nil)
	res = httptest.NewRecorder()
	env.handler.ServeHTTP(res, req)
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for a removed file, got %d", res.Code)
	}
}

func TestHistoryPagination(t *testing.T) {
	env := newTestEnv(t, nil)
	seedAnalysis(t, env.repo, "analysis-1", "file-1")
	seedAnalysis(t, env.repo, "analysis-2", "file-2")
	seedAnalysis(t, env.repo, "analysis-3", "file-3")

	req := httptest.NewRequest(http.MethodGet, "/api/ai-analysis/history?page=1&per_page=2", nil)
	res := httptest.NewRecorder()
	env.handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	var payload struct {
		History []domain.HistoryEntry `json:"history"`
		Total   int                   `json:"total"`
		Page    int                   `json:"page"`
		PerPage int                   `json:"per_page"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Total != 3 || len(payload.History) != 2 || payload.PerPage != 2 {
		t.Fatalf("unexpected page: %+v", payload)
	}
}

func TestExportReportFormats(t *testing.T) {
	env := newTestEnv(t, nil)
	seedAnalysis(t, env.repo, "analysis-1", "file-1")

	req := httptest.NewRequest(http.MethodGet, "/api/ai-analysis/export/analysis-1?format=json", nil)
	res := httptest.NewRecorder()
	env.handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("json export: expected 200, got %d", res.Code)
	}
	if ct := res.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := res.Header().Get("Content-Disposition"); !strings.Contains(cd, "analysis_report_analysis-1.json") {
		t.Fatalf("unexpected content disposition %q", cd)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/ai-analysis/export/analysis-1", nil)
	res = httptest.NewRecorder()
	env.handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("html export: expected 200, got %d", res.Code)
	}
	if ct := res.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("default export should be html, got %q", ct)
	}
	if !strings.Contains(res.Body.String(), "report.txt") {
		t.Fatalf("html export should mention the filename")
	}
}

func TestExportUnknownFormatRejected(t *testing.T) {
	env := newTestEnv(t, nil)
	seedAnalysis(t, env.repo, "analysis-1", "file-1")

	req := httptest.NewRequest(http.MethodGet, "/api/ai-analysis/export/analysis-1?format=pdf", nil)
	res := httptest.NewRecorder()
	env.handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestPromptLifecycle(t *testing.T) {
	env := newTestEnv(t, nil)

	body := bytes.NewBufferString(`{"prompt": "请从交付效率角度分析"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/ai-analysis/config/prompt", body)
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	env.handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("set: expected 200, got %d: %s", res.Code, res.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/ai-analysis/config/prompt", nil)
	res = httptest.NewRecorder()
	env.handler.ServeHTTP(res, req)
	var payload struct {
		Prompt   string `json:"prompt"`
		IsCustom bool   `json:"is_custom"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !payload.IsCustom || payload.Prompt != "请从交付效率角度分析" {
		t.Fatalf("unexpected prompt state: %+v", payload)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/ai-analysis/config/prompt", nil)
	res = httptest.NewRecorder()
	env.handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("clear: expected 200, got %d", res.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/ai-analysis/config/prompt", nil)
	res = httptest.NewRecorder()
	env.handler.ServeHTTP(res, req)
	payload = struct {
		Prompt   string `json:"prompt"`
		IsCustom bool   `json:"is_custom"`
	}{}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.IsCustom || payload.Prompt != "" {
		t.Fatalf("prompt should be cleared: %+v", payload)
	}
}

func TestPromptRejectsEmptyBody(t *testing.T) {
	env := newTestEnv(t, nil)

	body := bytes.NewBufferString(`{"prompt": "   "}`)
	req := httptest.NewRequest(http.MethodPost, "/api/ai-analysis/config/prompt", body)
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	env.handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestConfigEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	env.prompts.stored = "自定义提示词"

	req := httptest.NewRequest(http.MethodGet, "/api/ai-analysis/config", nil)
	res := httptest.NewRecorder()
	env.handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	var payload struct {
		Config struct {
			Siliconflow struct {
				Model            string `json:"model"`
				APIKeyConfigured bool   `json:"api_key_configured"`
			} `json:"siliconflow"`
			Prompts struct {
				Default string `json:"default"`
				Custom  string `json:"custom"`
			} `json:"prompts"`
			FileProcessing struct {
				SupportedFormats []string `json:"supported_formats"`
			} `json:"file_processing"`
		} `json:"config"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Config.Siliconflow.Model != "test-model" || !payload.Config.Siliconflow.APIKeyConfigured {
		t.Fatalf("unexpected api section: %+v", payload.Config.Siliconflow)
	}
	if payload.Config.Prompts.Custom != "自定义提示词" || payload.Config.Prompts.Default == "" {
		t.Fatalf("unexpected prompts section: %+v", payload.Config.Prompts)
	}
	if len(payload.Config.FileProcessing.SupportedFormats) == 0 {
		t.Fatalf("supported formats should not be empty")
	}
}

func TestStatsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	seedAnalysis(t, env.repo, "analysis-1", "file-1")

	req := httptest.NewRequest(http.MethodGet, "/api/ai-analysis/stats", nil)
	res := httptest.NewRecorder()
	env.handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	var payload struct {
		Stats domain.UsageStats `json:"stats"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Stats.TotalAnalyses != 1 || payload.Stats.SuccessRate != 100.0 {
		t.Fatalf("unexpected stats: %+v", payload.Stats)
	}
}

func TestConnectionTestEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/ai-analysis/config/test", nil)
	res := httptest.NewRecorder()
	env.handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	var result domain.ConnectionTest
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !result.Success || !result.APIAccessible || !result.AuthenticationValid {
		t.Fatalf("unexpected connection test result: %+v", result)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/ai-analysis/config/test", nil)
	res = httptest.NewRecorder()
	env.handler.ServeHTTP(res, req)
	if res.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", res.Code)
	}
}
