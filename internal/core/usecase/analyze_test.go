package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/mkravets/effidash/internal/core/domain"
	"github.com/mkravets/effidash/internal/core/ports"
)

type fakeValidator struct {
	result domain.Validation
}

func (f *fakeValidator) Validate(string, int64) domain.Validation {
	return f.result
}

type fakeStorage struct {
	stageErr error
	staged   []string
	cleaned  []string
}

func (f *fakeStorage) Stage(_ context.Context, _ string, body io.Reader) (string, string, error) {
	if f.stageErr != nil {
		return "", "", f.stageErr
	}
	_, _ = io.Copy(io.Discard, body)
	path := "/tmp/staged/file-1.txt"
	f.staged = append(f.staged, path)
	return "file-1", path, nil
}

func (f *fakeStorage) Cleanup(path string) bool {
	f.cleaned = append(f.cleaned, path)
	return true
}

func (f *fakeStorage) SweepOlderThan(time.Duration) (int, error) { return 0, nil }

type fakeExtractor struct {
	result domain.Extraction
	calls  int
}

func (f *fakeExtractor) Extract(context.Context, string, domain.FileType) domain.Extraction {
	f.calls++
	return f.result
}

func (f *fakeExtractor) SupportedFormats() []domain.FileType { return nil }

type fakeClient struct {
	result     domain.Analysis
	calls      int
	lastPrompt string
}

func (f *fakeClient) Analyze(_ context.Context, _ string, customPrompt string) domain.Analysis {
	f.calls++
	f.lastPrompt = customPrompt
	return f.result
}

func (f *fakeClient) TestConnection(context.Context) domain.ConnectionTest {
	return domain.ConnectionTest{Success: true}
}

type fakeAssembler struct{}

func (f *fakeAssembler) Build(analysis domain.Analysis, file domain.FileInfo, promptUsed, analysisID string) *domain.Report {
	status := domain.StatusFailed
	if analysis.Success {
		status = domain.StatusCompleted
	}
	return &domain.Report{
		ID:       analysisID,
		FileInfo: file,
		Analysis: domain.ReportAnalysis{
			Content:    analysis.Content,
			Success:    analysis.Success,
			TokensUsed: analysis.TokensUsed,
			PromptUsed: promptUsed,
		},
		Status: status,
	}
}

func (f *fakeAssembler) Export(*domain.Report, string) ([]byte, error) {
	return []byte("{}"), nil
}

type fakeRepo struct {
	files      []*domain.FileRecord
	analyses   []*domain.AnalysisRecord
	deletedIDs []string
}

func (f *fakeRepo) CreateFile(_ context.Context, file *domain.FileRecord) error {
	f.files = append(f.files, file)
	return nil
}

func (f *fakeRepo) CreateAnalysis(_ context.Context, record *domain.AnalysisRecord) error {
	f.analyses = append(f.analyses, record)
	return nil
}

func (f *fakeRepo) GetAnalysis(_ context.Context, id string) (*domain.AnalysisRecord, *domain.FileRecord, error) {
	for _, a := range f.analyses {
		if a.ID == id {
			for _, fl := range f.files {
				if fl.ID == a.FileID {
					return a, fl, nil
				}
			}
		}
	}
	return nil, nil, domain.WrapError(domain.ErrNotFound, "get analysis", errors.New(id))
}

func (f *fakeRepo) ListHistory(context.Context, int, int) ([]domain.HistoryEntry, int, error) {
	return nil, len(f.analyses), nil
}

func (f *fakeRepo) DeleteFile(_ context.Context, fileID string) error {
	f.deletedIDs = append(f.deletedIDs, fileID)
	return nil
}

func (f *fakeRepo) Stats(context.Context) (*domain.UsageStats, error) {
	stats := &domain.UsageStats{
		TotalFiles:    len(f.files),
		TotalAnalyses: len(f.analyses),
	}
	if stats.TotalAnalyses > 0 {
		stats.SuccessRate = 100.0
	}
	return stats, nil
}

type fakePrompts struct {
	stored string
}

func (f *fakePrompts) CustomPrompt(context.Context) (string, error) { return f.stored, nil }
func (f *fakePrompts) SetCustomPrompt(_ context.Context, p string) error {
	f.stored = p
	return nil
}
func (f *fakePrompts) ClearCustomPrompt(context.Context) error {
	f.stored = ""
	return nil
}

func newPipeline(validator *fakeValidator, storage *fakeStorage, extractor *fakeExtractor, client *fakeClient, repo *fakeRepo, prompts *fakePrompts) *AnalyzeDocumentUseCase {
	return NewAnalyzeDocumentUseCase(validator, storage, extractor, client, &fakeAssembler{}, repo, prompts)
}

func validUpload() ports.UploadRequest {
	return ports.UploadRequest{
		Filename: "notes.txt",
		Size:     128,
		Body:     strings.NewReader("ten lines of text"),
	}
}

func TestAnalyzeUploadHappyPath(t *testing.T) {
	validator := &fakeValidator{result: domain.Validation{Valid: true, FileType: domain.TypeText, FileSize: 128}}
	storage := &fakeStorage{}
	extractor := &fakeExtractor{result: domain.Extraction{Success: true, Content: "text"}}
	client := &fakeClient{result: domain.Analysis{Success: true, Content: "ok", TokensUsed: 12}}
	repo := &fakeRepo{}

	uc := newPipeline(validator, storage, extractor, client, repo, &fakePrompts{})
	got, err := uc.AnalyzeUpload(context.Background(), validUpload())
	if err != nil {
		t.Fatalf("AnalyzeUpload: %v", err)
	}
	if got.Status != "completed" {
		t.Errorf("status = %s", got.Status)
	}
	if got.Report.Analysis.Content != "ok" || got.Report.Analysis.TokensUsed != 12 {
		t.Errorf("report analysis = %+v", got.Report.Analysis)
	}
	if len(repo.files) != 1 || len(repo.analyses) != 1 {
		t.Errorf("persisted files = %d, analyses = %d", len(repo.files), len(repo.analyses))
	}
	if repo.analyses[0].FileID != got.FileID {
		t.Errorf("analysis references %s, want %s", repo.analyses[0].FileID, got.FileID)
	}
	if len(storage.cleaned) != 1 {
		t.Errorf("staged file not cleaned up: %v", storage.cleaned)
	}
}

func TestAnalyzeUploadRejectsInvalidUpload(t *testing.T) {
	validator := &fakeValidator{result: domain.Validation{Valid: false, ErrorMessage: "File is empty"}}
	storage := &fakeStorage{}
	extractor := &fakeExtractor{}
	client := &fakeClient{}
	repo := &fakeRepo{}

	uc := newPipeline(validator, storage, extractor, client, repo, &fakePrompts{})
	_, err := uc.AnalyzeUpload(context.Background(), validUpload())
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(storage.staged) != 0 {
		t.Error("invalid upload must not be staged")
	}
	if client.calls != 0 {
		t.Error("invalid upload must not reach the API")
	}
}

func TestAnalyzeUploadExtractionFailureSkipsAPI(t *testing.T) {
	validator := &fakeValidator{result: domain.Validation{Valid: true, FileType: domain.TypePDF, FileSize: 64}}
	storage := &fakeStorage{}
	extractor := &fakeExtractor{result: domain.Extraction{Success: false, ErrorMessage: "no extractable text"}}
	client := &fakeClient{}
	repo := &fakeRepo{}

	uc := newPipeline(validator, storage, extractor, client, repo, &fakePrompts{})
	_, err := uc.AnalyzeUpload(context.Background(), validUpload())
	if !domain.IsKind(err, domain.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
	if client.calls != 0 {
		t.Error("extraction failure must not reach the API")
	}
	if len(repo.files) != 0 || len(repo.analyses) != 0 {
		t.Error("extraction failure must not persist records")
	}
	if len(storage.cleaned) != 1 {
		t.Error("staged file must be cleaned up on extraction failure")
	}
}

func TestAnalyzeUploadAnalysisFailureNotPersisted(t *testing.T) {
	validator := &fakeValidator{result: domain.Validation{Valid: true, FileType: domain.TypeText, FileSize: 64}}
	storage := &fakeStorage{}
	extractor := &fakeExtractor{result: domain.Extraction{Success: true, Content: "text"}}
	client := &fakeClient{result: domain.Analysis{
		Success:      false,
		ErrorMessage: "Rate limit exceeded, max retries reached",
		FailureKind:  domain.FailureTemporary,
	}}
	repo := &fakeRepo{}

	uc := newPipeline(validator, storage, extractor, client, repo, &fakePrompts{})
	_, err := uc.AnalyzeUpload(context.Background(), validUpload())
	if !domain.IsKind(err, domain.ErrAnalysis) {
		t.Fatalf("expected ErrAnalysis, got %v", err)
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("temporary failure class must survive the wrap, got %v", err)
	}
	if len(repo.files) != 0 || len(repo.analyses) != 0 {
		t.Error("failed analysis must not persist records")
	}
	if len(storage.cleaned) != 1 {
		t.Error("staged file must be cleaned up on analysis failure")
	}
}

func TestAnalyzeUploadReportsExtractionTiming(t *testing.T) {
	validator := &fakeValidator{result: domain.Validation{Valid: true, FileType: domain.TypePDF, FileSize: 64}}
	extractor := &fakeExtractor{result: domain.Extraction{Success: true, Content: "text"}}
	client := &fakeClient{result: domain.Analysis{Success: true, Content: "ok"}}

	uc := newPipeline(validator, &fakeStorage{}, extractor, client, &fakeRepo{}, &fakePrompts{})
	var fired int
	var gotType string
	uc.SetOnExtraction(func(fileType string, duration time.Duration) {
		fired++
		gotType = fileType
		if duration < 0 {
			t.Errorf("duration = %v", duration)
		}
	})

	if _, err := uc.AnalyzeUpload(context.Background(), validUpload()); err != nil {
		t.Fatalf("AnalyzeUpload: %v", err)
	}
	if fired != 1 {
		t.Fatalf("observer fired %d times, want 1", fired)
	}
	if gotType != string(domain.TypePDF) {
		t.Errorf("file type = %q", gotType)
	}

	// The observer also fires when extraction fails.
	extractor.result = domain.Extraction{Success: false, ErrorMessage: "no extractable text"}
	if _, err := uc.AnalyzeUpload(context.Background(), validUpload()); err == nil {
		t.Fatal("expected extraction error")
	}
	if fired != 2 {
		t.Fatalf("observer fired %d times, want 2", fired)
	}
}

func TestAnalyzeUploadUsesStoredPromptOverride(t *testing.T) {
	validator := &fakeValidator{result: domain.Validation{Valid: true, FileType: domain.TypeText, FileSize: 64}}
	extractor := &fakeExtractor{result: domain.Extraction{Success: true, Content: "text"}}
	client := &fakeClient{result: domain.Analysis{Success: true, Content: "ok"}}

	uc := newPipeline(validator, &fakeStorage{}, extractor, client, &fakeRepo{}, &fakePrompts{stored: "stored override"})
	if _, err := uc.AnalyzeUpload(context.Background(), validUpload()); err != nil {
		t.Fatalf("AnalyzeUpload: %v", err)
	}
	if client.lastPrompt != "stored override" {
		t.Errorf("prompt = %q", client.lastPrompt)
	}

	req := validUpload()
	req.CustomPrompt = "request prompt"
	if _, err := uc.AnalyzeUpload(context.Background(), req); err != nil {
		t.Fatalf("AnalyzeUpload: %v", err)
	}
	if client.lastPrompt != "request prompt" {
		t.Errorf("request prompt must win, got %q", client.lastPrompt)
	}
}
