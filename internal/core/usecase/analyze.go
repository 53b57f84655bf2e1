package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mkravets/effidash/internal/core/domain"
	"github.com/mkravets/effidash/internal/core/ports"
)

// AnalyzeDocumentUseCase runs the upload pipeline: validate, stage, extract,
// analyze, assemble, persist. The staged file is removed on every exit path.
type AnalyzeDocumentUseCase struct {
	validator ports.UploadValidator
	storage   ports.TempStorage
	extractor ports.ContentExtractor
	client    ports.AnalysisClient
	assembler ports.ReportAssembler
	repo      ports.AnalysisRepository
	prompts   ports.PromptStore

	onExtraction func(fileType string, duration time.Duration)
}

// SetOnExtraction registers an observer invoked after every extraction
// attempt with the file type and wall-clock duration.
func (uc *AnalyzeDocumentUseCase) SetOnExtraction(fn func(fileType string, duration time.Duration)) {
	uc.onExtraction = fn
}

func NewAnalyzeDocumentUseCase(
	validator ports.UploadValidator,
	storage ports.TempStorage,
	extractor ports.ContentExtractor,
	client ports.AnalysisClient,
	assembler ports.ReportAssembler,
	repo ports.AnalysisRepository,
	prompts ports.PromptStore,
) *AnalyzeDocumentUseCase {
	return &AnalyzeDocumentUseCase{
		validator: validator,
		storage:   storage,
		extractor: extractor,
		client:    client,
		assembler: assembler,
		repo:      repo,
		prompts:   prompts,
	}
}

func (uc *AnalyzeDocumentUseCase) AnalyzeUpload(ctx context.Context, req ports.UploadRequest) (*ports.UploadResult, error) {
	validation := uc.validator.Validate(req.Filename, req.Size)
	if !validation.Valid {
		return nil, domain.WrapError(domain.ErrInvalidInput, "validate upload", fmt.Errorf("%s", validation.ErrorMessage))
	}

	fileID, path, err := uc.storage.Stage(ctx, req.Filename, req.Body)
	if err != nil {
		return nil, fmt.Errorf("stage upload: %w", err)
	}
	defer func() {
		if !uc.storage.Cleanup(path) {
			slog.Warn("staged_file_cleanup_missed", "path", path)
		}
	}()

	extractStart := time.Now()
	extraction := uc.extractor.Extract(ctx, path, validation.FileType)
	if uc.onExtraction != nil {
		uc.onExtraction(string(validation.FileType), time.Since(extractStart))
	}
	if !extraction.Success {
		return nil, domain.WrapError(domain.ErrExtraction, "extract content", fmt.Errorf("%s", extraction.ErrorMessage))
	}

	prompt := req.CustomPrompt
	if prompt == "" && uc.prompts != nil {
		stored, err := uc.prompts.CustomPrompt(ctx)
		if err != nil {
			slog.Warn("custom_prompt_read_failed", "error", err)
		} else {
			prompt = stored
		}
	}

	analysis := uc.client.Analyze(ctx, extraction.Content, prompt)

	// Failed analyses are not persisted; the caller gets the failure class
	// and message, and nothing remains to list or re-export.
	if !analysis.Success {
		cause := fmt.Errorf("%s", analysis.ErrorMessage)
		switch analysis.FailureKind {
		case domain.FailureTemporary:
			cause = fmt.Errorf("%w: %w", domain.ErrTemporary, cause)
		case domain.FailureAuth:
			cause = fmt.Errorf("%w: %w", domain.ErrAuth, cause)
		case domain.FailureMalformed:
			cause = fmt.Errorf("%w: %w", domain.ErrMalformedResponse, cause)
		}
		return nil, domain.WrapError(domain.ErrAnalysis, "analyze content", cause)
	}

	promptUsed := prompt
	if promptUsed == "" {
		promptUsed = "默认分析提示"
	}

	analysisID := uuid.NewString()
	now := time.Now().UTC()
	report := uc.assembler.Build(analysis, domain.FileInfo{
		Filename:   req.Filename,
		FileType:   validation.FileType,
		FileSize:   validation.FileSize,
		UploadTime: now,
	}, promptUsed, analysisID)

	if err := uc.repo.CreateFile(ctx, &domain.FileRecord{
		ID:         fileID,
		Filename:   req.Filename,
		FileType:   validation.FileType,
		FileSize:   validation.FileSize,
		UploadTime: now,
		Status:     string(domain.StatusCompleted),
	}); err != nil {
		return nil, fmt.Errorf("persist file record: %w", err)
	}

	if err := uc.repo.CreateAnalysis(ctx, &domain.AnalysisRecord{
		ID:             analysisID,
		FileID:         fileID,
		Content:        analysis.Content,
		PromptUsed:     report.Analysis.PromptUsed,
		ModelUsed:      analysis.ModelUsed,
		TokensUsed:     analysis.TokensUsed,
		ProcessingTime: analysis.ProcessingTime,
		CreatedAt:      now,
	}); err != nil {
		return nil, fmt.Errorf("persist analysis record: %w", err)
	}

	return &ports.UploadResult{
		FileID:     fileID,
		AnalysisID: analysisID,
		Status:     string(domain.StatusCompleted),
		Report:     report,
	}, nil
}
