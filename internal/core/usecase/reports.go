package usecase

import (
	"context"

	"github.com/mkravets/effidash/internal/core/domain"
	"github.com/mkravets/effidash/internal/core/ports"
)

// ReportsUseCase serves retrieval, listing, deletion and export over the
// persisted analysis records.
type ReportsUseCase struct {
	repo      ports.AnalysisRepository
	assembler ports.ReportAssembler
}

func NewReportsUseCase(repo ports.AnalysisRepository, assembler ports.ReportAssembler) *ReportsUseCase {
	return &ReportsUseCase{repo: repo, assembler: assembler}
}

// Get rebuilds the report from its persisted records. Only completed
// analyses are stored, so the result is always a completed report.
func (uc *ReportsUseCase) Get(ctx context.Context, analysisID string) (*domain.Report, error) {
	record, file, err := uc.repo.GetAnalysis(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	return uc.buildFromRecords(record, file), nil
}

func (uc *ReportsUseCase) History(ctx context.Context, page, pageSize int) ([]domain.HistoryEntry, int, error) {
	return uc.repo.ListHistory(ctx, page, pageSize)
}

// Delete removes the analysis's file record; all analyses referencing it
// cascade away with it.
func (uc *ReportsUseCase) Delete(ctx context.Context, analysisID string) error {
	record, _, err := uc.repo.GetAnalysis(ctx, analysisID)
	if err != nil {
		return err
	}
	return uc.repo.DeleteFile(ctx, record.FileID)
}

func (uc *ReportsUseCase) Export(ctx context.Context, analysisID, format string) ([]byte, error) {
	record, file, err := uc.repo.GetAnalysis(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	data, err := uc.assembler.Export(uc.buildFromRecords(record, file), format)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "export report", err)
	}
	return data, nil
}

// DeleteFile removes a file record directly by its id, cascading to every
// analysis that references it.
func (uc *ReportsUseCase) DeleteFile(ctx context.Context, fileID string) error {
	return uc.repo.DeleteFile(ctx, fileID)
}

func (uc *ReportsUseCase) Stats(ctx context.Context) (*domain.UsageStats, error) {
	return uc.repo.Stats(ctx)
}

func (uc *ReportsUseCase) buildFromRecords(record *domain.AnalysisRecord, file *domain.FileRecord) *domain.Report {
	report := uc.assembler.Build(domain.Analysis{
		Success:        true,
		Content:        record.Content,
		ProcessingTime: record.ProcessingTime,
		ModelUsed:      record.ModelUsed,
		TokensUsed:     record.TokensUsed,
	}, domain.FileInfo{
		Filename:   file.Filename,
		FileType:   file.FileType,
		FileSize:   file.FileSize,
		UploadTime: file.UploadTime,
	}, record.PromptUsed, record.ID)
	report.CreatedAt = record.CreatedAt
	report.Analysis.CreatedAt = record.CreatedAt
	return report
}
