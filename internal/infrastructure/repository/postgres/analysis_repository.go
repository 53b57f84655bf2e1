package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mkravets/effidash/internal/core/domain"
)

// AnalysisRepository persists upload and analysis metadata. File bytes never
// land here; only the records that make history and retrieval work.
type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

func (r *AnalysisRepository) CreateFile(ctx context.Context, file *domain.FileRecord) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO files (id, filename, file_type, file_size, upload_time, status)
VALUES ($1,$2,$3,$4,$5,$6)
`, file.ID, file.Filename, string(file.FileType), file.FileSize, file.UploadTime, file.Status)
	if err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	return nil
}

func (r *AnalysisRepository) CreateAnalysis(ctx context.Context, record *domain.AnalysisRecord) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO analyses (id, file_id, content, prompt_used, model_used, tokens_used, processing_time, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`, record.ID, record.FileID, record.Content, record.PromptUsed, record.ModelUsed,
		record.TokensUsed, record.ProcessingTime, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

func (r *AnalysisRepository) GetAnalysis(ctx context.Context, id string) (*domain.AnalysisRecord, *domain.FileRecord, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT a.id, a.file_id, a.content, a.prompt_used, a.model_used, a.tokens_used, a.processing_time, a.created_at,
	f.id, f.filename, f.file_type, f.file_size, f.upload_time, f.status
FROM analyses a
JOIN files f ON f.id = a.file_id
WHERE a.id = $1
`, id)

	var record domain.AnalysisRecord
	var file domain.FileRecord
	var modelUsed sql.NullString
	var fileType string

	err := row.Scan(
		&record.ID, &record.FileID, &record.Content, &record.PromptUsed, &modelUsed,
		&record.TokensUsed, &record.ProcessingTime, &record.CreatedAt,
		&file.ID, &file.Filename, &fileType, &file.FileSize, &file.UploadTime, &file.Status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, domain.WrapError(domain.ErrNotFound, "get analysis", fmt.Errorf("analysis %s", id))
		}
		return nil, nil, fmt.Errorf("scan analysis: %w", err)
	}

	record.ModelUsed = modelUsed.String
	file.FileType = domain.FileType(fileType)
	return &record, &file, nil
}

func (r *AnalysisRepository) ListHistory(ctx context.Context, page, pageSize int) ([]domain.HistoryEntry, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM analyses`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count analyses: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT a.id, a.file_id, f.filename, f.file_type, a.tokens_used, a.created_at
FROM analyses a
JOIN files f ON f.id = a.file_id
ORDER BY a.created_at DESC
LIMIT $1 OFFSET $2
`, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.HistoryEntry, 0, pageSize)
	for rows.Next() {
		var entry domain.HistoryEntry
		var fileType string
		if err := rows.Scan(&entry.AnalysisID, &entry.FileID, &entry.Filename, &fileType, &entry.TokensUsed, &entry.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan history row: %w", err)
		}
		entry.FileType = domain.FileType(fileType)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate history rows: %w", err)
	}
	return entries, total, nil
}

// DeleteFile removes the file record; the analyses cascade via the foreign
// key.
func (r *AnalysisRepository) DeleteFile(ctx context.Context, fileID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, fileID)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete file rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "delete file", fmt.Errorf("file %s", fileID))
	}
	return nil
}

// Stats aggregates the persisted history. Only completed analyses are ever
// persisted, so the success rate is full whenever anything exists.
func (r *AnalysisRepository) Stats(ctx context.Context) (*domain.UsageStats, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT
	(SELECT COUNT(*) FROM files),
	COUNT(*),
	COALESCE(SUM(tokens_used), 0),
	COALESCE(AVG(processing_time), 0)
FROM analyses
`)

	stats := domain.UsageStats{}
	if err := row.Scan(&stats.TotalFiles, &stats.TotalAnalyses, &stats.TotalTokens, &stats.AverageProcessingTime); err != nil {
		return nil, fmt.Errorf("scan usage stats: %w", err)
	}
	if stats.TotalAnalyses > 0 {
		stats.SuccessRate = 100.0
	}
	return &stats, nil
}
