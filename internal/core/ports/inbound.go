package ports

import (
	"context"
	"io"

	"github.com/mkravets/effidash/internal/core/domain"
)

// UploadRequest is one inbound upload-and-analyze invocation.
type UploadRequest struct {
	Filename     string
	Size         int64
	Body         io.Reader
	CustomPrompt string
}

// UploadResult is the response payload of a completed pipeline invocation.
type UploadResult struct {
	FileID     string         `json:"file_id"`
	AnalysisID string         `json:"analysis_id"`
	Status     string         `json:"status"`
	Report     *domain.Report `json:"report"`
}

// DocumentAnalyzer is the inbound contract for the upload-and-analyze
// pipeline.
type DocumentAnalyzer interface {
	AnalyzeUpload(ctx context.Context, req UploadRequest) (*UploadResult, error)
}

// DashboardService is the inbound contract for the delivery-metrics
// dashboard reads and settings writes.
type DashboardService interface {
	Metrics(ctx context.Context, department, month string) (*domain.DeliveryMetrics, error)
	Rankings(ctx context.Context, department, month, rankBy, sortOrder string) ([]domain.RankingEntry, error)
	ProjectDetails(ctx context.Context, department, month string) ([]domain.ProjectDetail, error)
	Departments(ctx context.Context) ([]string, error)
	DateRange(ctx context.Context) ([]string, error)
	GetSettings(ctx context.Context) (*domain.Settings, error)
	SaveSettings(ctx context.Context, settings *domain.Settings) error
}
