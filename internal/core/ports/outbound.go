package ports

import (
	"context"
	"io"
	"time"

	"github.com/mkravets/effidash/internal/core/domain"
)

// UploadValidator inspects an upload's declared name and size without
// consuming the stream.
type UploadValidator interface {
	Validate(filename string, size int64) domain.Validation
}

// TempStorage stages validated uploads for the duration of one pipeline
// invocation.
type TempStorage interface {
	Stage(ctx context.Context, filename string, body io.Reader) (id string, path string, err error)
	Cleanup(path string) bool
	SweepOlderThan(maxAge time.Duration) (int, error)
}

// ContentExtractor extracts plain text from a staged file, dispatching on the
// declared file type.
type ContentExtractor interface {
	Extract(ctx context.Context, path string, fileType domain.FileType) domain.Extraction
	SupportedFormats() []domain.FileType
}

// AnalysisClient sends extracted text to the completion API.
type AnalysisClient interface {
	Analyze(ctx context.Context, content, customPrompt string) domain.Analysis
	TestConnection(ctx context.Context) domain.ConnectionTest
}

// ReportAssembler builds and exports structured reports.
type ReportAssembler interface {
	Build(analysis domain.Analysis, file domain.FileInfo, promptUsed, analysisID string) *domain.Report
	Export(report *domain.Report, format string) ([]byte, error)
}

// AnalysisRepository persists file and analysis metadata.
type AnalysisRepository interface {
	CreateFile(ctx context.Context, file *domain.FileRecord) error
	CreateAnalysis(ctx context.Context, record *domain.AnalysisRecord) error
	GetAnalysis(ctx context.Context, id string) (*domain.AnalysisRecord, *domain.FileRecord, error)
	ListHistory(ctx context.Context, page, pageSize int) ([]domain.HistoryEntry, int, error)
	DeleteFile(ctx context.Context, fileID string) error
	Stats(ctx context.Context) (*domain.UsageStats, error)
}

// DashboardRepository serves the delivery-metrics dashboard tables.
type DashboardRepository interface {
	Metrics(ctx context.Context, department, month string) (*domain.DeliveryMetrics, error)
	Rankings(ctx context.Context, department, month string, by domain.RankingType, ascending bool) ([]domain.RankingEntry, error)
	ProjectDetails(ctx context.Context, department, month string) ([]domain.ProjectDetail, error)
	Departments(ctx context.Context) ([]string, error)
	DateRange(ctx context.Context) ([]string, error)
	GetSettings(ctx context.Context) (*domain.Settings, error)
	SaveSettings(ctx context.Context, settings *domain.Settings) error
}

// PromptStore persists the runtime custom-prompt override.
type PromptStore interface {
	CustomPrompt(ctx context.Context) (string, error)
	SetCustomPrompt(ctx context.Context, prompt string) error
	ClearCustomPrompt(ctx context.Context) error
}
