package domain

import "time"

type FileType string

const (
	TypePDF      FileType = "pdf"
	TypeDOCX     FileType = "docx"
	TypeDOC      FileType = "doc"
	TypeXLSX     FileType = "xlsx"
	TypeXLS      FileType = "xls"
	TypeMarkdown FileType = "md"
	TypeText     FileType = "txt"
)

type ReportStatus string

const (
	StatusCompleted ReportStatus = "completed"
	StatusFailed    ReportStatus = "failed"
)

// Validation is the outcome of inspecting an upload before anything runs.
type Validation struct {
	Valid        bool     `json:"valid"`
	FileType     FileType `json:"file_type,omitempty"`
	FileSize     int64    `json:"file_size"`
	ErrorMessage string   `json:"error_message,omitempty"`
}

// Extraction is the outcome of pulling text out of a staged file. Metadata
// carries structural counts (pages, sheets, paragraphs) even on failure.
type Extraction struct {
	Success      bool           `json:"success"`
	Content      string         `json:"content"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// FailureKind classifies a failed Analysis so callers can map it onto the
// error taxonomy without parsing messages.
type FailureKind string

const (
	FailureNone      FailureKind = ""
	FailureTemporary FailureKind = "temporary"
	FailureAuth      FailureKind = "auth"
	FailureMalformed FailureKind = "malformed"
)

// Analysis is the outcome of one completion-API call. ProcessingTime is
// wall-clock from the start of the call, including rate-limit waits and
// retries, success or failure.
type Analysis struct {
	Success        bool           `json:"success"`
	Content        string         `json:"content"`
	ErrorMessage   string         `json:"error_message,omitempty"`
	FailureKind    FailureKind    `json:"-"`
	ProcessingTime float64        `json:"processing_time"`
	ModelUsed      string         `json:"model_used,omitempty"`
	TokensUsed     int            `json:"tokens_used"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// ConnectionTest reports reachability and auth validity of the completion
// API, probed with a minimal fixed prompt.
type ConnectionTest struct {
	Success             bool    `json:"success"`
	ErrorMessage        string  `json:"error_message,omitempty"`
	ResponseTime        float64 `json:"response_time"`
	APIAccessible       bool    `json:"api_accessible"`
	AuthenticationValid bool    `json:"authentication_valid"`
}

// FileInfo describes the analyzed upload inside a report.
type FileInfo struct {
	Filename   string    `json:"filename"`
	FileType   FileType  `json:"file_type"`
	FileSize   int64     `json:"file_size"`
	UploadTime time.Time `json:"upload_time"`
}

// ReportAnalysis is the analysis section of a report, the Analysis outcome
// plus the prompt that produced it.
type ReportAnalysis struct {
	Content        string    `json:"content"`
	Success        bool      `json:"success"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	ProcessingTime float64   `json:"processing_time"`
	ModelUsed      string    `json:"model_used,omitempty"`
	TokensUsed     int       `json:"tokens_used"`
	PromptUsed     string    `json:"prompt_used"`
	CreatedAt      time.Time `json:"created_at"`
}

// Report is the persisted result of one pipeline invocation.
type Report struct {
	ID        string         `json:"id"`
	FileInfo  FileInfo       `json:"file_info"`
	Analysis  ReportAnalysis `json:"analysis"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	Status    ReportStatus   `json:"status"`
}

// FileRecord is the persisted metadata of an upload. The uploaded bytes are
// never retained beyond the pipeline invocation.
type FileRecord struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	FileType   FileType  `json:"file_type"`
	FileSize   int64     `json:"file_size"`
	UploadTime time.Time `json:"upload_time"`
	Status     string    `json:"status"`
}

// AnalysisRecord is the persisted analysis row keyed by the generated
// analysis id, referencing exactly one file record.
type AnalysisRecord struct {
	ID             string    `json:"id"`
	FileID         string    `json:"file_id"`
	Content        string    `json:"content"`
	PromptUsed     string    `json:"prompt_used"`
	ModelUsed      string    `json:"model_used,omitempty"`
	TokensUsed     int       `json:"tokens_used"`
	ProcessingTime float64   `json:"processing_time"`
	CreatedAt      time.Time `json:"created_at"`
}

// HistoryEntry is one row of the paginated analysis history listing.
type HistoryEntry struct {
	AnalysisID string    `json:"analysis_id"`
	FileID     string    `json:"file_id"`
	Filename   string    `json:"filename"`
	FileType   FileType  `json:"file_type"`
	TokensUsed int       `json:"tokens_used"`
	CreatedAt  time.Time `json:"created_at"`
}

// UsageStats aggregates the persisted analysis history.
type UsageStats struct {
	TotalFiles            int     `json:"total_files"`
	TotalAnalyses         int     `json:"total_analyses"`
	TotalTokens           int     `json:"total_tokens"`
	AverageProcessingTime float64 `json:"average_processing_time"`
	SuccessRate           float64 `json:"success_rate"`
}
