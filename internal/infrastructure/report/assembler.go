package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/mkravets/effidash/internal/core/domain"
)

const (
	FormatHTML    = "html"
	FormatJSON    = "json"
	FormatSummary = "summary"

	summaryMaxLength = 200
)

// Assembler merges an analysis outcome with file metadata into a report and
// renders it for export.
type Assembler struct {
	htmlTemplate *template.Template
}

func NewAssembler() *Assembler {
	return &Assembler{
		htmlTemplate: template.Must(template.New("report").Parse(htmlReport)),
	}
}

// Build wraps the analysis outcome into a persisted report shape. A fresh id
// is generated when none is supplied.
func (a *Assembler) Build(analysis domain.Analysis, file domain.FileInfo, promptUsed, analysisID string) *domain.Report {
	if analysisID == "" {
		analysisID = uuid.NewString()
	}
	now := time.Now()

	status := domain.StatusFailed
	content := ""
	if analysis.Success {
		status = domain.StatusCompleted
		content = analysis.Content
	}

	return &domain.Report{
		ID: analysisID,
		FileInfo: domain.FileInfo{
			Filename:   file.Filename,
			FileType:   file.FileType,
			FileSize:   file.FileSize,
			UploadTime: file.UploadTime,
		},
		Analysis: domain.ReportAnalysis{
			Content:        content,
			Success:        analysis.Success,
			ErrorMessage:   analysis.ErrorMessage,
			ProcessingTime: analysis.ProcessingTime,
			ModelUsed:      analysis.ModelUsed,
			TokensUsed:     analysis.TokensUsed,
			PromptUsed:     promptUsed,
			CreatedAt:      now,
		},
		Metadata:  analysis.Metadata,
		CreatedAt: now,
		Status:    status,
	}
}

// Export renders the report in one of the supported formats. An unrecognized
// format is a caller bug and returns an error.
func (a *Assembler) Export(report *domain.Report, format string) ([]byte, error) {
	switch format {
	case FormatHTML:
		return a.exportHTML(report)
	case FormatJSON:
		return json.MarshalIndent(report, "", "  ")
	case FormatSummary:
		return json.MarshalIndent(a.summarize(report), "", "  ")
	default:
		return nil, fmt.Errorf("unsupported export format: %q", format)
	}
}

type summaryView struct {
	ID             string          `json:"id"`
	Filename       string          `json:"filename"`
	FileType       domain.FileType `json:"file_type"`
	Status         string          `json:"status"`
	Success        bool            `json:"success"`
	Summary        string          `json:"summary"`
	ProcessingTime float64         `json:"processing_time"`
	CreatedAt      time.Time       `json:"created_at"`
	TokensUsed     int             `json:"tokens_used"`
}

func (a *Assembler) summarize(report *domain.Report) summaryView {
	summary := "无分析内容"
	if report.Analysis.Content != "" {
		summary = ExtractSummary(report.Analysis.Content, summaryMaxLength)
	}
	return summaryView{
		ID:             report.ID,
		Filename:       report.FileInfo.Filename,
		FileType:       report.FileInfo.FileType,
		Status:         string(report.Status),
		Success:        report.Analysis.Success,
		Summary:        summary,
		ProcessingTime: report.Analysis.ProcessingTime,
		CreatedAt:      report.CreatedAt,
		TokensUsed:     report.Analysis.TokensUsed,
	}
}

// ExtractSummary pulls a synopsis out of analysis text: the first line longer
// than 20 characters, truncated at a whitespace boundary when one falls past
// 70% of the cap, with an ellipsis appended.
func ExtractSummary(content string, maxLength int) string {
	if strings.TrimSpace(content) == "" {
		return "无内容"
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if utf8.RuneCountInString(line) > 20 {
			return truncateAtBoundary(line, maxLength)
		}
	}
	return truncateAtBoundary(strings.TrimSpace(content), maxLength)
}

// truncateAtBoundary counts in runes, not bytes; analysis text is mostly
// Chinese and a byte slice would split a codepoint.
func truncateAtBoundary(text string, maxLength int) string {
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	truncated := runes[:maxLength]
	lastSpace := -1
	for i, r := range truncated {
		if r == ' ' {
			lastSpace = i
		}
	}
	if float64(lastSpace) > float64(maxLength)*0.7 {
		return string(truncated[:lastSpace]) + "..."
	}
	return string(truncated) + "..."
}

type htmlView struct {
	Filename       string
	FileType       domain.FileType
	SizeLabel      string
	UploadTime     string
	Success        bool
	StatusText     string
	Content        string
	ErrorMessage   string
	ProcessingTime string
	ModelUsed      string
	TokensUsed     int
	PromptUsed     string
	CreatedAt      string
}

func (a *Assembler) exportHTML(report *domain.Report) ([]byte, error) {
	statusText := "分析失败"
	if report.Analysis.Success {
		statusText = "分析成功"
	}
	view := htmlView{
		Filename:       report.FileInfo.Filename,
		FileType:       report.FileInfo.FileType,
		SizeLabel:      formatSize(report.FileInfo.FileSize),
		UploadTime:     report.FileInfo.UploadTime.Format("2006-01-02 15:04:05"),
		Success:        report.Analysis.Success,
		StatusText:     statusText,
		Content:        report.Analysis.Content,
		ErrorMessage:   report.Analysis.ErrorMessage,
		ProcessingTime: fmt.Sprintf("%.2f秒", report.Analysis.ProcessingTime),
		ModelUsed:      report.Analysis.ModelUsed,
		TokensUsed:     report.Analysis.TokensUsed,
		PromptUsed:     report.Analysis.PromptUsed,
		CreatedAt:      report.CreatedAt.Format("2006-01-02 15:04:05"),
	}

	var buf bytes.Buffer
	if err := a.htmlTemplate.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("render html report: %w", err)
	}
	return buf.Bytes(), nil
}

func formatSize(size int64) string {
	switch {
	case size > 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(size)/(1024*1024))
	case size > 1024:
		return fmt.Sprintf("%.1f KB", float64(size)/1024)
	default:
		return fmt.Sprintf("%d bytes", size)
	}
}
