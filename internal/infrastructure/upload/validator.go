package upload

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/mkravets/effidash/internal/core/domain"
)

// mimeTypes maps MIME types reported for the declared filename to pipeline
// file types. Extension matching is the fallback when the MIME lookup fails.
var mimeTypes = map[string]domain.FileType{
	"application/pdf": domain.TypePDF,
	"text/markdown":   domain.TypeMarkdown,
	"text/plain":      domain.TypeText,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":   domain.TypeXLSX,
	"application/vnd.ms-excel":                                            domain.TypeXLS,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": domain.TypeDOCX,
	"application/msword": domain.TypeDOC,
}

var extensions = map[string]domain.FileType{
	".pdf":      domain.TypePDF,
	".md":       domain.TypeMarkdown,
	".markdown": domain.TypeMarkdown,
	".txt":      domain.TypeText,
	".xlsx":     domain.TypeXLSX,
	".xls":      domain.TypeXLS,
	".docx":     domain.TypeDOCX,
	".doc":      domain.TypeDOC,
}

// Validator checks uploads against the configured size limit and supported
// format set. Validation is pure inspection; the upload stream is never read.
type Validator struct {
	maxBytes  int64
	supported map[domain.FileType]bool
}

func NewValidator(maxBytes int64, supportedTypes []string) *Validator {
	supported := make(map[domain.FileType]bool, len(supportedTypes))
	for _, t := range supportedTypes {
		supported[domain.FileType(strings.ToLower(strings.TrimSpace(t)))] = true
	}
	return &Validator{maxBytes: maxBytes, supported: supported}
}

func (v *Validator) Validate(filename string, size int64) domain.Validation {
	if strings.TrimSpace(filename) == "" {
		return domain.Validation{Valid: false, ErrorMessage: "No filename provided"}
	}
	if size > v.maxBytes {
		return domain.Validation{
			Valid:    false,
			FileSize: size,
			ErrorMessage: fmt.Sprintf("File size (%.1fMB) exceeds maximum allowed size (%.1fMB)",
				float64(size)/(1024*1024), float64(v.maxBytes)/(1024*1024)),
		}
	}
	if size == 0 {
		return domain.Validation{Valid: false, FileSize: 0, ErrorMessage: "File is empty"}
	}

	fileType, ok := DetermineFileType(filename)
	if !ok {
		return domain.Validation{Valid: false, FileSize: size, ErrorMessage: "Could not determine file type"}
	}
	if !v.supported[fileType] {
		return domain.Validation{
			Valid:        false,
			FileType:     fileType,
			FileSize:     size,
			ErrorMessage: fmt.Sprintf("Unsupported file format '%s'. Supported formats: %s", fileType, v.supportedList()),
		}
	}

	return domain.Validation{Valid: true, FileType: fileType, FileSize: size}
}

// DetermineFileType resolves a declared filename to a pipeline file type,
// trying MIME lookup first and the extension table as fallback.
func DetermineFileType(filename string) (domain.FileType, bool) {
	lower := strings.ToLower(filename)
	ext := filepath.Ext(lower)

	if mimeType, _, err := mime.ParseMediaType(mime.TypeByExtension(ext)); err == nil {
		if t, ok := mimeTypes[mimeType]; ok {
			return t, true
		}
	}
	if t, ok := extensions[ext]; ok {
		return t, true
	}
	return "", false
}

func (v *Validator) supportedList() string {
	names := make([]string, 0, len(v.supported))
	for _, t := range []domain.FileType{
		domain.TypePDF, domain.TypeMarkdown, domain.TypeXLSX, domain.TypeXLS,
		domain.TypeDOCX, domain.TypeDOC, domain.TypeText,
	} {
		if v.supported[t] {
			names = append(names, string(t))
		}
	}
	return strings.Join(names, ", ")
}
