package extractor

import (
	"context"
	"fmt"
	"os"

	"github.com/mkravets/effidash/internal/core/domain"
)

type extractFunc func(ctx context.Context, path string) domain.Extraction

// Registry dispatches extraction on the validated file type. Each supported
// type maps to one extractor; unknown types fail without touching the file.
type Registry struct {
	byType map[domain.FileType]extractFunc
}

func NewRegistry() *Registry {
	r := &Registry{byType: make(map[domain.FileType]extractFunc)}
	r.byType[domain.TypePDF] = extractPDF
	r.byType[domain.TypeDOCX] = extractDOCX
	r.byType[domain.TypeDOC] = extractDOCX
	r.byType[domain.TypeXLSX] = extractXLSX
	r.byType[domain.TypeXLS] = extractXLSX
	r.byType[domain.TypeMarkdown] = extractText
	r.byType[domain.TypeText] = extractText
	return r
}

func (r *Registry) Extract(ctx context.Context, path string, fileType domain.FileType) domain.Extraction {
	if _, err := os.Stat(path); err != nil {
		return domain.Extraction{
			Success:      false,
			ErrorMessage: fmt.Sprintf("File not found: %s", path),
		}
	}
	fn, ok := r.byType[fileType]
	if !ok {
		return domain.Extraction{
			Success:      false,
			ErrorMessage: fmt.Sprintf("Unsupported file type: %s", fileType),
		}
	}
	return fn(ctx, path)
}

func (r *Registry) SupportedFormats() []domain.FileType {
	out := make([]domain.FileType, 0, len(r.byType))
	for _, t := range []domain.FileType{
		domain.TypePDF, domain.TypeDOCX, domain.TypeDOC, domain.TypeXLSX,
		domain.TypeXLS, domain.TypeMarkdown, domain.TypeText,
	} {
		if _, ok := r.byType[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

func failure(msg string, metadata map[string]any) domain.Extraction {
	return domain.Extraction{Success: false, ErrorMessage: msg, Metadata: metadata}
}
