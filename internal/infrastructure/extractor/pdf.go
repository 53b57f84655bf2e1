package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/mkravets/effidash/internal/core/domain"
)

// extractPDF reads text page by page. Pages that fail to decode are skipped;
// the file only fails as a whole when no page yields non-whitespace text.
func extractPDF(_ context.Context, path string) domain.Extraction {
	f, err := os.Open(path)
	if err != nil {
		return failure(fmt.Sprintf("Failed to open PDF: %v", err), nil)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return failure(fmt.Sprintf("Failed to stat PDF: %v", err), nil)
	}

	reader, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return failure(fmt.Sprintf("Failed to parse PDF: %v", err), nil)
	}

	pageCount := reader.NumPage()
	metadata := map[string]any{"pages": pageCount}

	var sb strings.Builder
	extracted := 0
	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			slog.Warn("pdf_page_extract_failed", "path", path, "page", i, "error", err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "--- Page %d ---\n%s", i, strings.TrimSpace(text))
		extracted++
	}
	metadata["pages_with_text"] = extracted

	if extracted == 0 {
		return failure("No extractable text found, the PDF is likely image-based", metadata)
	}
	return domain.Extraction{Success: true, Content: sb.String(), Metadata: metadata}
}
