package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mkravets/effidash/internal/core/domain"
)

const (
	maxSheetRows = 1000
	maxSheetCols = 50
)

// extractXLSX renders each non-empty sheet as pipe-joined rows under a
// sheet-name marker, capped per sheet to keep pathological workbooks bounded.
func extractXLSX(_ context.Context, path string) domain.Extraction {
	workbook, err := excelize.OpenFile(path)
	if err != nil {
		return failure(fmt.Sprintf("Failed to open workbook: %v", err), nil)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	metadata := map[string]any{"sheets": len(sheets)}

	var parts []string
	totalRows := 0
	for _, sheet := range sheets {
		rows, err := workbook.GetRows(sheet)
		if err != nil {
			slog.Warn("sheet_read_failed", "path", path, "sheet", sheet, "error", err)
			continue
		}
		if len(rows) == 0 {
			continue
		}

		var lines []string
		for i, cells := range rows {
			if i >= maxSheetRows {
				break
			}
			if len(cells) > maxSheetCols {
				cells = cells[:maxSheetCols]
			}
			cells = trimTrailingEmpty(cells)
			if len(cells) == 0 {
				continue
			}
			lines = append(lines, strings.Join(cells, " | "))
		}
		if len(lines) == 0 {
			continue
		}
		totalRows += len(lines)
		parts = append(parts, fmt.Sprintf("--- Sheet: %s ---\n%s", sheet, strings.Join(lines, "\n")))
	}
	metadata["rows"] = totalRows

	if len(parts) == 0 {
		return failure("Workbook contains no extractable data", metadata)
	}
	return domain.Extraction{Success: true, Content: strings.Join(parts, "\n\n"), Metadata: metadata}
}

func trimTrailingEmpty(cells []string) []string {
	end := len(cells)
	for end > 0 && strings.TrimSpace(cells[end-1]) == "" {
		end--
	}
	return cells[:end]
}
