package extractor

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/mkravets/effidash/internal/core/domain"
)

// extractDOCX walks the OOXML word/document.xml part. Paragraph text is
// concatenated in document order; each table is rendered as pipe-joined rows
// under a table marker. Legacy binary .doc files are not zip archives and
// fail at open.
func extractDOCX(_ context.Context, path string) domain.Extraction {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return failure(fmt.Sprintf("Failed to open document: %v", err), nil)
	}
	defer archive.Close()

	var doc *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return failure("Document has no word/document.xml part", nil)
	}

	rc, err := doc.Open()
	if err != nil {
		return failure(fmt.Sprintf("Failed to read document body: %v", err), nil)
	}
	defer rc.Close()

	paragraphs, tables, err := walkDocumentXML(rc)
	if err != nil {
		return failure(fmt.Sprintf("Failed to parse document body: %v", err), nil)
	}

	metadata := map[string]any{
		"paragraphs": len(paragraphs),
		"tables":     len(tables),
	}

	var parts []string
	if len(paragraphs) > 0 {
		parts = append(parts, strings.Join(paragraphs, "\n"))
	}
	for _, rows := range tables {
		parts = append(parts, "--- Table ---\n"+strings.Join(rows, "\n"))
	}
	if len(parts) == 0 {
		return failure("Document contains no extractable text", metadata)
	}
	return domain.Extraction{Success: true, Content: strings.Join(parts, "\n\n"), Metadata: metadata}
}

// walkDocumentXML streams the body XML, collecting paragraph text outside
// tables and row text inside them. Nested tables fold into the outermost one.
func walkDocumentXML(r io.Reader) (paragraphs []string, tables [][]string, err error) {
	decoder := xml.NewDecoder(r)

	var (
		tableDepth int
		current    strings.Builder
		cell       strings.Builder
		row        []string
		rows       []string
		inCell     bool
		inText     bool
	)

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
			case "tc":
				if tableDepth > 0 {
					inCell = true
					cell.Reset()
				}
			case "p":
				current.Reset()
			case "t":
				inText = true
			case "tab":
				current.WriteString("\t")
			case "br":
				current.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				text := strings.TrimSpace(current.String())
				if inCell {
					if cell.Len() > 0 && text != "" {
						cell.WriteString(" ")
					}
					cell.WriteString(text)
				} else if tableDepth == 0 && text != "" {
					paragraphs = append(paragraphs, text)
				}
				current.Reset()
			case "tc":
				if tableDepth > 0 && inCell {
					if text := strings.TrimSpace(cell.String()); text != "" {
						row = append(row, text)
					}
					inCell = false
				}
			case "tr":
				if tableDepth > 0 && len(row) > 0 {
					rows = append(rows, strings.Join(row, " | "))
				}
				row = nil
			case "tbl":
				tableDepth--
				if tableDepth == 0 {
					if len(rows) > 0 {
						tables = append(tables, rows)
					}
					rows = nil
				}
			}
		}
	}
	return paragraphs, tables, nil
}
