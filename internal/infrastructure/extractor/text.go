package extractor

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/mkravets/effidash/internal/core/domain"
)

// fallbackEncodings is tried in order when the raw bytes are not valid UTF-8.
var fallbackEncodings = []struct {
	name string
	enc  *charmap.Charmap
}{
	{"windows-1252", charmap.Windows1252},
	{"latin-1", charmap.ISO8859_1},
}

// extractText reads markdown and plain text as-is, decoding UTF-8 first and
// single-byte fallbacks after.
func extractText(_ context.Context, path string) domain.Extraction {
	raw, err := os.ReadFile(path)
	if err != nil {
		return failure(fmt.Sprintf("Failed to read file: %v", err), nil)
	}

	content, encodingName, ok := decodeText(raw)
	if !ok {
		return failure("Could not decode file with any supported encoding", nil)
	}

	metadata := map[string]any{
		"encoding": encodingName,
		"lines":    strings.Count(content, "\n") + 1,
	}
	if strings.TrimSpace(content) == "" {
		return failure("File contains no text", metadata)
	}
	return domain.Extraction{Success: true, Content: content, Metadata: metadata}
}

func decodeText(raw []byte) (string, string, bool) {
	if utf8.Valid(raw) {
		return string(raw), "utf-8", true
	}
	for _, fb := range fallbackEncodings {
		decoder := fb.enc.NewDecoder()
		decoded, err := decodeAll(decoder, raw)
		if err != nil {
			continue
		}
		return decoded, fb.name, true
	}
	return "", "", false
}

func decodeAll(decoder *encoding.Decoder, raw []byte) (string, error) {
	out, err := decoder.Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
