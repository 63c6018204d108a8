package bridge

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/FermatTheorem/NoShitProxy/internal/constants"
)

// binaryPlaceholder stands in for payloads that are not valid text.
const binaryPlaceholder = "(binary)"

// previewText renders a bounded, display-safe preview of a body. JSON bodies
// small enough to format are pretty-printed before truncation.
func previewText(data []byte, contentType string) *string {
	if len(data) == 0 {
		return nil
	}
	if !utf8.Valid(data) {
		s := binaryPlaceholder
		return &s
	}

	if isJSONContentType(contentType) && len(data) <= constants.MaxFormatBytes {
		var formatted bytes.Buffer
		if err := json.Indent(&formatted, data, "", "  "); err == nil {
			s := truncateText(formatted.String(), constants.MaxPreviewChars)
			return &s
		}
	}

	s := truncateText(string(data), constants.MaxPreviewChars)
	return &s
}

func isJSONContentType(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "json")
}

// truncateText cuts at the byte bound without splitting a rune.
func truncateText(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := s[:limit]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}

// bodyText renders decoded bytes as searchable text, substituting invalid
// sequences so the WHERE language can still scan partially binary bodies.
func bodyText(data []byte) *string {
	if len(data) == 0 {
		return nil
	}
	s := strings.ToValidUTF8(string(data), "�")
	return &s
}
