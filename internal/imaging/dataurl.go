package imaging

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
)

// DefaultMimeType is assumed whenever a payload carries no usable mime type.
const DefaultMimeType = "image/png"

// dataURLPattern matches data:<mime>(;param)*;base64,<payload>. The mime type
// is optional; some legacy records persisted bare "data:;base64," prefixes.
var dataURLPattern = regexp.MustCompile(`(?i)^data:([^;,]+)?((?:;[^;,]+)*?);base64,(.*)$`)

// DataURL is the decomposed form of an inline data: URL.
type DataURL struct {
	MimeType   string
	Base64Data string
}

// ParseDataURL splits a data URL into its mime type and base64 payload. The
// mime type is trimmed and lower-cased; it is empty when the URL omits it, in
// which case the caller supplies a fallback. Non-matching strings return false.
func ParseDataURL(s string) (DataURL, bool) {
	m := dataURLPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return DataURL{}, false
	}
	return DataURL{
		MimeType:   strings.ToLower(strings.TrimSpace(m[1])),
		Base64Data: m[3],
	}, true
}

// DecodeBase64 decodes a base64 string into raw bytes. Embedded whitespace is
// stripped first, so payloads persisted with line breaks decode identically to
// their compact form.
func DecodeBase64(s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(StripWhitespace(s))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode base64: %w", err)
	}
	return data, nil
}

// StripWhitespace removes every whitespace character from s.
func StripWhitespace(s string) string {
	if !strings.ContainsAny(s, " \t\r\n") {
		return s
	}
	return strings.Join(strings.Fields(s), "")
}
