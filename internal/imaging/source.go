package imaging

import "strings"

// ImageSource is the loose shape an image record can take after passing
// through different providers and store schema revisions. Every field is
// optional; aliases accumulated over time are kept so old records still
// resolve. New code writes only ImageURL, Base64Data and MimeType.
type ImageSource struct {
	ImageURL   string `json:"imageUrl,omitempty"`
	Base64Data string `json:"base64Data,omitempty"`
	MimeType   string `json:"mimeType,omitempty"`

	// Legacy and provider-specific aliases.
	Base64       string `json:"base64,omitempty"`
	B64JSON      string `json:"b64_json,omitempty"`
	B64JSONCamel string `json:"b64Json,omitempty"`
	ImageBytes   string `json:"imageBytes,omitempty"`
	Mime         string `json:"mime,omitempty"`
	ContentType  string `json:"contentType,omitempty"`
}

// CanonicalPayload is the only image form the refinement call accepts.
// Base64Data never contains whitespace and MimeType is never empty.
type CanonicalPayload struct {
	MimeType   string `json:"mimeType"`
	Base64Data string `json:"base64Data"`
}

// base64Candidate returns the first non-empty base64-bearing field, in the
// fixed priority order the store accumulated them.
func (s ImageSource) base64Candidate() string {
	for _, v := range []string{s.Base64Data, s.Base64, s.B64JSON, s.B64JSONCamel, s.ImageBytes} {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// mimeCandidate returns the first non-empty mime-bearing field, lower-cased.
func (s ImageSource) mimeCandidate() string {
	for _, v := range []string{s.MimeType, s.Mime, s.ContentType} {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return strings.ToLower(trimmed)
		}
	}
	return ""
}

// Normalize extracts a canonical payload from an arbitrary source record, or
// nil when no inline image is present. A base64 field holding a full data URL
// is unwrapped before the field is trusted at face value: an old persistence
// bug stored complete data URLs inside base64Data, and for those records the
// embedded mime type outranks whatever sits in the sibling mime field.
func Normalize(source ImageSource) *CanonicalPayload {
	b64 := source.base64Candidate()
	mime := source.mimeCandidate()

	if b64 != "" {
		if du, ok := ParseDataURL(b64); ok {
			return &CanonicalPayload{
				MimeType:   firstNonEmpty(du.MimeType, mime, DefaultMimeType),
				Base64Data: StripWhitespace(du.Base64Data),
			}
		}
		return &CanonicalPayload{
			MimeType:   firstNonEmpty(mime, DefaultMimeType),
			Base64Data: StripWhitespace(b64),
		}
	}

	if du, ok := ParseDataURL(source.ImageURL); ok {
		return &CanonicalPayload{
			MimeType:   firstNonEmpty(du.MimeType, mime, DefaultMimeType),
			Base64Data: StripWhitespace(du.Base64Data),
		}
	}

	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
