package imaging

import "testing"

func TestNormalizeDataURLInImageURL(t *testing.T) {
	got := Normalize(ImageSource{ImageURL: "data:image/png;base64,XYZ"})
	if got == nil {
		t.Fatalf("expected payload, got nil")
	}
	if got.MimeType != "image/png" || got.Base64Data != "XYZ" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestNormalizeLegacyDataURLInBase64Field(t *testing.T) {
	// Records saved by the buggy persistence path put a full data URL where
	// raw base64 belongs; the embedded mime must win over the sibling field.
	got := Normalize(ImageSource{Base64Data: "data:image/jpeg;base64,ABC", MimeType: "image/png"})
	if got == nil {
		t.Fatalf("expected payload, got nil")
	}
	if got.MimeType != "image/jpeg" || got.Base64Data != "ABC" {
		t.Fatalf("embedded mime did not win: %+v", got)
	}
}

func TestNormalizeEmptySource(t *testing.T) {
	if got := Normalize(ImageSource{}); got != nil {
		t.Fatalf("expected nil for empty source, got %+v", got)
	}
}

func TestNormalizeFieldPriority(t *testing.T) {
	got := Normalize(ImageSource{
		Base64Data: "primary",
		Base64:     "alias",
		B64JSON:    "openai",
	})
	if got == nil || got.Base64Data != "primary" {
		t.Fatalf("base64Data should outrank aliases: %+v", got)
	}

	got = Normalize(ImageSource{B64JSONCamel: "camel", ImageBytes: "bytes"})
	if got == nil || got.Base64Data != "camel" {
		t.Fatalf("b64Json should outrank imageBytes: %+v", got)
	}
}

func TestNormalizeMimeAliases(t *testing.T) {
	got := Normalize(ImageSource{ImageBytes: "AAA", ContentType: "IMAGE/WEBP"})
	if got == nil || got.MimeType != "image/webp" {
		t.Fatalf("contentType alias not honored: %+v", got)
	}

	got = Normalize(ImageSource{Base64: "AAA", Mime: "image/jpeg", ContentType: "image/webp"})
	if got == nil || got.MimeType != "image/jpeg" {
		t.Fatalf("mime should outrank contentType: %+v", got)
	}
}

func TestNormalizeDefaultsMimeType(t *testing.T) {
	got := Normalize(ImageSource{Base64Data: "AAA"})
	if got == nil || got.MimeType != "image/png" {
		t.Fatalf("expected image/png default: %+v", got)
	}
}

func TestNormalizeIgnoresRemoteURL(t *testing.T) {
	// A remote URL alone is not an inline image; that path belongs to the
	// resolver, which can fetch.
	if got := Normalize(ImageSource{ImageURL: "https://cdn.example.com/a.png"}); got != nil {
		t.Fatalf("expected nil for remote-only source, got %+v", got)
	}
}

func TestNormalizeStripsWhitespace(t *testing.T) {
	got := Normalize(ImageSource{Base64Data: "QUJ\r\nD EF"})
	if got == nil || got.Base64Data != "QUJDEF" {
		t.Fatalf("whitespace not stripped: %+v", got)
	}
}

func TestNormalizeEmbeddedMimeFallsBackToSibling(t *testing.T) {
	// Data URL without a mime type: the sibling field fills the gap.
	got := Normalize(ImageSource{Base64Data: "data:;base64,ABC", MimeType: "image/webp"})
	if got == nil || got.MimeType != "image/webp" || got.Base64Data != "ABC" {
		t.Fatalf("sibling mime fallback failed: %+v", got)
	}
}
