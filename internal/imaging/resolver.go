package imaging

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// SupportedInputMimes lists the mime types the hosted models accept as
// conditioning input. Anything else is sent anyway; the provider makes the
// final call.
var SupportedInputMimes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
	"image/heic": true,
	"image/heif": true,
}

// SourceUnavailableError reports that a refinement request has no usable
// prior image. It is terminal; the client is expected to regenerate.
type SourceUnavailableError struct {
	Reason string
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("image source unavailable: %s; regenerate the graphic or restore its image before refining", e.Reason)
}

// FetchError tags a failed remote image fetch with the HTTP status when one
// was received. Status is zero for transport-level failures.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch image %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch image %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Doer is the HTTP client surface the resolver needs, kept narrow so tests
// can count and fake fetches.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Resolver repairs persisted image records into a guaranteed-valid inline
// payload for a refinement call, fetching the remote image when the record
// carries only a URL.
type Resolver struct {
	client Doer
	logger zerolog.Logger
}

// NewResolver constructs a resolver. A nil client falls back to a default
// with a 60-second timeout.
func NewResolver(client Doer, logger zerolog.Logger) *Resolver {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &Resolver{client: client, logger: logger}
}

// Resolve produces a canonical payload from a possibly degraded source
// record. Resolution order: inline fields, data-URL unwrap, imageUrl as a
// data URL, and finally an HTTP fetch of imageUrl. It fails with
// SourceUnavailableError when no path yields a payload.
func (r *Resolver) Resolve(ctx context.Context, source ImageSource) (CanonicalPayload, error) {
	b64 := strings.TrimSpace(source.Base64Data)
	mime := strings.ToLower(strings.TrimSpace(source.MimeType))

	// A data URL stored where raw base64 belongs is unwrapped first; its
	// embedded mime type wins over the sibling field.
	if du, ok := ParseDataURL(b64); ok {
		b64 = du.Base64Data
		if du.MimeType != "" {
			mime = du.MimeType
		}
	}

	if b64 == "" || mime == "" {
		if imageURL := strings.TrimSpace(source.ImageURL); imageURL != "" {
			if du, ok := ParseDataURL(imageURL); ok {
				if b64 == "" {
					b64 = du.Base64Data
				}
				if mime == "" {
					mime = du.MimeType
				}
			} else if b64 == "" {
				data, contentType, err := r.fetch(ctx, imageURL)
				if err != nil {
					return CanonicalPayload{}, err
				}
				b64 = base64.StdEncoding.EncodeToString(data)
				if contentType != "" {
					mime = contentType
				}
			}
		}
	}

	if b64 == "" {
		return CanonicalPayload{}, &SourceUnavailableError{Reason: "record carries no inline payload and no fetchable url"}
	}

	// Some encoders wrap base64 at 76 columns; the providers reject that.
	b64 = StripWhitespace(b64)
	if mime == "" {
		mime = DefaultMimeType
	}
	if !SupportedInputMimes[mime] {
		r.logger.Warn().
			Str("mime_type", mime).
			Msg("imaging: resolved mime type outside provider input set; attempting anyway")
	}

	return CanonicalPayload{MimeType: mime, Base64Data: b64}, nil
}

func (r *Resolver) fetch(ctx context.Context, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", &FetchError{URL: imageURL, Err: err}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, "", &FetchError{URL: imageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", &FetchError{URL: imageURL, Status: resp.StatusCode, Err: fmt.Errorf("unexpected status")}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &FetchError{URL: imageURL, Err: err}
	}

	contentType := resp.Header.Get("Content-Type")
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return data, strings.ToLower(strings.TrimSpace(contentType)), nil
}
