package image

import (
	"errors"
	"fmt"
)

// ErrCredentialMissing means the user has not stored an API key for the
// selected provider. Keys are bring-your-own; there is no shared fallback.
var ErrCredentialMissing = errors.New("image: provider api key missing; add one in settings")

// ErrUpstreamProtocol means the provider response carried neither image
// content nor an explanatory message.
var ErrUpstreamProtocol = errors.New("image: upstream response contained no image content")

// UpstreamError surfaces a provider's non-2xx response with its body text
// verbatim.
type UpstreamError struct {
	Provider string
	Status   int
	Body     string
}

func (e *UpstreamError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Status, e.Body)
	}
	return fmt.Sprintf("%s: status %d", e.Provider, e.Status)
}

// DiagnosticError carries explanatory text the model returned in place of an
// image. Some upstream failures are reported this way rather than as
// structured errors.
type DiagnosticError struct {
	Provider string
	Text     string
}

func (e *DiagnosticError) Error() string {
	return fmt.Sprintf("%s: model returned no image: %s", e.Provider, e.Text)
}
