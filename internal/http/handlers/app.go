package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"studio/internal/domain"
	"studio/internal/imaging"
	"studio/internal/middleware"
	"studio/internal/providers/image"
	"studio/internal/storage"
)

// StudioService is the generation surface the graphics handlers depend on.
type StudioService interface {
	Generate(ctx context.Context, userID string, cfg domain.GenerationConfig, quantity int) ([]domain.Graphic, error)
	Refine(ctx context.Context, userID, graphicID, instruction string) (*domain.Graphic, error)
	Graphic(ctx context.Context, userID, graphicID string) (*domain.Graphic, error)
	Graphics(ctx context.Context, userID string, limit int) ([]domain.Graphic, error)
}

// App bundles the dependencies shared by all HTTP handlers.
type App struct {
	Studio   StudioService
	Presets  domain.PresetRepository
	Users    domain.UserRepository
	Teams    domain.TeamRepository
	Store    *storage.FileStore
	Registry *image.Registry
	Logger   zerolog.Logger
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]errorBody{"error": {Code: errCode, Message: message}})
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

// serviceError maps domain and provider errors onto HTTP responses.
func (a *App) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	var srcErr *imaging.SourceUnavailableError
	var upstreamErr *image.UpstreamError
	var diagErr *image.DiagnosticError
	var fetchErr *imaging.FetchError

	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, domain.ErrForbidden):
		a.error(w, http.StatusForbidden, "forbidden", "operation not allowed")
	case errors.Is(err, domain.ErrDuplicateOperation):
		a.error(w, http.StatusConflict, "duplicate_operation", "operation already applied")
	case errors.Is(err, domain.ErrInvalidPreset):
		a.error(w, http.StatusBadRequest, "invalid_preset", err.Error())
	case errors.Is(err, image.ErrCredentialMissing):
		a.error(w, http.StatusBadRequest, "credential_missing", "no API key configured for the selected model; add one in settings")
	case errors.As(err, &srcErr):
		a.error(w, http.StatusConflict, "source_unavailable", srcErr.Error())
	case errors.As(err, &fetchErr):
		a.error(w, http.StatusConflict, "source_unavailable", fetchErr.Error())
	case errors.As(err, &diagErr):
		a.error(w, http.StatusBadGateway, "provider_diagnostic", diagErr.Text)
	case errors.As(err, &upstreamErr):
		a.error(w, http.StatusBadGateway, "upstream_error", upstreamErr.Error())
	case errors.Is(err, image.ErrUpstreamProtocol):
		a.error(w, http.StatusBadGateway, "upstream_protocol", "provider returned an unrecognized response")
	default:
		a.Logger.Error().Err(err).
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Str("path", r.URL.Path).
			Msg("handler: unhandled service error")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
