package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"studio/internal/domain"
)

// settingsRequest accepts provider keys as write-only fields. A null field
// leaves the stored key untouched; an empty string clears it.
type settingsRequest struct {
	OpenAIAPIKey       *string `json:"openai_api_key"`
	GeminiAPIKey       *string `json:"gemini_api_key"`
	DefaultModel       *string `json:"default_model"`
	DefaultAspectRatio *string `json:"default_aspect_ratio"`
	Locale             *string `json:"locale"`
}

// settingsResponse never echoes stored keys, only whether one is present.
type settingsResponse struct {
	HasOpenAIKey       bool   `json:"has_openai_key"`
	HasGeminiKey       bool   `json:"has_gemini_key"`
	DefaultModel       string `json:"default_model,omitempty"`
	DefaultAspectRatio string `json:"default_aspect_ratio,omitempty"`
	Locale             string `json:"locale,omitempty"`
}

func toSettingsResponse(s domain.Settings) settingsResponse {
	return settingsResponse{
		HasOpenAIKey:       s.OpenAIAPIKey != "",
		HasGeminiKey:       s.GeminiAPIKey != "",
		DefaultModel:       s.DefaultModel,
		DefaultAspectRatio: s.DefaultAspectRatio,
		Locale:             s.Locale,
	}
}

func (a *App) SettingsGet(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	settings, err := a.Users.GetSettings(r.Context(), userID)
	if err != nil || settings == nil {
		settings = &domain.Settings{UserID: userID}
	}
	a.json(w, http.StatusOK, toSettingsResponse(*settings))
}

func (a *App) SettingsUpdate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	settings, err := a.Users.GetSettings(r.Context(), userID)
	if err != nil || settings == nil {
		settings = &domain.Settings{UserID: userID}
	}
	if req.OpenAIAPIKey != nil {
		settings.OpenAIAPIKey = strings.TrimSpace(*req.OpenAIAPIKey)
	}
	if req.GeminiAPIKey != nil {
		settings.GeminiAPIKey = strings.TrimSpace(*req.GeminiAPIKey)
	}
	if req.DefaultModel != nil {
		settings.DefaultModel = strings.TrimSpace(*req.DefaultModel)
	}
	if req.DefaultAspectRatio != nil {
		settings.DefaultAspectRatio = domain.NormalizeAspectRatio(*req.DefaultAspectRatio)
	}
	if req.Locale != nil {
		settings.Locale = strings.TrimSpace(*req.Locale)
	}
	settings.UpdatedAt = time.Now().UTC()

	if err := a.Users.UpsertSettings(r.Context(), settings); err != nil {
		a.serviceError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toSettingsResponse(*settings))
}
