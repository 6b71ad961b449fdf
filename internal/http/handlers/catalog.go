package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"studio/internal/domain"
)

const defaultCatalogLimit = 50

type publishPresetRequest struct {
	Kind     string   `json:"kind"`
	Name     string   `json:"name"`
	Fragment string   `json:"fragment"`
	Colors   []string `json:"colors,omitempty"`
}

type presetResponse struct {
	ID       string   `json:"id"`
	Kind     string   `json:"kind"`
	Name     string   `json:"name"`
	Fragment string   `json:"fragment"`
	Colors   []string `json:"colors,omitempty"`
	Votes    int      `json:"votes"`
	Voted    bool     `json:"voted"`
}

func toPresetResponse(p domain.Preset, userID string) presetResponse {
	return presetResponse{
		ID:       p.ID,
		Kind:     string(p.Kind),
		Name:     p.Name,
		Fragment: p.Fragment,
		Colors:   p.Colors,
		Votes:    p.Votes,
		Voted:    p.VotedBy(userID),
	}
}

func (a *App) CatalogList(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	var kind domain.PresetKind
	if raw := r.URL.Query().Get("kind"); raw != "" {
		normalized, ok := domain.NormalizePresetKind(raw)
		if !ok {
			a.error(w, http.StatusBadRequest, "bad_request", "unknown preset kind")
			return
		}
		kind = normalized
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > defaultCatalogLimit {
		limit = defaultCatalogLimit
	}

	presets, err := a.Presets.ListPublic(r.Context(), kind, limit)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	out := make([]presetResponse, 0, len(presets))
	for _, p := range presets {
		out = append(out, toPresetResponse(p, userID))
	}
	a.json(w, http.StatusOK, map[string]any{"presets": out})
}

func (a *App) CatalogPublish(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req publishPresetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	kind, ok := domain.NormalizePresetKind(req.Kind)
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "unknown preset kind")
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Fragment) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "name and fragment required")
		return
	}

	preset := &domain.Preset{
		ID:        uuid.NewString(),
		Kind:      kind,
		Name:      strings.TrimSpace(req.Name),
		Fragment:  strings.TrimSpace(req.Fragment),
		Colors:    req.Colors,
		Scope:     domain.PresetScopePublic,
		OwnerID:   userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.Presets.Create(r.Context(), preset); err != nil {
		a.serviceError(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, toPresetResponse(*preset, userID))
}

func (a *App) CatalogVote(w http.ResponseWriter, r *http.Request) {
	a.castCatalogVote(w, r, a.Presets.Vote)
}

func (a *App) CatalogUnvote(w http.ResponseWriter, r *http.Request) {
	a.castCatalogVote(w, r, a.Presets.Unvote)
}

func (a *App) castCatalogVote(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, presetID, userID string) (int, error)) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	presetID := chi.URLParam(r, "id")
	if presetID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "preset id required")
		return
	}
	votes, err := op(r.Context(), presetID, userID)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"id": presetID, "votes": votes})
}
