package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"studio/internal/domain"
)

type generateRequest struct {
	domain.GenerationConfig
	Quantity int `json:"quantity"`
}

type refineRequest struct {
	Instruction string `json:"instruction"`
}

type graphicResponse struct {
	ID        string                  `json:"id"`
	ParentID  string                  `json:"parent_id,omitempty"`
	Config    domain.GenerationConfig `json:"config"`
	Image     json.RawMessage         `json:"image,omitempty"`
	Provider  string                  `json:"provider"`
	CreatedAt time.Time               `json:"created_at"`
}

func toGraphicResponse(g domain.Graphic) graphicResponse {
	return graphicResponse{
		ID:        g.ID,
		ParentID:  g.ParentID,
		Config:    g.Config,
		Image:     json.RawMessage(g.Image),
		Provider:  g.Provider,
		CreatedAt: g.CreatedAt,
	}
}

func (a *App) GraphicsGenerate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" && req.GraphicTypeID == "" && req.VisualStyleID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "prompt or preset selection required")
		return
	}

	graphics, err := a.Studio.Generate(r.Context(), userID, req.GenerationConfig, req.Quantity)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}

	out := make([]graphicResponse, 0, len(graphics))
	for _, g := range graphics {
		out = append(out, toGraphicResponse(g))
	}
	a.json(w, http.StatusCreated, map[string]any{"graphics": out})
}

func (a *App) GraphicsRefine(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	graphicID := chi.URLParam(r, "id")
	if graphicID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "graphic id required")
		return
	}
	var req refineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Instruction) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "instruction required")
		return
	}

	graphic, err := a.Studio.Refine(r.Context(), userID, graphicID, req.Instruction)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, toGraphicResponse(*graphic))
}

func (a *App) GraphicsGet(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	graphicID := chi.URLParam(r, "id")
	graphic, err := a.Studio.Graphic(r.Context(), userID, graphicID)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toGraphicResponse(*graphic))
}

func (a *App) GraphicsList(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	graphics, err := a.Studio.Graphics(r.Context(), userID, limit)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	out := make([]graphicResponse, 0, len(graphics))
	for _, g := range graphics {
		out = append(out, toGraphicResponse(g))
	}
	a.json(w, http.StatusOK, map[string]any{"graphics": out})
}
