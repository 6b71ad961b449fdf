package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"studio/internal/domain"
)

type createTeamRequest struct {
	Name string `json:"name"`
}

type addMemberRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

func (a *App) TeamsCreate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req createTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "team name required")
		return
	}

	team := &domain.Team{
		ID:        uuid.NewString(),
		Name:      name,
		OwnerID:   userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.Teams.Create(r.Context(), team); err != nil {
		a.serviceError(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, map[string]any{
		"id":       team.ID,
		"name":     team.Name,
		"owner_id": team.OwnerID,
	})
}

func (a *App) TeamsList(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	teams, err := a.Teams.ListByUser(r.Context(), userID)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	out := make([]map[string]any, 0, len(teams))
	for _, t := range teams {
		out = append(out, map[string]any{
			"id":       t.ID,
			"name":     t.Name,
			"owner_id": t.OwnerID,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"teams": out})
}

func (a *App) TeamsAddMember(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	teamID := chi.URLParam(r, "id")
	var req addMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "user_id required")
		return
	}

	if err := a.requireTeamOwner(r, teamID, userID); err != nil {
		a.serviceError(w, r, err)
		return
	}

	role := domain.TeamRoleMember
	if strings.EqualFold(req.Role, string(domain.TeamRoleOwner)) {
		role = domain.TeamRoleOwner
	}
	member := &domain.TeamMember{
		TeamID:   teamID,
		UserID:   req.UserID,
		Role:     role,
		JoinedAt: time.Now().UTC(),
	}
	if err := a.Teams.AddMember(r.Context(), member); err != nil {
		a.serviceError(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, map[string]string{
		"team_id": teamID,
		"user_id": member.UserID,
		"role":    string(member.Role),
	})
}

func (a *App) TeamsRemoveMember(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	teamID := chi.URLParam(r, "id")
	memberID := chi.URLParam(r, "user_id")

	// Members may always leave a team themselves; removing anyone else
	// requires ownership.
	if memberID != userID {
		if err := a.requireTeamOwner(r, teamID, userID); err != nil {
			a.serviceError(w, r, err)
			return
		}
	}
	if err := a.Teams.RemoveMember(r.Context(), teamID, memberID); err != nil {
		a.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) requireTeamOwner(r *http.Request, teamID, userID string) error {
	member, err := a.Teams.GetMember(r.Context(), teamID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrForbidden
		}
		return err
	}
	if member.Role != domain.TeamRoleOwner {
		return domain.ErrForbidden
	}
	return nil
}
