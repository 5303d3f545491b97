// internal/app/features/projects/list.go
package projects

import (
	"context"
	"encoding/json"
	"net/http"

	projectstore "github.com/crewdeck/crewdeck/internal/app/store/projects"
	"github.com/crewdeck/crewdeck/internal/app/system/authz"
	"github.com/crewdeck/crewdeck/internal/app/system/timeouts"
	"github.com/crewdeck/crewdeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// projectView annotates a project with the live counts the dashboard
// shows per card.
type projectView struct {
	models.Project
	TaskCount int64 `json:"taskCount"`
	TeamCount int   `json:"teamCount"`
}

// simpleProject is the minimal shape for dropdowns (?simple=true).
type simpleProject struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// HandleList processes GET /api/projects: every project the caller
// created or is rostered on, newest first.
//
// Progress is recomputed live here and written back, so the list never
// surfaces a value left stale by a crash between a task write and its
// recompute.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	_, callerID, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Unauthenticated(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	store := projectstore.New(h.DB)

	if r.URL.Query().Get("simple") == "true" {
		ids, err := store.ListVisible(ctx, callerID)
		if err != nil {
			h.ErrLog.ServerError(w, r, "database error listing projects", err)
			return
		}
		out := make([]simpleProject, 0, len(ids))
		for _, p := range ids {
			if p.CreatedBy != callerID {
				continue
			}
			out = append(out, simpleProject{ID: p.ID.Hex(), Title: p.Title})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
		return
	}

	list, err := store.ListVisible(ctx, callerID)
	if err != nil {
		h.ErrLog.ServerError(w, r, "database error listing projects", err)
		return
	}

	views := make([]projectView, 0, len(list))
	for _, p := range list {
		progress, err := store.RecomputeProgress(ctx, p.ID)
		if err != nil {
			h.ErrLog.ServerError(w, r, "database error recomputing progress", err)
			return
		}
		total, err := store.CountTasks(ctx, p.ID)
		if err != nil {
			h.ErrLog.ServerError(w, r, "database error counting tasks", err)
			return
		}

		p.Progress = progress
		views = append(views, projectView{
			Project:   p,
			TaskCount: total,
			TeamCount: teamCount(p, callerID),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success":  true,
		"projects": views,
	})
}

// teamCount is "how many other people are on this": the roster minus the
// viewer, plus the creator when the viewer isn't the creator.
func teamCount(p models.Project, viewerID primitive.ObjectID) int {
	n := 0
	for _, id := range p.TeamMembers {
		if id != viewerID {
			n++
		}
	}
	if p.CreatedBy != viewerID {
		n++
	}
	return n
}
