// internal/app/features/team/profile.go
package team

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	projectstore "github.com/crewdeck/crewdeck/internal/app/store/projects"
	"github.com/crewdeck/crewdeck/internal/app/store/queries/memberstats"
	teamstore "github.com/crewdeck/crewdeck/internal/app/store/team"
	userstore "github.com/crewdeck/crewdeck/internal/app/store/users"
	"github.com/crewdeck/crewdeck/internal/app/system/authz"
	"github.com/crewdeck/crewdeck/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const recentTaskLimit = 10

type recentTaskView struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Status       string    `json:"status"`
	Priority     string    `json:"priority"`
	DueDate      time.Time `json:"dueDate"`
	ProjectTitle string    `json:"projectTitle"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HandleProfile processes GET /api/team/{id}: the member as the caller
// sees them. Roles, projects, tasks, and the activity score all come
// from entries the caller created; only the join date looks across
// inviters.
func (h *Handler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	_, callerID, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Unauthenticated(w, r)
		return
	}

	memberID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.Validation(w, r, "Valid user ID required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	member, err := userstore.New(h.DB).GetByID(ctx, memberID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			h.ErrLog.NotFound(w, r, "User not found")
			return
		}
		h.ErrLog.ServerError(w, r, "database error loading user", err)
		return
	}

	membership, err := teamstore.New(h.DB).ForViewer(ctx, memberID, callerID)
	if err != nil {
		h.ErrLog.ServerError(w, r, "database error loading membership", err)
		return
	}

	projects, err := projectstore.New(h.DB).ListByIDs(ctx, membership.ProjectIDs)
	if err != nil {
		h.ErrLog.ServerError(w, r, "database error loading projects", err)
		return
	}
	titles := make(map[primitive.ObjectID]string, len(projects))
	projectNames := make([]string, 0, len(projects))
	for _, p := range projects {
		titles[p.ID] = p.Title
		projectNames = append(projectNames, p.Title)
	}

	tasks, err := memberstats.TasksAssignedIn(ctx, h.DB, memberID, membership.ProjectIDs)
	if err != nil {
		h.ErrLog.ServerError(w, r, "database error loading tasks", err)
		return
	}

	stats := memberstats.Compute(tasks, len(membership.ProjectIDs))

	recent := make([]recentTaskView, 0, recentTaskLimit)
	for _, t := range memberstats.RecentTasks(tasks, recentTaskLimit) {
		recent = append(recent, recentTaskView{
			ID:           t.ID.Hex(),
			Title:        t.Title,
			Status:       t.Status,
			Priority:     t.Priority,
			DueDate:      t.DueDate,
			ProjectTitle: titles[t.ProjectID],
			UpdatedAt:    t.UpdatedAt,
		})
	}

	roles := membership.Roles
	if roles == nil {
		roles = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"member": map[string]any{
			"id":         member.ID.Hex(),
			"fullName":   member.FullName,
			"email":      member.Email,
			"initials":   member.Initials(),
			"roles":      roles,
			"projects":   projectNames,
			"dateJoined": dateJoinedOrNil(membership.DateJoined),
		},
		"stats":       stats,
		"recentTasks": recent,
	})
}

// dateJoinedOrNil keeps a user the caller never added from showing a
// zero time as their join date.
func dateJoinedOrNil(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
