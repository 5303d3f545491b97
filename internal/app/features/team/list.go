// internal/app/features/team/list.go
package team

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	projectstore "github.com/crewdeck/crewdeck/internal/app/store/projects"
	taskstore "github.com/crewdeck/crewdeck/internal/app/store/tasks"
	teamstore "github.com/crewdeck/crewdeck/internal/app/store/team"
	userstore "github.com/crewdeck/crewdeck/internal/app/store/users"
	"github.com/crewdeck/crewdeck/internal/app/system/authz"
	"github.com/crewdeck/crewdeck/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memberView is one row of the viewer-scoped team listing: a user the
// caller added somewhere, with the roles and projects from those entries.
type memberView struct {
	ID         string    `json:"id"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email"`
	Initials   string    `json:"initials"`
	Roles      []string  `json:"roles"`
	Projects   []string  `json:"projects"`
	DateJoined time.Time `json:"dateJoined"`
	TaskCount  int64     `json:"taskCount"`
}

type teamStats struct {
	TotalMembers   int     `json:"totalMembers"`
	UniqueProjects int     `json:"uniqueProjects"`
	TotalTasks     int64   `json:"totalTasks"`
	AvgTasks       float64 `json:"avgTasks"`
}

// HandleList processes GET /api/team: every user the caller has added to
// a project, grouped per user. Entries other inviters created for the
// same users stay invisible here.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	_, callerID, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Unauthenticated(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	entries, err := teamstore.New(h.DB).ListByInviter(ctx, callerID)
	if err != nil {
		h.ErrLog.ServerError(w, r, "database error listing team", err)
		return
	}

	// Group entries per user, keeping newest-first entry order.
	type group struct {
		roles      []string
		roleSeen   map[string]struct{}
		projectIDs []primitive.ObjectID
		earliest   time.Time
	}
	groups := make(map[primitive.ObjectID]*group)
	var userOrder []primitive.ObjectID
	projectSet := make(map[primitive.ObjectID]struct{})
	for _, e := range entries {
		g, seen := groups[e.UserID]
		if !seen {
			g = &group{roleSeen: make(map[string]struct{})}
			groups[e.UserID] = g
			userOrder = append(userOrder, e.UserID)
		}
		if e.Role != "" {
			if _, dup := g.roleSeen[e.Role]; !dup {
				g.roleSeen[e.Role] = struct{}{}
				g.roles = append(g.roles, e.Role)
			}
		}
		g.projectIDs = append(g.projectIDs, e.ProjectID)
		if g.earliest.IsZero() || e.CreatedAt.Before(g.earliest) {
			g.earliest = e.CreatedAt
		}
		projectSet[e.ProjectID] = struct{}{}
	}

	users, err := userstore.New(h.DB).GetByIDs(ctx, userOrder)
	if err != nil {
		h.ErrLog.ServerError(w, r, "database error loading users", err)
		return
	}

	projectIDs := make([]primitive.ObjectID, 0, len(projectSet))
	for id := range projectSet {
		projectIDs = append(projectIDs, id)
	}
	projects, err := projectstore.New(h.DB).ListByIDs(ctx, projectIDs)
	if err != nil {
		h.ErrLog.ServerError(w, r, "database error loading projects", err)
		return
	}
	titles := make(map[primitive.ObjectID]string, len(projects))
	for _, p := range projects {
		titles[p.ID] = p.Title
	}

	// Task counts are scoped to projects the caller owns, so a member's
	// work for other inviters never leaks into this view.
	ownedIDs, err := projectstore.New(h.DB).IDsCreatedBy(ctx, callerID)
	if err != nil {
		h.ErrLog.ServerError(w, r, "database error loading projects", err)
		return
	}

	tasks := taskstore.New(h.DB)
	members := make([]memberView, 0, len(userOrder))
	var totalTasks int64
	for _, uid := range userOrder {
		g := groups[uid]
		u, known := users[uid]
		if !known {
			// Ledger entry for a user the identity service has dropped.
			continue
		}
		count, err := tasks.CountAssignedInProjects(ctx, uid, ownedIDs)
		if err != nil {
			h.ErrLog.ServerError(w, r, "database error counting tasks", err)
			return
		}
		totalTasks += count

		projectNames := make([]string, 0, len(g.projectIDs))
		for _, pid := range g.projectIDs {
			if title, ok := titles[pid]; ok {
				projectNames = append(projectNames, title)
			}
		}
		roles := g.roles
		if roles == nil {
			roles = []string{}
		}
		members = append(members, memberView{
			ID:         uid.Hex(),
			FullName:   u.FullName,
			Email:      u.Email,
			Initials:   u.Initials(),
			Roles:      roles,
			Projects:   projectNames,
			DateJoined: g.earliest,
			TaskCount:  count,
		})
	}

	stats := teamStats{
		TotalMembers:   len(members),
		UniqueProjects: len(projectSet),
		TotalTasks:     totalTasks,
	}
	if len(members) > 0 {
		stats.AvgTasks = float64(totalTasks) / float64(len(members))
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"members": members,
		"stats":   stats,
	})
}
