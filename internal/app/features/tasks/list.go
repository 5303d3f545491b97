// internal/app/features/tasks/list.go
package tasks

import (
	"context"
	"encoding/json"
	"net/http"

	projectstore "github.com/crewdeck/crewdeck/internal/app/store/projects"
	taskstore "github.com/crewdeck/crewdeck/internal/app/store/tasks"
	"github.com/crewdeck/crewdeck/internal/app/system/authz"
	"github.com/crewdeck/crewdeck/internal/app/system/timeouts"
	"github.com/crewdeck/crewdeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// boardStats is the status breakdown across the caller's visible tasks.
type boardStats struct {
	ToDo      int `json:"todo"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// boardTask is a task stripped of its comment and activity payloads for
// the board listing.
type boardTask struct {
	models.Task
	Comments   []models.Comment  `json:"comments,omitempty"`
	Activities []models.Activity `json:"activities,omitempty"`
}

// HandleList processes GET /api/tasks: the caller's visible projects,
// every task under them, and a status breakdown for the board header.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	_, callerID, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Unauthenticated(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	projects, err := projectstore.New(h.DB).ListVisible(ctx, callerID)
	if err != nil {
		h.ErrLog.ServerError(w, r, "database error listing projects", err)
		return
	}

	projectIDs := make([]primitive.ObjectID, 0, len(projects))
	for _, p := range projects {
		projectIDs = append(projectIDs, p.ID)
	}

	list, err := taskstore.New(h.DB).ListByProjects(ctx, projectIDs)
	if err != nil {
		h.ErrLog.ServerError(w, r, "database error listing tasks", err)
		return
	}

	var stats boardStats
	board := make([]boardTask, 0, len(list))
	for _, t := range list {
		switch t.Status {
		case models.TaskToDo:
			stats.ToDo++
		case models.TaskPending:
			stats.Pending++
		case models.TaskCompleted:
			stats.Completed++
		}
		stats.Total++
		board = append(board, boardTask{Task: t, Comments: nil, Activities: nil})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success":  true,
		"projects": projects,
		"tasks":    board,
		"stats":    stats,
	})
}
