// internal/app/features/tasks/detail.go
package tasks

import (
	"context"
	"encoding/json"
	"net/http"

	taskstore "github.com/crewdeck/crewdeck/internal/app/store/tasks"
	userstore "github.com/crewdeck/crewdeck/internal/app/store/users"
	"github.com/crewdeck/crewdeck/internal/app/system/authz"
	"github.com/crewdeck/crewdeck/internal/app/system/timeouts"
	"github.com/crewdeck/crewdeck/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// taskPerson is the light user shape joined onto detail responses so the
// UI can label assignees and activity authors.
type taskPerson struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// HandleDetail processes GET /api/tasks/{id}: the task with its embedded
// comments and activity trail, visible to the creator and assignees.
func (h *Handler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	_, callerID, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Unauthenticated(w, r)
		return
	}

	taskID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.Validation(w, r, "Valid task ID required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	task, err := taskstore.New(h.DB).GetByID(ctx, taskID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			h.ErrLog.NotFound(w, r, "Task not found")
			return
		}
		h.ErrLog.ServerError(w, r, "database error loading task", err)
		return
	}
	if task.CreatedBy != callerID && !task.IsAssignee(callerID) {
		h.ErrLog.Forbidden(w, r, "You do not have access to this task")
		return
	}

	// Join the people referenced by the task so the UI can render names.
	ids := append([]primitive.ObjectID{task.CreatedBy}, task.AssignedTo...)
	for _, c := range task.Comments {
		ids = append(ids, c.UserID)
	}
	for _, a := range task.Activities {
		ids = append(ids, a.UserID)
	}
	users, err := userstore.New(h.DB).GetByIDs(ctx, ids)
	if err != nil {
		h.ErrLog.ServerError(w, r, "database error loading users", err)
		return
	}
	team := make(map[string]taskPerson, len(users))
	for id, u := range users {
		team[id.Hex()] = taskPerson{ID: id.Hex(), FullName: u.FullName, Email: u.Email}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success":    true,
		"task":       task,
		"comments":   nonNilComments(task.Comments),
		"activities": nonNilActivities(task.Activities),
		"team":       team,
	})
}

func nonNilComments(c []models.Comment) []models.Comment {
	if c == nil {
		return []models.Comment{}
	}
	return c
}

func nonNilActivities(a []models.Activity) []models.Activity {
	if a == nil {
		return []models.Activity{}
	}
	return a
}
