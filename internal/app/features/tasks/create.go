// internal/app/features/tasks/create.go
package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	projectstore "github.com/crewdeck/crewdeck/internal/app/store/projects"
	taskstore "github.com/crewdeck/crewdeck/internal/app/store/tasks"
	"github.com/crewdeck/crewdeck/internal/app/system/authz"
	"github.com/crewdeck/crewdeck/internal/app/system/dates"
	"github.com/crewdeck/crewdeck/internal/app/system/htmlsanitize"
	"github.com/crewdeck/crewdeck/internal/app/system/inputval"
	"github.com/crewdeck/crewdeck/internal/app/system/timeouts"
	"github.com/crewdeck/crewdeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// createTaskInput defines validation rules for creating a task.
// Validation order matters for error messages: required fields first,
// then project ownership, then roster membership, then the due-date
// window. The first failing check wins.
type createTaskInput struct {
	Title       string   `json:"title" validate:"required,max=200" label:"Title"`
	Description string   `json:"description" validate:"required,max=5000" label:"Description"`
	Project     string   `json:"project" validate:"required" label:"Project"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority" validate:"required" label:"Priority"`
	DueDate     string   `json:"dueDate" validate:"required" label:"Due date"`
	AssignedTo  []string `json:"assignedTo" validate:"required,min=1" label:"Assignees"`
}

// HandleCreate processes POST /api/tasks. Only a project's creator may
// create tasks in it, and only roster members may be assigned.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, callerID, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Unauthenticated(w, r)
		return
	}

	var in createTaskInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.ErrLog.Validation(w, r, "invalid JSON body")
		return
	}
	in.Title = htmlsanitize.PlainText(in.Title)
	in.Description = htmlsanitize.Sanitize(in.Description)

	if result := inputval.Validate(in); result.HasErrors() {
		h.ErrLog.Validation(w, r, result.First())
		return
	}
	if !models.ValidPriority(in.Priority) {
		h.ErrLog.Validation(w, r, "Priority must be High, Medium, or Low")
		return
	}

	projectID, err := primitive.ObjectIDFromHex(in.Project)
	if err != nil {
		h.ErrLog.Validation(w, r, "Valid project ID required")
		return
	}
	assignees := make([]primitive.ObjectID, 0, len(in.AssignedTo))
	for _, idHex := range in.AssignedTo {
		oid, err := primitive.ObjectIDFromHex(idHex)
		if err != nil {
			h.ErrLog.Validation(w, r, "Valid assignee IDs required")
			return
		}
		assignees = append(assignees, oid)
	}
	due, err := dates.Parse(in.DueDate)
	if err != nil {
		h.ErrLog.Validation(w, r, "Due date is not a valid date")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	projStore := projectstore.New(h.DB)
	project, err := projStore.GetByID(ctx, projectID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			h.ErrLog.Forbidden(w, r, "You are not the creator of this project")
			return
		}
		h.ErrLog.ServerError(w, r, "database error loading project", err)
		return
	}
	if project.CreatedBy != callerID {
		h.ErrLog.Forbidden(w, r, "You are not the creator of this project")
		return
	}

	for _, id := range assignees {
		if !project.HasMember(id) {
			h.ErrLog.Validation(w, r, "Can only assign to project team members")
			return
		}
	}

	if !dates.WithinWindow(due, project.StartDate, project.DueDate) {
		h.ErrLog.Validation(w, r, fmt.Sprintf(
			"Due date must be between %s and %s",
			project.StartDate.Format("2006-01-02"),
			project.DueDate.Format("2006-01-02")))
		return
	}

	created, err := taskstore.New(h.DB).Create(ctx, models.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      models.NormalizeTaskStatus(in.Status),
		Priority:    in.Priority,
		DueDate:     due,
		ProjectID:   projectID,
		AssignedTo:  assignees,
		CreatedBy:   callerID,
	})
	if err != nil {
		h.ErrLog.ServerError(w, r, "database error creating task", err)
		return
	}

	if _, err := projStore.RecomputeProgress(ctx, projectID); err != nil {
		// The task exists; progress catches up on the next mutation or
		// list read. Log and keep going.
		h.Log.Warn("progress recompute failed after task create",
			zap.String("project_id", projectID.Hex()), zap.Error(err))
	}

	h.Log.Info("task created",
		zap.String("task_id", created.ID.Hex()),
		zap.String("project_id", projectID.Hex()),
		zap.String("created_by", callerID.Hex()))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"task":    created,
	})
}
