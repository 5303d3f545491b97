// internal/app/features/projects/create.go
package projects

import (
	"context"
	"encoding/json"
	"net/http"

	projectstore "github.com/crewdeck/crewdeck/internal/app/store/projects"
	"github.com/crewdeck/crewdeck/internal/app/system/authz"
	"github.com/crewdeck/crewdeck/internal/app/system/dates"
	"github.com/crewdeck/crewdeck/internal/app/system/htmlsanitize"
	"github.com/crewdeck/crewdeck/internal/app/system/inputval"
	"github.com/crewdeck/crewdeck/internal/app/system/timeouts"
	"github.com/crewdeck/crewdeck/internal/domain/models"
	"go.uber.org/zap"
)

// createProjectInput defines validation rules for creating a project.
type createProjectInput struct {
	Title       string `json:"title" validate:"required,max=200" label:"Title"`
	Description string `json:"description" validate:"required,max=5000" label:"Description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	StartDate   string `json:"startDate" validate:"required" label:"Start date"`
	DueDate     string `json:"dueDate" validate:"required" label:"Due date"`
}

// HandleCreate processes POST /api/projects. The creator seeds the
// roster and owns the project; progress starts at zero.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, callerID, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Unauthenticated(w, r)
		return
	}

	var in createProjectInput
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
	if in.Status != "" && !models.ValidProjectStatus(in.Status) {
		h.ErrLog.Validation(w, r, "Status must be Active, On Hold, or Completed")
		return
	}
	if in.Priority != "" && !models.ValidPriority(in.Priority) {
		h.ErrLog.Validation(w, r, "Priority must be High, Medium, or Low")
		return
	}

	start, err := dates.Parse(in.StartDate)
	if err != nil {
		h.ErrLog.Validation(w, r, "Start date is not a valid date")
		return
	}
	due, err := dates.Parse(in.DueDate)
	if err != nil {
		h.ErrLog.Validation(w, r, "Due date is not a valid date")
		return
	}
	if due.Before(start) {
		h.ErrLog.Validation(w, r, "Due date must not be before the start date")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := projectstore.New(h.DB).Create(ctx, models.Project{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		StartDate:   start,
		DueDate:     due,
		CreatedBy:   callerID,
	})
	if err != nil {
		h.ErrLog.ServerError(w, r, "database error creating project", err)
		return
	}

	h.Log.Info("project created",
		zap.String("project_id", created.ID.Hex()),
		zap.String("title", created.Title),
		zap.String("created_by", callerID.Hex()))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"message": "Project created successfully",
		"project": created,
	})
}
