// internal/app/features/tasks/update.go
package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	projectstore "github.com/crewdeck/crewdeck/internal/app/store/projects"
	taskstore "github.com/crewdeck/crewdeck/internal/app/store/tasks"
	"github.com/crewdeck/crewdeck/internal/app/system/authz"
	"github.com/crewdeck/crewdeck/internal/app/system/dates"
	"github.com/crewdeck/crewdeck/internal/app/system/htmlsanitize"
	"github.com/crewdeck/crewdeck/internal/app/system/timeouts"
	"github.com/crewdeck/crewdeck/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// updateTaskInput carries a partial update. Pointer fields distinguish
// "not sent" from "set to zero". When Comment is present the request is
// a comment mutation and every other field is ignored.
type updateTaskInput struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Status      *string   `json:"status"`
	Priority    *string   `json:"priority"`
	DueDate     *string   `json:"dueDate"`
	AssignedTo  *[]string `json:"assignedTo"`
	Comment     *string   `json:"comment"`
	CommentID   *string   `json:"commentId"`
}

// HandleUpdate processes PUT /api/tasks/{id}. The creator may change any
// field; assignees may only change status, and other fields they send
// are dropped without error. Every effective change lands on the
// activity trail.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
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

	var in updateTaskInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.ErrLog.Validation(w, r, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	store := taskstore.New(h.DB)
	task, err := store.GetByID(ctx, taskID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			h.ErrLog.NotFound(w, r, "Task not found")
			return
		}
		h.ErrLog.ServerError(w, r, "database error loading task", err)
		return
	}

	if in.Comment != nil {
		h.updateComment(ctx, w, r, store, task, callerID, in)
		return
	}

	isCreator := task.CreatedBy == callerID
	if !isCreator && !task.IsAssignee(callerID) {
		h.ErrLog.Forbidden(w, r, "You do not have access to this task")
		return
	}

	set := bson.M{}
	var activities []models.Activity
	now := time.Now().UTC()

	addActivity := func(action string, details map[string]string) {
		activities = append(activities, models.Activity{
			ID:        primitive.NewObjectID(),
			Action:    action,
			UserID:    callerID,
			Details:   details,
			CreatedAt: now,
		})
	}

	if in.Status != nil {
		next := models.NormalizeTaskStatus(*in.Status)
		if next != task.Status {
			set["status"] = next
			addActivity(models.ActionStatusChange, map[string]string{
				"from": task.Status,
				"to":   next,
			})
		}
	}

	// Non-status fields are creator-only. Assignees sending them get the
	// status change (if any) applied and the rest silently ignored.
	if isCreator {
		if in.Title != nil {
			title := htmlsanitize.PlainText(*in.Title)
			if title == "" {
				h.ErrLog.Validation(w, r, "Title must not be empty")
				return
			}
			if title != task.Title {
				set["title"] = title
				set["title_ci"] = text.Fold(title)
				addActivity(models.ActionFieldUpdate, map[string]string{"field": "title"})
			}
		}
		if in.Description != nil {
			desc := htmlsanitize.Sanitize(*in.Description)
			if desc != task.Description {
				set["description"] = desc
				addActivity(models.ActionFieldUpdate, map[string]string{"field": "description"})
			}
		}
		if in.Priority != nil {
			if !models.ValidPriority(*in.Priority) {
				h.ErrLog.Validation(w, r, "Priority must be High, Medium, or Low")
				return
			}
			if *in.Priority != task.Priority {
				set["priority"] = *in.Priority
				addActivity(models.ActionFieldUpdate, map[string]string{"field": "priority"})
			}
		}
		if in.DueDate != nil || in.AssignedTo != nil {
			project, err := projectstore.New(h.DB).GetByID(ctx, task.ProjectID)
			if err != nil {
				h.ErrLog.ServerError(w, r, "database error loading project", err)
				return
			}
			if in.DueDate != nil {
				due, err := dates.Parse(*in.DueDate)
				if err != nil {
					h.ErrLog.Validation(w, r, "Due date is not a valid date")
					return
				}
				if !dates.WithinWindow(due, project.StartDate, project.DueDate) {
					h.ErrLog.Validation(w, r, fmt.Sprintf(
						"Due date must be between %s and %s",
						project.StartDate.Format("2006-01-02"),
						project.DueDate.Format("2006-01-02")))
					return
				}
				if !due.Equal(task.DueDate) {
					set["due_date"] = due
					addActivity(models.ActionFieldUpdate, map[string]string{"field": "dueDate"})
				}
			}
			if in.AssignedTo != nil {
				next := make([]primitive.ObjectID, 0, len(*in.AssignedTo))
				for _, idHex := range *in.AssignedTo {
					oid, err := primitive.ObjectIDFromHex(idHex)
					if err != nil {
						h.ErrLog.Validation(w, r, "Valid assignee IDs required")
						return
					}
					if !project.HasMember(oid) {
						h.ErrLog.Validation(w, r, "Can only assign to project team members")
						return
					}
					next = append(next, oid)
				}
				added, removed := diffAssignees(task.AssignedTo, next)
				if len(added) > 0 || len(removed) > 0 {
					set["assigned_to"] = next
					for _, id := range added {
						addActivity(models.ActionMemberAssign, map[string]string{"assignedUserId": id.Hex()})
					}
					for _, id := range removed {
						addActivity(models.ActionMemberUnassign, map[string]string{"unassignedUserId": id.Hex()})
					}
				}
			}
		}
	}

	if len(set) == 0 {
		// Nothing effectively changed; return the task as-is.
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "task": task})
		return
	}

	if err := store.ApplyPatch(ctx, taskID, set, activities); err != nil {
		h.ErrLog.ServerError(w, r, "database error updating task", err)
		return
	}

	// A completed count only moves when status crosses the Completed
	// boundary in either direction.
	if next, changed := set["status"].(string); changed &&
		(next == models.TaskCompleted || task.Status == models.TaskCompleted) {
		if _, err := projectstore.New(h.DB).RecomputeProgress(ctx, task.ProjectID); err != nil {
			h.Log.Warn("progress recompute failed after task update",
				zap.String("project_id", task.ProjectID.Hex()), zap.Error(err))
		}
	}

	updated, err := store.GetByID(ctx, taskID)
	if err != nil {
		h.ErrLog.ServerError(w, r, "database error reloading task", err)
		return
	}

	h.Log.Info("task updated",
		zap.String("task_id", taskID.Hex()),
		zap.String("updated_by", callerID.Hex()),
		zap.Int("fields", len(set)-1)) // minus the updated_at the store adds

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "task": updated})
}

// updateComment handles the comment sub-path of PUT /api/tasks/{id}:
// append when no commentId is given, author-only edit when one is.
// Creator or assignee standing is enough to comment.
func (h *Handler) updateComment(ctx context.Context, w http.ResponseWriter, r *http.Request, store *taskstore.Store, task models.Task, callerID primitive.ObjectID, in updateTaskInput) {
	if task.CreatedBy != callerID && !task.IsAssignee(callerID) {
		h.ErrLog.Forbidden(w, r, "You do not have access to this task")
		return
	}

	body := htmlsanitize.PlainText(*in.Comment)
	if body == "" {
		h.ErrLog.Validation(w, r, "Comment text must not be empty")
		return
	}

	if in.CommentID != nil && *in.CommentID != "" {
		commentID, err := primitive.ObjectIDFromHex(*in.CommentID)
		if err != nil {
			h.ErrLog.Validation(w, r, "Valid comment ID required")
			return
		}
		existing, found := findComment(task, commentID)
		if !found {
			h.ErrLog.NotFound(w, r, "Comment not found")
			return
		}
		if existing.UserID != callerID {
			h.ErrLog.Forbidden(w, r, "Only the comment author can edit it")
			return
		}
		if err := store.EditComment(ctx, task.ID, commentID, body, callerID); err != nil {
			h.ErrLog.ServerError(w, r, "database error editing comment", err)
			return
		}
	} else {
		if _, err := store.AddComment(ctx, task.ID, models.Comment{
			UserID: callerID,
			Text:   body,
		}); err != nil {
			h.ErrLog.ServerError(w, r, "database error adding comment", err)
			return
		}
	}

	updated, err := store.GetByID(ctx, task.ID)
	if err != nil {
		h.ErrLog.ServerError(w, r, "database error reloading task", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "task": updated})
}

func findComment(task models.Task, commentID primitive.ObjectID) (models.Comment, bool) {
	for _, c := range task.Comments {
		if c.ID == commentID {
			return c, true
		}
	}
	return models.Comment{}, false
}

// diffAssignees computes the additions and removals between two
// assignment sets, preserving the order they appear in.
func diffAssignees(before, after []primitive.ObjectID) (added, removed []primitive.ObjectID) {
	prev := make(map[primitive.ObjectID]bool, len(before))
	for _, id := range before {
		prev[id] = true
	}
	next := make(map[primitive.ObjectID]bool, len(after))
	for _, id := range after {
		next[id] = true
	}
	for _, id := range after {
		if !prev[id] {
			added = append(added, id)
		}
	}
	for _, id := range before {
		if !next[id] {
			removed = append(removed, id)
		}
	}
	return added, removed
}
