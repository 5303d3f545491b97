// internal/app/features/tasks/delete.go
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
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// HandleDelete processes DELETE /api/tasks/{id}. With ?commentId= it
// removes a single comment (author only); without it, the whole task
// (creator only). Comments and activities go with the task.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
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

	if commentHex := r.URL.Query().Get("commentId"); commentHex != "" {
		h.deleteComment(ctx, w, r, store, task, callerID, commentHex)
		return
	}

	if task.CreatedBy != callerID {
		h.ErrLog.Forbidden(w, r, "Only the task creator can delete it")
		return
	}

	if _, err := store.Delete(ctx, taskID); err != nil {
		h.ErrLog.ServerError(w, r, "database error deleting task", err)
		return
	}

	// A completed task leaving the set shifts the project's ratio either
	// way, so recompute unconditionally.
	if _, err := projectstore.New(h.DB).RecomputeProgress(ctx, task.ProjectID); err != nil {
		h.Log.Warn("progress recompute failed after task delete",
			zap.String("project_id", task.ProjectID.Hex()), zap.Error(err))
	}

	h.Log.Info("task deleted",
		zap.String("task_id", taskID.Hex()),
		zap.String("deleted_by", callerID.Hex()))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"message": "Task deleted successfully",
	})
}

func (h *Handler) deleteComment(ctx context.Context, w http.ResponseWriter, r *http.Request, store *taskstore.Store, task models.Task, callerID primitive.ObjectID, commentHex string) {
	commentID, err := primitive.ObjectIDFromHex(commentHex)
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
		h.ErrLog.Forbidden(w, r, "Only the comment author can delete it")
		return
	}
	if err := store.RemoveComment(ctx, task.ID, commentID, callerID); err != nil {
		h.ErrLog.ServerError(w, r, "database error deleting comment", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"message": "Comment deleted successfully",
	})
}
