// internal/app/features/projects/delete.go
package projects

import (
	"context"
	"encoding/json"
	"net/http"

	projectstore "github.com/crewdeck/crewdeck/internal/app/store/projects"
	taskstore "github.com/crewdeck/crewdeck/internal/app/store/tasks"
	teamstore "github.com/crewdeck/crewdeck/internal/app/store/team"
	"github.com/crewdeck/crewdeck/internal/app/system/authz"
	"github.com/crewdeck/crewdeck/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// HandleDelete processes DELETE /api/projects/{id}. Creator only.
// Cascades to the project's tasks (with their embedded comments and
// activity trails) and membership ledger entries.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_, callerID, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Unauthenticated(w, r)
		return
	}

	projectID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.Validation(w, r, "Valid project ID required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	store := projectstore.New(h.DB)
	project, err := store.GetByID(ctx, projectID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			h.ErrLog.NotFound(w, r, "Project not found")
			return
		}
		h.ErrLog.ServerError(w, r, "database error loading project", err)
		return
	}
	if project.CreatedBy != callerID {
		h.ErrLog.Forbidden(w, r, "Only the project creator can delete it")
		return
	}

	tasksDeleted, err := taskstore.New(h.DB).DeleteByProject(ctx, projectID)
	if err != nil {
		h.ErrLog.ServerError(w, r, "database error deleting project tasks", err)
		return
	}
	entriesDeleted, err := teamstore.New(h.DB).DeleteByProject(ctx, projectID)
	if err != nil {
		h.ErrLog.ServerError(w, r, "database error deleting project memberships", err)
		return
	}
	if _, err := store.Delete(ctx, projectID); err != nil {
		h.ErrLog.ServerError(w, r, "database error deleting project", err)
		return
	}

	h.Log.Info("project deleted",
		zap.String("project_id", projectID.Hex()),
		zap.String("deleted_by", callerID.Hex()),
		zap.Int64("tasks_deleted", tasksDeleted),
		zap.Int64("memberships_deleted", entriesDeleted))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"message": "Project deleted successfully",
	})
}
