// internal/app/features/team/remove.go
package team

import (
	"context"
	"encoding/json"
	"net/http"

	teamstore "github.com/crewdeck/crewdeck/internal/app/store/team"
	"github.com/crewdeck/crewdeck/internal/app/system/authz"
	"github.com/crewdeck/crewdeck/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleRemove processes DELETE /api/team/{id}: drop the ledger entries
// the caller created for this user and cascade them off the affected
// rosters and task assignments. Entries other inviters created survive,
// and a caller who never added the user gets a clean no-op.
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
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

	result, err := teamstore.New(h.DB).RemoveScoped(ctx, memberID, callerID)
	if err != nil {
		h.ErrLog.ServerError(w, r, "database error removing member", err)
		return
	}

	if result.EntriesDeleted > 0 {
		h.Log.Info("team member removed",
			zap.String("user_id", memberID.Hex()),
			zap.String("removed_by", callerID.Hex()),
			zap.Int64("entries", result.EntriesDeleted),
			zap.Int64("tasks_unassigned", result.TasksUnassigned))
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"message": "Team member removed successfully",
		"removed": result.EntriesDeleted,
	})
}
