// internal/app/features/team/dailycompletions.go
package team

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/crewdeck/crewdeck/internal/app/store/queries/memberstats"
	teamstore "github.com/crewdeck/crewdeck/internal/app/store/team"
	"github.com/crewdeck/crewdeck/internal/app/system/authz"
	"github.com/crewdeck/crewdeck/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const completionWindowDays = 7

// HandleDailyCompletions processes GET /api/team/{id}/daily-completions:
// the member's completed-task counts per day over the trailing week,
// scoped to the projects the caller added them to. Days with no
// completions are absent from the result.
func (h *Handler) HandleDailyCompletions(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	membership, err := teamstore.New(h.DB).ForViewer(ctx, memberID, callerID)
	if err != nil {
		h.ErrLog.ServerError(w, r, "database error loading membership", err)
		return
	}

	rows, err := memberstats.DailyCompletions(ctx, h.DB, memberID, membership.ProjectIDs, completionWindowDays)
	if err != nil {
		h.ErrLog.ServerError(w, r, "database error loading completions", err)
		return
	}
	if rows == nil {
		rows = []memberstats.DayCount{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success":     true,
		"completions": rows,
	})
}
