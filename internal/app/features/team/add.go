// internal/app/features/team/add.go
package team

import (
	"context"
	"encoding/json"
	"net/http"

	teamstore "github.com/crewdeck/crewdeck/internal/app/store/team"
	"github.com/crewdeck/crewdeck/internal/app/system/authz"
	"github.com/crewdeck/crewdeck/internal/app/system/htmlsanitize"
	"github.com/crewdeck/crewdeck/internal/app/system/inputval"
	"github.com/crewdeck/crewdeck/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type addMemberInput struct {
	UserID    string `json:"userId" validate:"required" label:"User"`
	ProjectID string `json:"projectId" validate:"required" label:"Project"`
	Role      string `json:"role" validate:"required,max=100" label:"Role"`
}

// HandleAdd processes POST /api/team: record a membership ledger entry
// and put the user on the project roster. A second add of the same
// (user, project) pair is a conflict regardless of who asks.
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	_, callerID, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Unauthenticated(w, r)
		return
	}

	var in addMemberInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.ErrLog.Validation(w, r, "invalid JSON body")
		return
	}
	in.Role = htmlsanitize.PlainText(in.Role)

	if result := inputval.Validate(in); result.HasErrors() {
		h.ErrLog.Validation(w, r, result.First())
		return
	}

	userID, err := primitive.ObjectIDFromHex(in.UserID)
	if err != nil {
		h.ErrLog.Validation(w, r, "Valid user ID required")
		return
	}
	projectID, err := primitive.ObjectIDFromHex(in.ProjectID)
	if err != nil {
		h.ErrLog.Validation(w, r, "Valid project ID required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	entry, err := teamstore.New(h.DB).Add(ctx, projectID, userID, in.Role, callerID)
	if err != nil {
		switch err {
		case teamstore.ErrUserNotFound:
			h.ErrLog.NotFound(w, r, "User not found")
		case teamstore.ErrDuplicateMembership:
			h.ErrLog.Conflict(w, r, err.Error())
		default:
			h.ErrLog.ServerError(w, r, "database error adding member", err)
		}
		return
	}

	h.Log.Info("team member added",
		zap.String("user_id", userID.Hex()),
		zap.String("project_id", projectID.Hex()),
		zap.String("added_by", callerID.Hex()))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"message": "Team member added successfully",
		"member":  entry,
	})
}
