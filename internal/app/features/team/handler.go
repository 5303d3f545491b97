// internal/app/features/team/handler.go
package team

import (
	"github.com/crewdeck/crewdeck/internal/app/system/httperr"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler provides the JSON handlers for team membership: inviting,
// the viewer-scoped roster, member profiles, and scoped removal.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *httperr.Logger
}

// NewHandler creates a team Handler.
func NewHandler(db *mongo.Database, errLog *httperr.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Log:    logger,
		ErrLog: errLog,
	}
}
