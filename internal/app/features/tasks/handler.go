// internal/app/features/tasks/handler.go
package tasks

import (
	"github.com/crewdeck/crewdeck/internal/app/system/httperr"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler provides the JSON handlers for the task board: creation,
// field-sensitive updates, comments, and deletion.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *httperr.Logger
}

// NewHandler creates a tasks Handler.
func NewHandler(db *mongo.Database, errLog *httperr.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Log:    logger,
		ErrLog: errLog,
	}
}
