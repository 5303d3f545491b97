// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/crewdeck/crewdeck/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the caller's display name, Mongo ObjectID, and a found
// flag. ok=true guarantees an authenticated user with a well-formed
// ObjectID; a malformed session id fails closed.
func UserCtx(r *http.Request) (name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return "", primitive.NilObjectID, false
	}
	return user.Name, userID, true
}
