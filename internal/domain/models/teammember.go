// internal/domain/models/teammember.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TeamMember is one membership ledger entry: user X is on project P,
// added by inviter A under a free-form role tag. Exactly one document per
// (user_id, project_id), enforced by a unique index.
//
// The ledger, not the Project roster, is the source of truth for "who can
// act on what, added by whom". Role visibility and removal are scoped to
// AddedBy: inviter A sees (and can revoke) only the entries A created.
// Entries are never mutated in place; there is no role-edit operation.
type TeamMember struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"userId"`
	ProjectID primitive.ObjectID `bson:"project_id" json:"projectId"`
	Role      string             `bson:"role" json:"role"` // free-form tag, e.g. "Designer"
	AddedBy   primitive.ObjectID `bson:"added_by" json:"addedBy"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}
