// internal/domain/models/project.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project status values.
const (
	ProjectActive    = "Active"
	ProjectOnHold    = "On Hold"
	ProjectCompleted = "Completed"
)

// Priority values shared by projects and tasks.
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// Project is a container for tasks with a denormalized member roster.
//
// TeamMembers is a cache of the team_members ledger, kept in step by the
// team store: every ledger insert/delete patches the roster in the same
// handler operation. The ledger stays canonical; the roster exists for
// fast membership checks at task-assignment time.
//
// Progress is derived from task counts and cached here. It is recomputed
// after every status-affecting task mutation and on the project list read
// path, so a crash between a task write and the recompute only leaves it
// stale until the next mutation.
type Project struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title       string               `bson:"title" json:"title"`
	TitleCI     string               `bson:"title_ci" json:"-"` // lowercase, diacritics-stripped
	Description string               `bson:"description" json:"description"`
	Status      string               `bson:"status" json:"status"`   // Active | On Hold | Completed
	Priority    string               `bson:"priority" json:"priority"` // High | Medium | Low
	StartDate   time.Time            `bson:"start_date" json:"startDate"`
	DueDate     time.Time            `bson:"due_date" json:"dueDate"`
	CreatedBy   primitive.ObjectID   `bson:"created_by" json:"createdBy"`
	TeamMembers []primitive.ObjectID `bson:"team_members" json:"teamMembers"`
	Progress    int                  `bson:"progress" json:"progress"` // 0..100, derived

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// HasMember reports whether userID is on the denormalized roster.
func (p Project) HasMember(userID primitive.ObjectID) bool {
	for _, id := range p.TeamMembers {
		if id == userID {
			return true
		}
	}
	return false
}

// ValidProjectStatus reports whether s is one of the project status values.
func ValidProjectStatus(s string) bool {
	return s == ProjectActive || s == ProjectOnHold || s == ProjectCompleted
}

// ValidPriority reports whether s is one of the priority values.
func ValidPriority(s string) bool {
	return s == PriorityHigh || s == PriorityMedium || s == PriorityLow
}
