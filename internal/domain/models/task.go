// internal/domain/models/task.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Task status values.
const (
	TaskToDo      = "To Do"
	TaskPending   = "Pending"
	TaskCompleted = "Completed"
)

// Activity actions, recorded on the task's embedded activity trail.
const (
	ActionTaskCreate     = "TASK_CREATE"
	ActionStatusChange   = "STATUS_CHANGE"
	ActionFieldUpdate    = "FIELD_UPDATE"
	ActionMemberAssign   = "MEMBER_ASSIGN"
	ActionMemberUnassign = "MEMBER_UNASSIGN"
	ActionCommentAdd     = "COMMENT_ADD"
	ActionCommentEdit    = "COMMENT_EDIT"
	ActionCommentDelete  = "COMMENT_DELETE"
)

// Task is a unit of work inside a project. Comments and the activity
// trail are embedded so comment edits and activity appends ride Mongo's
// single-document atomicity; deleting a task removes them with it.
//
// Status moves freely among To Do / Pending / Completed, driven by the
// creator or any assignee. UpdatedAt doubles as the completion timestamp
// for on-time statistics.
type Task struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title       string               `bson:"title" json:"title"`
	TitleCI     string               `bson:"title_ci" json:"-"`
	Description string               `bson:"description" json:"description"`
	Status      string               `bson:"status" json:"status"`
	Priority    string               `bson:"priority" json:"priority"`
	DueDate     time.Time            `bson:"due_date" json:"dueDate"`
	ProjectID   primitive.ObjectID   `bson:"project_id" json:"project"`
	AssignedTo  []primitive.ObjectID `bson:"assigned_to" json:"assignedTo"`
	CreatedBy   primitive.ObjectID   `bson:"created_by" json:"createdBy"`
	Comments    []Comment            `bson:"comments,omitempty" json:"comments,omitempty"`
	Activities  []Activity           `bson:"activities,omitempty" json:"activities,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// IsAssignee reports whether userID is in the task's assignment set.
func (t Task) IsAssignee(userID primitive.ObjectID) bool {
	for _, id := range t.AssignedTo {
		if id == userID {
			return true
		}
	}
	return false
}

// Comment is a task sub-resource. Only its author may edit or delete it.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"userId"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

// Activity is one append-only audit entry on a task. Details is a small
// variant payload keyed by Action (from/to for status changes, field for
// field updates, user ids for assign/unassign, comment id for comments).
type Activity struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Action    string             `bson:"action" json:"action"`
	UserID    primitive.ObjectID `bson:"user_id" json:"userId"`
	Details   map[string]string  `bson:"details,omitempty" json:"details,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// ValidTaskStatus reports whether s is one of the task status values.
func ValidTaskStatus(s string) bool {
	return s == TaskToDo || s == TaskPending || s == TaskCompleted
}

// NormalizeTaskStatus maps loose client status spellings onto the
// canonical values. Unknown inputs fall back to "To Do".
func NormalizeTaskStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "todo", "to do":
		return TaskToDo
	case "in progress", "pending":
		return TaskPending
	case "done", "completed":
		return TaskCompleted
	default:
		return TaskToDo
	}
}
