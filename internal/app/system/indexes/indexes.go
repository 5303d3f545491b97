// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent:
createIndexes is a no-op for an index that already exists with the same
definition. Errors are aggregated so every problem is visible and startup can
fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureProjects(ctx, db); err != nil {
		problems = append(problems, "projects: "+err.Error())
	}
	if err := ensureTeamMembers(ctx, db); err != nil {
		problems = append(problems, "team_members: "+err.Error())
	}
	if err := ensureTasks(ctx, db); err != nil {
		problems = append(problems, "tasks: "+err.Error())
	}
	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureProjects(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("projects").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "created_by", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("created_by_recent"),
		},
		{
			Keys:    bson.D{{Key: "team_members", Value: 1}},
			Options: options.Index().SetName("roster_member"),
		},
	})
	return err
}

// The unique (user_id, project_id) index is what makes duplicate-invite
// detection race-safe: addMember inserts and maps the dup error to
// Conflict rather than doing a read-then-write check.
func ensureTeamMembers(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("team_members").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "project_id", Value: 1}},
			Options: options.Index().SetName("user_project_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "added_by", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("inviter_recent"),
		},
		{
			Keys:    bson.D{{Key: "project_id", Value: 1}},
			Options: options.Index().SetName("by_project"),
		},
	})
	return err
}

func ensureTasks(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("tasks").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("project_status"),
		},
		{
			Keys:    bson.D{{Key: "assigned_to", Value: 1}, {Key: "updated_at", Value: -1}},
			Options: options.Index().SetName("assignee_recent"),
		},
	})
	return err
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("users").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email_unique").SetUnique(true),
		},
	})
	return err
}
