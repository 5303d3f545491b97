package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/crewdeck/crewdeck/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given name and email.
// Returns the created user with its generated ID.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:        primitive.NewObjectID(),
		FullName:  fullName,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := f.db.Collection("users").InsertOne(ctx, user)
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateProject creates a test project owned by creatorID with a
// one-month date window starting today. The creator is on the roster.
func (f *Fixtures) CreateProject(ctx context.Context, title string, creatorID primitive.ObjectID) models.Project {
	f.t.Helper()

	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	project := models.Project{
		ID:          primitive.NewObjectID(),
		Title:       title,
		TitleCI:     text.Fold(title),
		Description: "Test project",
		Status:      models.ProjectActive,
		Priority:    models.PriorityMedium,
		StartDate:   start,
		DueDate:     start.AddDate(0, 1, 0),
		CreatedBy:   creatorID,
		TeamMembers: []primitive.ObjectID{creatorID},
		Progress:    0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := f.db.Collection("projects").InsertOne(ctx, project)
	if err != nil {
		f.t.Fatalf("failed to create test project: %v", err)
	}

	return project
}

// CreateTask creates a test task in the given project, assigned to the
// given users, due midway through the project window.
func (f *Fixtures) CreateTask(ctx context.Context, project models.Project, title, status string, assignees ...primitive.ObjectID) models.Task {
	f.t.Helper()

	now := time.Now().UTC()
	if assignees == nil {
		assignees = []primitive.ObjectID{}
	}
	task := models.Task{
		ID:          primitive.NewObjectID(),
		Title:       title,
		TitleCI:     text.Fold(title),
		Description: "Test task",
		Status:      status,
		Priority:    models.PriorityMedium,
		DueDate:     project.StartDate.AddDate(0, 0, 14),
		ProjectID:   project.ID,
		AssignedTo:  assignees,
		CreatedBy:   project.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := f.db.Collection("tasks").InsertOne(ctx, task)
	if err != nil {
		f.t.Fatalf("failed to create test task: %v", err)
	}

	return task
}

// CreateMembership records a ledger entry and patches the project roster,
// mirroring what the team store does on invite.
func (f *Fixtures) CreateMembership(ctx context.Context, project models.Project, userID, addedBy primitive.ObjectID, role string) models.TeamMember {
	f.t.Helper()

	entry := models.TeamMember{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		ProjectID: project.ID,
		Role:      role,
		AddedBy:   addedBy,
		CreatedAt: time.Now().UTC(),
	}

	_, err := f.db.Collection("team_members").InsertOne(ctx, entry)
	if err != nil {
		f.t.Fatalf("failed to create test membership: %v", err)
	}
	_, err = f.db.Collection("projects").UpdateByID(ctx, project.ID,
		bson.M{"$addToSet": bson.M{"team_members": userID}})
	if err != nil {
		f.t.Fatalf("failed to patch test roster: %v", err)
	}

	return entry
}
