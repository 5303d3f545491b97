// internal/app/store/projects/projectstore.go
package projectstore

import (
	"context"
	"time"

	"github.com/crewdeck/crewdeck/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c     *mongo.Collection
	tasks *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:     db.Collection("projects"),
		tasks: db.Collection("tasks"),
	}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Project, error) {
	var p models.Project
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

// Create persists a new project. The creator seeds the roster and gains
// implicit full rights independent of ledger entries; progress starts at
// zero.
func (s *Store) Create(ctx context.Context, p models.Project) (models.Project, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.TitleCI = text.Fold(p.Title)
	if p.Status == "" {
		p.Status = models.ProjectActive
	}
	if p.Priority == "" {
		p.Priority = models.PriorityMedium
	}
	p.TeamMembers = []primitive.ObjectID{p.CreatedBy}
	p.Progress = 0
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

// Delete removes a project document. Returns the number deleted (0 or 1).
// Task and ledger cascades are the caller's responsibility.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListVisible returns projects the user created or is rostered on,
// newest first.
func (s *Store) ListVisible(ctx context.Context, userID primitive.ObjectID) ([]models.Project, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"created_by": userID},
		bson.M{"team_members": userID},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var projects []models.Project
	if err := cur.All(ctx, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// ListByIDs loads projects for a known id set.
func (s *Store) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Project, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var projects []models.Project
	if err := cur.All(ctx, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// IDsCreatedBy returns the ids of projects the user created.
func (s *Store) IDsCreatedBy(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx, bson.M{"created_by": userID},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

// CountTasks returns the live task count for a project.
func (s *Store) CountTasks(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	return s.tasks.CountDocuments(ctx, bson.M{"project_id": projectID})
}

// ProgressPercent derives the cached progress value: the rounded share of
// completed tasks, or zero for an empty project.
func ProgressPercent(completed, total int64) int {
	if total <= 0 {
		return 0
	}
	return int((completed*100 + total/2) / total)
}

// RecomputeProgress rederives the project's progress from task counts and
// writes it back. It is idempotent and re-runnable: concurrent mutations
// may race on the write with last-writer-wins, which is acceptable for a
// derived value the next mutation corrects.
func (s *Store) RecomputeProgress(ctx context.Context, projectID primitive.ObjectID) (int, error) {
	total, err := s.tasks.CountDocuments(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return 0, err
	}
	completed, err := s.tasks.CountDocuments(ctx,
		bson.M{"project_id": projectID, "status": models.TaskCompleted})
	if err != nil {
		return 0, err
	}

	progress := ProgressPercent(completed, total)
	_, err = s.c.UpdateByID(ctx, projectID, bson.M{"$set": bson.M{
		"progress":   progress,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return 0, err
	}
	return progress, nil
}
