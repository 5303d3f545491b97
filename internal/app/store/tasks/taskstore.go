// internal/app/store/tasks/taskstore.go
package taskstore

import (
	"context"
	"errors"
	"time"

	"github.com/crewdeck/crewdeck/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrCommentNotFound is returned when a comment id does not exist on the
// task being mutated.
var ErrCommentNotFound = errors.New("comment not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("tasks")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Task, error) {
	var t models.Task
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// Create persists a task with its TASK_CREATE activity already on the
// trail. Validation (project ownership, roster membership, due-date
// window) happens in the handler before this write.
func (s *Store) Create(ctx context.Context, t models.Task) (models.Task, error) {
	now := time.Now().UTC()
	t.ID = primitive.NewObjectID()
	t.TitleCI = text.Fold(t.Title)
	if t.Status == "" {
		t.Status = models.TaskToDo
	}
	if t.AssignedTo == nil {
		t.AssignedTo = []primitive.ObjectID{}
	}
	t.CreatedAt = now
	t.UpdatedAt = now
	t.Activities = []models.Activity{{
		ID:        primitive.NewObjectID(),
		Action:    models.ActionTaskCreate,
		UserID:    t.CreatedBy,
		CreatedAt: now,
	}}

	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// ListByProjects returns tasks under the given projects, newest first.
func (s *Store) ListByProjects(ctx context.Context, projectIDs []primitive.ObjectID) ([]models.Task, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"project_id": bson.M{"$in": projectIDs}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var tasks []models.Task
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// ApplyPatch writes a set of field changes and their activity entries in
// one document update. set must not be empty; activities may be.
func (s *Store) ApplyPatch(ctx context.Context, id primitive.ObjectID, set bson.M, activities []models.Activity) error {
	set["updated_at"] = time.Now().UTC()
	update := bson.M{"$set": set}
	if len(activities) > 0 {
		update["$push"] = bson.M{"activities": bson.M{"$each": activities}}
	}
	_, err := s.c.UpdateByID(ctx, id, update)
	return err
}

// AddComment appends a comment and its COMMENT_ADD activity without
// touching any other task field (updated_at included: comments do not
// count as task mutations for on-time statistics).
func (s *Store) AddComment(ctx context.Context, taskID primitive.ObjectID, c models.Comment) (models.Comment, error) {
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.CreatedAt = now

	act := models.Activity{
		ID:        primitive.NewObjectID(),
		Action:    models.ActionCommentAdd,
		UserID:    c.UserID,
		Details:   map[string]string{"commentId": c.ID.Hex()},
		CreatedAt: now,
	}
	_, err := s.c.UpdateByID(ctx, taskID, bson.M{"$push": bson.M{
		"comments":   c,
		"activities": act,
	}})
	if err != nil {
		return models.Comment{}, err
	}
	return c, nil
}

// EditComment rewrites a comment's text in place and records
// COMMENT_EDIT. Author checks happen in the handler.
func (s *Store) EditComment(ctx context.Context, taskID, commentID primitive.ObjectID, text string, editorID primitive.ObjectID) error {
	now := time.Now().UTC()
	act := models.Activity{
		ID:        primitive.NewObjectID(),
		Action:    models.ActionCommentEdit,
		UserID:    editorID,
		Details:   map[string]string{"commentId": commentID.Hex()},
		CreatedAt: now,
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": taskID},
		bson.M{
			"$set": bson.M{
				"comments.$[c].text":       text,
				"comments.$[c].updated_at": now,
			},
			"$push": bson.M{"activities": act},
		},
		options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{bson.M{"c._id": commentID}},
		}),
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrCommentNotFound
	}
	return nil
}

// RemoveComment pulls a comment and records COMMENT_DELETE attributed to
// the deleting user, keeping the removed comment's identity for audit.
func (s *Store) RemoveComment(ctx context.Context, taskID, commentID primitive.ObjectID, deleterID primitive.ObjectID) error {
	act := models.Activity{
		ID:        primitive.NewObjectID(),
		Action:    models.ActionCommentDelete,
		UserID:    deleterID,
		Details:   map[string]string{"commentId": commentID.Hex()},
		CreatedAt: time.Now().UTC(),
	}
	res, err := s.c.UpdateByID(ctx, taskID, bson.M{
		"$pull": bson.M{"comments": bson.M{"_id": commentID}},
		"$push": bson.M{"activities": act},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrCommentNotFound
	}
	return nil
}

// Delete removes a task (and, by embedding, its comments and trail).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByProject removes all tasks under a project. Part of the project
// delete cascade.
func (s *Store) DeleteByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountAssignedInProjects counts tasks assigned to a user within a
// project set. Used by the viewer-scoped team listing.
func (s *Store) CountAssignedInProjects(ctx context.Context, userID primitive.ObjectID, projectIDs []primitive.ObjectID) (int64, error) {
	if len(projectIDs) == 0 {
		return 0, nil
	}
	return s.c.CountDocuments(ctx, bson.M{
		"assigned_to": userID,
		"project_id":  bson.M{"$in": projectIDs},
	})
}
