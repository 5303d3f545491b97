// internal/app/store/team/teamstore.go

// Package teamstore owns the team_members collection: the membership
// ledger recording who added whom to which project, under what role.
//
// The ledger is canonical; Project.team_members is a derived roster index
// patched in the same logical operation as every ledger mutation. Viewer
// visibility is scoped per inviter: an entry's role and removal rights
// belong to the user who created it (added_by), never globally.
package teamstore

import (
	"context"
	"errors"
	"time"

	"github.com/crewdeck/crewdeck/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateMembership is returned when a (user, project) ledger entry
// already exists. Detection rides the unique index, not a read check.
var ErrDuplicateMembership = errors.New("this user is already part of the project")

// ErrUserNotFound is returned when the invited user id does not resolve.
var ErrUserNotFound = errors.New("user not found")

type Store struct {
	c        *mongo.Collection
	users    *mongo.Collection
	projects *mongo.Collection
	tasks    *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:        db.Collection("team_members"),
		users:    db.Collection("users"),
		projects: db.Collection("projects"),
		tasks:    db.Collection("tasks"),
	}
}

// Add records a membership ledger entry and patches the project roster in
// the same operation. The invited user must exist; any authenticated
// caller may invite (the caller/project relationship is deliberately
// unchecked, matching the product's open-invite behavior).
func (s *Store) Add(ctx context.Context, projectID, userID primitive.ObjectID, role string, inviterID primitive.ObjectID) (models.TeamMember, error) {
	if err := s.users.FindOne(ctx, bson.M{"_id": userID}).Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.TeamMember{}, ErrUserNotFound
		}
		return models.TeamMember{}, err
	}

	entry := models.TeamMember{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		ProjectID: projectID,
		Role:      role,
		AddedBy:   inviterID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, entry); err != nil {
		if wafflemongo.IsDup(err) {
			return models.TeamMember{}, ErrDuplicateMembership
		}
		return models.TeamMember{}, err
	}

	// Roster add is an idempotent set-add; the ledger insert above is the
	// authoritative write.
	_, err := s.projects.UpdateByID(ctx, projectID,
		bson.M{"$addToSet": bson.M{"team_members": userID}})
	if err != nil {
		return models.TeamMember{}, err
	}
	return entry, nil
}

// ListByInviter returns every ledger entry the inviter created, newest
// first. This is the viewer-scoped team listing.
func (s *Store) ListByInviter(ctx context.Context, inviterID primitive.ObjectID) ([]models.TeamMember, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"added_by": inviterID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var entries []models.TeamMember
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ListByUser returns every ledger entry for a user across all inviters.
// Callers apply viewer scoping; the unscoped set is only used for the
// earliest-join date.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.TeamMember, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var entries []models.TeamMember
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// RemovalResult reports what a scoped removal touched.
type RemovalResult struct {
	EntriesDeleted  int64
	ProjectIDs      []primitive.ObjectID
	TasksUnassigned int64
}

// RemoveScoped deletes only the ledger entries for userID that
// requesterID created, then cascades: the user leaves those projects'
// rosters and is pulled from assigned_to on tasks under them. Tasks are
// never deleted or reassigned. When the requester never added this user
// anywhere, the result is an empty no-op, not an error. Removal rights
// are strictly per-relationship.
func (s *Store) RemoveScoped(ctx context.Context, userID, requesterID primitive.ObjectID) (RemovalResult, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID, "added_by": requesterID})
	if err != nil {
		return RemovalResult{}, err
	}
	var entries []models.TeamMember
	if err := cur.All(ctx, &entries); err != nil {
		return RemovalResult{}, err
	}
	if len(entries) == 0 {
		return RemovalResult{}, nil
	}

	entryIDs := make([]primitive.ObjectID, 0, len(entries))
	projectIDs := make([]primitive.ObjectID, 0, len(entries))
	for _, e := range entries {
		entryIDs = append(entryIDs, e.ID)
		projectIDs = append(projectIDs, e.ProjectID)
	}

	del, err := s.c.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": entryIDs}})
	if err != nil {
		return RemovalResult{}, err
	}

	if _, err := s.projects.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": projectIDs}},
		bson.M{"$pull": bson.M{"team_members": userID}},
	); err != nil {
		return RemovalResult{}, err
	}

	unassigned, err := s.tasks.UpdateMany(ctx,
		bson.M{"project_id": bson.M{"$in": projectIDs}, "assigned_to": userID},
		bson.M{"$pull": bson.M{"assigned_to": userID}},
	)
	if err != nil {
		return RemovalResult{}, err
	}

	return RemovalResult{
		EntriesDeleted:  del.DeletedCount,
		ProjectIDs:      projectIDs,
		TasksUnassigned: unassigned.ModifiedCount,
	}, nil
}

// DeleteByProject removes all ledger entries for a project. Part of the
// project delete cascade; the project document goes with them, so no
// roster patch is needed.
func (s *Store) DeleteByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Membership is the viewer-scoped projection of a user's ledger entries:
// roles and projects only from entries the viewer created, joined with
// the earliest join date across all inviters.
type Membership struct {
	Roles      []string // deduped, insertion order
	ProjectIDs []primitive.ObjectID
	DateJoined time.Time
}

// ForViewer projects userID's membership as seen by viewerID.
func (s *Store) ForViewer(ctx context.Context, userID, viewerID primitive.ObjectID) (Membership, error) {
	entries, err := s.ListByUser(ctx, userID)
	if err != nil {
		return Membership{}, err
	}

	var m Membership
	seen := make(map[string]struct{})
	for _, e := range entries {
		if m.DateJoined.IsZero() || e.CreatedAt.Before(m.DateJoined) {
			m.DateJoined = e.CreatedAt
		}
		if e.AddedBy != viewerID {
			continue
		}
		m.ProjectIDs = append(m.ProjectIDs, e.ProjectID)
		if e.Role != "" {
			if _, dup := seen[e.Role]; !dup {
				seen[e.Role] = struct{}{}
				m.Roles = append(m.Roles, e.Role)
			}
		}
	}
	return m, nil
}
