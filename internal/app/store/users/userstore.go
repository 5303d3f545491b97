// internal/app/store/users/userstore.go

// Package userstore reads identity records. Users are owned by the
// external identity service; this side never writes them.
package userstore

import (
	"context"

	"github.com/crewdeck/crewdeck/internal/app/system/auth"
	"github.com/crewdeck/crewdeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// GetByIDs loads a batch of users keyed by id. Missing ids are simply
// absent from the map.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	out := make(map[primitive.ObjectID]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		out[u.ID] = u
	}
	return out, cur.Err()
}

// Fetcher adapts the store to auth.UserFetcher so session middleware can
// refresh identity data on each request.
type Fetcher struct {
	store *Store
}

func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{store: New(db)}
}

func (f *Fetcher) FetchUser(ctx context.Context, userID string) (*auth.SessionUser, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}
	u, err := f.store.GetByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	return &auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
	}, nil
}
