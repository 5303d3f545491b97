// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an identity record owned by the external identity service.
// CrewDeck only reads users; creation, verification, and credentials
// live outside this service.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName string             `bson:"full_name" json:"fullName"`
	Email    string             `bson:"email" json:"email"`

	CreatedAt time.Time `bson:"created_at,omitempty" json:"createdAt,omitempty"`
	UpdatedAt time.Time `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

// Initials returns up to two uppercase initials for avatar badges,
// or "NA" when the name is empty.
func (u User) Initials() string {
	out := make([]rune, 0, 2)
	prevSpace := true
	for _, r := range u.FullName {
		if r == ' ' {
			prevSpace = true
			continue
		}
		if prevSpace && len(out) < 2 {
			if r >= 'a' && r <= 'z' {
				r -= 'a' - 'A'
			}
			out = append(out, r)
		}
		prevSpace = false
	}
	if len(out) == 0 {
		return "NA"
	}
	return string(out)
}
