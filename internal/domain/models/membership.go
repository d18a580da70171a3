// internal/domain/models/membership.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Membership roles.
const (
	RoleOwner     = "owner"
	RoleModerator = "moderator"
	RoleMember    = "member"
)

// ValidRole reports whether role is one of the membership roles.
func ValidRole(role string) bool {
	switch role {
	case RoleOwner, RoleModerator, RoleMember:
		return true
	}
	return false
}

// Membership is the authoritative join between users and newsletters.
// At most one active document per (newsletter_id, user_id); removal flips
// IsActive to false and the record is kept.
type Membership struct {
	ID                primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	NewsletterID      primitive.ObjectID   `bson:"newsletter_id" json:"newsletterId"`
	UserID            string               `bson:"user_id" json:"userId"`
	Role              string               `bson:"role" json:"role"` // "owner" | "moderator" | "member"
	IsActive          bool                 `bson:"is_active" json:"isActive"`
	AnsweredQuestions []primitive.ObjectID `bson:"answered_questions" json:"answeredQuestions"`
	AddedBy           string               `bson:"added_by,omitempty" json:"addedBy,omitempty"`

	JoinedAt  time.Time  `bson:"joined_at" json:"joinedAt"`
	RemovedAt *time.Time `bson:"removed_at,omitempty" json:"removedAt,omitempty"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updatedAt"`
}

// CanWrite reports whether the role grants write access to newsletter data.
func (m Membership) CanWrite() bool {
	return m.IsActive && (m.Role == RoleOwner || m.Role == RoleModerator)
}
