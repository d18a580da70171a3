// internal/domain/models/user.go
package models

import (
	"time"
)

// User is a profile document keyed by the identity provider's uid.
//
// NOTE:
//   - Newsletter membership is not embedded on User.
//     Use the newsletterMemberships collection to discover a user's newsletters.
type User struct {
	ID            string          `bson:"_id" json:"uid"`
	Email         string          `bson:"email" json:"email"`
	DisplayName   string          `bson:"display_name" json:"displayName"`
	DisplayNameCI string          `bson:"display_name_ci" json:"-"` // lowercase, diacritics-stripped
	IsActive      bool            `bson:"is_active" json:"isActive"`
	IsAdmin       bool            `bson:"is_admin" json:"isAdmin"`
	Preferences   UserPreferences `bson:"preferences" json:"preferences"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// UserPreferences is the user-editable preference bag.
type UserPreferences struct {
	EmailNotifications bool   `bson:"email_notifications" json:"emailNotifications"`
	Timezone           string `bson:"timezone" json:"timezone"`
}

// DefaultPreferences are applied when a profile is created without preferences.
func DefaultPreferences() UserPreferences {
	return UserPreferences{EmailNotifications: true, Timezone: "UTC"}
}
