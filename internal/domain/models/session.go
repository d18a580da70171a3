// internal/domain/models/session.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session statuses.
const (
	SessionActive    = "active"
	SessionPending   = "pending"
	SessionCompleted = "completed"
)

// ValidSessionStatus reports whether s is a known session status.
func ValidSessionStatus(s string) bool {
	return s == SessionActive || s == SessionPending || s == SessionCompleted
}

// Session is one week's question/answer cycle for a newsletter.
// At most one session per newsletter has Status "active" (partial unique index).
type Session struct {
	ID                  primitive.ObjectID `bson:"_id" json:"id"`
	NewsletterID        primitive.ObjectID `bson:"newsletter_id" json:"newsletterId"`
	WeekIdentifier      string             `bson:"week_identifier" json:"weekIdentifier"`
	WeekStart           time.Time          `bson:"week_start" json:"weekStart"`
	WeekEnd             time.Time          `bson:"week_end" json:"weekEnd"`
	Status              string             `bson:"status" json:"status"`
	NewsletterSent      bool               `bson:"newsletter_sent" json:"newsletterSent"`
	ParticipantCount    int                `bson:"participant_count" json:"participantCount"`
	GeneratedNewsletter string             `bson:"generated_newsletter,omitempty" json:"generatedNewsletter,omitempty"`
	CreatedBy           string             `bson:"created_by" json:"createdBy"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
