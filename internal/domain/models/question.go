// internal/domain/models/question.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Question sources.
const (
	SourceUser  = "user"
	SourceAdmin = "admin"
	SourceLLM   = "llm"
)

// ValidSource reports whether s is a known question source.
func ValidSource(s string) bool {
	return s == SourceUser || s == SourceAdmin || s == SourceLLM
}

// Question belongs to one newsletter. Deletion is a soft IsActive=false flip.
type Question struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	NewsletterID primitive.ObjectID `bson:"newsletter_id" json:"newsletterId"`
	Text         string             `bson:"text" json:"text"`
	Source       string             `bson:"source" json:"source"`
	CreatedBy    string             `bson:"created_by" json:"createdBy"`
	UsageCount   int64              `bson:"usage_count" json:"usageCount"`
	IsActive     bool               `bson:"is_active" json:"isActive"`
	Category     string             `bson:"category,omitempty" json:"category,omitempty"`
	Tags         []string           `bson:"tags,omitempty" json:"tags,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
