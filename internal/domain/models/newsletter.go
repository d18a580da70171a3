// internal/domain/models/newsletter.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultMaxMembers is applied when a newsletter is created without a member cap.
const DefaultMaxMembers = 100

// Newsletter is a named group whose members answer weekly questions.
//
// Owners and moderators are not embedded; roles live on
// newsletterMemberships. Deletion is a soft IsActive=false flip.
type Newsletter struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"-"`
	Description string             `bson:"description" json:"description"`
	Prompt      string             `bson:"prompt" json:"prompt"`
	Settings    NewsletterSettings `bson:"settings" json:"settings"`
	IsActive    bool               `bson:"is_active" json:"isActive"`
	CreatedBy   string             `bson:"created_by" json:"createdBy"`
	// MemberSeq is bumped on every member add so concurrent adds conflict.
	MemberSeq int64 `bson:"member_seq,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// NewsletterSettings controls visibility and membership rules.
type NewsletterSettings struct {
	IsPublic                   bool `bson:"is_public" json:"isPublic"`
	RequireApproval            bool `bson:"require_approval" json:"requireApproval"`
	MaxMembers                 int  `bson:"max_members" json:"maxMembers"`
	QuestionSubmissionRequired bool `bson:"question_submission_required" json:"questionSubmissionRequired"`
}

// SettingsInput carries optional settings from a caller; nil fields take defaults.
type SettingsInput struct {
	IsPublic                   *bool `json:"isPublic,omitempty"`
	RequireApproval            *bool `json:"requireApproval,omitempty"`
	MaxMembers                 *int  `json:"maxMembers,omitempty"`
	QuestionSubmissionRequired *bool `json:"questionSubmissionRequired,omitempty"`
}

// Resolve applies the input on top of the creation defaults.
func (in SettingsInput) Resolve() NewsletterSettings {
	s := NewsletterSettings{
		IsPublic:   true,
		MaxMembers: DefaultMaxMembers,
	}
	if in.IsPublic != nil {
		s.IsPublic = *in.IsPublic
	}
	if in.RequireApproval != nil {
		s.RequireApproval = *in.RequireApproval
	}
	if in.MaxMembers != nil && *in.MaxMembers > 0 {
		s.MaxMembers = *in.MaxMembers
	}
	if in.QuestionSubmissionRequired != nil {
		s.QuestionSubmissionRequired = *in.QuestionSubmissionRequired
	}
	return s
}
