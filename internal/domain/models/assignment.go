// internal/domain/models/assignment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QuestionAssignment records that a question was issued to a user for a session.
type QuestionAssignment struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	SessionID    primitive.ObjectID `bson:"session_id" json:"sessionId"`
	NewsletterID primitive.ObjectID `bson:"newsletter_id" json:"newsletterId"`
	UserID       string             `bson:"user_id" json:"userId"`
	QuestionID   primitive.ObjectID `bson:"question_id" json:"questionId"`
	AssignedBy   string             `bson:"assigned_by,omitempty" json:"assignedBy,omitempty"`
	Answered     bool               `bson:"answered" json:"answered"`

	AssignedAt time.Time  `bson:"assigned_at" json:"assignedAt"`
	AnsweredAt *time.Time `bson:"answered_at,omitempty" json:"answeredAt,omitempty"`
}

// WeeklyAssignment is the week-keyed summary written by the weekly routine.
// ID is "<newsletter hex>:<week key>", so a second run in the same week
// replaces the summary rather than adding one.
type WeeklyAssignment struct {
	ID           string              `bson:"_id" json:"id"`
	NewsletterID primitive.ObjectID  `bson:"newsletter_id" json:"newsletterId"`
	WeekKey      string              `bson:"week_key" json:"weekKey"`
	SessionID    *primitive.ObjectID `bson:"session_id,omitempty" json:"sessionId,omitempty"`
	RunID        string              `bson:"run_id" json:"runId"`
	Picks        []WeeklyPick        `bson:"picks" json:"picks"`
	CreatedAt    time.Time           `bson:"created_at" json:"createdAt"`
}

// WeeklyPick is one user's question for the week. Repeat is set when the
// user had already answered every active question.
type WeeklyPick struct {
	UserID     string             `bson:"user_id" json:"userId"`
	QuestionID primitive.ObjectID `bson:"question_id" json:"questionId"`
	Repeat     bool               `bson:"repeat" json:"repeat"`
}
