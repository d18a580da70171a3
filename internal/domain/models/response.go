// internal/domain/models/response.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserResponse is a submitted answer to an assigned question.
type UserResponse struct {
	ID                primitive.ObjectID `bson:"_id" json:"id"`
	NewsletterID      primitive.ObjectID `bson:"newsletter_id" json:"newsletterId"`
	SessionID         primitive.ObjectID `bson:"session_id" json:"sessionId"`
	UserID            string             `bson:"user_id" json:"userId"`
	QuestionID        primitive.ObjectID `bson:"question_id" json:"questionId"`
	Response          string             `bson:"response" json:"response"`
	SubmittedQuestion string             `bson:"submitted_question,omitempty" json:"submittedQuestion,omitempty"`
	WordCount         int                `bson:"word_count" json:"wordCount"`
	IsPublic          bool               `bson:"is_public" json:"isPublic"`
	SubmittedAt       time.Time          `bson:"submitted_at" json:"submittedAt"`
}
