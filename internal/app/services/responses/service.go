// Package responses records members' answers.
package responses

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/newsletterhub/internal/app/policy/newsletterpolicy"
	assignmentstore "github.com/dalemusser/newsletterhub/internal/app/store/assignments"
	responsestore "github.com/dalemusser/newsletterhub/internal/app/store/responses"
	sessionstore "github.com/dalemusser/newsletterhub/internal/app/store/sessions"
	"github.com/dalemusser/newsletterhub/internal/app/system/apperr"
	"github.com/dalemusser/newsletterhub/internal/app/system/limits"
	"github.com/dalemusser/newsletterhub/internal/app/system/txn"
	"github.com/dalemusser/newsletterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Service struct {
	db          *mongo.Database
	responses   *responsestore.Store
	sessions    *sessionstore.Store
	assignments *assignmentstore.Store
	log         *zap.Logger
}

func New(db *mongo.Database, logger *zap.Logger) *Service {
	return &Service{
		db:          db,
		responses:   responsestore.New(db),
		sessions:    sessionstore.New(db),
		assignments: assignmentstore.New(db),
		log:         logger,
	}
}

// SubmitInput is one answer to one question.
type SubmitInput struct {
	NewsletterID      primitive.ObjectID `json:"newsletterId"`
	SessionID         primitive.ObjectID `json:"sessionId"`
	QuestionID        primitive.ObjectID `json:"questionId"`
	Response          string             `json:"response"`
	IsPublic          bool               `json:"isPublic"`
	SubmittedQuestion string             `json:"submittedQuestion,omitempty"`
}

// WordCount counts whitespace-separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// Submit stores the response and marks the matching assignment answered.
// Read access on the newsletter required; the session must belong to it.
func (s *Service) Submit(ctx context.Context, userID string, in SubmitInput) (models.UserResponse, error) {
	body := strings.TrimSpace(in.Response)
	if body == "" {
		return models.UserResponse{}, apperr.Invalidf("response is required")
	}
	if len(body) > limits.MaxResponse {
		return models.UserResponse{}, apperr.Invalidf("response is too long")
	}
	if in.QuestionID.IsZero() {
		return models.UserResponse{}, apperr.Invalidf("questionId is required")
	}
	if err := newsletterpolicy.RequireAccess(ctx, s.db, in.NewsletterID, userID, newsletterpolicy.Read); err != nil {
		return models.UserResponse{}, err
	}
	sess, err := s.sessions.GetByID(ctx, in.SessionID)
	if err != nil || sess.NewsletterID != in.NewsletterID {
		if err != nil && !apperr.Is(err, apperr.NotFound) {
			return models.UserResponse{}, err
		}
		return models.UserResponse{}, apperr.Invalidf("invalid session")
	}

	now := time.Now().UTC()
	r := models.UserResponse{
		ID:                primitive.NewObjectID(),
		NewsletterID:      in.NewsletterID,
		SessionID:         in.SessionID,
		UserID:            userID,
		QuestionID:        in.QuestionID,
		Response:          body,
		SubmittedQuestion: strings.TrimSpace(in.SubmittedQuestion),
		WordCount:         WordCount(body),
		IsPublic:          in.IsPublic,
		SubmittedAt:       now,
	}

	err = txn.Run(ctx, s.db.Client(), s.log, func(ctx context.Context) error {
		if err := s.responses.Create(ctx, &r); err != nil {
			return err
		}
		_, err := s.assignments.MarkAnswered(ctx, in.SessionID, userID, in.QuestionID, now)
		return err
	})
	if err != nil {
		return models.UserResponse{}, err
	}
	return r, nil
}

// ListForSession returns every response in the session. Read access required.
func (s *Service) ListForSession(ctx context.Context, sessionID primitive.ObjectID, userID string) ([]models.UserResponse, error) {
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := newsletterpolicy.RequireAccess(ctx, s.db, sess.NewsletterID, userID, newsletterpolicy.Read); err != nil {
		return nil, err
	}
	return s.responses.ListBySession(ctx, sessionID)
}

// ListForUserInSession returns targetID's responses. Allowed for the subject
// and for users with write access to the session's newsletter.
func (s *Service) ListForUserInSession(ctx context.Context, sessionID primitive.ObjectID, targetID, requesterID string) ([]models.UserResponse, error) {
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if targetID != requesterID {
		if err := newsletterpolicy.RequireAccess(ctx, s.db, sess.NewsletterID, requesterID, newsletterpolicy.Write); err != nil {
			return nil, err
		}
	}
	return s.responses.ListBySessionUser(ctx, sessionID, targetID)
}
