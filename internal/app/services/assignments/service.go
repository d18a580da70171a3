// Package assignments issues questions to members for a session.
package assignments

import (
	"context"
	"time"

	"github.com/dalemusser/newsletterhub/internal/app/policy/newsletterpolicy"
	assignmentstore "github.com/dalemusser/newsletterhub/internal/app/store/assignments"
	questionstore "github.com/dalemusser/newsletterhub/internal/app/store/questions"
	sessionstore "github.com/dalemusser/newsletterhub/internal/app/store/sessions"
	"github.com/dalemusser/newsletterhub/internal/app/system/apperr"
	"github.com/dalemusser/newsletterhub/internal/app/system/txn"
	"github.com/dalemusser/newsletterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Service struct {
	db          *mongo.Database
	assignments *assignmentstore.Store
	sessions    *sessionstore.Store
	questions   *questionstore.Store
	log         *zap.Logger
}

func New(db *mongo.Database, logger *zap.Logger) *Service {
	return &Service{
		db:          db,
		assignments: assignmentstore.New(db),
		sessions:    sessionstore.New(db),
		questions:   questionstore.New(db),
		log:         logger,
	}
}

// AssignInput names the question to issue and to whom.
type AssignInput struct {
	SessionID    primitive.ObjectID `json:"sessionId"`
	NewsletterID primitive.ObjectID `json:"newsletterId"`
	UserID       string             `json:"userId"`
	QuestionID   primitive.ObjectID `json:"questionId"`
}

// Assign issues a question to a user and counts the issue on the question.
// Write access required; the session and question must belong to the
// newsletter.
func (s *Service) Assign(ctx context.Context, assignedBy string, in AssignInput) (models.QuestionAssignment, error) {
	if in.UserID == "" {
		return models.QuestionAssignment{}, apperr.Invalidf("userId is required")
	}
	if err := newsletterpolicy.RequireAccess(ctx, s.db, in.NewsletterID, assignedBy, newsletterpolicy.Write); err != nil {
		return models.QuestionAssignment{}, err
	}
	sess, err := s.sessions.GetByID(ctx, in.SessionID)
	if err != nil || sess.NewsletterID != in.NewsletterID {
		if err != nil && !apperr.Is(err, apperr.NotFound) {
			return models.QuestionAssignment{}, err
		}
		return models.QuestionAssignment{}, apperr.Invalidf("invalid session")
	}
	q, err := s.questions.GetByID(ctx, in.QuestionID)
	if err != nil || q.NewsletterID != in.NewsletterID {
		if err != nil && !apperr.Is(err, apperr.NotFound) {
			return models.QuestionAssignment{}, err
		}
		return models.QuestionAssignment{}, apperr.Invalidf("invalid question")
	}

	a := models.QuestionAssignment{
		SessionID:    in.SessionID,
		NewsletterID: in.NewsletterID,
		UserID:       in.UserID,
		QuestionID:   in.QuestionID,
		AssignedBy:   assignedBy,
		AssignedAt:   time.Now().UTC(),
	}
	err = txn.Run(ctx, s.db.Client(), s.log, func(ctx context.Context) error {
		if err := s.assignments.Create(ctx, &a); err != nil {
			return err
		}
		_, err := s.questions.IncrementUsage(ctx, in.QuestionID)
		return err
	})
	if err != nil {
		return models.QuestionAssignment{}, err
	}
	return a, nil
}

// ListForUser returns targetID's assignments in a session. Allowed for the
// subject and for anyone with read access to the session's newsletter.
func (s *Service) ListForUser(ctx context.Context, sessionID primitive.ObjectID, targetID, requesterID string) ([]models.QuestionAssignment, error) {
	if targetID == "" {
		targetID = requesterID
	}
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if targetID != requesterID {
		if err := newsletterpolicy.RequireAccess(ctx, s.db, sess.NewsletterID, requesterID, newsletterpolicy.Read); err != nil {
			return nil, err
		}
	}
	return s.assignments.ListForUser(ctx, sessionID, targetID)
}
