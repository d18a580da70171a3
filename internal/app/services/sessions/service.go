// Package sessions manages weekly sessions and their question assignments.
package sessions

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/newsletterhub/internal/app/policy/newsletterpolicy"
	sessionstore "github.com/dalemusser/newsletterhub/internal/app/store/sessions"
	"github.com/dalemusser/newsletterhub/internal/app/system/apperr"
	"github.com/dalemusser/newsletterhub/internal/app/system/weekid"
	"github.com/dalemusser/newsletterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Service struct {
	db       *mongo.Database
	sessions *sessionstore.Store
	log      *zap.Logger
	now      func() time.Time
}

func New(db *mongo.Database, logger *zap.Logger) *Service {
	return &Service{db: db, sessions: sessionstore.New(db), log: logger, now: time.Now}
}

// CreateInput describes a new session. Missing week fields default to the
// current ISO week; a missing status defaults to active.
type CreateInput struct {
	NewsletterID   primitive.ObjectID `json:"newsletterId"`
	WeekIdentifier string             `json:"weekIdentifier"`
	WeekStart      *time.Time         `json:"weekStart,omitempty"`
	WeekEnd        *time.Time         `json:"weekEnd,omitempty"`
	Status         string             `json:"status"`
}

// Create stores a session. Write access required.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (models.Session, error) {
	status := in.Status
	if status == "" {
		status = models.SessionActive
	}
	if !models.ValidSessionStatus(status) {
		return models.Session{}, apperr.Invalidf("status must be active, pending or completed")
	}
	if err := newsletterpolicy.RequireAccess(ctx, s.db, in.NewsletterID, userID, newsletterpolicy.Write); err != nil {
		return models.Session{}, err
	}

	now := s.now().UTC()
	start, end := weekid.Bounds(now)
	if in.WeekStart != nil {
		start = in.WeekStart.UTC()
	}
	if in.WeekEnd != nil {
		end = in.WeekEnd.UTC()
	}
	if end.Before(start) {
		return models.Session{}, apperr.Invalidf("weekEnd is before weekStart")
	}
	week := strings.TrimSpace(in.WeekIdentifier)
	if week == "" {
		week = weekid.Key(start)
	}

	sess := models.Session{
		NewsletterID:   in.NewsletterID,
		WeekIdentifier: week,
		WeekStart:      start,
		WeekEnd:        end,
		Status:         status,
		CreatedBy:      userID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.sessions.Create(ctx, &sess); err != nil {
		return models.Session{}, err
	}
	s.log.Info("session created",
		zap.String("newsletter_id", in.NewsletterID.Hex()),
		zap.String("session_id", sess.ID.Hex()),
		zap.String("week", week))
	return sess, nil
}

// UpdateInput is a partial update. Identity and ownership fields are not
// part of it.
type UpdateInput struct {
	WeekIdentifier   *string    `json:"weekIdentifier,omitempty"`
	WeekStart        *time.Time `json:"weekStart,omitempty"`
	WeekEnd          *time.Time `json:"weekEnd,omitempty"`
	Status           *string    `json:"status,omitempty"`
	NewsletterSent   *bool      `json:"newsletterSent,omitempty"`
	ParticipantCount *int       `json:"participantCount,omitempty"`
}

// Update patches a session. Write access on its newsletter required.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, userID string, in UpdateInput) (models.Session, error) {
	sess, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return sess, err
	}
	if err := newsletterpolicy.RequireAccess(ctx, s.db, sess.NewsletterID, userID, newsletterpolicy.Write); err != nil {
		return models.Session{}, err
	}

	set := bson.M{}
	if in.WeekIdentifier != nil {
		w := strings.TrimSpace(*in.WeekIdentifier)
		if w == "" {
			return models.Session{}, apperr.Invalidf("weekIdentifier cannot be empty")
		}
		set["week_identifier"] = w
	}
	start, end := sess.WeekStart, sess.WeekEnd
	if in.WeekStart != nil {
		start = in.WeekStart.UTC()
		set["week_start"] = start
	}
	if in.WeekEnd != nil {
		end = in.WeekEnd.UTC()
		set["week_end"] = end
	}
	if end.Before(start) {
		return models.Session{}, apperr.Invalidf("weekEnd is before weekStart")
	}
	if in.Status != nil {
		if !models.ValidSessionStatus(*in.Status) {
			return models.Session{}, apperr.Invalidf("status must be active, pending or completed")
		}
		set["status"] = *in.Status
	}
	if in.NewsletterSent != nil {
		set["newsletter_sent"] = *in.NewsletterSent
	}
	if in.ParticipantCount != nil {
		if *in.ParticipantCount < 0 {
			return models.Session{}, apperr.Invalidf("participantCount cannot be negative")
		}
		set["participant_count"] = *in.ParticipantCount
	}
	if len(set) == 0 {
		return sess, nil
	}
	return s.sessions.Update(ctx, id, set)
}

// GetActive returns the newsletter's active session or nil. Read access required.
func (s *Service) GetActive(ctx context.Context, newsletterID primitive.ObjectID, userID string) (*models.Session, error) {
	if err := newsletterpolicy.RequireAccess(ctx, s.db, newsletterID, userID, newsletterpolicy.Read); err != nil {
		return nil, err
	}
	return s.sessions.GetActive(ctx, newsletterID)
}
