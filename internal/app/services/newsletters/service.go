// Package newsletters holds newsletter and membership operations.
package newsletters

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/newsletterhub/internal/app/policy/newsletterpolicy"
	membershipstore "github.com/dalemusser/newsletterhub/internal/app/store/memberships"
	newsletterstore "github.com/dalemusser/newsletterhub/internal/app/store/newsletters"
	userstore "github.com/dalemusser/newsletterhub/internal/app/store/users"
	"github.com/dalemusser/newsletterhub/internal/app/system/apperr"
	"github.com/dalemusser/newsletterhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/newsletterhub/internal/app/system/limits"
	"github.com/dalemusser/newsletterhub/internal/app/system/txn"
	"github.com/dalemusser/newsletterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Service struct {
	db          *mongo.Database
	newsletters *newsletterstore.Store
	members     *membershipstore.Store
	users       *userstore.Store
	log         *zap.Logger
}

func New(db *mongo.Database, logger *zap.Logger) *Service {
	return &Service{
		db:          db,
		newsletters: newsletterstore.New(db),
		members:     membershipstore.New(db),
		users:       userstore.New(db),
		log:         logger,
	}
}

// CreateInput is the caller-supplied part of a new newsletter.
type CreateInput struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Prompt      string               `json:"prompt"`
	Settings    models.SettingsInput `json:"settings"`
}

// Create stores a newsletter and makes ownerID its owner.
func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (models.Newsletter, error) {
	name := htmlsanitize.PlainText(in.Name)
	if name == "" {
		return models.Newsletter{}, apperr.Invalidf("name is required")
	}
	if len(name) > limits.MaxNewsletterName {
		return models.Newsletter{}, apperr.Invalidf("name is too long")
	}
	if len(in.Prompt) > limits.MaxPrompt {
		return models.Newsletter{}, apperr.Invalidf("prompt is too long")
	}
	if in.Settings.MaxMembers != nil && *in.Settings.MaxMembers < 1 {
		return models.Newsletter{}, apperr.Invalidf("maxMembers must be at least 1")
	}

	now := time.Now().UTC()
	n := models.Newsletter{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Description: htmlsanitize.PlainText(in.Description),
		Prompt:      strings.TrimSpace(in.Prompt),
		Settings:    in.Settings.Resolve(),
		IsActive:    true,
		CreatedBy:   ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := txn.Run(ctx, s.db.Client(), s.log, func(ctx context.Context) error {
		if err := s.newsletters.Create(ctx, &n); err != nil {
			return err
		}
		return s.members.Add(ctx, &models.Membership{
			NewsletterID: n.ID,
			UserID:       ownerID,
			Role:         models.RoleOwner,
			AddedBy:      ownerID,
			JoinedAt:     now,
		})
	})
	if err != nil {
		return models.Newsletter{}, err
	}
	s.log.Info("newsletter created", zap.String("newsletter_id", n.ID.Hex()), zap.String("owner", ownerID))
	return n, nil
}

// Get returns the newsletter if userID may read it.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID, userID string) (models.Newsletter, error) {
	if err := s.requireReadable(ctx, id, userID); err != nil {
		return models.Newsletter{}, err
	}
	return s.newsletters.GetActive(ctx, id)
}

// requireReadable distinguishes a missing newsletter (NotFound) from a
// denied one (Unauthorized).
func (s *Service) requireReadable(ctx context.Context, id primitive.ObjectID, userID string) error {
	ok, err := newsletterpolicy.HasAccess(ctx, s.db, id, userID, newsletterpolicy.Read)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if _, err := s.newsletters.GetActive(ctx, id); err != nil {
		return err
	}
	return apperr.Unauthorizedf("unauthorized")
}

// ListForUser returns the active newsletters in which userID is an active member.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]models.Newsletter, error) {
	ms, err := s.members.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(ms))
	for _, m := range ms {
		ids = append(ids, m.NewsletterID)
	}
	return s.newsletters.ListActiveByIDs(ctx, ids)
}

// UpdateInput is a partial update. Nil fields are left unchanged.
type UpdateInput struct {
	Name        *string               `json:"name,omitempty"`
	Description *string               `json:"description,omitempty"`
	Prompt      *string               `json:"prompt,omitempty"`
	Settings    *models.SettingsInput `json:"settings,omitempty"`
}

// Update patches name, description, prompt and settings. Write access required.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, userID string, in UpdateInput) (models.Newsletter, error) {
	if err := newsletterpolicy.RequireAccess(ctx, s.db, id, userID, newsletterpolicy.Write); err != nil {
		return models.Newsletter{}, err
	}
	set, err := in.toSet()
	if err != nil {
		return models.Newsletter{}, err
	}
	if len(set) == 0 {
		return s.newsletters.GetActive(ctx, id)
	}
	return s.newsletters.Update(ctx, id, set)
}

func (in UpdateInput) toSet() (bson.M, error) {
	set := bson.M{}
	if in.Name != nil {
		name := htmlsanitize.PlainText(*in.Name)
		if name == "" {
			return nil, apperr.Invalidf("name cannot be empty")
		}
		if len(name) > limits.MaxNewsletterName {
			return nil, apperr.Invalidf("name is too long")
		}
		set["name"] = name
	}
	if in.Description != nil {
		set["description"] = htmlsanitize.PlainText(*in.Description)
	}
	if in.Prompt != nil {
		if len(*in.Prompt) > limits.MaxPrompt {
			return nil, apperr.Invalidf("prompt is too long")
		}
		set["prompt"] = strings.TrimSpace(*in.Prompt)
	}
	if st := in.Settings; st != nil {
		if st.IsPublic != nil {
			set["settings.is_public"] = *st.IsPublic
		}
		if st.RequireApproval != nil {
			set["settings.require_approval"] = *st.RequireApproval
		}
		if st.MaxMembers != nil {
			if *st.MaxMembers < 1 {
				return nil, apperr.Invalidf("maxMembers must be at least 1")
			}
			set["settings.max_members"] = *st.MaxMembers
		}
		if st.QuestionSubmissionRequired != nil {
			set["settings.question_submission_required"] = *st.QuestionSubmissionRequired
		}
	}
	return set, nil
}

// Delete soft-deletes the newsletter. Owner only.
func (s *Service) Delete(ctx context.Context, id primitive.ObjectID, userID string) error {
	if _, err := s.newsletters.GetActive(ctx, id); err != nil {
		return err
	}
	if err := newsletterpolicy.RequireOwner(ctx, s.db, id, userID); err != nil {
		return err
	}
	if _, err := s.newsletters.Update(ctx, id, bson.M{"is_active": false}); err != nil {
		return err
	}
	s.log.Info("newsletter deleted", zap.String("newsletter_id", id.Hex()), zap.String("by", userID))
	return nil
}
