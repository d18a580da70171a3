// Package questions manages a newsletter's question pool.
package questions

import (
	"context"
	"time"

	"github.com/dalemusser/newsletterhub/internal/app/policy/newsletterpolicy"
	questionstore "github.com/dalemusser/newsletterhub/internal/app/store/questions"
	"github.com/dalemusser/newsletterhub/internal/app/system/apperr"
	"github.com/dalemusser/newsletterhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/newsletterhub/internal/app/system/limits"
	"github.com/dalemusser/newsletterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Service struct {
	db        *mongo.Database
	questions *questionstore.Store
	log       *zap.Logger
}

func New(db *mongo.Database, logger *zap.Logger) *Service {
	return &Service{db: db, questions: questionstore.New(db), log: logger}
}

// List returns the newsletter's active questions. Read access required.
func (s *Service) List(ctx context.Context, newsletterID primitive.ObjectID, userID string) ([]models.Question, error) {
	if err := newsletterpolicy.RequireAccess(ctx, s.db, newsletterID, userID, newsletterpolicy.Read); err != nil {
		return nil, err
	}
	return s.questions.ListByNewsletter(ctx, newsletterID, true)
}

// Get returns a question if userID may read its newsletter.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID, userID string) (models.Question, error) {
	q, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return q, err
	}
	if err := newsletterpolicy.RequireAccess(ctx, s.db, q.NewsletterID, userID, newsletterpolicy.Read); err != nil {
		return models.Question{}, err
	}
	return q, nil
}

// AddInput describes a new question.
type AddInput struct {
	NewsletterID primitive.ObjectID `json:"newsletterId"`
	Text         string             `json:"text"`
	Source       string             `json:"source"`
	Category     string             `json:"category"`
	Tags         []string           `json:"tags"`
}

// Add creates a question. Write access required.
func (s *Service) Add(ctx context.Context, userID string, in AddInput) (models.Question, error) {
	body := htmlsanitize.PlainText(in.Text)
	if body == "" {
		return models.Question{}, apperr.Invalidf("text is required")
	}
	if len(body) > limits.MaxQuestionText {
		return models.Question{}, apperr.Invalidf("text is too long")
	}
	source := in.Source
	if source == "" {
		source = models.SourceUser
	}
	if !models.ValidSource(source) {
		return models.Question{}, apperr.Invalidf("source must be user, admin or llm")
	}
	tags, err := cleanTags(in.Tags)
	if err != nil {
		return models.Question{}, err
	}
	if err := newsletterpolicy.RequireAccess(ctx, s.db, in.NewsletterID, userID, newsletterpolicy.Write); err != nil {
		return models.Question{}, err
	}

	now := time.Now().UTC()
	q := models.Question{
		NewsletterID: in.NewsletterID,
		Text:         body,
		Source:       source,
		CreatedBy:    userID,
		IsActive:     true,
		Category:     htmlsanitize.PlainText(in.Category),
		Tags:         tags,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.questions.Create(ctx, &q); err != nil {
		return models.Question{}, err
	}
	return q, nil
}

func cleanTags(in []string) ([]string, error) {
	if len(in) > limits.MaxQuestionTags {
		return nil, apperr.Invalidf("too many tags")
	}
	out := make([]string, 0, len(in))
	for _, t := range in {
		if t = htmlsanitize.PlainText(t); t != "" {
			out = append(out, t)
		}
	}
	return out, nil
}

// UpdateInput is a partial update limited to editable fields.
type UpdateInput struct {
	Text     *string   `json:"text,omitempty"`
	Category *string   `json:"category,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
	IsActive *bool     `json:"isActive,omitempty"`
}

// Update patches a question. Write access on its newsletter required.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, userID string, in UpdateInput) (models.Question, error) {
	q, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return q, err
	}
	if err := newsletterpolicy.RequireAccess(ctx, s.db, q.NewsletterID, userID, newsletterpolicy.Write); err != nil {
		return models.Question{}, err
	}

	set := bson.M{}
	if in.Text != nil {
		body := htmlsanitize.PlainText(*in.Text)
		if body == "" {
			return models.Question{}, apperr.Invalidf("text cannot be empty")
		}
		if len(body) > limits.MaxQuestionText {
			return models.Question{}, apperr.Invalidf("text is too long")
		}
		set["text"] = body
	}
	if in.Category != nil {
		set["category"] = htmlsanitize.PlainText(*in.Category)
	}
	if in.Tags != nil {
		tags, err := cleanTags(*in.Tags)
		if err != nil {
			return models.Question{}, err
		}
		set["tags"] = tags
	}
	if in.IsActive != nil {
		set["is_active"] = *in.IsActive
	}
	if len(set) == 0 {
		return q, nil
	}
	return s.questions.Update(ctx, id, set)
}

// Delete deactivates a question. Write access on its newsletter required.
func (s *Service) Delete(ctx context.Context, id primitive.ObjectID, userID string) error {
	inactive := false
	_, err := s.Update(ctx, id, userID, UpdateInput{IsActive: &inactive})
	return err
}
