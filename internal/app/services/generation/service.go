// Package generation turns a session's responses into newsletter text.
package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/newsletterhub/internal/app/policy/newsletterpolicy"
	newsletterstore "github.com/dalemusser/newsletterhub/internal/app/store/newsletters"
	questionstore "github.com/dalemusser/newsletterhub/internal/app/store/questions"
	responsestore "github.com/dalemusser/newsletterhub/internal/app/store/responses"
	sessionstore "github.com/dalemusser/newsletterhub/internal/app/store/sessions"
	"github.com/dalemusser/newsletterhub/internal/app/system/apperr"
	"github.com/dalemusser/newsletterhub/internal/app/system/ratelimit"
	"github.com/dalemusser/newsletterhub/internal/app/system/textgen"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	// DefaultInstruction is used when a newsletter has no prompt of its own.
	DefaultInstruction = "Create a lighthearted, personal summary that highlights interesting or funny points. Weave the responses into a cohesive narrative rather than just listing them."

	// UnknownQuestion stands in for a question that no longer resolves.
	UnknownQuestion = "Unknown Question"

	// Apology is returned in place of generated text when generation fails.
	Apology = "There was an error generating the newsletter summary. Please try again later."
)

// ResponseInput is one answer to feed into the prompt.
type ResponseInput struct {
	QuestionID primitive.ObjectID `json:"questionId"`
	Response   string             `json:"response"`
}

// QA is a resolved question and its answer.
type QA struct {
	Question string
	Response string
}

// BuildPrompt renders the single prompt sent to the generator.
func BuildPrompt(instruction string, pairs []QA) string {
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = "Question: " + p.Question + "\nResponse: " + p.Response
	}
	return fmt.Sprintf(`You are a friendly and engaging newsletter editor. Your task is to create a summary of the following responses from a group that share a newsletter. Each response may be to a different question.

  The owner of this newsletter has specified the following instructions: %s

  Here are the questions and responses:
  %s`, instruction, strings.Join(parts, "\n---\n"))
}

type Service struct {
	db          *mongo.Database
	newsletters *newsletterstore.Store
	questions   *questionstore.Store
	sessions    *sessionstore.Store
	responses   *responsestore.Store
	gen         textgen.Generator
	limiter     *ratelimit.Limiter
	log         *zap.Logger
}

// New builds the service. limiter caps GenerateForSession calls per user;
// nil means unlimited.
func New(db *mongo.Database, gen textgen.Generator, limiter *ratelimit.Limiter, logger *zap.Logger) *Service {
	if limiter == nil {
		limiter = ratelimit.New(0, time.Hour)
	}
	return &Service{
		db:          db,
		newsletters: newsletterstore.New(db),
		questions:   questionstore.New(db),
		sessions:    sessionstore.New(db),
		responses:   responsestore.New(db),
		gen:         gen,
		limiter:     limiter,
		log:         logger,
	}
}

// Compose resolves questions and the newsletter's instruction, then calls
// the generator once. It never fails: on any error it returns Apology.
func (s *Service) Compose(ctx context.Context, newsletterID primitive.ObjectID, in []ResponseInput) string {
	text, _ := s.compose(ctx, newsletterID, in)
	return text
}

func (s *Service) compose(ctx context.Context, newsletterID primitive.ObjectID, in []ResponseInput) (string, bool) {
	log := s.log.With(zap.String("newsletter_id", newsletterID.Hex()))

	instruction := DefaultInstruction
	n, err := s.newsletters.GetByID(ctx, newsletterID)
	switch {
	case err == nil:
		if p := strings.TrimSpace(n.Prompt); p != "" {
			instruction = p
		}
	case !apperr.Is(err, apperr.NotFound):
		log.Error("load newsletter for generation", zap.Error(err))
		return Apology, false
	}

	ids := make([]primitive.ObjectID, 0, len(in))
	for _, r := range in {
		ids = append(ids, r.QuestionID)
	}
	qs, err := s.questions.GetMany(ctx, ids)
	if err != nil {
		log.Error("load questions for generation", zap.Error(err))
		return Apology, false
	}

	pairs := make([]QA, len(in))
	for i, r := range in {
		text := UnknownQuestion
		if q, ok := qs[r.QuestionID]; ok && q.NewsletterID == newsletterID {
			text = q.Text
		}
		pairs[i] = QA{Question: text, Response: r.Response}
	}

	out, err := s.gen.Generate(ctx, BuildPrompt(instruction, pairs))
	if err != nil {
		log.Error("generate newsletter summary", zap.Error(err), zap.Int("responses", len(in)))
		return Apology, false
	}
	return out, true
}

// Result is the outcome of GenerateForSession. Generated is false when the
// text is Apology.
type Result struct {
	Summary   string `json:"summary"`
	Generated bool   `json:"generated"`
}

// GenerateForSession composes a summary of the session's responses and
// stores it on the session. Write access required. A failed generation
// returns Apology and leaves any earlier summary in place.
func (s *Service) GenerateForSession(ctx context.Context, newsletterID, sessionID primitive.ObjectID, userID string) (Result, error) {
	if err := newsletterpolicy.RequireAccess(ctx, s.db, newsletterID, userID, newsletterpolicy.Write); err != nil {
		return Result{}, err
	}
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil || sess.NewsletterID != newsletterID {
		if err != nil && !apperr.Is(err, apperr.NotFound) {
			return Result{}, err
		}
		return Result{}, apperr.Invalidf("invalid session")
	}
	rs, err := s.responses.ListBySession(ctx, sessionID)
	if err != nil {
		return Result{}, err
	}
	if len(rs) == 0 {
		return Result{}, apperr.Invalidf("no responses found to generate a newsletter")
	}
	if !s.limiter.Allow(userID) {
		return Result{}, apperr.New(apperr.RateLimited, "generation limit reached; try again later")
	}

	in := make([]ResponseInput, len(rs))
	for i, r := range rs {
		in[i] = ResponseInput{QuestionID: r.QuestionID, Response: r.Response}
	}
	text, ok := s.compose(ctx, newsletterID, in)
	if !ok {
		return Result{Summary: text}, nil
	}
	if _, err := s.sessions.Update(ctx, sessionID, bson.M{"generated_newsletter": text}); err != nil {
		return Result{}, err
	}
	s.log.Info("newsletter generated",
		zap.String("newsletter_id", newsletterID.Hex()),
		zap.String("session_id", sessionID.Hex()),
		zap.Int("responses", len(rs)))
	return Result{Summary: text, Generated: true}, nil
}
