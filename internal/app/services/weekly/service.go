// Package weekly issues one question per member per week.
package weekly

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	assignmentstore "github.com/dalemusser/newsletterhub/internal/app/store/assignments"
	membershipstore "github.com/dalemusser/newsletterhub/internal/app/store/memberships"
	newsletterstore "github.com/dalemusser/newsletterhub/internal/app/store/newsletters"
	questionstore "github.com/dalemusser/newsletterhub/internal/app/store/questions"
	sessionstore "github.com/dalemusser/newsletterhub/internal/app/store/sessions"
	userstore "github.com/dalemusser/newsletterhub/internal/app/store/users"
	weeklystore "github.com/dalemusser/newsletterhub/internal/app/store/weekly"
	"github.com/dalemusser/newsletterhub/internal/app/system/metrics"
	"github.com/dalemusser/newsletterhub/internal/app/system/txn"
	"github.com/dalemusser/newsletterhub/internal/app/system/weekid"
	"github.com/dalemusser/newsletterhub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// AssignedBy marks assignments created by the routine.
const AssignedBy = "system:weekly"

type Service struct {
	db          *mongo.Database
	newsletters *newsletterstore.Store
	members     *membershipstore.Store
	questions   *questionstore.Store
	users       *userstore.Store
	sessions    *sessionstore.Store
	assignments *assignmentstore.Store
	summaries   *weeklystore.Store
	log         *zap.Logger

	now  func() time.Time
	intn func(n int) int
}

type Option func(*Service)

// WithClock overrides the time source used for the week key.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRand overrides the random source used for picks.
func WithRand(r *rand.Rand) Option {
	return func(s *Service) { s.intn = r.IntN }
}

func New(db *mongo.Database, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		db:          db,
		newsletters: newsletterstore.New(db),
		members:     membershipstore.New(db),
		questions:   questionstore.New(db),
		users:       userstore.New(db),
		sessions:    sessionstore.New(db),
		assignments: assignmentstore.New(db),
		summaries:   weeklystore.New(db),
		log:         logger,
		now:         time.Now,
		intn:        rand.IntN,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Pick chooses a question from pool that is not in answered. When every
// question has been answered it picks from the whole pool and reports a
// repeat. ok is false only when pool is empty.
func Pick(pool, answered []primitive.ObjectID, intn func(int) int) (id primitive.ObjectID, repeat, ok bool) {
	if len(pool) == 0 {
		return primitive.NilObjectID, false, false
	}
	seen := make(map[primitive.ObjectID]struct{}, len(answered))
	for _, a := range answered {
		seen[a] = struct{}{}
	}
	fresh := make([]primitive.ObjectID, 0, len(pool))
	for _, q := range pool {
		if _, done := seen[q]; !done {
			fresh = append(fresh, q)
		}
	}
	if len(fresh) == 0 {
		return pool[intn(len(pool))], true, true
	}
	return fresh[intn(len(fresh))], false, true
}

// RunNewsletter assigns this week's questions for one newsletter and writes
// the week's summary. All writes commit together or not at all.
func (s *Service) RunNewsletter(ctx context.Context, newsletterID primitive.ObjectID) (models.WeeklyAssignment, error) {
	now := s.now().UTC()
	summary := models.WeeklyAssignment{
		NewsletterID: newsletterID,
		WeekKey:      weekid.Key(now),
		RunID:        uuid.NewString(),
		Picks:        []models.WeeklyPick{},
		CreatedAt:    now,
	}
	log := s.log.With(
		zap.String("newsletter_id", newsletterID.Hex()),
		zap.String("week", summary.WeekKey),
		zap.String("run_id", summary.RunID))

	qs, err := s.questions.ListByNewsletter(ctx, newsletterID, true)
	if err != nil {
		return summary, err
	}
	pool := make([]primitive.ObjectID, len(qs))
	for i, q := range qs {
		pool[i] = q.ID
	}

	members, err := s.activeMembers(ctx, newsletterID)
	if err != nil {
		return summary, err
	}

	sess, err := s.sessions.GetActive(ctx, newsletterID)
	if err != nil {
		return summary, err
	}
	if sess != nil {
		summary.SessionID = &sess.ID
	}

	type update struct {
		membershipID primitive.ObjectID
		questionID   primitive.ObjectID
	}
	var updates []update
	var issued []models.QuestionAssignment
	repeats := 0

	for _, m := range members {
		qid, repeat, ok := Pick(pool, m.AnsweredQuestions, s.intn)
		if !ok {
			continue
		}
		if repeat {
			repeats++
			log.Warn("member has answered every question; repeating", zap.String("user_id", m.UserID))
		} else {
			updates = append(updates, update{m.ID, qid})
		}
		summary.Picks = append(summary.Picks, models.WeeklyPick{UserID: m.UserID, QuestionID: qid, Repeat: repeat})
		if sess != nil {
			issued = append(issued, models.QuestionAssignment{
				SessionID:    sess.ID,
				NewsletterID: newsletterID,
				UserID:       m.UserID,
				QuestionID:   qid,
				AssignedBy:   AssignedBy,
				AssignedAt:   now,
			})
		}
	}

	err = txn.Run(ctx, s.db.Client(), log, func(ctx context.Context) error {
		for _, u := range updates {
			if err := s.members.AppendAnswered(ctx, u.membershipID, u.questionID); err != nil {
				return err
			}
		}
		for _, p := range summary.Picks {
			if _, err := s.questions.IncrementUsage(ctx, p.QuestionID); err != nil {
				return err
			}
		}
		if err := s.assignments.CreateMany(ctx, issued); err != nil {
			return err
		}
		return s.summaries.Put(ctx, &summary)
	})
	metrics.RecordWeeklyRun(err == nil, len(summary.Picks), repeats)
	if err != nil {
		log.Error("weekly assignment failed", zap.Error(err))
		return summary, err
	}
	log.Info("weekly assignment complete",
		zap.Int("picks", len(summary.Picks)),
		zap.Int("repeats", repeats),
		zap.Int("pool", len(pool)))
	return summary, nil
}

// activeMembers returns active memberships whose user profile is active.
func (s *Service) activeMembers(ctx context.Context, newsletterID primitive.ObjectID) ([]models.Membership, error) {
	ms, err := s.members.ListActiveByNewsletter(ctx, newsletterID)
	if err != nil {
		return nil, err
	}
	uids := make([]string, len(ms))
	for i, m := range ms {
		uids[i] = m.UserID
	}
	users, err := s.users.GetMany(ctx, uids)
	if err != nil {
		return nil, err
	}
	out := ms[:0]
	for _, m := range ms {
		if u, ok := users[m.UserID]; ok && u.IsActive {
			out = append(out, m)
		}
	}
	return out, nil
}

// RunAll runs every active newsletter. A failing newsletter is logged and
// skipped; the returned error joins all failures. n counts successes.
func (s *Service) RunAll(ctx context.Context) (n int, err error) {
	list, err := s.newsletters.ListActive(ctx)
	if err != nil {
		return 0, err
	}
	var errs []error
	for _, nl := range list {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if _, err := s.RunNewsletter(ctx, nl.ID); err != nil {
			errs = append(errs, err)
			continue
		}
		n++
	}
	s.log.Info("weekly assignment run finished",
		zap.Int("newsletters", len(list)),
		zap.Int("succeeded", n),
		zap.Int("failed", len(errs)))
	return n, errors.Join(errs...)
}
