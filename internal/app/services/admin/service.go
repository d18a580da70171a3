// Package admin backs the /admin surface: cross-newsletter listings and
// whitelisted edits for users with the admin flag.
package admin

import (
	"context"
	"strings"

	metricsstore "github.com/dalemusser/newsletterhub/internal/app/store/metrics"
	membershipstore "github.com/dalemusser/newsletterhub/internal/app/store/memberships"
	newsletterstore "github.com/dalemusser/newsletterhub/internal/app/store/newsletters"
	questionstore "github.com/dalemusser/newsletterhub/internal/app/store/questions"
	responsestore "github.com/dalemusser/newsletterhub/internal/app/store/responses"
	sessionstore "github.com/dalemusser/newsletterhub/internal/app/store/sessions"
	userstore "github.com/dalemusser/newsletterhub/internal/app/store/users"
	"github.com/dalemusser/newsletterhub/internal/app/system/apperr"
	"github.com/dalemusser/newsletterhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/newsletterhub/internal/app/system/timezones"
	"github.com/dalemusser/newsletterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const unknown = "Unknown"

type Service struct {
	db          *mongo.Database
	users       *userstore.Store
	newsletters *newsletterstore.Store
	members     *membershipstore.Store
	questions   *questionstore.Store
	sessions    *sessionstore.Store
	responses   *responsestore.Store
	log         *zap.Logger
}

func New(db *mongo.Database, logger *zap.Logger) *Service {
	return &Service{
		db:          db,
		users:       userstore.New(db),
		newsletters: newsletterstore.New(db),
		members:     membershipstore.New(db),
		questions:   questionstore.New(db),
		sessions:    sessionstore.New(db),
		responses:   responsestore.New(db),
		log:         logger,
	}
}

// Stats returns collection totals for the admin overview.
func (s *Service) Stats(ctx context.Context) metricsstore.Counts {
	return metricsstore.FetchCounts(ctx, s.db)
}

// IsAdmin reports whether uid has an active admin profile. A missing
// profile is not an error.
func (s *Service) IsAdmin(ctx context.Context, uid string) (bool, error) {
	u, err := s.users.GetByID(ctx, uid)
	if apperr.Is(err, apperr.NotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.IsAdmin && u.IsActive, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

type NewsletterRow struct {
	models.Newsletter
	MemberCount int64  `json:"memberCount"`
	OwnerEmail  string `json:"ownerEmail"`
}

// ListNewsletters returns every newsletter, including soft-deleted ones,
// with its active member count and owner email.
func (s *Service) ListNewsletters(ctx context.Context) ([]NewsletterRow, error) {
	list, err := s.newsletters.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	ids := newsletterIDs(list)
	counts, err := s.members.CountActiveByNewsletter(ctx, ids)
	if err != nil {
		return nil, err
	}
	owners, err := s.members.OwnersOf(ctx, ids)
	if err != nil {
		return nil, err
	}
	uids := make([]string, 0, len(owners))
	for _, uid := range owners {
		uids = append(uids, uid)
	}
	profiles, err := s.users.GetMany(ctx, uids)
	if err != nil {
		return nil, err
	}

	out := make([]NewsletterRow, len(list))
	for i, n := range list {
		email := unknown
		if u, ok := profiles[owners[n.ID]]; ok && u.Email != "" {
			email = u.Email
		}
		out[i] = NewsletterRow{Newsletter: n, MemberCount: counts[n.ID], OwnerEmail: email}
	}
	return out, nil
}

type QuestionRow struct {
	models.Question
	NewsletterName string `json:"newsletterName"`
	ResponseCount  int64  `json:"responseCount"`
}

func (s *Service) ListQuestions(ctx context.Context) ([]QuestionRow, error) {
	list, err := s.questions.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(list))
	nids := make([]primitive.ObjectID, len(list))
	for i, q := range list {
		ids[i], nids[i] = q.ID, q.NewsletterID
	}
	counts, err := s.responses.CountBy(ctx, "question_id", ids)
	if err != nil {
		return nil, err
	}
	names, err := s.newsletterNames(ctx, nids)
	if err != nil {
		return nil, err
	}
	out := make([]QuestionRow, len(list))
	for i, q := range list {
		out[i] = QuestionRow{Question: q, NewsletterName: nameOr(names, q.NewsletterID), ResponseCount: counts[q.ID]}
	}
	return out, nil
}

type SessionRow struct {
	models.Session
	NewsletterName string `json:"newsletterName"`
	ResponseCount  int64  `json:"responseCount"`
}

// ListSessions returns every session, latest week first.
func (s *Service) ListSessions(ctx context.Context) ([]SessionRow, error) {
	list, err := s.sessions.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(list))
	nids := make([]primitive.ObjectID, len(list))
	for i, sess := range list {
		ids[i], nids[i] = sess.ID, sess.NewsletterID
	}
	counts, err := s.responses.CountBy(ctx, "session_id", ids)
	if err != nil {
		return nil, err
	}
	names, err := s.newsletterNames(ctx, nids)
	if err != nil {
		return nil, err
	}
	out := make([]SessionRow, len(list))
	for i, sess := range list {
		out[i] = SessionRow{Session: sess, NewsletterName: nameOr(names, sess.NewsletterID), ResponseCount: counts[sess.ID]}
	}
	return out, nil
}

type ResponseRow struct {
	models.UserResponse
	UserEmail      string `json:"userEmail"`
	QuestionText   string `json:"questionText"`
	NewsletterName string `json:"newsletterName"`
}

// ListResponses returns every response, newest first.
func (s *Service) ListResponses(ctx context.Context) ([]ResponseRow, error) {
	list, err := s.responses.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	uids := make([]string, len(list))
	qids := make([]primitive.ObjectID, len(list))
	nids := make([]primitive.ObjectID, len(list))
	for i, r := range list {
		uids[i], qids[i], nids[i] = r.UserID, r.QuestionID, r.NewsletterID
	}
	profiles, err := s.users.GetMany(ctx, uids)
	if err != nil {
		return nil, err
	}
	qs, err := s.questions.GetMany(ctx, qids)
	if err != nil {
		return nil, err
	}
	names, err := s.newsletterNames(ctx, nids)
	if err != nil {
		return nil, err
	}

	out := make([]ResponseRow, len(list))
	for i, r := range list {
		row := ResponseRow{UserResponse: r, UserEmail: unknown, QuestionText: r.SubmittedQuestion, NewsletterName: nameOr(names, r.NewsletterID)}
		if u, ok := profiles[r.UserID]; ok && u.Email != "" {
			row.UserEmail = u.Email
		}
		if q, ok := qs[r.QuestionID]; ok {
			row.QuestionText = q.Text
		}
		if row.QuestionText == "" {
			row.QuestionText = unknown
		}
		out[i] = row
	}
	return out, nil
}

func newsletterIDs(list []models.Newsletter) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, len(list))
	for i, n := range list {
		ids[i] = n.ID
	}
	return ids
}

func (s *Service) newsletterNames(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	m, err := s.newsletters.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[primitive.ObjectID]string, len(m))
	for id, n := range m {
		out[id] = n.Name
	}
	return out, nil
}

func nameOr(names map[primitive.ObjectID]string, id primitive.ObjectID) string {
	if n := names[id]; n != "" {
		return n
	}
	return unknown
}

// UserPatch lists the user fields an admin may change.
type UserPatch struct {
	DisplayName *string                 `json:"displayName,omitempty"`
	IsActive    *bool                   `json:"isActive,omitempty"`
	IsAdmin     *bool                   `json:"isAdmin,omitempty"`
	Preferences *models.UserPreferences `json:"preferences,omitempty"`
}

// UpdateUser applies patch to uid. An admin cannot revoke their own flag.
func (s *Service) UpdateUser(ctx context.Context, adminID, uid string, patch UserPatch) (models.User, error) {
	set := bson.M{}
	if patch.DisplayName != nil {
		set["display_name"] = htmlsanitize.PlainText(*patch.DisplayName)
	}
	if patch.IsActive != nil {
		set["is_active"] = *patch.IsActive
	}
	if patch.IsAdmin != nil {
		if uid == adminID && !*patch.IsAdmin {
			return models.User{}, apperr.Invalidf("cannot remove your own admin privileges")
		}
		set["is_admin"] = *patch.IsAdmin
	}
	if patch.Preferences != nil {
		if !timezones.Valid(patch.Preferences.Timezone) {
			return models.User{}, apperr.Invalidf("unknown timezone %q", patch.Preferences.Timezone)
		}
		set["preferences"] = *patch.Preferences
	}
	if len(set) == 0 {
		return models.User{}, apperr.Invalidf("no valid fields to update")
	}
	u, err := s.users.Update(ctx, uid, set)
	if err != nil {
		return u, err
	}
	s.log.Info("admin updated user", zap.String("admin_id", adminID), zap.String("user_id", uid))
	return u, nil
}

// NewsletterPatch lists the newsletter fields an admin may change.
type NewsletterPatch struct {
	Name        *string               `json:"name,omitempty"`
	Description *string               `json:"description,omitempty"`
	Prompt      *string               `json:"prompt,omitempty"`
	IsActive    *bool                 `json:"isActive,omitempty"`
	Settings    *models.SettingsInput `json:"settings,omitempty"`
}

func (s *Service) UpdateNewsletter(ctx context.Context, adminID string, id primitive.ObjectID, patch NewsletterPatch) (models.Newsletter, error) {
	set := bson.M{}
	if patch.Name != nil {
		name := htmlsanitize.PlainText(*patch.Name)
		if name == "" {
			return models.Newsletter{}, apperr.Invalidf("name cannot be empty")
		}
		set["name"] = name
	}
	if patch.Description != nil {
		set["description"] = htmlsanitize.PlainText(*patch.Description)
	}
	if patch.Prompt != nil {
		set["prompt"] = strings.TrimSpace(*patch.Prompt)
	}
	if patch.IsActive != nil {
		set["is_active"] = *patch.IsActive
	}
	if st := patch.Settings; st != nil {
		if st.IsPublic != nil {
			set["settings.is_public"] = *st.IsPublic
		}
		if st.RequireApproval != nil {
			set["settings.require_approval"] = *st.RequireApproval
		}
		if st.MaxMembers != nil {
			if *st.MaxMembers <= 0 {
				return models.Newsletter{}, apperr.Invalidf("maxMembers must be positive")
			}
			set["settings.max_members"] = *st.MaxMembers
		}
		if st.QuestionSubmissionRequired != nil {
			set["settings.question_submission_required"] = *st.QuestionSubmissionRequired
		}
	}
	if len(set) == 0 {
		return models.Newsletter{}, apperr.Invalidf("no valid fields to update")
	}
	n, err := s.newsletters.Update(ctx, id, set)
	if err != nil {
		return n, err
	}
	s.log.Info("admin updated newsletter", zap.String("admin_id", adminID), zap.String("newsletter_id", id.Hex()))
	return n, nil
}

// QuestionPatch lists the question fields an admin may change.
type QuestionPatch struct {
	Text     *string   `json:"text,omitempty"`
	IsActive *bool     `json:"isActive,omitempty"`
	Category *string   `json:"category,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
}

func (s *Service) UpdateQuestion(ctx context.Context, adminID string, id primitive.ObjectID, patch QuestionPatch) (models.Question, error) {
	set := bson.M{}
	if patch.Text != nil {
		t := htmlsanitize.PlainText(*patch.Text)
		if t == "" {
			return models.Question{}, apperr.Invalidf("text cannot be empty")
		}
		set["text"] = t
	}
	if patch.IsActive != nil {
		set["is_active"] = *patch.IsActive
	}
	if patch.Category != nil {
		set["category"] = htmlsanitize.PlainText(*patch.Category)
	}
	if patch.Tags != nil {
		set["tags"] = *patch.Tags
	}
	if len(set) == 0 {
		return models.Question{}, apperr.Invalidf("no valid fields to update")
	}
	q, err := s.questions.Update(ctx, id, set)
	if err != nil {
		return q, err
	}
	s.log.Info("admin updated question", zap.String("admin_id", adminID), zap.String("question_id", id.Hex()))
	return q, nil
}

// SessionPatch lists the session fields an admin may change.
type SessionPatch struct {
	Status         *string `json:"status,omitempty"`
	NewsletterSent *bool   `json:"newsletterSent,omitempty"`
}

func (s *Service) UpdateSession(ctx context.Context, adminID string, id primitive.ObjectID, patch SessionPatch) (models.Session, error) {
	set := bson.M{}
	if patch.Status != nil {
		if !models.ValidSessionStatus(*patch.Status) {
			return models.Session{}, apperr.Invalidf("status must be active, pending or completed")
		}
		set["status"] = *patch.Status
	}
	if patch.NewsletterSent != nil {
		set["newsletter_sent"] = *patch.NewsletterSent
	}
	if len(set) == 0 {
		return models.Session{}, apperr.Invalidf("no valid fields to update")
	}
	sess, err := s.sessions.Update(ctx, id, set)
	if err != nil {
		return sess, err
	}
	s.log.Info("admin updated session", zap.String("admin_id", adminID), zap.String("session_id", id.Hex()))
	return sess, nil
}

// DeleteSession removes a session. Its responses are kept.
func (s *Service) DeleteSession(ctx context.Context, adminID string, id primitive.ObjectID) error {
	if err := s.sessions.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("admin deleted session", zap.String("admin_id", adminID), zap.String("session_id", id.Hex()))
	return nil
}

func (s *Service) DeleteResponse(ctx context.Context, adminID string, id primitive.ObjectID) error {
	if err := s.responses.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("admin deleted response", zap.String("admin_id", adminID), zap.String("response_id", id.Hex()))
	return nil
}
