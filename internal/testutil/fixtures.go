package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/newsletterhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("insert into %s: %v", coll, err)
	}
}

// CreateUser creates an active, non-admin profile with the given uid.
func (f *Fixtures) CreateUser(ctx context.Context, uid, displayName string) models.User {
	f.t.Helper()
	now := time.Now().UTC()
	u := models.User{
		ID:            uid,
		Email:         uid + "@test.com",
		DisplayName:   displayName,
		DisplayNameCI: text.Fold(displayName),
		IsActive:      true,
		Preferences:   models.DefaultPreferences(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	f.insert(ctx, models.CollUsers, u)
	return u
}

// CreateAdmin creates an active admin profile.
func (f *Fixtures) CreateAdmin(ctx context.Context, uid, displayName string) models.User {
	f.t.Helper()
	u := f.CreateUser(ctx, uid, displayName)
	u.IsAdmin = true
	f.setField(ctx, models.CollUsers, uid, "is_admin", true)
	return u
}

// CreateInactiveUser creates a profile with IsActive=false.
func (f *Fixtures) CreateInactiveUser(ctx context.Context, uid, displayName string) models.User {
	f.t.Helper()
	u := f.CreateUser(ctx, uid, displayName)
	u.IsActive = false
	f.setField(ctx, models.CollUsers, uid, "is_active", false)
	return u
}

func (f *Fixtures) setField(ctx context.Context, coll string, id any, field string, v any) {
	f.t.Helper()
	_, err := f.db.Collection(coll).UpdateByID(ctx, id, bson.M{"$set": bson.M{field: v}})
	if err != nil {
		f.t.Fatalf("update %s.%s: %v", coll, field, err)
	}
}

// CreateNewsletter creates an active newsletter owned by ownerUID, including
// the owner's membership.
func (f *Fixtures) CreateNewsletter(ctx context.Context, ownerUID, name string, public bool) models.Newsletter {
	f.t.Helper()
	now := time.Now().UTC()
	n := models.Newsletter{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Settings:  models.NewsletterSettings{IsPublic: public, MaxMembers: models.DefaultMaxMembers},
		IsActive:  true,
		CreatedBy: ownerUID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, models.CollNewsletters, n)
	f.AddMember(ctx, n.ID, ownerUID, models.RoleOwner)
	return n
}

// SetPrompt sets the generation instructions on a newsletter.
func (f *Fixtures) SetPrompt(ctx context.Context, newsletterID primitive.ObjectID, prompt string) {
	f.t.Helper()
	f.setField(ctx, models.CollNewsletters, newsletterID, "prompt", prompt)
}

// AddMember creates an active membership.
func (f *Fixtures) AddMember(ctx context.Context, newsletterID primitive.ObjectID, uid, role string, answered ...primitive.ObjectID) models.Membership {
	f.t.Helper()
	now := time.Now().UTC()
	if answered == nil {
		answered = []primitive.ObjectID{}
	}
	m := models.Membership{
		ID:                primitive.NewObjectID(),
		NewsletterID:      newsletterID,
		UserID:            uid,
		Role:              role,
		IsActive:          true,
		AnsweredQuestions: answered,
		JoinedAt:          now,
		UpdatedAt:         now,
	}
	f.insert(ctx, models.CollMemberships, m)
	return m
}

// CreateQuestion creates an active admin-sourced question.
func (f *Fixtures) CreateQuestion(ctx context.Context, newsletterID primitive.ObjectID, body string) models.Question {
	f.t.Helper()
	now := time.Now().UTC()
	q := models.Question{
		ID:           primitive.NewObjectID(),
		NewsletterID: newsletterID,
		Text:         body,
		Source:       models.SourceAdmin,
		CreatedBy:    "fixture",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.insert(ctx, models.CollQuestions, q)
	return q
}

// CreateSession creates a session for the current ISO week with the given status.
func (f *Fixtures) CreateSession(ctx context.Context, newsletterID primitive.ObjectID, week, status string) models.Session {
	f.t.Helper()
	now := time.Now().UTC()
	s := models.Session{
		ID:             primitive.NewObjectID(),
		NewsletterID:   newsletterID,
		WeekIdentifier: week,
		WeekStart:      now,
		WeekEnd:        now.AddDate(0, 0, 7),
		Status:         status,
		CreatedBy:      "fixture",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	f.insert(ctx, models.CollSessions, s)
	return s
}

// CreateAssignment issues questionID to uid for the session.
func (f *Fixtures) CreateAssignment(ctx context.Context, s models.Session, uid string, questionID primitive.ObjectID) models.QuestionAssignment {
	f.t.Helper()
	a := models.QuestionAssignment{
		ID:           primitive.NewObjectID(),
		SessionID:    s.ID,
		NewsletterID: s.NewsletterID,
		UserID:       uid,
		QuestionID:   questionID,
		AssignedBy:   "fixture",
		AssignedAt:   time.Now().UTC(),
	}
	f.insert(ctx, models.CollAssignments, a)
	return a
}

// CreateResponse stores a response without touching assignments.
func (f *Fixtures) CreateResponse(ctx context.Context, s models.Session, uid string, questionID primitive.ObjectID, body string) models.UserResponse {
	f.t.Helper()
	r := models.UserResponse{
		ID:           primitive.NewObjectID(),
		NewsletterID: s.NewsletterID,
		SessionID:    s.ID,
		UserID:       uid,
		QuestionID:   questionID,
		Response:     body,
		WordCount:    1,
		SubmittedAt:  time.Now().UTC(),
	}
	f.insert(ctx, models.CollResponses, r)
	return r
}
