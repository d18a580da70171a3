package assignments_test

import (
	"testing"

	"github.com/dalemusser/newsletterhub/internal/app/services/assignments"
	questionstore "github.com/dalemusser/newsletterhub/internal/app/store/questions"
	"github.com/dalemusser/newsletterhub/internal/app/system/apperr"
	"github.com/dalemusser/newsletterhub/internal/domain/models"
	"github.com/dalemusser/newsletterhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestAssign(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	svc := assignments.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	n := fx.CreateNewsletter(ctx, "alice", "Club", true)
	other := fx.CreateNewsletter(ctx, "carol", "Other", true)
	fx.AddMember(ctx, n.ID, "bob", models.RoleMember)
	s := fx.CreateSession(ctx, n.ID, "2026-W42", models.SessionActive)
	foreign := fx.CreateSession(ctx, other.ID, "2026-W42", models.SessionActive)
	q := fx.CreateQuestion(ctx, n.ID, "Q")

	a, err := svc.Assign(ctx, "alice", assignments.AssignInput{SessionID: s.ID, NewsletterID: n.ID, UserID: "bob", QuestionID: q.ID})
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if a.Answered || a.AssignedBy != "alice" || a.AssignedAt.IsZero() {
		t.Errorf("assignment = %+v", a)
	}
	if got, err := questionstore.New(db).GetByID(ctx, q.ID); err != nil || got.UsageCount != 1 {
		t.Errorf("usage count = %d, %v; want 1", got.UsageCount, err)
	}

	if _, err := svc.Assign(ctx, "bob", assignments.AssignInput{SessionID: s.ID, NewsletterID: n.ID, UserID: "bob", QuestionID: q.ID}); !apperr.Is(err, apperr.Unauthorized) {
		t.Errorf("member assign: %v, want Unauthorized", err)
	}
	if _, err := svc.Assign(ctx, "alice", assignments.AssignInput{SessionID: foreign.ID, NewsletterID: n.ID, UserID: "bob", QuestionID: q.ID}); !apperr.Is(err, apperr.InvalidInput) {
		t.Errorf("foreign session: %v, want InvalidInput", err)
	}
}

func TestListForUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	svc := assignments.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	n := fx.CreateNewsletter(ctx, "alice", "Private", false)
	fx.AddMember(ctx, n.ID, "bob", models.RoleMember)
	s := fx.CreateSession(ctx, n.ID, "2026-W42", models.SessionActive)
	q := fx.CreateQuestion(ctx, n.ID, "Q")
	fx.CreateAssignment(ctx, s, "bob", q.ID)

	own, err := svc.ListForUser(ctx, s.ID, "bob", "bob")
	if err != nil || len(own) != 1 {
		t.Fatalf("self list = %v, %v", own, err)
	}
	if list, err := svc.ListForUser(ctx, s.ID, "bob", "alice"); err != nil || len(list) != 1 {
		t.Errorf("owner list = %v, %v", list, err)
	}
	if _, err := svc.ListForUser(ctx, s.ID, "bob", "mallory"); !apperr.Is(err, apperr.Unauthorized) {
		t.Errorf("stranger list: %v, want Unauthorized", err)
	}
	if _, err := svc.ListForUser(ctx, primitive.NewObjectID(), "bob", "bob"); !apperr.Is(err, apperr.NotFound) {
		t.Errorf("self, missing session: %v, want NotFound", err)
	}
}
