package assignments_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/newsletterhub/internal/app/features/assignments"
	"github.com/dalemusser/newsletterhub/internal/domain/models"
	"github.com/dalemusser/newsletterhub/internal/testutil"
	"go.uber.org/zap"
)

func serve(h http.Handler, r *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestAssignAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h := assignments.Routes(assignments.NewHandler(db, zap.NewNop()))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateUser(ctx, "alice", "Alice")
	fx.CreateUser(ctx, "bob", "Bob")
	n := fx.CreateNewsletter(ctx, "alice", "Club", false)
	fx.AddMember(ctx, n.ID, "bob", models.RoleMember)
	q := fx.CreateQuestion(ctx, n.ID, "Best meal?")
	s := fx.CreateSession(ctx, n.ID, "2026-W42", models.SessionActive)

	body := map[string]any{
		"sessionId":    s.ID.Hex(),
		"newsletterId": n.ID.Hex(),
		"userId":       "bob",
		"questionId":   q.ID.Hex(),
	}
	serve(h, testutil.NewAuthenticatedRequest("POST", "/", "alice", body)).AssertStatus(t, http.StatusCreated)
	serve(h, testutil.NewAuthenticatedRequest("POST", "/", "bob", body)).AssertStatus(t, http.StatusForbidden)

	rec := serve(h, testutil.NewAuthenticatedRequest("GET", "/?sessionId="+s.ID.Hex(), "bob", nil))
	rec.AssertStatus(t, http.StatusOK)
	var list []models.QuestionAssignment
	rec.DecodeJSON(t, &list)
	if len(list) != 1 || list[0].QuestionID != q.ID || list[0].Answered {
		t.Fatalf("assignments = %+v", list)
	}

	rec = serve(h, testutil.NewAuthenticatedRequest("GET", "/?sessionId="+s.ID.Hex()+"&userId=bob", "alice", nil))
	rec.AssertStatus(t, http.StatusOK)
	rec.DecodeJSON(t, &list)
	if len(list) != 1 {
		t.Fatalf("len(list) = %d, want 1", len(list))
	}
}

func TestAssignRejectsForeignQuestion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h := assignments.Routes(assignments.NewHandler(db, zap.NewNop()))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateUser(ctx, "alice", "Alice")
	n := fx.CreateNewsletter(ctx, "alice", "Club", false)
	other := fx.CreateNewsletter(ctx, "alice", "Other", false)
	q := fx.CreateQuestion(ctx, other.ID, "Elsewhere?")
	s := fx.CreateSession(ctx, n.ID, "2026-W42", models.SessionActive)

	rec := serve(h, testutil.NewAuthenticatedRequest("POST", "/", "alice", map[string]any{
		"sessionId":    s.ID.Hex(),
		"newsletterId": n.ID.Hex(),
		"userId":       "alice",
		"questionId":   q.ID.Hex(),
	}))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "invalid question")
}
