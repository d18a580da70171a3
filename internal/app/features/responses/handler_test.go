package responses_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/newsletterhub/internal/app/features/responses"
	"github.com/dalemusser/newsletterhub/internal/domain/models"
	"github.com/dalemusser/newsletterhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func serve(h http.Handler, r *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestSubmitAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h := responses.Routes(responses.NewHandler(db, zap.NewNop()))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateUser(ctx, "alice", "Alice")
	fx.CreateUser(ctx, "bob", "Bob")
	n := fx.CreateNewsletter(ctx, "alice", "Club", false)
	fx.AddMember(ctx, n.ID, "bob", models.RoleMember)
	q := fx.CreateQuestion(ctx, n.ID, "Best meal?")
	s := fx.CreateSession(ctx, n.ID, "2026-W42", models.SessionActive)

	rec := serve(h, testutil.NewAuthenticatedRequest("POST", "/", "bob", map[string]any{
		"newsletterId": n.ID.Hex(),
		"sessionId":    s.ID.Hex(),
		"questionId":   q.ID.Hex(),
		"response":     "  Tacos at the market  ",
		"isPublic":     true,
	}))
	rec.AssertStatus(t, http.StatusCreated)
	var resp models.UserResponse
	rec.DecodeJSON(t, &resp)
	if resp.Response != "Tacos at the market" || resp.WordCount != 4 || resp.UserID != "bob" {
		t.Fatalf("response = %+v", resp)
	}

	rec = serve(h, testutil.NewAuthenticatedRequest("GET", "/?sessionId="+s.ID.Hex(), "alice", nil))
	rec.AssertStatus(t, http.StatusOK)
	var list []models.UserResponse
	rec.DecodeJSON(t, &list)
	if len(list) != 1 {
		t.Fatalf("len(list) = %d, want 1", len(list))
	}

	// Own responses are always visible; others' need write access.
	serve(h, testutil.NewAuthenticatedRequest("GET", "/?sessionId="+s.ID.Hex()+"&userId=bob", "bob", nil)).AssertStatus(t, http.StatusOK)
	serve(h, testutil.NewAuthenticatedRequest("GET", "/?sessionId="+s.ID.Hex()+"&userId=alice", "bob", nil)).AssertStatus(t, http.StatusForbidden)
	serve(h, testutil.NewAuthenticatedRequest("GET", "/?sessionId="+s.ID.Hex()+"&userId=bob", "alice", nil)).AssertStatus(t, http.StatusOK)
	serve(h, testutil.NewAuthenticatedRequest("GET", "/?sessionId="+primitive.NewObjectID().Hex()+"&userId=bob", "bob", nil)).AssertStatus(t, http.StatusNotFound)
}

func TestSubmitValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h := responses.Routes(responses.NewHandler(db, zap.NewNop()))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateUser(ctx, "alice", "Alice")
	n := fx.CreateNewsletter(ctx, "alice", "Club", false)
	q := fx.CreateQuestion(ctx, n.ID, "Best meal?")
	s := fx.CreateSession(ctx, n.ID, "2026-W42", models.SessionActive)

	cases := []struct {
		name string
		body map[string]any
	}{
		{"missing session", map[string]any{"newsletterId": n.ID.Hex(), "questionId": q.ID.Hex(), "response": "x"}},
		{"blank response", map[string]any{"newsletterId": n.ID.Hex(), "sessionId": s.ID.Hex(), "questionId": q.ID.Hex(), "response": "   "}},
		{"missing question", map[string]any{"newsletterId": n.ID.Hex(), "sessionId": s.ID.Hex(), "response": "x"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			serve(h, testutil.NewAuthenticatedRequest("POST", "/", "alice", tc.body)).AssertStatus(t, http.StatusBadRequest)
		})
	}
}
