package admin_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/newsletterhub/internal/app/features/admin"
	"github.com/dalemusser/newsletterhub/internal/domain/models"
	"github.com/dalemusser/newsletterhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func serve(h http.Handler, r *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestAdminGate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h := admin.Routes(admin.NewHandler(db, zap.NewNop()))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateUser(ctx, "alice", "Alice")
	fx.CreateAdmin(ctx, "root", "Root")

	serve(h, testutil.NewAuthenticatedRequest("GET", "/test", "alice", nil)).AssertStatus(t, http.StatusForbidden)
	serve(h, testutil.NewAuthenticatedRequest("GET", "/test", "nobody", nil)).AssertStatus(t, http.StatusForbidden)

	rec := serve(h, testutil.NewAuthenticatedRequest("GET", "/test", "root", nil))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Admin authentication successful")
	rec.AssertContains(t, `"isAdmin":true`)

	rec = serve(h, testutil.NewAuthenticatedRequest("GET", "/stats", "root", nil))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"users":2`)
}

func TestAdminUsers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h := admin.Routes(admin.NewHandler(db, zap.NewNop()))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateUser(ctx, "alice", "Alice")
	fx.CreateAdmin(ctx, "root", "Root")

	rec := serve(h, testutil.NewAuthenticatedRequest("GET", "/users", "root", nil))
	rec.AssertStatus(t, http.StatusOK)
	var out struct {
		Users []models.User `json:"users"`
		Total int           `json:"total"`
	}
	rec.DecodeJSON(t, &out)
	if out.Total != 2 || len(out.Users) != 2 {
		t.Fatalf("users = %+v", out)
	}

	rec = serve(h, testutil.NewAuthenticatedRequest("PUT", "/users", "root", map[string]any{
		"userId":  "root",
		"updates": map[string]any{"isAdmin": false},
	}))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "cannot remove your own admin privileges")

	serve(h, testutil.NewAuthenticatedRequest("PUT", "/users", "root", map[string]any{
		"userId": "alice",
	})).AssertStatus(t, http.StatusBadRequest)
	serve(h, testutil.NewAuthenticatedRequest("PUT", "/users", "root", map[string]any{
		"userId":  "alice",
		"updates": map[string]any{"email": "x@y.z"},
	})).AssertStatus(t, http.StatusBadRequest)

	serve(h, testutil.NewAuthenticatedRequest("PUT", "/users", "root", map[string]any{
		"userId":  "alice",
		"updates": map[string]any{"isActive": false},
	})).AssertStatus(t, http.StatusOK)

	var u models.User
	if err := db.Collection(models.CollUsers).FindOne(ctx, bson.M{"_id": "alice"}).Decode(&u); err != nil {
		t.Fatalf("load alice: %v", err)
	}
	if u.IsActive {
		t.Error("alice still active after admin update")
	}
}

func TestAdminSessionsAndResponses(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h := admin.Routes(admin.NewHandler(db, zap.NewNop()))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateAdmin(ctx, "root", "Root")
	fx.CreateUser(ctx, "alice", "Alice")
	n := fx.CreateNewsletter(ctx, "alice", "Club", false)
	q := fx.CreateQuestion(ctx, n.ID, "Best meal?")
	s := fx.CreateSession(ctx, n.ID, "2026-W42", models.SessionActive)
	resp := fx.CreateResponse(ctx, s, "alice", q.ID, "Tacos")

	rec := serve(h, testutil.NewAuthenticatedRequest("GET", "/responses", "root", nil))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"questionText":"Best meal?"`)
	rec.AssertContains(t, `"newsletterName":"Club"`)

	rec = serve(h, testutil.NewAuthenticatedRequest("PUT", "/sessions", "root", map[string]any{
		"sessionId": s.ID.Hex(),
		"updates":   map[string]any{"status": models.SessionCompleted, "newsletterSent": true},
	}))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"newsletterSent":true`)

	serve(h, testutil.NewAuthenticatedRequest("DELETE", "/responses", "root", map[string]any{})).AssertStatus(t, http.StatusBadRequest)
	serve(h, testutil.NewAuthenticatedRequest("DELETE", "/responses", "root", map[string]any{"responseId": resp.ID.Hex()})).AssertStatus(t, http.StatusOK)
	serve(h, testutil.NewAuthenticatedRequest("DELETE", "/sessions", "root", map[string]any{"sessionId": s.ID.Hex()})).AssertStatus(t, http.StatusOK)

	rec = serve(h, testutil.NewAuthenticatedRequest("GET", "/sessions", "root", nil))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"total":0`)
}
