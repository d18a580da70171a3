package sessions_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/newsletterhub/internal/app/features/sessions"
	"github.com/dalemusser/newsletterhub/internal/domain/models"
	"github.com/dalemusser/newsletterhub/internal/testutil"
	"go.uber.org/zap"
)

func serve(h http.Handler, r *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestSessionFlow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h := sessions.Routes(sessions.NewHandler(db, zap.NewNop()))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateUser(ctx, "alice", "Alice")
	n := fx.CreateNewsletter(ctx, "alice", "Club", false)
	active := "/?newsletterId=" + n.ID.Hex()

	rec := serve(h, testutil.NewAuthenticatedRequest("GET", active, "alice", nil))
	rec.AssertStatus(t, http.StatusOK)
	if body := rec.Body.String(); body != "null\n" {
		t.Fatalf("no active session body = %q", body)
	}

	rec = serve(h, testutil.NewAuthenticatedRequest("POST", "/", "alice", map[string]any{"newsletterId": n.ID.Hex()}))
	rec.AssertStatus(t, http.StatusCreated)
	var created struct {
		ID      string         `json:"id"`
		Session models.Session `json:"session"`
	}
	rec.DecodeJSON(t, &created)
	if created.Session.Status != models.SessionActive || created.Session.WeekIdentifier == "" {
		t.Fatalf("session = %+v", created.Session)
	}

	rec = serve(h, testutil.NewAuthenticatedRequest("GET", active, "alice", nil))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, created.ID)

	rec = serve(h, testutil.NewAuthenticatedRequest("PUT", "/"+created.ID, "alice", map[string]any{"status": models.SessionCompleted}))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"status":"completed"`)

	serve(h, testutil.NewAuthenticatedRequest("PUT", "/"+created.ID, "alice", map[string]any{"status": "bogus"})).AssertStatus(t, http.StatusBadRequest)
	serve(h, testutil.NewAuthenticatedRequest("PUT", "/"+created.ID, "mallory", map[string]any{"status": models.SessionActive})).AssertStatus(t, http.StatusForbidden)
}

func TestSessionCreateRequiresNewsletter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := sessions.Routes(sessions.NewHandler(db, zap.NewNop()))

	rec := serve(h, testutil.NewAuthenticatedRequest("POST", "/", "alice", map[string]any{}))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "newsletterId is required")
}
