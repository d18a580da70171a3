package metricsstore_test

import (
	"testing"

	metricsstore "github.com/dalemusser/newsletterhub/internal/app/store/metrics"
	"github.com/dalemusser/newsletterhub/internal/domain/models"
	"github.com/dalemusser/newsletterhub/internal/testutil"
)

func TestFetchCounts_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if got := metricsstore.FetchCounts(ctx, db); got != (metricsstore.Counts{}) {
		t.Errorf("expected all zero, got %+v", got)
	}
}

func TestFetchCounts_WithData(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateUser(ctx, "alice", "Alice")
	fixtures.CreateUser(ctx, "bob", "Bob")
	fixtures.CreateInactiveUser(ctx, "carol", "Carol")

	n := fixtures.CreateNewsletter(ctx, "alice", "Club", false)
	fixtures.AddMember(ctx, n.ID, "bob", models.RoleMember)
	q := fixtures.CreateQuestion(ctx, n.ID, "Best meal?")
	fixtures.CreateQuestion(ctx, n.ID, "Best book?")
	s := fixtures.CreateSession(ctx, n.ID, "2026-W42", models.SessionActive)
	fixtures.CreateSession(ctx, n.ID, "2026-W41", models.SessionCompleted)
	fixtures.CreateResponse(ctx, s, "bob", q.ID, "Tacos")

	got := metricsstore.FetchCounts(ctx, db)
	want := metricsstore.Counts{
		Users:             3,
		ActiveUsers:       2,
		Newsletters:       1,
		ActiveMemberships: 2,
		Questions:         2,
		ActiveSessions:    1,
		Responses:         1,
	}
	if got != want {
		t.Errorf("FetchCounts() = %+v, want %+v", got, want)
	}
}
