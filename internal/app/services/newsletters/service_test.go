package newsletters_test

import (
	"testing"

	"github.com/dalemusser/newsletterhub/internal/app/policy/newsletterpolicy"
	"github.com/dalemusser/newsletterhub/internal/app/services/newsletters"
	"github.com/dalemusser/newsletterhub/internal/app/system/apperr"
	"github.com/dalemusser/newsletterhub/internal/domain/models"
	"github.com/dalemusser/newsletterhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func ptr[T any](v T) *T { return &v }

func TestCreate_DefaultsAndOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newsletters.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	n, err := svc.Create(ctx, "alice", newsletters.CreateInput{Name: "Book Club", Description: "Monthly reads"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !n.Settings.IsPublic || n.Settings.RequireApproval || n.Settings.MaxMembers != 100 || n.Settings.QuestionSubmissionRequired {
		t.Errorf("settings = %+v, want defaults", n.Settings)
	}

	got, err := svc.Get(ctx, n.ID, "alice")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Book Club" || got.Description != "Monthly reads" {
		t.Errorf("round-trip = %+v", got)
	}

	role, err := newsletterpolicy.Role(ctx, db, n.ID, "alice")
	if err != nil || role != models.RoleOwner {
		t.Errorf("creator role = %q, %v; want owner", role, err)
	}
}

func TestCreate_RejectsBlankName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newsletters.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := svc.Create(ctx, "alice", newsletters.CreateInput{Name: "   "}); !apperr.Is(err, apperr.InvalidInput) {
		t.Errorf("err = %v, want InvalidInput", err)
	}
}

func TestGet_NotFoundAndPrivate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newsletters.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := svc.Get(ctx, primitive.NewObjectID(), "alice"); !apperr.Is(err, apperr.NotFound) {
		t.Errorf("missing: %v, want NotFound", err)
	}

	n, err := svc.Create(ctx, "alice", newsletters.CreateInput{
		Name:     "Private",
		Settings: models.SettingsInput{IsPublic: ptr(false)},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get(ctx, n.ID, "mallory"); !apperr.Is(err, apperr.Unauthorized) {
		t.Errorf("stranger: %v, want Unauthorized", err)
	}
}

func TestListForUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newsletters.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a, _ := svc.Create(ctx, "alice", newsletters.CreateInput{Name: "A"})
	_, _ = svc.Create(ctx, "bob", newsletters.CreateInput{Name: "B"})
	deleted, _ := svc.Create(ctx, "alice", newsletters.CreateInput{Name: "Gone"})
	if err := svc.Delete(ctx, deleted.ID, "alice"); err != nil {
		t.Fatal(err)
	}

	list, err := svc.ListForUser(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != a.ID {
		t.Errorf("ListForUser = %+v, want only A", list)
	}
}

func TestUpdate_WriteAccessAndPatch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	svc := newsletters.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	n := fx.CreateNewsletter(ctx, "alice", "Club", true)
	fx.AddMember(ctx, n.ID, "bob", models.RoleMember)

	if _, err := svc.Update(ctx, n.ID, "bob", newsletters.UpdateInput{Name: ptr("Hijacked")}); !apperr.Is(err, apperr.Unauthorized) {
		t.Errorf("member update: %v, want Unauthorized", err)
	}

	got, err := svc.Update(ctx, n.ID, "alice", newsletters.UpdateInput{
		Prompt:   ptr("Keep it short."),
		Settings: &models.SettingsInput{MaxMembers: ptr(10)},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Prompt != "Keep it short." || got.Settings.MaxMembers != 10 || !got.Settings.IsPublic {
		t.Errorf("patched = %+v", got)
	}
}

func TestDelete_OwnerOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	svc := newsletters.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	n := fx.CreateNewsletter(ctx, "alice", "Club", true)
	fx.AddMember(ctx, n.ID, "mod", models.RoleModerator)

	if err := svc.Delete(ctx, n.ID, "mod"); !apperr.Is(err, apperr.Unauthorized) {
		t.Errorf("moderator delete: %v, want Unauthorized", err)
	}
	if err := svc.Delete(ctx, n.ID, "alice"); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := svc.Get(ctx, n.ID, "alice"); !apperr.Is(err, apperr.NotFound) {
		t.Errorf("Get after delete: %v, want NotFound", err)
	}
}
