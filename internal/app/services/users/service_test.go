package users_test

import (
	"testing"

	"github.com/dalemusser/newsletterhub/internal/app/services/users"
	"github.com/dalemusser/newsletterhub/internal/app/system/apperr"
	"github.com/dalemusser/newsletterhub/internal/testutil"
	"go.uber.org/zap"
)

func ptr[T any](v T) *T { return &v }

func TestCreateProfile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := users.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	caller := users.Caller{UID: "alice", Email: "alice@example.com", Name: "Alice A."}

	u, err := svc.CreateProfile(ctx, caller, users.CreateInput{UID: "alice"})
	if err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}
	if u.Email != "alice@example.com" || u.DisplayName != "Alice A." || !u.IsActive || u.IsAdmin {
		t.Errorf("profile = %+v", u)
	}
	if !u.Preferences.EmailNotifications || u.Preferences.Timezone != "UTC" {
		t.Errorf("preferences = %+v, want defaults", u.Preferences)
	}

	if _, err := svc.CreateProfile(ctx, caller, users.CreateInput{UID: "alice"}); !apperr.Is(err, apperr.Conflict) {
		t.Errorf("duplicate: %v, want Conflict", err)
	}
	if _, err := svc.CreateProfile(ctx, caller, users.CreateInput{UID: "bob"}); !apperr.Is(err, apperr.Unauthorized) {
		t.Errorf("other uid: %v, want Unauthorized", err)
	}
	if _, err := svc.CreateProfile(ctx, users.Caller{UID: "carol"}, users.CreateInput{
		Preferences: &users.PreferencesInput{Timezone: ptr("Mars/Olympus")},
	}); !apperr.Is(err, apperr.InvalidInput) {
		t.Errorf("bad timezone: %v, want InvalidInput", err)
	}
}

func TestGetPublicAndMe(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	svc := users.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateAdmin(ctx, "alice", "Alice")

	pub, err := svc.GetPublic(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if pub.UID != "alice" || pub.DisplayName != "Alice" || !pub.IsActive {
		t.Errorf("public = %+v", pub)
	}
	me, err := svc.Me(ctx, "alice")
	if err != nil || !me.IsAdmin {
		t.Errorf("Me = %+v, %v", me, err)
	}
	if _, err := svc.GetPublic(ctx, "nobody"); !apperr.Is(err, apperr.NotFound) {
		t.Errorf("missing: %v, want NotFound", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	svc := users.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateUser(ctx, "alice", "Alice")

	got, err := svc.UpdateProfile(ctx, "alice", "alice", users.UpdateInput{
		DisplayName: ptr("Ally"),
		Preferences: &users.PreferencesInput{Timezone: ptr("Europe/Berlin")},
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if got.DisplayName != "Ally" || got.Preferences.Timezone != "Europe/Berlin" || !got.Preferences.EmailNotifications {
		t.Errorf("updated = %+v", got)
	}

	if _, err := svc.UpdateProfile(ctx, "alice", "bob", users.UpdateInput{DisplayName: ptr("x")}); !apperr.Is(err, apperr.Unauthorized) {
		t.Errorf("other user: %v, want Unauthorized", err)
	}
	if _, err := svc.UpdateProfile(ctx, "alice", "alice", users.UpdateInput{}); !apperr.Is(err, apperr.InvalidInput) {
		t.Errorf("empty patch: %v, want InvalidInput", err)
	}
}

func TestDeleteProfile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	svc := users.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateUser(ctx, "alice", "Alice")

	if err := svc.DeleteProfile(ctx, "alice", "bob"); !apperr.Is(err, apperr.Unauthorized) {
		t.Errorf("other user: %v, want Unauthorized", err)
	}
	if err := svc.DeleteProfile(ctx, "alice", "alice"); err != nil {
		t.Fatalf("DeleteProfile: %v", err)
	}
	if _, err := svc.Me(ctx, "alice"); !apperr.Is(err, apperr.NotFound) {
		t.Errorf("after delete: %v, want NotFound", err)
	}
}
