package newsletters_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dalemusser/newsletterhub/internal/app/services/newsletters"
	membershipstore "github.com/dalemusser/newsletterhub/internal/app/store/memberships"
	"github.com/dalemusser/newsletterhub/internal/app/system/apperr"
	"github.com/dalemusser/newsletterhub/internal/domain/models"
	"github.com/dalemusser/newsletterhub/internal/testutil"
	"go.uber.org/zap"
)

func TestAddMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	svc := newsletters.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateUser(ctx, "alice", "Alice")
	fx.CreateUser(ctx, "bob", "Bob")
	fx.CreateUser(ctx, "carol", "Carol")
	n := fx.CreateNewsletter(ctx, "alice", "Club", false)

	m, err := svc.AddMember(ctx, n.ID, "bob", "alice", "")
	if err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if m.Role != models.RoleMember || !m.IsActive {
		t.Errorf("membership = %+v", m)
	}

	if _, err := svc.AddMember(ctx, n.ID, "bob", "alice", ""); !apperr.Is(err, apperr.Conflict) {
		t.Errorf("duplicate: %v, want Conflict", err)
	}
	if _, err := svc.AddMember(ctx, n.ID, "carol", "bob", ""); !apperr.Is(err, apperr.Unauthorized) {
		t.Errorf("member adding: %v, want Unauthorized", err)
	}
	if _, err := svc.AddMember(ctx, n.ID, "carol", "alice", models.RoleOwner); !apperr.Is(err, apperr.InvalidInput) {
		t.Errorf("granting owner: %v, want InvalidInput", err)
	}
	if _, err := svc.AddMember(ctx, n.ID, "nobody", "alice", ""); !apperr.Is(err, apperr.NotFound) {
		t.Errorf("unknown user: %v, want NotFound", err)
	}
}

func TestAddMember_EnforcesMaxMembers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	svc := newsletters.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateUser(ctx, "bob", "Bob")
	fx.CreateUser(ctx, "carol", "Carol")

	n, err := svc.Create(ctx, "alice", newsletters.CreateInput{Name: "Tiny", Settings: models.SettingsInput{MaxMembers: ptr(2)}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddMember(ctx, n.ID, "bob", "alice", ""); err != nil {
		t.Fatalf("second member: %v", err)
	}
	if _, err := svc.AddMember(ctx, n.ID, "carol", "alice", ""); !apperr.Is(err, apperr.Conflict) {
		t.Errorf("over limit: %v, want Conflict", err)
	}
}

func TestAddMember_ConcurrentAddsRespectMaxMembers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	if !testutil.IsReplicaSet(t, db.Client()) {
		t.Skip("member cap under concurrency needs transactions (replica set)")
	}
	fx := testutil.NewFixtures(t, db)
	svc := newsletters.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	n, err := svc.Create(ctx, "alice", newsletters.CreateInput{Name: "Tiny", Settings: models.SettingsInput{MaxMembers: ptr(3)}})
	if err != nil {
		t.Fatal(err)
	}
	uids := []string{"bob", "carol", "dave", "erin", "frank", "grace"}
	for _, uid := range uids {
		fx.CreateUser(ctx, uid, uid)
	}

	var wg sync.WaitGroup
	var added atomic.Int32
	for _, uid := range uids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddMember(ctx, n.ID, uid, "alice", "")
			switch {
			case err == nil:
				added.Add(1)
			case !apperr.Is(err, apperr.Conflict):
				t.Errorf("add %s: %v", uid, err)
			}
		}()
	}
	wg.Wait()

	if got := added.Load(); got != 2 {
		t.Errorf("added = %d, want 2", got)
	}
	count, err := membershipstore.New(db).CountActive(ctx, n.ID)
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("active members = %d, want 3", count)
	}
}

func TestRemoveMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	svc := newsletters.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	n := fx.CreateNewsletter(ctx, "alice", "Club", false)
	fx.AddMember(ctx, n.ID, "mod", models.RoleModerator)
	fx.AddMember(ctx, n.ID, "bob", models.RoleMember)
	fx.AddMember(ctx, n.ID, "carol", models.RoleMember)

	// A moderator cannot remove the owner.
	if err := svc.RemoveMember(ctx, n.ID, "alice", "mod"); !apperr.Is(err, apperr.Unauthorized) {
		t.Errorf("moderator removing owner: %v, want Unauthorized", err)
	}
	// A plain member cannot remove someone else.
	if err := svc.RemoveMember(ctx, n.ID, "carol", "bob"); !apperr.Is(err, apperr.Unauthorized) {
		t.Errorf("member removing member: %v, want Unauthorized", err)
	}
	// Self-removal is always allowed.
	if err := svc.RemoveMember(ctx, n.ID, "bob", "bob"); err != nil {
		t.Errorf("self removal: %v", err)
	}
	if err := svc.RemoveMember(ctx, n.ID, "carol", "mod"); err != nil {
		t.Errorf("moderator removing member: %v", err)
	}

	members, err := svc.ListMembers(ctx, n.ID, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(members) != 2 {
		t.Errorf("members = %+v, want owner and moderator", members)
	}
}

func TestUpdateMemberRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	svc := newsletters.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	n := fx.CreateNewsletter(ctx, "alice", "Club", false)
	fx.AddMember(ctx, n.ID, "mod", models.RoleModerator)
	fx.AddMember(ctx, n.ID, "bob", models.RoleMember)

	if _, err := svc.UpdateMemberRole(ctx, n.ID, "bob", models.RoleModerator, "mod"); !apperr.Is(err, apperr.Unauthorized) {
		t.Errorf("moderator promoting: %v, want Unauthorized", err)
	}
	m, err := svc.UpdateMemberRole(ctx, n.ID, "bob", models.RoleModerator, "alice")
	if err != nil || m.Role != models.RoleModerator {
		t.Fatalf("owner promoting = %+v, %v", m, err)
	}
	if _, err := svc.UpdateMemberRole(ctx, n.ID, "alice", models.RoleMember, "alice"); !apperr.Is(err, apperr.InvalidInput) {
		t.Errorf("demoting owner: %v, want InvalidInput", err)
	}
	if _, err := svc.UpdateMemberRole(ctx, n.ID, "ghost", models.RoleMember, "alice"); !apperr.Is(err, apperr.NotFound) {
		t.Errorf("non-member: %v, want NotFound", err)
	}
}

func TestListMembers_JoinsProfiles(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	svc := newsletters.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateUser(ctx, "alice", "Alice")
	n := fx.CreateNewsletter(ctx, "alice", "Club", false)

	members, err := svc.ListMembers(ctx, n.ID, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(members) != 1 || members[0].DisplayName != "Alice" || members[0].Role != models.RoleOwner {
		t.Errorf("members = %+v", members)
	}
	if _, err := svc.ListMembers(ctx, n.ID, "stranger"); !apperr.Is(err, apperr.Unauthorized) {
		t.Errorf("stranger: %v, want Unauthorized", err)
	}
}
