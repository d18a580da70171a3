package sessionstore_test

import (
	"errors"
	"testing"

	sessionstore "github.com/dalemusser/newsletterhub/internal/app/store/sessions"
	"github.com/dalemusser/newsletterhub/internal/domain/models"
	"github.com/dalemusser/newsletterhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_GetActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessionstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	nid := primitive.NewObjectID()
	got, err := store.GetActive(ctx, nid)
	if err != nil || got != nil {
		t.Fatalf("GetActive on empty = %v, %v; want nil, nil", got, err)
	}

	sess := &models.Session{NewsletterID: nid, WeekIdentifier: "2025-W03", Status: models.SessionActive}
	if err := store.Create(ctx, sess); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err = store.GetActive(ctx, nid)
	if err != nil || got == nil || got.ID != sess.ID {
		t.Fatalf("GetActive = %v, %v; want %v", got, err, sess.ID)
	}
}

func TestStore_SecondActiveConflicts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessionstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	nid := primitive.NewObjectID()
	if err := store.Create(ctx, &models.Session{NewsletterID: nid, WeekIdentifier: "2025-W03", Status: models.SessionActive}); err != nil {
		t.Fatal(err)
	}
	pending := &models.Session{NewsletterID: nid, WeekIdentifier: "2025-W04", Status: models.SessionPending}
	if err := store.Create(ctx, pending); err != nil {
		t.Fatalf("pending Create: %v", err)
	}

	err := store.Create(ctx, &models.Session{NewsletterID: nid, WeekIdentifier: "2025-W05", Status: models.SessionActive})
	if !errors.Is(err, sessionstore.ErrActiveExists) {
		t.Errorf("second active Create = %v, want ErrActiveExists", err)
	}
	_, err = store.Update(ctx, pending.ID, bson.M{"status": models.SessionActive})
	if !errors.Is(err, sessionstore.ErrActiveExists) {
		t.Errorf("activating pending = %v, want ErrActiveExists", err)
	}
}
