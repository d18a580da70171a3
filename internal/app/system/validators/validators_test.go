package validators_test

import (
	"testing"
	"time"

	"github.com/dalemusser/newsletterhub/internal/app/system/validators"
	"github.com/dalemusser/newsletterhub/internal/domain/models"
	"github.com/dalemusser/newsletterhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	have := make(map[string]bool)
	for _, n := range names {
		have[n] = true
	}
	for _, want := range []string{
		models.CollUsers,
		models.CollNewsletters,
		models.CollMemberships,
		models.CollQuestions,
		models.CollSessions,
		models.CollAssignments,
		models.CollResponses,
		models.CollWeeklyAssignments,
	} {
		if !have[want] {
			t.Errorf("expected collection %q to exist", want)
		}
	}
}

func TestNewslettersValidator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	coll := db.Collection(models.CollNewsletters)

	if _, err := coll.InsertOne(ctx, bson.M{"description": "no name"}); err == nil {
		t.Error("expected validation error for newsletter without required fields")
	}

	_, err := coll.InsertOne(ctx, bson.M{
		"name":       "Book Club",
		"name_ci":    "book club",
		"settings":   bson.M{"is_public": true, "max_members": 100},
		"is_active":  true,
		"created_at": time.Now(),
	})
	if err != nil {
		t.Errorf("insert valid newsletter failed: %v", err)
	}
}

func TestMembershipsValidator_InvalidRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	coll := db.Collection(models.CollMemberships)

	doc := bson.M{
		"newsletter_id": primitive.NewObjectID(),
		"user_id":       "uid-1",
		"role":          "superuser",
		"is_active":     true,
		"joined_at":     time.Now(),
	}
	if _, err := coll.InsertOne(ctx, doc); err == nil {
		t.Error("expected validation error for unknown role")
	}

	doc["role"] = models.RoleModerator
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		t.Errorf("insert valid membership failed: %v", err)
	}
}

func TestSessionsValidator_InvalidStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	_, err := db.Collection(models.CollSessions).InsertOne(ctx, bson.M{
		"newsletter_id":   primitive.NewObjectID(),
		"week_identifier": "2025-W03",
		"status":          "archived",
		"created_at":      time.Now(),
	})
	if err == nil {
		t.Error("expected validation error for unknown session status")
	}
}

func TestQuestionsValidator_InvalidSource(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	_, err := db.Collection(models.CollQuestions).InsertOne(ctx, bson.M{
		"newsletter_id": primitive.NewObjectID(),
		"text":          "What made you smile?",
		"source":        "robot",
		"usage_count":   0,
		"is_active":     true,
	})
	if err == nil {
		t.Error("expected validation error for unknown question source")
	}
}

func TestResponsesValidator_BlankResponse(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	_, err := db.Collection(models.CollResponses).InsertOne(ctx, bson.M{
		"newsletter_id": primitive.NewObjectID(),
		"session_id":    primitive.NewObjectID(),
		"user_id":       "uid-1",
		"question_id":   primitive.NewObjectID(),
		"response":      "   ",
		"word_count":    0,
	})
	if err == nil {
		t.Error("expected validation error for whitespace-only response")
	}
}
