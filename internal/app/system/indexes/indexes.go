// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/newsletterhub/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	steps := []struct {
		coll string
		fn   func(context.Context, *mongo.Database) error
	}{
		{models.CollUsers, ensureUsers},
		{models.CollNewsletters, ensureNewsletters},
		{models.CollMemberships, ensureMemberships},
		{models.CollQuestions, ensureQuestions},
		{models.CollSessions, ensureSessions},
		{models.CollAssignments, ensureAssignments},
		{models.CollResponses, ensureResponses},
		{models.CollWeeklyAssignments, ensureWeeklyAssignments},
	}
	for _, s := range steps {
		if err := s.fn(ctx, db); err != nil {
			problems = append(problems, s.coll+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name    string `bson:"name"`
	Key     bson.D `bson:"key"`
	Unique  *bool  `bson:"unique,omitempty"`
	Partial bson.D `bson:"partialFilterExpression,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func boolOf(b *bool) bool { return b != nil && *b }

func partialSig(p interface{}) string {
	if p == nil {
		return ""
	}
	switch v := p.(type) {
	case bson.D:
		return keySig(v)
	case bson.M:
		d := make(bson.D, 0, len(v))
		for k, val := range v {
			d = append(d, bson.E{Key: k, Value: val})
		}
		return keySig(d)
	}
	return fmt.Sprint(p)
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, want []mongo.IndexModel) error {
	existing := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return err
	}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	_ = cur.Close(ctx)

	var errs []string
	for _, m := range want {
		var name string
		var unique *bool
		var partial interface{}
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			unique = m.Options.Unique
			partial = m.Options.PartialFilterExpression
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()

		if ex, ok := existing[sig]; ok {
			same := boolOf(ex.Unique) == boolOf(unique) &&
				partialSig(ex.Partial) == partialSig(partial) &&
				(name == "" || ex.Name == name)
			if same {
				zap.L().Debug("reusing existing index",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.String("keys", sig))
				continue
			}
			// Options or name differ. Drop & recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), name, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isDuplicateKeyErr(err) && boolOf(unique) {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), name))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
			}
			continue
		}
		zap.L().Info("index created",
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", boolOf(unique)),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Per-collection index sets                                                  */
/* -------------------------------------------------------------------------- */

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection(models.CollUsers), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "display_name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_users_dnci__id"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_users_email"),
		},
	})
}

func ensureNewsletters(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection(models.CollNewsletters), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "created_by", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_newsletters_creator_created"),
		},
		{
			Keys:    bson.D{{Key: "is_active", Value: 1}, {Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_newsletters_active_nameci__id"),
		},
	})
}

// At most one active membership per (newsletter, user). Removed records stay
// as history, so uniqueness is scoped to is_active=true.
func ensureMemberships(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection(models.CollMemberships), []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "newsletter_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_membership_active_newsletter_user").
				SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: "is_active", Value: true}}),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "is_active", Value: 1}},
			Options: options.Index().SetName("idx_membership_user_active"),
		},
		{
			Keys:    bson.D{{Key: "newsletter_id", Value: 1}, {Key: "is_active", Value: 1}, {Key: "joined_at", Value: 1}},
			Options: options.Index().SetName("idx_membership_newsletter_active_joined"),
		},
	})
}

func ensureQuestions(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection(models.CollQuestions), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "newsletter_id", Value: 1}, {Key: "is_active", Value: 1}, {Key: "usage_count", Value: 1}},
			Options: options.Index().SetName("idx_questions_newsletter_active_usage"),
		},
	})
}

// A newsletter has at most one active session at a time.
func ensureSessions(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection(models.CollSessions), []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "newsletter_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_sessions_one_active_per_newsletter").
				SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: "status", Value: models.SessionActive}}),
		},
		{
			Keys:    bson.D{{Key: "newsletter_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_sessions_newsletter_created"),
		},
	})
}

func ensureAssignments(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection(models.CollAssignments), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}, {Key: "user_id", Value: 1}, {Key: "question_id", Value: 1}},
			Options: options.Index().SetName("idx_assign_session_user_question"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "assigned_at", Value: -1}},
			Options: options.Index().SetName("idx_assign_user_assigned"),
		},
	})
}

func ensureResponses(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection(models.CollResponses), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}, {Key: "submitted_at", Value: 1}},
			Options: options.Index().SetName("idx_responses_session_submitted"),
		},
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_responses_session_user"),
		},
	})
}

func ensureWeeklyAssignments(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection(models.CollWeeklyAssignments), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "newsletter_id", Value: 1}, {Key: "week_key", Value: -1}},
			Options: options.Index().SetName("idx_weekly_newsletter_week"),
		},
	})
}
