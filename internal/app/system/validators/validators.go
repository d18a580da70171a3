// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/newsletterhub/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure(models.CollUsers, usersSchema())
	ensure(models.CollNewsletters, newslettersSchema())
	ensure(models.CollMemberships, membershipsSchema())
	ensure(models.CollQuestions, questionsSchema())
	ensure(models.CollSessions, sessionsSchema())
	ensure(models.CollAssignments, assignmentsSchema())
	ensure(models.CollResponses, responsesSchema())

	// Summary documents are written only by the weekly routine.
	ensure(models.CollWeeklyAssignments, nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"is_active", "is_admin", "created_at"},
			"properties": bson.M{
				"email":        bson.M{"bsonType": "string"},
				"display_name": bson.M{"bsonType": "string"},
				"is_active":    bson.M{"bsonType": "bool"},
				"is_admin":     bson.M{"bsonType": "bool"},
				"preferences":  bson.M{"bsonType": "object"},
				"created_at":   bson.M{"bsonType": "date"},
			},
		},
	}
}

func newslettersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "name_ci", "settings", "is_active", "created_at"},
			"properties": bson.M{
				"name":        nonBlank,
				"name_ci":     nonBlank,
				"description": bson.M{"bsonType": "string"},
				"prompt":      bson.M{"bsonType": "string"},
				"is_active":   bson.M{"bsonType": "bool"},
				"settings": bson.M{
					"bsonType": "object",
					"properties": bson.M{
						"is_public":   bson.M{"bsonType": "bool"},
						"max_members": bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1},
					},
				},
				"created_at": bson.M{"bsonType": "date"},
			},
		},
	}
}

func membershipsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"newsletter_id", "user_id", "role", "is_active", "joined_at"},
			"properties": bson.M{
				"newsletter_id":      bson.M{"bsonType": "objectId"},
				"user_id":            nonBlank,
				"role":               bson.M{"enum": bson.A{models.RoleOwner, models.RoleModerator, models.RoleMember}},
				"is_active":          bson.M{"bsonType": "bool"},
				"answered_questions": bson.M{"bsonType": "array", "items": bson.M{"bsonType": "objectId"}},
				"joined_at":          bson.M{"bsonType": "date"},
			},
		},
	}
}

func questionsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"newsletter_id", "text", "source", "usage_count", "is_active"},
			"properties": bson.M{
				"newsletter_id": bson.M{"bsonType": "objectId"},
				"text":          nonBlank,
				"source":        bson.M{"enum": bson.A{models.SourceUser, models.SourceAdmin, models.SourceLLM}},
				"usage_count":   bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
				"is_active":     bson.M{"bsonType": "bool"},
				"tags":          bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
			},
		},
	}
}

func sessionsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"newsletter_id", "week_identifier", "status", "created_at"},
			"properties": bson.M{
				"newsletter_id":     bson.M{"bsonType": "objectId"},
				"week_identifier":   nonBlank,
				"status":            bson.M{"enum": bson.A{models.SessionActive, models.SessionPending, models.SessionCompleted}},
				"newsletter_sent":   bson.M{"bsonType": "bool"},
				"participant_count": bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
				"week_start":        bson.M{"bsonType": "date"},
				"week_end":          bson.M{"bsonType": "date"},
			},
		},
	}
}

func assignmentsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"session_id", "newsletter_id", "user_id", "question_id", "answered"},
			"properties": bson.M{
				"session_id":    bson.M{"bsonType": "objectId"},
				"newsletter_id": bson.M{"bsonType": "objectId"},
				"user_id":       nonBlank,
				"question_id":   bson.M{"bsonType": "objectId"},
				"answered":      bson.M{"bsonType": "bool"},
				"assigned_at":   bson.M{"bsonType": "date"},
			},
		},
	}
}

func responsesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"newsletter_id", "session_id", "user_id", "question_id", "response", "word_count"},
			"properties": bson.M{
				"newsletter_id": bson.M{"bsonType": "objectId"},
				"session_id":    bson.M{"bsonType": "objectId"},
				"user_id":       nonBlank,
				"question_id":   bson.M{"bsonType": "objectId"},
				"response":      nonBlank,
				"word_count":    bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
				"is_public":     bson.M{"bsonType": "bool"},
				"submitted_at":  bson.M{"bsonType": "date"},
			},
		},
	}
}
