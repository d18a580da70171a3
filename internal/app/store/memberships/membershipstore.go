// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"time"

	"github.com/dalemusser/newsletterhub/internal/app/system/apperr"
	"github.com/dalemusser/newsletterhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(models.CollMemberships)}
}

// ErrDuplicateMembership is returned when the user already holds an active
// membership in the newsletter.
var ErrDuplicateMembership = apperr.Conflictf("user is already a member")

func errNotMember() error { return apperr.NotFoundf("membership not found") }

// Add inserts an active membership. A second active membership for the same
// (newsletter, user) fails on the partial unique index.
func (s *Store) Add(ctx context.Context, m *models.Membership) error {
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	if m.AnsweredQuestions == nil {
		m.AnsweredQuestions = []primitive.ObjectID{}
	}
	now := time.Now().UTC()
	if m.JoinedAt.IsZero() {
		m.JoinedAt = now
	}
	m.UpdatedAt = now
	m.IsActive = true

	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateMembership
		}
		return err
	}
	return nil
}

// GetActive returns the user's active membership in the newsletter.
func (s *Store) GetActive(ctx context.Context, newsletterID primitive.ObjectID, userID string) (models.Membership, error) {
	var m models.Membership
	err := s.c.FindOne(ctx, bson.M{
		"newsletter_id": newsletterID,
		"user_id":       userID,
		"is_active":     true,
	}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return m, errNotMember()
	}
	return m, err
}

// ListActiveByNewsletter returns active memberships ordered by join time.
func (s *Store) ListActiveByNewsletter(ctx context.Context, newsletterID primitive.ObjectID) ([]models.Membership, error) {
	return s.find(ctx, bson.M{"newsletter_id": newsletterID, "is_active": true})
}

// ListActiveByUser returns the user's active memberships ordered by join time.
func (s *Store) ListActiveByUser(ctx context.Context, userID string) ([]models.Membership, error) {
	return s.find(ctx, bson.M{"user_id": userID, "is_active": true})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Membership, error) {
	opts := options.Find().SetSort(bson.D{{Key: "joined_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	out := []models.Membership{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountActive counts active memberships in a newsletter.
func (s *Store) CountActive(ctx context.Context, newsletterID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"newsletter_id": newsletterID, "is_active": true})
}

// CountActiveByNewsletter counts active memberships per newsletter.
func (s *Store) CountActiveByNewsletter(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	out := make(map[primitive.ObjectID]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"newsletter_id": bson.M{"$in": ids}, "is_active": true}}},
		{{Key: "$group", Value: bson.M{"_id": "$newsletter_id", "n": bson.M{"$sum": 1}}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
			N  int64              `bson:"n"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out[row.ID] = row.N
	}
	return out, cur.Err()
}

// OwnersOf returns the owner uid per newsletter.
func (s *Store) OwnersOf(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	out := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	list, err := s.find(ctx, bson.M{
		"newsletter_id": bson.M{"$in": ids},
		"role":          models.RoleOwner,
		"is_active":     true,
	})
	if err != nil {
		return nil, err
	}
	for _, m := range list {
		if _, seen := out[m.NewsletterID]; !seen {
			out[m.NewsletterID] = m.UserID
		}
	}
	return out, nil
}

// Deactivate flips the active membership to inactive. The record is kept.
func (s *Store) Deactivate(ctx context.Context, newsletterID primitive.ObjectID, userID string) error {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"newsletter_id": newsletterID, "user_id": userID, "is_active": true},
		bson.M{"$set": bson.M{"is_active": false, "removed_at": now, "updated_at": now}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errNotMember()
	}
	return nil
}

// SetRole changes the role on the active membership.
func (s *Store) SetRole(ctx context.Context, newsletterID primitive.ObjectID, userID, role string) (models.Membership, error) {
	var m models.Membership
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"newsletter_id": newsletterID, "user_id": userID, "is_active": true},
		bson.M{"$set": bson.M{"role": role, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return m, errNotMember()
	}
	return m, err
}

// AppendAnswered records that the member has been issued questionID.
func (s *Store) AppendAnswered(ctx context.Context, membershipID, questionID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": membershipID},
		bson.M{
			"$push": bson.M{"answered_questions": questionID},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	return err
}
