// internal/app/store/newsletters/newsletterstore.go
package newsletterstore

import (
	"context"
	"time"

	"github.com/dalemusser/newsletterhub/internal/app/system/apperr"
	"github.com/dalemusser/newsletterhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(models.CollNewsletters)}
}

// Create inserts n, assigning an ID when it has none.
func (s *Store) Create(ctx context.Context, n *models.Newsletter) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	n.NameCI = text.Fold(n.Name)
	_, err := s.c.InsertOne(ctx, n)
	return err
}

// GetByID loads a newsletter regardless of its active flag.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Newsletter, error) {
	var n models.Newsletter
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&n); err != nil {
		if err == mongo.ErrNoDocuments {
			return n, apperr.NotFoundf("newsletter not found")
		}
		return n, err
	}
	return n, nil
}

// GetActive loads a newsletter that has not been soft-deleted.
func (s *Store) GetActive(ctx context.Context, id primitive.ObjectID) (models.Newsletter, error) {
	var n models.Newsletter
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "is_active": true}).Decode(&n); err != nil {
		if err == mongo.ErrNoDocuments {
			return n, apperr.NotFoundf("newsletter not found")
		}
		return n, err
	}
	return n, nil
}

// ListActiveByIDs returns the active newsletters among ids, newest first.
func (s *Store) ListActiveByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Newsletter, error) {
	if len(ids) == 0 {
		return []models.Newsletter{}, nil
	}
	return s.find(ctx, bson.M{"_id": bson.M{"$in": ids}, "is_active": true})
}

// ListActive returns every active newsletter, newest first.
func (s *Store) ListActive(ctx context.Context) ([]models.Newsletter, error) {
	return s.find(ctx, bson.M{"is_active": true})
}

// ListAll returns every newsletter including soft-deleted ones, newest first.
func (s *Store) ListAll(ctx context.Context) ([]models.Newsletter, error) {
	return s.find(ctx, bson.M{})
}

// GetMany loads newsletters by id, keyed by id.
func (s *Store) GetMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Newsletter, error) {
	out := make(map[primitive.ObjectID]models.Newsletter, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	list, err := s.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	for _, n := range list {
		out[n.ID] = n
	}
	return out, nil
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Newsletter, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	out := []models.Newsletter{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies set and returns the stored result. name_ci follows name.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (models.Newsletter, error) {
	if name, ok := set["name"].(string); ok {
		set["name_ci"] = text.Fold(name)
	}
	set["updated_at"] = time.Now().UTC()

	var n models.Newsletter
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&n)
	if err == mongo.ErrNoDocuments {
		return n, apperr.NotFoundf("newsletter not found")
	}
	return n, err
}

// ReserveMemberSlot bumps member_seq on an active newsletter and returns it.
// Inside a transaction this write makes concurrent member adds on the same
// newsletter conflict, so a member count read afterwards cannot go stale
// before commit.
func (s *Store) ReserveMemberSlot(ctx context.Context, id primitive.ObjectID) (models.Newsletter, error) {
	var n models.Newsletter
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "is_active": true},
		bson.M{"$inc": bson.M{"member_seq": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&n)
	if err == mongo.ErrNoDocuments {
		return n, apperr.NotFoundf("newsletter not found")
	}
	return n, err
}
