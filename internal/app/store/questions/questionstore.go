// internal/app/store/questions/questionstore.go
package questionstore

import (
	"context"
	"time"

	"github.com/dalemusser/newsletterhub/internal/app/system/apperr"
	"github.com/dalemusser/newsletterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(models.CollQuestions)}
}

func errNotFound() error { return apperr.NotFoundf("question not found") }

// Create inserts q, assigning an ID when it has none.
func (s *Store) Create(ctx context.Context, q *models.Question) error {
	if q.ID.IsZero() {
		q.ID = primitive.NewObjectID()
	}
	_, err := s.c.InsertOne(ctx, q)
	return err
}

// GetByID loads a question regardless of its active flag.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Question, error) {
	var q models.Question
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&q)
	if err == mongo.ErrNoDocuments {
		return q, errNotFound()
	}
	return q, err
}

// GetMany loads questions by id, keyed by id.
func (s *Store) GetMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Question, error) {
	out := make(map[primitive.ObjectID]models.Question, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	list, err := s.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	for _, q := range list {
		out[q.ID] = q
	}
	return out, nil
}

// ListByNewsletter returns the newsletter's questions, oldest first.
func (s *Store) ListByNewsletter(ctx context.Context, newsletterID primitive.ObjectID, activeOnly bool) ([]models.Question, error) {
	filter := bson.M{"newsletter_id": newsletterID}
	if activeOnly {
		filter["is_active"] = true
	}
	return s.find(ctx, filter)
}

// ListAll returns every question, oldest first.
func (s *Store) ListAll(ctx context.Context) ([]models.Question, error) {
	return s.find(ctx, bson.M{})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Question, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	out := []models.Question{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies set and returns the stored result.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (models.Question, error) {
	set["updated_at"] = time.Now().UTC()
	var q models.Question
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&q)
	if err == mongo.ErrNoDocuments {
		return q, errNotFound()
	}
	return q, err
}

// IncrementUsage atomically adds one to usage_count and returns the new value.
func (s *Store) IncrementUsage(ctx context.Context, id primitive.ObjectID) (int64, error) {
	var q models.Question
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{"usage_count": 1},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&q)
	if err == mongo.ErrNoDocuments {
		return 0, errNotFound()
	}
	if err != nil {
		return 0, err
	}
	return q.UsageCount, nil
}
