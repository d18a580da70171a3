// internal/app/store/responses/responsestore.go
package responsestore

import (
	"context"

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
	return &Store{c: db.Collection(models.CollResponses)}
}

// Create inserts r, assigning an ID when it has none.
func (s *Store) Create(ctx context.Context, r *models.UserResponse) error {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	_, err := s.c.InsertOne(ctx, r)
	return err
}

// ListBySession returns a session's responses in submission order.
func (s *Store) ListBySession(ctx context.Context, sessionID primitive.ObjectID) ([]models.UserResponse, error) {
	return s.find(ctx, bson.M{"session_id": sessionID}, 1)
}

// ListBySessionUser returns one user's responses in a session.
func (s *Store) ListBySessionUser(ctx context.Context, sessionID primitive.ObjectID, userID string) ([]models.UserResponse, error) {
	return s.find(ctx, bson.M{"session_id": sessionID, "user_id": userID}, 1)
}

// ListAll returns every response, newest first.
func (s *Store) ListAll(ctx context.Context) ([]models.UserResponse, error) {
	return s.find(ctx, bson.M{}, -1)
}

func (s *Store) find(ctx context.Context, filter bson.M, dir int) ([]models.UserResponse, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: dir}, {Key: "_id", Value: dir}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	out := []models.UserResponse{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountBy counts responses grouped by field ("session_id" or "question_id")
// for the given ids.
func (s *Store) CountBy(ctx context.Context, field string, ids []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	out := make(map[primitive.ObjectID]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{field: bson.M{"$in": ids}}}},
		{{Key: "$group", Value: bson.M{"_id": "$" + field, "n": bson.M{"$sum": 1}}}},
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

// Delete removes a response document.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.NotFoundf("response not found")
	}
	return nil
}
