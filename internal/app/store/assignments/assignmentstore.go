// internal/app/store/assignments/assignmentstore.go
package assignmentstore

import (
	"context"
	"time"

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
	return &Store{c: db.Collection(models.CollAssignments)}
}

// Create inserts a single assignment.
func (s *Store) Create(ctx context.Context, a *models.QuestionAssignment) error {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if a.AssignedAt.IsZero() {
		a.AssignedAt = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, a)
	return err
}

// CreateMany inserts assignments in one round trip.
func (s *Store) CreateMany(ctx context.Context, list []models.QuestionAssignment) error {
	if len(list) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(list))
	for i := range list {
		if list[i].ID.IsZero() {
			list[i].ID = primitive.NewObjectID()
		}
		docs = append(docs, list[i])
	}
	_, err := s.c.InsertMany(ctx, docs)
	return err
}

// ListForUser returns the user's assignments in a session, oldest first.
func (s *Store) ListForUser(ctx context.Context, sessionID primitive.ObjectID, userID string) ([]models.QuestionAssignment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "assigned_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"session_id": sessionID, "user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	out := []models.QuestionAssignment{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkAnswered flags the user's unanswered assignment of questionID in the
// session as answered. Returns how many documents changed (0 or 1).
func (s *Store) MarkAnswered(ctx context.Context, sessionID primitive.ObjectID, userID string, questionID primitive.ObjectID, at time.Time) (int64, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"session_id":  sessionID,
			"user_id":     userID,
			"question_id": questionID,
			"answered":    false,
		},
		bson.M{"$set": bson.M{"answered": true, "answered_at": at}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
