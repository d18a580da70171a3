// internal/app/store/sessions/sessionstore.go
package sessionstore

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
	return &Store{c: db.Collection(models.CollSessions)}
}

// ErrActiveExists is returned when a newsletter would get a second active session.
var ErrActiveExists = apperr.Conflictf("newsletter already has an active session")

func errNotFound() error { return apperr.NotFoundf("session not found") }

// Create inserts sess, assigning an ID when it has none.
func (s *Store) Create(ctx context.Context, sess *models.Session) error {
	if sess.ID.IsZero() {
		sess.ID = primitive.NewObjectID()
	}
	if _, err := s.c.InsertOne(ctx, sess); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrActiveExists
		}
		return err
	}
	return nil
}

// GetByID loads a session.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Session, error) {
	var sess models.Session
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sess)
	if err == mongo.ErrNoDocuments {
		return sess, errNotFound()
	}
	return sess, err
}

// GetActive returns the newsletter's active session, or nil when there is none.
func (s *Store) GetActive(ctx context.Context, newsletterID primitive.ObjectID) (*models.Session, error) {
	var sess models.Session
	err := s.c.FindOne(ctx, bson.M{"newsletter_id": newsletterID, "status": models.SessionActive}).Decode(&sess)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// GetMany loads sessions by id, keyed by id.
func (s *Store) GetMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Session, error) {
	out := make(map[primitive.ObjectID]models.Session, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var list []models.Session
	if err := cur.All(ctx, &list); err != nil {
		return nil, err
	}
	for _, sess := range list {
		out[sess.ID] = sess
	}
	return out, nil
}

// ListAll returns every session, latest week first.
func (s *Store) ListAll(ctx context.Context) ([]models.Session, error) {
	opts := options.Find().SetSort(bson.D{{Key: "week_start", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	out := []models.Session{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies set and returns the stored result. Activating a session
// while another is active is a Conflict.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (models.Session, error) {
	set["updated_at"] = time.Now().UTC()
	var sess models.Session
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&sess)
	switch {
	case err == nil:
		return sess, nil
	case err == mongo.ErrNoDocuments:
		return sess, errNotFound()
	case wafflemongo.IsDup(err):
		return sess, ErrActiveExists
	}
	return sess, err
}

// Delete removes a session document.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return errNotFound()
	}
	return nil
}
