// internal/app/store/weekly/weeklystore.go
package weeklystore

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
	return &Store{c: db.Collection(models.CollWeeklyAssignments)}
}

// DocID is the summary key for a newsletter's week.
func DocID(newsletterID primitive.ObjectID, weekKey string) string {
	return newsletterID.Hex() + ":" + weekKey
}

// Put writes the week's summary, replacing any earlier run for that week.
func (s *Store) Put(ctx context.Context, w *models.WeeklyAssignment) error {
	w.ID = DocID(w.NewsletterID, w.WeekKey)
	_, err := s.c.ReplaceOne(ctx, bson.M{"_id": w.ID}, w, options.Replace().SetUpsert(true))
	return err
}

// Get loads the summary for a newsletter's week.
func (s *Store) Get(ctx context.Context, newsletterID primitive.ObjectID, weekKey string) (models.WeeklyAssignment, error) {
	var w models.WeeklyAssignment
	err := s.c.FindOne(ctx, bson.M{"_id": DocID(newsletterID, weekKey)}).Decode(&w)
	if err == mongo.ErrNoDocuments {
		return w, apperr.NotFoundf("weekly assignment not found")
	}
	return w, err
}
