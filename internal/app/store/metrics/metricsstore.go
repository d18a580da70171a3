package metricsstore

import (
	"context"

	"github.com/dalemusser/newsletterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Counts is the set of totals shown on the admin overview.
type Counts struct {
	Users             int64 `json:"users"`
	ActiveUsers       int64 `json:"activeUsers"`
	Newsletters       int64 `json:"newsletters"`
	ActiveMemberships int64 `json:"activeMemberships"`
	Questions         int64 `json:"questions"`
	ActiveSessions    int64 `json:"activeSessions"`
	Responses         int64 `json:"responses"`
}

// FetchCounts returns the high-level counts used by the admin overview.
// Intentionally tolerant: on error it returns 0 for that counter.
func FetchCounts(ctx context.Context, db *mongo.Database) Counts {
	var out Counts
	count := func(coll string, filter bson.M, dst *int64) {
		if n, err := db.Collection(coll).CountDocuments(ctx, filter); err == nil {
			*dst = n
		}
	}

	count(models.CollUsers, bson.M{}, &out.Users)
	count(models.CollUsers, bson.M{"is_active": true}, &out.ActiveUsers)
	count(models.CollNewsletters, bson.M{"is_active": true}, &out.Newsletters)
	count(models.CollMemberships, bson.M{"is_active": true}, &out.ActiveMemberships)
	count(models.CollQuestions, bson.M{"is_active": true}, &out.Questions)
	count(models.CollSessions, bson.M{"status": models.SessionActive}, &out.ActiveSessions)
	count(models.CollResponses, bson.M{}, &out.Responses)

	return out
}
