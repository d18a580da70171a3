// internal/app/policy/newsletterpolicy/newsletterpolicy.go
package newsletterpolicy

import (
	"context"

	"github.com/dalemusser/newsletterhub/internal/app/system/apperr"
	"github.com/dalemusser/newsletterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mode is the kind of access being checked.
type Mode string

const (
	Read  Mode = "read"
	Write Mode = "write"
)

// HasAccess reports whether userID may read or write newsletter data.
//
//   - write: the user's active membership role is owner or moderator
//   - read: the newsletter is public, or the user holds any active membership
//
// A missing or soft-deleted newsletter yields false. Every call queries the
// authoritative collections; nothing is cached.
func HasAccess(ctx context.Context, db *mongo.Database, newsletterID primitive.ObjectID, userID string, mode Mode) (bool, error) {
	var n struct {
		Settings struct {
			IsPublic bool `bson:"is_public"`
		} `bson:"settings"`
	}
	err := db.Collection(models.CollNewsletters).FindOne(ctx,
		bson.M{"_id": newsletterID, "is_active": true},
		options.FindOne().SetProjection(bson.M{"settings.is_public": 1}),
	).Decode(&n)
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if mode == Read && n.Settings.IsPublic {
		return true, nil
	}
	if userID == "" {
		return false, nil
	}

	role, err := Role(ctx, db, newsletterID, userID)
	if err != nil {
		return false, err
	}
	switch mode {
	case Write:
		return role == models.RoleOwner || role == models.RoleModerator, nil
	case Read:
		return role != "", nil
	}
	return false, nil
}

// RequireAccess is HasAccess that returns an Unauthorized error on denial.
func RequireAccess(ctx context.Context, db *mongo.Database, newsletterID primitive.ObjectID, userID string, mode Mode) error {
	ok, err := HasAccess(ctx, db, newsletterID, userID, mode)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Unauthorizedf("unauthorized")
	}
	return nil
}

// Role returns the user's active role in the newsletter, or "" when the user
// is not an active member.
func Role(ctx context.Context, db *mongo.Database, newsletterID primitive.ObjectID, userID string) (string, error) {
	var m struct {
		Role string `bson:"role"`
	}
	err := db.Collection(models.CollMemberships).FindOne(ctx,
		bson.M{"newsletter_id": newsletterID, "user_id": userID, "is_active": true},
		options.FindOne().SetProjection(bson.M{"role": 1}),
	).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return m.Role, nil
}

// RequireOwner returns an Unauthorized error unless userID actively owns the newsletter.
func RequireOwner(ctx context.Context, db *mongo.Database, newsletterID primitive.ObjectID, userID string) error {
	role, err := Role(ctx, db, newsletterID, userID)
	if err != nil {
		return err
	}
	if role != models.RoleOwner {
		return apperr.Unauthorizedf("unauthorized")
	}
	return nil
}
