// Package users manages the caller's own profile.
package users

import (
	"context"
	"strings"
	"time"

	userstore "github.com/dalemusser/newsletterhub/internal/app/store/users"
	"github.com/dalemusser/newsletterhub/internal/app/system/apperr"
	"github.com/dalemusser/newsletterhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/newsletterhub/internal/app/system/limits"
	"github.com/dalemusser/newsletterhub/internal/app/system/timezones"
	"github.com/dalemusser/newsletterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Service struct {
	users *userstore.Store
	log   *zap.Logger
}

func New(db *mongo.Database, logger *zap.Logger) *Service {
	return &Service{users: userstore.New(db), log: logger}
}

// PreferencesInput is a partial preferences document.
type PreferencesInput struct {
	EmailNotifications *bool   `json:"emailNotifications,omitempty"`
	Timezone           *string `json:"timezone,omitempty"`
}

func (in *PreferencesInput) apply(p models.UserPreferences) (models.UserPreferences, error) {
	if in == nil {
		return p, nil
	}
	if in.EmailNotifications != nil {
		p.EmailNotifications = *in.EmailNotifications
	}
	if in.Timezone != nil {
		tz := strings.TrimSpace(*in.Timezone)
		if !timezones.Valid(tz) {
			return p, apperr.Invalidf("unknown timezone %q", tz)
		}
		p.Timezone = tz
	}
	return p, nil
}

// CreateInput is the body of a profile creation. UID must match the caller.
type CreateInput struct {
	UID         string            `json:"uid"`
	Email       string            `json:"email"`
	DisplayName string            `json:"displayName"`
	Preferences *PreferencesInput `json:"preferences,omitempty"`
}

// Caller is the verified identity creating a profile.
type Caller struct {
	UID   string
	Email string
	Name  string
}

// CreateProfile stores the caller's profile. Email and display name fall
// back to the token's claims.
func (s *Service) CreateProfile(ctx context.Context, caller Caller, in CreateInput) (models.User, error) {
	if in.UID == "" {
		in.UID = caller.UID
	}
	if in.UID != caller.UID {
		return models.User{}, apperr.Unauthorizedf("unauthorized")
	}
	email := strings.TrimSpace(in.Email)
	if email == "" {
		email = caller.Email
	}
	name := htmlsanitize.PlainText(in.DisplayName)
	if name == "" {
		name = htmlsanitize.PlainText(caller.Name)
	}
	if len(name) > limits.MaxDisplayName {
		return models.User{}, apperr.Invalidf("displayName is too long")
	}
	prefs, err := in.Preferences.apply(models.DefaultPreferences())
	if err != nil {
		return models.User{}, err
	}

	now := time.Now().UTC()
	u := models.User{
		ID:          caller.UID,
		Email:       email,
		DisplayName: name,
		IsActive:    true,
		IsAdmin:     false,
		Preferences: prefs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return models.User{}, err
	}
	s.log.Info("user profile created", zap.String("user_id", u.ID))
	return u, nil
}

// Me returns the caller's full profile.
func (s *Service) Me(ctx context.Context, uid string) (models.User, error) {
	return s.users.GetByID(ctx, uid)
}

// PublicProfile is what any signed-in user may see about another.
type PublicProfile struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	IsActive    bool   `json:"isActive"`
}

// GetPublic returns the public part of uid's profile.
func (s *Service) GetPublic(ctx context.Context, uid string) (PublicProfile, error) {
	u, err := s.users.GetByID(ctx, uid)
	if err != nil {
		return PublicProfile{}, err
	}
	return PublicProfile{UID: u.ID, DisplayName: u.DisplayName, Email: u.Email, IsActive: u.IsActive}, nil
}

// UpdateInput is the editable part of a profile.
type UpdateInput struct {
	DisplayName *string           `json:"displayName,omitempty"`
	Preferences *PreferencesInput `json:"preferences,omitempty"`
}

// UpdateProfile patches targetID's profile. Only the owner may do so.
func (s *Service) UpdateProfile(ctx context.Context, targetID, requesterID string, in UpdateInput) (models.User, error) {
	if targetID != requesterID {
		return models.User{}, apperr.Unauthorizedf("unauthorized")
	}
	if in.DisplayName == nil && in.Preferences == nil {
		return models.User{}, apperr.Invalidf("no valid fields to update")
	}
	u, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return u, err
	}

	set := bson.M{}
	if in.DisplayName != nil {
		name := htmlsanitize.PlainText(*in.DisplayName)
		if len(name) > limits.MaxDisplayName {
			return models.User{}, apperr.Invalidf("displayName is too long")
		}
		set["display_name"] = name
	}
	if in.Preferences != nil {
		prefs, err := in.Preferences.apply(u.Preferences)
		if err != nil {
			return models.User{}, err
		}
		set["preferences"] = prefs
	}
	return s.users.Update(ctx, targetID, set)
}

// DeleteProfile removes targetID's profile. Only the owner may do so.
func (s *Service) DeleteProfile(ctx context.Context, targetID, requesterID string) error {
	if targetID != requesterID {
		return apperr.Unauthorizedf("unauthorized")
	}
	if err := s.users.Delete(ctx, targetID); err != nil {
		return err
	}
	s.log.Info("user profile deleted", zap.String("user_id", targetID))
	return nil
}
