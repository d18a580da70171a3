package newsletters

import (
	"context"
	"time"

	"github.com/dalemusser/newsletterhub/internal/app/policy/newsletterpolicy"
	membershipstore "github.com/dalemusser/newsletterhub/internal/app/store/memberships"
	"github.com/dalemusser/newsletterhub/internal/app/system/apperr"
	"github.com/dalemusser/newsletterhub/internal/app/system/txn"
	"github.com/dalemusser/newsletterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// AddMember grants targetID a membership. The adder needs write access;
// the owner role cannot be granted here.
func (s *Service) AddMember(ctx context.Context, newsletterID primitive.ObjectID, targetID, addedBy, role string) (models.Membership, error) {
	if role == "" {
		role = models.RoleMember
	}
	if !models.ValidRole(role) || role == models.RoleOwner {
		return models.Membership{}, apperr.Invalidf("role must be moderator or member")
	}
	if targetID == "" {
		return models.Membership{}, apperr.Invalidf("userId is required")
	}
	if err := newsletterpolicy.RequireAccess(ctx, s.db, newsletterID, addedBy, newsletterpolicy.Write); err != nil {
		return models.Membership{}, err
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return models.Membership{}, err
	}

	if _, err := s.members.GetActive(ctx, newsletterID, targetID); err == nil {
		return models.Membership{}, membershipstore.ErrDuplicateMembership
	} else if !apperr.Is(err, apperr.NotFound) {
		return models.Membership{}, err
	}

	var m models.Membership
	err := txn.Run(ctx, s.db.Client(), s.log, func(ctx context.Context) error {
		n, err := s.newsletters.ReserveMemberSlot(ctx, newsletterID)
		if err != nil {
			return err
		}
		count, err := s.members.CountActive(ctx, newsletterID)
		if err != nil {
			return err
		}
		if n.Settings.MaxMembers > 0 && count >= int64(n.Settings.MaxMembers) {
			return apperr.Conflictf("newsletter has reached its member limit")
		}
		m = models.Membership{
			NewsletterID: newsletterID,
			UserID:       targetID,
			Role:         role,
			AddedBy:      addedBy,
		}
		return s.members.Add(ctx, &m)
	})
	if err != nil {
		return models.Membership{}, err
	}
	s.log.Info("member added",
		zap.String("newsletter_id", newsletterID.Hex()),
		zap.String("user_id", targetID),
		zap.String("role", role),
		zap.String("by", addedBy))
	return m, nil
}

// RemoveMember deactivates targetID's membership. Allowed for users with
// write access and for the member themselves. Only an owner can remove an
// owner, and only themselves.
func (s *Service) RemoveMember(ctx context.Context, newsletterID primitive.ObjectID, targetID, removedBy string) error {
	self := targetID == removedBy
	if !self {
		if err := newsletterpolicy.RequireAccess(ctx, s.db, newsletterID, removedBy, newsletterpolicy.Write); err != nil {
			return err
		}
	}
	m, err := s.members.GetActive(ctx, newsletterID, targetID)
	if err != nil {
		return err
	}
	if m.Role == models.RoleOwner && !self {
		return apperr.Unauthorizedf("an owner can only be removed by themselves")
	}
	if err := s.members.Deactivate(ctx, newsletterID, targetID); err != nil {
		return err
	}
	s.log.Info("member removed",
		zap.String("newsletter_id", newsletterID.Hex()),
		zap.String("user_id", targetID),
		zap.String("by", removedBy))
	return nil
}

// UpdateMemberRole changes a member's role. Owner only; the owner's own
// role is fixed.
func (s *Service) UpdateMemberRole(ctx context.Context, newsletterID primitive.ObjectID, targetID, role, updatedBy string) (models.Membership, error) {
	if !models.ValidRole(role) || role == models.RoleOwner {
		return models.Membership{}, apperr.Invalidf("role must be moderator or member")
	}
	if err := newsletterpolicy.RequireOwner(ctx, s.db, newsletterID, updatedBy); err != nil {
		return models.Membership{}, err
	}
	m, err := s.members.GetActive(ctx, newsletterID, targetID)
	if err != nil {
		return models.Membership{}, err
	}
	if m.Role == models.RoleOwner {
		return models.Membership{}, apperr.Invalidf("the owner's role cannot be changed")
	}
	return s.members.SetRole(ctx, newsletterID, targetID, role)
}

// Member is an active membership joined to the member's profile.
type Member struct {
	UserID      string    `json:"userId"`
	Role        string    `json:"role"`
	JoinedAt    time.Time `json:"joinedAt"`
	DisplayName string    `json:"displayName,omitempty"`
	Email       string    `json:"email,omitempty"`
	IsActive    bool      `json:"isActive"`
}

// ListMembers returns the newsletter's active members. Read access required.
func (s *Service) ListMembers(ctx context.Context, newsletterID primitive.ObjectID, userID string) ([]Member, error) {
	if err := s.requireReadable(ctx, newsletterID, userID); err != nil {
		return nil, err
	}
	ms, err := s.members.ListActiveByNewsletter(ctx, newsletterID)
	if err != nil {
		return nil, err
	}
	uids := make([]string, 0, len(ms))
	for _, m := range ms {
		uids = append(uids, m.UserID)
	}
	profiles, err := s.users.GetMany(ctx, uids)
	if err != nil {
		return nil, err
	}

	out := make([]Member, 0, len(ms))
	for _, m := range ms {
		mv := Member{UserID: m.UserID, Role: m.Role, JoinedAt: m.JoinedAt}
		if u, ok := profiles[m.UserID]; ok {
			mv.DisplayName = u.DisplayName
			mv.Email = u.Email
			mv.IsActive = u.IsActive
		}
		out = append(out, mv)
	}
	return out, nil
}
