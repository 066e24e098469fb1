package entitlements

import (
	"context"
	"errors"
	"time"

	"github.com/Ajaysirivaram/flatmate-find-smart/internal/clock"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Unlimited marks a quota with no cap.
const Unlimited = -1

// Entitlement is the quota/credit bundle a subscription tier grants.
type Entitlement struct {
	MaxActiveListings     int `json:"max_active_listings"`
	BoostCreditsPerPeriod int `json:"boost_credits_per_period"`
}

// Resolve maps a tier to its entitlement. Malformed tiers resolve to basic.
// Side effect free.
func Resolve(tier string) Entitlement {
	switch tier {
	case models.TierStandard:
		return Entitlement{MaxActiveListings: 10, BoostCreditsPerPeriod: 1}
	case models.TierPremium:
		return Entitlement{MaxActiveListings: Unlimited, BoostCreditsPerPeriod: 5}
	default:
		return Entitlement{MaxActiveListings: 3, BoostCreditsPerPeriod: 0}
	}
}

// AllowsListings reports whether one more active listing fits under the cap.
func (e Entitlement) AllowsListings(activeCount int64) bool {
	return e.MaxActiveListings == Unlimited || activeCount < int64(e.MaxActiveListings)
}

// Service resolves entitlements against stored profiles and subscriptions.
type Service struct {
	DB    *gorm.DB
	Clock clock.Clock
}

// CurrentSubscription returns the user's subscription with the latest
// expires_at that is still in the future, or nil if none.
func (s *Service) CurrentSubscription(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND expires_at > ?", userID, s.Clock.Now()).
		Order("expires_at DESC").
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// QuotaFor resolves the entitlement for a user: business users get their
// current subscription tier, everyone else (and lapsed subscribers) gets basic.
func (s *Service) QuotaFor(ctx context.Context, userID uuid.UUID) (Entitlement, error) {
	var profile models.Profile
	if err := s.DB.WithContext(ctx).Where("id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Resolve(models.TierBasic), nil
		}
		return Entitlement{}, err
	}
	if profile.UserType != models.UserTypeBusiness {
		return Resolve(models.TierBasic), nil
	}
	sub, err := s.CurrentSubscription(ctx, userID)
	if err != nil {
		return Entitlement{}, err
	}
	if sub == nil {
		return Resolve(models.TierBasic), nil
	}
	return Resolve(sub.Tier), nil
}

// BoostPeriod returns the billing window boost credits are counted in: the
// current subscription's [start_date, expires_at). Without a subscription the
// tier has zero credits, so the window never matters; a zero window is returned.
func (s *Service) BoostPeriod(ctx context.Context, userID uuid.UUID) (start, end time.Time, err error) {
	sub, err := s.CurrentSubscription(ctx, userID)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if sub == nil {
		return time.Time{}, time.Time{}, nil
	}
	return sub.StartDate, sub.ExpiresAt, nil
}
