package subscriptions

import (
	"context"
	"errors"

	"github.com/Ajaysirivaram/flatmate-find-smart/internal/clock"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/database"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Billing periods.
const (
	PeriodMonthly = "monthly"
	PeriodYearly  = "yearly"
)

var (
	ErrInvalidTier   = errors.New("Unknown subscription tier")
	ErrInvalidPeriod = errors.New("Billing period must be monthly or yearly")
	ErrNotBusiness   = errors.New("Subscriptions are for business accounts")
)

// Plan prices (minor-unit-free, matching the production price table).
var planPrices = map[string]map[string]int64{
	models.TierStandard: {PeriodMonthly: 249, PeriodYearly: 2499},
	models.TierPremium:  {PeriodMonthly: 999, PeriodYearly: 9999},
}

// PriceFor returns the fee for a paid tier and billing period. Basic is free
// and never purchased.
func PriceFor(tier, period string) (int64, error) {
	periods, ok := planPrices[tier]
	if !ok {
		return 0, ErrInvalidTier
	}
	price, ok := periods[period]
	if !ok {
		return 0, ErrInvalidPeriod
	}
	return price, nil
}

// Service records subscription purchases and answers which subscription is
// current. A purchase supersedes rather than stacks: readers always take the
// row with the latest expires_at.
type Service struct {
	DB    *gorm.DB
	Clock clock.Clock
}

// Purchase records a paid subscription for a business user. The payment
// collaborator has already confirmed the fee.
func (s *Service) Purchase(ctx context.Context, userID uuid.UUID, tier, period string) (*models.Subscription, error) {
	if _, err := PriceFor(tier, period); err != nil {
		return nil, err
	}
	var profile models.Profile
	if err := s.DB.WithContext(ctx).Where("id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotBusiness
		}
		return nil, database.Classify(err)
	}
	if profile.UserType != models.UserTypeBusiness {
		return nil, ErrNotBusiness
	}

	now := s.Clock.Now()
	expires := now.AddDate(0, 1, 0)
	if period == PeriodYearly {
		expires = now.AddDate(1, 0, 0)
	}
	sub := &models.Subscription{
		ID:        uuid.New(),
		UserID:    userID,
		Tier:      tier,
		StartDate: now,
		ExpiresAt: expires,
	}
	if err := s.DB.WithContext(ctx).Create(sub).Error; err != nil {
		return nil, database.Classify(err)
	}
	return sub, nil
}

// Current returns the user's subscription with the latest expires_at still in
// the future, or nil.
func (s *Service) Current(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND expires_at > ?", userID, s.Clock.Now()).
		Order("expires_at DESC").
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, database.Classify(err)
	}
	return &sub, nil
}
