package feed

import (
	"context"

	"github.com/Ajaysirivaram/flatmate-find-smart/internal/clock"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/database"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/models"

	"gorm.io/gorm"
)

// Service is the read-only feed over the persisted listings. Reads are not
// locked; stale boost/expiry state self-corrects on the next evaluation
// because every derived flag is recomputed from timestamps.
type Service struct {
	DB    *gorm.DB
	Clock clock.Clock
}

// Feed returns the ranked, filtered listings for a viewer.
func (s *Service) Feed(ctx context.Context, viewer *models.Profile, filter Filter) ([]models.Listing, error) {
	now := s.Clock.Now()

	var listings []models.Listing
	if err := s.DB.WithContext(ctx).Find(&listings).Error; err != nil {
		return nil, database.Classify(err)
	}
	var boosts []models.Boost
	if err := s.DB.WithContext(ctx).
		Where("start_time <= ?", now).
		Find(&boosts).Error; err != nil {
		return nil, database.Classify(err)
	}
	return Rank(viewer, filter, listings, boosts, now), nil
}
