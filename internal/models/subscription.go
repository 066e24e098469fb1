package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription tiers.
const (
	TierBasic    = "basic"
	TierStandard = "standard"
	TierPremium  = "premium"
)

// Subscription is a business user's paid tier. A new purchase supersedes
// (does not stack with) an existing one; readers take the latest expires_at.
type Subscription struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Tier      string    `gorm:"column:tier;not null" json:"tier"`
	StartDate time.Time `gorm:"column:start_date;not null" json:"start_date"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null" json:"expires_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// CurrentAt reports whether the subscription is still running.
func (s *Subscription) CurrentAt(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}
