package models

import (
	"time"

	"github.com/google/uuid"
)

// Boost is a paid visibility window attached to exactly one listing.
// Never mutated after creation; it goes inactive by time alone.
type Boost struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ListingID     uuid.UUID `gorm:"column:listing_id;type:uuid;not null;index" json:"listing_id"`
	UserID        uuid.UUID `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Amount        int64     `gorm:"column:amount;not null" json:"amount"`
	DurationHours int       `gorm:"column:duration_hours;not null" json:"duration_hours"`
	StartTime     time.Time `gorm:"column:start_time;not null" json:"start_time"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Boost) TableName() string {
	return "boosts"
}

// EndTime is the instant the boost window closes.
func (b *Boost) EndTime() time.Time {
	return b.StartTime.Add(time.Duration(b.DurationHours) * time.Hour)
}

// ActiveAt reports whether the boost window contains the given instant.
func (b *Boost) ActiveAt(now time.Time) bool {
	return !now.Before(b.StartTime) && now.Before(b.EndTime())
}
