package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Listing kinds and room types (match the Supabase listings table).
const (
	KindRoommate = "roommate"
	KindHostel   = "hostel"

	RoomTypePrivate   = "private"
	RoomTypeShared    = "shared"
	RoomTypeDormitory = "dormitory"

	GenderAny = "any"
)

// Listing matches the Supabase listings table, except that the stored
// is_boosted/is_expired booleans are gone: active and boosted are derived
// from timestamps at read time.
type Listing struct {
	ID               uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Kind             string         `gorm:"column:type;not null" json:"type"`
	Title            string         `gorm:"column:title;not null" json:"title"`
	Description      string         `gorm:"column:description" json:"description"`
	Price            int64          `gorm:"column:price;not null" json:"price"`
	Location         string         `gorm:"column:location;not null" json:"location"`
	Latitude         *float64       `gorm:"column:latitude" json:"latitude,omitempty"`
	Longitude        *float64       `gorm:"column:longitude" json:"longitude,omitempty"`
	Images           datatypes.JSON `gorm:"column:images;type:json" json:"images"`
	Tags             datatypes.JSON `gorm:"column:tags;type:json" json:"tags"`
	Amenities        datatypes.JSON `gorm:"column:amenities;type:json" json:"amenities"`
	OwnerID          uuid.UUID      `gorm:"column:owner_id;type:uuid;not null;index" json:"owner_id"`
	GenderPreference string         `gorm:"column:gender_preference;default:'any'" json:"gender_preference"`
	RestrictGender   bool           `gorm:"column:show_only_same_gender" json:"show_only_same_gender"`
	RoomType         string         `gorm:"column:room_type;not null" json:"room_type"`
	ViewCount        int64          `gorm:"column:view_count;default:0" json:"view_count"`
	ManuallyExpired  bool           `gorm:"column:manually_expired" json:"manually_expired"`
	ExpiresAt        time.Time      `gorm:"column:expires_at;not null" json:"expires_at"`
	Version          int64          `gorm:"column:version;default:0" json:"-"`
	CreatedAt        time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"column:updated_at" json:"updated_at"`
}

func (Listing) TableName() string {
	return "listings"
}

// ActiveAt reports whether the listing is live at the given instant.
// This derived flag, not a stored one, is authoritative for all read paths.
func (l *Listing) ActiveAt(now time.Time) bool {
	return !l.ManuallyExpired && now.Before(l.ExpiresAt)
}
