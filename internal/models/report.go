package models

import (
	"time"

	"github.com/google/uuid"
)

// Report statuses. Only a moderation actor moves a report past pending.
const (
	ReportPending  = "pending"
	ReportReviewed = "reviewed"
	ReportActioned = "actioned"
)

// Report matches the Supabase reports table. At least one of TargetUser or
// TargetListing is set.
type Report struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Reason        string     `gorm:"column:reason;not null" json:"reason"`
	ReportedBy    uuid.UUID  `gorm:"column:reported_by;type:uuid;not null" json:"reported_by"`
	TargetUser    *uuid.UUID `gorm:"column:target_user;type:uuid" json:"target_user,omitempty"`
	TargetListing *uuid.UUID `gorm:"column:target_listing;type:uuid" json:"target_listing,omitempty"`
	Status        string     `gorm:"column:status;default:'pending'" json:"status"`
	CreatedAt     time.Time  `gorm:"column:created_at" json:"created_at"`
}

func (Report) TableName() string {
	return "reports"
}
