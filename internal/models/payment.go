package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Payment purposes carried in PaymentIntent metadata.
const (
	PurposeBoost        = "boost"
	PurposeSubscription = "subscription"
	PurposeDisclosure   = "disclosure"
)

// Payment records a processed payment event. The unique index on the
// payment-intent id makes webhook processing idempotent.
type Payment struct {
	ID                    uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	StripePaymentIntentID string         `gorm:"column:stripe_payment_intent_id;uniqueIndex;not null" json:"stripe_payment_intent_id"`
	StripeEventID         string         `gorm:"column:stripe_event_id;not null" json:"stripe_event_id"`
	UserID                uuid.UUID      `gorm:"column:user_id;type:uuid;not null" json:"user_id"`
	Purpose               string         `gorm:"column:purpose;not null" json:"purpose"`
	AmountPaid            int64          `gorm:"column:amount_paid;not null" json:"amount_paid"`
	Currency              string         `gorm:"column:currency;not null" json:"currency"`
	Status                string         `gorm:"column:status;not null" json:"status"`
	RawPaymentIntent      datatypes.JSON `gorm:"column:raw_payment_intent;type:json" json:"raw_payment_intent"`
	CreatedAt             time.Time      `gorm:"column:created_at" json:"created_at"`
}

func (Payment) TableName() string {
	return "payments"
}
