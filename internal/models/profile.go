package models

import (
	"time"

	"github.com/google/uuid"
)

// User types (Supabase user_type enum).
const (
	UserTypeIndividual = "individual"
	UserTypeBusiness   = "business"
)

// Profile matches the Supabase profiles table, plus the email/password
// columns the Express auth layer kept alongside it.
type Profile struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"column:email;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash" json:"-"`
	DisplayName  string    `gorm:"column:display_name" json:"display_name"`
	Gender       string    `gorm:"column:gender" json:"gender"`
	PhoneNumber  string    `gorm:"column:phone_number" json:"phone_number"`
	AvatarURL    string    `gorm:"column:avatar_url" json:"avatar_url"`
	UserType     string    `gorm:"column:user_type" json:"user_type"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}
