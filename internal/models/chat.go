package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Disclosure states for a chat. Transitions only move forward:
// anonymous -> contact_requested -> contact_shared, and
// anonymous/contact_requested -> blocked (moderation).
const (
	DisclosureAnonymous = "anonymous"
	DisclosureRequested = "contact_requested"
	DisclosureShared    = "contact_shared"
	DisclosureBlocked   = "blocked"
)

// Chat is the conversation between an unordered pair of users. User1/User2
// are stored in canonical order so the pair is unique.
type Chat struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	User1           uuid.UUID `gorm:"column:user1;type:uuid;not null;uniqueIndex:idx_chats_pair" json:"user1"`
	User2           uuid.UUID `gorm:"column:user2;type:uuid;not null;uniqueIndex:idx_chats_pair" json:"user2"`
	DisclosureState string    `gorm:"column:disclosure_state;default:'anonymous'" json:"disclosure_state"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Chat) TableName() string {
	return "chats"
}

// CanonicalPair orders two user ids so (a,b) and (b,a) map to the same chat row.
func CanonicalPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if strings.Compare(a.String(), b.String()) > 0 {
		return b, a
	}
	return a, b
}

// Message is append-only chat content, ordered by created_at with id as
// tiebreak. IsContactShared copies the chat's disclosure state at send time.
type Message struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ChatID          uuid.UUID `gorm:"column:chat_id;type:uuid;not null;index" json:"chat_id"`
	FromUser        uuid.UUID `gorm:"column:from_user;type:uuid;not null" json:"from_user"`
	ToUser          uuid.UUID `gorm:"column:to_user;type:uuid;not null" json:"to_user"`
	Content         *string   `gorm:"column:content" json:"content,omitempty"`
	ImageURL        *string   `gorm:"column:image_url" json:"image_url,omitempty"`
	IsContactShared bool      `gorm:"column:is_contact_shared" json:"is_contact_shared"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}
