package messaging

import (
	"context"
	"errors"

	"github.com/Ajaysirivaram/flatmate-find-smart/internal/clock"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/database"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service owns the anonymous -> contact-disclosed state machine per chat and
// the reporting sub-flow. Disclosure is an explicit state on the chat row, so
// transitions stay exhaustive and testable.
type Service struct {
	DB    *gorm.DB
	Clock clock.Clock
}

// chatForPair finds or creates the chat for an unordered user pair. Creation
// is idempotent: a racing insert loses on the pair's unique index and the
// existing row is returned instead.
func (s *Service) chatForPair(ctx context.Context, a, b uuid.UUID) (*models.Chat, error) {
	u1, u2 := models.CanonicalPair(a, b)
	var chat models.Chat
	err := s.DB.WithContext(ctx).Where("user1 = ? AND user2 = ?", u1, u2).First(&chat).Error
	if err == nil {
		return &chat, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, database.Classify(err)
	}
	chat = models.Chat{
		ID:              uuid.New(),
		User1:           u1,
		User2:           u2,
		DisclosureState: models.DisclosureAnonymous,
		CreatedAt:       s.Clock.Now(),
	}
	if createErr := s.DB.WithContext(ctx).Create(&chat).Error; createErr != nil {
		var existing models.Chat
		if err := s.DB.WithContext(ctx).Where("user1 = ? AND user2 = ?", u1, u2).First(&existing).Error; err == nil {
			return &existing, nil
		}
		return nil, database.Classify(createErr)
	}
	return &chat, nil
}

// GetChat fetches a chat the requester participates in.
func (s *Service) GetChat(ctx context.Context, chatID, requesterID uuid.UUID) (*models.Chat, error) {
	var chat models.Chat
	if err := s.DB.WithContext(ctx).Where("id = ?", chatID).First(&chat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, database.Classify(err)
	}
	if chat.User1 != requesterID && chat.User2 != requesterID {
		return nil, ErrNotParticipant
	}
	return &chat, nil
}

// ListChats returns every chat the user participates in, newest first.
func (s *Service) ListChats(ctx context.Context, userID uuid.UUID) ([]models.Chat, error) {
	var chats []models.Chat
	if err := s.DB.WithContext(ctx).
		Where("user1 = ? OR user2 = ?", userID, userID).
		Order("created_at DESC, id DESC").
		Find(&chats).Error; err != nil {
		return nil, database.Classify(err)
	}
	return chats, nil
}

// SendMessage appends a message to the pair's chat, creating the chat on
// first contact. The message copies the chat's current disclosure state, so
// is_contact_shared is monotonic per chat: once the chat is shared, every
// later message carries true.
func (s *Service) SendMessage(ctx context.Context, fromUser, toUser uuid.UUID, content, imageURL *string) (*models.Message, error) {
	if fromUser == toUser {
		return nil, ErrSelfChat
	}
	hasContent := content != nil && *content != ""
	hasImage := imageURL != nil && *imageURL != ""
	if !hasContent && !hasImage {
		return nil, ErrEmptyMessage
	}
	chat, err := s.chatForPair(ctx, fromUser, toUser)
	if err != nil {
		return nil, err
	}
	if chat.DisclosureState == models.DisclosureBlocked {
		return nil, ErrChatBlocked
	}
	msg := &models.Message{
		ID:              uuid.New(),
		ChatID:          chat.ID,
		FromUser:        fromUser,
		ToUser:          toUser,
		Content:         content,
		ImageURL:        imageURL,
		IsContactShared: chat.DisclosureState == models.DisclosureShared,
		CreatedAt:       s.Clock.Now(),
	}
	if err := s.DB.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, database.Classify(err)
	}
	return msg, nil
}

// ListMessages returns a chat's messages ordered by created_at, ties broken
// by id.
func (s *Service) ListMessages(ctx context.Context, chatID, requesterID uuid.UUID) ([]models.Message, error) {
	if _, err := s.GetChat(ctx, chatID, requesterID); err != nil {
		return nil, err
	}
	var msgs []models.Message
	if err := s.DB.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error; err != nil {
		return nil, database.Classify(err)
	}
	return msgs, nil
}

// RequestContactDisclosure records intent to share contact details. It moves
// anonymous to contact_requested and reveals nothing. Repeating the request,
// or requesting after disclosure, is a no-op success.
func (s *Service) RequestContactDisclosure(ctx context.Context, chatID, requesterID uuid.UUID) error {
	chat, err := s.GetChat(ctx, chatID, requesterID)
	if err != nil {
		return err
	}
	switch chat.DisclosureState {
	case models.DisclosureBlocked:
		return ErrChatBlocked
	case models.DisclosureRequested, models.DisclosureShared:
		return nil
	}
	res := s.DB.WithContext(ctx).Model(&models.Chat{}).
		Where("id = ? AND disclosure_state = ?", chatID, models.DisclosureAnonymous).
		Update("disclosure_state", models.DisclosureRequested)
	if res.Error != nil {
		return database.Classify(res.Error)
	}
	// Zero rows means another transition won the race; all forward
	// transitions from anonymous are acceptable outcomes here.
	return nil
}

// ConfirmDisclosure moves the chat to contact_shared. The caller must have
// observed a successful payment of the disclosure fee; this engine only
// applies the effect. Irreversible: a shared chat never returns to anonymous.
func (s *Service) ConfirmDisclosure(ctx context.Context, chatID, payingUserID uuid.UUID) error {
	chat, err := s.GetChat(ctx, chatID, payingUserID)
	if err != nil {
		return err
	}
	switch chat.DisclosureState {
	case models.DisclosureBlocked:
		return ErrChatBlocked
	case models.DisclosureShared:
		return nil
	}
	res := s.DB.WithContext(ctx).Model(&models.Chat{}).
		Where("id = ? AND disclosure_state IN ?", chatID, []string{models.DisclosureAnonymous, models.DisclosureRequested}).
		Update("disclosure_state", models.DisclosureShared)
	if res.Error != nil {
		return database.Classify(res.Error)
	}
	if res.RowsAffected == 0 {
		// Re-read: a racing moderation block must refuse the disclosure.
		fresh, err := s.GetChat(ctx, chatID, payingUserID)
		if err != nil {
			return err
		}
		if fresh.DisclosureState == models.DisclosureBlocked {
			return ErrChatBlocked
		}
	}
	return nil
}

// Report files a pending report against a user and/or listing. It does not
// change chat state; a later moderation action may set blocked.
func (s *Service) Report(ctx context.Context, reporterID uuid.UUID, reason string, targetUser, targetListing *uuid.UUID) (*models.Report, error) {
	if reason == "" || (targetUser == nil && targetListing == nil) {
		return nil, ErrInvalidReport
	}
	report := &models.Report{
		ID:            uuid.New(),
		Reason:        reason,
		ReportedBy:    reporterID,
		TargetUser:    targetUser,
		TargetListing: targetListing,
		Status:        models.ReportPending,
		CreatedAt:     s.Clock.Now(),
	}
	if err := s.DB.WithContext(ctx).Create(report).Error; err != nil {
		return nil, database.Classify(err)
	}
	return report, nil
}

// BlockChat is the moderation effect of an actioned report: the chat refuses
// further sends and disclosures. Moderation itself lives outside this engine.
func (s *Service) BlockChat(ctx context.Context, chatID uuid.UUID) error {
	res := s.DB.WithContext(ctx).Model(&models.Chat{}).
		Where("id = ?", chatID).
		Update("disclosure_state", models.DisclosureBlocked)
	if res.Error != nil {
		return database.Classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrChatNotFound
	}
	return nil
}
