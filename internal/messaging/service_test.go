package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/Ajaysirivaram/flatmate-find-smart/internal/clock"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupMessagingTest(t *testing.T) (*Service, *gorm.DB, *clock.Fixed) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Chat{}, &models.Message{}, &models.Report{}))

	clk := &clock.Fixed{T: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return &Service{DB: db, Clock: clk}, db, clk
}

func str(s string) *string { return &s }

func TestSendMessage_CreatesOneChatPerPair(t *testing.T) {
	svc, db, _ := setupMessagingTest(t)
	alice, bob := uuid.New(), uuid.New()

	m1, err := svc.SendMessage(context.Background(), alice, bob, str("hi"), nil)
	require.NoError(t, err)
	m2, err := svc.SendMessage(context.Background(), bob, alice, str("hello"), nil)
	require.NoError(t, err)

	// Both directions land in the same chat.
	assert.Equal(t, m1.ChatID, m2.ChatID)
	var chatCount int64
	require.NoError(t, db.Model(&models.Chat{}).Count(&chatCount).Error)
	assert.Equal(t, int64(1), chatCount)
}

func TestSendMessage_Validation(t *testing.T) {
	svc, _, _ := setupMessagingTest(t)
	alice, bob := uuid.New(), uuid.New()

	_, err := svc.SendMessage(context.Background(), alice, alice, str("hi"), nil)
	assert.ErrorIs(t, err, ErrSelfChat)

	_, err = svc.SendMessage(context.Background(), alice, bob, nil, nil)
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = svc.SendMessage(context.Background(), alice, bob, str(""), str(""))
	assert.ErrorIs(t, err, ErrEmptyMessage)

	// Image-only messages are fine.
	_, err = svc.SendMessage(context.Background(), alice, bob, nil, str("https://cdn.example.com/a.jpg"))
	assert.NoError(t, err)
}

// Messages copy the chat's disclosure state at send time: anonymous before
// disclosure, shared after, never flipping back.
func TestSendMessage_ContactSharedMonotonic(t *testing.T) {
	svc, _, clk := setupMessagingTest(t)
	alice, bob := uuid.New(), uuid.New()

	before, err := svc.SendMessage(context.Background(), alice, bob, str("who is this?"), nil)
	require.NoError(t, err)
	assert.False(t, before.IsContactShared)

	require.NoError(t, svc.RequestContactDisclosure(context.Background(), before.ChatID, alice))
	clk.Advance(time.Minute)
	requested, err := svc.SendMessage(context.Background(), alice, bob, str("may I have your number?"), nil)
	require.NoError(t, err)
	assert.False(t, requested.IsContactShared)

	require.NoError(t, svc.ConfirmDisclosure(context.Background(), before.ChatID, alice))
	clk.Advance(time.Minute)
	after, err := svc.SendMessage(context.Background(), bob, alice, str("sure: 98765"), nil)
	require.NoError(t, err)
	assert.True(t, after.IsContactShared)

	msgs, err := svc.ListMessages(context.Background(), before.ChatID, alice)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.False(t, msgs[0].IsContactShared)
	assert.False(t, msgs[1].IsContactShared)
	assert.True(t, msgs[2].IsContactShared)
}

func TestDisclosure_StateMachine(t *testing.T) {
	svc, _, _ := setupMessagingTest(t)
	alice, bob := uuid.New(), uuid.New()

	msg, err := svc.SendMessage(context.Background(), alice, bob, str("hi"), nil)
	require.NoError(t, err)
	chatID := msg.ChatID

	chat, err := svc.GetChat(context.Background(), chatID, alice)
	require.NoError(t, err)
	assert.Equal(t, models.DisclosureAnonymous, chat.DisclosureState)

	require.NoError(t, svc.RequestContactDisclosure(context.Background(), chatID, alice))
	chat, _ = svc.GetChat(context.Background(), chatID, alice)
	assert.Equal(t, models.DisclosureRequested, chat.DisclosureState)

	// Repeat request is a no-op success.
	require.NoError(t, svc.RequestContactDisclosure(context.Background(), chatID, bob))

	require.NoError(t, svc.ConfirmDisclosure(context.Background(), chatID, alice))
	chat, _ = svc.GetChat(context.Background(), chatID, alice)
	assert.Equal(t, models.DisclosureShared, chat.DisclosureState)

	// Shared is terminal: re-confirming and re-requesting change nothing.
	require.NoError(t, svc.ConfirmDisclosure(context.Background(), chatID, bob))
	require.NoError(t, svc.RequestContactDisclosure(context.Background(), chatID, alice))
	chat, _ = svc.GetChat(context.Background(), chatID, alice)
	assert.Equal(t, models.DisclosureShared, chat.DisclosureState)
}

func TestDisclosure_SkipRequestStep(t *testing.T) {
	svc, _, _ := setupMessagingTest(t)
	alice, bob := uuid.New(), uuid.New()

	msg, err := svc.SendMessage(context.Background(), alice, bob, str("hi"), nil)
	require.NoError(t, err)

	// Paying without a prior request still discloses.
	require.NoError(t, svc.ConfirmDisclosure(context.Background(), msg.ChatID, bob))
	chat, err := svc.GetChat(context.Background(), msg.ChatID, bob)
	require.NoError(t, err)
	assert.Equal(t, models.DisclosureShared, chat.DisclosureState)
}

func TestBlockedChat_RefusesEverything(t *testing.T) {
	svc, _, _ := setupMessagingTest(t)
	alice, bob := uuid.New(), uuid.New()

	msg, err := svc.SendMessage(context.Background(), alice, bob, str("hi"), nil)
	require.NoError(t, err)
	require.NoError(t, svc.BlockChat(context.Background(), msg.ChatID))

	_, err = svc.SendMessage(context.Background(), alice, bob, str("hello?"), nil)
	assert.ErrorIs(t, err, ErrChatBlocked)
	assert.ErrorIs(t, svc.RequestContactDisclosure(context.Background(), msg.ChatID, alice), ErrChatBlocked)
	assert.ErrorIs(t, svc.ConfirmDisclosure(context.Background(), msg.ChatID, alice), ErrChatBlocked)

	// History stays readable for participants.
	msgs, err := svc.ListMessages(context.Background(), msg.ChatID, bob)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestChatAccess_ParticipantsOnly(t *testing.T) {
	svc, _, _ := setupMessagingTest(t)
	alice, bob, eve := uuid.New(), uuid.New(), uuid.New()

	msg, err := svc.SendMessage(context.Background(), alice, bob, str("hi"), nil)
	require.NoError(t, err)

	_, err = svc.GetChat(context.Background(), msg.ChatID, eve)
	assert.ErrorIs(t, err, ErrNotParticipant)
	_, err = svc.ListMessages(context.Background(), msg.ChatID, eve)
	assert.ErrorIs(t, err, ErrNotParticipant)
	assert.ErrorIs(t, svc.RequestContactDisclosure(context.Background(), msg.ChatID, eve), ErrNotParticipant)

	_, err = svc.GetChat(context.Background(), uuid.New(), alice)
	assert.ErrorIs(t, err, ErrChatNotFound)
}

func TestListMessages_StableOrder(t *testing.T) {
	svc, _, clk := setupMessagingTest(t)
	alice, bob := uuid.New(), uuid.New()

	var chatID uuid.UUID
	for i := 0; i < 4; i++ {
		msg, err := svc.SendMessage(context.Background(), alice, bob, str("msg"), nil)
		require.NoError(t, err)
		chatID = msg.ChatID
		clk.Advance(time.Second)
	}
	msgs, err := svc.ListMessages(context.Background(), chatID, bob)
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	for i := 1; i < len(msgs); i++ {
		assert.False(t, msgs[i].CreatedAt.Before(msgs[i-1].CreatedAt))
	}
}

func TestReport_Validation(t *testing.T) {
	svc, _, _ := setupMessagingTest(t)
	reporter := uuid.New()
	target := uuid.New()

	_, err := svc.Report(context.Background(), reporter, "", &target, nil)
	assert.ErrorIs(t, err, ErrInvalidReport)

	_, err = svc.Report(context.Background(), reporter, "spam", nil, nil)
	assert.ErrorIs(t, err, ErrInvalidReport)

	report, err := svc.Report(context.Background(), reporter, "spam", &target, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ReportPending, report.Status)
	assert.Equal(t, reporter, report.ReportedBy)
}

func TestListChats_BothSides(t *testing.T) {
	svc, _, clk := setupMessagingTest(t)
	alice, bob, carol := uuid.New(), uuid.New(), uuid.New()

	_, err := svc.SendMessage(context.Background(), alice, bob, str("hi"), nil)
	require.NoError(t, err)
	clk.Advance(time.Minute)
	_, err = svc.SendMessage(context.Background(), carol, alice, str("hey"), nil)
	require.NoError(t, err)

	chats, err := svc.ListChats(context.Background(), alice)
	require.NoError(t, err)
	assert.Len(t, chats, 2)

	chats, err = svc.ListChats(context.Background(), bob)
	require.NoError(t, err)
	assert.Len(t, chats, 1)
}
