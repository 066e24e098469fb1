package messaging

import (
	"errors"

	"github.com/Ajaysirivaram/flatmate-find-smart/internal/middleware"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

type sendMessageRequest struct {
	ToUser   string  `json:"to_user"`
	Content  *string `json:"content"`
	ImageURL *string `json:"image_url"`
}

// SendMessage POST /api/v1/chats/send-message
func (h *Handlers) SendMessage(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil || req.ToUser == "" {
		return response.Error(c, "Missing to_user", fiber.StatusBadRequest, nil)
	}
	toUser, err := uuid.Parse(req.ToUser)
	if err != nil {
		return response.Error(c, "Invalid to_user format", fiber.StatusBadRequest, nil)
	}
	msg, err := h.Service.SendMessage(c.Context(), actor.UserID, toUser, req.Content, req.ImageURL)
	if err != nil {
		return h.mapError(c, err)
	}
	return response.SuccessCreated(c, "Message sent", msg, nil)
}

// GetChats GET /api/v1/chats/get-chats
func (h *Handlers) GetChats(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	chats, err := h.Service.ListChats(c.Context(), actor.UserID)
	if err != nil {
		return h.mapError(c, err)
	}
	return response.Success(c, "Chats fetched successfully", chats, nil)
}

// GetMessages GET /api/v1/chats/get-messages/:chat_id
func (h *Handlers) GetMessages(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	chatID, err := uuid.Parse(c.Params("chat_id"))
	if err != nil {
		return response.Error(c, "Invalid chat_id format", fiber.StatusBadRequest, nil)
	}
	msgs, err := h.Service.ListMessages(c.Context(), chatID, actor.UserID)
	if err != nil {
		return h.mapError(c, err)
	}
	return response.Success(c, "Messages fetched successfully", msgs, nil)
}

// RequestContact POST /api/v1/chats/request-contact
func (h *Handlers) RequestContact(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req struct {
		ChatID string `json:"chat_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.ChatID == "" {
		return response.Error(c, "Missing chat_id", fiber.StatusBadRequest, nil)
	}
	chatID, err := uuid.Parse(req.ChatID)
	if err != nil {
		return response.Error(c, "Invalid chat_id format", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.RequestContactDisclosure(c.Context(), chatID, actor.UserID); err != nil {
		return h.mapError(c, err)
	}
	return response.Success(c, "Contact disclosure requested", nil, nil)
}

// Block POST /api/v1/chats/block
func (h *Handlers) Block(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req struct {
		ChatID string `json:"chat_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.ChatID == "" {
		return response.Error(c, "Missing chat_id", fiber.StatusBadRequest, nil)
	}
	chatID, err := uuid.Parse(req.ChatID)
	if err != nil {
		return response.Error(c, "Invalid chat_id format", fiber.StatusBadRequest, nil)
	}
	if _, err := h.Service.GetChat(c.Context(), chatID, actor.UserID); err != nil {
		return h.mapError(c, err)
	}
	if err := h.Service.BlockChat(c.Context(), chatID); err != nil {
		return h.mapError(c, err)
	}
	return response.Success(c, "Chat blocked", nil, nil)
}

type reportRequest struct {
	Reason        string  `json:"reason"`
	TargetUser    *string `json:"target_user"`
	TargetListing *string `json:"target_listing"`
}

// Report POST /api/v1/chats/report
func (h *Handlers) Report(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req reportRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	var targetUser, targetListing *uuid.UUID
	if req.TargetUser != nil && *req.TargetUser != "" {
		id, err := uuid.Parse(*req.TargetUser)
		if err != nil {
			return response.Error(c, "Invalid target_user format", fiber.StatusBadRequest, nil)
		}
		targetUser = &id
	}
	if req.TargetListing != nil && *req.TargetListing != "" {
		id, err := uuid.Parse(*req.TargetListing)
		if err != nil {
			return response.Error(c, "Invalid target_listing format", fiber.StatusBadRequest, nil)
		}
		targetListing = &id
	}
	report, err := h.Service.Report(c.Context(), actor.UserID, req.Reason, targetUser, targetListing)
	if err != nil {
		return h.mapError(c, err)
	}
	return response.SuccessCreated(c, "Report submitted", report, nil)
}

func (h *Handlers) mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrChatNotFound):
		return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
	case errors.Is(err, ErrNotParticipant):
		return response.Error(c, err.Error(), fiber.StatusForbidden, nil)
	case errors.Is(err, ErrChatBlocked):
		return response.Error(c, err.Error(), fiber.StatusForbidden, nil)
	case errors.Is(err, ErrEmptyMessage), errors.Is(err, ErrSelfChat), errors.Is(err, ErrInvalidReport):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	default:
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
}
