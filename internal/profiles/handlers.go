package profiles

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

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Gender      string `json:"gender"`
	PhoneNumber string `json:"phone_number"`
}

// Register POST /api/v1/profiles/register
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	profile, err := h.Service.Register(c.Context(), RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Gender:      req.Gender,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return h.mapError(c, err)
	}
	return response.SuccessCreated(c, "Profile created successfully", profile, nil)
}

// GetMe GET /api/v1/profiles/me
func (h *Handlers) GetMe(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	profile, err := h.Service.Get(c.Context(), actor.UserID)
	if err != nil {
		return h.mapError(c, err)
	}
	return response.Success(c, "Profile fetched successfully", profile, nil)
}

// SetUserType POST /api/v1/profiles/set-user-type
func (h *Handlers) SetUserType(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req struct {
		UserType string `json:"user_type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	profile, err := h.Service.SetUserType(c.Context(), actor.UserID, req.UserType)
	if err != nil {
		return h.mapError(c, err)
	}
	// Keep the session's cached user_type in step with the profile.
	middleware.SetSessionUser(c, middleware.SessionUser{
		UserID:      profile.ID.String(),
		DisplayName: profile.DisplayName,
		Email:       profile.Email,
		Gender:      profile.Gender,
		UserType:    profile.UserType,
	})
	return response.Success(c, "User type set successfully", profile, nil)
}

type updateRequest struct {
	DisplayName *string `json:"display_name"`
	Gender      *string `json:"gender"`
	PhoneNumber *string `json:"phone_number"`
	AvatarURL   *string `json:"avatar_url"`
}

// UpdateProfile PUT /api/v1/profiles/update/:profile_id
func (h *Handlers) UpdateProfile(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	profileID, err := uuid.Parse(c.Params("profile_id"))
	if err != nil {
		return response.Error(c, "Invalid profile_id format", fiber.StatusBadRequest, nil)
	}
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	profile, err := h.Service.Update(c.Context(), actor.UserID, profileID, UpdateInput{
		DisplayName: req.DisplayName,
		Gender:      req.Gender,
		PhoneNumber: req.PhoneNumber,
		AvatarURL:   req.AvatarURL,
	})
	if err != nil {
		return h.mapError(c, err)
	}
	return response.Success(c, "Profile updated successfully", profile, nil)
}

func (h *Handlers) mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrProfileNotFound):
		return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
	case errors.Is(err, ErrEmailTaken), errors.Is(err, ErrUserTypeLocked):
		return response.Error(c, err.Error(), fiber.StatusConflict, nil)
	case errors.Is(err, ErrNotSelf):
		return response.Error(c, err.Error(), fiber.StatusForbidden, nil)
	case errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrWeakPassword),
		errors.Is(err, ErrInvalidUserType), errors.Is(err, ErrInvalidPhone):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	default:
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
}
