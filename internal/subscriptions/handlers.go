package subscriptions

import (
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/entitlements"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/middleware"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service      *Service
	Entitlements *entitlements.Service
}

// GetCurrent GET /api/v1/subscriptions/current
// Returns the active subscription plus the entitlements it resolves to,
// so the client can gate its own UI without a second round trip.
func (h *Handlers) GetCurrent(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	sub, err := h.Service.Current(c.Context(), actor.UserID)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	ent, err := h.Entitlements.QuotaFor(c.Context(), actor.UserID)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Subscription fetched successfully", fiber.Map{
		"subscription": sub,
		"entitlements": ent,
	}, nil)
}

// GetPlans GET /api/v1/subscriptions/plans
func (h *Handlers) GetPlans(c *fiber.Ctx) error {
	return response.Success(c, "Plans fetched successfully", planPrices, nil)
}
