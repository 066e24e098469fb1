package payments

import (
	"strconv"

	"github.com/Ajaysirivaram/flatmate-find-smart/internal/middleware"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/models"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DisclosureFee is the one-time charge for revealing contact details in a chat,
// in whole rupees.
const DisclosureFee = 29

// toMinorUnits converts a rupee price to paise for the payment provider.
func toMinorUnits(rupees int64) int64 {
	return rupees * 100
}

// Handlers creates payment intents for the three paid actions. The
// corresponding domain effect is applied only when the webhook confirms
// the payment, never here.
type Handlers struct {
	Creator       PaymentIntentCreator
	Webhook       *WebhookHandler
	Currency      string
	BoostPrice    int64
	PlanPriceFunc func(tier, period string) (int64, error)
}

// CreateBoostIntent POST /api/v1/payments/boost-intent
func (h *Handlers) CreateBoostIntent(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req struct {
		ListingID string `json:"listing_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.ListingID == "" {
		return response.Error(c, "Missing listing_id", fiber.StatusBadRequest, nil)
	}
	listingID, err := uuid.Parse(req.ListingID)
	if err != nil {
		return response.Error(c, "Invalid listing_id format", fiber.StatusBadRequest, nil)
	}

	listing, err := h.Webhook.Listings.GetListing(c.Context(), listingID)
	if err != nil {
		return response.Error(c, "Listing not found", fiber.StatusNotFound, nil)
	}
	if listing.OwnerID != actor.UserID {
		return response.Error(c, "You do not own this listing", fiber.StatusForbidden, nil)
	}
	if !listing.ActiveAt(h.Webhook.Listings.Clock.Now()) {
		return response.Error(c, "Cannot boost an expired listing", fiber.StatusBadRequest, nil)
	}

	// Stripe amounts are in minor units (paise); metadata keeps the rupee price.
	result, err := h.Creator.Create(toMinorUnits(h.BoostPrice), h.Currency, map[string]string{
		"purpose":     models.PurposeBoost,
		"user_id":     actor.UserID.String(),
		"listing_id":  listingID.String(),
		"boost_price": strconv.FormatInt(h.BoostPrice, 10),
	})
	if err != nil {
		log.Error().Err(err).Str("listing_id", listingID.String()).Msg("Boost payment intent creation failed")
		return response.Error(c, "Payment provider unavailable", fiber.StatusBadGateway, nil)
	}
	return response.Success(c, "Payment intent created", fiber.Map{
		"payment_intent_id": result.ID,
		"client_secret":     result.ClientSecret,
		"amount":            toMinorUnits(h.BoostPrice),
		"currency":          h.Currency,
	}, nil)
}

// CreateSubscriptionIntent POST /api/v1/payments/subscription-intent
func (h *Handlers) CreateSubscriptionIntent(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req struct {
		Tier   string `json:"tier"`
		Period string `json:"period"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	price, err := h.PlanPriceFunc(req.Tier, req.Period)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}

	result, err := h.Creator.Create(toMinorUnits(price), h.Currency, map[string]string{
		"purpose": models.PurposeSubscription,
		"user_id": actor.UserID.String(),
		"tier":    req.Tier,
		"period":  req.Period,
	})
	if err != nil {
		log.Error().Err(err).Str("tier", req.Tier).Msg("Subscription payment intent creation failed")
		return response.Error(c, "Payment provider unavailable", fiber.StatusBadGateway, nil)
	}
	return response.Success(c, "Payment intent created", fiber.Map{
		"payment_intent_id": result.ID,
		"client_secret":     result.ClientSecret,
		"amount":            toMinorUnits(price),
		"currency":          h.Currency,
	}, nil)
}

// CreateDisclosureIntent POST /api/v1/payments/disclosure-intent
func (h *Handlers) CreateDisclosureIntent(c *fiber.Ctx) error {
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

	chat, err := h.Webhook.Messaging.GetChat(c.Context(), chatID, actor.UserID)
	if err != nil {
		return response.Error(c, "Chat not found", fiber.StatusNotFound, nil)
	}
	if chat.DisclosureState == models.DisclosureShared {
		return response.Error(c, "Contact details are already shared", fiber.StatusConflict, nil)
	}
	if chat.DisclosureState == models.DisclosureBlocked {
		return response.Error(c, "Chat is blocked", fiber.StatusForbidden, nil)
	}

	result, err := h.Creator.Create(toMinorUnits(DisclosureFee), h.Currency, map[string]string{
		"purpose": models.PurposeDisclosure,
		"user_id": actor.UserID.String(),
		"chat_id": chatID.String(),
	})
	if err != nil {
		log.Error().Err(err).Str("chat_id", chatID.String()).Msg("Disclosure payment intent creation failed")
		return response.Error(c, "Payment provider unavailable", fiber.StatusBadGateway, nil)
	}
	return response.Success(c, "Payment intent created", fiber.Map{
		"payment_intent_id": result.ID,
		"client_secret":     result.ClientSecret,
		"amount":            toMinorUnits(DisclosureFee),
		"currency":          h.Currency,
	}, nil)
}
