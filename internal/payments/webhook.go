package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Ajaysirivaram/flatmate-find-smart/internal/listings"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/messaging"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/models"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/subscriptions"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// WebhookHandler consumes payment-confirmed events and applies their domain
// effects: boost attachment, subscription purchase, contact disclosure.
// It is the only place payment success enters the core.
type WebhookHandler struct {
	DB            *gorm.DB
	WebhookSecret string
	Listings      *listings.Service
	Subscriptions *subscriptions.Service
	Messaging     *messaging.Service
}

type stripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type paymentIntentObject struct {
	ID             string            `json:"id"`
	AmountReceived int64             `json:"amount_received"`
	Currency       string            `json:"currency"`
	Status         string            `json:"status"`
	Metadata       map[string]string `json:"metadata"`
}

// HandleWebhook POST /api/v1/stripe/webhook — raw body, signature
// verification, then process. Domain errors still return 200 so the
// payment provider does not retry forever.
func (wh *WebhookHandler) HandleWebhook(c *fiber.Ctx) error {
	rawBody := c.BodyRaw()
	sig := c.Get("Stripe-Signature")

	if len(rawBody) == 0 {
		log.Warn().Msg("Payment webhook received empty body")
		return c.Status(400).SendString("Webhook Error: empty body")
	}

	if err := verifyStripeSignature(rawBody, sig, wh.WebhookSecret); err != nil {
		log.Warn().Err(err).Bool("has_sig", sig != "").Msg("Payment webhook signature verification failed")
		return c.Status(400).SendString(fmt.Sprintf("Webhook Error: %s", err.Error()))
	}

	var event stripeEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		log.Warn().Err(err).Msg("Payment webhook JSON parse failed")
		return c.Status(400).SendString(fmt.Sprintf("Webhook Error: %s", err.Error()))
	}

	if event.Type == "payment_intent.succeeded" {
		var pi paymentIntentObject
		if err := json.Unmarshal(event.Data.Object, &pi); err != nil {
			return c.Status(200).SendString("ok")
		}
		if err := wh.handlePaymentIntentSucceeded(c.Context(), pi, event.ID, rawBody); err != nil {
			log.Warn().Err(err).Str("payment_intent", pi.ID).Str("purpose", pi.Metadata["purpose"]).Msg("Payment effect not applied")
			return c.Status(200).SendString("ok")
		}
	}

	return c.Status(200).SendString("ok")
}

func (wh *WebhookHandler) handlePaymentIntentSucceeded(ctx context.Context, pi paymentIntentObject, eventID string, rawBody []byte) error {
	purpose := pi.Metadata["purpose"]
	userID, err := uuid.Parse(pi.Metadata["user_id"])
	if err != nil || purpose == "" {
		return nil // not ours; skip silently
	}

	// Idempotency: one effect per payment intent.
	var existing models.Payment
	if err := wh.DB.WithContext(ctx).Where("stripe_payment_intent_id = ?", pi.ID).First(&existing).Error; err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	switch purpose {
	case models.PurposeBoost:
		listingID, err := uuid.Parse(pi.Metadata["listing_id"])
		if err != nil {
			return nil
		}
		amount, _ := strconv.ParseInt(pi.Metadata["boost_price"], 10, 64)
		if amount == 0 {
			amount = wh.Listings.Policy.BoostPrice
		}
		if _, err := wh.Listings.AttachBoost(ctx, listingID, userID, amount); err != nil {
			return err
		}
	case models.PurposeSubscription:
		tier := pi.Metadata["tier"]
		period := pi.Metadata["period"]
		if _, err := wh.Subscriptions.Purchase(ctx, userID, tier, period); err != nil {
			return err
		}
	case models.PurposeDisclosure:
		chatID, err := uuid.Parse(pi.Metadata["chat_id"])
		if err != nil {
			return nil
		}
		if err := wh.Messaging.ConfirmDisclosure(ctx, chatID, userID); err != nil {
			return err
		}
	default:
		return nil
	}

	return wh.DB.WithContext(ctx).Create(&models.Payment{
		ID:                    uuid.New(),
		StripePaymentIntentID: pi.ID,
		StripeEventID:         eventID,
		UserID:                userID,
		Purpose:               purpose,
		AmountPaid:            pi.AmountReceived,
		Currency:              pi.Currency,
		Status:                pi.Status,
		RawPaymentIntent:      datatypes.JSON(rawBody),
		CreatedAt:             time.Now().UTC(),
	}).Error
}

func verifyStripeSignature(payload []byte, sigHeader, secret string) error {
	if sigHeader == "" || secret == "" {
		return errors.New("missing signature or secret")
	}

	var timestamp string
	var signatures []string

	parts := strings.Split(sigHeader, ",")
	for _, part := range parts {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}

	if timestamp == "" || len(signatures) == 0 {
		return errors.New("invalid signature format")
	}

	signedPayload := timestamp + "." + string(payload)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signedPayload))
	expectedSig := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(sig), []byte(expectedSig)) {
			ts, err := strconv.ParseInt(timestamp, 10, 64)
			if err != nil {
				return errors.New("invalid timestamp")
			}
			diff := time.Now().Unix() - ts
			if diff < 0 {
				diff = -diff
			}
			if diff > 300 {
				return errors.New("timestamp outside tolerance")
			}
			return nil
		}
	}
	return errors.New("no matching signature")
}
