package payments

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// PaymentIntentCreator abstracts Stripe PaymentIntent creation for testability.
// Amounts are in the currency's minor units (paise for INR).
type PaymentIntentCreator interface {
	Create(amountMinor int64, currency string, metadata map[string]string) (*PaymentIntentResult, error)
}

// PaymentIntentResult is the subset of the PaymentIntent the client needs.
type PaymentIntentResult struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

// StripeCreator calls the Stripe HTTP API directly (form-encoded, no SDK).
type StripeCreator struct {
	SecretKey string
	Client    *http.Client
}

func (s *StripeCreator) Create(amountMinor int64, currency string, metadata map[string]string) (*PaymentIntentResult, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountMinor, 10))
	form.Set("currency", currency)
	for k, v := range metadata {
		form.Set("metadata["+k+"]", v)
	}

	req, err := http.NewRequest(http.MethodPost, "https://api.stripe.com/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.SecretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("stripe payment_intents returned %d", resp.StatusCode)
	}
	var out PaymentIntentResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
