package payment

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"qurotech/config"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

const stripeBaseURL = "https://api.stripe.com/v1"

// PaymentIntent represents a payment intent object from the Stripe API
type PaymentIntent struct {
	ID           string `json:"id"`
	Amount       int64  `json:"amount"` // smallest currency unit
	Currency     string `json:"currency"`
	Status       string `json:"status"` // succeeded, requires_payment_method, ...
	ClientSecret string `json:"client_secret"`
	LatestCharge string `json:"latest_charge"`
}

// StripeService talks to the Stripe payment intents API. Verification is a
// read-only status retrieval; only a succeeded intent counts as paid.
type StripeService struct {
	secretKey string
	simulated bool
	client    *resty.Client
}

// NewStripeService builds a service from the application config
func NewStripeService() *StripeService {
	cfg := config.AppConfig
	s := &StripeService{
		secretKey: cfg.StripeSecretKey,
		simulated: cfg.PaymentMode == "simulated",
	}
	s.client = resty.New().
		SetBaseURL(stripeBaseURL).
		SetTimeout(8 * time.Second).
		SetAuthToken(s.secretKey)
	return s
}

// CreatePaymentIntent creates an intent and returns the client secret used by
// the checkout widget
func (s *StripeService) CreatePaymentIntent(amount int64, currency string, metadata map[string]string) (*PaymentIntent, error) {
	if s.simulated {
		id := "pi_demo_" + strings.ReplaceAll(uuid.NewString(), "-", "")
		return &PaymentIntent{
			ID:           id,
			Amount:       amount,
			Currency:     strings.ToLower(currency),
			Status:       "requires_payment_method",
			ClientSecret: id + "_secret_demo",
		}, nil
	}
	if s.secretKey == "" {
		return nil, ErrNotConfigured
	}

	form := map[string]string{
		"amount":                             strconv.FormatInt(amount, 10),
		"currency":                           strings.ToLower(currency),
		"automatic_payment_methods[enabled]": "true",
	}
	for k, v := range metadata {
		form["metadata["+k+"]"] = v
	}

	var intent PaymentIntent
	resp, err := s.client.R().
		SetFormData(form).
		SetResult(&intent).
		Post("/payment_intents")
	if err != nil {
		log.Printf("[STRIPE] Create payment intent request failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("stripe create intent failed: %d %s", resp.StatusCode(), resp.String())
	}
	return &intent, nil
}

// RetrievePaymentIntent fetches the current state of an intent
func (s *StripeService) RetrievePaymentIntent(intentID string) (*PaymentIntent, error) {
	if s.simulated {
		return &PaymentIntent{ID: intentID, Currency: "inr", Status: "succeeded"}, nil
	}
	if s.secretKey == "" {
		return nil, ErrNotConfigured
	}

	var intent PaymentIntent
	resp, err := s.client.R().
		SetResult(&intent).
		Get("/payment_intents/" + intentID)
	if err != nil {
		log.Printf("[STRIPE] Retrieve payment intent request failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if resp.StatusCode() == 404 {
		return nil, ErrVerificationFailed
	}
	if resp.IsError() {
		return nil, fmt.Errorf("stripe retrieve intent failed: %d %s", resp.StatusCode(), resp.String())
	}
	return &intent, nil
}

// Verify implements the Verifier capability for the status-retrieval gateway
func (s *StripeService) Verify(evidence Evidence) (*ProviderOrder, error) {
	if evidence.IntentID == "" {
		return nil, ErrVerificationFailed
	}

	intent, err := s.RetrievePaymentIntent(evidence.IntentID)
	if err != nil {
		return nil, err
	}
	if intent.Status != "succeeded" {
		return nil, ErrVerificationFailed
	}

	return &ProviderOrder{
		Reference: intent.ID,
		Amount:    intent.Amount,
		Currency:  strings.ToUpper(intent.Currency),
		Status:    intent.Status,
	}, nil
}
