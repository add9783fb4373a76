package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"qurotech/config"
	"qurotech/models"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

const razorpayBaseURL = "https://api.razorpay.com/v1"

// RazorpayOrder represents an order object from the Razorpay API
type RazorpayOrder struct {
	ID       string            `json:"id"`
	Amount   int64             `json:"amount"` // paise
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Status   string            `json:"status"` // created, attempted, paid
	Notes    map[string]string `json:"notes"`
}

// RazorpayService talks to the Razorpay orders API and verifies payment
// signatures. Signature verification is fully offline.
type RazorpayService struct {
	keyID     string
	keySecret string
	simulated bool
	client    *resty.Client
}

// NewRazorpayService builds a service from the application config
func NewRazorpayService() *RazorpayService {
	cfg := config.AppConfig
	s := &RazorpayService{
		keyID:     cfg.RazorpayKeyID,
		keySecret: cfg.RazorpayKeySecret,
		simulated: cfg.PaymentMode == "simulated",
	}
	s.client = resty.New().
		SetBaseURL(razorpayBaseURL).
		SetTimeout(8 * time.Second).
		SetBasicAuth(s.keyID, s.keySecret)
	return s
}

// KeyID returns the public key id handed to the checkout widget
func (s *RazorpayService) KeyID() string {
	if s.simulated {
		return "demo_key_id"
	}
	return s.keyID
}

// CreateOrder creates a Razorpay order. Line items and the user id are
// stashed in the order notes so a webhook can reconstruct the order even if
// the local row was never written.
func (s *RazorpayService) CreateOrder(amount int64, currency, receipt string, notes map[string]string) (*RazorpayOrder, error) {
	if s.simulated {
		return &RazorpayOrder{
			ID:       "order_demo_" + uuid.NewString(),
			Amount:   amount,
			Currency: currency,
			Receipt:  receipt,
			Status:   "created",
			Notes:    notes,
		}, nil
	}
	if s.keyID == "" || s.keySecret == "" {
		return nil, ErrNotConfigured
	}

	body := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}
	if len(notes) > 0 {
		body["notes"] = notes
	}

	var order RazorpayOrder
	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&order).
		Post("/orders")
	if err != nil {
		log.Printf("[RAZORPAY] Create order request failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("razorpay create order failed: %d %s", resp.StatusCode(), resp.String())
	}
	return &order, nil
}

// FetchOrder retrieves an existing Razorpay order by id
func (s *RazorpayService) FetchOrder(orderID string) (*RazorpayOrder, error) {
	if s.simulated {
		return &RazorpayOrder{ID: orderID, Currency: "INR", Status: "paid", Notes: map[string]string{}}, nil
	}
	if s.keyID == "" || s.keySecret == "" {
		return nil, ErrNotConfigured
	}

	var order RazorpayOrder
	resp, err := s.client.R().
		SetResult(&order).
		Get("/orders/" + orderID)
	if err != nil {
		log.Printf("[RAZORPAY] Fetch order request failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("razorpay fetch order failed: %d %s", resp.StatusCode(), resp.String())
	}
	return &order, nil
}

// VerifySignature recomputes the checkout signature and compares it in
// constant time. The signed message is "<order_id>|<payment_id>".
func (s *RazorpayService) VerifySignature(orderID, paymentID, signature string) bool {
	if s.simulated {
		return true
	}

	mac := hmac.New(sha256.New, []byte(s.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

// Verify implements the Verifier capability for the signature-based gateway.
// A valid signature is proof of a captured payment; no network call is made.
// Any mismatch fails closed.
func (s *RazorpayService) Verify(evidence Evidence) (*ProviderOrder, error) {
	if evidence.OrderID == "" || evidence.PaymentID == "" || evidence.Signature == "" {
		return nil, ErrVerificationFailed
	}
	if !s.VerifySignature(evidence.OrderID, evidence.PaymentID, evidence.Signature) {
		return nil, ErrVerificationFailed
	}
	return &ProviderOrder{
		Reference: evidence.OrderID,
		Status:    "paid",
	}, nil
}

// OrderFromNotes rebuilds order contents from the notes attached at order
// creation. Used as a fallback when the local order row is unavailable.
func OrderFromNotes(order *RazorpayOrder) *ProviderOrder {
	po := &ProviderOrder{
		Reference: order.ID,
		Amount:    order.Amount,
		Currency:  order.Currency,
		Status:    order.Status,
	}
	if order.Notes == nil {
		return po
	}
	po.UserID = order.Notes["user_id"]
	if raw := order.Notes["items"]; raw != "" {
		var items []models.LineItem
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			log.Printf("[RAZORPAY] Failed to parse items from order notes: %v", err)
		} else {
			po.Items = items
		}
	}
	return po
}
