package payment

import (
	"errors"

	"qurotech/models"
)

// Evidence carries whatever proof of payment a gateway callback provides.
// Razorpay callbacks carry the order/payment id pair plus an HMAC signature;
// Stripe confirmations carry only the payment intent id.
type Evidence struct {
	OrderID   string
	PaymentID string
	Signature string
	IntentID  string
}

// ProviderOrder is the gateway-side view of a paid order, returned by a
// successful verification. For Razorpay it may also carry the line items and
// user id stashed in the order notes, used to reconstruct an order when the
// local row is missing.
type ProviderOrder struct {
	Reference string
	Amount    int64
	Currency  string
	Status    string
	UserID    string
	Items     []models.LineItem
}

// Verifier confirms that a payment is genuine and completed. Implementations
// must be side-effect free: verification failure must leave nothing behind.
type Verifier interface {
	Verify(evidence Evidence) (*ProviderOrder, error)
}

var (
	// ErrVerificationFailed means the gateway rejected the evidence: a
	// signature mismatch or a payment that has not succeeded.
	ErrVerificationFailed = errors.New("payment verification failed")

	// ErrProviderUnavailable means the gateway could not be reached. The
	// caller may retry.
	ErrProviderUnavailable = errors.New("payment provider unavailable")

	// ErrNotConfigured means the gateway credentials are absent in live mode.
	ErrNotConfigured = errors.New("payment gateway not configured")
)
