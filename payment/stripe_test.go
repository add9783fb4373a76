package payment

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stripeStub(t *testing.T, intents map[string]string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path[len("/payment_intents/"):]
		status, ok := intents[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprintf(w, `{"error":{"type":"invalid_request_error"}}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":%q,"amount":40000,"currency":"inr","status":%q,"latest_charge":"ch_1"}`, id, status)
	}))
}

func stripeTestService(baseURL string) *StripeService {
	return &StripeService{
		secretKey: "sk_test_123",
		client:    resty.New().SetBaseURL(baseURL).SetTimeout(2 * time.Second),
	}
}

func TestStripeVerifySucceededIntent(t *testing.T) {
	server := stripeStub(t, map[string]string{"pi_123": "succeeded"})
	defer server.Close()

	s := stripeTestService(server.URL)
	order, err := s.Verify(Evidence{IntentID: "pi_123"})
	require.NoError(t, err)
	assert.Equal(t, "pi_123", order.Reference)
	assert.EqualValues(t, 40000, order.Amount)
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, "succeeded", order.Status)
}

func TestStripeVerifyRejectsUnpaidIntent(t *testing.T) {
	server := stripeStub(t, map[string]string{"pi_open": "requires_payment_method"})
	defer server.Close()

	s := stripeTestService(server.URL)
	_, err := s.Verify(Evidence{IntentID: "pi_open"})
	assert.ErrorIs(t, err, ErrVerificationFailed)
}

func TestStripeVerifyUnknownIntent(t *testing.T) {
	server := stripeStub(t, map[string]string{})
	defer server.Close()

	s := stripeTestService(server.URL)
	_, err := s.Verify(Evidence{IntentID: "pi_missing"})
	assert.ErrorIs(t, err, ErrVerificationFailed)
}

func TestStripeVerifyEmptyEvidence(t *testing.T) {
	s := stripeTestService("http://localhost:0")
	_, err := s.Verify(Evidence{})
	assert.ErrorIs(t, err, ErrVerificationFailed)
}

func TestStripeVerifyProviderUnreachable(t *testing.T) {
	server := stripeStub(t, map[string]string{})
	server.Close() // connection refused from here on

	s := stripeTestService(server.URL)
	_, err := s.Verify(Evidence{IntentID: "pi_123"})
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestStripeNotConfigured(t *testing.T) {
	s := &StripeService{client: resty.New()}
	_, err := s.CreatePaymentIntent(40000, "INR", nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestStripeSimulatedMode(t *testing.T) {
	s := &StripeService{simulated: true}

	intent, err := s.CreatePaymentIntent(40000, "INR", map[string]string{"order_id": "o1"})
	require.NoError(t, err)
	assert.Contains(t, intent.ID, "pi_demo_")
	assert.Contains(t, intent.ClientSecret, "_secret_")

	order, err := s.Verify(Evidence{IntentID: intent.ID})
	require.NoError(t, err)
	assert.Equal(t, "succeeded", order.Status)
}
