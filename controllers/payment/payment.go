package paymentController

import (
	"errors"
	"fmt"
	"log"

	"qurotech/cert"
	"qurotech/database"
	"qurotech/middleware"
	"qurotech/models"
	"qurotech/payment"
	"qurotech/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// razorpayGateway is the slice of the Razorpay service the webhook handler
// needs. Constructed through a hook so tests can substitute a stub gateway.
type razorpayGateway interface {
	Verify(evidence payment.Evidence) (*payment.ProviderOrder, error)
	FetchOrder(orderID string) (*payment.RazorpayOrder, error)
}

var newRazorpayGateway = func() razorpayGateway { return payment.NewRazorpayService() }

var newStripeVerifier = func() payment.Verifier { return payment.NewStripeService() }

// ConfirmRequest is the client-driven Stripe confirmation payload
type ConfirmRequest struct {
	PaymentIntentID string `json:"paymentIntentId"`
}

// VerifyRequest is the Razorpay callback payload
type VerifyRequest struct {
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

// ConfirmPayment verifies a Stripe payment intent and issues certificates
// for the matching order. Verification happens before any write; a repeated
// confirmation returns the idempotent already-processed result.
func ConfirmPayment(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(string)
	if !ok || userId == "" {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedConfirm").(*ConfirmRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	stripe := newStripeVerifier()
	if _, err := stripe.Verify(payment.Evidence{IntentID: reqData.PaymentIntentID}); err != nil {
		switch {
		case errors.Is(err, payment.ErrVerificationFailed):
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Payment not completed!", nil)
		case errors.Is(err, payment.ErrNotConfigured):
			return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, "Stripe not configured!", nil)
		case errors.Is(err, payment.ErrProviderUnavailable):
			return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Payment gateway unreachable, try again!", nil)
		}
		log.Printf("[PAYMENT] Stripe verification error: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to confirm payment!", nil)
	}

	db := database.Database.Db

	var order models.Order
	if err := db.Where("payment_intent_id = ? AND user_id = ?", reqData.PaymentIntentID, userId).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Order not found!", nil)
		}
		log.Printf("[PAYMENT] Order lookup failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to confirm payment!", nil)
	}

	issuer := cert.NewIssuer(db)
	result, err := issuer.IssueForOrder(&order, reqData.PaymentIntentID)
	if err != nil {
		return issueErrorResponse(c, err)
	}
	if result.AlreadyCompleted {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment already processed!", fiber.Map{
			"success":      true,
			"certificates": result.Certificates,
		})
	}

	notifyIssued(order.UserID, result.Certificates)

	return middleware.JsonResponse(c, fiber.StatusOK, true,
		fmt.Sprintf("Successfully generated %d certificate(s)", len(result.Certificates)), fiber.Map{
			"success":      true,
			"certificates": result.Certificates,
		})
}

// VerifyPayment handles the Razorpay callback: checks the HMAC signature,
// locates the order (falling back to the gateway-side order notes when the
// local row is missing) and issues certificates.
func VerifyPayment(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedVerify").(*VerifyRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	razorpay := newRazorpayGateway()
	if _, err := razorpay.Verify(payment.Evidence{
		OrderID:   reqData.RazorpayOrderID,
		PaymentID: reqData.RazorpayPaymentID,
		Signature: reqData.RazorpaySignature,
	}); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid payment signature!", nil)
	}

	db := database.Database.Db

	var order models.Order
	err := db.Where("razorpay_order_id = ?", reqData.RazorpayOrderID).First(&order).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[PAYMENT] Order lookup failed: %v", err)
		}
		// Fallback: reconstruct the order from the gateway-side notes
		providerOrder, fetchErr := razorpay.FetchOrder(reqData.RazorpayOrderID)
		if fetchErr != nil {
			log.Printf("[PAYMENT] Razorpay order fetch failed: %v", fetchErr)
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Order not found!", nil)
		}
		rebuilt := payment.OrderFromNotes(providerOrder)
		if rebuilt.UserID == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "User not associated with order!", nil)
		}
		itemsJSON, mErr := models.MarshalLineItems(rebuilt.Items)
		if mErr != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to verify payment!", nil)
		}
		order = models.Order{
			ID:          reqData.RazorpayOrderID,
			UserID:      rebuilt.UserID,
			Items:       itemsJSON,
			TotalAmount: rebuilt.Amount,
			Currency:    rebuilt.Currency,
			Status:      models.OrderStatusPending,
			Gateway:     models.GatewayRazorpay,
		}
		order.RazorpayOrderID = &order.ID
		// Persist the reconstructed row so the issuance claim below stays
		// atomic for this path too. A concurrent duplicate hitting the same
		// conflict is fine, the claim decides the winner.
		if createErr := db.Create(&order).Error; createErr != nil {
			log.Printf("[PAYMENT] Failed to store reconstructed order %s: %v", order.ID, createErr)
		}
	}

	if updErr := db.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
		"razorpay_payment_id": reqData.RazorpayPaymentID,
		"razorpay_signature":  reqData.RazorpaySignature,
	}).Error; updErr != nil {
		log.Printf("[PAYMENT] Failed to record payment ids on order %s: %v", order.ID, updErr)
	}

	issuer := cert.NewIssuer(db)
	result, err := issuer.IssueForOrder(&order, reqData.RazorpayPaymentID)
	if err != nil {
		return issueErrorResponse(c, err)
	}
	if result.AlreadyCompleted {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment already processed!", fiber.Map{
			"success":      true,
			"orderId":      order.ID,
			"paymentId":    reqData.RazorpayPaymentID,
			"certificates": result.Certificates,
		})
	}

	notifyIssued(order.UserID, result.Certificates)

	return middleware.JsonResponse(c, fiber.StatusOK, true,
		fmt.Sprintf("Successfully generated %d certificate(s)", len(result.Certificates)), fiber.Map{
			"success":      true,
			"orderId":      order.ID,
			"paymentId":    reqData.RazorpayPaymentID,
			"certificates": result.Certificates,
		})
}

func issueErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, cert.ErrOrderNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Order not found!", nil)
	case errors.Is(err, cert.ErrStorageUnprovisioned):
		return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false,
			"Database not initialized. Run the certificate and order migrations first.", nil)
	}
	log.Printf("[PAYMENT] Issuance failed: %v", err)
	return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to issue certificates!", nil)
}

// notifyIssued emails the holder about each new certificate, best effort
func notifyIssued(userID string, certificates []models.Certificate) {
	if len(certificates) == 0 || userID == "" {
		return
	}

	var profile models.Profile
	if err := database.Database.Db.Where("user_id = ?", userID).First(&profile).Error; err != nil || profile.Email == "" {
		return
	}

	for _, certificate := range certificates {
		go utils.SendCertificateEmail(profile.Email, certificate.FullName, certificate.Internship, certificate.Serial)
	}
}
