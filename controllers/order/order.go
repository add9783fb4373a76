package orderController

import (
	"errors"
	"log"
	"math"
	"strconv"

	"qurotech/database"
	"qurotech/middleware"
	"qurotech/models"
	"qurotech/payment"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// OrderRequest is the validated checkout payload
type OrderRequest struct {
	Items    []models.LineItem `json:"items"`
	Currency string            `json:"currency"`
}

func totalPaise(items []models.LineItem) int64 {
	total := 0.0
	for _, item := range items {
		total += item.Price
	}
	return int64(math.Round(total * 100))
}

// CreateOrder creates a pending order and a Razorpay order for it, returning
// the checkout handle used by the payment widget. Items and the user id ride
// along in the gateway order notes so the webhook can recover even if the
// local write below fails.
func CreateOrder(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(string)
	if !ok || userId == "" {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedOrder").(*OrderRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	currency := reqData.Currency
	if currency == "" {
		currency = "INR"
	}
	amount := totalPaise(reqData.Items)

	itemsJSON, err := models.MarshalLineItems(reqData.Items)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid items!", nil)
	}

	notes := map[string]string{
		"user_id": userId,
		"items":   string(itemsJSON),
	}

	razorpay := payment.NewRazorpayService()
	providerOrder, err := razorpay.CreateOrder(amount, currency, "receipt_"+uuid.NewString(), notes)
	if err != nil {
		if errors.Is(err, payment.ErrProviderUnavailable) {
			return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Payment gateway unreachable, try again!", nil)
		}
		if errors.Is(err, payment.ErrNotConfigured) {
			return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, "Razorpay not configured!", nil)
		}
		log.Printf("[ORDER] Razorpay order creation failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create order!", nil)
	}

	order := models.Order{
		ID:              providerOrder.ID,
		UserID:          userId,
		Items:           itemsJSON,
		TotalAmount:     amount,
		Currency:        currency,
		Status:          models.OrderStatusPending,
		Gateway:         models.GatewayRazorpay,
		RazorpayOrderID: &providerOrder.ID,
	}
	if err := database.Database.Db.Create(&order).Error; err != nil {
		// The webhook can still reconstruct the order from gateway notes
		log.Printf("[ORDER] Failed to store order %s locally: %v", providerOrder.ID, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Order created!", fiber.Map{
		"orderId":  providerOrder.ID,
		"amount":   providerOrder.Amount,
		"currency": providerOrder.Currency,
		"keyId":    razorpay.KeyID(),
	})
}

// CreatePaymentIntent creates a pending order and a Stripe payment intent,
// returning the client secret for the card widget
func CreatePaymentIntent(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(string)
	if !ok || userId == "" {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedOrder").(*OrderRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	currency := reqData.Currency
	if currency == "" {
		currency = "INR"
	}
	amount := totalPaise(reqData.Items)

	itemsJSON, err := models.MarshalLineItems(reqData.Items)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid items!", nil)
	}

	order := models.Order{
		ID:          uuid.NewString(),
		UserID:      userId,
		Items:       itemsJSON,
		TotalAmount: amount,
		Currency:    currency,
		Status:      models.OrderStatusPending,
		Gateway:     models.GatewayStripe,
	}
	if err := database.Database.Db.Create(&order).Error; err != nil {
		log.Printf("[ORDER] Order creation failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create order!", nil)
	}

	stripe := payment.NewStripeService()
	intent, err := stripe.CreatePaymentIntent(amount, currency, map[string]string{
		"order_id":    order.ID,
		"user_id":     userId,
		"items_count": strconv.Itoa(len(reqData.Items)),
	})
	if err != nil {
		if errors.Is(err, payment.ErrNotConfigured) {
			return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, "Stripe not configured!", nil)
		}
		if errors.Is(err, payment.ErrProviderUnavailable) {
			return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Payment gateway unreachable, try again!", nil)
		}
		log.Printf("[ORDER] Payment intent creation failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create payment intent!", nil)
	}

	if err := database.Database.Db.Model(&order).Update("payment_intent_id", intent.ID).Error; err != nil {
		log.Printf("[ORDER] Failed to attach intent %s to order %s: %v", intent.ID, order.ID, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Payment intent created!", fiber.Map{
		"clientSecret": intent.ClientSecret,
		"orderId":      order.ID,
		"amount":       amount,
	})
}
