package paymentValidator

import (
	paymentController "qurotech/controllers/payment"
	"qurotech/middleware"

	"github.com/gofiber/fiber/v2"
)

// Confirm validates the Stripe client confirmation request
func Confirm() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(paymentController.ConfirmRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.PaymentIntentID == "" {
			errors["paymentIntentId"] = "Payment intent ID is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedConfirm", reqData)
		return c.Next()
	}
}

// Verify validates the Razorpay callback payload
func Verify() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(paymentController.VerifyRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.RazorpayOrderID == "" {
			errors["razorpay_order_id"] = "Razorpay order ID is required!"
		}
		if reqData.RazorpayPaymentID == "" {
			errors["razorpay_payment_id"] = "Razorpay payment ID is required!"
		}
		if reqData.RazorpaySignature == "" {
			errors["razorpay_signature"] = "Razorpay signature is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedVerify", reqData)
		return c.Next()
	}
}
