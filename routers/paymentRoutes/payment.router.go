package paymentRoutes

import (
	orderController "qurotech/controllers/order"
	paymentController "qurotech/controllers/payment"
	"qurotech/middleware"
	orderValidator "qurotech/validators/order"
	paymentValidator "qurotech/validators/payment"

	"github.com/gofiber/fiber/v2"
)

func SetupPaymentRoutes(app *fiber.App) {
	paymentGroup := app.Group("/payments")

	paymentGroup.Post("/create-intent", orderValidator.Create(), middleware.JWTMiddleware, orderController.CreatePaymentIntent)
	paymentGroup.Post("/confirm", paymentValidator.Confirm(), middleware.JWTMiddleware, paymentController.ConfirmPayment)

	// Gateway callback, authenticated by the payment signature itself
	paymentGroup.Post("/verify", paymentValidator.Verify(), paymentController.VerifyPayment)
}
