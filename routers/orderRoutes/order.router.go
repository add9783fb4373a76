package orderRoutes

import (
	orderController "qurotech/controllers/order"
	"qurotech/middleware"
	orderValidator "qurotech/validators/order"

	"github.com/gofiber/fiber/v2"
)

func SetupOrderRoutes(app *fiber.App) {
	orderGroup := app.Group("/orders")

	orderGroup.Post("/", orderValidator.Create(), middleware.JWTMiddleware, orderController.CreateOrder)
}
