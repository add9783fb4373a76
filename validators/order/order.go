package orderValidator

import (
	"fmt"

	orderController "qurotech/controllers/order"
	"qurotech/middleware"

	"github.com/gofiber/fiber/v2"
)

var validDurations = map[string]bool{
	"1-month":  true,
	"2-months": true,
	"custom":   true,
}

// Create validates the checkout payload shared by both gateways
func Create() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(orderController.OrderRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if len(reqData.Items) == 0 {
			errors["items"] = "At least one item is required!"
		}
		for i, item := range reqData.Items {
			if item.Internship == "" && item.Title == "" {
				errors[fmt.Sprintf("items.%d.internship", i)] = "Internship title is required!"
			}
			if item.Price <= 0 {
				errors[fmt.Sprintf("items.%d.price", i)] = "Price must be greater than 0!"
			}
			if item.Duration != "" && !validDurations[item.Duration] {
				errors[fmt.Sprintf("items.%d.duration", i)] = "Duration must be 1-month, 2-months or custom!"
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedOrder", reqData)
		return c.Next()
	}
}
