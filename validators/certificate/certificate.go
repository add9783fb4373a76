package certificateValidator

import (
	"strings"

	"qurotech/cert"
	"qurotech/middleware"

	"github.com/gofiber/fiber/v2"
)

// Issue validates the direct certificate issue request
func Issue() fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := new(struct {
			FullName         string `json:"fullName"`
			Internship       string `json:"internship"`
			DurationLabel    string `json:"durationLabel"`
			PaymentReference string `json:"paymentReference"`
			CustomHours      *int   `json:"customHours"`
			CustomWeeks      *int   `json:"customWeeks"`
		})

		if err := c.BodyParser(body); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if body.FullName == "" {
			errors["fullName"] = "Full name is required!"
		}
		if body.Internship == "" {
			errors["internship"] = "Internship is required!"
		}
		if body.DurationLabel == "" {
			errors["durationLabel"] = "Duration label is required!"
		}
		if len(strings.TrimSpace(body.PaymentReference)) < 6 {
			errors["paymentReference"] = "Invalid or missing payment reference!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedIssue", &cert.DirectIssue{
			FullName:         body.FullName,
			Internship:       body.Internship,
			DurationLabel:    body.DurationLabel,
			PaymentReference: strings.TrimSpace(body.PaymentReference),
			CustomHours:      body.CustomHours,
			CustomWeeks:      body.CustomWeeks,
		})
		return c.Next()
	}
}
