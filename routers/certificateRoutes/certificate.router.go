package certificateRoutes

import (
	certificateController "qurotech/controllers/certificate"
	"qurotech/middleware"
	certificateValidator "qurotech/validators/certificate"

	"github.com/gofiber/fiber/v2"
)

func SetupCertificateRoutes(app *fiber.App) {
	certGroup := app.Group("/certificates")

	// Public verification lookup
	certGroup.Get("/verify", certificateController.VerifyCertificate)

	// User routes
	certGroup.Get("/mine", middleware.JWTMiddleware, certificateController.MyCertificates)
	certGroup.Post("/issue", certificateValidator.Issue(), middleware.JWTMiddleware, certificateController.IssueCertificate)

	// Admin routes
	adminGroup := certGroup.Group("/admin")
	adminGroup.Get("/stats", middleware.JWTMiddleware, certificateController.AdminStats)
}
