package certificateController

import (
	"errors"
	"log"
	"net/url"
	"time"

	"qurotech/cert"
	"qurotech/config"
	"qurotech/database"
	"qurotech/middleware"
	"qurotech/models"
	"qurotech/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

// VerifyCertificate is the public, unauthenticated serial lookup. Exact
// match only: a miss is a plain 404 with no hint of near matches.
func VerifyCertificate(c *fiber.Ctx) error {
	serial := c.Query("serial")
	if serial == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Missing serial!", nil)
	}

	var view models.CertificateView
	err := database.Database.Db.Model(&models.Certificate{}).
		Select("full_name", "internship", "duration_label", "serial", "issued_at").
		Where("serial = ?", serial).
		First(&view).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Not found", nil)
		}
		log.Printf("[CERTIFICATE] Lookup failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to verify certificate!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate verified!", view)
}

// MyCertificates returns the caller's certificates tied to one completed
// order or payment reference
func MyCertificates(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(string)
	if !ok || userId == "" {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reference := c.Query("reference")
	if reference == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Payment information is required!", nil)
	}

	var certificates []models.Certificate
	if err := database.Database.Db.
		Where("user_id = ? AND (order_id = ? OR payment_reference = ?)", userId, reference, reference).
		Order("issued_at desc").
		Limit(50).
		Find(&certificates).Error; err != nil {
		log.Printf("[CERTIFICATE] Fetch failed for user %s: %v", userId, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch certificates!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", fiber.Map{
		"certificates": certificates,
	})
}

// IssueCertificate is the authenticated direct-issue path used by the
// generate flow once a payment reference is in hand
func IssueCertificate(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(string)
	if !ok || userId == "" {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedIssue").(*cert.DirectIssue)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	// One certificate per payment reference per user
	var existing models.Certificate
	if err := db.Where("user_id = ? AND payment_reference = ?", userId, reqData.PaymentReference).
		First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Certificate already issued for this payment reference!", fiber.Map{
			"certificateId": existing.ID,
			"serial":        existing.Serial,
		})
	}

	issuer := cert.NewIssuer(db)
	certificate, err := issuer.IssueDirect(userId, *reqData)
	if err != nil {
		switch {
		case errors.Is(err, cert.ErrStorageUnprovisioned):
			return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false,
				"Database not initialized. Run the certificate and order migrations first.", nil)
		case errors.Is(err, cert.ErrSerialExhausted):
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to issue certificate, please retry!", nil)
		}
		log.Printf("[CERTIFICATE] Direct issue failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to issue certificate!", nil)
	}

	var profile models.Profile
	if err := db.Where("user_id = ?", userId).First(&profile).Error; err == nil && profile.Email != "" {
		go utils.SendCertificateEmail(profile.Email, certificate.FullName, certificate.Internship, certificate.Serial)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Certificate issued successfully!", fiber.Map{
		"certificateId": certificate.ID,
		"serial":        certificate.Serial,
		"verifyUrl":     VerifyURL(certificate.Serial),
	})
}

// VerifyURL builds the public verification link embedded in certificates
// and emails
func VerifyURL(serial string) string {
	return config.AppConfig.PublicBaseURL + "/certificates/verify?serial=" + url.QueryEscape(serial)
}

// AdminStats reports issuance volume for operators (ADMIN role only)
func AdminStats(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(string)
	if !ok || userId == "" {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	db := database.Database.Db

	var admin models.Profile
	if err := db.Where("user_id = ?", userId).First(&admin).Error; err != nil || admin.Role != "ADMIN" {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}

	var total, issuedToday, issuedThisMonth, pendingOrders int64
	db.Model(&models.Certificate{}).Count(&total)
	db.Model(&models.Certificate{}).Where("issued_at >= ?", now.BeginningOfDay()).Count(&issuedToday)
	db.Model(&models.Certificate{}).Where("issued_at >= ?", now.BeginningOfMonth()).Count(&issuedThisMonth)
	db.Model(&models.Order{}).Where("status = ?", models.OrderStatusPending).Count(&pendingOrders)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Issuance stats fetched!", fiber.Map{
		"totalCertificates": total,
		"issuedToday":       issuedToday,
		"issuedThisMonth":   issuedThisMonth,
		"pendingOrders":     pendingOrders,
		"generatedAt":       time.Now(),
	})
}
