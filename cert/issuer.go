package cert

import (
	"errors"
	"log"
	"strings"
	"time"

	"qurotech/models"

	"gorm.io/gorm"
)

var (
	// ErrOrderNotFound means no order row matches the verified evidence
	ErrOrderNotFound = errors.New("order not found")

	// ErrOrderAlreadyCompleted is the idempotent short-circuit: the order was
	// completed by an earlier confirmation, nothing new is issued
	ErrOrderAlreadyCompleted = errors.New("order already completed")

	// ErrStorageUnprovisioned means the backing tables are missing. Distinct
	// from transient failures so operators get an actionable message.
	ErrStorageUnprovisioned = errors.New("certificate storage not provisioned")

	// ErrSerialExhausted means serial generation kept colliding for one item
	ErrSerialExhausted = errors.New("serial generation attempts exhausted")
)

// serialAttempts bounds the regenerate-on-collision loop per certificate
const serialAttempts = 3

// Issuer turns a verified, paid order into certificate rows, exactly once
// per order. The serial generator is a field so tests can force collisions.
type Issuer struct {
	DB             *gorm.DB
	GenerateSerial func() string
}

// NewIssuer returns an issuer backed by the given database
func NewIssuer(db *gorm.DB) *Issuer {
	return &Issuer{DB: db, GenerateSerial: GenerateSerial}
}

// IssueResult reports what a single issuance pass produced
type IssueResult struct {
	Certificates     []models.Certificate
	Skipped          int
	AlreadyCompleted bool
}

// IssueForOrder issues one certificate per line item and marks the order
// completed, all in one transaction. The pending->completed transition is
// claimed with a conditional update first: a concurrent duplicate
// confirmation sees zero affected rows and gets the idempotent result
// instead of a second batch. A failed item is logged and skipped, partial
// issuance still commits.
func (i *Issuer) IssueForOrder(order *models.Order, paymentReference string) (*IssueResult, error) {
	items, err := order.LineItems()
	if err != nil {
		return nil, err
	}

	fullName := i.displayName(order.UserID, order.Gateway)
	result := &IssueResult{}

	txErr := i.DB.Transaction(func(tx *gorm.DB) error {
		claim := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, models.OrderStatusPending).
			Update("status", models.OrderStatusCompleted)
		if claim.Error != nil {
			if isMissingTable(claim.Error) {
				return ErrStorageUnprovisioned
			}
			return claim.Error
		}
		if claim.RowsAffected == 0 {
			var existing models.Order
			if err := tx.Where("id = ?", order.ID).First(&existing).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrOrderNotFound
				}
				return err
			}
			// Load the winner's set inside the same transaction so the
			// idempotent result is exact even against a still-committing claim
			if err := tx.Where("order_id = ?", order.ID).
				Order("issued_at asc").
				Find(&result.Certificates).Error; err != nil {
				return err
			}
			return ErrOrderAlreadyCompleted
		}

		for _, item := range items {
			cert, err := i.insertCertificate(tx, order, item, fullName, paymentReference)
			if err != nil {
				if errors.Is(err, ErrStorageUnprovisioned) {
					return err
				}
				log.Printf("[ISSUER] Certificate creation failed for order %s: %v", order.ID, err)
				result.Skipped++
				continue
			}
			result.Certificates = append(result.Certificates, *cert)
		}
		return nil
	})

	if txErr != nil {
		if errors.Is(txErr, ErrOrderAlreadyCompleted) {
			result.AlreadyCompleted = true
			return result, nil
		}
		return nil, txErr
	}
	return result, nil
}

// insertCertificate persists one certificate, regenerating the serial on a
// unique-index collision. Each attempt runs under a savepoint so the failed
// insert does not poison the surrounding transaction.
func (i *Issuer) insertCertificate(tx *gorm.DB, order *models.Order, item models.LineItem, fullName, paymentReference string) (*models.Certificate, error) {
	title := item.Internship
	if title == "" {
		title = item.Title
	}
	if title == "" {
		title = "Internship"
	}

	durationLabel := item.DurationLabel
	if item.Duration != "" {
		durationLabel = DurationLabelFor(item.Duration, item.CustomHours, item.CustomWeeks)
	}
	if durationLabel == "" {
		durationLabel = "N/A"
	}

	var customHours, customWeeks *int
	if item.Duration == "custom" {
		customHours = orZero(item.CustomHours)
		customWeeks = orZero(item.CustomWeeks)
	}

	for attempt := 0; attempt < serialAttempts; attempt++ {
		cert := models.Certificate{
			Serial:           i.GenerateSerial(),
			UserID:           order.UserID,
			FullName:         fullName,
			Internship:       NormalizeInternshipTitle(title),
			DurationLabel:    durationLabel,
			CustomHours:      customHours,
			CustomWeeks:      customWeeks,
			Price:            item.Price,
			OrderID:          order.ID,
			PaymentReference: paymentReference,
			IssuedAt:         time.Now().UTC(),
		}

		if err := tx.SavePoint("cert_insert").Error; err != nil {
			return nil, err
		}
		err := tx.Create(&cert).Error
		if err == nil {
			return &cert, nil
		}
		if rbErr := tx.RollbackTo("cert_insert").Error; rbErr != nil {
			return nil, rbErr
		}
		if isMissingTable(err) {
			return nil, ErrStorageUnprovisioned
		}
		if isDuplicateKey(err) {
			log.Printf("[ISSUER] Serial collision on attempt %d for order %s, regenerating", attempt+1, order.ID)
			continue
		}
		return nil, err
	}
	return nil, ErrSerialExhausted
}

// displayName snapshots the holder's name from the profile table. The
// certificate keeps this copy even if the profile changes later.
func (i *Issuer) displayName(userID, gateway string) string {
	placeholder := "Student"
	if gateway == models.GatewayRazorpay {
		placeholder = "Participant"
	}
	if userID == "" {
		return placeholder
	}

	var profile models.Profile
	if err := i.DB.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return placeholder
	}
	if profile.FullName == "" {
		return placeholder
	}
	return profile.FullName
}

// DirectIssue is the payload for the authenticated single-certificate path
type DirectIssue struct {
	FullName         string
	Internship       string
	DurationLabel    string
	PaymentReference string
	CustomHours      *int
	CustomWeeks      *int
}

// IssueDirect creates a single certificate outside the order pipeline,
// priced from the duration label. The serial retry loop leans on the unique
// index the same way the batch path does. Unlike the batch path, absent
// custom hours/weeks stay unset rather than defaulting to 0.
func (i *Issuer) IssueDirect(userID string, req DirectIssue) (*models.Certificate, error) {
	var customHours, customWeeks *int
	if req.DurationLabel == DurationCustom {
		customHours = req.CustomHours
		customWeeks = req.CustomWeeks
	}

	var lastErr error
	for attempt := 0; attempt < serialAttempts; attempt++ {
		cert := models.Certificate{
			Serial:           i.GenerateSerial(),
			UserID:           userID,
			FullName:         req.FullName,
			Internship:       NormalizeInternshipTitle(req.Internship),
			DurationLabel:    req.DurationLabel,
			CustomHours:      customHours,
			CustomWeeks:      customWeeks,
			Price:            PriceForLabel(req.DurationLabel),
			PaymentReference: req.PaymentReference,
			IssuedAt:         time.Now().UTC(),
		}

		err := i.DB.Create(&cert).Error
		if err == nil {
			return &cert, nil
		}
		if isMissingTable(err) {
			return nil, ErrStorageUnprovisioned
		}
		if isDuplicateKey(err) {
			lastErr = err
			continue
		}
		return nil, err
	}
	log.Printf("[ISSUER] Serial attempts exhausted for user %s: %v", userID, lastErr)
	return nil, ErrSerialExhausted
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

func isMissingTable(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "does not exist") || strings.Contains(msg, "no such table")
}

func orZero(v *int) *int {
	if v != nil {
		return v
	}
	zero := 0
	return &zero
}
