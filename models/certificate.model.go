package models

import (
	"time"
)

// Certificate is an issued completion record identified by a public serial.
// Rows are append-only: content is never edited after creation, corrections
// require issuing a new certificate.
type Certificate struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	Serial        string  `gorm:"type:varchar(40);uniqueIndex;not null" json:"serial"`
	UserID        string  `gorm:"type:varchar(64);index" json:"userId"`
	FullName      string  `gorm:"type:varchar(255)" json:"fullName"`
	Internship    string  `gorm:"type:varchar(255)" json:"internship"`
	DurationLabel string  `gorm:"type:varchar(100)" json:"durationLabel"`
	CustomHours   *int    `json:"customHours,omitempty"`
	CustomWeeks   *int    `json:"customWeeks,omitempty"`
	Price         float64 `json:"price"`

	// Issuance provenance, never exposed on the public lookup
	OrderID          string `gorm:"type:varchar(64);index" json:"orderId,omitempty"`
	PaymentReference string `gorm:"type:varchar(100);index" json:"paymentReference,omitempty"`

	IssuedAt  time.Time `json:"issuedAt"`
	CreatedAt time.Time `json:"-"`
}

func (Certificate) TableName() string {
	return "certificates"
}

// CertificateView is the minimal public shape returned by the verification
// lookup. No internal ids, payment references or pricing.
type CertificateView struct {
	FullName      string    `json:"full_name"`
	Internship    string    `json:"internship"`
	DurationLabel string    `json:"duration_label"`
	Serial        string    `json:"serial"`
	IssuedAt      time.Time `json:"issued_at"`
}
