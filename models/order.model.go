package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// OrderStatus defines the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
)

// Payment gateway identifiers
const (
	GatewayRazorpay = "razorpay"
	GatewayStripe   = "stripe"
)

// LineItem is a single cart entry captured on the order
type LineItem struct {
	Internship    string  `json:"internship"`
	Title         string  `json:"title"`
	Duration      string  `json:"duration"` // 1-month, 2-months, custom
	DurationLabel string  `json:"durationLabel,omitempty"`
	Price         float64 `json:"price"`
	CustomHours   *int    `json:"customHours,omitempty"`
	CustomWeeks   *int    `json:"customWeeks,omitempty"`
}

// Order is a cart snapshot awaiting or having completed payment. Status only
// ever moves pending -> completed, and the transition is claimed with a
// conditional update so duplicate payment confirmations cannot re-issue
// certificates.
type Order struct {
	ID          string         `gorm:"type:varchar(64);primaryKey" json:"id"`
	UserID      string         `gorm:"type:varchar(64);index" json:"userId"`
	Items       datatypes.JSON `json:"items"`
	TotalAmount int64          `gorm:"not null" json:"totalAmount"` // smallest currency unit (paise)
	Currency    string         `gorm:"type:varchar(10);default:'INR'" json:"currency"`
	Status      OrderStatus    `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	Gateway     string         `gorm:"type:varchar(20)" json:"gateway"` // razorpay, stripe

	// Provider references used for idempotent lookup
	RazorpayOrderID   *string `gorm:"type:varchar(100);uniqueIndex" json:"razorpayOrderId,omitempty"`
	PaymentIntentID   *string `gorm:"type:varchar(100);uniqueIndex" json:"paymentIntentId,omitempty"`
	RazorpayPaymentID string  `gorm:"type:varchar(100)" json:"razorpayPaymentId,omitempty"`
	RazorpaySignature string  `gorm:"type:varchar(255)" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Order) TableName() string {
	return "orders"
}

// LineItems decodes the stored items JSON
func (o *Order) LineItems() ([]LineItem, error) {
	if len(o.Items) == 0 {
		return nil, nil
	}
	var items []LineItem
	if err := json.Unmarshal(o.Items, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// MarshalLineItems encodes line items for storage on the order row
func MarshalLineItems(items []LineItem) (datatypes.JSON, error) {
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
