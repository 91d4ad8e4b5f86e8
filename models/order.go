package models

import "time"

// Order statuses as mapped from Stripe checkout and Printful fulfillment
// webhooks. Payment and fulfillment logic live in the external platforms;
// this row only mirrors their state.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusSubmitted = "submitted"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCanceled  = "canceled"
	OrderStatusFailed    = "failed"
)

// Order records an apparel purchase tied to a QR batch.
type Order struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"index;not null" json:"user_id"`
	EventID         *uint     `gorm:"index" json:"event_id"`
	IdempotencyKey  string    `gorm:"size:64;uniqueIndex" json:"idempotency_key"`
	StripeSessionID string    `gorm:"size:255;index" json:"stripe_session_id"`
	PrintfulOrderID string    `gorm:"size:64;index" json:"printful_order_id"`
	Status          string    `gorm:"size:16;not null;default:'pending'" json:"status"`
	AmountCents     int64     `json:"amount_cents"`
	Currency        string    `gorm:"size:8;default:'eur'" json:"currency"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// printfulStatusMap translates Printful webhook statuses onto order statuses.
// Unknown statuses leave the order untouched.
var printfulStatusMap = map[string]string{
	"draft":      OrderStatusSubmitted,
	"pending":    OrderStatusSubmitted,
	"inprocess":  OrderStatusSubmitted,
	"onhold":     OrderStatusSubmitted,
	"fulfilled":  OrderStatusShipped,
	"shipped":    OrderStatusShipped,
	"delivered":  OrderStatusDelivered,
	"canceled":   OrderStatusCanceled,
	"failed":     OrderStatusFailed,
	"returned":   OrderStatusFailed,
}

// MapPrintfulStatus returns the order status for a Printful fulfillment
// status, and whether the status is recognized.
func MapPrintfulStatus(s string) (string, bool) {
	mapped, ok := printfulStatusMap[s]
	return mapped, ok
}
