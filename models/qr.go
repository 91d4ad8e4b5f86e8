package models

import "time"

// QR is a printed code embedded in apparel. Scans resolve through the cached
// ActiveDestinationID written by the sweeper; the redirect path never runs
// selection inline.
type QR struct {
	ID                  uint          `gorm:"primaryKey" json:"id"`
	Code                string        `gorm:"size:32;uniqueIndex;not null" json:"code"`
	UserID              uint          `gorm:"index;not null" json:"user_id"`
	EventID             *uint         `gorm:"index" json:"event_id"`
	Title               string        `gorm:"size:255" json:"title"`
	ActiveDestinationID *uint         `gorm:"index" json:"active_destination_id"`
	LastActiveAt        *time.Time    `json:"last_active_at"`
	ScanCount           int64         `gorm:"not null;default:0" json:"scan_count"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
	Destinations        []Destination `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"destinations,omitempty"`
}
