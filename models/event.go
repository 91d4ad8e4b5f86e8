package models

import (
	"time"

	"gorm.io/gorm"
)

// Event statuses. Archived is terminal: the lifecycle sweeper never moves an
// event back to live.
const (
	EventStatusDraft    = "draft"
	EventStatusLive     = "live"
	EventStatusArchived = "archived"
)

// Event is a user occasion (wedding, bachelorette, festival) that groups QR
// codes and their destinations, with a content retention window.
type Event struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	UserID         uint          `gorm:"index;not null" json:"user_id"`
	Name           string        `gorm:"size:255;not null" json:"name"`
	Slug           string        `gorm:"size:255;uniqueIndex" json:"slug"`
	Status         string        `gorm:"size:16;index;not null;default:'draft'" json:"status"`
	EventDate      time.Time     `gorm:"not null" json:"event_date"`
	ContentTTLDays int           `gorm:"not null" json:"content_ttl_days"`
	ExpiresAt      time.Time     `gorm:"index;not null" json:"expires_at"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
	QRs            []QR          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"qrs,omitempty"`
	Destinations   []Destination `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Members        []EventMember `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"members,omitempty"`
}

// RecomputeExpiry derives ExpiresAt from EventDate and ContentTTLDays. Callers
// must invoke it on every write that touches either input so the stored value
// is never stale.
func (e *Event) RecomputeExpiry() {
	e.ExpiresAt = e.EventDate.AddDate(0, 0, e.ContentTTLDays)
}

// BeforeSave keeps the derived expiry consistent no matter which write path
// touched the row.
func (e *Event) BeforeSave(tx *gorm.DB) error {
	if !e.EventDate.IsZero() && e.ContentTTLDays > 0 {
		e.RecomputeExpiry()
	}
	return nil
}

// Expired reports whether the retention window has elapsed at the given instant.
func (e *Event) Expired(now time.Time) bool {
	return !e.ExpiresAt.After(now)
}
