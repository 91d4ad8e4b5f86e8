package models

import "time"

// Event member roles. Owner and editor may mutate destinations.
const (
	RoleOwner  = "owner"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// EventMember links a user to an event with a role. The owning user gets an
// owner membership when the event is created.
type EventMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventID   uint      `gorm:"index:idx_member_event_user,unique;not null" json:"event_id"`
	UserID    uint      `gorm:"index:idx_member_event_user,unique;index;not null" json:"user_id"`
	Role      string    `gorm:"size:16;not null;default:'viewer'" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user,omitempty"`
}

// CanEdit reports whether the role allows destination mutation.
func (m *EventMember) CanEdit() bool {
	return m.Role == RoleOwner || m.Role == RoleEditor
}
