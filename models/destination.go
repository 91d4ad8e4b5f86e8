package models

import "time"

// Destination types. External destinations redirect to TargetURL; the rest
// resolve to internal modules rendered by the frontend.
const (
	DestinationExternal    = "external"
	DestinationAlbum       = "album"
	DestinationMicrosite   = "microsite"
	DestinationPrueba      = "prueba"
	DestinationTimeline    = "timeline"
	DestinationMessageWall = "message_wall"
	DestinationPlaylist    = "playlist"
	DestinationMap         = "map"
	DestinationSurprise    = "surprise"
)

// DestinationTypes lists every accepted destination type.
var DestinationTypes = []string{
	DestinationExternal,
	DestinationAlbum,
	DestinationMicrosite,
	DestinationPrueba,
	DestinationTimeline,
	DestinationMessageWall,
	DestinationPlaylist,
	DestinationMap,
	DestinationSurprise,
}

// Destination is a time-windowed, prioritized target a QR can redirect to.
// The validity window is half-open: [StartAt, EndAt). A nil bound means
// unbounded on that side. Lower Priority wins among simultaneously valid
// destinations.
type Destination struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	EventID   uint       `gorm:"index;not null" json:"event_id"`
	QRID      uint       `gorm:"index;not null" json:"qr_id"`
	Type      string     `gorm:"size:32;not null" json:"type"`
	Title     string     `gorm:"size:255" json:"title"`
	TargetURL string     `gorm:"size:1024" json:"target_url"`
	// No column defaults on IsActive and Priority: gorm substitutes the
	// default for zero-value fields on insert, which would turn an explicit
	// is_active=false or priority=0 into true/100. Callers set both.
	IsActive  bool       `gorm:"not null" json:"is_active"`
	StartAt   *time.Time `json:"start_at"`
	EndAt     *time.Time `json:"end_at"`
	Priority  int        `gorm:"not null" json:"priority"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ValidType reports whether t is an accepted destination type.
func ValidType(t string) bool {
	for _, dt := range DestinationTypes {
		if t == dt {
			return true
		}
	}
	return false
}

// WindowValid reports whether the validity window is interpretable: when both
// bounds are present, StartAt must precede EndAt. Rows failing this are
// rejected at write time and treated as ineligible if encountered anyway.
func (d *Destination) WindowValid() bool {
	if d.StartAt != nil && d.EndAt != nil {
		return d.StartAt.Before(*d.EndAt)
	}
	return true
}
