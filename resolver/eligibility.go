// Package resolver implements the destination resolution engine: event
// lifecycle archival and per-QR active-destination selection. Selection
// results are cached on the QR row so the scan redirect path stays O(1).
package resolver

import (
	"time"

	"github.com/elquelo/elquelo/models"
)

// IsEligible reports whether the destination is currently valid at the given
// instant. Pure and deterministic: now is injected so every destination in one
// sweep pass is judged against the same instant.
//
// A destination is eligible iff it is active, its window is interpretable, and
// now falls inside the half-open window [StartAt, EndAt). A nil bound is
// unbounded on that side.
func IsEligible(d *models.Destination, now time.Time) bool {
	if !d.IsActive {
		return false
	}
	// Uninterpretable windows are treated as ineligible rather than crashing
	// the group's resolution.
	if !d.WindowValid() {
		return false
	}
	if d.StartAt != nil && d.StartAt.After(now) {
		return false
	}
	if d.EndAt != nil && !d.EndAt.After(now) {
		return false
	}
	return true
}
