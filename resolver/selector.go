package resolver

import (
	"sort"
	"time"

	"github.com/elquelo/elquelo/models"
)

// SelectActive picks the single currently winning destination for one QR, or
// nil when none is eligible. Among eligible destinations the lowest Priority
// value wins; ties are broken deterministically by later CreatedAt (the most
// recently created destination wins), then by lower ID. Idempotent: identical
// inputs always yield the same winner.
func SelectActive(destinations []models.Destination, now time.Time) *models.Destination {
	eligible := make([]*models.Destination, 0, len(destinations))
	for i := range destinations {
		if IsEligible(&destinations[i], now) {
			eligible = append(eligible, &destinations[i])
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	sort.Slice(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return eligible[0]
}

// GroupByQR buckets destinations by their QR id, preserving input order
// inside each bucket.
func GroupByQR(destinations []models.Destination) map[uint][]models.Destination {
	groups := make(map[uint][]models.Destination)
	for _, d := range destinations {
		groups[d.QRID] = append(groups[d.QRID], d)
	}
	return groups
}
