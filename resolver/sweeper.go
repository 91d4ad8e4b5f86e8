package resolver

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/elquelo/elquelo/models"
)

// Report summarizes one sweep pass. Errors holds per-event and per-QR
// failures; their presence does not make the sweep itself a failure.
type Report struct {
	ProcessedEvents int      `json:"processed_events"`
	ArchivedEvents  int      `json:"archived_events"`
	ResolvedQRs     int      `json:"resolved_qrs"`
	Errors          []string `json:"errors,omitempty"`
}

// Sweeper archives expired events and refreshes each QR's cached active
// destination. It is safe to run concurrently with itself: archival is a
// monotonic terminal write and destination pointers are full overwrites, so
// duplicate runs converge for a fixed now.
type Sweeper struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
	// invalidate is called with a QR code after its pointer changes, to drop
	// the redirect-path cache entry. Optional.
	invalidate func(code string)
}

// NewSweeper builds a Sweeper. invalidate may be nil.
func NewSweeper(db *gorm.DB, logger *zap.SugaredLogger, invalidate func(code string)) *Sweeper {
	return &Sweeper{db: db, logger: logger, invalidate: invalidate}
}

// Run executes one sweep pass against the injected instant. It loads all live
// events, archives those past expiry, and re-selects the active destination
// for every QR of events still live this pass. QRs of events archived in this
// pass keep their last resolved pointer. Per-item failures are logged and
// collected, never aborting the batch; Run only returns an error when the
// initial event listing fails.
func (s *Sweeper) Run(ctx context.Context, now time.Time) (Report, error) {
	var report Report

	var events []models.Event
	if err := s.db.WithContext(ctx).
		Where("status = ?", models.EventStatusLive).
		Find(&events).Error; err != nil {
		return report, fmt.Errorf("list live events: %w", err)
	}

	for i := range events {
		ev := &events[i]
		report.ProcessedEvents++

		if ev.Expired(now) {
			if err := s.archiveEvent(ctx, ev, now); err != nil {
				report.Errors = append(report.Errors, fmt.Sprintf("event %d: archive: %v", ev.ID, err))
				s.logger.Warnw("sweep: archive failed", "event_id", ev.ID, "error", err)
				continue
			}
			report.ArchivedEvents++
			// Archived this pass: QRs keep their last resolved destination.
			continue
		}

		resolved, errs := s.resolveEvent(ctx, ev, now)
		report.ResolvedQRs += resolved
		report.Errors = append(report.Errors, errs...)
	}

	s.logger.Infow("sweep complete",
		"processed_events", report.ProcessedEvents,
		"archived_events", report.ArchivedEvents,
		"resolved_qrs", report.ResolvedQRs,
		"errors", len(report.Errors),
	)
	return report, nil
}

// archiveEvent performs the terminal live -> archived transition. Rewriting
// the same terminal state on overlapping sweeps is harmless.
func (s *Sweeper) archiveEvent(ctx context.Context, ev *models.Event, now time.Time) error {
	return s.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ? AND status = ?", ev.ID, models.EventStatusLive).
		Updates(map[string]interface{}{
			"status":     models.EventStatusArchived,
			"updated_at": now,
		}).Error
}

// resolveEvent loads the event's destinations grouped by QR, selects the
// winner per group, and persists the pointer. Returns the count of QRs
// written and the per-group errors encountered.
func (s *Sweeper) resolveEvent(ctx context.Context, ev *models.Event, now time.Time) (int, []string) {
	var destinations []models.Destination
	if err := s.db.WithContext(ctx).
		Where("event_id = ?", ev.ID).
		Find(&destinations).Error; err != nil {
		s.logger.Warnw("sweep: load destinations failed", "event_id", ev.ID, "error", err)
		return 0, []string{fmt.Sprintf("event %d: load destinations: %v", ev.ID, err)}
	}

	var resolved int
	var errs []string
	for qrID, group := range GroupByQR(destinations) {
		winner := SelectActive(group, now)
		if err := s.writePointer(ctx, qrID, winner, now); err != nil {
			errs = append(errs, fmt.Sprintf("qr %d: write pointer: %v", qrID, err))
			s.logger.Warnw("sweep: pointer write failed", "qr_id", qrID, "error", err)
			continue
		}
		resolved++
	}
	return resolved, errs
}

// writePointer overwrites the QR's cached active destination (nil clears it)
// and stamps the resolution time. Full overwrite, so overlapping sweeps with
// the same now are idempotent.
func (s *Sweeper) writePointer(ctx context.Context, qrID uint, winner *models.Destination, now time.Time) error {
	var destID *uint
	if winner != nil {
		destID = &winner.ID
	}

	res := s.db.WithContext(ctx).
		Model(&models.QR{}).
		Where("id = ?", qrID).
		Updates(map[string]interface{}{
			"active_destination_id": destID,
			"last_active_at":        now,
		})
	if res.Error != nil {
		return res.Error
	}

	if s.invalidate != nil {
		var qr models.QR
		if err := s.db.WithContext(ctx).Select("code").First(&qr, qrID).Error; err == nil {
			s.invalidate(qr.Code)
		}
	}
	return nil
}
