package service

import (
	"context"
	"staybook/internal/bookings/repository"
	"staybook/pkg/logger"
	"staybook/pkg/metrics"
	"staybook/pkg/model"
	"time"
)

const defaultSweepBatch = 500

type SweepResult struct {
	Expired int
	Skipped int
	Failed  int
}

// ExpirySweeper deletes pending bookings nobody confirmed within the grace
// period. Each booking is handled on its own; one failure does not stop the
// sweep.
type ExpirySweeper struct {
	bookings  repository.BookingRepository
	locks     *TempLockManager
	grace     time.Duration
	batchSize int
	metrics   *metrics.Metrics
	log       *logger.Logger
	now       func() time.Time
}

func NewExpirySweeper(
	bookings repository.BookingRepository,
	locks *TempLockManager,
	grace time.Duration,
	batchSize int,
	m *metrics.Metrics,
	log *logger.Logger,
) *ExpirySweeper {
	if batchSize <= 0 {
		batchSize = defaultSweepBatch
	}
	return &ExpirySweeper{
		bookings:  bookings,
		locks:     locks,
		grace:     grace,
		batchSize: batchSize,
		metrics:   m,
		log:       log.WithComponent("expiry-sweeper"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Sweep reclaims every stale pending booking, reading them a page at a time
// until a short page comes back. The cursor moves past failed deletes, so a
// record that keeps failing is retried on the next run without blocking the
// ones behind it. A booking confirmed between selection and deletion is left
// alone and counted as skipped.
func (s *ExpirySweeper) Sweep(ctx context.Context) (SweepResult, error) {
	var (
		result   SweepResult
		selected int
		cursor   *repository.StaleCursor
	)

	cutoff := s.now().Add(-s.grace)
	for ctx.Err() == nil {
		page, err := s.bookings.FindStalePending(ctx, cutoff, cursor, s.batchSize)
		if err != nil {
			s.log.Error("Failed to select stale bookings", "cutoff", cutoff, "error", err)
			s.finish(result, selected)
			return result, translate(err, "Booking", "", "Failed to select stale bookings")
		}
		selected += len(page)

		for _, booking := range page {
			if ctx.Err() != nil {
				break
			}
			s.expire(ctx, booking, &result)
		}

		if len(page) < s.batchSize {
			break
		}
		cursor = repository.CursorAfter(page[len(page)-1])
	}

	s.finish(result, selected)
	return result, ctx.Err()
}

func (s *ExpirySweeper) expire(ctx context.Context, booking *model.Booking, result *SweepResult) {
	if err := s.locks.releaseRooms(ctx, booking.RoomIDs()); err != nil {
		s.log.Warn("Failed to release temp locks", "booking_id", booking.ID, "error", err)
	}

	deleted, err := s.bookings.DeleteIfPending(ctx, booking.ID)
	switch {
	case err != nil:
		result.Failed++
		s.log.Error("Failed to expire booking", "booking_id", booking.ID, "error", err)
	case !deleted:
		result.Skipped++
		s.log.Debug("Booking no longer pending, skipped", "booking_id", booking.ID)
	default:
		result.Expired++
		s.log.Info("Expired pending booking",
			"booking_id", booking.ID,
			"created_at", booking.CreatedAt,
			"rooms", booking.RoomIDs(),
		)
	}
}

func (s *ExpirySweeper) finish(result SweepResult, selected int) {
	s.metrics.Swept(result.Expired, result.Failed)
	if selected > 0 {
		s.log.Info("Expiry sweep finished",
			"selected", selected,
			"expired", result.Expired,
			"skipped", result.Skipped,
			"failed", result.Failed,
		)
	}
}
