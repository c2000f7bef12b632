package service

import (
	"context"
	"fmt"
	"slices"
	"staybook/internal/bookings/repository"
	apperrors "staybook/pkg/errors"
	"staybook/pkg/logger"
	"staybook/pkg/metrics"
	"staybook/pkg/model"
	"time"
)

// AvailabilityCalculator derives remaining capacity from the bookings that
// overlap a window. Nothing is cached: every call reads current bookings.
type AvailabilityCalculator struct {
	bookings repository.BookingRepository
	metrics  *metrics.Metrics
	log      *logger.Logger
}

func NewAvailabilityCalculator(bookings repository.BookingRepository, m *metrics.Metrics, log *logger.Logger) *AvailabilityCalculator {
	return &AvailabilityCalculator{
		bookings: bookings,
		metrics:  m,
		log:      log.WithComponent("availability"),
	}
}

// RemainingCapacity returns, per room, TotalRoom minus the largest number of
// units held at any instant of [checkIn, checkOut). Cancelled bookings do
// not count. When every overlapping booking covers the whole window this is
// the plain sum of their quantities.
//
// A negative result means inventory is already overbooked; it is reported
// as an integrity error rather than clamped.
func (c *AvailabilityCalculator) RemainingCapacity(ctx context.Context, rooms []*model.Room, checkIn, checkOut time.Time) (map[string]int, error) {
	if len(rooms) == 0 {
		return map[string]int{}, nil
	}
	if !checkIn.Before(checkOut) {
		return nil, apperrors.Validation("check_out must be after check_in", nil)
	}

	ids := make([]string, 0, len(rooms))
	for _, room := range rooms {
		ids = append(ids, room.ID)
	}

	overlapping, err := c.bookings.FindOverlapping(ctx, ids, checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	remaining := make(map[string]int, len(rooms))
	for _, room := range rooms {
		peak := peakUsage(overlapping, room.ID, checkIn, checkOut)
		left := room.TotalRoom - peak
		if left < 0 {
			c.metrics.IntegrityViolation()
			c.log.Error("Room is overbooked",
				"room_id", room.ID,
				"total_room", room.TotalRoom,
				"booked", peak,
				"remaining", left,
				"check_in", checkIn,
				"check_out", checkOut,
			)
			return nil, apperrors.Integrity(fmt.Sprintf("Room %s is overbooked", room.ID), map[string]any{
				"room_id":    room.ID,
				"total_room": room.TotalRoom,
				"booked":     peak,
				"remaining":  left,
			})
		}
		remaining[room.ID] = left
	}

	return remaining, nil
}

type usageEvent struct {
	at    time.Time
	delta int
}

// peakUsage sweeps the clipped booking intervals for roomID and returns the
// highest concurrent quantity. At equal instants releases are applied before
// arrivals, so a stay ending when another begins never stacks.
func peakUsage(bookings []*model.Booking, roomID string, checkIn, checkOut time.Time) int {
	var events []usageEvent
	for _, b := range bookings {
		if !b.HoldsInventory() || !b.Overlaps(checkIn, checkOut) {
			continue
		}
		q := b.QuantityFor(roomID)
		if q == 0 {
			continue
		}
		start, end := b.CheckIn, b.CheckOut
		if start.Before(checkIn) {
			start = checkIn
		}
		if end.After(checkOut) {
			end = checkOut
		}
		events = append(events, usageEvent{at: start, delta: q}, usageEvent{at: end, delta: -q})
	}

	slices.SortFunc(events, func(a, b usageEvent) int {
		if c := a.at.Compare(b.at); c != 0 {
			return c
		}
		return a.delta - b.delta
	})

	current, peak := 0, 0
	for _, e := range events {
		current += e.delta
		peak = max(peak, current)
	}
	return peak
}
