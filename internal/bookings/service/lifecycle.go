package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"slices"
	bookingserrors "staybook/internal/bookings/errors"
	apperrors "staybook/pkg/errors"
	"staybook/pkg/model"
	"staybook/pkg/notify"
	"time"
)

type LifecycleService interface {
	Confirm(ctx context.Context, id, token string) (*model.Booking, error)
	UpdateStatus(ctx context.Context, id string, update *model.StatusUpdate) (*model.Booking, error)
	Release(ctx context.Context, id string) (*model.Booking, error)
	MarkPaid(ctx context.Context, id string) (*model.Booking, error)
}

// allowedTransitions lists the moves each status permits. Moving a booking
// to the status it already has is always a no-op and is not listed.
var allowedTransitions = map[string][]string{
	model.BookingStatusPending:   {model.BookingStatusConfirmed, model.BookingStatusCancelled},
	model.BookingStatusConfirmed: {model.BookingStatusCancelled},
}

// A lost compare-and-set is re-evaluated once against fresh state.
const maxTransitionAttempts = 2

type lifecycleService struct {
	Dependencies
	now func() time.Time
}

func NewLifecycleService(deps Dependencies) LifecycleService {
	return newLifecycleService(deps)
}

func newLifecycleService(deps Dependencies) *lifecycleService {
	return &lifecycleService{
		Dependencies: deps,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Confirm redeems the single-use token sent in the confirmation email.
func (s *lifecycleService) Confirm(ctx context.Context, id, token string) (*model.Booking, error) {
	if token == "" {
		return nil, apperrors.Validation("Confirmation token is required", nil)
	}

	checkToken := func(b *model.Booking) error {
		if b.ConfirmationToken == "" || subtle.ConstantTimeCompare([]byte(b.ConfirmationToken), []byte(token)) != 1 {
			return apperrors.Validation("Invalid or already used confirmation token", nil)
		}
		return nil
	}

	return s.transition(ctx, id, model.BookingStatusConfirmed, token, checkToken)
}

// UpdateStatus is the operator path. It can confirm or cancel a pending
// booking and cancel a confirmed one.
func (s *lifecycleService) UpdateStatus(ctx context.Context, id string, update *model.StatusUpdate) (*model.Booking, error) {
	if err := s.Validator.ValidateStatusUpdate(update); err != nil {
		return nil, apperrors.Validation("Invalid status update", map[string]any{"errors": err})
	}
	return s.transition(ctx, id, update.Status, "", nil)
}

// Release cancels a booking that has not been confirmed. Confirmed bookings
// are honoured inventory and can only be cancelled through UpdateStatus.
func (s *lifecycleService) Release(ctx context.Context, id string) (*model.Booking, error) {
	notConfirmed := func(b *model.Booking) error {
		if b.Status == model.BookingStatusConfirmed {
			return apperrors.Conflict("Confirmed bookings cannot be released")
		}
		return nil
	}
	return s.transition(ctx, id, model.BookingStatusCancelled, "", notConfirmed)
}

// MarkPaid records a successful payment and confirms the booking.
func (s *lifecycleService) MarkPaid(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status == model.BookingStatusCancelled {
		return nil, apperrors.Conflict("Cannot record payment for a cancelled booking")
	}

	if !booking.IsPaid {
		if err := s.Bookings.MarkPaid(ctx, id); err != nil {
			return nil, translate(err, "Booking", id, "Failed to mark booking paid")
		}
		s.Config.Log.Info("Booking marked paid", "booking_id", id)
	}

	confirmed, err := s.transition(ctx, id, model.BookingStatusConfirmed, "", nil)
	if err != nil {
		return nil, err
	}
	confirmed.IsPaid = true
	return confirmed, nil
}

// transition moves booking id to status to. check, when set, vets the
// current booking before anything else. The write is conditional on the
// status that was read; if another writer got there first the booking is
// reloaded and re-evaluated once.
func (s *lifecycleService) transition(ctx context.Context, id, to, token string, check func(*model.Booking) error) (*model.Booking, error) {
	for attempt := 1; attempt <= maxTransitionAttempts; attempt++ {
		booking, err := s.load(ctx, id)
		if err != nil {
			return nil, err
		}

		if check != nil {
			if err := check(booking); err != nil {
				return nil, err
			}
		}

		from := booking.Status
		if from == to {
			return booking, nil
		}
		if !slices.Contains(allowedTransitions[from], to) {
			return nil, apperrors.Conflict(fmt.Sprintf("Cannot change booking status from %s to %s", from, to))
		}

		err = s.Bookings.TransitionStatus(ctx, id, from, to, token)
		if errors.Is(err, bookingserrors.ErrStatusChanged) {
			s.Config.Log.Info("Booking status changed concurrently, re-evaluating",
				"booking_id", id,
				"from", from,
				"to", to,
				"attempt", attempt,
			)
			continue
		}
		if err != nil {
			return nil, translate(err, "Booking", id, "Failed to update booking status")
		}

		booking.Status = to
		booking.UpdatedAt = s.now()
		if from == model.BookingStatusPending {
			booking.ConfirmationToken = ""
		}

		s.afterTransition(ctx, booking, from)
		return booking, nil
	}

	return nil, apperrors.Conflict("Booking was modified concurrently, please retry")
}

func (s *lifecycleService) afterTransition(ctx context.Context, booking *model.Booking, from string) {
	log := s.Config.Log

	s.Metrics.Transition(from, booking.Status)
	log.Info("Booking status updated",
		"booking_id", booking.ID,
		"from", from,
		"to", booking.Status,
	)

	if err := s.Locks.releaseRooms(context.WithoutCancel(ctx), booking.RoomIDs()); err != nil {
		log.Warn("Failed to release temp locks", "booking_id", booking.ID, "error", err)
	}

	switch booking.Status {
	case model.BookingStatusConfirmed:
		send(ctx, s.Notifier, s.Config, booking, notify.SubjectBookingConfirmed, notify.BookingConfirmedTemplate, "")
	case model.BookingStatusCancelled:
		send(ctx, s.Notifier, s.Config, booking, notify.SubjectBookingCancelled, notify.BookingCancelledTemplate, "")
	}
}

func (s *lifecycleService) load(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	booking, err := s.Bookings.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "Booking", id, "Failed to retrieve booking")
	}
	return booking, nil
}
