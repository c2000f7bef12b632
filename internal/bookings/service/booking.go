package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"staybook/internal/bookings/repository"
	"staybook/internal/bookings/validator"
	"staybook/pkg/config"
	apperrors "staybook/pkg/errors"
	"staybook/pkg/metrics"
	"staybook/pkg/model"
	"staybook/pkg/notify"
	"staybook/pkg/sanitizer"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	maxReserveAttempts = 3
	reserveBackoff     = 20 * time.Millisecond
)

type BookingService interface {
	Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	ListByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, int64, error)
	ListByProperty(ctx context.Context, propertyID string, limit int, offset int64) ([]*model.Booking, int64, error)
	Availability(ctx context.Context, propertyID string, checkIn, checkOut time.Time) ([]model.RoomAvailability, error)
}

// Dependencies wires the booking and lifecycle services.
type Dependencies struct {
	Bookings   repository.BookingRepository
	Rooms      repository.RoomRepository
	Guards     repository.RoomGuardRepository
	Calculator *AvailabilityCalculator
	Locks      *TempLockManager
	Discounts  DiscountService
	Notifier   notify.Notifier
	Validator  *validator.BookingValidator
	Metrics    *metrics.Metrics
	Config     *config.Config
}

type bookingService struct {
	Dependencies
	now func() time.Time
}

func NewBookingService(deps Dependencies) BookingService {
	return newBookingService(deps)
}

func newBookingService(deps Dependencies) *bookingService {
	return &bookingService{
		Dependencies: deps,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Create reserves the requested rooms for the stay. The capacity check and
// the insert run in one transaction that first bumps a guard document per
// room, so two requests racing for the same room cannot both commit against
// the same snapshot.
func (s *bookingService) Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
	log := s.Config.Log

	if err := s.sanitize(req); err != nil {
		s.Metrics.BookingRejected(metrics.ReasonValidation)
		return nil, err
	}

	now := s.now()
	if err := s.Validator.ValidateRequest(req, now); err != nil {
		log.Warn("Booking validation failed", "user_id", req.UserID, "error", err)
		s.Metrics.BookingRejected(metrics.ReasonValidation)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"errors": err})
	}

	rooms, err := s.resolveRooms(ctx, req)
	if err != nil {
		s.reject(err)
		return nil, err
	}

	remaining, err := s.Calculator.RemainingCapacity(ctx, rooms, req.CheckIn, req.CheckOut)
	if err != nil {
		err = translate(err, "Booking", "", "Failed to compute availability")
		s.reject(err)
		return nil, err
	}
	if err := checkCapacity(req.Rooms, remaining); err != nil {
		log.Info("Booking rejected for capacity", "user_id", req.UserID, "error", err)
		s.reject(err)
		return nil, err
	}

	held := s.holdLastUnits(ctx, req, remaining)

	booking := s.buildBooking(req, rooms, now)
	s.applyDiscount(ctx, booking, req.DiscountCode)

	roomIDs := booking.RoomIDs()
	err = s.reserve(ctx, booking, rooms, req.Rooms)
	if err != nil {
		s.Locks.drop(context.WithoutCancel(ctx), held)
		err = translate(err, "Booking", "", "Failed to create booking")
		log.Error("Failed to create booking", "user_id", req.UserID, "rooms", roomIDs, "error", err)
		s.reject(err)
		return nil, err
	}

	s.Metrics.BookingCreated()
	log.Info("Booking created successfully",
		"booking_id", booking.ID,
		"property_id", booking.PropertyID,
		"user_id", booking.UserID,
		"check_in", booking.CheckIn,
		"check_out", booking.CheckOut,
		"final_price", booking.FinalPrice,
	)

	s.notifyCreated(ctx, booking)
	return booking, nil
}

// reserve runs the guarded capacity check and insert. A transaction the
// driver gave up on after repeated write conflicts is run again, so a caller
// that lost the race ends with the capacity outcome rather than a storage
// error.
func (s *bookingService) reserve(ctx context.Context, booking *model.Booking, rooms []*model.Room, lines []model.RoomRequest) error {
	roomIDs := booking.RoomIDs()

	for attempt := 1; ; attempt++ {
		err := s.Bookings.ExecuteTransaction(ctx, func(txCtx context.Context) error {
			// The driver may run this more than once; start each attempt clean.
			booking.ID = ""

			if err := s.Guards.Bump(txCtx, roomIDs); err != nil {
				return err
			}

			remaining, err := s.Calculator.RemainingCapacity(txCtx, rooms, booking.CheckIn, booking.CheckOut)
			if err != nil {
				return err
			}
			if err := checkCapacity(lines, remaining); err != nil {
				return err
			}

			return s.Bookings.Create(txCtx, booking)
		})
		if err == nil || !apperrors.IsRetryable(err) || attempt == maxReserveAttempts {
			return err
		}

		s.Config.Log.Warn("Reservation transaction conflicted, retrying",
			"user_id", booking.UserID,
			"rooms", roomIDs,
			"attempt", attempt,
			"error", err,
		)
		if !sleepCtx(ctx, time.Duration(attempt)*reserveBackoff) {
			return err
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.Bookings.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "Booking", id, "Failed to retrieve booking")
	}
	return booking, nil
}

func (s *bookingService) ListByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	if userID == "" {
		return nil, 0, apperrors.InvalidInput("User ID cannot be empty")
	}
	return s.list(ctx, repository.BookingFilter{UserID: userID}, limit, offset)
}

func (s *bookingService) ListByProperty(ctx context.Context, propertyID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	if propertyID == "" {
		return nil, 0, apperrors.InvalidInput("Property ID cannot be empty")
	}
	return s.list(ctx, repository.BookingFilter{PropertyID: propertyID}, limit, offset)
}

func (s *bookingService) list(ctx context.Context, filter repository.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error) {
	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.Bookings.Count(ctx, filter)
		if errCount != nil {
			s.Config.Log.Error("Failed to count bookings", "filter", filter, "error", errCount)
			errCount = translate(errCount, "Booking", "", "Failed to count bookings")
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.Bookings.Find(ctx, filter, limit, offset)
		if errFind != nil {
			s.Config.Log.Error("Failed to list bookings", "filter", filter, "error", errFind)
			errFind = translate(errFind, "Booking", "", "Failed to retrieve bookings")
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

// Availability lists the bookable rooms of a property with the units still
// free for the window.
func (s *bookingService) Availability(ctx context.Context, propertyID string, checkIn, checkOut time.Time) ([]model.RoomAvailability, error) {
	if propertyID == "" {
		return nil, apperrors.InvalidInput("Property ID cannot be empty")
	}
	if !checkOut.After(checkIn) {
		return nil, apperrors.Validation("check_out must be after check_in", nil)
	}

	all, err := s.Rooms.FindByProperty(ctx, propertyID)
	if err != nil {
		return nil, translate(err, "Property", propertyID, "Failed to load rooms")
	}

	rooms := make([]*model.Room, 0, len(all))
	for _, room := range all {
		if room.IsAvailable {
			rooms = append(rooms, room)
		}
	}

	remaining, err := s.Calculator.RemainingCapacity(ctx, rooms, checkIn, checkOut)
	if err != nil {
		return nil, translate(err, "Property", propertyID, "Failed to compute availability")
	}

	result := make([]model.RoomAvailability, 0, len(rooms))
	for _, room := range rooms {
		result = append(result, model.RoomAvailability{
			RoomID:    room.ID,
			Name:      room.Name,
			Price:     room.Price,
			TotalRoom: room.TotalRoom,
			Remaining: remaining[room.ID],
		})
	}
	return result, nil
}

// --- Helpers ---

func (s *bookingService) sanitize(req *model.BookingRequest) error {
	contact, err := sanitizer.SanitizeContact(sanitizer.Contact{
		Name:  req.GuestName,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		return apperrors.Validation("Phone number is invalid", map[string]any{"phone": req.Phone})
	}

	req.GuestName = contact.Name
	req.Email = contact.Email
	req.Phone = contact.Phone
	req.DiscountCode = sanitizer.NormalizeCode(req.DiscountCode)
	req.Description = sanitizer.NormalizeDescription(req.Description)
	return nil
}

// resolveRooms loads every requested room and checks they exist, belong to
// one property and are open for booking.
func (s *bookingService) resolveRooms(ctx context.Context, req *model.BookingRequest) ([]*model.Room, error) {
	ids := make([]string, 0, len(req.Rooms))
	for _, line := range req.Rooms {
		ids = append(ids, line.RoomID)
	}

	found, err := s.Rooms.FindByIDs(ctx, ids)
	if err != nil {
		return nil, translate(err, "Room", "", "Failed to load rooms")
	}

	byID := make(map[string]*model.Room, len(found))
	for _, room := range found {
		byID[room.ID] = room
	}

	rooms := make([]*model.Room, 0, len(ids))
	for _, id := range ids {
		room, ok := byID[id]
		if !ok {
			return nil, apperrors.NotFoundWithID("Room", id)
		}
		rooms = append(rooms, room)
	}

	propertyID := rooms[0].PropertyID
	for _, room := range rooms[1:] {
		if room.PropertyID != propertyID {
			return nil, apperrors.Validation("All rooms must belong to the same property", map[string]any{
				"room_id":     room.ID,
				"property_id": room.PropertyID,
				"expected":    propertyID,
			})
		}
	}
	if req.PropertyID != "" && req.PropertyID != propertyID {
		return nil, apperrors.Validation("Rooms do not belong to the requested property", map[string]any{
			"property_id": req.PropertyID,
		})
	}

	for _, room := range rooms {
		if !room.IsAvailable {
			return nil, apperrors.Validation(fmt.Sprintf("Room %s is not available for booking", room.ID), map[string]any{
				"room_id": room.ID,
			})
		}
	}

	return rooms, nil
}

func checkCapacity(lines []model.RoomRequest, remaining map[string]int) error {
	for _, line := range lines {
		if left := remaining[line.RoomID]; line.Quantity > left {
			return apperrors.Capacity(line.RoomID, line.Quantity, left)
		}
	}
	return nil
}

// holdLastUnits places a temp lock on every requested room whose last unit
// this request takes. Failures are logged; holds never gate the booking.
func (s *bookingService) holdLastUnits(ctx context.Context, req *model.BookingRequest, remaining map[string]int) []*model.TempLock {
	var held []*model.TempLock
	for _, line := range req.Rooms {
		if remaining[line.RoomID] != 1 {
			continue
		}
		lock, err := s.Locks.hold(ctx, line.RoomID, req.UserID)
		if err != nil {
			s.Config.Log.Warn("Failed to place temp lock", "room_id", line.RoomID, "user_id", req.UserID, "error", err)
			continue
		}
		held = append(held, lock)
	}
	return held
}

func (s *bookingService) buildBooking(req *model.BookingRequest, rooms []*model.Room, now time.Time) *model.Booking {
	nights := stayNights(req.CheckIn, req.CheckOut)

	lines := make([]model.BookedRoom, 0, len(req.Rooms))
	total := 0.0
	for i, line := range req.Rooms {
		room := rooms[i]
		lines = append(lines, model.BookedRoom{
			RoomID:   room.ID,
			Quantity: line.Quantity,
			Name:     room.Name,
			Price:    room.Price,
		})
		total += room.Price * float64(line.Quantity) * float64(nights)
	}
	total = roundPrice(total)

	return &model.Booking{
		PropertyID:        rooms[0].PropertyID,
		Rooms:             lines,
		UserID:            req.UserID,
		GuestName:         req.GuestName,
		Email:             req.Email,
		Phone:             req.Phone,
		Description:       req.Description,
		CheckIn:           req.CheckIn,
		CheckOut:          req.CheckOut,
		Status:            model.BookingStatusPending,
		TotalPrice:        total,
		FinalPrice:        total,
		PaymentMethod:     req.PaymentMethod,
		ConfirmationToken: uuid.NewString(),
		CreatedAt:         now,
	}
}

// applyDiscount prices the booking with code when the code is usable. An
// unusable code is ignored; the booking goes ahead at full price.
func (s *bookingService) applyDiscount(ctx context.Context, booking *model.Booking, code string) {
	if code == "" {
		return
	}

	discount, err := s.Discounts.FindActive(ctx, code, booking.PropertyID)
	if err != nil {
		if apperrors.IsRetryable(err) {
			s.Config.Log.Warn("Discount lookup failed, booking at full price", "code", code, "error", err)
		} else {
			s.Config.Log.Info("Discount ignored", "code", code, "reason", err)
		}
		return
	}

	pct := math.Min(discount.Percentage, 100)
	booking.DiscountID = discount.ID
	booking.DiscountCode = discount.Code
	booking.DiscountPercentage = pct
	booking.FinalPrice = roundPrice(booking.TotalPrice * (1 - pct/100))
}

func (s *bookingService) reject(err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		s.Metrics.BookingRejected(metrics.ReasonTransient)
		return
	}

	switch appErr.Code {
	case apperrors.CodeCapacity:
		s.Metrics.BookingRejected(metrics.ReasonCapacity)
	case apperrors.CodeNotFound:
		s.Metrics.BookingRejected(metrics.ReasonNotFound)
	case apperrors.CodeIntegrity:
		s.Metrics.BookingRejected(metrics.ReasonIntegrity)
	case apperrors.CodeValidation, apperrors.CodeInvalidInput:
		s.Metrics.BookingRejected(metrics.ReasonValidation)
	default:
		s.Metrics.BookingRejected(metrics.ReasonTransient)
	}
}

func (s *bookingService) notifyCreated(ctx context.Context, booking *model.Booking) {
	confirmURL := fmt.Sprintf("%s/api/v1/bookings/confirm/%s?token=%s",
		s.Config.PublicBaseURL, url.PathEscape(booking.ID), url.QueryEscape(booking.ConfirmationToken))

	send(ctx, s.Notifier, s.Config, booking, notify.SubjectBookingCreated, notify.BookingCreatedTemplate, confirmURL)
}

// stayNights counts started 24h periods, so a late checkout is a full night.
func stayNights(checkIn, checkOut time.Time) int {
	return int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
}

func roundPrice(v float64) float64 {
	return math.Round(v*100) / 100
}
