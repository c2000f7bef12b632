package service

import (
	"context"
	"errors"
	"staybook/internal/bookings/repository"
	"staybook/internal/bookings/validator"
	apperrors "staybook/pkg/errors"
	"staybook/pkg/logger"
	"staybook/pkg/metrics"
	"staybook/pkg/model"
	"time"
)

type TempLockService interface {
	Lock(ctx context.Context, req *model.TempLockRequest) (*model.TempLock, error)
	IsLocked(ctx context.Context, roomID string) (bool, error)
	Release(ctx context.Context, roomID string) error
}

// TempLockManager places and clears advisory holds on rooms. A hold never
// blocks anything: Lock always writes a new record, even when another user
// already holds the room.
type TempLockManager struct {
	repo       repository.TempLockRepository
	validator  *validator.BookingValidator
	defaultTTL time.Duration
	metrics    *metrics.Metrics
	log        *logger.Logger
	now        func() time.Time
}

func NewTempLockManager(
	repo repository.TempLockRepository,
	validator *validator.BookingValidator,
	defaultTTL time.Duration,
	m *metrics.Metrics,
	log *logger.Logger,
) *TempLockManager {
	return &TempLockManager{
		repo:       repo,
		validator:  validator,
		defaultTTL: defaultTTL,
		metrics:    m,
		log:        log.WithComponent("temp-locks"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (m *TempLockManager) Lock(ctx context.Context, req *model.TempLockRequest) (*model.TempLock, error) {
	if err := m.validator.ValidateTempLock(req); err != nil {
		return nil, apperrors.Validation("Temp lock validation failed", map[string]any{"errors": err})
	}

	ttl := m.defaultTTL
	if req.TTLMinutes > 0 {
		ttl = time.Duration(req.TTLMinutes) * time.Minute
	}

	lock, err := m.place(ctx, req.RoomID, req.UserID, ttl)
	if err != nil {
		return nil, translate(err, "TempLock", req.RoomID, "Failed to create temp lock")
	}
	return lock, nil
}

func (m *TempLockManager) IsLocked(ctx context.Context, roomID string) (bool, error) {
	holder, err := m.Holder(ctx, roomID)
	if err != nil {
		return false, translate(err, "TempLock", roomID, "Failed to check temp lock")
	}
	return holder != nil, nil
}

// Holder returns the active hold on roomID that expires last, or nil.
func (m *TempLockManager) Holder(ctx context.Context, roomID string) (*model.TempLock, error) {
	return m.repo.FindActive(ctx, roomID, m.now())
}

func (m *TempLockManager) Release(ctx context.Context, roomID string) error {
	if roomID == "" {
		return apperrors.InvalidInput("Room ID cannot be empty")
	}
	n, err := m.repo.DeleteByRoom(ctx, roomID)
	if err != nil {
		return translate(err, "TempLock", roomID, "Failed to release temp locks")
	}
	m.log.Debug("Temp locks released", "room_id", roomID, "count", n)
	return nil
}

func (m *TempLockManager) place(ctx context.Context, roomID, userID string, ttl time.Duration) (*model.TempLock, error) {
	now := m.now()
	lock := &model.TempLock{
		RoomID:    roomID,
		UserID:    userID,
		LockedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	if err := m.repo.Create(ctx, lock); err != nil {
		return nil, err
	}
	return lock, nil
}

// hold records a hold for userID on the last unit of roomID, noting
// contention when someone else already holds it.
func (m *TempLockManager) hold(ctx context.Context, roomID, userID string) (*model.TempLock, error) {
	holder, err := m.Holder(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if holder != nil && holder.UserID != userID {
		m.metrics.LockContended()
		m.log.Warn("Last unit already held by another user",
			"room_id", roomID,
			"holder_user_id", holder.UserID,
			"user_id", userID,
			"holder_expires_at", holder.ExpiresAt,
		)
	}
	return m.place(ctx, roomID, userID, m.defaultTTL)
}

// drop removes holds placed by a reservation attempt that did not commit.
func (m *TempLockManager) drop(ctx context.Context, locks []*model.TempLock) {
	for _, lock := range locks {
		if err := m.repo.Delete(ctx, lock); err != nil {
			m.log.Warn("Failed to drop temp lock", "room_id", lock.RoomID, "lock_id", lock.ID, "error", err)
		}
	}
}

// releaseRooms clears every hold on roomIDs, attempting all of them.
func (m *TempLockManager) releaseRooms(ctx context.Context, roomIDs []string) error {
	var errs []error
	for _, roomID := range roomIDs {
		if _, err := m.repo.DeleteByRoom(ctx, roomID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
