package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid ID format")

	ErrRoomNotFound = errors.New("room not found")

	ErrDiscountNotFound = errors.New("discount not found")

	ErrDuplicateUsage = errors.New("discount already used by this user")

	// ErrStatusChanged is returned by a conditional status update whose
	// expected current status no longer matches the stored booking.
	ErrStatusChanged = errors.New("booking status changed concurrently")
)
