package service

import (
	"errors"
	bookingserrors "staybook/internal/bookings/errors"
	apperrors "staybook/pkg/errors"
)

// translate maps repository errors onto AppErrors. Errors that are already
// AppErrors pass through; anything unrecognised is an infrastructure failure
// and is reported as transient so callers may retry.
func translate(err error, resource, id, operation string) error {
	if err == nil {
		return nil
	}
	if apperrors.IsAppError(err) {
		return err
	}

	switch {
	case errors.Is(err, bookingserrors.ErrNotFound),
		errors.Is(err, bookingserrors.ErrRoomNotFound),
		errors.Is(err, bookingserrors.ErrDiscountNotFound):
		if id == "" {
			return apperrors.NotFound(resource)
		}
		return apperrors.NotFoundWithID(resource, id)
	case errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid " + resource + " ID format")
	case errors.Is(err, bookingserrors.ErrDuplicateUsage):
		return apperrors.Conflict("Discount code already used")
	case errors.Is(err, bookingserrors.ErrStatusChanged):
		return apperrors.Conflict(resource + " was modified concurrently")
	}

	return apperrors.Transient(operation, err)
}
