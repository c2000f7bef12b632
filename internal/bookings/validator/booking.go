package validator

import (
	"errors"
	"fmt"
	"reflect"
	"staybook/pkg/logger"
	"staybook/pkg/model"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New()

	// Report json field names so clients can map errors back to their payload.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	log.Debug("Booking validator initialized")

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

// ValidateRequest checks a sanitized booking request. now is the instant the
// stay may not start before.
func (v *BookingValidator) ValidateRequest(req *model.BookingRequest, now time.Time) error {
	if err := v.structErrors(req); err != nil {
		return err
	}

	if !req.CheckOut.After(req.CheckIn) {
		return ValidationErrors{{
			Field:   "check_out",
			Message: "check_out must be after check_in",
		}}
	}

	if req.CheckIn.Before(now) {
		return ValidationErrors{{
			Field:   "check_in",
			Message: "check_in cannot be in the past",
		}}
	}

	seen := make(map[string]struct{}, len(req.Rooms))
	for i, line := range req.Rooms {
		if _, dup := seen[line.RoomID]; dup {
			return ValidationErrors{{
				Field:   fmt.Sprintf("rooms[%d].room_id", i),
				Message: fmt.Sprintf("room %s is listed more than once", line.RoomID),
			}}
		}
		seen[line.RoomID] = struct{}{}
	}

	return nil
}

func (v *BookingValidator) ValidateStatusUpdate(update *model.StatusUpdate) error {
	return v.structErrors(update)
}

func (v *BookingValidator) ValidateTempLock(req *model.TempLockRequest) error {
	return v.structErrors(req)
}

func (v *BookingValidator) ValidateDiscount(req *model.DiscountRequest) error {
	return v.structErrors(req)
}

func (v *BookingValidator) structErrors(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "e164":
			message = fmt.Sprintf("%s must be in E.164 format (e.g., +84912345678)", err.Field())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   fieldPath(err),
			Message: message,
		})
	}

	return validationErrors
}

// fieldPath strips the struct name from the namespace:
// "BookingRequest.rooms[0].quantity" becomes "rooms[0].quantity".
func fieldPath(err validator.FieldError) string {
	ns := err.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return err.Field()
}
