package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestConstructors_CodeAndStatus(t *testing.T) {
	cause := errors.New("socket closed")

	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"not found", NotFoundWithID("Booking", "b1"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("bad dates", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("bad id"), CodeInvalidInput, http.StatusBadRequest},
		{"conflict", Conflict("already confirmed"), CodeConflict, http.StatusConflict},
		{"capacity", Capacity("r1", 2, 1), CodeCapacity, http.StatusConflict},
		{"integrity", Integrity("negative remaining", nil), CodeIntegrity, http.StatusInternalServerError},
		{"transient", Transient("insert failed", cause), CodeTransient, http.StatusServiceUnavailable},
		{"internal", Internal("boom", cause), CodeInternal, http.StatusInternalServerError},
		{"unauthorized", Unauthorized("missing token"), CodeUnauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden("role"), CodeForbidden, http.StatusForbidden},
		{"timeout", Timeout("slow"), CodeTimeout, http.StatusGatewayTimeout},
		{"unavailable", Unavailable("Mongo"), CodeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", tt.err.Code, tt.wantCode)
			}
			if tt.err.StatusCode() != tt.wantStatus {
				t.Errorf("status = %d, want %d", tt.err.StatusCode(), tt.wantStatus)
			}
		})
	}
}

func TestCapacity_Details(t *testing.T) {
	err := Capacity("room-x", 3, 1)

	if err.Details["room_id"] != "room-x" {
		t.Errorf("room_id = %v, want room-x", err.Details["room_id"])
	}
	if err.Details["requested"] != 3 {
		t.Errorf("requested = %v, want 3", err.Details["requested"])
	}
	if err.Details["remaining"] != 1 {
		t.Errorf("remaining = %v, want 1", err.Details["remaining"])
	}
	if !strings.Contains(err.Message, "room-x") {
		t.Errorf("message should name the room, got %q", err.Message)
	}
}

func TestAppError_Error(t *testing.T) {
	plain := Conflict("already confirmed")
	if got := plain.Error(); got != "CONFLICT: already confirmed" {
		t.Errorf("Error() = %q", got)
	}

	wrapped := Transient("insert failed", errors.New("write conflict"))
	if got := wrapped.Error(); got != "TRANSIENT_ERROR: insert failed (caused by: write conflict)" {
		t.Errorf("Error() = %q", got)
	}
	if errors.Unwrap(wrapped).Error() != "write conflict" {
		t.Errorf("Unwrap() should expose the cause")
	}
}

func TestAsAppError_Wrapped(t *testing.T) {
	appErr := NotFound("Room")
	wrapped := fmt.Errorf("resolve rooms: %w", appErr)

	if !IsAppError(wrapped) {
		t.Fatalf("IsAppError should see through wrapping")
	}
	if AsAppError(wrapped) != appErr {
		t.Errorf("AsAppError should return the wrapped AppError")
	}

	regular := errors.New("regular")
	got := AsAppError(regular)
	if got.Code != CodeInternal || got.Err != regular {
		t.Errorf("AsAppError(regular) = %+v, want internal wrapping the cause", got)
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("tx: %w", Capacity("r", 1, 0))

	if !HasCode(err, CodeCapacity) {
		t.Errorf("HasCode should match capacity")
	}
	if HasCode(err, CodeConflict) {
		t.Errorf("HasCode should not match conflict")
	}
	if HasCode(errors.New("x"), CodeCapacity) {
		t.Errorf("HasCode should be false for plain errors")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"transient", Transient("db", nil), true},
		{"wrapped transient", fmt.Errorf("sweep: %w", Transient("db", nil)), true},
		{"timeout", Timeout("slow"), true},
		{"unavailable", Unavailable("Mongo"), true},
		{"capacity", Capacity("r", 1, 0), false},
		{"integrity", Integrity("negative", nil), false},
		{"validation", Validation("bad", nil), false},
		{"plain", errors.New("plain"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_ToJSON(t *testing.T) {
	body := string(Capacity("r1", 2, 0).ToJSON())

	for _, want := range []string{`"code":"CAPACITY_EXCEEDED"`, `"room_id":"r1"`, `"remaining":0`} {
		if !strings.Contains(body, want) {
			t.Errorf("ToJSON() = %s, missing %s", body, want)
		}
	}
}
