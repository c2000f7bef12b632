package kafka

import (
	"context"
	"errors"
	"fmt"
	"testing"

	apperrors "staybook/pkg/errors"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeUnknown},
		{"explicit transient", NewTransientError("db down", nil), ErrorTypeTransient},
		{"explicit permanent", NewPermanentError("bad json", nil), ErrorTypePermanent},
		{"wrapped business", fmt.Errorf("handle: %w", NewBusinessError("cancelled", nil)), ErrorTypeBusiness},
		{"deadline", context.DeadlineExceeded, ErrorTypeTransient},
		{"app transient", apperrors.Transient("write failed", nil), ErrorTypeTransient},
		{"app conflict", apperrors.Conflict("already cancelled"), ErrorTypeBusiness},
		{"app not found", apperrors.NotFound("Booking"), ErrorTypeBusiness},
		{"app integrity", apperrors.Integrity("negative", nil), ErrorTypePermanent},
		{"network text", errors.New("dial tcp: Connection Refused"), ErrorTypeTransient},
		{"unknown", errors.New("something odd"), ErrorTypePermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldRetry(t *testing.T) {
	transient := NewTransientError("timeout", nil)

	if !ShouldRetry(transient, 0, 3) {
		t.Error("transient error under the limit should retry")
	}
	if ShouldRetry(transient, 3, 3) {
		t.Error("should not retry once the limit is reached")
	}
	if ShouldRetry(NewPermanentError("bad", nil), 0, 3) {
		t.Error("permanent errors never retry")
	}
	if ShouldRetry(nil, 0, 3) {
		t.Error("nil never retries")
	}
}
