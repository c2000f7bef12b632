package handler

import (
	"context"
	"staybook/internal/bookings/service"
	"staybook/pkg/kafka"
	"staybook/pkg/logger"
)

const PaymentStatusSuccess = "success"

// PaymentOutcome is the payload the payment provider publishes once an
// order settles. OrderID is the booking id.
type PaymentOutcome struct {
	OrderID string  `json:"order_id"`
	Status  string  `json:"status"`
	Amount  float64 `json:"amount"`
}

type PaymentEventHandler struct {
	lifecycle service.LifecycleService
	log       *logger.Logger
}

func NewPaymentEventHandler(lifecycle service.LifecycleService, log *logger.Logger) *PaymentEventHandler {
	return &PaymentEventHandler{
		lifecycle: lifecycle,
		log:       log.WithComponent("payment-events"),
	}
}

// Handle is a kafka.MessageHandler. Successful payments mark the booking paid
// and confirm it; every other outcome is only logged.
func (h *PaymentEventHandler) Handle(ctx context.Context, msg kafka.Message) error {
	var outcome PaymentOutcome
	if err := msg.DecodeValue(&outcome); err != nil {
		return kafka.NewPermanentError("undecodable payment outcome", err).
			WithDetail("offset", msg.Offset)
	}
	if outcome.OrderID == "" {
		return kafka.NewPermanentError("payment outcome has no order_id", kafka.ErrInvalidMessage).
			WithDetail("offset", msg.Offset)
	}

	if outcome.Status != PaymentStatusSuccess {
		h.log.Info("Payment not successful, booking unchanged",
			"booking_id", outcome.OrderID,
			"status", outcome.Status,
			"amount", outcome.Amount,
		)
		return nil
	}

	booking, err := h.lifecycle.MarkPaid(ctx, outcome.OrderID)
	if err != nil {
		h.log.Warn("Failed to apply payment", "booking_id", outcome.OrderID, "error", err)
		return err
	}

	h.log.Info("Payment applied",
		"booking_id", booking.ID,
		"status", booking.Status,
		"amount", outcome.Amount,
	)
	return nil
}
