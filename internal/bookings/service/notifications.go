package service

import (
	"context"
	"staybook/pkg/config"
	"staybook/pkg/locale"
	"staybook/pkg/model"
	"staybook/pkg/notify"
	"time"
)

// send delivers a booking email best-effort: failures are logged and never
// returned.
func send(ctx context.Context, n notify.Notifier, cfg *config.Config, b *model.Booking, subject, tmpl, confirmURL string) {
	if n == nil || b.Email == "" {
		return
	}

	rooms := make([]notify.BookingEmailRoom, 0, len(b.Rooms))
	for _, line := range b.Rooms {
		rooms = append(rooms, notify.BookingEmailRoom{Name: line.Name, Quantity: line.Quantity, Price: line.Price})
	}

	// Dates go out in the guest's zone when the phone number tells it.
	loc := locale.LocationForPhone(b.Phone)

	err := n.Send(context.WithoutCancel(ctx), notify.Notification{
		Recipient: b.Email,
		Subject:   subject,
		Template:  tmpl,
		Data: notify.BookingEmail{
			BookingID:  b.ID,
			GuestName:  b.GuestName,
			CheckIn:    b.CheckIn.In(loc).Format(time.DateOnly),
			CheckOut:   b.CheckOut.In(loc).Format(time.DateOnly),
			Rooms:      rooms,
			FinalPrice: b.FinalPrice,
			ConfirmURL: confirmURL,
		},
	})
	if err != nil {
		cfg.Log.Warn("Failed to send booking notification",
			"booking_id", b.ID,
			"subject", subject,
			"error", err,
		)
	}
}
