//go:build integration

package testutil

import (
	"staybook/pkg/model"
	"time"
)

const (
	PropertyA = "65a1b2c3d4e5f6a7b8c9d0a1"
	PropertyB = "65a1b2c3d4e5f6a7b8c9d0a2"
)

type RoomBuilder struct {
	room model.Room
}

func NewRoomBuilder() *RoomBuilder {
	return &RoomBuilder{
		room: model.Room{
			PropertyID:  PropertyA,
			Name:        "Deluxe Double",
			Price:       100,
			TotalRoom:   2,
			IsAvailable: true,
		},
	}
}

func (b *RoomBuilder) WithProperty(propertyID string) *RoomBuilder {
	b.room.PropertyID = propertyID
	return b
}

func (b *RoomBuilder) WithName(name string) *RoomBuilder {
	b.room.Name = name
	return b
}

func (b *RoomBuilder) WithPrice(price float64) *RoomBuilder {
	b.room.Price = price
	return b
}

func (b *RoomBuilder) WithTotal(total int) *RoomBuilder {
	b.room.TotalRoom = total
	return b
}

func (b *RoomBuilder) Unavailable() *RoomBuilder {
	b.room.IsAvailable = false
	return b
}

func (b *RoomBuilder) Build() model.Room {
	return b.room
}

type BookingRequestBuilder struct {
	req model.BookingRequest
}

// NewBookingRequestBuilder starts a two-night stay a month out.
func NewBookingRequestBuilder() *BookingRequestBuilder {
	checkIn := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 1, 0).Add(14 * time.Hour)
	return &BookingRequestBuilder{
		req: model.BookingRequest{
			UserID:        "guest-1",
			GuestName:     "Lan Pham",
			Email:         "lan@example.com",
			Phone:         "+84912345678",
			CheckIn:       checkIn,
			CheckOut:      checkIn.Add(48 * time.Hour),
			PaymentMethod: "card",
		},
	}
}

func (b *BookingRequestBuilder) WithRoom(roomID string, quantity int) *BookingRequestBuilder {
	b.req.Rooms = append(b.req.Rooms, model.RoomRequest{RoomID: roomID, Quantity: quantity})
	return b
}

func (b *BookingRequestBuilder) WithUser(userID string) *BookingRequestBuilder {
	b.req.UserID = userID
	return b
}

func (b *BookingRequestBuilder) WithStay(checkIn, checkOut time.Time) *BookingRequestBuilder {
	b.req.CheckIn = checkIn
	b.req.CheckOut = checkOut
	return b
}

func (b *BookingRequestBuilder) WithDiscount(code string) *BookingRequestBuilder {
	b.req.DiscountCode = code
	return b
}

func (b *BookingRequestBuilder) Build() *model.BookingRequest {
	req := b.req
	req.Rooms = append([]model.RoomRequest(nil), b.req.Rooms...)
	return &req
}
