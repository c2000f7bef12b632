package model

import (
	"time"
)

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// BookedRoom is one line of a booking. Name and Price are copied from the
// room when the booking is made.
type BookedRoom struct {
	RoomID   string  `json:"room_id" bson:"room"`
	Quantity int     `json:"quantity" bson:"quantity"`
	Name     string  `json:"name" bson:"name"`
	Price    float64 `json:"price" bson:"price"`
}

type Booking struct {
	ID                 string       `json:"id,omitempty" bson:"_id,omitempty"`
	PropertyID         string       `json:"property_id" bson:"property_id"`
	Rooms              []BookedRoom `json:"rooms" bson:"rooms"`
	UserID             string       `json:"user_id" bson:"user_id"`
	GuestName          string       `json:"guest_name" bson:"guest_name"`
	Email              string       `json:"email" bson:"email"`
	Phone              string       `json:"phone,omitempty" bson:"phone,omitempty"`
	Description        string       `json:"description,omitempty" bson:"description,omitempty"`
	CheckIn            time.Time    `json:"check_in" bson:"check_in"`
	CheckOut           time.Time    `json:"check_out" bson:"check_out"`
	Status             string       `json:"status" bson:"status"`
	TotalPrice         float64      `json:"total_price" bson:"total_price"`
	DiscountID         string       `json:"discount_id,omitempty" bson:"discount_id,omitempty"`
	DiscountCode       string       `json:"discount_code,omitempty" bson:"discount_code,omitempty"`
	DiscountPercentage float64      `json:"discount_percentage,omitempty" bson:"discount_percentage,omitempty"`
	FinalPrice         float64      `json:"final_price" bson:"final_price"`
	PaymentMethod      string       `json:"payment_method" bson:"payment_method"`
	IsPaid             bool         `json:"is_paid" bson:"is_paid"`
	ConfirmationToken  string       `json:"-" bson:"confirmation_token,omitempty"`
	CreatedAt          time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

func (b *Booking) RoomIDs() []string {
	ids := make([]string, 0, len(b.Rooms))
	for _, line := range b.Rooms {
		ids = append(ids, line.RoomID)
	}
	return ids
}

// QuantityFor sums the units of roomID held by this booking.
func (b *Booking) QuantityFor(roomID string) int {
	total := 0
	for _, line := range b.Rooms {
		if line.RoomID == roomID {
			total += line.Quantity
		}
	}
	return total
}

// Overlaps applies the half-open interval test: a stay ending on the day
// another starts does not overlap it.
func (b *Booking) Overlaps(checkIn, checkOut time.Time) bool {
	return b.CheckIn.Before(checkOut) && b.CheckOut.After(checkIn)
}

// HoldsInventory reports whether the booking counts against room capacity.
func (b *Booking) HoldsInventory() bool {
	return b.Status != BookingStatusCancelled
}

type RoomRequest struct {
	RoomID   string `json:"room_id" validate:"required,mongodb"`
	Quantity int    `json:"quantity" validate:"required,min=1,max=1000"`
}

type BookingRequest struct {
	PropertyID    string        `json:"property_id,omitempty" validate:"omitempty,mongodb"`
	Rooms         []RoomRequest `json:"rooms" validate:"required,min=1,max=50,dive"`
	UserID        string        `json:"user_id" validate:"required,max=64"`
	GuestName     string        `json:"guest_name" validate:"required,min=2,max=100"`
	Email         string        `json:"email" validate:"required,email"`
	Phone         string        `json:"phone,omitempty" validate:"omitempty,e164"`
	Description   string        `json:"description,omitempty" validate:"omitempty,max=1000"`
	CheckIn       time.Time     `json:"check_in" validate:"required"`
	CheckOut      time.Time     `json:"check_out" validate:"required"`
	DiscountCode  string        `json:"discount_code,omitempty" validate:"omitempty,max=64"`
	PaymentMethod string        `json:"payment_method" validate:"required,max=32"`
}

type StatusUpdate struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed cancelled"`
}
