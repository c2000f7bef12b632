package model

import "time"

// Room is a bookable room type within one property. TotalRoom is the number
// of physical units of that type and never changes as bookings come and go.
type Room struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	PropertyID  string    `json:"property_id" bson:"property_id" validate:"required,mongodb"`
	Name        string    `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Price       float64   `json:"price" bson:"price" validate:"gte=0"`
	TotalRoom   int       `json:"total_room" bson:"total_room" validate:"gte=0"`
	IsAvailable bool      `json:"is_available" bson:"is_available"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// RoomAvailability is a room together with the units still free for a
// given window.
type RoomAvailability struct {
	RoomID    string  `json:"room_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	TotalRoom int     `json:"total_room"`
	Remaining int     `json:"remaining"`
}
