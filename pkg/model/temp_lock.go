package model

import "time"

// TempLock is a short-lived hold on the last unit of a room. It is a hint for
// contended inventory and never decides whether a booking is accepted.
type TempLock struct {
	ID        string    `json:"id" bson:"_id"`
	RoomID    string    `json:"room_id" bson:"room_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	LockedAt  time.Time `json:"locked_at" bson:"locked_at"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at"`
}

func (l *TempLock) Active(now time.Time) bool {
	return now.Before(l.ExpiresAt)
}

type TempLockRequest struct {
	RoomID     string `json:"room_id" validate:"required,mongodb"`
	UserID     string `json:"user_id" validate:"required,max=64"`
	TTLMinutes int    `json:"ttl_minutes,omitempty" validate:"omitempty,min=1,max=60"`
}
