package model

import "time"

type Discount struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty"`
	Code        string    `json:"code" bson:"code" validate:"required,max=64"`
	Percentage  float64   `json:"percentage" bson:"percentage" validate:"gt=0,lte=100"`
	PropertyID  string    `json:"property_id,omitempty" bson:"property_id,omitempty" validate:"omitempty,mongodb"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	ExpireDate  time.Time `json:"expire_date" bson:"expire_date"`
	IsActive    bool      `json:"is_active" bson:"is_active"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// Expired reports whether the discount can no longer be redeemed at now.
// A zero ExpireDate never expires.
func (d *Discount) Expired(now time.Time) bool {
	return !d.ExpireDate.IsZero() && now.After(d.ExpireDate)
}

// AppliesTo reports whether the discount may be used for propertyID. An
// unscoped discount applies everywhere.
func (d *Discount) AppliesTo(propertyID string) bool {
	return d.PropertyID == "" || d.PropertyID == propertyID
}

type DiscountUsage struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty"`
	UserID       string    `json:"user_id" bson:"user_id"`
	DiscountCode string    `json:"discount_code" bson:"discount_code"`
	UsedAt       time.Time `json:"used_at" bson:"used_at"`
}

type DiscountRequest struct {
	Code       string `json:"code" validate:"required,max=64"`
	PropertyID string `json:"property_id,omitempty" validate:"omitempty,mongodb"`
	UserID     string `json:"user_id,omitempty" validate:"omitempty,max=64"`
}
