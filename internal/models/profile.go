package models

import "time"

// Profile is the public-facing seller profile. Exactly one per user, keyed by
// the user id, and upserted as a whole on every update.
type Profile struct {
	ID        string     `json:"id"`
	Username  string     `json:"username" validate:"required,min=3,max=100"`
	Bio       string     `json:"bio,omitempty" validate:"omitempty,max=500"`
	Email     string     `json:"email,omitempty" validate:"omitempty,email"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// SellerRef is the denormalized seller username joined onto products at read
// time. The json key matches the backend's embedded-resource name.
type SellerRef struct {
	Username string `json:"username"`
}
