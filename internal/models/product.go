package models

import "time"

// Product represents a second-hand listing in the marketplace.
type Product struct {
	ID          string     `json:"id" validate:"omitempty"`
	Title       string     `json:"title" validate:"required,min=3,max=100"`
	Description string     `json:"description" validate:"omitempty,max=500"`
	Price       float64    `json:"price" validate:"gte=0"`
	Category    string     `json:"category" validate:"required,max=50"`
	ImageURL    string     `json:"image_url,omitempty" validate:"omitempty,url"`
	OwnerID     string     `json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	// Seller is joined from the owner's profile at read time. The json key
	// matches the backend's embed (products.profiles).
	Seller *SellerRef `json:"profiles,omitempty"`
}

// SellerUsername returns the denormalized seller name, or a placeholder when
// no profile was joined.
func (p *Product) SellerUsername() string {
	if p.Seller != nil && p.Seller.Username != "" {
		return p.Seller.Username
	}
	return "EcoFinder"
}
