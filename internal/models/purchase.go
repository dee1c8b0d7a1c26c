package models

import "time"

// Purchase is an immutable record created at checkout. Price, quantity and
// seller are copied by value at purchase time; later product mutations or
// deletions do not alter past purchases.
type Purchase struct {
	ID        string    `json:"id"`
	BuyerID   string    `json:"user_id"`
	SellerID  string    `json:"seller_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"created_at"`
	// Product keeps the snapshot so a purchase still renders after the live
	// product is deleted.
	Product *Product `json:"products,omitempty"`
}

// Total is quantity times the price captured at purchase time.
func (p *Purchase) Total() float64 {
	return p.Price * float64(p.Quantity)
}
