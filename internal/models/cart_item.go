package models

// CartItem is a single product in a user's cart. At most one exists per
// (user, product) pair; adding an already-carted product is rejected rather
// than incrementing the quantity.
type CartItem struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
	// Product is the snapshot joined at load time. Totals are computed from
	// this embedded price, not a fresh fetch, so a stale snapshot can show a
	// stale price until the next reload. Accepted consistency lag.
	Product *Product `json:"products,omitempty"`
}

// LineTotal is quantity times the snapshot price.
func (ci *CartItem) LineTotal() float64 {
	if ci.Product == nil {
		return 0
	}
	return ci.Product.Price * float64(ci.Quantity)
}
