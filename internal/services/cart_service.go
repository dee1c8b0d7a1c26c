package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"ecofinds/internal/models"
	"ecofinds/internal/repositories"
	"ecofinds/pkg/rabbitmq"
)

// EventPublisher emits domain events after state changes. The rabbitmq
// client satisfies this; a nil publisher disables events.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// CartService manages the current user's cart and turns it into purchases
// on checkout.
type CartService struct {
	session   *SessionService
	remote    repositories.CartRepository
	local     repositories.CartRepository
	products  *ProductService
	purchases *PurchaseService
	state     *State
	events    EventPublisher
}

// NewCartService creates a new CartService. remote and events may be nil.
func NewCartService(session *SessionService, remote, local repositories.CartRepository, products *ProductService, purchases *PurchaseService, state *State, events EventPublisher) *CartService {
	return &CartService{
		session:   session,
		remote:    remote,
		local:     local,
		products:  products,
		purchases: purchases,
		state:     state,
		events:    events,
	}
}

func (s *CartService) mutateWith(what string, op func(repositories.CartRepository) error) (Origin, error) {
	if s.session.Mode() == ModeLocal || s.remote == nil {
		return OriginLocal, op(s.local)
	}
	err := op(s.remote)
	if err == nil {
		return OriginRemote, nil
	}
	if !shouldFallback(err) {
		return OriginRemote, err
	}
	log.Printf("Remote %s failed, falling back to local store: %v", what, err)
	return OriginLocal, op(s.local)
}

// Items retrieves the current user's cart items with their product
// snapshots and refreshes the cached cart.
func (s *CartService) Items(ctx context.Context) ([]models.CartItem, Origin, error) {
	user, err := s.session.RequireUser()
	if err != nil {
		return nil, OriginLocal, err
	}
	var items []models.CartItem
	origin, err := s.mutateWith("cart load", func(r repositories.CartRepository) error {
		var lerr error
		items, lerr = r.ListForUser(ctx, user.ID)
		return lerr
	})
	if err != nil {
		return nil, origin, err
	}
	s.state.SetCart(items)
	return items, origin, nil
}

// Add puts a product in the cart with quantity 1. A product already in the
// cart is reported with models.ErrAlreadyInCart rather than a second row.
func (s *CartService) Add(ctx context.Context, productID string) (*models.CartItem, Origin, error) {
	user, err := s.session.RequireUser()
	if err != nil {
		return nil, OriginLocal, err
	}
	items, origin, err := s.Items(ctx)
	if err != nil {
		return nil, origin, err
	}
	for i := range items {
		if items[i].ProductID == productID {
			return nil, origin, models.ErrAlreadyInCart
		}
	}
	product, origin, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, origin, err
	}
	item := models.CartItem{
		UserID:    user.ID,
		ProductID: productID,
		Quantity:  1,
		Product:   product,
	}
	origin, err = s.mutateWith("cart add", func(r repositories.CartRepository) error {
		return r.Create(ctx, &item)
	})
	if err != nil {
		return nil, origin, err
	}
	s.state.SetCart(append(items, item))
	return &item, origin, nil
}

// SetQuantity changes the quantity of one cart item. A quantity of zero or
// less removes the item instead.
func (s *CartService) SetQuantity(ctx context.Context, itemID string, quantity int) (Origin, error) {
	user, err := s.session.RequireUser()
	if err != nil {
		return OriginLocal, err
	}
	if quantity <= 0 {
		return s.Remove(ctx, itemID)
	}
	origin, err := s.mutateWith("cart update", func(r repositories.CartRepository) error {
		return r.UpdateQuantity(ctx, itemID, user.ID, quantity)
	})
	if err != nil {
		return origin, err
	}
	cart := s.state.Cart()
	for i := range cart {
		if cart[i].ID == itemID {
			cart[i].Quantity = quantity
		}
	}
	s.state.SetCart(cart)
	return origin, nil
}

// Remove deletes one item from the current user's cart.
func (s *CartService) Remove(ctx context.Context, itemID string) (Origin, error) {
	user, err := s.session.RequireUser()
	if err != nil {
		return OriginLocal, err
	}
	origin, err := s.mutateWith("cart remove", func(r repositories.CartRepository) error {
		return r.Delete(ctx, itemID, user.ID)
	})
	if err != nil {
		return origin, err
	}
	cart := s.state.Cart()
	kept := cart[:0]
	for i := range cart {
		if cart[i].ID != itemID {
			kept = append(kept, cart[i])
		}
	}
	s.state.SetCart(kept)
	return origin, nil
}

// Total sums the cached cart using the price snapshots embedded in each
// item, so a seller repricing a product does not move an open cart.
func (s *CartService) Total() float64 {
	var total float64
	for _, item := range s.state.Cart() {
		total += item.LineTotal()
	}
	return total
}

// purchaseEvent is the payload published after a successful checkout.
type purchaseEvent struct {
	PurchaseID string    `json:"purchase_id"`
	BuyerID    string    `json:"buyer_id"`
	SellerID   string    `json:"seller_id"`
	ProductID  string    `json:"product_id"`
	Quantity   int       `json:"quantity"`
	Total      float64   `json:"total"`
	CreatedAt  time.Time `json:"created_at"`
}

// Checkout converts every cart item into a purchase record and empties the
// cart. Items are processed one at a time and a failure on one item does
// not stop the rest; the cart is cleared regardless so a partial checkout
// never leaves paid-for items behind.
func (s *CartService) Checkout(ctx context.Context) ([]models.Purchase, Origin, error) {
	user, err := s.session.RequireUser()
	if err != nil {
		return nil, OriginLocal, err
	}
	items, origin, err := s.Items(ctx)
	if err != nil {
		return nil, origin, err
	}
	if len(items) == 0 {
		return nil, origin, nil
	}

	var recorded []models.Purchase
	for _, item := range items {
		if item.Product == nil {
			continue
		}
		purchase := models.Purchase{
			BuyerID:   user.ID,
			SellerID:  item.Product.OwnerID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Product.Price,
			Product:   item.Product,
		}
		if _, err := s.purchases.record(ctx, &purchase); err != nil {
			log.Printf("Checkout: could not record purchase of %s: %v", item.ProductID, err)
			continue
		}
		recorded = append(recorded, purchase)
		if _, err := s.mutateWith("cart item delete", func(r repositories.CartRepository) error {
			return r.Delete(ctx, item.ID, user.ID)
		}); err != nil {
			log.Printf("Checkout: could not remove cart item %s: %v", item.ID, err)
		}
		s.publishPurchase(&purchase)
	}

	if origin, err := s.mutateWith("cart clear", func(r repositories.CartRepository) error {
		return r.ClearForUser(ctx, user.ID)
	}); err != nil {
		log.Printf("Checkout: could not clear cart (%s): %v", origin, err)
	}
	s.state.SetCart(nil)
	return recorded, origin, nil
}

func (s *CartService) publishPurchase(purchase *models.Purchase) {
	if s.events == nil {
		return
	}
	body, err := json.Marshal(purchaseEvent{
		PurchaseID: purchase.ID,
		BuyerID:    purchase.BuyerID,
		SellerID:   purchase.SellerID,
		ProductID:  purchase.ProductID,
		Quantity:   purchase.Quantity,
		Total:      purchase.Total(),
		CreatedAt:  purchase.CreatedAt,
	})
	if err != nil {
		log.Printf("Failed to encode purchase event: %v", err)
		return
	}
	if err := s.events.Publish(rabbitmq.Exchange, "purchase.completed", body); err != nil {
		log.Printf("Failed to publish purchase event: %v", err)
	}
}
