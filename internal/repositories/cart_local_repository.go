package repositories

import (
	"context"

	"ecofinds/internal/models"
	"ecofinds/pkg/kvstore"

	"github.com/google/uuid"
)

// LocalCartRepository is the key-value fallback implementation of
// CartRepository. Each user's cart is one JSON document, items carrying their
// product snapshot inline (the local store cannot join at read time).
type LocalCartRepository struct {
	kv *kvstore.Store
}

// NewLocalCartRepository creates a new instance of LocalCartRepository.
func NewLocalCartRepository(kv *kvstore.Store) *LocalCartRepository {
	return &LocalCartRepository{
		kv: kv,
	}
}

func (r *LocalCartRepository) load(userID string) ([]models.CartItem, error) {
	var items []models.CartItem
	if _, err := getJSON(r.kv, cartKey(userID), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *LocalCartRepository) save(userID string, items []models.CartItem) error {
	return setJSON(r.kv, cartKey(userID), items)
}

// ListForUser retrieves the user's cart.
func (r *LocalCartRepository) ListForUser(ctx context.Context, userID string) ([]models.CartItem, error) {
	return r.load(userID)
}

// Create appends the item to the user's cart.
func (r *LocalCartRepository) Create(ctx context.Context, item *models.CartItem) error {
	items, err := r.load(item.UserID)
	if err != nil {
		return err
	}
	if item.ID == "" {
		item.ID = "cart-" + uuid.New().String()
	}
	items = append(items, *item)
	return r.save(item.UserID, items)
}

// UpdateQuantity sets the quantity on the user's own cart item.
func (r *LocalCartRepository) UpdateQuantity(ctx context.Context, id, userID string, quantity int) error {
	items, err := r.load(userID)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ID == id {
			items[i].Quantity = quantity
			return r.save(userID, items)
		}
	}
	return models.ErrNotAuthorized
}

// Delete removes the user's own cart item.
func (r *LocalCartRepository) Delete(ctx context.Context, id, userID string) error {
	items, err := r.load(userID)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ID == id {
			items = append(items[:i], items[i+1:]...)
			return r.save(userID, items)
		}
	}
	return models.ErrNotAuthorized
}

// ClearForUser empties the user's cart.
func (r *LocalCartRepository) ClearForUser(ctx context.Context, userID string) error {
	return r.save(userID, []models.CartItem{})
}
