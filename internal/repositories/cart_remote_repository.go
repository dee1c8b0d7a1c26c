package repositories

import (
	"context"
	"fmt"

	"ecofinds/internal/models"
	"ecofinds/pkg/restdb"
)

// cartSelect embeds the product snapshot and its seller on every cart row.
const cartSelect = "*, products (*, profiles:user_id (username))"

// RemoteCartRepository is the backend implementation of CartRepository.
type RemoteCartRepository struct {
	client *restdb.Client
}

// NewRemoteCartRepository creates a new instance of RemoteCartRepository.
func NewRemoteCartRepository(client *restdb.Client) *RemoteCartRepository {
	return &RemoteCartRepository{
		client: client,
	}
}

// ListForUser retrieves the user's cart with product snapshots joined in.
func (r *RemoteCartRepository) ListForUser(ctx context.Context, userID string) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.client.From("cart_items").
		Select(cartSelect).
		Eq("user_id", userID).
		Get(ctx, &items)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items for user %s: %w", userID, err)
	}
	return items, nil
}

// Create inserts the cart item. The embedded product set by the caller is
// preserved; the backend only stores the reference columns.
func (r *RemoteCartRepository) Create(ctx context.Context, item *models.CartItem) error {
	row := map[string]interface{}{
		"user_id":    item.UserID,
		"product_id": item.ProductID,
		"quantity":   item.Quantity,
	}
	var created []models.CartItem
	if err := r.client.From("cart_items").Insert(ctx, row, &created); err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	if len(created) > 0 {
		item.ID = created[0].ID
	}
	return nil
}

// UpdateQuantity sets the quantity on the user's own cart item.
func (r *RemoteCartRepository) UpdateQuantity(ctx context.Context, id, userID string, quantity int) error {
	rows, err := r.client.From("cart_items").
		Eq("id", id).
		Eq("user_id", userID).
		Update(ctx, map[string]interface{}{"quantity": quantity})
	if err != nil {
		return fmt.Errorf("failed to update quantity for cart item %s: %w", id, err)
	}
	if rows == 0 {
		return models.ErrNotAuthorized
	}
	return nil
}

// Delete removes the user's own cart item.
func (r *RemoteCartRepository) Delete(ctx context.Context, id, userID string) error {
	rows, err := r.client.From("cart_items").
		Eq("id", id).
		Eq("user_id", userID).
		Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to remove cart item %s: %w", id, err)
	}
	if rows == 0 {
		return models.ErrNotAuthorized
	}
	return nil
}

// ClearForUser removes every cart item belonging to the user. Clearing an
// already-empty cart is fine.
func (r *RemoteCartRepository) ClearForUser(ctx context.Context, userID string) error {
	_, err := r.client.From("cart_items").
		Eq("user_id", userID).
		Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear cart for user %s: %w", userID, err)
	}
	return nil
}
