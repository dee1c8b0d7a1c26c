package repositories

import (
	"context"

	"ecofinds/internal/models"
)

// CartRepository defines the interface for cart item data access. All
// operations are scoped to one user's cart.
type CartRepository interface {
	ListForUser(ctx context.Context, userID string) ([]models.CartItem, error)
	Create(ctx context.Context, item *models.CartItem) error
	UpdateQuantity(ctx context.Context, id, userID string, quantity int) error
	Delete(ctx context.Context, id, userID string) error
	ClearForUser(ctx context.Context, userID string) error
}
