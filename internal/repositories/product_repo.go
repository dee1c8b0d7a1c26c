package repositories

import (
	"context"

	"ecofinds/internal/models"
)

// ProductRepository defines the interface for product data access. Both the
// Remote (backend) and Local (key-value fallback) implementations satisfy it,
// with identical ownership semantics: update and delete only touch rows owned
// by ownerID and report models.ErrNotAuthorized otherwise.
type ProductRepository interface {
	List(ctx context.Context) ([]models.Product, error)
	ListFeatured(ctx context.Context, limit int) ([]models.Product, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Product, error)
	ListByCategory(ctx context.Context, category string) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product, ownerID string) error
	Delete(ctx context.Context, id, ownerID string) error
}
