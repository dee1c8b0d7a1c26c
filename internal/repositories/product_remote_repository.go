package repositories

import (
	"context"
	"fmt"
	"time"

	"ecofinds/internal/models"
	"ecofinds/pkg/restdb"
)

// productSelect joins the seller's username onto every row.
const productSelect = "*, profiles:user_id (username)"

// RemoteProductRepository is the backend implementation of ProductRepository.
type RemoteProductRepository struct {
	client *restdb.Client
}

// NewRemoteProductRepository creates a new instance of RemoteProductRepository.
func NewRemoteProductRepository(client *restdb.Client) *RemoteProductRepository {
	return &RemoteProductRepository{
		client: client,
	}
}

// List retrieves the full catalog, newest first.
func (r *RemoteProductRepository) List(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.client.From("products").
		Select(productSelect).
		Order("created_at", false).
		Get(ctx, &products)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// ListFeatured retrieves the newest listings up to limit.
func (r *RemoteProductRepository) ListFeatured(ctx context.Context, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.client.From("products").
		Select(productSelect).
		Order("created_at", false).
		Limit(limit).
		Get(ctx, &products)
	if err != nil {
		return nil, fmt.Errorf("failed to list featured products: %w", err)
	}
	return products, nil
}

// ListByOwner retrieves one user's listings, newest first.
func (r *RemoteProductRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Product, error) {
	var products []models.Product
	err := r.client.From("products").
		Select(productSelect).
		Eq("user_id", ownerID).
		Order("created_at", false).
		Get(ctx, &products)
	if err != nil {
		return nil, fmt.Errorf("failed to list products for owner %s: %w", ownerID, err)
	}
	return products, nil
}

// ListByCategory retrieves listings matching the category exactly.
func (r *RemoteProductRepository) ListByCategory(ctx context.Context, category string) ([]models.Product, error) {
	var products []models.Product
	err := r.client.From("products").
		Select(productSelect).
		Eq("category", category).
		Order("created_at", false).
		Get(ctx, &products)
	if err != nil {
		return nil, fmt.Errorf("failed to list products in category %s: %w", category, err)
	}
	return products, nil
}

// GetByID retrieves a single product.
func (r *RemoteProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var products []models.Product
	err := r.client.From("products").
		Select(productSelect).
		Eq("id", id).
		Get(ctx, &products)
	if err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	if len(products) == 0 {
		return nil, models.ErrNotFound
	}
	return &products[0], nil
}

// Create inserts the product. Generated columns (id, created_at) come back
// on the returned row; the joined seller ref set by the caller is preserved.
func (r *RemoteProductRepository) Create(ctx context.Context, product *models.Product) error {
	row := map[string]interface{}{
		"title":       product.Title,
		"description": product.Description,
		"price":       product.Price,
		"category":    product.Category,
		"image_url":   product.ImageURL,
		"user_id":     product.OwnerID,
	}
	var created []models.Product
	if err := r.client.From("products").Insert(ctx, row, &created); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	if len(created) > 0 {
		seller := product.Seller
		*product = created[0]
		product.Seller = seller
	}
	return nil
}

// Update patches the product, constrained by both id and owner so the backend
// itself enforces ownership. Zero matched rows means the filter rejected it.
func (r *RemoteProductRepository) Update(ctx context.Context, product *models.Product, ownerID string) error {
	now := time.Now().UTC()
	patch := map[string]interface{}{
		"title":       product.Title,
		"description": product.Description,
		"price":       product.Price,
		"category":    product.Category,
		"image_url":   product.ImageURL,
		"updated_at":  now.Format(time.RFC3339),
	}
	rows, err := r.client.From("products").
		Eq("id", product.ID).
		Eq("user_id", ownerID).
		Update(ctx, patch)
	if err != nil {
		return fmt.Errorf("failed to update product %s: %w", product.ID, err)
	}
	if rows == 0 {
		return models.ErrNotAuthorized
	}
	product.UpdatedAt = &now
	return nil
}

// Delete removes the product, owner-constrained like Update.
func (r *RemoteProductRepository) Delete(ctx context.Context, id, ownerID string) error {
	rows, err := r.client.From("products").
		Eq("id", id).
		Eq("user_id", ownerID).
		Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	if rows == 0 {
		return models.ErrNotAuthorized
	}
	return nil
}
