package repositories

import (
	"context"
	"sort"
	"time"

	"ecofinds/internal/models"
	"ecofinds/pkg/kvstore"

	"github.com/google/uuid"
)

// LocalProductRepository is the key-value fallback implementation of
// ProductRepository. The whole catalog lives as one JSON document; ownership
// checks happen in application logic so Local mode rejects exactly what the
// backend's owner filter would.
type LocalProductRepository struct {
	kv *kvstore.Store
}

// NewLocalProductRepository creates a new instance of LocalProductRepository.
func NewLocalProductRepository(kv *kvstore.Store) *LocalProductRepository {
	return &LocalProductRepository{
		kv: kv,
	}
}

// load returns the persisted catalog and whether the key existed. A missing
// key means first run: callers decide whether to show or persist the samples.
func (r *LocalProductRepository) load() ([]models.Product, bool, error) {
	var products []models.Product
	ok, err := getJSON(r.kv, productsKey(), &products)
	if err != nil {
		return nil, false, err
	}
	return products, ok, nil
}

func (r *LocalProductRepository) save(products []models.Product) error {
	return setJSON(r.kv, productsKey(), products)
}

func sortByCreatedDesc(products []models.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
}

// List retrieves the full catalog, newest first. An absent or empty catalog
// yields the sample catalog (not persisted until the first write).
func (r *LocalProductRepository) List(ctx context.Context) ([]models.Product, error) {
	products, ok, err := r.load()
	if err != nil {
		return nil, err
	}
	if !ok || len(products) == 0 {
		return models.SampleCatalog(), nil
	}
	sortByCreatedDesc(products)
	return products, nil
}

// ListFeatured retrieves the newest listings up to limit.
func (r *LocalProductRepository) ListFeatured(ctx context.Context, limit int) ([]models.Product, error) {
	products, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(products) > limit {
		products = products[:limit]
	}
	return products, nil
}

// ListByOwner retrieves one user's listings, newest first.
func (r *LocalProductRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Product, error) {
	products, _, err := r.load()
	if err != nil {
		return nil, err
	}
	owned := make([]models.Product, 0)
	for _, p := range products {
		if p.OwnerID == ownerID {
			owned = append(owned, p)
		}
	}
	sortByCreatedDesc(owned)
	return owned, nil
}

// ListByCategory retrieves listings matching the category exactly.
func (r *LocalProductRepository) ListByCategory(ctx context.Context, category string) ([]models.Product, error) {
	products, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]models.Product, 0)
	for _, p := range products {
		if p.Category == category {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// GetByID retrieves a single product, searching the samples too when the
// catalog has never been written.
func (r *LocalProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	products, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}
	return nil, models.ErrNotFound
}

// Create prepends the product to the catalog. On the very first write the
// sample catalog is copied into the persisted collection so it survives.
func (r *LocalProductRepository) Create(ctx context.Context, product *models.Product) error {
	products, ok, err := r.load()
	if err != nil {
		return err
	}
	if !ok {
		products = models.SampleCatalog()
	}
	if product.ID == "" {
		product.ID = "product-" + uuid.New().String()
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}
	products = append([]models.Product{*product}, products...)
	return r.save(products)
}

// Update replaces the mutable fields of the owned product and stamps a new
// updated_at. A product owned by someone else is rejected, matching the
// backend's owner-constrained filter.
func (r *LocalProductRepository) Update(ctx context.Context, product *models.Product, ownerID string) error {
	products, _, err := r.load()
	if err != nil {
		return err
	}
	for i := range products {
		if products[i].ID != product.ID {
			continue
		}
		if products[i].OwnerID != ownerID {
			return models.ErrNotAuthorized
		}
		now := time.Now().UTC()
		products[i].Title = product.Title
		products[i].Description = product.Description
		products[i].Price = product.Price
		products[i].Category = product.Category
		products[i].ImageURL = product.ImageURL
		products[i].UpdatedAt = &now
		product.UpdatedAt = &now
		product.OwnerID = products[i].OwnerID
		product.CreatedAt = products[i].CreatedAt
		product.Seller = products[i].Seller
		return r.save(products)
	}
	return models.ErrNotAuthorized
}

// Delete removes the owned product from the catalog.
func (r *LocalProductRepository) Delete(ctx context.Context, id, ownerID string) error {
	products, _, err := r.load()
	if err != nil {
		return err
	}
	for i := range products {
		if products[i].ID != id {
			continue
		}
		if products[i].OwnerID != ownerID {
			return models.ErrNotAuthorized
		}
		products = append(products[:i], products[i+1:]...)
		return r.save(products)
	}
	return models.ErrNotAuthorized
}
