package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ecofinds/internal/models"
	"ecofinds/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// ProductService is the entity store for listings. Every operation applies
// the fallback policy: Local mode goes straight to the local store, Remote
// mode attempts the backend and silently substitutes the local equivalent on
// transport failure.
type ProductService struct {
	session  *SessionService
	remote   repositories.ProductRepository
	local    repositories.ProductRepository
	state    *State
	validate *validator.Validate
}

// NewProductService creates a new ProductService. remote may be nil when the
// client runs in Local mode.
func NewProductService(session *SessionService, remote, local repositories.ProductRepository, state *State) *ProductService {
	return &ProductService{
		session:  session,
		remote:   remote,
		local:    local,
		state:    state,
		validate: validator.New(),
	}
}

// listWith runs a read against the mode's repository, falling back to the
// local store on a remote transport failure.
func (s *ProductService) listWith(what string, op func(repositories.ProductRepository) ([]models.Product, error)) ([]models.Product, Origin, error) {
	if s.session.Mode() == ModeLocal || s.remote == nil {
		products, err := op(s.local)
		return products, OriginLocal, err
	}
	products, err := op(s.remote)
	if err == nil {
		return products, OriginRemote, nil
	}
	if !shouldFallback(err) {
		return nil, OriginRemote, err
	}
	log.Printf("Remote %s failed, falling back to local store: %v", what, err)
	products, lerr := op(s.local)
	return products, OriginLocal, lerr
}

// mutateWith runs a write the same way.
func (s *ProductService) mutateWith(what string, op func(repositories.ProductRepository) error) (Origin, error) {
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

// List retrieves the catalog, newest first. A completely empty collection
// yields the sample catalog (first run / demo default).
func (s *ProductService) List(ctx context.Context) ([]models.Product, Origin, error) {
	products, origin, err := s.listWith("product list", func(r repositories.ProductRepository) ([]models.Product, error) {
		return r.List(ctx)
	})
	if err != nil {
		return nil, origin, err
	}
	if len(products) == 0 {
		products = models.SampleCatalog()
	}
	s.state.SetProducts(products)
	return products, origin, nil
}

// ListFeatured retrieves the newest listings up to limit.
func (s *ProductService) ListFeatured(ctx context.Context, limit int) ([]models.Product, Origin, error) {
	products, origin, err := s.listWith("featured product list", func(r repositories.ProductRepository) ([]models.Product, error) {
		return r.ListFeatured(ctx, limit)
	})
	if err != nil {
		return nil, origin, err
	}
	if len(products) == 0 {
		products = models.SampleCatalog()
		if limit > 0 && len(products) > limit {
			products = products[:limit]
		}
	}
	return products, origin, nil
}

// ListMine retrieves the current user's listings.
func (s *ProductService) ListMine(ctx context.Context) ([]models.Product, Origin, error) {
	user, err := s.session.RequireUser()
	if err != nil {
		return nil, OriginLocal, err
	}
	products, origin, err := s.listWith("own product list", func(r repositories.ProductRepository) ([]models.Product, error) {
		return r.ListByOwner(ctx, user.ID)
	})
	if err != nil {
		return nil, origin, err
	}
	s.state.SetMyListings(products)
	return products, origin, nil
}

// FilterByCategory retrieves listings whose category matches exactly.
func (s *ProductService) FilterByCategory(ctx context.Context, category string) ([]models.Product, Origin, error) {
	products, origin, err := s.listWith("category filter", func(r repositories.ProductRepository) ([]models.Product, error) {
		return r.ListByCategory(ctx, category)
	})
	if err != nil {
		return nil, origin, err
	}
	s.state.SetProducts(products)
	return products, origin, nil
}

// Search filters the loaded catalog by a case-insensitive substring match
// against title, description or category; any one match qualifies.
func (s *ProductService) Search(ctx context.Context, term string) ([]models.Product, Origin, error) {
	products, origin, err := s.List(ctx)
	if err != nil {
		return nil, origin, err
	}
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return products, origin, nil
	}
	matched := make([]models.Product, 0)
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Title), term) ||
			strings.Contains(strings.ToLower(p.Description), term) ||
			strings.Contains(strings.ToLower(p.Category), term) {
			matched = append(matched, p)
		}
	}
	s.state.SetProducts(matched)
	return matched, origin, nil
}

// GetByID retrieves a single product.
func (s *ProductService) GetByID(ctx context.Context, id string) (*models.Product, Origin, error) {
	products, origin, err := s.listWith("product lookup", func(r repositories.ProductRepository) ([]models.Product, error) {
		p, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return []models.Product{*p}, nil
	})
	if err != nil {
		return nil, origin, err
	}
	return &products[0], origin, nil
}

// Create lists a new product owned by the current user, denormalizing the
// seller name onto it.
func (s *ProductService) Create(ctx context.Context, product *models.Product) (Origin, error) {
	user, err := s.session.RequireUser()
	if err != nil {
		return OriginLocal, err
	}
	product.ID = ""
	product.OwnerID = user.ID
	product.Seller = &models.SellerRef{Username: user.DisplayName}
	if err := s.validate.Struct(product); err != nil {
		return OriginLocal, fmt.Errorf("invalid product: %w", err)
	}
	return s.mutateWith("product create", func(r repositories.ProductRepository) error {
		return r.Create(ctx, product)
	})
}

// Update edits an owned product; a product owned by someone else is rejected
// in both modes. A new updated_at is always stamped.
func (s *ProductService) Update(ctx context.Context, product *models.Product) (Origin, error) {
	user, err := s.session.RequireUser()
	if err != nil {
		return OriginLocal, err
	}
	if err := s.validate.StructPartial(product, "Title", "Description", "Price", "Category", "ImageURL"); err != nil {
		return OriginLocal, fmt.Errorf("invalid product: %w", err)
	}
	return s.mutateWith("product update", func(r repositories.ProductRepository) error {
		return r.Update(ctx, product, user.ID)
	})
}

// Delete removes an owned product.
func (s *ProductService) Delete(ctx context.Context, id string) (Origin, error) {
	user, err := s.session.RequireUser()
	if err != nil {
		return OriginLocal, err
	}
	return s.mutateWith("product delete", func(r repositories.ProductRepository) error {
		return r.Delete(ctx, id, user.ID)
	})
}
