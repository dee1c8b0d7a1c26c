package repositories

import (
	"context"

	"ecofinds/internal/models"
)

// PurchaseRepository defines the interface for purchase records. Purchases
// are append-only: created at checkout, never updated or deleted.
type PurchaseRepository interface {
	ListForBuyer(ctx context.Context, userID string) ([]models.Purchase, error)
	ListForSeller(ctx context.Context, userID string) ([]models.Purchase, error)
	Create(ctx context.Context, purchase *models.Purchase) error
}

// ProfileRepository defines the interface for seller profiles. One profile
// per user, created-or-replaced as a whole on update.
type ProfileRepository interface {
	Get(ctx context.Context, userID string) (*models.Profile, error)
	Upsert(ctx context.Context, profile *models.Profile) error
}
