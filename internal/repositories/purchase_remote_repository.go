package repositories

import (
	"context"
	"fmt"

	"ecofinds/internal/models"
	"ecofinds/pkg/restdb"
)

// purchaseSelect embeds the historical product snapshot on every purchase.
const purchaseSelect = "*, products (*, profiles:user_id (username))"

// RemotePurchaseRepository is the backend implementation of PurchaseRepository.
type RemotePurchaseRepository struct {
	client *restdb.Client
}

// NewRemotePurchaseRepository creates a new instance of RemotePurchaseRepository.
func NewRemotePurchaseRepository(client *restdb.Client) *RemotePurchaseRepository {
	return &RemotePurchaseRepository{
		client: client,
	}
}

// ListForBuyer retrieves the user's purchases, newest first.
func (r *RemotePurchaseRepository) ListForBuyer(ctx context.Context, userID string) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := r.client.From("purchases").
		Select(purchaseSelect).
		Eq("user_id", userID).
		Order("created_at", false).
		Get(ctx, &purchases)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases for user %s: %w", userID, err)
	}
	return purchases, nil
}

// ListForSeller retrieves sales where the user was the seller, newest first.
func (r *RemotePurchaseRepository) ListForSeller(ctx context.Context, userID string) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := r.client.From("purchases").
		Select(purchaseSelect).
		Eq("seller_id", userID).
		Order("created_at", false).
		Get(ctx, &purchases)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales for user %s: %w", userID, err)
	}
	return purchases, nil
}

// Create inserts the immutable purchase record. Only the value snapshot goes
// over the wire; the embedded product stays client-side.
func (r *RemotePurchaseRepository) Create(ctx context.Context, purchase *models.Purchase) error {
	row := map[string]interface{}{
		"user_id":    purchase.BuyerID,
		"product_id": purchase.ProductID,
		"quantity":   purchase.Quantity,
		"price":      purchase.Price,
		"seller_id":  purchase.SellerID,
	}
	var created []models.Purchase
	if err := r.client.From("purchases").Insert(ctx, row, &created); err != nil {
		return fmt.Errorf("failed to record purchase: %w", err)
	}
	if len(created) > 0 {
		purchase.ID = created[0].ID
		purchase.CreatedAt = created[0].CreatedAt
	}
	return nil
}
