package repositories

import (
	"context"
	"fmt"
	"time"

	"ecofinds/internal/models"
	"ecofinds/pkg/kvstore"

	"github.com/google/uuid"
)

// LocalPurchaseRepository is the key-value fallback implementation of
// PurchaseRepository. Purchases are stored per buyer, plus a seller-keyed
// index written at the same time so total-sales is answerable from a plain
// key-value store without scanning every buyer's document.
type LocalPurchaseRepository struct {
	kv *kvstore.Store
}

// NewLocalPurchaseRepository creates a new instance of LocalPurchaseRepository.
func NewLocalPurchaseRepository(kv *kvstore.Store) *LocalPurchaseRepository {
	return &LocalPurchaseRepository{
		kv: kv,
	}
}

func (r *LocalPurchaseRepository) loadKey(key string) ([]models.Purchase, error) {
	var purchases []models.Purchase
	if _, err := getJSON(r.kv, key, &purchases); err != nil {
		return nil, err
	}
	return purchases, nil
}

// ListForBuyer retrieves the user's purchases, newest first (prepend order).
func (r *LocalPurchaseRepository) ListForBuyer(ctx context.Context, userID string) ([]models.Purchase, error) {
	return r.loadKey(purchasesKey(userID))
}

// ListForSeller retrieves the user's sales from the seller-keyed index.
func (r *LocalPurchaseRepository) ListForSeller(ctx context.Context, userID string) ([]models.Purchase, error) {
	return r.loadKey(salesKey(userID))
}

// Create prepends the purchase to the buyer's list and to the seller's index.
func (r *LocalPurchaseRepository) Create(ctx context.Context, purchase *models.Purchase) error {
	if purchase.ID == "" {
		purchase.ID = fmt.Sprintf("purchase-%d-%s", time.Now().UnixMilli(), uuid.New().String()[:8])
	}
	if purchase.CreatedAt.IsZero() {
		purchase.CreatedAt = time.Now().UTC()
	}

	bought, err := r.loadKey(purchasesKey(purchase.BuyerID))
	if err != nil {
		return err
	}
	bought = append([]models.Purchase{*purchase}, bought...)
	if err := setJSON(r.kv, purchasesKey(purchase.BuyerID), bought); err != nil {
		return err
	}

	sold, err := r.loadKey(salesKey(purchase.SellerID))
	if err != nil {
		return err
	}
	sold = append([]models.Purchase{*purchase}, sold...)
	return setJSON(r.kv, salesKey(purchase.SellerID), sold)
}
