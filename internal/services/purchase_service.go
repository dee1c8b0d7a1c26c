package services

import (
	"context"
	"log"

	"ecofinds/internal/models"
	"ecofinds/internal/repositories"
)

// PurchaseService is the entity store for purchase history. Purchases are
// created only by checkout and never change afterwards.
type PurchaseService struct {
	session *SessionService
	remote  repositories.PurchaseRepository
	local   repositories.PurchaseRepository
	state   *State
}

// NewPurchaseService creates a new PurchaseService. remote may be nil when
// the client runs in Local mode.
func NewPurchaseService(session *SessionService, remote, local repositories.PurchaseRepository, state *State) *PurchaseService {
	return &PurchaseService{
		session: session,
		remote:  remote,
		local:   local,
		state:   state,
	}
}

func (s *PurchaseService) listWith(what string, op func(repositories.PurchaseRepository) ([]models.Purchase, error)) ([]models.Purchase, Origin, error) {
	if s.session.Mode() == ModeLocal || s.remote == nil {
		purchases, err := op(s.local)
		return purchases, OriginLocal, err
	}
	purchases, err := op(s.remote)
	if err == nil {
		return purchases, OriginRemote, nil
	}
	if !shouldFallback(err) {
		return nil, OriginRemote, err
	}
	log.Printf("Remote %s failed, falling back to local store: %v", what, err)
	purchases, lerr := op(s.local)
	return purchases, OriginLocal, lerr
}

// ListForUser retrieves the current user's purchases, newest first.
func (s *PurchaseService) ListForUser(ctx context.Context) ([]models.Purchase, Origin, error) {
	user, err := s.session.RequireUser()
	if err != nil {
		return nil, OriginLocal, err
	}
	purchases, origin, err := s.listWith("purchase list", func(r repositories.PurchaseRepository) ([]models.Purchase, error) {
		return r.ListForBuyer(ctx, user.ID)
	})
	if err != nil {
		return nil, origin, err
	}
	s.state.SetPurchases(purchases)
	return purchases, origin, nil
}

// ListSales retrieves purchases where the current user was the seller.
func (s *PurchaseService) ListSales(ctx context.Context) ([]models.Purchase, Origin, error) {
	user, err := s.session.RequireUser()
	if err != nil {
		return nil, OriginLocal, err
	}
	return s.listWith("sales list", func(r repositories.PurchaseRepository) ([]models.Purchase, error) {
		return r.ListForSeller(ctx, user.ID)
	})
}

// record persists one purchase with the usual fallback, used by checkout. A
// remote transport failure lands the record in the local store instead.
func (s *PurchaseService) record(ctx context.Context, purchase *models.Purchase) (Origin, error) {
	if s.session.Mode() == ModeLocal || s.remote == nil {
		return OriginLocal, s.local.Create(ctx, purchase)
	}
	err := s.remote.Create(ctx, purchase)
	if err == nil {
		return OriginRemote, nil
	}
	if !shouldFallback(err) {
		return OriginRemote, err
	}
	log.Printf("Remote purchase write failed, recording locally: %v", err)
	return OriginLocal, s.local.Create(ctx, purchase)
}
