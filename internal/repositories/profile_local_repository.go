package repositories

import (
	"context"
	"time"

	"ecofinds/internal/models"
	"ecofinds/pkg/kvstore"
)

// LocalProfileRepository is the key-value fallback implementation of
// ProfileRepository.
type LocalProfileRepository struct {
	kv *kvstore.Store
}

// NewLocalProfileRepository creates a new instance of LocalProfileRepository.
func NewLocalProfileRepository(kv *kvstore.Store) *LocalProfileRepository {
	return &LocalProfileRepository{
		kv: kv,
	}
}

// Get retrieves the profile for the user id.
func (r *LocalProfileRepository) Get(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	ok, err := getJSON(r.kv, profileKey(userID), &profile)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.ErrNotFound
	}
	return &profile, nil
}

// Upsert creates or replaces the profile as a whole.
func (r *LocalProfileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	now := time.Now().UTC()
	profile.UpdatedAt = &now
	return setJSON(r.kv, profileKey(profile.ID), profile)
}
