package repositories

import (
	"context"
	"fmt"
	"time"

	"ecofinds/internal/models"
	"ecofinds/pkg/restdb"
)

// RemoteProfileRepository is the backend implementation of ProfileRepository.
type RemoteProfileRepository struct {
	client *restdb.Client
}

// NewRemoteProfileRepository creates a new instance of RemoteProfileRepository.
func NewRemoteProfileRepository(client *restdb.Client) *RemoteProfileRepository {
	return &RemoteProfileRepository{
		client: client,
	}
}

// Get retrieves the profile for the user id.
func (r *RemoteProfileRepository) Get(ctx context.Context, userID string) (*models.Profile, error) {
	var profiles []models.Profile
	err := r.client.From("profiles").
		Select("*").
		Eq("id", userID).
		Get(ctx, &profiles)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile %s: %w", userID, err)
	}
	if len(profiles) == 0 {
		return nil, models.ErrNotFound
	}
	return &profiles[0], nil
}

// Upsert creates or replaces the profile as a whole.
func (r *RemoteProfileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	now := time.Now().UTC()
	row := map[string]interface{}{
		"id":         profile.ID,
		"username":   profile.Username,
		"bio":        profile.Bio,
		"email":      profile.Email,
		"updated_at": now.Format(time.RFC3339),
	}
	if err := r.client.From("profiles").Upsert(ctx, row, nil); err != nil {
		return fmt.Errorf("failed to upsert profile %s: %w", profile.ID, err)
	}
	profile.UpdatedAt = &now
	return nil
}
