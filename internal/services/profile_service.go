package services

import (
	"context"
	"errors"
	"log"

	"ecofinds/internal/models"
	"ecofinds/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// ProfileService reads and writes the current user's public profile.
type ProfileService struct {
	session  *SessionService
	remote   repositories.ProfileRepository
	local    repositories.ProfileRepository
	validate *validator.Validate
}

// NewProfileService creates a new ProfileService. remote may be nil.
func NewProfileService(session *SessionService, remote, local repositories.ProfileRepository) *ProfileService {
	return &ProfileService{
		session:  session,
		remote:   remote,
		local:    local,
		validate: validator.New(),
	}
}

func (s *ProfileService) with(what string, op func(repositories.ProfileRepository) error) (Origin, error) {
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

// Get retrieves the current user's profile. A user who never saved a
// profile gets one synthesized from their session identity.
func (s *ProfileService) Get(ctx context.Context) (*models.Profile, Origin, error) {
	user, err := s.session.RequireUser()
	if err != nil {
		return nil, OriginLocal, err
	}
	var profile *models.Profile
	origin, err := s.with("profile load", func(r repositories.ProfileRepository) error {
		var lerr error
		profile, lerr = r.Get(ctx, user.ID)
		return lerr
	})
	if errors.Is(err, models.ErrNotFound) {
		return &models.Profile{
			ID:       user.ID,
			Username: user.DisplayName,
			Email:    user.Email,
		}, origin, nil
	}
	if err != nil {
		return nil, origin, err
	}
	if profile.Email == "" {
		profile.Email = user.Email
	}
	return profile, origin, nil
}

// Update saves the current user's profile.
func (s *ProfileService) Update(ctx context.Context, profile *models.Profile) (Origin, error) {
	user, err := s.session.RequireUser()
	if err != nil {
		return OriginLocal, err
	}
	profile.ID = user.ID
	if err := s.validate.Struct(profile); err != nil {
		return OriginLocal, err
	}
	return s.with("profile save", func(r repositories.ProfileRepository) error {
		return r.Upsert(ctx, profile)
	})
}
