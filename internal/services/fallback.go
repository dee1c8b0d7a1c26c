package services

import (
	"errors"

	"ecofinds/internal/models"
)

// Mode is the persistence target chosen at startup and held for the lifetime
// of the client instance. Individual operations may fall back to the local
// path on a remote failure, but the remembered mode never flips mid-session;
// only an initialization-time failure downgrades it permanently.
type Mode int

const (
	ModeLocal Mode = iota
	ModeRemote
)

func (m Mode) String() string {
	if m == ModeRemote {
		return "remote"
	}
	return "local"
}

// Origin reports which path actually served an operation. A fallback still
// returns a uniform success; the origin is logged and included in responses
// so degraded operation stays observable.
type Origin int

const (
	OriginLocal Origin = iota
	OriginRemote
)

func (o Origin) String() string {
	if o == OriginRemote {
		return "remote"
	}
	return "local"
}

// shouldFallback decides whether a remote error is a transport/backend
// failure (silently retried against the local store) or a business outcome
// that must reach the caller. Authorization violations in particular are the
// one failure that always surfaces, in both modes.
func shouldFallback(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, models.ErrNotFound),
		errors.Is(err, models.ErrNotAuthorized),
		errors.Is(err, models.ErrAlreadyInCart),
		errors.Is(err, models.ErrNotSignedIn):
		return false
	}
	return true
}
