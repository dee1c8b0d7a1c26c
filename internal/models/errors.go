package models

import "errors"

// Sentinel errors shared by both persistence paths. These represent business
// outcomes, not transport failures, so the entity store propagates them
// instead of falling back to the local store.
var (
	ErrNotFound      = errors.New("record not found")
	ErrNotAuthorized = errors.New("record not found or not owned by current user")
	ErrAlreadyInCart = errors.New("product is already in the cart")
	ErrNotSignedIn   = errors.New("no user is signed in")
)
