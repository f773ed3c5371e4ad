package service

import "errors"

// Failure taxonomy surfaced by the service layer. Handlers translate these
// into HTTP status codes; nothing below this layer knows about HTTP.
var (
	// ErrNotFound covers both a missing recipe and a recipe owned by another
	// user. The two cases are deliberately indistinguishable so callers
	// cannot probe for the existence of other users' recipes.
	ErrNotFound = errors.New("recipe not found")

	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrValidation         = errors.New("validation failed")
)
