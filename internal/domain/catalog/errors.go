package catalog

import "errors"

// Sentinel errors for catalog construction and lookups.
var (
	ErrInvalidPrice    = errors.New("invalid price")
	ErrInvalidPosition = errors.New("invalid position")
	ErrUnknownClub     = errors.New("unknown club")
	ErrDuplicatePlayer = errors.New("duplicate player id")
	ErrPlayerNotFound  = errors.New("player not found")
)
