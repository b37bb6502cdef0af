package seeder

import "errors"

// Sentinel errors.
var (
	ErrNoSquad      = errors.New("could not build a valid squad")
	ErrUnhealthy    = errors.New("service unhealthy")
	ErrUnexpected   = errors.New("unexpected response")
	ErrVerification = errors.New("community view does not match submissions")
)
