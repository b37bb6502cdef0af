package service

import "errors"

// Sentinel errors returned by Service operations.
var (
	ErrNotStarted      = errors.New("service not started")
	ErrSessionNotFound = errors.New("session not found")
	ErrJobNotFound     = errors.New("job not found")
	ErrDuplicateJob    = errors.New("identical extraction already pending")
	ErrNoValidImages   = errors.New("no valid images")
	ErrBusy            = errors.New("extraction queue is full")
)
