package repository

import "errors"

// Sentinel kinds for submission store errors.
var (
	ErrNotFound   = errors.New("submission not found")
	ErrDuplicate  = errors.New("submission already stored")
	ErrPeriodFull = errors.New("period submission limit reached")
)
