// Package repository stores accepted submissions for the process lifetime.
package repository

import (
	"context"

	"github.com/okian/fplpicks/internal/domain/gate"
)

// Store provides access to submissions grouped by period.
type Store interface {
	// Save appends sub to its period. Returns ErrDuplicate for a known id
	// and ErrPeriodFull when the period limit is reached.
	Save(ctx context.Context, sub gate.Submission) error

	// Delete removes a submission by id or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
	// Get returns a submission by id or ErrNotFound.
	Get(ctx context.Context, id string) (gate.Submission, error)

	// ByPeriod returns the submissions of a period in arrival order.
	ByPeriod(ctx context.Context, period int) ([]gate.Submission, error)

	// Version changes every time a submission is saved to period.
	Version(ctx context.Context, period int) uint64

	// Count returns the number of submissions in period.
	Count(ctx context.Context, period int) int
}
