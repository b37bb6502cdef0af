// Package gate allows one squad submission per period. The closed state is
// persisted as a boolean flag so it survives restarts.
package gate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/fplpicks/internal/domain/catalog"
	"github.com/okian/fplpicks/internal/domain/roster"
	"github.com/okian/fplpicks/pkg/logger"
	"github.com/okian/fplpicks/pkg/metrics"
)

// State of a gate.
type State string

// Gate states.
const (
	StateOpen   State = "open"
	StateClosed State = "closed"
)

// FlagStore persists "submitted" flags.
type FlagStore interface {
	IsSubmitted(ctx context.Context, key string) (bool, error)
	MarkSubmitted(ctx context.Context, key string) error
}

// Sink stores accepted submissions. Save runs before the flag is persisted;
// Delete undoes it when the flag write fails.
type Sink interface {
	Save(ctx context.Context, sub Submission) error
	Delete(ctx context.Context, id string) error
}

// Submission is an accepted squad. It is never modified after creation.
type Submission struct {
	ID            string           `json:"id"`
	SessionID     string           `json:"session_id"`
	Period        int              `json:"period"`
	Players       []catalog.Player `json:"players"`
	CaptainID     int              `json:"captain_id"`
	ViceCaptainID int              `json:"vice_captain_id,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// Key returns the flag key for a namespace and period.
func Key(namespace string, period int) string {
	if namespace == "" {
		return fmt.Sprintf("submitted_%d", period)
	}
	return fmt.Sprintf("%s:submitted_%d", namespace, period)
}

// Option configures a Gate.
type Option func(*Gate)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithClock sets the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) {
		if now != nil {
			g.now = now
		}
	}
}

// WithSink stores every accepted submission in sink before the gate closes.
func WithSink(sink Sink) Option {
	return func(g *Gate) { g.sink = sink }
}

// Gate is the per-session submission state machine.
type Gate struct {
	mu        sync.Mutex
	store     FlagStore
	sink      Sink
	namespace string
	period    int
	state     State
	logger    logger.Logger
	now       func() time.Time
}

// Open reads the flag for namespace and period and returns a gate in the
// matching state.
func Open(ctx context.Context, store FlagStore, namespace string, period int, opts ...Option) (*Gate, error) {
	g := &Gate{
		store:     store,
		namespace: namespace,
		logger:    logger.Get().Named("gate"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	if err := g.load(ctx, period); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Gate) load(ctx context.Context, period int) error {
	done, err := g.store.IsSubmitted(ctx, Key(g.namespace, period))
	if err != nil {
		metrics.RecordFlagStoreError()
		return fmt.Errorf("%w: read period %d: %w", ErrFlagStore, period, err)
	}
	g.period = period
	g.state = StateOpen
	if done {
		g.state = StateClosed
	}
	return nil
}

// State returns the current state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Period returns the period the gate is tracking.
func (g *Gate) Period() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.period
}

// Rollover switches the gate to a new period and re-reads its flag. On error
// the gate keeps its previous period and state.
func (g *Gate) Rollover(ctx context.Context, period int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if period == g.period {
		return nil
	}
	return g.load(ctx, period)
}

// Submit accepts the squad held by b when the gate is open, the squad is
// complete, the captain is in the squad and the optional vice-captain
// (0 for none) is a different squad member. The submission is stored in the
// sink, then the flag is persisted, then the gate closes. A failure at any
// step leaves the gate open, the flag unset and the sink without the
// submission.
func (g *Gate) Submit(ctx context.Context, b *roster.Builder, captainID, viceID int) (Submission, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.check(b, captainID, viceID); err != nil {
		metrics.RecordSubmissionRejected(reason(err))
		g.logger.Info(ctx, "submission rejected",
			logger.String("namespace", g.namespace),
			logger.Int("period", g.period),
			logger.Error(err),
		)
		return Submission{}, err
	}

	sub := Submission{
		ID:            uuid.New().String(),
		SessionID:     g.namespace,
		Period:        g.period,
		Players:       b.Players(),
		CaptainID:     captainID,
		ViceCaptainID: viceID,
		CreatedAt:     g.now().UTC(),
	}

	if g.sink != nil {
		if err := g.sink.Save(ctx, sub); err != nil {
			metrics.RecordSubmissionRejected("store")
			g.logger.Error(ctx, "failed to store submission",
				logger.String("namespace", g.namespace),
				logger.Int("period", g.period),
				logger.Error(err),
			)
			return Submission{}, fmt.Errorf("%w: %w", ErrSink, err)
		}
	}

	if err := g.store.MarkSubmitted(ctx, Key(g.namespace, g.period)); err != nil {
		metrics.RecordFlagStoreError()
		metrics.RecordSubmissionRejected("flag_store")
		g.logger.Error(ctx, "failed to persist submission flag",
			logger.String("namespace", g.namespace),
			logger.Int("period", g.period),
			logger.Error(err),
		)
		if g.sink != nil {
			if derr := g.sink.Delete(ctx, sub.ID); derr != nil {
				g.logger.Error(ctx, "failed to remove unflagged submission",
					logger.String("submission_id", sub.ID),
					logger.Error(derr),
				)
			}
		}
		return Submission{}, fmt.Errorf("%w: %w", ErrFlagStore, err)
	}

	g.state = StateClosed
	metrics.RecordSubmission()
	g.logger.Info(ctx, "submission accepted",
		logger.String("submission_id", sub.ID),
		logger.String("namespace", g.namespace),
		logger.Int("period", g.period),
	)
	return sub, nil
}

func (g *Gate) check(b *roster.Builder, captainID, viceID int) error {
	switch {
	case g.state == StateClosed:
		return ErrClosed
	case !b.Complete():
		return fmt.Errorf("%w: %d of %d players", ErrIncomplete, b.Len(), roster.SquadSize)
	case !b.Contains(captainID):
		return fmt.Errorf("%w: %d", ErrCaptainNotPicked, captainID)
	case viceID != 0 && viceID == captainID:
		return ErrSameCaptain
	case viceID != 0 && !b.Contains(viceID):
		return fmt.Errorf("%w: %d", ErrViceNotPicked, viceID)
	}
	return nil
}

func reason(err error) string {
	switch {
	case errors.Is(err, ErrClosed):
		return "closed"
	case errors.Is(err, ErrIncomplete):
		return "incomplete"
	default:
		return "captaincy"
	}
}
