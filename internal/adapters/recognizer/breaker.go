package recognizer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/okian/fplpicks/internal/domain/extract"
	"github.com/okian/fplpicks/pkg/logger"
	"github.com/okian/fplpicks/pkg/metrics"
)

// Breaker settings defaults.
const (
	defaultMaxFailures = 3
	defaultOpenTimeout = 30 * time.Second
	defaultInterval    = 60 * time.Second
)

// BreakerOption configures a Breaker.
type BreakerOption func(*breakerConfig)

type breakerConfig struct {
	name        string
	maxFailures uint32
	openTimeout time.Duration
	logger      logger.Logger
}

// WithMaxFailures trips the breaker after n consecutive failures.
func WithMaxFailures(n int) BreakerOption {
	return func(c *breakerConfig) {
		if n > 0 {
			c.maxFailures = uint32(n)
		}
	}
}

// WithOpenTimeout sets how long the breaker stays open before probing.
func WithOpenTimeout(d time.Duration) BreakerOption {
	return func(c *breakerConfig) {
		if d > 0 {
			c.openTimeout = d
		}
	}
}

// WithBreakerLogger sets a custom logger.
func WithBreakerLogger(l logger.Logger) BreakerOption {
	return func(c *breakerConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// callerDone carries an error that happened after the caller's own context
// ended.
type callerDone struct{ err error }

func (c callerDone) Error() string { return c.err.Error() }
func (c callerDone) Unwrap() error { return c.err }

// Breaker guards a Recognizer with a circuit breaker. Calls that fail because
// the caller's context ended do not count as failures; backend timeouts do.
type Breaker struct {
	next extract.Recognizer
	cb   *gobreaker.CircuitBreaker
}

// NewBreaker wraps next.
func NewBreaker(next extract.Recognizer, opts ...BreakerOption) *Breaker {
	cfg := breakerConfig{
		name:        "recognizer",
		maxFailures: defaultMaxFailures,
		openTimeout: defaultOpenTimeout,
		logger:      logger.Get().Named("recognizer"),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.name,
		MaxRequests: 1,
		Interval:    defaultInterval,
		Timeout:     cfg.openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.maxFailures
		},
		IsSuccessful: func(err error) bool {
			var done callerDone
			return err == nil || errors.As(err, &done)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.UpdateBreakerState(int(to))
			cfg.logger.Warn(context.Background(), "circuit breaker state changed",
				logger.String("circuit", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	})
	return &Breaker{next: next, cb: cb}
}

// Recognize implements extract.Recognizer.
func (b *Breaker) Recognize(ctx context.Context, img extract.Image) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		text, err := b.next.Recognize(ctx, img)
		if err != nil && ctx.Err() != nil {
			return "", callerDone{err: err}
		}
		return text, err
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: %w: %w", extract.ErrRecognition, ErrUnavailable, err)
		}
		var done callerDone
		if errors.As(err, &done) {
			return "", done.err
		}
		return "", err
	}
	return out.(string), nil
}

// State returns the breaker state name.
func (b *Breaker) State() string {
	return b.cb.State().String()
}
