// Package period tracks the current submission window (a gameweek number)
// and optionally advances it on a cron schedule.
package period

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/okian/fplpicks/pkg/logger"
)

// ErrInvalidPeriod is returned for non-positive periods.
var ErrInvalidPeriod = errors.New("period must be positive")

// Listener is told about every period change.
type Listener func(ctx context.Context, period int)

// Clock holds the current period.
type Clock struct {
	mu        sync.RWMutex
	current   int
	schedule  string
	cron      *cron.Cron
	listeners []Listener
	logger    logger.Logger
}

// Option configures a Clock.
type Option func(*Clock)

// WithRolloverSchedule advances the period on a standard five-field cron
// schedule (for example "0 11 * * 5").
func WithRolloverSchedule(expr string) Option {
	return func(c *Clock) { c.schedule = expr }
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Clock) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns a clock starting at start.
func New(start int, opts ...Option) (*Clock, error) {
	if start <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPeriod, start)
	}
	c := &Clock{current: start, logger: logger.Get().Named("period")}
	for _, opt := range opts {
		opt(c)
	}
	if c.schedule != "" {
		if _, err := cron.ParseStandard(c.schedule); err != nil {
			return nil, fmt.Errorf("invalid rollover schedule %q: %w", c.schedule, err)
		}
	}
	return c, nil
}

// Current returns the current period.
func (c *Clock) Current() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// OnChange registers fn for period changes. Listeners run synchronously in
// registration order.
func (c *Clock) OnChange(fn Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Advance moves to the next period and returns it.
func (c *Clock) Advance(ctx context.Context) int {
	c.mu.Lock()
	c.current++
	p := c.current
	listeners := append([]Listener(nil), c.listeners...)
	c.mu.Unlock()

	c.logger.Info(ctx, "period advanced", logger.Int("period", p))
	for _, fn := range listeners {
		fn(ctx, p)
	}
	return p
}

// Set jumps to period p.
func (c *Clock) Set(ctx context.Context, p int) error {
	if p <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPeriod, p)
	}
	c.mu.Lock()
	if c.current == p {
		c.mu.Unlock()
		return nil
	}
	c.current = p
	listeners := append([]Listener(nil), c.listeners...)
	c.mu.Unlock()

	c.logger.Info(ctx, "period set", logger.Int("period", p))
	for _, fn := range listeners {
		fn(ctx, p)
	}
	return nil
}

// Start begins scheduled rollover if a schedule was configured.
func (c *Clock) Start(ctx context.Context) error {
	if c.schedule == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cron != nil {
		return nil
	}
	c.cron = cron.New()
	if _, err := c.cron.AddFunc(c.schedule, func() { c.Advance(ctx) }); err != nil {
		c.cron = nil
		return fmt.Errorf("schedule rollover: %w", err)
	}
	c.cron.Start()
	c.logger.Info(ctx, "period rollover scheduled", logger.String("schedule", c.schedule))
	return nil
}

// Stop halts scheduled rollover and waits for a running advance to finish.
func (c *Clock) Stop(ctx context.Context) {
	c.mu.Lock()
	cr := c.cron
	c.cron = nil
	c.mu.Unlock()
	if cr == nil {
		return
	}
	select {
	case <-cr.Stop().Done():
	case <-ctx.Done():
	}
}
