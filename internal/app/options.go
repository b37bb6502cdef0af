package service

import (
	"time"

	"github.com/okian/fplpicks/internal/adapters/repository"
	"github.com/okian/fplpicks/internal/domain/catalog"
	"github.com/okian/fplpicks/internal/domain/extract"
	"github.com/okian/fplpicks/internal/domain/gate"
	"github.com/okian/fplpicks/internal/domain/period"
	"github.com/okian/fplpicks/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of extraction workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending extraction jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many pending job keys are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithJobTimeout bounds a single extraction job.
func WithJobTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.jobTimeout = d
		}
	}
}

// WithJobRetention sets how long finished jobs stay queryable.
func WithJobRetention(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.jobRetention = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCatalog replaces the built-in player catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithRecognizer sets the text recognizer used by extraction jobs.
func WithRecognizer(r extract.Recognizer) Option {
	return func(s *Service) {
		if r != nil {
			s.recognizer = r
		}
	}
}

// WithFlagStore sets where submission flags are persisted.
func WithFlagStore(fs gate.FlagStore) Option {
	return func(s *Service) {
		if fs != nil {
			s.flags = fs
		}
	}
}

// WithRepository sets the submission store.
func WithRepository(r repository.Store) Option {
	return func(s *Service) {
		if r != nil {
			s.repo = r
		}
	}
}

// WithPeriodClock sets the period source.
func WithPeriodClock(c *period.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithBroadcaster receives community stats after every accepted submission.
func WithBroadcaster(b Broadcaster) Option {
	return func(s *Service) {
		if b != nil {
			s.broadcaster = b
		}
	}
}

// WithNow overrides the time source.
func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
