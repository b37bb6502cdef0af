// Package service composes the roster, extraction, submission and
// aggregation components into the operations served over HTTP and MCP.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/fplpicks/internal/adapters/flagstore"
	"github.com/okian/fplpicks/internal/adapters/mq/queue"
	"github.com/okian/fplpicks/internal/adapters/mq/worker"
	"github.com/okian/fplpicks/internal/adapters/recognizer"
	"github.com/okian/fplpicks/internal/adapters/repository"
	"github.com/okian/fplpicks/internal/domain/aggregate"
	"github.com/okian/fplpicks/internal/domain/catalog"
	"github.com/okian/fplpicks/internal/domain/dedupe"
	"github.com/okian/fplpicks/internal/domain/extract"
	"github.com/okian/fplpicks/internal/domain/gate"
	"github.com/okian/fplpicks/internal/domain/match"
	"github.com/okian/fplpicks/internal/domain/period"
	"github.com/okian/fplpicks/pkg/logger"
	"github.com/okian/fplpicks/pkg/metrics"
)

const (
	defaultPeriod       = 15
	defaultQueueSize    = 256
	defaultDedupeSize   = 10000
	defaultJobTimeout   = 2 * time.Minute
	defaultJobRetention = 30 * time.Minute
	janitorInterval     = time.Minute
)

// Broadcaster publishes community stats to live subscribers.
type Broadcaster interface {
	Broadcast(ctx context.Context, period int, stats aggregate.Stats)
}

// Service implements the API dependencies for the squad pool.
type Service struct {
	mu sync.RWMutex

	// Core components
	catalog     *catalog.Catalog
	matcher     *match.Matcher
	extractor   *extract.Extractor
	recognizer  extract.Recognizer
	flags       gate.FlagStore
	repo        repository.Store
	clock       *period.Clock
	deduper     dedupe.Deduper
	jobQueue    *queue.InMemoryQueue
	pool        *worker.Pool
	broadcaster Broadcaster

	// Configuration
	workerCount  int
	queueSize    int
	dedupeSize   int
	jobTimeout   time.Duration
	jobRetention time.Duration
	now          func() time.Time

	// State
	sessions map[string]*session
	jobsMu   sync.Mutex
	jobs     map[string]*jobRecord
	statsMu  sync.Mutex
	cache    map[int]cachedStats
	started  bool
	hooked   bool
	cancel   context.CancelFunc
	stopCh   chan struct{}

	logger logger.Logger
}

type cachedStats struct {
	version uint64
	stats   aggregate.Stats
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		catalog:      catalog.Default(),
		workerCount:  runtime.NumCPU(),
		queueSize:    defaultQueueSize,
		dedupeSize:   defaultDedupeSize,
		jobTimeout:   defaultJobTimeout,
		jobRetention: defaultJobRetention,
		now:          time.Now,
		sessions:     make(map[string]*session),
		jobs:         make(map[string]*jobRecord),
		cache:        make(map[int]cachedStats),
		logger:       logger.Get().Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.recognizer == nil {
		s.recognizer = recognizer.NewStatic()
	}
	if s.flags == nil {
		s.flags = flagstore.NewMemory()
	}
	if s.repo == nil {
		s.repo = repository.NewMemoryStore()
	}
	s.matcher = match.New(s.catalog)
	s.extractor = extract.New(s.recognizer, extract.WithLogger(s.logger.Named("extract")))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	return s
}

// Start initializes the period clock, the job queue and the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.clock == nil {
		c, err := period.New(defaultPeriod)
		if err != nil {
			return fmt.Errorf("period clock: %w", err)
		}
		s.clock = c
	}

	// Workers and cron outlive the request that started the service.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	if !s.hooked {
		s.clock.OnChange(s.rollover)
		s.hooked = true
	}
	if err := s.clock.Start(runCtx); err != nil {
		cancel()
		return fmt.Errorf("start period clock: %w", err)
	}

	s.jobQueue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.jobQueue, worker.HandlerFunc(s.handle))
	s.pool.Start(runCtx)
	s.stopCh = make(chan struct{})
	go s.janitor(runCtx, s.stopCh)

	s.cancel = cancel
	s.started = true
	s.logger.Info(ctx, "squad pool service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("period", s.clock.Current()),
	)
	return nil
}

// Stop drains pending jobs and shuts the service down.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	pool, clock, cancel, stopCh := s.pool, s.clock, s.cancel, s.stopCh
	s.mu.Unlock()

	s.logger.Info(ctx, "stopping squad pool service...")
	clock.Stop(ctx)
	if err := pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
	}
	cancel()
	close(stopCh)
	s.logger.Info(ctx, "squad pool service stopped")
}

// Period returns the current period.
func (s *Service) Period() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.clock == nil {
		return defaultPeriod
	}
	return s.clock.Current()
}

func (s *Service) isStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// janitor prunes finished jobs and refreshes gauges.
func (s *Service) janitor(ctx context.Context, stop <-chan struct{}) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			if n := s.pruneJobs(); n > 0 {
				s.logger.Debug(ctx, "pruned finished jobs", logger.Int("count", n))
			}
			s.mu.RLock()
			metrics.UpdateActiveSessions(len(s.sessions))
			s.mu.RUnlock()
		}
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"sessions":    len(s.sessions),
		"catalogSize": s.catalog.Len(),
	}

	if s.started {
		p := s.clock.Current()
		stats["period"] = p
		stats["queueLength"] = s.jobQueue.Len(ctx)
		stats["pendingKeys"] = s.deduper.Size()
		stats["submissions"] = s.repo.Count(ctx, p)
		stats["workers"] = s.pool.Stats()

		metrics.UpdateWorkerCount(s.pool.Size())
		metrics.UpdateActiveSessions(len(s.sessions))
	}

	s.jobsMu.Lock()
	stats["jobs"] = len(s.jobs)
	s.jobsMu.Unlock()

	return stats
}
