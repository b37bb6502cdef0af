package seeder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/fplpicks/internal/domain/catalog"
	"github.com/okian/fplpicks/pkg/logger"
)

const (
	directoryPermission = 0750
	filePermission      = 0600
	percentMultiplier   = 100
)

// Result of submitting one squad.
type outcome int

const (
	outcomeAccepted outcome = iota
	outcomeRejected
	outcomeFailed
)

// Run seeds the service and verifies the community view.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("seeder")
	log.Info(ctx, "starting seeding run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("squads", cfg.Squads),
		logger.Int("workers", cfg.Workers),
		logger.Int64("seed", cfg.Seed),
	)

	client := NewClient(cfg.BaseURL, cfg.Timeout)
	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	before, err := client.Community(ctx)
	if err != nil {
		return stats, fmt.Errorf("read community view: %w", err)
	}
	stats.Before = before.Stats.Submissions

	squads, err := NewGenerator(catalog.Default(), cfg.Seed).Squads(cfg.Squads)
	stats.Generated = len(squads)
	if err != nil {
		return stats, fmt.Errorf("squad generation failed: %w", err)
	}

	accepted := submitAll(ctx, cfg, client, squads, stats)

	after, err := client.Community(ctx)
	if err != nil {
		return stats, fmt.Errorf("read community view: %w", err)
	}
	stats.After = after.Stats.Submissions
	if len(after.Stats.TopCaptains) > 0 {
		stats.TopCaptain = after.Stats.TopCaptains[0].Player.ID
	}

	if cfg.OutputFile != "" {
		if err := saveSquads(cfg.OutputFile, squads); err != nil {
			log.Warn(ctx, "failed to save squads", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	if err := verify(stats, accepted); err != nil {
		return stats, err
	}
	log.Info(ctx, "seeding completed successfully")
	return stats, nil
}

// submitAll creates one session per squad and submits it using cfg.Workers
// goroutines. It returns the squads the service accepted.
func submitAll(ctx context.Context, cfg *Config, client *Client, squads []Squad, stats *Stats) []Squad {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	var (
		submitted, acceptedN, rejected, failed int64
		mu                                     sync.Mutex
		accepted                               []Squad
		wg                                     sync.WaitGroup
	)
	ch := make(chan Squad, workers*2)
	log := logger.Get().Named("seeder")

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sq := range ch {
				res, err := submitOne(ctx, client, sq)
				atomic.AddInt64(&submitted, 1)
				switch res {
				case outcomeAccepted:
					atomic.AddInt64(&acceptedN, 1)
					mu.Lock()
					accepted = append(accepted, sq)
					mu.Unlock()
				case outcomeRejected:
					atomic.AddInt64(&rejected, 1)
				case outcomeFailed:
					atomic.AddInt64(&failed, 1)
				}
				if err != nil && cfg.Verbose {
					log.Warn(ctx, "squad not accepted", logger.Error(err))
				}
			}
		}()
	}

	go func() {
		defer close(ch)
		for _, sq := range squads {
			select {
			case <-ctx.Done():
				return
			case ch <- sq:
			}
		}
	}()
	wg.Wait()

	stats.Submitted = int(atomic.LoadInt64(&submitted))
	stats.Accepted = int(atomic.LoadInt64(&acceptedN))
	stats.Rejected = int(atomic.LoadInt64(&rejected))
	stats.Failed = int(atomic.LoadInt64(&failed))
	return accepted
}

func submitOne(ctx context.Context, client *Client, sq Squad) (outcome, error) {
	sid, err := client.CreateSession(ctx)
	if err != nil {
		return outcomeFailed, err
	}
	for _, pid := range sq.Players {
		if err := client.AddPlayer(ctx, sid, pid); err != nil {
			return outcomeRejected, fmt.Errorf("add %d: %w", pid, err)
		}
	}
	status, err := client.Submit(ctx, sid, sq.CaptainID, sq.ViceCaptainID)
	switch {
	case err != nil:
		return outcomeFailed, err
	case status == http.StatusCreated:
		return outcomeAccepted, nil
	default:
		return outcomeRejected, fmt.Errorf("%w: submit status %d", ErrUnexpected, status)
	}
}

func saveSquads(filename string, squads []Squad) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	b, err := json.MarshalIndent(squads, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal squads: %w", err)
	}
	if err := os.WriteFile(filename, b, filePermission); err != nil {
		return fmt.Errorf("failed to write squads: %w", err)
	}
	return nil
}

func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var acceptRate, perSecond float64
	if stats.Submitted > 0 {
		acceptRate = float64(stats.Accepted) / float64(stats.Submitted) * percentMultiplier
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("accepted", stats.Accepted),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed),
		logger.Int("communityBefore", stats.Before),
		logger.Int("communityAfter", stats.After),
		logger.Int("topCaptain", stats.TopCaptain),
		logger.Duration("duration", stats.Duration),
		logger.Float64("acceptRate", acceptRate),
		logger.Float64("squadsPerSecond", perSecond),
	)
}
