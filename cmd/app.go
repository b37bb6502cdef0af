package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/okian/fplpicks/internal/adapters/flagstore"
	"github.com/okian/fplpicks/internal/adapters/http/api"
	"github.com/okian/fplpicks/internal/adapters/http/live"
	"github.com/okian/fplpicks/internal/adapters/http/site"
	"github.com/okian/fplpicks/internal/adapters/http/swagger"
	"github.com/okian/fplpicks/internal/adapters/mcptools"
	"github.com/okian/fplpicks/internal/adapters/recognizer"
	"github.com/okian/fplpicks/internal/adapters/repository"
	app "github.com/okian/fplpicks/internal/app"
	"github.com/okian/fplpicks/internal/config"
	"github.com/okian/fplpicks/internal/domain/extract"
	"github.com/okian/fplpicks/internal/domain/gate"
	"github.com/okian/fplpicks/internal/domain/period"
	"github.com/okian/fplpicks/pkg/logger"
)

// version is set at build time.
var version = "dev"

// flagStore is a submission flag backend the process owns.
type flagStore interface {
	gate.FlagStore
	Ping(ctx context.Context) error
	Close() error
}

// application is the wired process: service, backends and routes.
type application struct {
	svc       *app.Service
	flags     flagStore
	hubCancel context.CancelFunc
	mux       *http.ServeMux
}

// build wires every component from cfg and starts the service.
func build(ctx context.Context, cfg *config.Config) (*application, error) {
	log := logger.Get()

	flags, err := newFlagStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	clock, err := period.New(cfg.Period,
		period.WithRolloverSchedule(cfg.PeriodRolloverCron),
		period.WithLogger(log.Named("period")),
	)
	if err != nil {
		_ = flags.Close()
		return nil, fmt.Errorf("period clock: %w", err)
	}

	opts := []app.Option{
		app.WithLogger(log),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithJobTimeout(cfg.JobTimeout()),
		app.WithRecognizer(newRecognizer(cfg)),
		app.WithFlagStore(flags),
		app.WithPeriodClock(clock),
		app.WithRepository(repository.NewMemoryStore(
			repository.WithPeriodLimit(cfg.MaxSubmissionsPerPeriod),
		)),
	}

	var hub *live.Hub
	hubCtx, hubCancel := context.WithCancel(context.WithoutCancel(ctx))
	if cfg.LiveEnabled {
		hub = live.NewHub(live.WithLogger(log.Named("live")))
		go hub.Run(hubCtx)
		opts = append(opts, app.WithBroadcaster(hub))
	}

	svc := app.New(opts...)
	if err := svc.Start(ctx); err != nil {
		hubCancel()
		_ = flags.Close()
		return nil, fmt.Errorf("failed to start service: %w", err)
	}

	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	site.Register(ctx, mux)
	api.NewServer(svc, svc, api.WithMaxUploadBytes(cfg.MaxUploadBytes())).Register(ctx, mux)
	if hub != nil {
		live.NewHandler(hub, svc).Register(ctx, mux)
	}
	if cfg.MCPEnabled {
		mcptools.New(svc, mcptools.WithVersion(version), mcptools.WithLogger(log.Named("mcp"))).Register(ctx, mux)
	}

	log.Info(ctx, "application wired",
		logger.String("flagStore", cfg.FlagStore),
		logger.Bool("remoteRecognizer", cfg.RecognizerURL != ""),
		logger.Bool("live", cfg.LiveEnabled),
		logger.Bool("mcp", cfg.MCPEnabled),
	)
	return &application{svc: svc, flags: flags, hubCancel: hubCancel, mux: mux}, nil
}

// close stops the service and releases backends.
func (a *application) close(ctx context.Context) {
	a.svc.Stop(ctx)
	a.hubCancel()
	if err := a.flags.Close(); err != nil {
		logger.Get().Warn(ctx, "failed to close flag store", logger.Error(err))
	}
}

// newRecognizer returns the remote recognizer behind a breaker, or the static
// one when no URL is configured.
func newRecognizer(cfg *config.Config) extract.Recognizer {
	if cfg.RecognizerURL == "" {
		return recognizer.NewStatic(recognizer.WithText(cfg.RecognizerStaticText))
	}
	remote := recognizer.NewHTTP(cfg.RecognizerURL,
		recognizer.WithTimeout(cfg.RecognizerTimeout()),
		recognizer.WithBearerToken(cfg.RecognizerToken),
	)
	return recognizer.NewBreaker(remote,
		recognizer.WithMaxFailures(cfg.BreakerMaxFailures),
		recognizer.WithOpenTimeout(cfg.BreakerOpenTimeout()),
		recognizer.WithBreakerLogger(logger.Get().Named("breaker")),
	)
}

func newFlagStore(ctx context.Context, cfg *config.Config) (flagStore, error) {
	switch cfg.FlagStore {
	case config.FlagStoreRedis:
		s, err := flagstore.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("redis flag store: %w", err)
		}
		return s, nil
	default:
		return flagstore.NewMemory(), nil
	}
}
