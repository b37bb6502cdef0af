// Package config defines service configuration and how it is loaded.
package config

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/robfig/cron/v3"
)

// Flag store backends.
const (
	FlagStoreMemory = "memory"
	FlagStoreRedis  = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Period is the gameweek submissions are accepted for at startup.
	Period int `koanf:"period"`

	// PeriodRolloverCron advances the period on a five-field cron schedule.
	// Empty disables automatic rollover.
	PeriodRolloverCron string `koanf:"period_rollover_cron"`

	// QueueSize bounds the number of pending extraction jobs.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of extraction workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds how many pending upload keys are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	JobTimeoutMS int `koanf:"job_timeout_ms"`
	MaxUploadMB  int `koanf:"max_upload_mb"`

	// MaxSubmissionsPerPeriod caps stored submissions per period. Zero
	// means unlimited.
	MaxSubmissionsPerPeriod int `koanf:"max_submissions_per_period"`

	// RecognizerURL is the text-recognition endpoint. When empty the static
	// recognizer answers with RecognizerStaticText.
	RecognizerURL        string `koanf:"recognizer_url"`
	RecognizerToken      string `koanf:"recognizer_token"`
	RecognizerTimeoutMS  int    `koanf:"recognizer_timeout_ms"`
	RecognizerStaticText string `koanf:"recognizer_static_text"`

	// BreakerMaxFailures consecutive failures open the recognizer breaker for
	// BreakerOpenTimeoutMS.
	BreakerMaxFailures   int `koanf:"breaker_max_failures"`
	BreakerOpenTimeoutMS int `koanf:"breaker_open_timeout_ms"`

	// FlagStore selects where submission flags live: memory or redis.
	FlagStore     string `koanf:"flag_store"`
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	MCPEnabled  bool `koanf:"mcp_enabled"`
	LiveEnabled bool `koanf:"live_enabled"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":9080",
		Period:               15,
		QueueSize:            256,
		WorkerCount:          runtime.NumCPU(),
		DedupeSize:           10_000,
		JobTimeoutMS:         120_000,
		MaxUploadMB:          20,
		RecognizerTimeoutMS:  30_000,
		BreakerMaxFailures:   3,
		BreakerOpenTimeoutMS: 30_000,
		FlagStore:            FlagStoreMemory,
		RedisAddr:            "localhost:6379",
		MCPEnabled:           true,
		LiveEnabled:          true,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate(_ context.Context) error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.Period <= 0:
		return fmt.Errorf("%w: period must be positive, got %d", ErrInvalidConfig, c.Period)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	case c.WorkerCount < 0:
		return fmt.Errorf("%w: worker_count must not be negative, got %d", ErrInvalidConfig, c.WorkerCount)
	case c.MaxUploadMB <= 0:
		return fmt.Errorf("%w: max_upload_mb must be positive, got %d", ErrInvalidConfig, c.MaxUploadMB)
	case c.JobTimeoutMS <= 0, c.RecognizerTimeoutMS <= 0, c.BreakerOpenTimeoutMS <= 0:
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidConfig)
	case c.MaxSubmissionsPerPeriod < 0:
		return fmt.Errorf("%w: max_submissions_per_period must not be negative, got %d", ErrInvalidConfig, c.MaxSubmissionsPerPeriod)
	case c.BreakerMaxFailures <= 0:
		return fmt.Errorf("%w: breaker_max_failures must be positive, got %d", ErrInvalidConfig, c.BreakerMaxFailures)
	}

	switch c.FlagStore {
	case FlagStoreMemory:
	case FlagStoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%w: redis_addr is required for the redis flag store", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown flag_store %q", ErrInvalidConfig, c.FlagStore)
	}

	if c.PeriodRolloverCron != "" {
		if _, err := cron.ParseStandard(c.PeriodRolloverCron); err != nil {
			return fmt.Errorf("%w: period_rollover_cron: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

// JobTimeout returns JobTimeoutMS as a duration.
func (c *Config) JobTimeout() time.Duration { return ms(c.JobTimeoutMS) }

// RecognizerTimeout returns RecognizerTimeoutMS as a duration.
func (c *Config) RecognizerTimeout() time.Duration { return ms(c.RecognizerTimeoutMS) }

// BreakerOpenTimeout returns BreakerOpenTimeoutMS as a duration.
func (c *Config) BreakerOpenTimeout() time.Duration { return ms(c.BreakerOpenTimeoutMS) }

// MaxUploadBytes returns MaxUploadMB in bytes.
func (c *Config) MaxUploadBytes() int64 { return int64(c.MaxUploadMB) << 20 }

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }
