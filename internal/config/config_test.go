package config_test

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/okian/fplpicks/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.Period, convey.ShouldEqual, 15)
			convey.So(cfg.QueueSize, convey.ShouldEqual, 256)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.FlagStore, convey.ShouldEqual, config.FlagStoreMemory)
			convey.So(cfg.JobTimeout(), convey.ShouldEqual, 2*time.Minute)
			convey.So(cfg.MaxUploadBytes(), convey.ShouldEqual, int64(20<<20))
			convey.So(cfg.Validate(context.Background()), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given configs with one bad setting each", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"period", func(c *config.Config) { c.Period = 0 }},
			{"queue_size", func(c *config.Config) { c.QueueSize = -1 }},
			{"worker_count", func(c *config.Config) { c.WorkerCount = -1 }},
			{"max_upload_mb", func(c *config.Config) { c.MaxUploadMB = 0 }},
			{"max_submissions_per_period", func(c *config.Config) { c.MaxSubmissionsPerPeriod = -1 }},
			{"job_timeout_ms", func(c *config.Config) { c.JobTimeoutMS = 0 }},
			{"breaker_max_failures", func(c *config.Config) { c.BreakerMaxFailures = 0 }},
			{"flag_store", func(c *config.Config) { c.FlagStore = "etcd" }},
			{"redis_addr", func(c *config.Config) { c.FlagStore = config.FlagStoreRedis; c.RedisAddr = "" }},
			{"period_rollover_cron", func(c *config.Config) { c.PeriodRolloverCron = "every friday" }},
			{"addr", func(c *config.Config) { c.Addr = "" }},
		}

		for _, tc := range cases {
			convey.Convey("When "+tc.name+" is invalid", func() {
				cfg := config.New()
				tc.mutate(cfg)
				err := cfg.Validate(ctx)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})

	convey.Convey("Given a valid rollover schedule and redis store", t, func() {
		cfg := config.New()
		cfg.PeriodRolloverCron = "0 11 * * 5"
		cfg.FlagStore = config.FlagStoreRedis

		convey.So(cfg.Validate(ctx), convey.ShouldBeNil)
	})
}
