package seeder

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/fplpicks/internal/adapters/http/api"
	service "github.com/okian/fplpicks/internal/app"
	"github.com/okian/fplpicks/internal/domain/catalog"
	"github.com/okian/fplpicks/internal/domain/roster"
	"github.com/okian/fplpicks/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func TestGenerator(t *testing.T) {
	Convey("Given a generator over the default catalog", t, func() {
		c := catalog.Default()
		squads, err := NewGenerator(c, 7).Squads(50)
		So(err, ShouldBeNil)
		So(squads, ShouldHaveLength, 50)

		Convey("Then every squad satisfies the roster rules", func() {
			for _, sq := range squads {
				b := roster.New()
				for _, id := range sq.Players {
					p, ok := c.Get(id)
					So(ok, ShouldBeTrue)
					So(b.Add(p), ShouldBeNil)
				}
				So(b.Complete(), ShouldBeTrue)
				So(b.Contains(sq.CaptainID), ShouldBeTrue)
				So(b.Contains(sq.ViceCaptainID), ShouldBeTrue)
				So(sq.CaptainID, ShouldNotEqual, sq.ViceCaptainID)
			}
		})

		Convey("Then the same seed gives the same squads", func() {
			again, err := NewGenerator(c, 7).Squads(50)
			So(err, ShouldBeNil)
			So(again, ShouldResemble, squads)
		})
	})
}

func TestVerify(t *testing.T) {
	Convey("Given accepted squads", t, func() {
		accepted := []Squad{{CaptainID: 21}, {CaptainID: 18}, {CaptainID: 18}, {CaptainID: 21}}

		Convey("When the counts and top captain agree", func() {
			So(verify(&Stats{Before: 0, After: 4, TopCaptain: 18}, accepted), ShouldBeNil)
		})

		Convey("When the count is off", func() {
			err := verify(&Stats{Before: 0, After: 3, TopCaptain: 18}, accepted)
			So(errors.Is(err, ErrVerification), ShouldBeTrue)
		})

		Convey("When the top captain differs on a fresh period", func() {
			err := verify(&Stats{Before: 0, After: 4, TopCaptain: 21}, accepted)
			So(errors.Is(err, ErrVerification), ShouldBeTrue)
		})

		Convey("When the period already had submissions the captain is not checked", func() {
			So(verify(&Stats{Before: 2, After: 6, TopCaptain: 99}, accepted), ShouldBeNil)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running service", t, func() {
		svc := service.New(service.WithWorkerCount(2))
		So(svc.Start(context.Background()), ShouldBeNil)
		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(context.Background(), mux)
		srv := httptest.NewServer(mux)
		Reset(func() {
			srv.Close()
			svc.Stop(context.Background())
		})

		Convey("When seeding squads", func() {
			out := filepath.Join(t.TempDir(), "squads.json")
			stats, err := Run(context.Background(), &Config{
				BaseURL:    srv.URL,
				Squads:     12,
				Workers:    4,
				Timeout:    5 * time.Second,
				Seed:       3,
				OutputFile: out,
			})

			Convey("Then every squad is accepted and counted", func() {
				So(err, ShouldBeNil)
				So(stats.Generated, ShouldEqual, 12)
				So(stats.Accepted, ShouldEqual, 12)
				So(stats.Failed, ShouldEqual, 0)
				So(stats.After, ShouldEqual, 12)

				info, err := os.Stat(out)
				So(err, ShouldBeNil)
				So(info.Size(), ShouldBeGreaterThan, 0)
			})
		})
	})

	Convey("Given nothing listening", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()

		_, err := Run(context.Background(), &Config{BaseURL: srv.URL, Squads: 1, Workers: 1, Timeout: time.Second})
		So(err, ShouldNotBeNil)
	})
}
