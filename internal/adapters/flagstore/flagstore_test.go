package flagstore_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/okian/fplpicks/internal/adapters/flagstore"
	. "github.com/smartystreets/goconvey/convey"
)

type store interface {
	IsSubmitted(ctx context.Context, key string) (bool, error)
	MarkSubmitted(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

func behavesLikeFlagStore(s store) {
	ctx := context.Background()

	So(s.Ping(ctx), ShouldBeNil)

	done, err := s.IsSubmitted(ctx, "s1:submitted_15")
	So(err, ShouldBeNil)
	So(done, ShouldBeFalse)

	So(s.MarkSubmitted(ctx, "s1:submitted_15"), ShouldBeNil)
	So(s.MarkSubmitted(ctx, "s1:submitted_15"), ShouldBeNil)

	done, err = s.IsSubmitted(ctx, "s1:submitted_15")
	So(err, ShouldBeNil)
	So(done, ShouldBeTrue)

	done, err = s.IsSubmitted(ctx, "s1:submitted_16")
	So(err, ShouldBeNil)
	So(done, ShouldBeFalse)
}

func TestMemoryStore(t *testing.T) {
	Convey("Given an in-memory flag store", t, func() {
		s := flagstore.NewMemory()
		behavesLikeFlagStore(s)
		So(s.Close(), ShouldBeNil)
	})
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given a Redis flag store", t, func() {
		mr := miniredis.RunT(t)
		s, err := flagstore.NewRedis(ctx, mr.Addr(), "", 0, flagstore.WithKeyPrefix("test:"))
		So(err, ShouldBeNil)
		defer s.Close()

		Convey("Then it behaves like a flag store", func() {
			behavesLikeFlagStore(s)
		})

		Convey("Then flags are written under the prefix", func() {
			So(s.MarkSubmitted(ctx, "submitted_15"), ShouldBeNil)
			v, err := mr.Get("test:submitted_15")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "1")
		})

		Convey("Then a flag written by another process is seen", func() {
			So(mr.Set("test:s9:submitted_15", "1"), ShouldBeNil)
			done, err := s.IsSubmitted(ctx, "s9:submitted_15")
			So(err, ShouldBeNil)
			So(done, ShouldBeTrue)
		})

		Convey("When the server goes away", func() {
			mr.Close()
			_, err := s.IsSubmitted(ctx, "s1:submitted_15")
			So(err, ShouldNotBeNil)
			So(s.MarkSubmitted(ctx, "s1:submitted_15"), ShouldNotBeNil)
		})
	})

	Convey("Given an unreachable Redis", t, func() {
		client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
		s := flagstore.NewRedisFromClient(client)
		defer s.Close()

		So(s.Ping(ctx), ShouldNotBeNil)
	})
}
