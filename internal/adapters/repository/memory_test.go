package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/fplpicks/internal/adapters/repository"
	"github.com/okian/fplpicks/internal/domain/gate"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty store", t, func() {
		s := repository.NewMemoryStore()

		Convey("Then periods are empty", func() {
			subs, err := s.ByPeriod(ctx, 15)
			So(err, ShouldBeNil)
			So(subs, ShouldBeEmpty)
			So(s.Count(ctx, 15), ShouldEqual, 0)
			So(s.Version(ctx, 15), ShouldEqual, uint64(0))
		})

		Convey("When saving submissions", func() {
			So(s.Save(ctx, gate.Submission{ID: "a", Period: 15}), ShouldBeNil)
			So(s.Save(ctx, gate.Submission{ID: "b", Period: 15}), ShouldBeNil)
			So(s.Save(ctx, gate.Submission{ID: "c", Period: 16}), ShouldBeNil)

			Convey("Then they are grouped by period in arrival order", func() {
				subs, err := s.ByPeriod(ctx, 15)
				So(err, ShouldBeNil)
				So(subs, ShouldHaveLength, 2)
				So(subs[0].ID, ShouldEqual, "a")
				So(subs[1].ID, ShouldEqual, "b")
				So(s.Count(ctx, 16), ShouldEqual, 1)
				So(s.Version(ctx, 15), ShouldEqual, uint64(2))
			})

			Convey("Then lookups by id work", func() {
				sub, err := s.Get(ctx, "c")
				So(err, ShouldBeNil)
				So(sub.Period, ShouldEqual, 16)

				_, err = s.Get(ctx, "zzz")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("Then a duplicate id is refused", func() {
				err := s.Save(ctx, gate.Submission{ID: "a", Period: 15})
				So(errors.Is(err, repository.ErrDuplicate), ShouldBeTrue)
				So(s.Count(ctx, 15), ShouldEqual, 2)
			})

			Convey("Then the returned slice is a copy", func() {
				subs, _ := s.ByPeriod(ctx, 15)
				subs[0].ID = "mutated"
				again, _ := s.ByPeriod(ctx, 15)
				So(again[0].ID, ShouldEqual, "a")
			})
		})
	})

	Convey("Given a period limit", t, func() {
		s := repository.NewMemoryStore(repository.WithPeriodLimit(1))
		So(s.Save(ctx, gate.Submission{ID: "a", Period: 1}), ShouldBeNil)
		err := s.Save(ctx, gate.Submission{ID: "b", Period: 1})
		So(errors.Is(err, repository.ErrPeriodFull), ShouldBeTrue)
		So(s.Save(ctx, gate.Submission{ID: "c", Period: 2}), ShouldBeNil)
	})

	Convey("Given a stored submission", t, func() {
		s := repository.NewMemoryStore(repository.WithPeriodLimit(1))
		So(s.Save(ctx, gate.Submission{ID: "a", Period: 1}), ShouldBeNil)

		Convey("When it is deleted", func() {
			So(s.Delete(ctx, "a"), ShouldBeNil)

			Convey("Then it is gone and its slot is free again", func() {
				_, err := s.Get(ctx, "a")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				So(s.Count(ctx, 1), ShouldEqual, 0)
				So(s.Version(ctx, 1), ShouldEqual, uint64(2))
				So(s.Save(ctx, gate.Submission{ID: "b", Period: 1}), ShouldBeNil)
			})
		})

		Convey("Then deleting an unknown id fails", func() {
			So(errors.Is(s.Delete(ctx, "zzz"), repository.ErrNotFound), ShouldBeTrue)
			So(s.Count(ctx, 1), ShouldEqual, 1)
		})
	})

	Convey("Given concurrent writers", t, func() {
		s := repository.NewMemoryStore()
		var wg sync.WaitGroup
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_ = s.Save(ctx, gate.Submission{ID: fmt.Sprintf("s-%d", i), Period: 15})
			}(i)
		}
		wg.Wait()

		So(s.Count(ctx, 15), ShouldEqual, 100)
		So(s.Version(ctx, 15), ShouldEqual, uint64(100))
	})
}
