package roster_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/okian/fplpicks/internal/domain/catalog"
	"github.com/okian/fplpicks/internal/domain/roster"
	. "github.com/smartystreets/goconvey/convey"
)

// fallbackSquad is a valid 2/5/5/3 squad costing 96.5.
var fallbackSquad = []int{60, 61, 62, 63, 64, 65, 66, 67, 68, 69, 70, 21, 71, 72, 73}

func mustPlayer(c *catalog.Catalog, id int) catalog.Player {
	p, ok := c.Get(id)
	if !ok {
		panic("unknown player")
	}
	return p
}

func spentOf(ps []catalog.Player) catalog.Price {
	var s catalog.Price
	for _, p := range ps {
		s += p.Price
	}
	return s
}

func TestBuilder_Add(t *testing.T) {
	c := catalog.Default()

	Convey("Given an empty builder", t, func() {
		b := roster.New()

		Convey("Then the full budget remains", func() {
			So(b.Remaining(), ShouldEqual, catalog.Budget)
			So(b.Spent(), ShouldEqual, catalog.Price(0))
			So(b.Complete(), ShouldBeFalse)
		})

		Convey("When adding a player", func() {
			err := b.Add(mustPlayer(c, 26))
			So(err, ShouldBeNil)

			Convey("Then the price is charged", func() {
				So(b.Remaining(), ShouldEqual, catalog.Price(860))
				So(b.Contains(26), ShouldBeTrue)
				So(b.CountByPosition()[catalog.Forward], ShouldEqual, 1)
				So(b.CountByClub()["MCI"], ShouldEqual, 1)
			})

			Convey("And adding the same player again is rejected without change", func() {
				err := b.Add(mustPlayer(c, 26))
				So(errors.Is(err, roster.ErrAlreadyPicked), ShouldBeTrue)
				So(b.Len(), ShouldEqual, 1)
				So(b.Remaining(), ShouldEqual, catalog.Price(860))
			})
		})

		Convey("When a club already has three players", func() {
			for _, id := range []int{1, 6, 11} {
				So(b.Add(mustPlayer(c, id)), ShouldBeNil)
			}
			err := b.Add(mustPlayer(c, 16))
			So(errors.Is(err, roster.ErrClubLimit), ShouldBeTrue)
			So(b.Len(), ShouldEqual, 3)
		})

		Convey("When a position quota is met", func() {
			So(b.Add(mustPlayer(c, 1)), ShouldBeNil)
			So(b.Add(mustPlayer(c, 2)), ShouldBeNil)
			err := b.Add(mustPlayer(c, 3))
			So(errors.Is(err, roster.ErrPositionFull), ShouldBeTrue)
			So(b.CountByPosition()[catalog.Goalkeeper], ShouldEqual, 2)
		})

		Convey("When the budget cannot cover the player", func() {
			small := roster.New(roster.WithBudget(100))
			err := small.Add(mustPlayer(c, 26))
			So(errors.Is(err, roster.ErrOverBudget), ShouldBeTrue)
			So(small.Len(), ShouldEqual, 0)
			So(small.Remaining(), ShouldEqual, catalog.Price(100))
		})

		Convey("When the squad is complete", func() {
			for _, id := range fallbackSquad {
				So(b.Add(mustPlayer(c, id)), ShouldBeNil)
			}

			Convey("Then it reports complete", func() {
				So(b.Complete(), ShouldBeTrue)
				So(b.Spent(), ShouldEqual, catalog.Price(965))
				So(b.Remaining(), ShouldEqual, catalog.Price(35))
			})

			Convey("And a sixteenth add is rejected", func() {
				err := b.Add(mustPlayer(c, 4))
				So(errors.Is(err, roster.ErrSquadFull), ShouldBeTrue)
				So(b.Len(), ShouldEqual, roster.SquadSize)
			})
		})
	})
}

func TestBuilder_Remove(t *testing.T) {
	c := catalog.Default()

	Convey("Given a builder with two players", t, func() {
		b := roster.New()
		So(b.Add(mustPlayer(c, 16)), ShouldBeNil)
		So(b.Add(mustPlayer(c, 26)), ShouldBeNil)

		Convey("When removing one", func() {
			ok := b.Remove(16)

			Convey("Then the price is refunded", func() {
				So(ok, ShouldBeTrue)
				So(b.Remaining(), ShouldEqual, catalog.Budget-140)
				So(b.Players(), ShouldHaveLength, 1)
				So(b.CountByClub(), ShouldNotContainKey, catalog.Club("LIV"))
			})
		})

		Convey("When removing an absent player", func() {
			ok := b.Remove(1)
			So(ok, ShouldBeFalse)
			So(b.Len(), ShouldEqual, 2)
		})

		Convey("When resetting", func() {
			b.Reset()
			So(b.Len(), ShouldEqual, 0)
			So(b.Remaining(), ShouldEqual, catalog.Budget)
		})
	})
}

func TestBuilder_Invariants(t *testing.T) {
	c := catalog.Default()
	all := c.All()

	Convey("Given random add and remove sequences", t, func() {
		rng := rand.New(rand.NewSource(7))

		for round := 0; round < 50; round++ {
			b := roster.New()
			for step := 0; step < 200; step++ {
				p := all[rng.Intn(len(all))]
				if rng.Intn(3) == 0 {
					b.Remove(p.ID)
				} else {
					_ = b.Add(p)
				}

				players := b.Players()
				So(b.Remaining(), ShouldEqual, catalog.Budget-spentOf(players))
				So(len(players), ShouldBeLessThanOrEqualTo, roster.SquadSize)
				for pos, n := range b.CountByPosition() {
					So(n, ShouldBeLessThanOrEqualTo, catalog.SquadQuota[pos])
				}
				for _, n := range b.CountByClub() {
					So(n, ShouldBeLessThanOrEqualTo, roster.MaxPerClub)
				}
				So(b.Remaining(), ShouldBeGreaterThanOrEqualTo, catalog.Price(0))
			}
		}
	})
}

func TestBuilder_Constraints(t *testing.T) {
	c := catalog.Default()

	Convey("Given a partial squad", t, func() {
		b := roster.New()
		So(b.Add(mustPlayer(c, 1)), ShouldBeNil)
		So(b.Add(mustPlayer(c, 2)), ShouldBeNil)

		rep := b.Constraints()

		Convey("Then goalkeepers are complete and the rest incomplete", func() {
			So(rep.Complete, ShouldBeFalse)
			So(rep.Constraints[0].Name, ShouldEqual, "Total Players")
			So(rep.Constraints[0].Status, ShouldEqual, roster.StatusIncomplete)
			So(rep.Constraints[1].Name, ShouldEqual, "Goalkeepers")
			So(rep.Constraints[1].Status, ShouldEqual, roster.StatusComplete)
			So(rep.Constraints[2].Status, ShouldEqual, roster.StatusIncomplete)
			So(rep.Budget.Spent, ShouldEqual, catalog.Price(105))
			So(rep.ClubViolations, ShouldBeEmpty)
		})
	})
}
