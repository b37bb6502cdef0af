package seeder

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/okian/fplpicks/internal/domain/catalog"
	"github.com/okian/fplpicks/internal/domain/roster"
)

const maxAttempts = 200

// Generator builds random squads that satisfy every roster rule.
type Generator struct {
	rng   *rand.Rand
	byPos map[catalog.Position][]catalog.Player
}

// NewGenerator returns a generator over c seeded with seed.
func NewGenerator(c *catalog.Catalog, seed int64) *Generator {
	byPos := make(map[catalog.Position][]catalog.Player, len(catalog.Positions))
	for _, p := range c.All() {
		byPos[p.Position] = append(byPos[p.Position], p)
	}
	for pos := range byPos {
		ps := byPos[pos]
		sort.SliceStable(ps, func(i, j int) bool { return ps[i].Price < ps[j].Price })
	}
	return &Generator{
		rng:   rand.New(rand.NewSource(seed)), //nolint:gosec // reproducible squads
		byPos: byPos,
	}
}

// Squad returns one complete squad with a captain and vice-captain.
func (g *Generator) Squad() (Squad, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		b := roster.New()
		need := make(map[catalog.Position]int, len(catalog.SquadQuota))
		for pos, n := range catalog.SquadQuota {
			need[pos] = n
		}

		for _, pos := range catalog.Positions {
			for _, p := range g.shuffled(pos) {
				if need[pos] == 0 {
					break
				}
				if b.Remaining()-p.Price < g.reserve(b, need, pos) {
					continue
				}
				if b.Add(p) == nil {
					need[pos]--
				}
			}
		}
		if !b.Complete() {
			continue
		}

		players := b.Players()
		ids := make([]int, len(players))
		for i, p := range players {
			ids[i] = p.ID
		}
		c := g.rng.Intn(len(ids))
		v := (c + 1 + g.rng.Intn(len(ids)-1)) % len(ids)
		return Squad{Players: ids, CaptainID: ids[c], ViceCaptainID: ids[v]}, nil
	}
	return Squad{}, fmt.Errorf("%w after %d attempts", ErrNoSquad, maxAttempts)
}

// Squads returns n squads.
func (g *Generator) Squads(n int) ([]Squad, error) {
	out := make([]Squad, 0, n)
	for i := 0; i < n; i++ {
		s, err := g.Squad()
		if err != nil {
			return out, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (g *Generator) shuffled(pos catalog.Position) []catalog.Player {
	ps := append([]catalog.Player(nil), g.byPos[pos]...)
	g.rng.Shuffle(len(ps), func(i, j int) { ps[i], ps[j] = ps[j], ps[i] })
	return ps
}

// reserve is the cheapest cost of the slots still open once one more player
// at pos is taken. Club limits are ignored.
func (g *Generator) reserve(b *roster.Builder, need map[catalog.Position]int, pos catalog.Position) catalog.Price {
	var total catalog.Price
	for _, q := range catalog.Positions {
		n := need[q]
		if q == pos {
			n--
		}
		for _, p := range g.byPos[q] {
			if n <= 0 {
				break
			}
			if b.Contains(p.ID) {
				continue
			}
			total += p.Price
			n--
		}
	}
	return total
}
