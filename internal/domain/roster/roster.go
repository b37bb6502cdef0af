// Package roster implements the squad builder: a 15-player selection kept
// within budget, position quotas and the per-club cap.
package roster

import (
	"fmt"

	"github.com/okian/fplpicks/internal/domain/catalog"
)

// Squad rules.
const (
	SquadSize     = 15
	MaxPerClub    = 3
	DefaultBudget = catalog.Budget
)

// Builder holds one in-progress squad. It is not safe for concurrent use;
// callers serialise access per session.
type Builder struct {
	budget    catalog.Price
	remaining catalog.Price
	players   []catalog.Player
	index     map[int]int
	positions map[catalog.Position]int
	clubs     map[catalog.Club]int
}

// Option configures a Builder.
type Option func(*Builder)

// WithBudget overrides the spending cap.
func WithBudget(budget catalog.Price) Option {
	return func(b *Builder) {
		if budget > 0 {
			b.budget = budget
		}
	}
}

// New returns an empty builder with the full budget remaining.
func New(opts ...Option) *Builder {
	b := &Builder{budget: DefaultBudget}
	for _, opt := range opts {
		opt(b)
	}
	b.Reset()
	return b
}

// Reset empties the squad and restores the full budget.
func (b *Builder) Reset() {
	b.remaining = b.budget
	b.players = make([]catalog.Player, 0, SquadSize)
	b.index = make(map[int]int, SquadSize)
	b.positions = make(map[catalog.Position]int, len(catalog.Positions))
	b.clubs = make(map[catalog.Club]int)
}

// Add inserts p and charges its price. It is a no-op returning the reason
// when the squad is full, p is already picked, the budget cannot cover p,
// p's position quota is met, or p's club already has MaxPerClub players.
func (b *Builder) Add(p catalog.Player) error {
	switch {
	case len(b.players) >= SquadSize:
		return ErrSquadFull
	case b.Contains(p.ID):
		return fmt.Errorf("%w: %d", ErrAlreadyPicked, p.ID)
	case b.remaining < p.Price:
		return fmt.Errorf("%w: need %s, have %s", ErrOverBudget, p.Price, b.remaining)
	case b.positions[p.Position] >= catalog.SquadQuota[p.Position]:
		return fmt.Errorf("%w: %s", ErrPositionFull, p.Position)
	case b.clubs[p.Club] >= MaxPerClub:
		return fmt.Errorf("%w: %s", ErrClubLimit, p.Club)
	}

	b.index[p.ID] = len(b.players)
	b.players = append(b.players, p)
	b.positions[p.Position]++
	b.clubs[p.Club]++
	b.remaining -= p.Price
	return nil
}

// Remove drops the player with id and refunds the price. It reports whether
// the player was present.
func (b *Builder) Remove(id int) bool {
	i, ok := b.index[id]
	if !ok {
		return false
	}
	p := b.players[i]
	b.players = append(b.players[:i], b.players[i+1:]...)
	delete(b.index, id)
	for j := i; j < len(b.players); j++ {
		b.index[b.players[j].ID] = j
	}
	b.positions[p.Position]--
	b.clubs[p.Club]--
	if b.clubs[p.Club] == 0 {
		delete(b.clubs, p.Club)
	}
	b.remaining += p.Price
	return true
}

// Contains reports whether id is in the squad.
func (b *Builder) Contains(id int) bool {
	_, ok := b.index[id]
	return ok
}

// Players returns a copy of the squad in insertion order.
func (b *Builder) Players() []catalog.Player {
	out := make([]catalog.Player, len(b.players))
	copy(out, b.players)
	return out
}

// Len returns the number of picked players.
func (b *Builder) Len() int { return len(b.players) }

// Budget returns the spending cap.
func (b *Builder) Budget() catalog.Price { return b.budget }

// Remaining returns the unspent budget.
func (b *Builder) Remaining() catalog.Price { return b.remaining }

// Spent returns the total price of the squad.
func (b *Builder) Spent() catalog.Price { return b.budget - b.remaining }

// CountByPosition returns the number of players per position, including zeros.
func (b *Builder) CountByPosition() map[catalog.Position]int {
	out := make(map[catalog.Position]int, len(catalog.Positions))
	for _, pos := range catalog.Positions {
		out[pos] = b.positions[pos]
	}
	return out
}

// CountByClub returns the number of players per represented club.
func (b *Builder) CountByClub() map[catalog.Club]int {
	out := make(map[catalog.Club]int, len(b.clubs))
	for c, n := range b.clubs {
		out[c] = n
	}
	return out
}

// Complete reports whether the squad has exactly SquadSize players and
// every position quota is met exactly.
func (b *Builder) Complete() bool {
	if len(b.players) != SquadSize {
		return false
	}
	for pos, want := range catalog.SquadQuota {
		if b.positions[pos] != want {
			return false
		}
	}
	return true
}
