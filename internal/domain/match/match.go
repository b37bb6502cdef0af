// Package match resolves free-text player names to catalog entries and fits
// the matches under the squad budget.
package match

import (
	"strings"

	"github.com/okian/fplpicks/internal/domain/catalog"
)

// DefaultLimit caps how many names are resolved in one call.
const DefaultLimit = 15

// Result is the outcome of Match.
type Result struct {
	// Matched are all resolved players before the budget fit.
	Matched []catalog.Player `json:"matched"`
	// Players fit the budget, in the order their names were given.
	Players []catalog.Player `json:"players"`
	// Dropped were matched but did not fit the budget.
	Dropped []catalog.Player `json:"dropped"`
	// Unmatched names had no catalog entry.
	Unmatched []string `json:"unmatched"`
	// Skipped names resolved to a player already in the squad or matched by
	// an earlier name.
	Skipped []string `json:"skipped"`
	// Total is the price of Players.
	Total     catalog.Price `json:"total"`
	Remaining catalog.Price `json:"remaining"`
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithBudget overrides the fitting budget.
func WithBudget(b catalog.Price) Option {
	return func(m *Matcher) {
		if b > 0 {
			m.budget = b
		}
	}
}

// WithLimit overrides the match cap.
func WithLimit(n int) Option {
	return func(m *Matcher) {
		if n > 0 {
			m.limit = n
		}
	}
}

// Matcher resolves names against a catalog. It is safe for concurrent use.
type Matcher struct {
	players []catalog.Player
	lower   []string
	budget  catalog.Price
	limit   int
}

// New builds a Matcher over c.
func New(c *catalog.Catalog, opts ...Option) *Matcher {
	players := c.All()
	lower := make([]string, len(players))
	for i, p := range players {
		lower[i] = strings.ToLower(p.Name)
	}
	m := &Matcher{
		players: players,
		lower:   lower,
		budget:  catalog.Budget,
		limit:   DefaultLimit,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Find returns the first catalog player, in catalog order, whose name
// contains name or is contained in it, ignoring case.
func (m *Matcher) Find(name string) (catalog.Player, bool) {
	q := strings.ToLower(strings.TrimSpace(name))
	if q == "" {
		return catalog.Player{}, false
	}
	for i, p := range m.players {
		if strings.Contains(m.lower[i], q) || strings.Contains(q, m.lower[i]) {
			return p, true
		}
	}
	return catalog.Player{}, false
}

// Match resolves each name to its first catalog match. A name whose match is
// in existing or was matched by an earlier name is skipped, never re-resolved
// to a later entry. Matching stops at the limit and the matches are then
// fitted to the budget.
func (m *Matcher) Match(names []string, existing []int) Result {
	taken := make(map[int]struct{}, len(existing)+m.limit)
	for _, id := range existing {
		taken[id] = struct{}{}
	}

	res := Result{Unmatched: []string{}, Skipped: []string{}}
	matched := make([]catalog.Player, 0, m.limit)
	for _, name := range names {
		if len(matched) >= m.limit {
			break
		}
		p, ok := m.Find(name)
		if !ok {
			res.Unmatched = append(res.Unmatched, name)
			continue
		}
		if _, dup := taken[p.ID]; dup {
			res.Skipped = append(res.Skipped, name)
			continue
		}
		taken[p.ID] = struct{}{}
		matched = append(matched, p)
	}

	res.Matched = matched
	res.Players, res.Dropped = Fit(matched, m.budget)
	for _, p := range res.Players {
		res.Total += p.Price
	}
	res.Remaining = m.budget - res.Total
	return res
}

// Fit keeps every player when their total is within budget. Otherwise it
// walks the list in order and keeps each player whose price still fits the
// remaining budget, skipping the rest.
func Fit(players []catalog.Player, budget catalog.Price) (kept, dropped []catalog.Player) {
	var total catalog.Price
	for _, p := range players {
		total += p.Price
	}
	kept = make([]catalog.Player, 0, len(players))
	dropped = []catalog.Player{}
	if total <= budget {
		return append(kept, players...), dropped
	}

	remaining := budget
	for _, p := range players {
		if p.Price <= remaining {
			kept = append(kept, p)
			remaining -= p.Price
			continue
		}
		dropped = append(dropped, p)
	}
	return kept, dropped
}
