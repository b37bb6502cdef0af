// Package catalog holds the static player reference data: positions, clubs,
// prices and the ordered player list used for search and name matching.
package catalog

import (
	"fmt"
	"strings"
)

// Position is a squad slot category.
type Position string

// Positions in squad display order.
const (
	Goalkeeper Position = "GKP"
	Defender   Position = "DEF"
	Midfielder Position = "MID"
	Forward    Position = "FWD"
)

// Positions lists every position in display order.
var Positions = []Position{Goalkeeper, Defender, Midfielder, Forward} //nolint:gochecknoglobals // fixed enumeration

// SquadQuota is the exact number of players per position in a complete squad.
var SquadQuota = map[Position]int{ //nolint:gochecknoglobals // fixed rules
	Goalkeeper: 2,
	Defender:   5,
	Midfielder: 5,
	Forward:    3,
}

// Valid reports whether p is one of the four positions.
func (p Position) Valid() bool {
	_, ok := SquadQuota[p]
	return ok
}

// Label returns the plural display name used in constraint reports.
func (p Position) Label() string {
	switch p {
	case Goalkeeper:
		return "Goalkeepers"
	case Defender:
		return "Defenders"
	case Midfielder:
		return "Midfielders"
	case Forward:
		return "Forwards"
	default:
		return string(p)
	}
}

// ParsePosition parses a position code case-insensitively.
func ParsePosition(s string) (Position, error) {
	p := Position(strings.ToUpper(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPosition, s)
	}
	return p, nil
}

// Club is a three-letter club code.
type Club string

// Player is immutable reference data for one selectable player.
type Player struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Club     Club     `json:"team"`
	Position Position `json:"position"`
	Price    Price    `json:"price"`
}

// Catalog is an ordered, read-only player table. Order is significant:
// name matching takes the first declared entry.
type Catalog struct {
	players []Player
	byID    map[int]int
}

// New validates players and builds a Catalog preserving their order.
func New(players []Player) (*Catalog, error) {
	c := &Catalog{
		players: make([]Player, 0, len(players)),
		byID:    make(map[int]int, len(players)),
	}
	for _, p := range players {
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicatePlayer, p.ID)
		}
		if !p.Position.Valid() {
			return nil, fmt.Errorf("player %d: %w: %q", p.ID, ErrInvalidPosition, p.Position)
		}
		if !KnownClub(p.Club) {
			return nil, fmt.Errorf("player %d: %w: %q", p.ID, ErrUnknownClub, p.Club)
		}
		if p.Price < 0 {
			return nil, fmt.Errorf("player %d: %w", p.ID, ErrInvalidPrice)
		}
		c.byID[p.ID] = len(c.players)
		c.players = append(c.players, p)
	}
	return c, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(defaultPlayers)
	if err != nil {
		panic("catalog: invalid built-in player table: " + err.Error())
	}
	return c
}

// All returns a copy of every player in declaration order.
func (c *Catalog) All() []Player {
	out := make([]Player, len(c.players))
	copy(out, c.players)
	return out
}

// Len returns the number of players.
func (c *Catalog) Len() int { return len(c.players) }

// Get looks a player up by id.
func (c *Catalog) Get(id int) (Player, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Player{}, false
	}
	return c.players[i], true
}

// Lookup is Get returning ErrPlayerNotFound for unknown ids.
func (c *Catalog) Lookup(id int) (Player, error) {
	p, ok := c.Get(id)
	if !ok {
		return Player{}, fmt.Errorf("%w: %d", ErrPlayerNotFound, id)
	}
	return p, nil
}

// Search filters by a case-insensitive substring of name or club code and
// an optional position. An empty query matches everyone.
func (c *Catalog) Search(query string, pos Position) []Player {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Player, 0, len(c.players))
	for _, p := range c.players {
		if pos != "" && p.Position != pos {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(string(p.Club)), q) {
			continue
		}
		out = append(out, p)
	}
	return out
}
