package roster

import (
	"sort"

	"github.com/okian/fplpicks/internal/domain/catalog"
)

// Status of a single constraint line.
type Status string

// Constraint statuses.
const (
	StatusComplete   Status = "complete"
	StatusIncomplete Status = "incomplete"
	StatusInvalid    Status = "invalid"
)

// Constraint is one row of the squad checklist.
type Constraint struct {
	Name     string `json:"name"`
	Current  int    `json:"current"`
	Required int    `json:"required"`
	Status   Status `json:"status"`
}

// BudgetLine summarises spending.
type BudgetLine struct {
	Total     catalog.Price `json:"total"`
	Spent     catalog.Price `json:"spent"`
	Remaining catalog.Price `json:"remaining"`
	Status    Status        `json:"status"`
}

// ClubViolation names a club represented more than MaxPerClub times.
type ClubViolation struct {
	Club  catalog.Club `json:"club"`
	Count int          `json:"count"`
}

// Report is the full checklist for a squad.
type Report struct {
	Constraints    []Constraint    `json:"constraints"`
	Budget         BudgetLine      `json:"budget"`
	ClubViolations []ClubViolation `json:"club_violations"`
	Complete       bool            `json:"complete"`
}

// Constraints builds the checklist shown next to the squad.
func (b *Builder) Constraints() Report {
	total := StatusIncomplete
	switch {
	case len(b.players) == SquadSize:
		total = StatusComplete
	case len(b.players) > SquadSize:
		total = StatusInvalid
	}

	rows := make([]Constraint, 0, 1+len(catalog.Positions))
	rows = append(rows, Constraint{Name: "Total Players", Current: len(b.players), Required: SquadSize, Status: total})
	for _, pos := range catalog.Positions {
		want := catalog.SquadQuota[pos]
		got := b.positions[pos]
		st := StatusIncomplete
		switch {
		case got == want:
			st = StatusComplete
		case got > want:
			st = StatusInvalid
		}
		rows = append(rows, Constraint{Name: pos.Label(), Current: got, Required: want, Status: st})
	}

	budget := BudgetLine{Total: b.budget, Spent: b.Spent(), Remaining: b.remaining, Status: StatusIncomplete}
	switch {
	case b.remaining < 0:
		budget.Status = StatusInvalid
	case b.remaining == 0:
		budget.Status = StatusComplete
	}

	violations := make([]ClubViolation, 0)
	for c, n := range b.clubs {
		if n > MaxPerClub {
			violations = append(violations, ClubViolation{Club: c, Count: n})
		}
	}
	sort.Slice(violations, func(i, j int) bool { return violations[i].Club < violations[j].Club })

	return Report{
		Constraints:    rows,
		Budget:         budget,
		ClubViolations: violations,
		Complete:       b.Complete(),
	}
}
