package roster

import "errors"

// Rejection reasons returned by Builder.Add. The builder state is unchanged
// whenever one of these is returned.
var (
	ErrSquadFull     = errors.New("squad already has 15 players")
	ErrAlreadyPicked = errors.New("player already in squad")
	ErrOverBudget    = errors.New("not enough budget remaining")
	ErrPositionFull  = errors.New("position quota already met")
	ErrClubLimit     = errors.New("club limit reached")
)
