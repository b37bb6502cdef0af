package catalog

import (
	"fmt"
	"math"
	"strconv"
)

// Price is an amount of budget in tenths of a unit (5.5 is stored as 55).
type Price int64

// Budget is the spending cap for a full squad (100.0 units).
const Budget Price = 1000

// PriceFromFloat converts a one-decimal amount to a Price, rounding to the nearest tenth.
func PriceFromFloat(v float64) Price {
	return Price(math.Round(v * 10))
}

// Float returns the price in budget units.
func (p Price) Float() float64 {
	return float64(p) / 10
}

func (p Price) String() string {
	return strconv.FormatFloat(p.Float(), 'f', 1, 64)
}

// MarshalJSON renders the price as a one-decimal number.
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalJSON accepts any JSON number and rounds to one decimal.
func (p *Price) UnmarshalJSON(b []byte) error {
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPrice, string(b))
	}
	if v < 0 {
		return fmt.Errorf("%w: negative %s", ErrInvalidPrice, string(b))
	}
	*p = PriceFromFloat(v)
	return nil
}
