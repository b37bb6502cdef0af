package seeder

import "fmt"

// verify checks the community count moved by exactly the accepted squads and,
// on an empty period, that the top captain agrees with a local tally.
func verify(stats *Stats, accepted []Squad) error {
	if got := stats.After - stats.Before; got != len(accepted) {
		return fmt.Errorf("%w: %d new submissions, %d accepted", ErrVerification, got, len(accepted))
	}
	if stats.Before != 0 || len(accepted) == 0 {
		return nil
	}
	if want := topCaptain(accepted); stats.TopCaptain != want {
		return fmt.Errorf("%w: top captain %d, expected %d", ErrVerification, stats.TopCaptain, want)
	}
	return nil
}

// topCaptain returns the most captained id, lowest id on ties.
func topCaptain(squads []Squad) int {
	counts := make(map[int]int)
	for _, s := range squads {
		counts[s.CaptainID]++
	}
	best, bestN := 0, 0
	for id, n := range counts {
		if n > bestN || (n == bestN && id < best) {
			best, bestN = id, n
		}
	}
	return best
}
