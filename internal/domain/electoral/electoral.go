// Package electoral holds the electoral-vote apportionment and the
// plurality rule used to award it.
package electoral

import (
	"fmt"

	"github.com/michaelpowers8/Election-Simulation/internal/domain/party"
)

// NationalTotal is the size of the Electoral College.
const NationalTotal = 538

// TieBreak selects what happens when two or more parties share the top count.
type TieBreak string

const (
	// TieBreakOrder credits the first tied party in canonical order
	// (Republican, Democrat, Independent).
	TieBreakOrder TieBreak = "order"
	// TieBreakNone awards nothing; the credit is reported as unawarded.
	TieBreakNone TieBreak = "none"
)

// ParseTieBreak validates a configured tie policy. Empty means TieBreakOrder.
func ParseTieBreak(s string) (TieBreak, error) {
	switch TieBreak(s) {
	case "", TieBreakOrder:
		return TieBreakOrder, nil
	case TieBreakNone:
		return TieBreakNone, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTieBreak, s)
	}
}

// Plurality returns the party with the most votes. tied reports whether the
// top count was shared, in which case winner follows tb. With no votes at
// all there is no winner and no tie.
func Plurality(votes [party.Count]int64, tb TieBreak) (winner party.Party, tied bool) {
	winner = party.None
	var best int64
	for _, p := range party.All {
		switch v := votes[p]; {
		case v > best:
			winner, best, tied = p, v, false
		case v == best && v > 0:
			tied = true
		}
	}
	if tied && tb == TieBreakNone {
		return party.None, true
	}
	return winner, tied
}
