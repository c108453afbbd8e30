// Package model contains the round records passed between layers.
package model

import "github.com/michaelpowers8/Election-Simulation/internal/domain/party"

// UnitRoundResult is one unit's outcome for one round. It is created once
// and never mutated after it leaves the simulation.
type UnitRoundResult struct {
	Round          int
	Unit           string
	Parent         string // set for congressional districts
	ElectoralVotes int    // weight of the unit in the apportionment
	Eligible       int64  // registered voters after sizing
	VotesToCast    int64  // eligible voters who turned out
	Votes          [party.Count]int64
	Abstentions    int64
	Winner         party.Party // party.None when nobody won
	Tied           bool
	Credit         [party.Count]int // electoral votes credited this round
	NoData         bool             // no votes were cast
	Combined       bool             // derived from district results, not sampled

	Popularity    party.Popularity // adjusted and normalized
	Normalization party.Outcome
}

// TotalVotes is the number of votes cast for any party.
func (r UnitRoundResult) TotalVotes() int64 {
	return r.Votes[0] + r.Votes[1] + r.Votes[2]
}

// Percent is p's share of the votes cast. ok is false when no votes were cast.
func (r UnitRoundResult) Percent(p party.Party) (share float64, ok bool) {
	return percent(r.Votes, p)
}

// Credited is the number of electoral votes this row awards.
func (r UnitRoundResult) Credited() int {
	return r.Credit[0] + r.Credit[1] + r.Credit[2]
}

// NationalRoundResult is the national aggregate of one round.
type NationalRoundResult struct {
	Round          int
	Turnout        float64
	Eligible       int64
	TotalVotes     int64
	Votes          [party.Count]int64
	ElectoralVotes [party.Count]int
	// Unawarded is electoral votes withheld by the tie policy or held by
	// units without data or skipped this round.
	Unawarded int
	// Skipped counts units dropped from the round.
	Skipped int
}

// Percent is p's share of the national vote. ok is false when no votes were cast.
func (n NationalRoundResult) Percent(p party.Party) (share float64, ok bool) {
	return percent(n.Votes, p)
}

// Winner is the party with the most electoral votes, party.None on a tie
// or when nothing was awarded.
func (n NationalRoundResult) Winner() party.Party {
	winner, best, tied := party.None, 0, false
	for _, p := range party.All {
		switch ev := n.ElectoralVotes[p]; {
		case ev > best:
			winner, best, tied = p, ev, false
		case ev == best && ev > 0:
			tied = true
		}
	}
	if tied {
		return party.None
	}
	return winner
}

// Skip records a unit that produced no result in a round.
type Skip struct {
	Unit   string
	Reason string
}

// Round is everything produced by one simulated round.
type Round struct {
	Number   int
	Swing    party.Popularity
	Turnout  float64
	Units    []UnitRoundResult
	National NationalRoundResult
	Skipped  []Skip
}

func percent(votes [party.Count]int64, p party.Party) (float64, bool) {
	total := votes[0] + votes[1] + votes[2]
	if total == 0 || !p.Valid() {
		return 0, false
	}
	return float64(votes[p]) / float64(total), true
}
