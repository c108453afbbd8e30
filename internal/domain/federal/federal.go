// Package federal sums one round of unit results into the national record.
package federal

import (
	"github.com/michaelpowers8/Election-Simulation/internal/domain/model"
)

// Aggregate builds the national result for a round. Popular votes are
// summed over sampled units only; combined split-state rows add electoral
// credit but no votes, since their districts already counted them.
// Electoral votes of total not credited to any party are Unawarded.
func Aggregate(round int, turnout float64, total int, results []model.UnitRoundResult, skipped int) model.NationalRoundResult {
	n := model.NationalRoundResult{
		Round:   round,
		Turnout: turnout,
		Skipped: skipped,
	}
	credited := 0
	for _, r := range results {
		for i, c := range r.Credit {
			n.ElectoralVotes[i] += c
			credited += c
		}
		if r.Combined {
			continue
		}
		for i, v := range r.Votes {
			n.Votes[i] += v
		}
		n.Eligible += r.Eligible
		n.TotalVotes += r.TotalVotes()
	}
	n.Unawarded = total - credited
	return n
}
