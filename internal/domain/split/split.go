// Package split combines congressional-district results of Maine and
// Nebraska into the electoral votes those states award.
//
// The state's at-large unit is never sampled on its own: its result is the
// sum of its districts' raw votes. Under PolicyDistrict, the default, the
// at-large votes go to the plurality of that sum and each district keeps the
// vote it won. PolicyCombined is winner-take-all: the state's at-large and
// district votes all follow the combined plurality.
package split

import (
	"fmt"

	"github.com/michaelpowers8/Election-Simulation/internal/domain/electoral"
	"github.com/michaelpowers8/Election-Simulation/internal/domain/model"
	"github.com/michaelpowers8/Election-Simulation/internal/domain/party"
)

// Policy selects how a split state's electoral votes are awarded.
type Policy string

const (
	// PolicyDistrict awards each district's vote to its own plurality and
	// the at-large votes to the combined plurality.
	PolicyDistrict Policy = "district"
	// PolicyCombined awards at-large and district votes to the plurality of
	// the combined district vote.
	PolicyCombined Policy = "combined"
)

// ParsePolicy validates a configured policy. Empty means PolicyDistrict.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyDistrict:
		return PolicyDistrict, nil
	case PolicyCombined:
		return PolicyCombined, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// Aggregator applies a split policy to one round of results.
type Aggregator struct {
	table    electoral.Apportionment
	policy   Policy
	tieBreak electoral.TieBreak
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithPolicy sets the split policy.
func WithPolicy(p Policy) Option {
	return func(a *Aggregator) {
		a.policy = p
	}
}

// WithTieBreak sets the tie policy used on the combined vote.
func WithTieBreak(tb electoral.TieBreak) Option {
	return func(a *Aggregator) {
		a.tieBreak = tb
	}
}

// New returns an Aggregator over table.
func New(table electoral.Apportionment, opts ...Option) *Aggregator {
	a := &Aggregator{
		table:    table,
		policy:   PolicyDistrict,
		tieBreak: electoral.TieBreakOrder,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Policy reports the configured policy.
func (a *Aggregator) Policy() Policy { return a.policy }

// Combination is a split state's combined row and its re-issued districts.
type Combination struct {
	State     model.UnitRoundResult
	Districts []model.UnitRoundResult
}

// Combine sums the districts of state and awards its electoral votes.
// Missing districts are left out of the sum; their votes stay unawarded.
func (a *Aggregator) Combine(round int, state electoral.Seat, districts []model.UnitRoundResult) Combination {
	row := model.UnitRoundResult{
		Round:          round,
		Unit:           state.Unit,
		ElectoralVotes: state.Votes,
		Winner:         party.None,
		Combined:       true,
	}
	out := make([]model.UnitRoundResult, len(districts))
	copy(out, districts)

	for _, d := range districts {
		for i, v := range d.Votes {
			row.Votes[i] += v
		}
		row.Eligible += d.Eligible
		row.VotesToCast += d.VotesToCast
		row.Abstentions += d.Abstentions
	}

	if a.policy == PolicyCombined {
		for i := range out {
			row.ElectoralVotes += out[i].ElectoralVotes
			out[i].Credit = [party.Count]int{}
		}
	}

	if row.TotalVotes() == 0 {
		row.NoData = true
		return Combination{State: row, Districts: out}
	}
	row.Winner, row.Tied = electoral.Plurality(row.Votes, a.tieBreak)
	if row.Winner != party.None {
		row.Credit[row.Winner] = row.ElectoralVotes
	}
	return Combination{State: row, Districts: out}
}

// Apply replaces the districts of every split state in results with their
// re-issued rows followed by the state's combined row. Other rows pass
// through in order.
func (a *Aggregator) Apply(round int, results []model.UnitRoundResult) []model.UnitRoundResult {
	last := make(map[string]int)
	for i, r := range results {
		if r.Parent != "" {
			last[r.Parent] = i
		}
	}
	if len(last) == 0 {
		return results
	}

	out := make([]model.UnitRoundResult, 0, len(results)+len(last))
	for i, r := range results {
		if r.Parent == "" {
			out = append(out, r)
			continue
		}
		if last[r.Parent] != i {
			continue
		}
		var districts []model.UnitRoundResult
		for _, d := range results[:i+1] {
			if d.Parent == r.Parent {
				districts = append(districts, d)
			}
		}
		seat, ok := a.table.Lookup(r.Parent)
		if !ok {
			seat = electoral.Seat{Unit: r.Parent}
		}
		c := a.Combine(round, seat, districts)
		out = append(out, c.Districts...)
		out = append(out, c.State)
	}
	return out
}
