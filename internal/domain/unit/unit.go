// Package unit simulates one electoral unit (a state or a congressional
// district) for one round.
package unit

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/michaelpowers8/Election-Simulation/internal/domain/ballot"
	"github.com/michaelpowers8/Election-Simulation/internal/domain/electoral"
	"github.com/michaelpowers8/Election-Simulation/internal/domain/model"
	"github.com/michaelpowers8/Election-Simulation/internal/domain/party"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultRegistrationJitter is the half-width of the multiplicative noise
// applied to a unit's registered share each round.
const DefaultRegistrationJitter = 0.02

// Unit is read-only reference data for one electorate.
type Unit struct {
	Name           string
	Parent         string
	ElectoralVotes int
	Baseline       party.Popularity

	// RegisteredVoters is the fallback size of the electorate.
	RegisteredVoters int64
	// RegisteredShare is the fraction of the population registered to vote.
	RegisteredShare float64
	// Population is the projected population by year.
	Population map[int]int64
}

// Validate reports a unit that cannot be simulated.
func (u Unit) Validate() error {
	switch {
	case u.Name == "":
		return fmt.Errorf("%w: missing name", ErrInvalidUnit)
	case u.ElectoralVotes < 0:
		return fmt.Errorf("%w: %s has %d electoral votes", ErrInvalidUnit, u.Name, u.ElectoralVotes)
	case u.RegisteredVoters < 0:
		return fmt.Errorf("%w: %s has %d registered voters", ErrInvalidUnit, u.Name, u.RegisteredVoters)
	case math.IsNaN(u.RegisteredShare) || u.RegisteredShare < 0:
		return fmt.Errorf("%w: %s has registered share %v", ErrInvalidUnit, u.Name, u.RegisteredShare)
	case !u.Baseline.Finite():
		return fmt.Errorf("%w: %s has a non-finite baseline", ErrInvalidUnit, u.Name)
	}
	for year, n := range u.Population {
		if n < 0 {
			return fmt.Errorf("%w: %s has population %d in %d", ErrInvalidUnit, u.Name, n, year)
		}
	}
	return nil
}

// Projected reports whether u has a population projection for year.
func (u Unit) Projected(year int) bool {
	_, ok := u.Population[year]
	return ok
}

// Conditions are the round-wide inputs shared by every unit.
type Conditions struct {
	Round    int
	Year     int
	Swing    party.Popularity
	Turnout  float64
	Jitter   float64
	TieBreak electoral.TieBreak
	Sampler  *ballot.Sampler
	Mode     ballot.Mode
}

func (c Conditions) validate() error {
	if math.IsNaN(c.Turnout) || c.Turnout < 0 || c.Turnout > 1 {
		return fmt.Errorf("%w: turnout %v outside [0, 1]", ErrInvalidUnit, c.Turnout)
	}
	if !c.Swing.Finite() {
		return fmt.Errorf("%w: non-finite swing", ErrInvalidUnit)
	}
	if c.Sampler == nil {
		return fmt.Errorf("%w: no sampler", ErrInvalidUnit)
	}
	return nil
}

// Sizing is the output of the SIZING step.
type Sizing struct {
	Eligible    int64
	VotesToCast int64
}

// Size computes the electorate and the number of voters who turn out.
// When population data exists for the year the electorate is
// population × registered share × U(1-jitter, 1+jitter); a unit without
// any projections uses its registered-voter count.
func Size(u Unit, c Conditions, r *rand.Rand) Sizing {
	eligible := u.RegisteredVoters
	if pop, ok := u.Population[c.Year]; ok && u.RegisteredShare > 0 {
		noise := 1.0
		if c.Jitter > 0 {
			noise = distuv.Uniform{Min: 1 - c.Jitter, Max: 1 + c.Jitter, Src: r}.Rand()
		}
		eligible = int64(math.Round(float64(pop) * u.RegisteredShare * noise))
	}
	return Sizing{
		Eligible:    eligible,
		VotesToCast: int64(math.Round(float64(eligible) * c.Turnout)),
	}
}

// Vote runs the VOTING step on the adjusted popularity.
func Vote(s Sizing, p party.Popularity, c Conditions, r *rand.Rand) ballot.Tally {
	return c.Sampler.Sample(c.Mode, s.VotesToCast, p, r)
}

// Tally runs the TALLIED step and builds the unit's result.
func Tally(u Unit, c Conditions, s Sizing, n party.Normalization, t ballot.Tally) model.UnitRoundResult {
	res := model.UnitRoundResult{
		Round:          c.Round,
		Unit:           u.Name,
		Parent:         u.Parent,
		ElectoralVotes: u.ElectoralVotes,
		Eligible:       s.Eligible,
		VotesToCast:    s.VotesToCast,
		Votes:          t.Votes,
		Abstentions:    t.Abstentions(),
		Winner:         party.None,
		Popularity:     n.Popularity,
		Normalization:  n.Outcome,
	}
	if t.Cast() == 0 {
		res.NoData = true
		return res
	}
	res.Winner, res.Tied = electoral.Plurality(t.Votes, c.TieBreak)
	if res.Winner != party.None {
		res.Credit[res.Winner] = u.ElectoralVotes
	}
	return res
}

// Simulate runs SIZING, VOTING and TALLIED for one unit. It is a pure
// function of its arguments and the state of r. A unit with nobody to
// vote yields a NoData result with no winner.
func Simulate(u Unit, c Conditions, r *rand.Rand) (model.UnitRoundResult, error) {
	if err := u.Validate(); err != nil {
		return model.UnitRoundResult{}, err
	}
	if err := c.validate(); err != nil {
		return model.UnitRoundResult{}, err
	}
	if len(u.Population) > 0 && !u.Projected(c.Year) {
		return model.UnitRoundResult{}, fmt.Errorf("%w: %s has no population projection for %d", ErrInvalidUnit, u.Name, c.Year)
	}

	sizing := Size(u, c, r)
	norm := party.Normalize(u.Baseline.Add(c.Swing))
	tally := Vote(sizing, norm.Popularity, c, r)
	return Tally(u, c, sizing, norm, tally), nil
}
