// Package ballot samples individual voter choices from a normalized
// popularity vector, one voter at a time or in batches.
package ballot

import (
	"fmt"
	"math/rand/v2"

	"github.com/michaelpowers8/Election-Simulation/internal/domain/party"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultAbstentionRate is the base probability that a counted voter stays
// home. A voter abstains when the first uniform draw exceeds 1 - rate.
const DefaultAbstentionRate = 0.02

// Mode selects how a unit's voters are sampled.
type Mode string

const (
	// ModeBatched samples all voters with binomial draws.
	ModeBatched Mode = "batched"
	// ModePerVoter draws every voter individually.
	ModePerVoter Mode = "per_voter"
)

// ParseMode validates a configured sampling mode. Empty means ModeBatched.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeBatched:
		return ModeBatched, nil
	case ModePerVoter:
		return ModePerVoter, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Choice is the outcome of a single voter draw.
type Choice int

const (
	Republican  = Choice(party.Republican)
	Democrat    = Choice(party.Democrat)
	Independent = Choice(party.Independent)
	// Abstain is a base abstention from the turnout draw.
	Abstain Choice = 3
	// Unassigned is a voter whose preference draw fell in the residual
	// mass above r+d+i. They cast no vote.
	Unassigned Choice = 4
)

// Party returns the party voted for, or false for either kind of abstention.
func (c Choice) Party() (party.Party, bool) {
	if c >= Republican && c <= Independent {
		return party.Party(c), true
	}
	return party.None, false
}

func (c Choice) String() string {
	switch c {
	case Abstain:
		return "Abstain"
	case Unassigned:
		return "Unassigned"
	default:
		return party.Party(c).String()
	}
}

// Sampler draws voter choices.
type Sampler struct {
	AbstentionRate float64
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithAbstentionRate overrides the base abstention probability. Values
// outside [0, 1] are ignored.
func WithAbstentionRate(rate float64) Option {
	return func(s *Sampler) {
		if rate >= 0 && rate <= 1 {
			s.AbstentionRate = rate
		}
	}
}

// New returns a Sampler using DefaultAbstentionRate unless overridden.
func New(opts ...Option) *Sampler {
	s := &Sampler{AbstentionRate: DefaultAbstentionRate}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Draw samples one voter. The first draw u decides abstention (u > 1-rate).
// The second draw v is uniform on [0, 1) and is not scaled by r+d+i:
//
//	[0, r)          Republican
//	[r, r+d)        Democrat
//	[r+d, r+d+i)    Independent
//	[r+d+i, 1)      Unassigned
//
// p must already be normalized.
func (s *Sampler) Draw(p party.Popularity, r *rand.Rand) Choice {
	if r.Float64() > 1-s.AbstentionRate {
		return Abstain
	}
	v := r.Float64()
	switch {
	case v < p.Republican:
		return Republican
	case v < p.Republican+p.Democrat:
		return Democrat
	case v < p.Republican+p.Democrat+p.Independent:
		return Independent
	default:
		return Unassigned
	}
}

// Tally is the aggregate of a batch of voter draws.
type Tally struct {
	Votes [party.Count]int64
	// Abstained counts base abstentions.
	Abstained int64
	// Unassigned counts voters whose preference fell in the residual mass.
	Unassigned int64
}

// Add records a single choice.
func (t *Tally) Add(c Choice) {
	switch c {
	case Abstain:
		t.Abstained++
	case Unassigned:
		t.Unassigned++
	default:
		t.Votes[c]++
	}
}

// Cast is the number of votes actually cast for a party.
func (t Tally) Cast() int64 {
	return t.Votes[0] + t.Votes[1] + t.Votes[2]
}

// Abstentions is every voter who did not cast a vote.
func (t Tally) Abstentions() int64 {
	return t.Abstained + t.Unassigned
}

// Voters is the size of the batch.
func (t Tally) Voters() int64 {
	return t.Cast() + t.Abstentions()
}

// Sample draws n voters using mode.
func (s *Sampler) Sample(mode Mode, n int64, p party.Popularity, r *rand.Rand) Tally {
	if mode == ModePerVoter {
		return s.Loop(n, p, r)
	}
	return s.Tally(n, p, r)
}

// Loop draws n voters one at a time.
func (s *Sampler) Loop(n int64, p party.Popularity, r *rand.Rand) Tally {
	var t Tally
	for ; n > 0; n-- {
		t.Add(s.Draw(p, r))
	}
	return t
}

// Tally draws n voters in one batch. The base abstentions are Bin(n, rate);
// the rest are split multinomially by sequential conditional binomials in
// canonical party order. Counts have the same distribution as n calls to
// Draw but the cost does not grow with n.
func (s *Sampler) Tally(n int64, p party.Popularity, r *rand.Rand) Tally {
	var t Tally
	if n <= 0 {
		return t
	}
	t.Abstained = binomial(n, s.AbstentionRate, r)
	remaining := n - t.Abstained

	left := 1.0
	for i, share := range p.Array() {
		if remaining == 0 {
			break
		}
		k := binomial(remaining, conditional(share, left), r)
		t.Votes[i] = k
		remaining -= k
		left -= share
	}
	t.Unassigned = remaining
	return t
}

// conditional is share / left clamped to [0, 1].
func conditional(share, left float64) float64 {
	if share <= 0 {
		return 0
	}
	if left <= share {
		return 1
	}
	return share / left
}

func binomial(n int64, p float64, src rand.Source) int64 {
	switch {
	case n <= 0 || p <= 0:
		return 0
	case p >= 1:
		return n
	}
	b := distuv.Binomial{N: float64(n), P: p, Src: src}
	k := int64(b.Rand())
	return min(max(k, 0), n)
}
