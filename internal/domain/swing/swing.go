// Package swing draws the nationwide popularity shift applied to every unit
// in a round.
package swing

import (
	"fmt"
	"math/rand/v2"

	"github.com/michaelpowers8/Election-Simulation/internal/domain/party"
)

// Model names accepted by New.
const (
	ModelRange    = "range"
	ModelPairwise = "pairwise"
)

// Default half-widths of the independent-range model.
const (
	defaultMajorRange = 0.10
	defaultMinorRange = 0.025
)

// Generator produces one popularity delta per round.
type Generator interface {
	// Next draws a delta from r.
	Next(r *rand.Rand) party.Popularity
	// Expectation is the mean delta.
	Expectation() party.Popularity
	// Bounds are the component-wise extremes a delta can take.
	Bounds() (lo, hi party.Popularity)
}

// New returns the generator for a configured model name. majorRange and
// minorRange only apply to the range model; zero keeps the defaults.
func New(model string, majorRange, minorRange float64) (Generator, error) {
	switch model {
	case "", ModelRange:
		var opts []RangeOption
		if majorRange > 0 {
			opts = append(opts, WithMajorRange(majorRange))
		}
		if minorRange > 0 {
			opts = append(opts, WithMinorRange(minorRange))
		}
		return NewIndependentRange(opts...), nil
	case ModelPairwise:
		return NewPairwiseFlow(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, model)
	}
}

// IndependentRange draws each party's delta independently and uniformly from
// a symmetric range. Deltas have zero expectation but do not conserve mass.
type IndependentRange struct {
	Republican  float64
	Democrat    float64
	Independent float64
}

// RangeOption configures an IndependentRange.
type RangeOption func(*IndependentRange)

// WithMajorRange sets the half-width for both major parties.
func WithMajorRange(w float64) RangeOption {
	return func(g *IndependentRange) {
		if w >= 0 {
			g.Republican = w
			g.Democrat = w
		}
	}
}

// WithMinorRange sets the half-width for the independent share.
func WithMinorRange(w float64) RangeOption {
	return func(g *IndependentRange) {
		if w >= 0 {
			g.Independent = w
		}
	}
}

// NewIndependentRange returns the ±10% / ±10% / ±2.5% model unless overridden.
func NewIndependentRange(opts ...RangeOption) *IndependentRange {
	g := &IndependentRange{
		Republican:  defaultMajorRange,
		Democrat:    defaultMajorRange,
		Independent: defaultMinorRange,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Next draws Republican, Democrat then Independent, in that order.
func (g *IndependentRange) Next(r *rand.Rand) party.Popularity {
	return party.Popularity{
		Republican:  symmetric(r, g.Republican),
		Democrat:    symmetric(r, g.Democrat),
		Independent: symmetric(r, g.Independent),
	}
}

func (g *IndependentRange) Expectation() party.Popularity {
	return party.Popularity{}
}

func (g *IndependentRange) Bounds() (lo, hi party.Popularity) {
	hi = party.Popularity{Republican: g.Republican, Democrat: g.Democrat, Independent: g.Independent}
	lo = party.Popularity{Republican: -g.Republican, Democrat: -g.Democrat, Independent: -g.Independent}
	return lo, hi
}

func symmetric(r *rand.Rand, w float64) float64 {
	return (r.Float64()*2 - 1) * w
}

// Flow is voter migration from one party to another, drawn from U(0, Max).
type Flow struct {
	From party.Party
	To   party.Party
	Max  float64
}

// PairwiseFlow models the swing as six independent migrations between each
// ordered pair of parties. Every flow is debited from its source and
// credited to its destination, so deltas sum to zero.
type PairwiseFlow struct {
	Flows []Flow
}

// DefaultFlows are drawn in this order each round.
var DefaultFlows = []Flow{
	{From: party.Republican, To: party.Independent, Max: 0.10},
	{From: party.Republican, To: party.Democrat, Max: 0.05},
	{From: party.Democrat, To: party.Independent, Max: 0.10},
	{From: party.Democrat, To: party.Republican, Max: 0.05},
	{From: party.Independent, To: party.Democrat, Max: 0.10},
	{From: party.Independent, To: party.Republican, Max: 0.10},
}

// NewPairwiseFlow returns the model with the given flows, or DefaultFlows.
func NewPairwiseFlow(flows ...Flow) *PairwiseFlow {
	if len(flows) == 0 {
		flows = DefaultFlows
	}
	return &PairwiseFlow{Flows: append([]Flow(nil), flows...)}
}

func (g *PairwiseFlow) Next(r *rand.Rand) party.Popularity {
	var delta [party.Count]float64
	for _, f := range g.Flows {
		x := r.Float64() * f.Max
		delta[f.From] -= x
		delta[f.To] += x
	}
	return party.FromArray(delta)
}

func (g *PairwiseFlow) Expectation() party.Popularity {
	var delta [party.Count]float64
	for _, f := range g.Flows {
		delta[f.From] -= f.Max / 2
		delta[f.To] += f.Max / 2
	}
	return party.FromArray(delta)
}

func (g *PairwiseFlow) Bounds() (lo, hi party.Popularity) {
	var l, h [party.Count]float64
	for _, f := range g.Flows {
		l[f.From] -= f.Max
		h[f.To] += f.Max
	}
	return party.FromArray(l), party.FromArray(h)
}
