// Package party defines the three simulated parties and their popularity vectors.
package party

import (
	"fmt"
	"math"
)

// Party identifies one of the simulated parties.
type Party int

// Parties in their canonical order. The order doubles as the fixed
// tie-break order used by electoral.TieBreakOrder.
const (
	None        Party = -1
	Republican  Party = 0
	Democrat    Party = 1
	Independent Party = 2
)

// Count is the number of simulated parties.
const Count = 3

// All lists the parties in canonical order.
var All = [Count]Party{Republican, Democrat, Independent}

// String returns the display name used in result tables.
func (p Party) String() string {
	switch p {
	case Republican:
		return "Republican"
	case Democrat:
		return "Democrat"
	case Independent:
		return "Independent"
	case None:
		return "None"
	default:
		return fmt.Sprintf("Party(%d)", int(p))
	}
}

// Valid reports whether p is one of the three simulated parties.
func (p Party) Valid() bool {
	return p >= Republican && p <= Independent
}

// Popularity is a per-party vote share. Baselines come from historical
// results; adjusted vectors may be negative or sum above one until they are
// normalized.
type Popularity struct {
	Republican  float64
	Democrat    float64
	Independent float64
}

// FromArray builds a Popularity from canonical-order shares.
func FromArray(v [Count]float64) Popularity {
	return Popularity{Republican: v[0], Democrat: v[1], Independent: v[2]}
}

// Array returns the shares in canonical order.
func (p Popularity) Array() [Count]float64 {
	return [Count]float64{p.Republican, p.Democrat, p.Independent}
}

// Get returns the share of a single party.
func (p Popularity) Get(pt Party) float64 {
	switch pt {
	case Republican:
		return p.Republican
	case Democrat:
		return p.Democrat
	case Independent:
		return p.Independent
	default:
		return 0
	}
}

// Add returns the component-wise sum of p and delta.
func (p Popularity) Add(delta Popularity) Popularity {
	return Popularity{
		Republican:  p.Republican + delta.Republican,
		Democrat:    p.Democrat + delta.Democrat,
		Independent: p.Independent + delta.Independent,
	}
}

// Sum returns the total share. Anything below one is abstention mass.
func (p Popularity) Sum() float64 {
	return p.Republican + p.Democrat + p.Independent
}

// Finite reports whether every component is a finite number.
func (p Popularity) Finite() bool {
	for _, v := range p.Array() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// IsNormalized reports whether every component is non-negative and the
// total does not exceed one by more than eps.
func (p Popularity) IsNormalized(eps float64) bool {
	if !p.Finite() {
		return false
	}
	for _, v := range p.Array() {
		if v < 0 {
			return false
		}
	}
	return p.Sum() <= 1+eps
}
