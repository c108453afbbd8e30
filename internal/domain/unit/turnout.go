package unit

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// TurnoutMode selects how the round's turnout fraction is drawn.
type TurnoutMode string

const (
	// TurnoutFixed draws from U(Min, Max) regardless of the year.
	TurnoutFixed TurnoutMode = "fixed"
	// TurnoutYear draws a higher turnout in presidential years.
	TurnoutYear TurnoutMode = "year"
)

// Turnout draws the fraction of eligible voters who show up.
type Turnout struct {
	Mode TurnoutMode
	Min  float64
	Max  float64
}

// NewTurnout validates a turnout configuration. Min and Max only apply to
// TurnoutFixed; zero values keep U(0.60, 0.90).
func NewTurnout(mode string, lo, hi float64) (Turnout, error) {
	switch TurnoutMode(mode) {
	case "", TurnoutFixed:
		if lo == 0 && hi == 0 {
			lo, hi = 0.60, 0.90
		}
		if lo < 0 || hi > 1 || lo > hi {
			return Turnout{}, fmt.Errorf("%w: fixed range [%v, %v]", ErrInvalidTurnout, lo, hi)
		}
		return Turnout{Mode: TurnoutFixed, Min: lo, Max: hi}, nil
	case TurnoutYear:
		return Turnout{Mode: TurnoutYear}, nil
	default:
		return Turnout{}, fmt.Errorf("%w: %q", ErrInvalidTurnout, mode)
	}
}

// Draw returns one turnout fraction for year.
func (t Turnout) Draw(year int, r *rand.Rand) float64 {
	lo, hi := t.Range(year)
	if lo == hi {
		return lo
	}
	return distuv.Uniform{Min: lo, Max: hi, Src: r}.Rand()
}

// Range is the interval Draw samples from for year.
func (t Turnout) Range(year int) (lo, hi float64) {
	if t.Mode != TurnoutYear {
		return t.Min, t.Max
	}
	if year%4 == 0 {
		return 0.85, 0.95
	}
	return 0.60, 0.80
}
