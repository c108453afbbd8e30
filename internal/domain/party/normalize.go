package party

// Outcome names the sign-pattern case Normalize applied.
type Outcome int

const (
	// Unchanged: no component was negative.
	Unchanged Outcome = iota
	// Redistributed: one component was negative and its deficit was
	// taken from the other parties.
	Redistributed
	// Absorbed: two components were negative and the remaining party
	// took all of the mass.
	Absorbed
	// Fallback: all components were negative, non-finite, or the deficit
	// exceeded the available mass; the vector was replaced by equal thirds.
	Fallback
)

func (o Outcome) String() string {
	switch o {
	case Unchanged:
		return "unchanged"
	case Redistributed:
		return "redistributed"
	case Absorbed:
		return "absorbed"
	case Fallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Normalization is the result of Normalize.
type Normalization struct {
	Popularity Popularity
	Outcome    Outcome
	// Rescaled is set when the vector summed above one and was scaled down.
	Rescaled bool
}

// next is the fixed absorber cycle Republican -> Independent -> Democrat -> Republican.
var next = [Count]Party{
	Republican:  Independent,
	Independent: Democrat,
	Democrat:    Republican,
}

type signCase func(v [Count]float64) ([Count]float64, Outcome)

// signCases is indexed by the negative-component mask:
// bit 0 Republican, bit 1 Democrat, bit 2 Independent.
var signCases = [1 << Count]signCase{
	0b000: func(v [Count]float64) ([Count]float64, Outcome) { return v, Unchanged },
	0b001: redistributeFrom(Republican),
	0b010: redistributeFrom(Democrat),
	0b100: redistributeFrom(Independent),
	0b110: absorbInto(Republican),
	0b101: absorbInto(Democrat),
	0b011: absorbInto(Independent),
	0b111: fallback,
}

// Normalize clamps a popularity vector so that no component is negative and
// the total does not exceed one. It is pure and deterministic.
//
// The negative-component count selects the rule: none leaves the vector as
// is; one moves the deficit onto the next party of the cycle (and onto the
// third party if the absorber runs dry); two hands all mass to the
// non-negative party; three falls back to equal thirds. A vector that still
// sums above one is then scaled down proportionally.
func Normalize(p Popularity) Normalization {
	if !p.Finite() {
		v, o := fallback(p.Array())
		return Normalization{Popularity: FromArray(v), Outcome: o}
	}

	v := p.Array()
	mask := 0
	for i, x := range v {
		if x < 0 {
			mask |= 1 << i
		}
	}

	v, outcome := signCases[mask](v)
	out := Normalization{Outcome: outcome}

	if sum := v[0] + v[1] + v[2]; sum > 1 {
		for i := range v {
			v[i] /= sum
		}
		out.Rescaled = true
	}
	out.Popularity = FromArray(v)
	return out
}

func redistributeFrom(neg Party) signCase {
	absorber := next[neg]
	third := next[absorber]
	return func(v [Count]float64) ([Count]float64, Outcome) {
		deficit := -v[neg]
		v[neg] = 0

		take := min(deficit, v[absorber])
		v[absorber] -= take
		deficit -= take

		take = min(deficit, v[third])
		v[third] -= take
		deficit -= take

		if deficit > 0 {
			return fallback(v)
		}
		return v, Redistributed
	}
}

func absorbInto(keep Party) signCase {
	return func(_ [Count]float64) ([Count]float64, Outcome) {
		var v [Count]float64
		v[keep] = 1
		return v, Absorbed
	}
}

func fallback(_ [Count]float64) ([Count]float64, Outcome) {
	const third = 1.0 / 3
	return [Count]float64{third, third, third}, Fallback
}
