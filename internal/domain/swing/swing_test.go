package swing_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/michaelpowers8/Election-Simulation/internal/domain/party"
	"github.com/michaelpowers8/Election-Simulation/internal/domain/swing"
	. "github.com/smartystreets/goconvey/convey"
)

const draws = 50_000

func sampleMean(g swing.Generator, seed uint64) (mean party.Popularity, within bool) {
	rng := rand.New(rand.NewPCG(seed, 1))
	lo, hi := g.Bounds()
	within = true
	var sum [party.Count]float64
	for n := 0; n < draws; n++ {
		d := g.Next(rng).Array()
		for i, v := range d {
			sum[i] += v
			if v < lo.Array()[i] || v > hi.Array()[i] {
				within = false
			}
		}
	}
	for i := range sum {
		sum[i] /= draws
	}
	return party.FromArray(sum), within
}

func TestIndependentRange(t *testing.T) {
	Convey("Given the default independent-range model", t, func() {
		g := swing.NewIndependentRange()

		Convey("Then its bounds are ±10%, ±10% and ±2.5%", func() {
			lo, hi := g.Bounds()
			So(hi, ShouldResemble, party.Popularity{Republican: 0.1, Democrat: 0.1, Independent: 0.025})
			So(lo, ShouldResemble, party.Popularity{Republican: -0.1, Democrat: -0.1, Independent: -0.025})
		})

		Convey("When drawing many deltas", func() {
			mean, within := sampleMean(g, 42)

			Convey("Then every draw stays within bounds", func() {
				So(within, ShouldBeTrue)
			})

			Convey("Then the sample mean approaches the zero expectation", func() {
				want := g.Expectation()
				So(mean.Republican, ShouldAlmostEqual, want.Republican, 0.002)
				So(mean.Democrat, ShouldAlmostEqual, want.Democrat, 0.002)
				So(mean.Independent, ShouldAlmostEqual, want.Independent, 0.0005)
			})
		})

		Convey("When overriding the ranges", func() {
			g := swing.NewIndependentRange(swing.WithMajorRange(0.2), swing.WithMinorRange(0))
			_, hi := g.Bounds()
			So(hi.Republican, ShouldEqual, 0.2)
			So(hi.Independent, ShouldEqual, 0)
		})
	})
}

func TestPairwiseFlow(t *testing.T) {
	Convey("Given the default pairwise-flow model", t, func() {
		g := swing.NewPairwiseFlow()

		Convey("Then each draw moves mass between parties without creating any", func() {
			rng := rand.New(rand.NewPCG(3, 9))
			worst := 0.0
			for n := 0; n < 10_000; n++ {
				worst = math.Max(worst, math.Abs(g.Next(rng).Sum()))
			}
			So(worst, ShouldBeLessThan, 1e-12)
		})

		Convey("Then bounds follow the configured flows", func() {
			lo, hi := g.Bounds()
			So(lo.Republican, ShouldAlmostEqual, -0.15, 1e-12)
			So(hi.Republican, ShouldAlmostEqual, 0.15, 1e-12)
			So(lo.Independent, ShouldAlmostEqual, -0.20, 1e-12)
			So(hi.Independent, ShouldAlmostEqual, 0.20, 1e-12)
		})

		Convey("When drawing many deltas", func() {
			mean, within := sampleMean(g, 99)
			want := g.Expectation()

			So(within, ShouldBeTrue)
			So(mean.Republican, ShouldAlmostEqual, want.Republican, 0.002)
			So(mean.Democrat, ShouldAlmostEqual, want.Democrat, 0.002)
			So(mean.Independent, ShouldAlmostEqual, want.Independent, 0.002)
		})

		Convey("When flows are asymmetric the expectation is not zero", func() {
			g := swing.NewPairwiseFlow(swing.Flow{From: party.Democrat, To: party.Republican, Max: 0.04})
			want := g.Expectation()
			So(want.Republican, ShouldAlmostEqual, 0.02, 1e-12)
			So(want.Democrat, ShouldAlmostEqual, -0.02, 1e-12)
		})
	})
}

func TestGeneratorsAreReproducible(t *testing.T) {
	Convey("Given two generators fed the same seed", t, func() {
		for _, model := range []string{swing.ModelRange, swing.ModelPairwise} {
			g, err := swing.New(model, 0, 0)
			So(err, ShouldBeNil)

			a := rand.New(rand.NewPCG(2028, 5))
			b := rand.New(rand.NewPCG(2028, 5))
			for n := 0; n < 100; n++ {
				So(g.Next(a), ShouldResemble, g.Next(b))
			}
		}
	})

	Convey("Given an unknown model name", t, func() {
		_, err := swing.New("gaussian", 0, 0)
		So(err, ShouldWrap, swing.ErrUnknownModel)
	})
}
