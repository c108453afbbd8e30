package ballot_test

import (
	"math/rand/v2"
	"testing"

	"github.com/michaelpowers8/Election-Simulation/internal/domain/ballot"
	"github.com/michaelpowers8/Election-Simulation/internal/domain/party"
	. "github.com/smartystreets/goconvey/convey"
	"gonum.org/v1/gonum/stat"
)

var reference = party.Popularity{Republican: 0.4, Democrat: 0.35, Independent: 0.15}

func shares(t ballot.Tally) (rep, dem, ind, abstained float64) {
	n := float64(t.Voters())
	return float64(t.Votes[party.Republican]) / n,
		float64(t.Votes[party.Democrat]) / n,
		float64(t.Votes[party.Independent]) / n,
		float64(t.Abstained) / n
}

func TestSampler_Draw(t *testing.T) {
	Convey("Given the default sampler and a fixed seed", t, func() {
		s := ballot.New()
		rng := rand.New(rand.NewPCG(1, 2))

		Convey("When drawing 200k voters one at a time", func() {
			tally := s.Loop(200_000, reference, rng)
			rep, dem, ind, abst := shares(tally)

			Convey("Then party shares converge to the popularity scaled by turnout", func() {
				So(tally.Voters(), ShouldEqual, 200_000)
				So(rep, ShouldAlmostEqual, 0.98*0.4, 0.005)
				So(dem, ShouldAlmostEqual, 0.98*0.35, 0.005)
				So(ind, ShouldAlmostEqual, 0.98*0.15, 0.005)
			})

			Convey("Then the base abstention rate converges to two percent", func() {
				So(abst, ShouldAlmostEqual, ballot.DefaultAbstentionRate, 0.002)
			})

			Convey("Then the residual mass is unassigned", func() {
				unassigned := float64(tally.Unassigned) / float64(tally.Voters())
				So(unassigned, ShouldAlmostEqual, 0.98*0.1, 0.005)
			})
		})

		Convey("When abstention is disabled and the vector is degenerate", func() {
			s := ballot.New(ballot.WithAbstentionRate(0))
			only := party.Popularity{Democrat: 1}
			tally := s.Loop(1000, only, rng)
			So(tally.Votes[party.Democrat], ShouldEqual, 1000)
			So(tally.Abstentions(), ShouldEqual, 0)
		})
	})
}

func TestSampler_Tally(t *testing.T) {
	Convey("Given the batched sampler", t, func() {
		s := ballot.New()

		Convey("When tallying a million voters", func() {
			rng := rand.New(rand.NewPCG(5, 8))
			tally := s.Tally(1_000_000, reference, rng)
			rep, dem, ind, abst := shares(tally)

			So(tally.Voters(), ShouldEqual, 1_000_000)
			So(rep, ShouldAlmostEqual, 0.98*0.4, 0.003)
			So(dem, ShouldAlmostEqual, 0.98*0.35, 0.003)
			So(ind, ShouldAlmostEqual, 0.98*0.15, 0.003)
			So(abst, ShouldAlmostEqual, 0.02, 0.001)
		})

		Convey("When there is nobody to sample", func() {
			rng := rand.New(rand.NewPCG(5, 8))
			So(s.Tally(0, reference, rng), ShouldResemble, ballot.Tally{})
			So(s.Tally(-4, reference, rng), ShouldResemble, ballot.Tally{})
		})

		Convey("When the same seed is reused", func() {
			a := s.Tally(123_456, reference, rand.New(rand.NewPCG(9, 9)))
			b := s.Tally(123_456, reference, rand.New(rand.NewPCG(9, 9)))
			So(a, ShouldResemble, b)
		})

		Convey("Then its counts match the per-voter loop in mean and variance", func() {
			const (
				voters = 500
				trials = 2000
			)
			loopRNG := rand.New(rand.NewPCG(21, 1))
			batchRNG := rand.New(rand.NewPCG(21, 2))

			var loop, batch []float64
			for n := 0; n < trials; n++ {
				loop = append(loop, float64(s.Loop(voters, reference, loopRNG).Votes[party.Republican]))
				batch = append(batch, float64(s.Tally(voters, reference, batchRNG).Votes[party.Republican]))
			}
			lm, lv := stat.MeanVariance(loop, nil)
			bm, bv := stat.MeanVariance(batch, nil)

			p := 0.98 * 0.4
			So(lm, ShouldAlmostEqual, voters*p, 1.5)
			So(bm, ShouldAlmostEqual, voters*p, 1.5)
			So(bv/lv, ShouldBeBetween, 0.85, 1.15)
		})
	})
}

func TestChoice(t *testing.T) {
	Convey("Given voter choices", t, func() {
		p, ok := ballot.Independent.Party()
		So(ok, ShouldBeTrue)
		So(p, ShouldEqual, party.Independent)

		_, ok = ballot.Abstain.Party()
		So(ok, ShouldBeFalse)
		So(ballot.Unassigned.String(), ShouldEqual, "Unassigned")
		So(ballot.Republican.String(), ShouldEqual, "Republican")
	})
}

func TestParseMode(t *testing.T) {
	Convey("Given configured sampling modes", t, func() {
		m, err := ballot.ParseMode("")
		So(err, ShouldBeNil)
		So(m, ShouldEqual, ballot.ModeBatched)

		m, err = ballot.ParseMode("per_voter")
		So(err, ShouldBeNil)
		So(m, ShouldEqual, ballot.ModePerVoter)

		_, err = ballot.ParseMode("exact")
		So(err, ShouldWrap, ballot.ErrUnknownMode)
	})
}
