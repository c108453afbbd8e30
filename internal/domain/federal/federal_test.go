package federal_test

import (
	"math/rand/v2"
	"testing"

	"github.com/michaelpowers8/Election-Simulation/internal/domain/ballot"
	"github.com/michaelpowers8/Election-Simulation/internal/domain/electoral"
	"github.com/michaelpowers8/Election-Simulation/internal/domain/federal"
	"github.com/michaelpowers8/Election-Simulation/internal/domain/model"
	"github.com/michaelpowers8/Election-Simulation/internal/domain/party"
	"github.com/michaelpowers8/Election-Simulation/internal/domain/split"
	"github.com/michaelpowers8/Election-Simulation/internal/domain/swing"
	"github.com/michaelpowers8/Election-Simulation/internal/domain/unit"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAggregate(t *testing.T) {
	Convey("Given a handful of unit rows", t, func() {
		rows := []model.UnitRoundResult{
			{Unit: "A", Eligible: 100, Votes: [party.Count]int64{50, 30, 0}, Credit: [party.Count]int{3, 0, 0}},
			{Unit: "B", Eligible: 200, Votes: [party.Count]int64{20, 90, 10}, Credit: [party.Count]int{0, 5, 0}},
			{Unit: "B-1", Parent: "B", Votes: [party.Count]int64{5, 5, 0}, Tied: true},
			{Unit: "B", Combined: true, Votes: [party.Count]int64{5, 5, 0}, Credit: [party.Count]int{2, 0, 0}},
		}

		n := federal.Aggregate(4, 0.75, 12, rows, 1)

		Convey("Then popular votes skip combined rows", func() {
			So(n.Votes, ShouldResemble, [party.Count]int64{75, 125, 10})
			So(n.TotalVotes, ShouldEqual, 210)
			So(n.Eligible, ShouldEqual, 300)
		})

		Convey("Then every credited vote is counted and the rest is unawarded", func() {
			So(n.ElectoralVotes, ShouldResemble, [party.Count]int{5, 5, 0})
			So(n.Unawarded, ShouldEqual, 2)
			So(n.Skipped, ShouldEqual, 1)
			So(n.Round, ShouldEqual, 4)
			So(n.Turnout, ShouldEqual, 0.75)
		})
	})

	Convey("Given no results at all", t, func() {
		n := federal.Aggregate(1, 0.6, electoral.NationalTotal, nil, 0)
		_, ok := n.Percent(party.Republican)
		So(ok, ShouldBeFalse)
		So(n.Unawarded, ShouldEqual, electoral.NationalTotal)
	})
}

// simulateRound runs every seat of the default table with a synthetic
// baseline. Small electorates make exact ties likely.
func simulateRound(round int, agg *split.Aggregator, tb electoral.TieBreak) model.NationalRoundResult {
	table := electoral.Default2024()
	r := rand.New(rand.NewPCG(99, uint64(round)))
	gen := swing.NewIndependentRange()
	c := unit.Conditions{
		Round:    round,
		Year:     2028,
		Swing:    gen.Next(r),
		Turnout:  0.9,
		TieBreak: tb,
		Sampler:  ballot.New(),
		Mode:     ballot.ModeBatched,
	}

	splits := table.SplitStates()
	var results []model.UnitRoundResult
	for _, seat := range table {
		isSplit := false
		for _, s := range splits {
			isSplit = isSplit || s == seat.Unit
		}
		if isSplit {
			continue
		}
		u := unit.Unit{
			Name:             seat.Unit,
			Parent:           seat.Parent,
			ElectoralVotes:   seat.Votes,
			RegisteredVoters: int64(r.IntN(12)),
			Baseline:         party.Popularity{Republican: 0.45, Democrat: 0.45, Independent: 0.08},
		}
		res, err := unit.Simulate(u, c, r)
		if err != nil {
			panic(err)
		}
		results = append(results, res)
	}
	results = agg.Apply(round, results)
	return federal.Aggregate(round, c.Turnout, table.Total(), results, 0)
}

func TestAggregate_NationalTotal(t *testing.T) {
	Convey("Given 200 rounds over the default apportionment", t, func() {
		for _, tb := range []electoral.TieBreak{electoral.TieBreakOrder, electoral.TieBreakNone} {
			for _, policy := range []split.Policy{split.PolicyCombined, split.PolicyDistrict} {
				agg := split.New(electoral.Default2024(), split.WithPolicy(policy), split.WithTieBreak(tb))

				broken := 0
				for round := 1; round <= 200; round++ {
					n := simulateRound(round, agg, tb)
					ev := n.ElectoralVotes[0] + n.ElectoralVotes[1] + n.ElectoralVotes[2]
					if ev+n.Unawarded != electoral.NationalTotal || n.Unawarded < 0 {
						broken++
					}
				}

				Convey("Then credited plus unawarded is 538 every round: "+string(tb)+"/"+string(policy), func() {
					So(broken, ShouldEqual, 0)
				})
			}
		}
	})
}
