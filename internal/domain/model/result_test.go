package model_test

import (
	"testing"

	"github.com/michaelpowers8/Election-Simulation/internal/domain/model"
	"github.com/michaelpowers8/Election-Simulation/internal/domain/party"
	"github.com/smartystreets/goconvey/convey"
)

func TestUnitRoundResult(t *testing.T) {
	convey.Convey("Given a unit result", t, func() {
		r := model.UnitRoundResult{
			Unit:   "Ohio",
			Votes:  [party.Count]int64{600, 300, 100},
			Credit: [party.Count]int{17, 0, 0},
		}

		convey.Convey("Then totals and shares are derived from the counts", func() {
			convey.So(r.TotalVotes(), convey.ShouldEqual, 1000)
			convey.So(r.Credited(), convey.ShouldEqual, 17)

			sum := 0.0
			for _, p := range party.All {
				share, ok := r.Percent(p)
				convey.So(ok, convey.ShouldBeTrue)
				sum += share
			}
			convey.So(sum, convey.ShouldAlmostEqual, 1.0, 1e-12)
		})

		convey.Convey("When no votes were cast", func() {
			empty := model.UnitRoundResult{Unit: "Nowhere", NoData: true}

			convey.Convey("Then percentages are unavailable rather than NaN", func() {
				share, ok := empty.Percent(party.Republican)
				convey.So(ok, convey.ShouldBeFalse)
				convey.So(share, convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When asking for an invalid party", func() {
			_, ok := r.Percent(party.None)
			convey.So(ok, convey.ShouldBeFalse)
		})
	})
}

func TestNationalRoundResult(t *testing.T) {
	convey.Convey("Given national results", t, func() {
		convey.So(model.NationalRoundResult{ElectoralVotes: [party.Count]int{270, 268, 0}}.Winner(), convey.ShouldEqual, party.Republican)
		convey.So(model.NationalRoundResult{ElectoralVotes: [party.Count]int{200, 300, 38}}.Winner(), convey.ShouldEqual, party.Democrat)
		convey.So(model.NationalRoundResult{ElectoralVotes: [party.Count]int{269, 269, 0}}.Winner(), convey.ShouldEqual, party.None)
		convey.So(model.NationalRoundResult{}.Winner(), convey.ShouldEqual, party.None)

		share, ok := model.NationalRoundResult{Votes: [party.Count]int64{1, 3, 0}}.Percent(party.Democrat)
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(share, convey.ShouldEqual, 0.75)
	})
}
