package electoral_test

import (
	"testing"

	"github.com/michaelpowers8/Election-Simulation/internal/domain/electoral"
	"github.com/michaelpowers8/Election-Simulation/internal/domain/party"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPlurality(t *testing.T) {
	cases := []struct {
		name   string
		votes  [party.Count]int64
		tb     electoral.TieBreak
		winner party.Party
		tied   bool
	}{
		{"clear republican", [3]int64{10, 5, 1}, electoral.TieBreakOrder, party.Republican, false},
		{"clear independent", [3]int64{1, 5, 10}, electoral.TieBreakOrder, party.Independent, false},
		{"rep-dem tie by order", [3]int64{180, 180, 0}, electoral.TieBreakOrder, party.Republican, true},
		{"dem-ind tie by order", [3]int64{1, 7, 7}, electoral.TieBreakOrder, party.Democrat, true},
		{"three-way tie by order", [3]int64{4, 4, 4}, electoral.TieBreakOrder, party.Republican, true},
		{"tie withheld", [3]int64{180, 180, 0}, electoral.TieBreakNone, party.None, true},
		{"tie below the leader is not a tie", [3]int64{9, 3, 3}, electoral.TieBreakNone, party.Republican, false},
		{"no votes", [3]int64{}, electoral.TieBreakOrder, party.None, false},
	}

	Convey("Given plurality counts", t, func() {
		for _, tc := range cases {
			Convey(tc.name, func() {
				winner, tied := electoral.Plurality(tc.votes, tc.tb)
				So(winner, ShouldEqual, tc.winner)
				So(tied, ShouldEqual, tc.tied)
			})
		}
	})
}

func TestParseTieBreak(t *testing.T) {
	Convey("Given configured tie policies", t, func() {
		tb, err := electoral.ParseTieBreak("")
		So(err, ShouldBeNil)
		So(tb, ShouldEqual, electoral.TieBreakOrder)

		tb, err = electoral.ParseTieBreak("none")
		So(err, ShouldBeNil)
		So(tb, ShouldEqual, electoral.TieBreakNone)

		_, err = electoral.ParseTieBreak("coin")
		So(err, ShouldWrap, electoral.ErrUnknownTieBreak)
	})
}

func TestDefault2024(t *testing.T) {
	Convey("Given the default apportionment", t, func() {
		a := electoral.Default2024()

		So(a.Validate(), ShouldBeNil)
		So(a.Total(), ShouldEqual, electoral.NationalTotal)
		So(a.SplitStates(), ShouldResemble, []string{"Maine", "Nebraska"})
		So(a.Districts("Maine"), ShouldHaveLength, 2)
		So(a.Districts("Nebraska"), ShouldHaveLength, 3)

		ca, ok := a.Lookup("California")
		So(ok, ShouldBeTrue)
		So(ca.Votes, ShouldEqual, 54)

		Convey("Then callers get their own copy", func() {
			a[0].Votes = 0
			So(electoral.Default2024().Total(), ShouldEqual, electoral.NationalTotal)
		})
	})

	Convey("Given malformed tables", t, func() {
		So(electoral.Apportionment{}.Validate(), ShouldWrap, electoral.ErrMalformedTable)
		So(electoral.Apportionment{{Unit: "A", Votes: 1}, {Unit: "A", Votes: 1}}.Validate(), ShouldWrap, electoral.ErrMalformedTable)
		So(electoral.Apportionment{{Unit: "A", Votes: -1}}.Validate(), ShouldWrap, electoral.ErrMalformedTable)
		So(electoral.Apportionment{{Unit: "A-1", Parent: "A", Votes: 1}}.Validate(), ShouldWrap, electoral.ErrMalformedTable)
		So(electoral.Apportionment{
			{Unit: "A", Votes: 1},
			{Unit: "A-1", Parent: "A", Votes: 1},
			{Unit: "A-1-x", Parent: "A-1", Votes: 1},
		}.Validate(), ShouldWrap, electoral.ErrMalformedTable)
	})
}
