// Package repository persists round results and the snapshot tables
// derived from them.
package repository

import (
	"context"
	"math"
	"strconv"

	"github.com/michaelpowers8/Election-Simulation/internal/domain/model"
	"github.com/michaelpowers8/Election-Simulation/internal/domain/party"
)

// Default output file names.
const (
	DefaultUnitFile     = "All_Unit_Results.csv"
	DefaultNationalFile = "All_National_Results.csv"
	DefaultMedianFile   = "Median_Unit_Results.csv"
	DefaultMeanFile     = "Mean_Unit_Results.csv"

	DefaultNationalMeanFile = "Mean_National_Results.csv"
	DefaultSplitOutcomeFile = "Split_Outcome_Rounds.csv"
	DefaultWinnerCountFile  = "Unit_Winner_Counts.csv"
)

// NoData is written in place of a value that does not exist, such as a
// percentage of zero votes.
const NoData = "NA"

// Store receives finished rounds in order.
type Store interface {
	// WriteRound appends the unit rows and the national row of a round.
	WriteRound(ctx context.Context, r model.Round) error
	// Snapshot recomputes the summary tables from every row written so far:
	// per-unit medians, means and winner counts, national means, and the
	// rounds whose popular-vote winner lost the electoral vote.
	Snapshot(ctx context.Context) (Summary, error)
	// Close flushes and releases the store.
	Close() error
}

// column describes one numeric column of the unit table.
type column struct {
	name     string
	decimals int
}

// unitColumns are the numeric columns of the unit table, in file order.
// They are also the columns summarized by snapshots.
var unitColumns = func() []column {
	cols := []column{
		{"Electoral Votes", 0},
		{"Eligible Voters", 0},
		{"Votes To Cast", 0},
		{"Total Votes", 0},
		{"Abstentions", 0},
	}
	for _, p := range party.All {
		cols = append(cols,
			column{p.String() + " Votes", 0},
			column{p.String() + " Percent", 4},
			column{p.String() + " Electoral Votes", 0},
		)
	}
	return cols
}()

var unitHeader = func() []string {
	h := []string{"Election Round", "Unit", "Parent"}
	for _, c := range unitColumns {
		h = append(h, c.name)
	}
	return append(h, "Winner")
}()

// nationalColumns are the numeric columns of the national table.
var nationalColumns = func() []column {
	cols := []column{
		{"Turnout", 4},
		{"Eligible Voters", 0},
		{"Total Votes", 0},
	}
	for _, p := range party.All {
		cols = append(cols,
			column{p.String() + " Votes", 0},
			column{p.String() + " Percent", 4},
			column{p.String() + " Electoral Votes", 0},
		)
	}
	return append(cols,
		column{"Unawarded Electoral Votes", 0},
		column{"Skipped Units", 0},
	)
}()

var nationalHeader = func() []string {
	h := []string{"Election Round"}
	for _, c := range nationalColumns {
		h = append(h, c.name)
	}
	return append(h, "Winner")
}()

// unitValues returns the numeric columns of a unit row. Values that do not
// exist are NaN.
func unitValues(r model.UnitRoundResult) []float64 {
	v := []float64{
		float64(r.ElectoralVotes),
		float64(r.Eligible),
		float64(r.VotesToCast),
		float64(r.TotalVotes()),
		float64(r.Abstentions),
	}
	for _, p := range party.All {
		pct := math.NaN()
		if share, ok := r.Percent(p); ok {
			pct = share * 100
		}
		v = append(v, float64(r.Votes[p]), pct, float64(r.Credit[p]))
	}
	return v
}

func unitRecord(r model.UnitRoundResult) []string {
	rec := []string{strconv.Itoa(r.Round), r.Unit, r.Parent}
	for i, v := range unitValues(r) {
		rec = append(rec, formatFloat(v, unitColumns[i].decimals))
	}
	return append(rec, winnerName(r.NoData, r.Winner, r.Tied))
}

// nationalValues returns the numeric columns of a national row.
func nationalValues(n model.NationalRoundResult) []float64 {
	v := []float64{
		n.Turnout,
		float64(n.Eligible),
		float64(n.TotalVotes),
	}
	for _, p := range party.All {
		pct := math.NaN()
		if share, ok := n.Percent(p); ok {
			pct = share * 100
		}
		v = append(v, float64(n.Votes[p]), pct, float64(n.ElectoralVotes[p]))
	}
	return append(v, float64(n.Unawarded), float64(n.Skipped))
}

func nationalRecord(n model.NationalRoundResult) []string {
	rec := []string{strconv.Itoa(n.Round)}
	for i, v := range nationalValues(n) {
		rec = append(rec, formatFloat(v, nationalColumns[i].decimals))
	}
	return append(rec, winnerName(n.TotalVotes == 0, n.Winner(), false))
}

func winnerName(noData bool, winner party.Party, tied bool) string {
	switch {
	case noData:
		return NoData
	case winner == party.None && tied:
		return "Tie"
	default:
		return winner.String()
	}
}

func formatFloat(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NoData
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}
