package repository

import (
	"cmp"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"

	"github.com/michaelpowers8/Election-Simulation/internal/domain/party"
	"gonum.org/v1/gonum/stat"
)

// NationalSummary is the mean of every national column over the rounds
// written so far.
type NationalSummary struct {
	Rounds int
	// Values holds one mean per national column; NaN when no round had a
	// value in that column.
	Values []float64
}

// Value returns the mean for a national-table column name.
func (n NationalSummary) Value(name string) (float64, bool) {
	i := nationalIndex(name)
	if i < 0 || i >= len(n.Values) {
		return 0, false
	}
	return n.Values[i], !math.IsNaN(n.Values[i])
}

// SplitOutcome is a round in which one major party won the popular vote
// and the other won more electoral votes.
type SplitOutcome struct {
	Round     int
	Popular   party.Party
	Electoral party.Party
	// Values are the round's national columns.
	Values []float64
}

// WinnerCount is the number of rounds a unit's row named Winner.
type WinnerCount struct {
	Unit   string
	Winner string
	Rounds int
}

func nationalIndex(name string) int {
	return slices.IndexFunc(nationalColumns, func(c column) bool { return c.name == name })
}

var (
	repVotesCol = nationalIndex(party.Republican.String() + " Votes")
	demVotesCol = nationalIndex(party.Democrat.String() + " Votes")
	repEVCol    = nationalIndex(party.Republican.String() + " Electoral Votes")
	demEVCol    = nationalIndex(party.Democrat.String() + " Electoral Votes")
)

// splitOutcome compares the two major parties only.
func splitOutcome(round int, values []float64) (SplitOutcome, bool) {
	rv, dv := values[repVotesCol], values[demVotesCol]
	re, de := values[repEVCol], values[demEVCol]
	out := SplitOutcome{Round: round, Values: slices.Clone(values)}
	switch {
	case rv > dv && re < de:
		out.Popular, out.Electoral = party.Republican, party.Democrat
	case rv < dv && re > de:
		out.Popular, out.Electoral = party.Democrat, party.Republican
	default:
		return SplitOutcome{}, false
	}
	return out, true
}

// nationalAccumulator collects national rows in write order.
type nationalAccumulator struct {
	rounds int
	cols   [][]float64
	splits []SplitOutcome
}

func newNationalAccumulator() *nationalAccumulator {
	return &nationalAccumulator{cols: make([][]float64, len(nationalColumns))}
}

func (a *nationalAccumulator) add(round int, values []float64) {
	a.rounds++
	for i, v := range values {
		if !math.IsNaN(v) {
			a.cols[i] = append(a.cols[i], v)
		}
	}
	if s, ok := splitOutcome(round, values); ok {
		a.splits = append(a.splits, s)
	}
}

// fill sets the national parts of sum.
func (a *nationalAccumulator) fill(sum *Summary) {
	sum.National = NationalSummary{Rounds: a.rounds, Values: make([]float64, len(a.cols))}
	for i, xs := range a.cols {
		sum.National.Values[i] = math.NaN()
		if len(xs) > 0 {
			sum.National.Values[i] = stat.Mean(xs, nil)
		}
	}
	sum.SplitOutcomes = slices.Clone(a.splits)
}

// winnerRank orders winner names: parties first, then ties, then no data.
func winnerRank(name string) int {
	for i, p := range party.All {
		if p.String() == name {
			return i
		}
	}
	switch name {
	case "Tie":
		return len(party.All)
	case NoData:
		return len(party.All) + 1
	default:
		return len(party.All) + 2
	}
}

func winnerCounts(unit string, counts map[string]int) []WinnerCount {
	out := make([]WinnerCount, 0, len(counts))
	for w, n := range counts {
		out = append(out, WinnerCount{Unit: unit, Winner: w, Rounds: n})
	}
	slices.SortFunc(out, func(a, b WinnerCount) int {
		return cmp.Or(cmp.Compare(winnerRank(a.Winner), winnerRank(b.Winner)), cmp.Compare(a.Winner, b.Winner))
	})
	return out
}

// readNationalTable feeds every row of a national table into acc.
func readNationalTable(r io.Reader, acc *nationalAccumulator) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(nationalHeader)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedTable, err)
	}
	if !slices.Equal(header, nationalHeader) {
		return ErrHeaderMismatch
	}

	values := make([]float64, len(nationalColumns))
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedTable, err)
		}
		round, err := strconv.Atoi(rec[0])
		if err != nil {
			return fmt.Errorf("%w: line %d round: %w", ErrMalformedTable, line, err)
		}
		for i := range nationalColumns {
			field := rec[1+i]
			if field == NoData {
				values[i] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return fmt.Errorf("%w: line %d column %q: %w", ErrMalformedTable, line, nationalColumns[i].name, err)
			}
			values[i] = v
		}
		acc.add(round, values)
	}
}

func columnNames(cols []column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.name
	}
	return names
}

func nationalFields(values []float64) []string {
	rec := make([]string, len(values))
	for i, v := range values {
		rec[i] = formatFloat(v, nationalColumns[i].decimals)
	}
	return rec
}

func writeNationalMean(n NationalSummary) func(io.Writer) error {
	return func(w io.Writer) error {
		cw := csv.NewWriter(w)
		_ = cw.Write(append([]string{"Rounds"}, columnNames(nationalColumns)...))
		rec := []string{strconv.Itoa(n.Rounds)}
		for _, v := range n.Values {
			rec = append(rec, formatFloat(v, 4))
		}
		_ = cw.Write(rec)
		cw.Flush()
		return cw.Error()
	}
}

func writeSplitOutcomes(rows []SplitOutcome) func(io.Writer) error {
	return func(w io.Writer) error {
		cw := csv.NewWriter(w)
		header := append([]string{"Election Round", "Popular Vote Winner", "Electoral Vote Winner"}, columnNames(nationalColumns)...)
		_ = cw.Write(header)
		for _, s := range rows {
			rec := append([]string{strconv.Itoa(s.Round), s.Popular.String(), s.Electoral.String()}, nationalFields(s.Values)...)
			_ = cw.Write(rec)
		}
		cw.Flush()
		return cw.Error()
	}
}

func writeWinnerCounts(rows []WinnerCount) func(io.Writer) error {
	return func(w io.Writer) error {
		cw := csv.NewWriter(w)
		_ = cw.Write([]string{"Unit", "Winner", "Rounds"})
		for _, c := range rows {
			_ = cw.Write([]string{c.Unit, c.Winner, strconv.Itoa(c.Rounds)})
		}
		cw.Flush()
		return cw.Error()
	}
}
