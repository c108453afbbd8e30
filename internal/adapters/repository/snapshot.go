package repository

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"

	"gonum.org/v1/gonum/stat"
)

// UnitSummary is one row of a snapshot table.
type UnitSummary struct {
	Unit   string
	Parent string
	Rounds int
	// Values holds one statistic per unit-table column; NaN when the unit
	// never had a value in that column.
	Values []float64
}

// Value returns the statistic for a unit-table column name.
func (u UnitSummary) Value(name string) (float64, bool) {
	for i, c := range unitColumns {
		if c.name == name {
			return u.Values[i], !math.IsNaN(u.Values[i])
		}
	}
	return 0, false
}

// Summary holds every snapshot table.
type Summary struct {
	Median   []UnitSummary
	Mean     []UnitSummary
	Winners  []WinnerCount
	National NationalSummary
	// SplitOutcomes are the rounds whose popular-vote winner lost the
	// electoral vote, in round order.
	SplitOutcomes []SplitOutcome
}

var summaryHeader = func() []string {
	h := []string{"Unit", "Parent", "Rounds"}
	for _, c := range unitColumns {
		h = append(h, c.name)
	}
	return h
}()

type series struct {
	parent  string
	rows    int
	cols    [][]float64
	winners map[string]int
}

// accumulator groups unit-table values by unit in first-seen order.
type accumulator struct {
	order []string
	units map[string]*series
}

func newAccumulator() *accumulator {
	return &accumulator{units: make(map[string]*series)}
}

func (a *accumulator) add(unit, parent, winner string, values []float64) {
	s, ok := a.units[unit]
	if !ok {
		s = &series{
			parent:  parent,
			cols:    make([][]float64, len(unitColumns)),
			winners: make(map[string]int),
		}
		a.units[unit] = s
		a.order = append(a.order, unit)
	}
	s.rows++
	s.winners[winner]++
	for i, v := range values {
		if !math.IsNaN(v) {
			s.cols[i] = append(s.cols[i], v)
		}
	}
}

func (a *accumulator) summary() Summary {
	out := Summary{
		Median: make([]UnitSummary, 0, len(a.order)),
		Mean:   make([]UnitSummary, 0, len(a.order)),
	}
	for _, unit := range a.order {
		s := a.units[unit]
		med := UnitSummary{Unit: unit, Parent: s.parent, Rounds: s.rows, Values: make([]float64, len(s.cols))}
		mean := UnitSummary{Unit: unit, Parent: s.parent, Rounds: s.rows, Values: make([]float64, len(s.cols))}
		for i, xs := range s.cols {
			med.Values[i] = median(xs)
			mean.Values[i] = math.NaN()
			if len(xs) > 0 {
				mean.Values[i] = stat.Mean(xs, nil)
			}
		}
		out.Median = append(out.Median, med)
		out.Mean = append(out.Mean, mean)
		out.Winners = append(out.Winners, winnerCounts(unit, s.winners)...)
	}
	return out
}

// median averages the two middle values of an even-length sample.
func median(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return math.NaN()
	}
	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return stat.Mean(sorted[n/2-1:n/2+1], nil)
}

// readUnitTable feeds every row of a unit table into acc.
func readUnitTable(r io.Reader, acc *accumulator) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(unitHeader)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedTable, err)
	}
	if !slices.Equal(header, unitHeader) {
		return ErrHeaderMismatch
	}

	values := make([]float64, len(unitColumns))
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedTable, err)
		}
		for i := range unitColumns {
			field := rec[3+i]
			if field == NoData {
				values[i] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return fmt.Errorf("%w: line %d column %q: %w", ErrMalformedTable, line, unitColumns[i].name, err)
			}
			values[i] = v
		}
		acc.add(rec[1], rec[2], rec[len(rec)-1], values)
	}
}

// writeSummaryTable writes one snapshot table.
func writeSummaryTable(rows []UnitSummary) func(io.Writer) error {
	return func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(summaryHeader); err != nil {
			return err
		}
		for _, u := range rows {
			rec := []string{u.Unit, u.Parent, strconv.Itoa(u.Rounds)}
			for _, v := range u.Values {
				rec = append(rec, formatFloat(v, 4))
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	}
}
