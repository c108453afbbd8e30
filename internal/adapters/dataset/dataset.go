// Package dataset loads the reference tables a simulation run reads once at
// startup and joins them into simulatable units.
package dataset

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/michaelpowers8/Election-Simulation/internal/domain/electoral"
	"github.com/michaelpowers8/Election-Simulation/internal/domain/unit"
)

// Sources names the input files. Empty paths are optional except Baselines
// and VoterRolls; an empty Apportionment uses electoral.Default2024.
// Year is the election year the population table must project.
type Sources struct {
	Apportionment string
	Baselines     string
	VoterRolls    string
	Population    string
	Year          int
}

// Issue is a unit left out of the run because the sources disagree on it.
type Issue struct {
	Unit string
	Err  error
}

func (i Issue) Error() string { return i.Unit + ": " + i.Err.Error() }

func (i Issue) Unwrap() error { return i.Err }

// Dataset is the joined reference data.
type Dataset struct {
	Apportionment electoral.Apportionment
	Units         []unit.Unit
	Issues        []Issue
	// Unused are source rows that match no seat of the apportionment.
	Unused []string
}

// Load reads and joins every table named by src.
func Load(ctx context.Context, src Sources) (*Dataset, error) {
	table := electoral.Default2024()
	if src.Apportionment != "" {
		t, err := loadFile(ctx, src.Apportionment, LoadApportionment)
		if err != nil {
			return nil, err
		}
		table = t
	}

	baselines, err := loadFile(ctx, src.Baselines, LoadBaselines)
	if err != nil {
		return nil, err
	}
	rolls, err := loadFile(ctx, src.VoterRolls, LoadVoterRolls)
	if err != nil {
		return nil, err
	}
	var pop map[string]map[int]int64
	if src.Population != "" {
		if pop, err = loadFile(ctx, src.Population, LoadPopulation); err != nil {
			return nil, err
		}
		if src.Year > 0 && !projects(pop, src.Year) {
			return nil, fmt.Errorf("%s: %w: population has no %d column", src.Population, ErrMalformed, src.Year)
		}
	}

	return Join(table, baselines, rolls, pop, src.Year), nil
}

func projects(pop map[string]map[int]int64, year int) bool {
	for _, byYear := range pop {
		if _, ok := byYear[year]; ok {
			return true
		}
	}
	return false
}

func loadFile[T any](ctx context.Context, path string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if path == "" {
		return zero, fmt.Errorf("%w: no path configured", ErrLoad)
	}
	f, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	defer f.Close()

	v, err := parse(f)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// Join builds the simulatable units of table. A split state's own seat is
// not a unit. A district without its own registration or population row
// takes its parent's, divided evenly among the state's districts. Units
// missing a baseline or a registration row, or a population row for year
// when pop is non-nil, are reported as issues and left out. A zero year
// accepts any projection row.
func Join(
	table electoral.Apportionment,
	baselines map[string]Baseline,
	rolls map[string]Roll,
	pop map[string]map[int]int64,
	year int,
) *Dataset {
	d := &Dataset{Apportionment: table}
	used := make(map[string]bool, len(table))

	for _, seat := range table {
		used[Key(seat.Unit)] = true
		districts := table.Districts(seat.Unit)
		if len(districts) > 0 {
			continue
		}

		u, err := join(table, seat, baselines, rolls, pop, year)
		if err != nil {
			d.Issues = append(d.Issues, Issue{Unit: seat.Unit, Err: err})
			continue
		}
		d.Units = append(d.Units, u)
	}

	unused := make(map[string]string)
	for k, b := range baselines {
		if !used[k] {
			unused[k] = b.Name
		}
	}
	for k, r := range rolls {
		if !used[k] {
			unused[k] = r.Name
		}
	}
	for _, name := range unused {
		d.Unused = append(d.Unused, name)
	}
	slices.Sort(d.Unused)
	return d
}

func join(
	table electoral.Apportionment,
	seat electoral.Seat,
	baselines map[string]Baseline,
	rolls map[string]Roll,
	pop map[string]map[int]int64,
	year int,
) (unit.Unit, error) {
	key := Key(seat.Unit)
	b, ok := baselines[key]
	if !ok {
		return unit.Unit{}, fmt.Errorf("%w: no baseline popularity", ErrUnitMismatch)
	}

	share := int64(1)
	parentKey := ""
	if seat.Parent != "" {
		share = int64(len(table.Districts(seat.Parent)))
		parentKey = Key(seat.Parent)
	}

	roll, ok := rolls[key]
	if !ok && parentKey != "" {
		if roll, ok = rolls[parentKey]; ok {
			roll.Registered /= share
		}
	}
	if !ok {
		return unit.Unit{}, fmt.Errorf("%w: no voter registration", ErrUnitMismatch)
	}

	u := unit.Unit{
		Name:             seat.Unit,
		Parent:           seat.Parent,
		ElectoralVotes:   seat.Votes,
		Baseline:         b.Popularity,
		RegisteredVoters: roll.Registered,
		RegisteredShare:  roll.Share,
	}

	if pop != nil {
		byYear, ok := pop[key]
		if !ok && parentKey != "" {
			if parent, found := pop[parentKey]; found {
				byYear = make(map[int]int64, len(parent))
				for y, n := range parent {
					byYear[y] = n / share
				}
				ok = true
			}
		}
		if !ok {
			return unit.Unit{}, fmt.Errorf("%w: no population projection", ErrUnitMismatch)
		}
		if _, found := byYear[year]; year > 0 && !found {
			return unit.Unit{}, fmt.Errorf("%w: no population projection for %d", ErrUnitMismatch, year)
		}
		u.Population = byYear
	}

	if err := u.Validate(); err != nil {
		return unit.Unit{}, fmt.Errorf("%w: %w", ErrUnitMismatch, err)
	}
	return u, nil
}
