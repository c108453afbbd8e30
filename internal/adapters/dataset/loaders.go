package dataset

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/michaelpowers8/Election-Simulation/internal/domain/electoral"
	"github.com/michaelpowers8/Election-Simulation/internal/domain/party"
)

const thousandsSuffix = " (in thousands)"

// Roll is a unit's voter registration.
type Roll struct {
	Name       string
	Registered int64
	// Share is registered voters as a fraction of the voting-age population.
	Share float64
}

// Baseline is a unit's historical party popularity.
type Baseline struct {
	Name       string
	Popularity party.Popularity
}

// LoadBaselines reads the historical popularity table
// (State,Republican,Democrat,Independent) keyed by Key(name). Shares may be
// fractions or percentages.
func LoadBaselines(r io.Reader) (map[string]Baseline, error) {
	t, err := readTable("baseline popularity", r)
	if err != nil {
		return nil, err
	}
	nameCol, _, err := t.require("State", "Unit", "Location")
	if err != nil {
		return nil, err
	}
	var cols [party.Count]int
	aliases := [party.Count][]string{
		{"Republican", "Republicans", "Republican %"},
		{"Democrat", "Democrats", "Democratic", "Democrat %", "Democratic %"},
		{"Independent", "Independents", "Independent %", "Other", "Other %"},
	}
	for p, names := range aliases {
		if cols[p], _, err = t.require(names...); err != nil {
			return nil, err
		}
	}

	out := make(map[string]Baseline, len(t.rows))
	for i, rec := range t.rows {
		name := field(rec, nameCol)
		if name == "" || isNationalRow(name) {
			continue
		}
		var shares [party.Count]float64
		for p, c := range cols {
			v, err := parseShare(field(rec, c))
			if err != nil {
				return nil, t.errorf(i, "%s: %v", name, err)
			}
			shares[p] = v
		}
		key := Key(name)
		if _, dup := out[key]; dup {
			return nil, t.errorf(i, "duplicate unit %q", name)
		}
		out[key] = Baseline{Name: name, Popularity: party.FromArray(shares)}
	}
	return out, nil
}

// LoadVoterRolls reads a KFF-style registration table keyed by Key(name).
// Counts in a column marked "(in thousands)" are scaled by 1000. Rows with
// no registration figures (footnotes, "NSD") are ignored.
func LoadVoterRolls(r io.Reader) (map[string]Roll, error) {
	t, err := readTable("voter rolls", r)
	if err != nil {
		return nil, err
	}
	nameCol, _, err := t.require("Location", "State", "Unit")
	if err != nil {
		return nil, err
	}
	countCol, countHeader, err := t.require(
		"Number of Registered Voters",
		"Number of Registered Voters"+thousandsSuffix,
	)
	if err != nil {
		return nil, err
	}
	scale := int64(1)
	if strings.HasSuffix(strings.ToLower(countHeader), thousandsSuffix) {
		scale = 1000
	}
	shareCol, _, err := t.require("Registered Voters as a Share of the Voter Population")
	if err != nil {
		return nil, err
	}

	out := make(map[string]Roll, len(t.rows))
	for i, rec := range t.rows {
		name := field(rec, nameCol)
		if name == "" || isNationalRow(name) {
			continue
		}
		countField, shareField := field(rec, countCol), field(rec, shareCol)
		if missing(countField) && missing(shareField) {
			continue
		}
		roll := Roll{Name: name}
		if !missing(countField) {
			n, err := parseCount(countField)
			if err != nil {
				return nil, t.errorf(i, "%s: %v", name, err)
			}
			roll.Registered = n * scale
		}
		if !missing(shareField) {
			s, err := parseShare(shareField)
			if err != nil {
				return nil, t.errorf(i, "%s: %v", name, err)
			}
			roll.Share = s
		}
		key := Key(name)
		if _, dup := out[key]; dup {
			return nil, t.errorf(i, "duplicate unit %q", name)
		}
		out[key] = roll
	}
	return out, nil
}

// LoadPopulation reads projected population (Geographic Area,<year>,...)
// keyed by Key(name). Columns whose header is not a year are ignored.
func LoadPopulation(r io.Reader) (map[string]map[int]int64, error) {
	t, err := readTable("population", r)
	if err != nil {
		return nil, err
	}
	nameCol, _, err := t.require("Geographic Area", "State", "Unit", "Location")
	if err != nil {
		return nil, err
	}
	years := make(map[int]int)
	for i, h := range t.header {
		if y, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && y > 0 {
			years[i] = y
		}
	}
	if len(years) == 0 {
		return nil, fmt.Errorf("%w: population has no year columns", ErrMalformed)
	}

	out := make(map[string]map[int]int64, len(t.rows))
	for i, rec := range t.rows {
		name := field(rec, nameCol)
		if name == "" || isNationalRow(name) {
			continue
		}
		byYear := make(map[int]int64, len(years))
		for col, year := range years {
			v := field(rec, col)
			if missing(v) {
				continue
			}
			n, err := parseCount(v)
			if err != nil {
				return nil, t.errorf(i, "%s %d: %v", name, year, err)
			}
			byYear[year] = n
		}
		if len(byYear) == 0 {
			continue
		}
		key := Key(name)
		if _, dup := out[key]; dup {
			return nil, t.errorf(i, "duplicate unit %q", name)
		}
		out[key] = byYear
	}
	return out, nil
}

// LoadApportionment reads an electoral-vote table (Unit,Parent,Electoral Votes).
func LoadApportionment(r io.Reader) (electoral.Apportionment, error) {
	t, err := readTable("electoral votes", r)
	if err != nil {
		return nil, err
	}
	unitCol, _, err := t.require("Unit", "State")
	if err != nil {
		return nil, err
	}
	votesCol, _, err := t.require("Electoral Votes", "Votes")
	if err != nil {
		return nil, err
	}
	parentCol, _, _ := t.column("Parent")

	var out electoral.Apportionment
	for i, rec := range t.rows {
		name := field(rec, unitCol)
		if name == "" {
			continue
		}
		votes, err := strconv.Atoi(field(rec, votesCol))
		if err != nil {
			return nil, t.errorf(i, "%s: electoral votes %q", name, field(rec, votesCol))
		}
		out = append(out, electoral.Seat{Unit: name, Parent: field(rec, parentCol), Votes: votes})
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return out, nil
}

func missing(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "NSD", "N/A", "NA", "-":
		return true
	}
	return false
}
