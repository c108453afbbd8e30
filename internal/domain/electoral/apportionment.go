package electoral

import (
	"fmt"
	"slices"
)

// Seat is one unit's share of the Electoral College. Congressional
// districts of a split state name that state as Parent; the state's own
// seat carries only its at-large votes.
type Seat struct {
	Unit   string
	Parent string
	Votes  int
}

// Apportionment is an ordered seat table. Order is the output order of
// per-unit results.
type Apportionment []Seat

// Total is the number of electoral votes in the table.
func (a Apportionment) Total() int {
	total := 0
	for _, s := range a {
		total += s.Votes
	}
	return total
}

// Lookup finds a seat by exact unit name.
func (a Apportionment) Lookup(unit string) (Seat, bool) {
	for _, s := range a {
		if s.Unit == unit {
			return s, true
		}
	}
	return Seat{}, false
}

// Districts returns the seats whose parent is state, in table order.
func (a Apportionment) Districts(state string) []Seat {
	var out []Seat
	for _, s := range a {
		if s.Parent == state {
			out = append(out, s)
		}
	}
	return out
}

// SplitStates returns the states that award votes by district, in table order.
func (a Apportionment) SplitStates() []string {
	var out []string
	for _, s := range a {
		if s.Parent != "" && !slices.Contains(out, s.Parent) {
			out = append(out, s.Parent)
		}
	}
	return out
}

// Validate checks that unit names are unique, votes are non-negative and
// every district's parent is a top-level seat of the table.
func (a Apportionment) Validate() error {
	if len(a) == 0 {
		return fmt.Errorf("%w: empty table", ErrMalformedTable)
	}
	seen := make(map[string]Seat, len(a))
	for _, s := range a {
		if s.Unit == "" {
			return fmt.Errorf("%w: seat without a unit name", ErrMalformedTable)
		}
		if _, dup := seen[s.Unit]; dup {
			return fmt.Errorf("%w: duplicate unit %q", ErrMalformedTable, s.Unit)
		}
		if s.Votes < 0 {
			return fmt.Errorf("%w: %q has %d votes", ErrMalformedTable, s.Unit, s.Votes)
		}
		seen[s.Unit] = s
	}
	for _, s := range a {
		if s.Parent == "" {
			continue
		}
		parent, ok := seen[s.Parent]
		if !ok {
			return fmt.Errorf("%w: %q names unknown parent %q", ErrMalformedTable, s.Unit, s.Parent)
		}
		if parent.Parent != "" {
			return fmt.Errorf("%w: %q is nested under district %q", ErrMalformedTable, s.Unit, s.Parent)
		}
	}
	return nil
}

// Default2024 is the apportionment after the 2020 census, used for the
// 2024 and 2028 elections. Maine and Nebraska are split into their
// congressional districts.
func Default2024() Apportionment {
	return slices.Clone(default2024)
}

var default2024 = Apportionment{
	{Unit: "Alabama", Votes: 9},
	{Unit: "Alaska", Votes: 3},
	{Unit: "Arizona", Votes: 11},
	{Unit: "Arkansas", Votes: 6},
	{Unit: "California", Votes: 54},
	{Unit: "Colorado", Votes: 10},
	{Unit: "Connecticut", Votes: 7},
	{Unit: "Delaware", Votes: 3},
	{Unit: "District of Columbia", Votes: 3},
	{Unit: "Florida", Votes: 30},
	{Unit: "Georgia", Votes: 16},
	{Unit: "Hawaii", Votes: 4},
	{Unit: "Idaho", Votes: 4},
	{Unit: "Illinois", Votes: 19},
	{Unit: "Indiana", Votes: 11},
	{Unit: "Iowa", Votes: 6},
	{Unit: "Kansas", Votes: 6},
	{Unit: "Kentucky", Votes: 8},
	{Unit: "Louisiana", Votes: 8},
	{Unit: "Maine", Votes: 2},
	{Unit: "Maine-CD-1", Parent: "Maine", Votes: 1},
	{Unit: "Maine-CD-2", Parent: "Maine", Votes: 1},
	{Unit: "Maryland", Votes: 10},
	{Unit: "Massachusetts", Votes: 11},
	{Unit: "Michigan", Votes: 15},
	{Unit: "Minnesota", Votes: 10},
	{Unit: "Mississippi", Votes: 6},
	{Unit: "Missouri", Votes: 10},
	{Unit: "Montana", Votes: 4},
	{Unit: "Nebraska", Votes: 2},
	{Unit: "Nebraska-CD-1", Parent: "Nebraska", Votes: 1},
	{Unit: "Nebraska-CD-2", Parent: "Nebraska", Votes: 1},
	{Unit: "Nebraska-CD-3", Parent: "Nebraska", Votes: 1},
	{Unit: "Nevada", Votes: 6},
	{Unit: "New Hampshire", Votes: 4},
	{Unit: "New Jersey", Votes: 14},
	{Unit: "New Mexico", Votes: 5},
	{Unit: "New York", Votes: 28},
	{Unit: "North Carolina", Votes: 16},
	{Unit: "North Dakota", Votes: 3},
	{Unit: "Ohio", Votes: 17},
	{Unit: "Oklahoma", Votes: 7},
	{Unit: "Oregon", Votes: 8},
	{Unit: "Pennsylvania", Votes: 19},
	{Unit: "Rhode Island", Votes: 4},
	{Unit: "South Carolina", Votes: 9},
	{Unit: "South Dakota", Votes: 3},
	{Unit: "Tennessee", Votes: 11},
	{Unit: "Texas", Votes: 40},
	{Unit: "Utah", Votes: 6},
	{Unit: "Vermont", Votes: 3},
	{Unit: "Virginia", Votes: 13},
	{Unit: "Washington", Votes: 12},
	{Unit: "West Virginia", Votes: 4},
	{Unit: "Wisconsin", Votes: 10},
	{Unit: "Wyoming", Votes: 3},
}
