package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Key normalizes a unit name for matching across sources: case is folded,
// '-', '_' and '.' are treated as spaces and runs of spaces collapse.
// "Maine-CD-1", "maine cd 1" and ".Maine_CD_1" share a key.
func Key(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', '.':
			return ' '
		}
		return r
	}, name)
	return strings.Join(strings.Fields(name), " ")
}

// table is a parsed CSV file with a header row.
type table struct {
	name   string
	header []string
	rows   [][]string
	lines  []int
}

func readTable(name string, r io.Reader) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s is empty", ErrMalformed, name)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, name, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	t := &table{name: name, header: header}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return t, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, name, err)
		}
		line, _ := cr.FieldPos(0)
		t.rows = append(t.rows, rec)
		t.lines = append(t.lines, line)
	}
}

// column finds a header by exact name (after trimming), ignoring case.
func (t *table) column(names ...string) (int, string, bool) {
	for _, want := range names {
		for i, h := range t.header {
			if strings.EqualFold(strings.TrimSpace(h), want) {
				return i, strings.TrimSpace(h), true
			}
		}
	}
	return -1, "", false
}

func (t *table) require(names ...string) (int, string, error) {
	i, h, ok := t.column(names...)
	if !ok {
		return -1, "", fmt.Errorf("%w: %s has no %q column", ErrMalformed, t.name, names[0])
	}
	return i, h, nil
}

func (t *table) errorf(row int, format string, args ...any) error {
	return fmt.Errorf("%w: %s line %d: %s", ErrMalformed, t.name, t.lines[row], fmt.Sprintf(format, args...))
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// parseCount parses a comma-grouped integer. Decimal counts are rounded.
func parseCount(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a count: %q", s)
	}
	return int64(math.Round(f)), nil
}

// parseShare parses a fraction. Values written with '%' or above one are
// read as percentages.
func parseShare(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	percent := strings.HasSuffix(s, "%")
	s = strings.TrimSuffix(s, "%")
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a share: %q", s)
	}
	if percent || f > 1 {
		f /= 100
	}
	return f, nil
}

func isNationalRow(name string) bool {
	return Key(name) == "united states"
}
