package repository

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/michaelpowers8/Election-Simulation/internal/domain/model"
	"github.com/michaelpowers8/Election-Simulation/pkg/metrics"
)

// CSVStore appends results to flat CSV files in a working directory.
// It must be written by a single goroutine at a time; calls are
// serialized by a mutex.
type CSVStore struct {
	mu sync.Mutex

	dir          string
	unitFile     string
	nationalFile string
	medianFile   string
	meanFile     string
	natMeanFile  string
	splitFile    string
	winnerFile   string
	appendMode   bool

	unit        *os.File
	unitCSV     *csv.Writer
	national    *os.File
	nationalCSV *csv.Writer
	closed      bool
}

// NewCSVStore opens (or creates) the result tables under dir. Without
// WithAppend existing tables are truncated. With it, rows are appended and
// an existing header must match.
func NewCSVStore(dir string, opts ...Option) (*CSVStore, error) {
	s := &CSVStore{
		dir:          dir,
		unitFile:     DefaultUnitFile,
		nationalFile: DefaultNationalFile,
		medianFile:   DefaultMedianFile,
		meanFile:     DefaultMeanFile,
		natMeanFile:  DefaultNationalMeanFile,
		splitFile:    DefaultSplitOutcomeFile,
		winnerFile:   DefaultWinnerCountFile,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}

	var err error
	if s.unit, err = s.open(s.unitFile, unitHeader); err != nil {
		return nil, err
	}
	if s.national, err = s.open(s.nationalFile, nationalHeader); err != nil {
		_ = s.unit.Close()
		return nil, err
	}
	s.unitCSV = csv.NewWriter(s.unit)
	s.nationalCSV = csv.NewWriter(s.national)
	return s, nil
}

func (s *CSVStore) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}

func (s *CSVStore) open(name string, header []string) (*os.File, error) {
	path := s.path(name)
	flags := os.O_CREATE | os.O_RDWR
	if s.appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() > 0 {
		existing, err := csv.NewReader(f).Read()
		if err != nil || !slices.Equal(existing, header) {
			_ = f.Close()
			return nil, fmt.Errorf("%s: %w", path, ErrHeaderMismatch)
		}
		return f, nil
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write header %s: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write header %s: %w", path, err)
	}
	return f, nil
}

// WriteRound appends the round's unit rows then its national row. Both
// tables are flushed before it returns.
func (s *CSVStore) WriteRound(_ context.Context, r model.Round) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	for _, u := range r.Units {
		if err := s.unitCSV.Write(unitRecord(u)); err != nil {
			metrics.RecordWriteError()
			return fmt.Errorf("write unit row: %w", err)
		}
	}
	if err := s.nationalCSV.Write(nationalRecord(r.National)); err != nil {
		metrics.RecordWriteError()
		return fmt.Errorf("write national row: %w", err)
	}

	s.unitCSV.Flush()
	s.nationalCSV.Flush()
	if err := errors.Join(s.unitCSV.Error(), s.nationalCSV.Error()); err != nil {
		metrics.RecordWriteError()
		return fmt.Errorf("flush round %d: %w", r.Number, err)
	}

	metrics.RecordRowsWritten("unit", len(r.Units))
	metrics.RecordRowsWritten("national", 1)
	return nil
}

// Snapshot re-reads the cumulative unit and national tables and rewrites
// every summary table.
func (s *CSVStore) Snapshot(_ context.Context) (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Summary{}, ErrClosed
	}
	start := time.Now()

	acc := newAccumulator()
	if err := s.read(s.unitFile, func(r io.Reader) error { return readUnitTable(r, acc) }); err != nil {
		return Summary{}, fmt.Errorf("read unit table: %w", err)
	}
	nat := newNationalAccumulator()
	if err := s.read(s.nationalFile, func(r io.Reader) error { return readNationalTable(r, nat) }); err != nil {
		return Summary{}, fmt.Errorf("read national table: %w", err)
	}
	sum := acc.summary()
	nat.fill(&sum)

	tables := []struct {
		name   string
		encode func(io.Writer) error
	}{
		{s.medianFile, writeSummaryTable(sum.Median)},
		{s.meanFile, writeSummaryTable(sum.Mean)},
		{s.natMeanFile, writeNationalMean(sum.National)},
		{s.splitFile, writeSplitOutcomes(sum.SplitOutcomes)},
		{s.winnerFile, writeWinnerCounts(sum.Winners)},
	}
	for _, t := range tables {
		if err := s.replace(t.name, t.encode); err != nil {
			return Summary{}, err
		}
	}

	metrics.RecordSnapshot(time.Since(start).Seconds())
	return sum, nil
}

func (s *CSVStore) read(name string, parse func(io.Reader) error) error {
	f, err := os.Open(s.path(name))
	if err != nil {
		return err
	}
	defer f.Close()
	return parse(f)
}

// replace writes a snapshot table next to its destination and renames it
// into place, so readers never see a partial table.
func (s *CSVStore) replace(name string, encode func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := encode(&buf); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	tmp := s.path(name + ".tmp")
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		metrics.RecordWriteError()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, s.path(name)); err != nil {
		metrics.RecordWriteError()
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

// Close flushes and closes both tables.
func (s *CSVStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.unitCSV.Flush()
	s.nationalCSV.Flush()
	return errors.Join(
		s.unitCSV.Error(),
		s.nationalCSV.Error(),
		s.unit.Close(),
		s.national.Close(),
	)
}

// Paths returns the locations of the result and median/mean tables.
func (s *CSVStore) Paths() (unit, national, median, mean string) {
	return s.path(s.unitFile), s.path(s.nationalFile), s.path(s.medianFile), s.path(s.meanFile)
}

// AnalysisPaths returns the locations of the national mean, split outcome
// and winner count tables.
func (s *CSVStore) AnalysisPaths() (nationalMean, splitOutcomes, winnerCounts string) {
	return s.path(s.natMeanFile), s.path(s.splitFile), s.path(s.winnerFile)
}

var (
	_ Store = (*CSVStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
