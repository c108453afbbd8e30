// Package service drives a simulation run: it computes rounds from the
// loaded reference data and streams them, in order, to a result store.
package service

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/michaelpowers8/Election-Simulation/internal/adapters/dataset"
	"github.com/michaelpowers8/Election-Simulation/internal/domain/ballot"
	"github.com/michaelpowers8/Election-Simulation/internal/domain/electoral"
	"github.com/michaelpowers8/Election-Simulation/internal/domain/federal"
	"github.com/michaelpowers8/Election-Simulation/internal/domain/model"
	"github.com/michaelpowers8/Election-Simulation/internal/domain/party"
	"github.com/michaelpowers8/Election-Simulation/internal/domain/split"
	"github.com/michaelpowers8/Election-Simulation/internal/domain/swing"
	"github.com/michaelpowers8/Election-Simulation/internal/domain/unit"
	"github.com/michaelpowers8/Election-Simulation/pkg/logger"
	"github.com/michaelpowers8/Election-Simulation/pkg/metrics"
)

// Skip reasons reported in metrics and round records.
const (
	ReasonMismatch = "source_mismatch"
	ReasonInvalid  = "invalid_unit"
)

// Service computes rounds. SimulateRound is safe for concurrent use: each
// round draws from its own random stream and the reference data is never
// mutated.
type Service struct {
	table  electoral.Apportionment
	units  []unit.Unit
	issues []dataset.Issue

	// Simulation settings
	seed     uint64
	year     int
	swing    swing.Generator
	turnout  unit.Turnout
	sampler  *ballot.Sampler
	mode     ballot.Mode
	tieBreak electoral.TieBreak
	policy   split.Policy
	jitter   float64
	splitter *split.Aggregator

	// Pipeline settings
	workerCount   int
	queueSize     int
	snapshotEvery int

	runID  string
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSeed sets the root seed. Zero draws one from the operating system.
func WithSeed(seed uint64) Option {
	return func(s *Service) {
		s.seed = seed
	}
}

// WithElectionYear selects the population projection and turnout range.
func WithElectionYear(year int) Option {
	return func(s *Service) {
		if year > 0 {
			s.year = year
		}
	}
}

// WithSwing sets the nationwide swing model.
func WithSwing(g swing.Generator) Option {
	return func(s *Service) {
		if g != nil {
			s.swing = g
		}
	}
}

// WithTurnout sets how each round's turnout is drawn.
func WithTurnout(t unit.Turnout) Option {
	return func(s *Service) {
		s.turnout = t
	}
}

// WithSampler sets the vote sampler and its mode.
func WithSampler(sampler *ballot.Sampler, mode ballot.Mode) Option {
	return func(s *Service) {
		if sampler != nil {
			s.sampler = sampler
		}
		if mode != "" {
			s.mode = mode
		}
	}
}

// WithTieBreak sets the tie policy.
func WithTieBreak(tb electoral.TieBreak) Option {
	return func(s *Service) {
		if tb != "" {
			s.tieBreak = tb
		}
	}
}

// WithSplitPolicy sets how Maine and Nebraska award their votes.
func WithSplitPolicy(p split.Policy) Option {
	return func(s *Service) {
		if p != "" {
			s.policy = p
		}
	}
}

// WithRegistrationJitter sets the noise on registered share.
func WithRegistrationJitter(j float64) Option {
	return func(s *Service) {
		if j >= 0 {
			s.jitter = j
		}
	}
}

// WithIssues records units excluded at load time. They are reported as
// skipped in every round.
func WithIssues(issues []dataset.Issue) Option {
	return func(s *Service) {
		s.issues = issues
	}
}

// WithWorkerCount sets the number of round workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize bounds how many rounds wait for a worker.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithSnapshotEvery refreshes median and mean tables every n rounds.
func WithSnapshotEvery(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.snapshotEvery = n
		}
	}
}

// WithRunID overrides the generated run id.
func WithRunID(id string) Option {
	return func(s *Service) {
		if id != "" {
			s.runID = id
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service over the units of table.
func New(table electoral.Apportionment, units []unit.Unit, opts ...Option) *Service {
	s := &Service{
		table:         table,
		units:         units,
		year:          2028,
		swing:         swing.NewIndependentRange(),
		turnout:       unit.Turnout{Mode: unit.TurnoutFixed, Min: 0.60, Max: 0.90},
		sampler:       ballot.New(),
		mode:          ballot.ModeBatched,
		tieBreak:      electoral.TieBreakOrder,
		policy:        split.PolicyDistrict,
		jitter:        unit.DefaultRegistrationJitter,
		workerCount:   runtime.NumCPU(),
		queueSize:     64,
		snapshotEvery: 100,
		runID:         uuid.NewString(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.seed == 0 {
		s.seed = randomSeed()
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("simulation")
	}
	s.logger = s.logger.With(logger.String("run_id", s.runID))
	s.splitter = split.New(table, split.WithPolicy(s.policy), split.WithTieBreak(s.tieBreak))
	return s
}

func randomSeed() uint64 {
	var b [8]byte
	for {
		_, _ = crand.Read(b[:])
		if seed := binary.LittleEndian.Uint64(b[:]); seed != 0 {
			return seed
		}
	}
}

// RunID identifies this run in logs and metrics.
func (s *Service) RunID() string { return s.runID }

// Seed is the root seed; a run with the same seed and settings reproduces
// every round.
func (s *Service) Seed() uint64 { return s.seed }

// Units are the simulated units in output order.
func (s *Service) Units() []unit.Unit { return s.units }

// stream is round's private random source. It depends only on the seed and
// the round number, so rounds can be computed in any order.
func (s *Service) stream(round int) *rand.Rand {
	return rand.New(rand.NewPCG(s.seed, uint64(round)))
}

// SimulateRound computes one round: a swing and a turnout are drawn, every
// unit is simulated, split states are combined and the nation is tallied.
func (s *Service) SimulateRound(ctx context.Context, round int) (model.Round, error) {
	r := s.stream(round)
	delta := s.swing.Next(r)
	turnout := s.turnout.Draw(s.year, r)

	cond := unit.Conditions{
		Round:    round,
		Year:     s.year,
		Swing:    delta,
		Turnout:  turnout,
		Jitter:   s.jitter,
		TieBreak: s.tieBreak,
		Sampler:  s.sampler,
		Mode:     s.mode,
	}

	skipped := make([]model.Skip, 0, len(s.issues))
	for _, is := range s.issues {
		skipped = append(skipped, model.Skip{Unit: is.Unit, Reason: ReasonMismatch})
		metrics.RecordUnitSkipped(ReasonMismatch)
	}

	results := make([]model.UnitRoundResult, 0, len(s.units)+2)
	for _, u := range s.units {
		start := time.Now()
		res, err := unit.Simulate(u, cond, r)
		metrics.RecordUnitLatency(time.Since(start).Seconds())
		if errors.Is(err, unit.ErrInvalidUnit) {
			s.logger.Warn(ctx, "skipping unit",
				logger.Int("round", round),
				logger.String("unit", u.Name),
				logger.Error(err),
			)
			skipped = append(skipped, model.Skip{Unit: u.Name, Reason: ReasonInvalid})
			metrics.RecordUnitSkipped(ReasonInvalid)
			continue
		}
		if err != nil {
			return model.Round{}, fmt.Errorf("unit %s: %w", u.Name, err)
		}
		if res.Normalization == party.Fallback {
			metrics.RecordNormalizationFallback()
		}
		s.logger.Debug(ctx, "unit simulated",
			logger.Int("round", round),
			logger.String("unit", res.Unit),
			logger.Int64("votes_to_cast", res.VotesToCast),
			logger.String("winner", res.Winner.String()),
			logger.Bool("tied", res.Tied),
		)
		results = append(results, res)
	}

	results = s.splitter.Apply(round, results)
	national := federal.Aggregate(round, turnout, s.table.Total(), results, len(skipped))
	s.record(results, national)

	return model.Round{
		Number:   round,
		Swing:    delta,
		Turnout:  turnout,
		Units:    results,
		National: national,
		Skipped:  skipped,
	}, nil
}

func (s *Service) record(results []model.UnitRoundResult, n model.NationalRoundResult) {
	var abstained int64
	for _, res := range results {
		if res.Tied {
			metrics.RecordTie()
		}
		if res.NoData {
			metrics.RecordNoData()
		}
		if res.Combined {
			if res.Winner != party.None {
				metrics.RecordSplitAward(res.Unit, res.Winner.String())
			}
			continue
		}
		abstained += res.Abstentions
	}
	for _, p := range party.All {
		metrics.RecordVotes(p.String(), n.Votes[p])
	}
	metrics.RecordAbstentions(abstained)
}
