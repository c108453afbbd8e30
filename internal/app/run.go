package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/michaelpowers8/Election-Simulation/internal/adapters/mq/queue"
	"github.com/michaelpowers8/Election-Simulation/internal/adapters/mq/worker"
	"github.com/michaelpowers8/Election-Simulation/internal/adapters/repository"
	"github.com/michaelpowers8/Election-Simulation/internal/domain/model"
	"github.com/michaelpowers8/Election-Simulation/internal/domain/party"
	"github.com/michaelpowers8/Election-Simulation/internal/domain/split"
	"github.com/michaelpowers8/Election-Simulation/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// Report summarizes a finished run.
type Report struct {
	RunID     string
	Seed      uint64
	First     int
	Requested int
	Written   int
	Snapshots int
	// Interrupted is set when the run stopped before every round was written.
	Interrupted bool
	Elapsed     time.Duration
}

// Run simulates rounds first..first+rounds-1 and writes them to store in
// order. Canceling ctx stops the run after the rounds in flight; whatever
// was written is still summarized by a final snapshot.
func (s *Service) Run(ctx context.Context, store repository.Store, first, rounds int) (Report, error) {
	if first < 1 || rounds < 1 {
		return Report{}, fmt.Errorf("invalid round range %d+%d", first, rounds)
	}
	start := time.Now()
	rep := Report{RunID: s.runID, Seed: s.seed, First: first, Requested: rounds}

	s.logger.Info(ctx, "starting simulation",
		logger.Any("seed", s.seed),
		logger.Int("first_round", first),
		logger.Int("rounds", rounds),
		logger.Int("units", len(s.units)),
		logger.Int("workers", s.workerCount),
		logger.String("split_policy", string(s.policy)),
		logger.String("tie_break", string(s.tieBreak)),
		logger.String("sampling", string(s.mode)),
	)
	if s.policy == split.PolicyCombined && len(s.table.SplitStates()) > 0 {
		s.logger.Warn(ctx, "winner-take-all split policy: district votes follow the statewide plurality",
			logger.Any("states", s.table.SplitStates()),
		)
	}
	for _, is := range s.issues {
		s.logger.Warn(ctx, "unit excluded from every round", logger.String("unit", is.Unit), logger.Error(is.Err))
	}

	q := queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	pool := worker.NewPool(s.workerCount, q, s, worker.WithLogger(s.logger.Named("worker")))
	sink := &snapshotSink{store: store, every: s.snapshotEvery, logger: s.logger}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer func() { _ = q.Close() }()
		for n := first; n < first+rounds; n++ {
			if err := q.Put(gctx, queue.Job{Round: n}); err != nil {
				return nil
			}
		}
		return nil
	})
	g.Go(func() error {
		written, err := pool.Run(gctx, first, sink)
		rep.Written = written
		return err
	})
	runErr := g.Wait()

	if rep.Written > 0 && sink.dirty {
		if err := sink.snapshot(context.WithoutCancel(ctx)); err != nil {
			runErr = errors.Join(runErr, err)
		}
	}
	rep.Snapshots = sink.snapshots
	rep.Interrupted = rep.Written < rounds
	rep.Elapsed = time.Since(start)

	if runErr != nil {
		s.logger.Error(ctx, "simulation failed", logger.Int("written", rep.Written), logger.Error(runErr))
		return rep, runErr
	}
	s.logger.Info(ctx, "simulation finished",
		logger.Int("written", rep.Written),
		logger.Bool("interrupted", rep.Interrupted),
		logger.Duration("elapsed", rep.Elapsed),
	)
	return rep, nil
}

// snapshotSink writes rounds to the store and refreshes the summary tables
// every n rounds. It is only called by the pool's sequencer.
type snapshotSink struct {
	store     repository.Store
	every     int
	logger    logger.Logger
	written   int
	snapshots int
	dirty     bool
}

func (k *snapshotSink) WriteRound(ctx context.Context, r model.Round) error {
	if err := k.store.WriteRound(ctx, r); err != nil {
		return err
	}
	k.written++
	k.dirty = true

	n := r.National
	k.logger.Info(ctx, "round written",
		logger.Int("round", r.Number),
		logger.String("winner", n.Winner().String()),
		logger.Int("republican_ev", n.ElectoralVotes[party.Republican]),
		logger.Int("democrat_ev", n.ElectoralVotes[party.Democrat]),
		logger.Int("independent_ev", n.ElectoralVotes[party.Independent]),
		logger.Int("unawarded", n.Unawarded),
		logger.Int("skipped", n.Skipped),
	)

	if k.every > 0 && k.written%k.every == 0 {
		return k.snapshot(ctx)
	}
	return nil
}

func (k *snapshotSink) snapshot(ctx context.Context) error {
	sum, err := k.store.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("snapshot after %d rounds: %w", k.written, err)
	}
	k.snapshots++
	k.dirty = false
	k.logger.Info(ctx, "summary tables refreshed",
		logger.Int("rounds", k.written),
		logger.Int("units", len(sum.Median)),
		logger.Int("split_outcomes", len(sum.SplitOutcomes)),
	)
	return nil
}

var _ worker.Simulator = (*Service)(nil)
