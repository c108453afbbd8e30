package service

import (
	"github.com/michaelpowers8/Election-Simulation/internal/adapters/dataset"
	"github.com/michaelpowers8/Election-Simulation/internal/config"
	"github.com/michaelpowers8/Election-Simulation/internal/domain/ballot"
	"github.com/michaelpowers8/Election-Simulation/internal/domain/electoral"
	"github.com/michaelpowers8/Election-Simulation/internal/domain/split"
	"github.com/michaelpowers8/Election-Simulation/internal/domain/swing"
	"github.com/michaelpowers8/Election-Simulation/internal/domain/unit"
)

// FromConfig builds a Service for a loaded dataset. Extra options are
// applied after the configured ones.
func FromConfig(cfg *config.Config, d *dataset.Dataset, extra ...Option) (*Service, error) {
	gen, err := swing.New(cfg.SwingModel, cfg.SwingMajorRange, cfg.SwingMinorRange)
	if err != nil {
		return nil, err
	}
	turnout, err := unit.NewTurnout(cfg.TurnoutMode, cfg.TurnoutMin, cfg.TurnoutMax)
	if err != nil {
		return nil, err
	}
	mode, err := ballot.ParseMode(cfg.Sampling)
	if err != nil {
		return nil, err
	}
	tb, err := electoral.ParseTieBreak(cfg.TieBreak)
	if err != nil {
		return nil, err
	}
	policy, err := split.ParsePolicy(cfg.SplitPolicy)
	if err != nil {
		return nil, err
	}

	opts := []Option{
		WithSeed(cfg.Seed),
		WithElectionYear(cfg.ElectionYear),
		WithSwing(gen),
		WithTurnout(turnout),
		WithSampler(ballot.New(ballot.WithAbstentionRate(cfg.AbstentionRate)), mode),
		WithTieBreak(tb),
		WithSplitPolicy(policy),
		WithRegistrationJitter(cfg.RegistrationJitter),
		WithIssues(d.Issues),
		WithWorkerCount(cfg.WorkerCount),
		WithQueueSize(cfg.QueueSize),
		WithSnapshotEvery(cfg.SnapshotEvery),
	}
	return New(d.Apportionment, d.Units, append(opts, extra...)...), nil
}
