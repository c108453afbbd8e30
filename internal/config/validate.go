package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/michaelpowers8/Election-Simulation/internal/domain/ballot"
	"github.com/michaelpowers8/Election-Simulation/internal/domain/electoral"
	"github.com/michaelpowers8/Election-Simulation/internal/domain/split"
	"github.com/michaelpowers8/Election-Simulation/internal/domain/swing"
	"github.com/michaelpowers8/Election-Simulation/internal/domain/unit"
)

// Validate reports every problem with c. The returned error wraps
// ErrInvalidConfig.
func (c *Config) Validate() error {
	var problems []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			problems = append(problems, fmt.Errorf(format, args...))
		}
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		problems = append(problems, fmt.Errorf("log_level %q", c.LogLevel))
	}
	check(c.LogFormat == "text" || c.LogFormat == "json", "log_format %q must be text or json", c.LogFormat)

	check(c.ElectionYear > 0, "election_year must be positive")
	check(c.Rounds >= 1, "rounds must be at least 1")
	check(c.StartRound >= 1, "start_round must be at least 1")
	check(c.SnapshotEvery >= 0, "snapshot_every must not be negative")
	check(c.WorkerCount >= 1, "worker_count must be at least 1")
	check(c.QueueSize >= 1, "queue_size must be at least 1")

	required := []struct {
		key, value string
	}{
		{"baseline_popularity_path", c.BaselinePopularityPath},
		{"voter_rolls_path", c.VoterRollsPath},
		{"unit_results_file", c.UnitResultsFile},
		{"national_results_file", c.NationalResultsFile},
		{"median_results_file", c.MedianResultsFile},
		{"mean_results_file", c.MeanResultsFile},
		{"national_mean_file", c.NationalMeanFile},
		{"split_outcome_file", c.SplitOutcomeFile},
		{"winner_counts_file", c.WinnerCountFile},
	}
	for _, r := range required {
		check(r.value != "", "%s must not be empty", r.key)
	}

	check(c.SwingMajorRange >= 0 && c.SwingMinorRange >= 0, "swing ranges must not be negative")
	if _, err := swing.New(c.SwingModel, c.SwingMajorRange, c.SwingMinorRange); err != nil {
		problems = append(problems, err)
	}
	if _, err := unit.NewTurnout(c.TurnoutMode, c.TurnoutMin, c.TurnoutMax); err != nil {
		problems = append(problems, err)
	}
	check(c.AbstentionRate >= 0 && c.AbstentionRate < 1, "abstention_rate %v outside [0, 1)", c.AbstentionRate)
	check(c.RegistrationJitter >= 0 && c.RegistrationJitter < 1, "registration_jitter %v outside [0, 1)", c.RegistrationJitter)

	if _, err := electoral.ParseTieBreak(c.TieBreak); err != nil {
		problems = append(problems, err)
	}
	if _, err := split.ParsePolicy(c.SplitPolicy); err != nil {
		problems = append(problems, err)
	}
	if _, err := ballot.ParseMode(c.Sampling); err != nil {
		problems = append(problems, err)
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(problems...))
}
