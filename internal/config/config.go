// Package config defines the simulator configuration and how it is loaded.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load(ctx) layers a YAML file and environment variables over the defaults.
// - Validation errors wrap ErrInvalidConfig; load errors wrap ErrLoadConfig.
package config

import (
	"path/filepath"
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// ElectionYear selects the population projection and the turnout range.
	ElectionYear int `koanf:"election_year"`
	// Rounds is the number of rounds to simulate.
	Rounds int `koanf:"rounds"`
	// StartRound numbers the first round. Values above 1 append to the
	// existing cumulative tables.
	StartRound int `koanf:"start_round"`
	// Seed is the root of every round's random stream. Zero draws one.
	Seed uint64 `koanf:"seed"`

	// WorkDir is where relative input and output paths are resolved.
	WorkDir string `koanf:"work_dir"`

	BaselinePopularityPath string `koanf:"baseline_popularity_path"`
	VoterRollsPath         string `koanf:"voter_rolls_path"`
	// PopulationPath is optional; without it units are sized by their
	// registered voters.
	PopulationPath string `koanf:"population_path"`
	// ElectoralVotesPath is optional; without it the 2024 apportionment is used.
	ElectoralVotesPath string `koanf:"electoral_votes_path"`

	UnitResultsFile     string `koanf:"unit_results_file"`
	NationalResultsFile string `koanf:"national_results_file"`
	MedianResultsFile   string `koanf:"median_results_file"`
	MeanResultsFile     string `koanf:"mean_results_file"`
	// NationalMeanFile, SplitOutcomeFile and WinnerCountFile are refreshed
	// with the median and mean tables.
	NationalMeanFile string `koanf:"national_mean_file"`
	SplitOutcomeFile string `koanf:"split_outcome_file"`
	WinnerCountFile  string `koanf:"winner_counts_file"`

	// SnapshotEvery refreshes the median and mean tables every N rounds.
	// Zero refreshes only at the end of the run.
	SnapshotEvery int `koanf:"snapshot_every"`

	// WorkerCount sets the number of round workers.
	WorkerCount int `koanf:"worker_count"`
	// QueueSize bounds the pending-round queue.
	QueueSize int `koanf:"queue_size"`

	// SwingModel is range or pairwise.
	SwingModel      string  `koanf:"swing_model"`
	SwingMajorRange float64 `koanf:"swing_major_range"`
	SwingMinorRange float64 `koanf:"swing_minor_range"`

	// TurnoutMode is fixed or year.
	TurnoutMode string  `koanf:"turnout_mode"`
	TurnoutMin  float64 `koanf:"turnout_min"`
	TurnoutMax  float64 `koanf:"turnout_max"`

	AbstentionRate     float64 `koanf:"abstention_rate"`
	RegistrationJitter float64 `koanf:"registration_jitter"`

	// TieBreak is order or none.
	TieBreak string `koanf:"tie_break"`
	// SplitPolicy is district or combined.
	SplitPolicy string `koanf:"split_policy"`
	// Sampling is batched or per_voter.
	Sampling string `koanf:"sampling"`

	// MetricsAddr serves Prometheus metrics when set, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		ElectionYear:           2028,
		Rounds:                 1000,
		StartRound:             1,
		WorkDir:                ".",
		BaselinePopularityPath: "Past_Election_Results.csv",
		VoterRollsPath:         "Voter_Rolls.csv",
		UnitResultsFile:        "All_Unit_Results.csv",
		NationalResultsFile:    "All_National_Results.csv",
		MedianResultsFile:      "Median_Unit_Results.csv",
		MeanResultsFile:        "Mean_Unit_Results.csv",
		NationalMeanFile:       "Mean_National_Results.csv",
		SplitOutcomeFile:       "Split_Outcome_Rounds.csv",
		WinnerCountFile:        "Unit_Winner_Counts.csv",
		SnapshotEvery:          100,
		WorkerCount:            runtime.NumCPU(),
		QueueSize:              64,
		SwingModel:             "range",
		SwingMajorRange:        0.10,
		SwingMinorRange:        0.025,
		TurnoutMode:            "fixed",
		TurnoutMin:             0.60,
		TurnoutMax:             0.90,
		AbstentionRate:         0.02,
		RegistrationJitter:     0.02,
		TieBreak:               "order",
		SplitPolicy:            "district",
		Sampling:               "batched",
	}
}

// Path resolves name against WorkDir. Empty names stay empty.
func (c *Config) Path(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.WorkDir, name)
}
