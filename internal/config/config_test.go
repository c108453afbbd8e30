package config_test

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/michaelpowers8/Election-Simulation/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Rounds, convey.ShouldEqual, 1000)
			convey.So(cfg.StartRound, convey.ShouldEqual, 1)
			convey.So(cfg.ElectionYear, convey.ShouldEqual, 2028)
			convey.So(cfg.Seed, convey.ShouldEqual, 0)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.TieBreak, convey.ShouldEqual, "order")
			convey.So(cfg.SplitPolicy, convey.ShouldEqual, "district")
			convey.So(cfg.Sampling, convey.ShouldEqual, "batched")
			convey.So(cfg.UnitResultsFile, convey.ShouldEqual, "All_Unit_Results.csv")
		})

		convey.Convey("Then the defaults validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Path(t *testing.T) {
	convey.Convey("Given a work directory", t, func() {
		cfg := config.New()
		cfg.WorkDir = filepath.Join("runs", "a")

		convey.So(cfg.Path("x.csv"), convey.ShouldEqual, filepath.Join("runs", "a", "x.csv"))
		convey.So(cfg.Path(""), convey.ShouldEqual, "")

		abs, _ := filepath.Abs("y.csv")
		convey.So(cfg.Path(abs), convey.ShouldEqual, abs)
	})
}

func TestConfig_Validate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"zero rounds", func(c *config.Config) { c.Rounds = 0 }, "rounds"},
		{"start round zero", func(c *config.Config) { c.StartRound = 0 }, "start_round"},
		{"no workers", func(c *config.Config) { c.WorkerCount = 0 }, "worker_count"},
		{"missing voter rolls", func(c *config.Config) { c.VoterRollsPath = "" }, "voter_rolls_path"},
		{"missing winner counts file", func(c *config.Config) { c.WinnerCountFile = "" }, "winner_counts_file"},
		{"unknown tie policy", func(c *config.Config) { c.TieBreak = "coin" }, "tie"},
		{"unknown split policy", func(c *config.Config) { c.SplitPolicy = "proportional" }, "split"},
		{"unknown sampling", func(c *config.Config) { c.Sampling = "exact" }, "sampling"},
		{"unknown swing model", func(c *config.Config) { c.SwingModel = "gaussian" }, "swing"},
		{"inverted turnout", func(c *config.Config) { c.TurnoutMin, c.TurnoutMax = 0.9, 0.6 }, "turnout"},
		{"abstention of one", func(c *config.Config) { c.AbstentionRate = 1 }, "abstention_rate"},
		{"bad log format", func(c *config.Config) { c.LogFormat = "xml" }, "log_format"},
		{"bad log level", func(c *config.Config) { c.LogLevel = "loud" }, "log_level"},
	}

	convey.Convey("Given invalid settings", t, func() {
		for _, tc := range cases {
			convey.Convey("When "+tc.name, func() {
				cfg := config.New()
				tc.mutate(cfg)
				err := cfg.Validate()

				convey.Convey("Then validation names the problem", func() {
					convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
					convey.So(err.Error(), convey.ShouldContainSubstring, tc.want)
				})
			})
		}

		convey.Convey("When several settings are wrong", func() {
			cfg := config.New()
			cfg.Rounds = -1
			cfg.QueueSize = 0
			err := cfg.Validate()

			convey.Convey("Then every problem is reported", func() {
				convey.So(err.Error(), convey.ShouldContainSubstring, "rounds")
				convey.So(err.Error(), convey.ShouldContainSubstring, "queue_size")
			})
		})
	})
}
