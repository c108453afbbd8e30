package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/michaelpowers8/Election-Simulation/internal/adapters/dataset"
	"github.com/michaelpowers8/Election-Simulation/internal/adapters/repository"
	app "github.com/michaelpowers8/Election-Simulation/internal/app"
	"github.com/michaelpowers8/Election-Simulation/internal/config"
	"github.com/michaelpowers8/Election-Simulation/pkg/logger"
	"github.com/michaelpowers8/Election-Simulation/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 60 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM. The run stops after the
	// rounds in flight.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one simulation and returns the process exit code.
func run(ctx context.Context, stdout, stderr io.Writer) int {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger isn't configured yet
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return 1
	}

	if err := logger.Init(logger.WithOutput(stdout), logger.WithJSON(cfg.LogFormat == "json")); err != nil {
		fmt.Fprintf(stderr, "failed to initialize logging: %v\n", err)
		return 1
	}
	_ = logger.SetLevelString(cfg.LogLevel)
	log := logger.Get()

	d, err := dataset.Load(ctx, dataset.Sources{
		Apportionment: cfg.Path(cfg.ElectoralVotesPath),
		Baselines:     cfg.Path(cfg.BaselinePopularityPath),
		VoterRolls:    cfg.Path(cfg.VoterRollsPath),
		Population:    cfg.Path(cfg.PopulationPath),
		Year:          cfg.ElectionYear,
	})
	if err != nil {
		log.Error(ctx, "failed to load reference data", logger.Error(err))
		return 1
	}
	if len(d.Unused) > 0 {
		log.Warn(ctx, "source rows match no seat of the apportionment", logger.Any("units", d.Unused))
	}

	svc, err := app.FromConfig(cfg, d, app.WithLogger(log))
	if err != nil {
		log.Error(ctx, "failed to configure simulation", logger.Error(err))
		return 1
	}

	metrics.Init(metrics.WithCustomLabels(map[string]string{"run_id": svc.RunID()}))
	reg := metrics.GetRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if cfg.MetricsAddr != "" {
		shutdown, err := serveMetrics(ctx, cfg.MetricsAddr, log)
		if err != nil {
			log.Error(ctx, "failed to start metrics server", logger.String("addr", cfg.MetricsAddr), logger.Error(err))
			return 1
		}
		defer shutdown()
	}

	store, err := repository.NewCSVStore(cfg.WorkDir,
		repository.WithUnitFile(cfg.UnitResultsFile),
		repository.WithNationalFile(cfg.NationalResultsFile),
		repository.WithMedianFile(cfg.MedianResultsFile),
		repository.WithMeanFile(cfg.MeanResultsFile),
		repository.WithNationalMeanFile(cfg.NationalMeanFile),
		repository.WithSplitOutcomeFile(cfg.SplitOutcomeFile),
		repository.WithWinnerCountFile(cfg.WinnerCountFile),
		repository.WithAppend(cfg.StartRound > 1),
	)
	if err != nil {
		log.Error(ctx, "failed to open result tables", logger.String("work_dir", cfg.WorkDir), logger.Error(err))
		return 1
	}

	rep, runErr := svc.Run(ctx, store, cfg.StartRound, cfg.Rounds)
	if err := store.Close(); err != nil {
		runErr = errors.Join(runErr, err)
	}
	if runErr != nil {
		log.Error(ctx, "simulation aborted", logger.Int("rounds_written", rep.Written), logger.Error(runErr))
		return 1
	}
	if rep.Interrupted {
		log.Warn(ctx, "simulation interrupted; resume with start_round",
			logger.Int("start_round", rep.First+rep.Written),
			logger.Any("seed", rep.Seed),
		)
	}
	return 0
}

// serveMetrics exposes the metrics registry on addr until the returned
// shutdown function is called.
func serveMetrics(ctx context.Context, addr string, log logger.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}

	go func() {
		log.Info(ctx, "serving metrics", logger.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "metrics server failed", logger.Error(err))
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error(ctx, "metrics server shutdown failed", logger.Error(err))
		}
	}, nil
}
