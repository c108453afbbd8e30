// Package metrics provides Prometheus metrics for the election simulator.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager manages all Prometheus metrics for the simulator.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Round Metrics - progress of the driver loop
	roundsCompleted prometheus.Counter
	roundDuration   prometheus.Histogram
	lastRound       prometheus.Gauge

	// Unit Metrics - per-unit simulation outcomes
	unitLatency            prometheus.Histogram
	votesCast              *prometheus.CounterVec
	abstentions            prometheus.Counter
	unitsSkipped           *prometheus.CounterVec
	ties                   prometheus.Counter
	noDataUnits            prometheus.Counter
	normalizationFallbacks prometheus.Counter
	splitAwards            *prometheus.CounterVec

	// Pipeline Metrics - round queue and workers
	queueSize   prometheus.Gauge
	workerCount prometheus.Gauge

	// Store Metrics - result persistence
	rowsWritten       *prometheus.CounterVec
	writeErrors       prometheus.Counter
	snapshotDuration  prometheus.Histogram
	snapshotsComputed prometheus.Counter
}

var (
	mu            sync.RWMutex
	globalManager *Manager            //nolint:gochecknoglobals // intentional global for singleton metrics manager
	registry      *prometheus.Registry //nolint:gochecknoglobals // intentional global for metrics registry
)

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	Init()
}

// Init replaces the global manager with one registered on a fresh registry.
// Labels passed through WithCustomLabels become constant labels on every metric.
func Init(opts ...Option) {
	reg := prometheus.NewRegistry()
	m := NewManager(append([]Option{WithPrometheusRegistry(reg)}, opts...)...)

	mu.Lock()
	globalManager = m
	registry = reg
	mu.Unlock()
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "electsim",
		subsystem:        "simulator",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
		Buckets:     buckets,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.roundsCompleted = auto.NewCounter(m.counterOpts(
		"rounds_completed_total", "Total number of election rounds simulated and persisted"))
	m.roundDuration = auto.NewHistogram(m.histogramOpts(
		"round_duration_seconds", "Wall time to simulate one round across all units", m.histogramBuckets))
	m.lastRound = auto.NewGauge(m.gaugeOpts(
		"last_round", "Number of the most recently persisted round"))

	m.unitLatency = auto.NewHistogram(m.histogramOpts(
		"unit_simulation_seconds", "Wall time to simulate a single unit for one round",
		[]float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}))
	m.votesCast = auto.NewCounterVec(m.counterOpts(
		"votes_cast_total", "Total simulated votes cast by party"), []string{"party"})
	m.abstentions = auto.NewCounter(m.counterOpts(
		"abstentions_total", "Total simulated voters who abstained"))
	m.unitsSkipped = auto.NewCounterVec(m.counterOpts(
		"units_skipped_total", "Units omitted from a round aggregate by reason"), []string{"reason"})
	m.ties = auto.NewCounter(m.counterOpts(
		"ties_total", "Unit results whose plurality was an exact tie"))
	m.noDataUnits = auto.NewCounter(m.counterOpts(
		"no_data_units_total", "Unit results with zero votes cast"))
	m.normalizationFallbacks = auto.NewCounter(m.counterOpts(
		"normalization_fallbacks_total", "Popularity vectors that needed the uniform fallback"))
	m.splitAwards = auto.NewCounterVec(m.counterOpts(
		"split_state_awards_total", "Split-state at-large awards by state and party"), []string{"state", "party"})

	m.queueSize = auto.NewGauge(m.gaugeOpts(
		"round_queue_size", "Rounds waiting in the job queue"))
	m.workerCount = auto.NewGauge(m.gaugeOpts(
		"worker_count", "Number of round workers"))

	m.rowsWritten = auto.NewCounterVec(m.counterOpts(
		"rows_written_total", "Rows appended to result tables"), []string{"table"})
	m.writeErrors = auto.NewCounter(m.counterOpts(
		"write_errors_total", "Failed result table writes"))
	m.snapshotDuration = auto.NewHistogram(m.histogramOpts(
		"snapshot_duration_seconds", "Time to recompute median/mean snapshot tables", m.histogramBuckets))
	m.snapshotsComputed = auto.NewCounter(m.counterOpts(
		"snapshots_total", "Number of median/mean snapshots written"))
}

func current() *Manager {
	mu.RLock()
	defer mu.RUnlock()
	return globalManager
}

// RecordRoundCompleted records a persisted round and its duration in seconds.
func RecordRoundCompleted(round int, seconds float64) {
	m := current()
	m.roundsCompleted.Inc()
	m.roundDuration.Observe(seconds)
	m.lastRound.Set(float64(round))
}

// RecordUnitLatency records the time spent simulating one unit.
func RecordUnitLatency(seconds float64) {
	current().unitLatency.Observe(seconds)
}

// RecordVotes adds simulated votes for a party.
func RecordVotes(party string, votes int64) {
	if votes > 0 {
		current().votesCast.WithLabelValues(party).Add(float64(votes))
	}
}

// RecordAbstentions adds simulated abstentions.
func RecordAbstentions(n int64) {
	if n > 0 {
		current().abstentions.Add(float64(n))
	}
}

// RecordUnitSkipped counts a unit omitted from a round.
func RecordUnitSkipped(reason string) {
	current().unitsSkipped.WithLabelValues(reason).Inc()
}

// RecordTie counts an exact plurality tie.
func RecordTie() {
	current().ties.Inc()
}

// RecordNoData counts a unit with zero votes cast.
func RecordNoData() {
	current().noDataUnits.Inc()
}

// RecordNormalizationFallback counts a popularity vector that fell back to uniform.
func RecordNormalizationFallback() {
	current().normalizationFallbacks.Inc()
}

// RecordSplitAward counts an at-large award for a split state.
func RecordSplitAward(state, party string) {
	current().splitAwards.WithLabelValues(state, party).Inc()
}

// UpdateQueueSize sets the number of rounds waiting in the job queue.
func UpdateQueueSize(size int) {
	current().queueSize.Set(float64(size))
}

// UpdateWorkerCount sets the number of round workers.
func UpdateWorkerCount(count int) {
	current().workerCount.Set(float64(count))
}

// RecordRowsWritten adds appended rows for a table.
func RecordRowsWritten(table string, n int) {
	current().rowsWritten.WithLabelValues(table).Add(float64(n))
}

// RecordWriteError counts a failed table write.
func RecordWriteError() {
	current().writeErrors.Inc()
}

// RecordSnapshot records a completed snapshot and its duration in seconds.
func RecordSnapshot(seconds float64) {
	m := current()
	m.snapshotDuration.Observe(seconds)
	m.snapshotsComputed.Inc()
}

// GetRegistry returns the Prometheus registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	mu.RLock()
	defer mu.RUnlock()
	return registry
}

// Handler serves the global registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}
