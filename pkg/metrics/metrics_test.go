package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a custom registry and options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("sim"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithCustomLabels(map[string]string{"run_id": "r1"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then every metric is registered on that registry", func() {
				So(manager, ShouldNotBeNil)
				manager.roundsCompleted.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_sim_rounds_completed_total")
			})
		})

		Convey("When two managers share a fresh registry each", func() {
			So(func() {
				NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))
				NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))
			}, ShouldNotPanic)
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a freshly initialized global manager", t, func() {
		Init(WithCustomLabels(map[string]string{"run_id": "test"}))
		m := current()

		Convey("When recording round metrics", func() {
			RecordRoundCompleted(1, 0.5)
			RecordRoundCompleted(2, 0.25)

			Convey("Then counters and gauges reflect the rounds", func() {
				So(testutil.ToFloat64(m.roundsCompleted), ShouldEqual, 2)
				So(testutil.ToFloat64(m.lastRound), ShouldEqual, 2)
			})
		})

		Convey("When recording unit outcomes", func() {
			RecordVotes("Republican", 100)
			RecordVotes("Republican", 50)
			RecordVotes("Democrat", 0)
			RecordAbstentions(7)
			RecordTie()
			RecordNoData()
			RecordNormalizationFallback()
			RecordUnitSkipped("unit_mismatch")
			RecordSplitAward("Maine", "Democrat")

			Convey("Then labelled counters accumulate", func() {
				So(testutil.ToFloat64(m.votesCast.WithLabelValues("Republican")), ShouldEqual, 150)
				So(testutil.ToFloat64(m.abstentions), ShouldEqual, 7)
				So(testutil.ToFloat64(m.ties), ShouldEqual, 1)
				So(testutil.ToFloat64(m.noDataUnits), ShouldEqual, 1)
				So(testutil.ToFloat64(m.normalizationFallbacks), ShouldEqual, 1)
				So(testutil.ToFloat64(m.unitsSkipped.WithLabelValues("unit_mismatch")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.splitAwards.WithLabelValues("Maine", "Democrat")), ShouldEqual, 1)
			})
		})

		Convey("When recording pipeline and store metrics", func() {
			So(func() {
				UpdateQueueSize(12)
				UpdateWorkerCount(4)
				RecordUnitLatency(0.001)
				RecordRowsWritten("unit", 56)
				RecordWriteError()
				RecordSnapshot(0.2)
			}, ShouldNotPanic)
			So(testutil.ToFloat64(m.workerCount), ShouldEqual, 4)
			So(testutil.ToFloat64(m.rowsWritten.WithLabelValues("unit")), ShouldEqual, 56)
		})

		Convey("When scraping the handler", func() {
			RecordRoundCompleted(3, 0.1)
			rec := httptest.NewRecorder()
			Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
			body, err := io.ReadAll(rec.Body)

			Convey("Then the exposition carries the run label", func() {
				So(err, ShouldBeNil)
				So(strings.Contains(string(body), `electsim_simulator_rounds_completed_total{run_id="test"} 1`), ShouldBeTrue)
			})
		})
	})
}
