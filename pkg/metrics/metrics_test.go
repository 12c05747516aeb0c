package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewManager(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		reg := prometheus.NewRegistry()

		Convey("When creating a manager with options", func() {
			m := NewManager(
				WithPrometheusRegistry(reg),
				WithNamespace("testns"),
				WithSubsystem("testsub"),
				WithHistogramBuckets([]float64{1, 5, 10}),
			)

			Convey("Then the manager should be configured", func() {
				So(m, ShouldNotBeNil)
				So(m.namespace, ShouldEqual, "testns")
				So(m.subsystem, ShouldEqual, "testsub")
				So(m.histogramBuckets, ShouldResemble, []float64{1, 5, 10})
			})

			Convey("And its metrics should be registered", func() {
				m.analysesTotal.Inc()
				m.pairsCompared.Add(10)
				families, err := reg.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When options are empty or nil they keep defaults", func() {
			m := NewManager(
				WithPrometheusRegistry(reg),
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
			)
			So(m.namespace, ShouldEqual, "copycatch")
			So(m.subsystem, ShouldEqual, "analysis")
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Then the package-level helpers should not panic", func() {
			So(func() {
				RecordAnalysisRun(12.5)
				RecordAnalysisError()
				RecordPairsCompared(45)
				UpdateActiveContestants(10)
				UpdateKnownChallenges(25)
				UpdateBaselinesComputed(8)
				UpdateEdgesEmitted(3)
				UpdateAnalysisWorkerCount(4)
				RecordSnapshotFetch()
				RecordSnapshotFetchError()
				RecordSnapshotCacheHit()
				UpdateSnapshotAge(42)
				RecordHTTPRequest("analyze", "POST", "200")
				RecordHTTPRequestDuration("analyze", "POST", "200", 3.2)
				RecordErrorByEndpoint("analyze", "POST", "client_error")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
			}, ShouldNotPanic)
		})

		Convey("Then the registry should be exposed", func() {
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
