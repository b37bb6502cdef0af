package metrics

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 2, 3}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then collectors are registered under the namespace", func() {
				So(m, ShouldNotBeNil)
				m.submissions.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "test_unit_submissions_total" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetValue(), ShouldEqual, "test")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When empty options are given", func() {
			m := NewManager(WithNamespace(""), WithSubsystem(""), WithHistogramBuckets(nil), WithConstLabels(nil), WithPrometheusRegistry(registry))

			Convey("Then defaults are kept", func() {
				So(m.namespace, ShouldEqual, "fplpicks")
				So(m.subsystem, ShouldEqual, "pool")
				So(m.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording domain events", func() {
			before := testutil.ToFloat64(globalManager.submissions)
			RecordSubmission()
			RecordSubmissionRejected("duplicate")
			RecordRosterOperation("add", "ok")
			RecordNameMatches(3, 1)
			RecordExtractionFallback()
			RecordJobFinished("done")

			Convey("Then the counters move", func() {
				So(testutil.ToFloat64(globalManager.submissions), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.submissionsReject.WithLabelValues("duplicate")), ShouldBeGreaterThanOrEqualTo, 1)
				So(testutil.ToFloat64(globalManager.rosterOps.WithLabelValues("add", "ok")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When setting gauges", func() {
			UpdateQueueSize(4)
			UpdateQueueCapacity(10)
			UpdateActiveSessions(2)
			UpdateLiveClients(1)
			UpdateBreakerState(2)

			So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, float64(4))
			So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, float64(10))
			So(testutil.ToFloat64(globalManager.activeSess), ShouldEqual, float64(2))
			So(testutil.ToFloat64(globalManager.breakerState), ShouldEqual, float64(2))
		})

		Convey("When exporting the registry", func() {
			RecordHTTPRequest("/players", "GET", "200")
			RecordHTTPRequestDuration("/players", "GET", "200", 3)

			n, err := testutil.GatherAndCount(GetRegistry(), "fplpicks_pool_http_requests_total")
			So(err, ShouldBeNil)
			So(n, ShouldBeGreaterThanOrEqualTo, 1)
		})
	})
}

func TestRecordingConcurrency(t *testing.T) {
	Convey("Given concurrent writers", t, func() {
		before := testutil.ToFloat64(globalManager.queueEnqueued)
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 50; j++ {
					RecordQueueEnqueue()
				}
			}()
		}
		wg.Wait()

		So(testutil.ToFloat64(globalManager.queueEnqueued), ShouldEqual, before+1000)
	})
}
