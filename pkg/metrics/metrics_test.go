package metrics

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it registers under the matchboard namespace", func() {
				manager.attendeesTotal.Set(3)
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				names := map[string]bool{}
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["matchboard_organizer_attendees_total"], ShouldBeTrue)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then names and labels follow the options", func() {
				manager.matchesTotal.Set(1)
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				var found bool
				for _, f := range families {
					if f.GetName() != "test_unit_matches_total" {
						continue
					}
					found = true
					So(f.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "env")
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When empty options are given", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithConstLabels(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "matchboard")
				So(manager.subsystem, ShouldEqual, "organizer")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
				So(manager.constLabels, ShouldBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When the dataset changes", func() {
			UpdateDatasetSize(80, 400, 37)

			Convey("Then the size gauges follow", func() {
				So(testutil.ToFloat64(globalManager.attendeesTotal), ShouldEqual, 80)
				So(testutil.ToFloat64(globalManager.matchesTotal), ShouldEqual, 400)
				So(testutil.ToFloat64(globalManager.outcomesTotal), ShouldEqual, 37)
			})
		})

		Convey("When funnel values are published", func() {
			UpdateFunnelStage("Accepted", 6)
			UpdateConversionRate("connect", 60)

			Convey("Then the labelled gauges hold them", func() {
				So(testutil.ToFloat64(globalManager.funnelStage.WithLabelValues("Accepted")), ShouldEqual, 6)
				So(testutil.ToFloat64(globalManager.conversionRate.WithLabelValues("connect")), ShouldEqual, 60)
			})
		})

		Convey("When advisory fallbacks are recorded", func() {
			c := globalManager.advisoryFallbacks.WithLabelValues("nudge", "no_credential")
			before := testutil.ToFloat64(c)
			RecordAdvisoryFallback("nudge", "no_credential")
			RecordAdvisoryFallback("nudge", "no_credential")

			Convey("Then the counter grows per call", func() {
				So(testutil.ToFloat64(c)-before, ShouldEqual, 2)
			})
		})

		Convey("When everything else is recorded", func() {
			So(func() {
				RecordDatasetGenerated(1.5)
				RecordMatchAdvanced("Held")
				RecordAdvisoryCall("summary")
				RecordAdvisoryLatency("summary", 320)
				RecordAdvisorySuperseded("nudge")
				UpdateSSESubscribers(2)
				RecordSSEEvent("match.advanced")
				RecordHTTPRequest("/api/funnel", "GET", "200")
				RecordHTTPRequestDuration("/api/funnel", "GET", "200", 0.4)
				RecordErrorByComponent("advisor", "timeout")
				RecordErrorByEndpoint("/api/matches/{id}", "GET", "not_found")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.2)
			}, ShouldNotPanic)
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent recorders", t, func() {
		c := globalManager.httpRequests.WithLabelValues("/concurrency", "GET", "200")
		before := testutil.ToFloat64(c)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					RecordHTTPRequest("/concurrency", "GET", "200")
					UpdateFunnelStage("Suggested", j)
				}
			}()
		}
		wg.Wait()

		Convey("Then no increments are lost", func() {
			So(testutil.ToFloat64(c)-before, ShouldEqual, 1000)
		})
	})
}

func TestRegistry(t *testing.T) {
	Convey("Given the exported registry", t, func() {
		RecordAdvisoryCall("insights")

		Convey("Then it gathers the service metrics", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(families, ShouldNotBeEmpty)
		})
	})
}
