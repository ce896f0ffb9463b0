// Package metrics holds the Prometheus collectors shared across the renderer.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "livingroom"

var (
	fetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fetch_duration_seconds",
		Help:      "Upstream document fetch latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"source", "outcome"})

	sectionRenders = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "section_renders_total",
		Help:      "Section render attempts by outcome (ok, fallback, empty, skipped)",
	}, []string{"page", "section", "outcome"})

	overrideLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "override_loads_total",
		Help:      "Override record loads by outcome; failures degrade to an empty set",
	}, []string{"outcome"})

	pageLoadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "page_load_duration_seconds",
		Help:      "Wall time to render every section of a page",
		Buckets:   prometheus.DefBuckets,
	}, []string{"page"})

	clockTicks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "clock_ticks_total",
		Help:      "Live status clock renders by state",
	}, []string{"state"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latencies in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveFetch records one upstream GET.
func ObserveFetch(source string, d time.Duration, err error) {
	fetchDuration.WithLabelValues(source, outcome(err)).Observe(d.Seconds())
}

// SectionRendered counts one section run.
func SectionRendered(page, section, result string) {
	sectionRenders.WithLabelValues(page, section, result).Inc()
}

// OverridesLoaded counts one override load.
func OverridesLoaded(err error) {
	overrideLoads.WithLabelValues(outcome(err)).Inc()
}

// PageLoaded records the duration of a full page load.
func PageLoaded(page string, d time.Duration) {
	pageLoadDuration.WithLabelValues(page).Observe(d.Seconds())
}

// ClockTick counts one clock render.
func ClockTick(state string) {
	clockTicks.WithLabelValues(state).Inc()
}

// ObserveHTTP records one served request. route is the chi route pattern,
// never the raw path.
func ObserveHTTP(method, route string, status int, d time.Duration) {
	httpRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
