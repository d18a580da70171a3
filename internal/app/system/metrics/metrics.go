// internal/app/system/metrics/metrics.go
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application's collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "newsletterhub",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsletterhub",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "newsletterhub",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	generations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsletterhub",
			Subsystem: "textgen",
			Name:      "generations_total",
			Help:      "Text-generation calls by outcome.",
		},
		[]string{"outcome"},
	)

	generationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "newsletterhub",
			Subsystem: "textgen",
			Name:      "generation_duration_seconds",
			Help:      "Duration of text-generation calls.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10), // 250ms to ~2m
		},
	)

	weeklyRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsletterhub",
			Subsystem: "weekly",
			Name:      "runs_total",
			Help:      "Weekly assignment runs per newsletter by result.",
		},
		[]string{"success"},
	)

	weeklyPicks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsletterhub",
			Subsystem: "weekly",
			Name:      "picks_total",
			Help:      "Questions picked by the weekly routine.",
		},
		[]string{"repeat"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		generations,
		generationDuration,
		weeklyRuns,
		weeklyPicks,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency, labelled by chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		route := routePattern(r)
		method := strings.ToUpper(r.Method)
		httpRequests.WithLabelValues(method, route, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	})
}

// RecordGeneration counts one text-generation call. outcome is "ok", "error"
// or "throttled".
func RecordGeneration(outcome string, d time.Duration) {
	generations.WithLabelValues(outcome).Inc()
	if d > 0 {
		generationDuration.Observe(d.Seconds())
	}
}

// RecordWeeklyRun counts one per-newsletter weekly run and its picks.
func RecordWeeklyRun(success bool, picks, repeats int) {
	weeklyRuns.WithLabelValues(strconv.FormatBool(success)).Inc()
	if fresh := picks - repeats; fresh > 0 {
		weeklyPicks.WithLabelValues("false").Add(float64(fresh))
	}
	if repeats > 0 {
		weeklyPicks.WithLabelValues("true").Add(float64(repeats))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// routePattern keeps label cardinality bounded: ids never appear in labels.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
