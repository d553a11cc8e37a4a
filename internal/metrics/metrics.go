// Package metrics owns the Prometheus registry and the collectors the API reports.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics groups every collector. Create one per process with New.
type Metrics struct {
	Registry *prometheus.Registry

	Requests        *prometheus.CounterVec   // by method, route, status
	RequestDuration *prometheus.HistogramVec // by method, route
	RoundsWritten   *prometheus.CounterVec   // by operation: create, update, delete
	CoursesWritten  *prometheus.CounterVec   // by operation
	GeocoderCalls   *prometheus.CounterVec   // by outcome: ok, empty, error
	LiveWatchers    prometheus.Gauge
}

// New registers all collectors on a fresh registry, together with the Go and process
// collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "buddiesgolf",
			Name:      "http_requests_total",
			Help:      "HTTP requests served.",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "buddiesgolf",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		RoundsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "buddiesgolf",
			Name:      "rounds_written_total",
			Help:      "Round writes by operation.",
		}, []string{"op"}),
		CoursesWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "buddiesgolf",
			Name:      "courses_written_total",
			Help:      "Course writes by operation.",
		}, []string{"op"}),
		GeocoderCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "buddiesgolf",
			Name:      "geocoder_requests_total",
			Help:      "Place search calls by outcome.",
		}, []string{"outcome"}),
		LiveWatchers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "buddiesgolf",
			Name:      "live_watchers",
			Help:      "Open websocket connections watching a round.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Requests,
		m.RequestDuration,
		m.RoundsWritten,
		m.CoursesWritten,
		m.GeocoderCalls,
		m.LiveWatchers,
	)
	return m
}
