package server

import "github.com/prometheus/client_golang/prometheus"

var (
	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "f1ri",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	buildDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "f1ri",
		Name:      "build_duration_seconds",
		Help:      "Time spent building timelines and briefs.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	timelineBuilds = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "f1ri",
		Name:      "timeline_builds_total",
		Help:      "Timeline builds by session resolution outcome.",
	}, []string{"outcome"})

	telemetryFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "f1ri",
		Name:      "telemetry_fetches_total",
		Help:      "Telemetry collection fetches served over the HTTP API.",
	}, []string{"collection"})
)

func init() {
	prometheus.MustRegister(requestsTotal, buildDuration, timelineBuilds, telemetryFetches)
}
