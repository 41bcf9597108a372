package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricewatch_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pricewatch_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)

	// Observation metrics
	ObservationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricewatch_observations_total",
			Help: "Total number of price observations attempted",
		},
		[]string{"status"}, // status: ok, fetch_failed, parse_failed
	)

	AlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricewatch_alerts_total",
			Help: "Total number of alerts raised",
		},
		[]string{"kind"}, // kind: target_reached, drop, change
	)

	CyclesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pricewatch_cycles_total",
			Help: "Total number of monitoring cycles completed",
		},
	)

	CycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pricewatch_cycle_duration_seconds",
			Help:    "Time taken to complete one monitoring cycle",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pricewatch_fetch_duration_seconds",
			Help:    "Time taken to fetch one observation from the source",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	ProductsTracked = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pricewatch_products_tracked",
			Help: "Number of products currently monitored",
		},
	)

	HistoryRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pricewatch_history_records",
			Help: "Total number of price records held in history",
		},
	)

	// Sink metrics
	SinkPublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricewatch_sink_publish_total",
			Help: "Total number of alerts published to the sink",
		},
		[]string{"status"}, // status: success, failed
	)

	SinkPublishRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pricewatch_sink_publish_retries_total",
			Help: "Total number of sink publish retries",
		},
	)

	// Persistence metrics
	SnapshotSavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricewatch_snapshot_saves_total",
			Help: "Total number of history snapshot saves",
		},
		[]string{"status"},
	)

	// Panic recovery
	PanicsRecovered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricewatch_panics_recovered_total",
			Help: "Total number of panics recovered",
		},
		[]string{"component"},
	)
)
