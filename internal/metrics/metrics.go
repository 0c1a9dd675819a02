package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetmon_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fleetmon_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)

	// Loader metrics
	RowsLoaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fleetmon_loader_rows_loaded_total",
			Help: "Total number of CSV rows loaded into the fleet",
		},
	)

	RowsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetmon_loader_rows_rejected_total",
			Help: "Total number of CSV rows rejected by the loader",
		},
		[]string{"reason"},
	)

	// Fleet metrics
	FleetSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fleetmon_fleet_size",
			Help: "Current number of records in the fleet store",
		},
	)

	AggregationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fleetmon_aggregation_duration_seconds",
			Help:    "Time taken to compute one fleet average",
			Buckets: []float64{.00001, .0001, .001, .01, .1, 1},
		},
		[]string{"stat"},
	)

	AlertsTriggered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetmon_alerts_triggered_total",
			Help: "Total number of alert rule triggers",
		},
		[]string{"rule"},
	)

	// Updater metrics
	UpdatesApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetmon_updates_applied_total",
			Help: "Total number of telemetry updates applied to records",
		},
		[]string{"source"}, // source: sim, feed
	)

	UpdatesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetmon_updates_dropped_total",
			Help: "Total number of telemetry updates dropped",
		},
		[]string{"reason"}, // reason: unknown_vehicle, invalid, decode
	)

	// Feed consumer metrics
	FeedMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetmon_feed_messages_total",
			Help: "Total number of feed messages consumed",
		},
		[]string{"status"}, // status: ok, decode_error
	)

	FeedFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fleetmon_feed_fetch_duration_seconds",
			Help:    "Time spent waiting for one feed message",
			Buckets: []float64{.001, .01, .1, .5, 1, 5, 30},
		},
	)

	// Panic recovery
	PanicsRecovered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetmon_panics_recovered_total",
			Help: "Total number of panics recovered",
		},
		[]string{"component"},
	)
)
