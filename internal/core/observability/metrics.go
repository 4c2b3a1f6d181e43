// Package observability registers and records the service's prometheus
// metrics.
package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~20s
		},
		[]string{"method", "route", "status"},
	)

	upstreamLatencySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_latency_seconds",
			Help:    "Latency of upstream fetches in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"upstream"},
	)

	layerLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "layer_loads_total",
			Help: "City layer load attempts by outcome.",
		},
		[]string{"city", "outcome"},
	)

	layerStoreOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "layer_store_ops_total",
			Help: "Layer store operations by outcome.",
		},
		[]string{"op", "outcome"},
	)

	layerStoreOpSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "layer_store_op_duration_seconds",
			Help:    "Duration of layer store operations in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"op"},
	)

	visibleFacilities = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "filter_visible_facilities",
			Help:    "Number of facilities surviving the filter pipeline per query.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10), // 1 to ~260k
		},
	)

	facilitiesLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "parking_facilities_loaded",
			Help: "Number of facilities in the active snapshot.",
		},
	)

	buildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_build_info",
			Help: "Build information for the binary.",
		},
		[]string{"version"},
	)
)

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st).Observe(durationSeconds)
}

func ObserveUpstreamLatency(upstream string, durationSeconds float64) {
	upstreamLatencySeconds.WithLabelValues(upstream).Observe(durationSeconds)
}

func IncLayerLoad(city, outcome string) {
	layerLoadsTotal.WithLabelValues(city, outcome).Inc()
}

func ObserveLayerStoreOp(op string, err error, durationSeconds float64) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	layerStoreOpsTotal.WithLabelValues(op, outcome).Inc()
	layerStoreOpSeconds.WithLabelValues(op).Observe(durationSeconds)
}

func ObserveVisibleFacilities(n int) {
	visibleFacilities.Observe(float64(n))
}

func SetFacilitiesLoaded(n int) {
	facilitiesLoaded.Set(float64(n))
}

func ExposeBuildInfo(version string) {
	if version == "" {
		version = "dev"
	}
	buildInfo.WithLabelValues(version).Set(1)
}
