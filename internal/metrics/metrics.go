// Package metrics exports the analytics service counters to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP requests by route and status.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "restoops_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"endpoint", "method", "status"},
	)

	// RequestDuration tracks HTTP request latency per route.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "restoops_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"endpoint", "method"},
	)

	// ReportsGenerated counts completed analytics reports.
	ReportsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "restoops_reports_generated_total",
			Help: "Total number of item analytics reports generated",
		},
	)

	// ReportLatency tracks how long one full item analysis takes, movements
	// fetch included.
	ReportLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "restoops_report_latency_seconds",
			Help:    "Per-item report computation latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	// AnomaliesDetected counts anomalous days found across all reports.
	AnomaliesDetected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "restoops_anomalies_detected_total",
			Help: "Total number of anomalous usage days detected",
		},
	)

	// HighRiskItems gauges how many items the last batch run graded high risk.
	HighRiskItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "restoops_high_risk_items",
			Help: "Items graded high stockout risk in the latest batch run",
		},
	)

	// CacheHits counts report cache hits.
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "restoops_cache_hits_total",
			Help: "Total number of report cache hits",
		},
	)

	// CacheMisses counts report cache misses.
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "restoops_cache_misses_total",
			Help: "Total number of report cache misses",
		},
	)

	// BatchDuration tracks end-to-end batch analysis runs.
	BatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "restoops_batch_duration_seconds",
			Help:    "Batch analysis run duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)
)

// ObserveReport records the outcome of one generated report.
func ObserveReport(start time.Time, anomalies int) {
	ReportsGenerated.Inc()
	ReportLatency.Observe(time.Since(start).Seconds())
	if anomalies > 0 {
		AnomaliesDetected.Add(float64(anomalies))
	}
}
