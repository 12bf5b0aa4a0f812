package core

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetricsRecorder exports operation counters and latency histograms
// through a prometheus registry.
type PrometheusMetricsRecorder struct {
	operations *prometheus.CounterVec
	durations  *prometheus.HistogramVec
}

// NewPrometheusMetricsRecorder registers the recorder's collectors with reg.
// Registration conflicts panic, matching prometheus.MustRegister semantics.
func NewPrometheusMetricsRecorder(reg prometheus.Registerer) *PrometheusMetricsRecorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &PrometheusMetricsRecorder{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "herdcore",
			Subsystem: "service",
			Name:      "operations_total",
			Help:      "Lifecycle operations by name and outcome.",
		}, []string{"operation", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "herdcore",
			Subsystem: "service",
			Name:      "operation_duration_seconds",
			Help:      "Lifecycle operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	reg.MustRegister(r.operations, r.durations)
	return r
}

// Observe implements MetricsRecorder.
func (r *PrometheusMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.operations.WithLabelValues(operation, status).Inc()
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
}

// SummaryCollector exposes the live herd summary as prometheus gauges,
// computed from a consistent snapshot at scrape time.
type SummaryCollector struct {
	service           *Service
	activeEstrus      *prometheus.Desc
	activePregnancies *prometheus.Desc
	dueSoon           *prometheus.Desc
	pendingBreedings  *prometheus.Desc
	totalBirths       *prometheus.Desc
}

// NewSummaryCollector builds a collector over the service's Summarize view.
func NewSummaryCollector(service *Service) *SummaryCollector {
	return &SummaryCollector{
		service:           service,
		activeEstrus:      prometheus.NewDesc("herdcore_active_estrus", "Estrus detections awaiting breeding.", nil, nil),
		activePregnancies: prometheus.NewDesc("herdcore_active_pregnancies", "Pregnancies currently active.", nil, nil),
		dueSoon:           prometheus.NewDesc("herdcore_due_soon_pregnancies", "Active pregnancies inside the due-soon threshold.", nil, nil),
		pendingBreedings:  prometheus.NewDesc("herdcore_pending_breedings", "Breeding records with no recorded outcome.", nil, nil),
		totalBirths:       prometheus.NewDesc("herdcore_births_total", "Birth records in the store.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *SummaryCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.activeEstrus
	ch <- c.activePregnancies
	ch <- c.dueSoon
	ch <- c.pendingBreedings
	ch <- c.totalBirths
}

// Collect implements prometheus.Collector. A failed snapshot reports no
// samples for this scrape rather than stale values.
func (c *SummaryCollector) Collect(ch chan<- prometheus.Metric) {
	summary, err := c.service.Summarize(context.Background(), time.Time{})
	if err != nil {
		return
	}
	ch <- prometheus.MustNewConstMetric(c.activeEstrus, prometheus.GaugeValue, float64(summary.ActiveEstrus))
	ch <- prometheus.MustNewConstMetric(c.activePregnancies, prometheus.GaugeValue, float64(summary.ActivePregnancies))
	ch <- prometheus.MustNewConstMetric(c.dueSoon, prometheus.GaugeValue, float64(summary.DueSoon))
	ch <- prometheus.MustNewConstMetric(c.pendingBreedings, prometheus.GaugeValue, float64(summary.PendingBreedings))
	ch <- prometheus.MustNewConstMetric(c.totalBirths, prometheus.GaugeValue, float64(summary.TotalBirths))
}
