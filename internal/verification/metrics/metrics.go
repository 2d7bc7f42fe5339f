// Package metrics provides observability for the verification pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the verification module.
type Metrics struct {
	// Per-stage execution latencies.
	StageLatency *prometheus.HistogramVec

	// Terminal outcomes by status.
	Outcomes *prometheus.CounterVec

	// Early exits by trigger.
	EarlyExits *prometheus.CounterVec

	// End-to-end pipeline latency.
	PipelineLatency prometheus.Histogram
}

// New creates a Metrics instance with all verification metrics registered.
func New() *Metrics {
	return &Metrics{
		StageLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "verigate_pipeline_stage_duration_seconds",
			Help:    "Duration of pipeline stages by stage name",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"stage"}), // stage: "ocr_scanning", "face_matching", "credential_checking", "ml_scoring"

		Outcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "verigate_pipeline_outcomes_total",
			Help: "Total terminal pipeline outcomes by status",
		}, []string{"status"}),

		EarlyExits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "verigate_pipeline_early_exits_total",
			Help: "Total early pipeline exits by trigger",
		}, []string{"trigger"}),

		PipelineLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "verigate_pipeline_duration_seconds",
			Help:    "Duration of full pipeline runs including all stages",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

// ObserveStageLatency records the duration of a single pipeline stage.
func (m *Metrics) ObserveStageLatency(stage string, d time.Duration) {
	if m != nil {
		m.StageLatency.WithLabelValues(stage).Observe(d.Seconds())
	}
}

// IncrementOutcome records a terminal pipeline outcome.
func (m *Metrics) IncrementOutcome(status string) {
	if m != nil {
		m.Outcomes.WithLabelValues(status).Inc()
	}
}

// IncrementEarlyExit records an early pipeline exit.
func (m *Metrics) IncrementEarlyExit(trigger string) {
	if m != nil {
		m.EarlyExits.WithLabelValues(trigger).Inc()
	}
}

// ObservePipelineLatency records a full pipeline run duration.
func (m *Metrics) ObservePipelineLatency(d time.Duration) {
	if m != nil {
		m.PipelineLatency.Observe(d.Seconds())
	}
}
