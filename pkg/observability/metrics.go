package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PipelineMetrics holds all Prometheus metrics for the draft pipeline.
type PipelineMetrics struct {
	StageSeconds         *prometheus.HistogramVec
	ClassificationsTotal *prometheus.CounterVec
	GenerationAttempts   prometheus.Histogram
	FallbacksTotal       prometheus.Counter
	RejectionsTotal      *prometheus.CounterVec
	OutcomesTotal        *prometheus.CounterVec
}

// DefaultPipelineMetrics creates metrics on the default registerer.
func DefaultPipelineMetrics() *PipelineMetrics {
	return NewPipelineMetrics(prometheus.DefaultRegisterer)
}

// NewPipelineMetrics creates a new set of pipeline metrics.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	factory := promauto.With(reg)

	return &PipelineMetrics{
		StageSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "draftgen_stage_seconds",
				Help:    "Processing latency per pipeline stage",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"stage", "status"},
		),
		ClassificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "draftgen_classifications_total",
				Help: "Classification results by label and confidence tier",
			},
			[]string{"label", "tier"},
		),
		GenerationAttempts: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "draftgen_generation_attempts",
				Help:    "Service attempts consumed per generation run",
				Buckets: []float64{1, 2, 3, 4, 5, 6},
			},
		),
		FallbacksTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "draftgen_generation_fallbacks_total",
				Help: "Generation runs that used the fallback template",
			},
		),
		RejectionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "draftgen_validation_rejections_total",
				Help: "Validator rejections by reason code",
			},
			[]string{"reason"},
		),
		OutcomesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "draftgen_outcomes_total",
				Help: "Pipeline outcomes by result code",
			},
			[]string{"code"},
		),
	}
}
