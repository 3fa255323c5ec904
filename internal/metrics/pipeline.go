package metrics

import "github.com/prometheus/client_golang/prometheus"

// Pipeline Prometheus metrics.
var (
	PipelineRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docchat",
			Name:      "pipeline_runs_total",
			Help:      "Pipeline runs by terminal outcome",
		},
		[]string{"outcome"}, // answered / no_results / failed
	)

	PipelineFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docchat",
			Name:      "pipeline_failures_total",
			Help:      "Pipeline failures by reason",
		},
		[]string{"reason"}, // store_unavailable / ranking_failed / generation_failed
	)

	PipelineStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docchat",
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Duration of each pipeline stage",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"stage"}, // retrieve / rank / generate
	)

	PipelineDocumentsRetrieved = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "docchat",
			Name:      "pipeline_documents_retrieved",
			Help:      "Documents returned by the store per run",
			Buckets:   []float64{0, 1, 10, 50, 100, 500, 1000, 5000, 10000},
		},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers Prometheus pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(PipelineRunsTotal)
	prometheus.MustRegister(PipelineFailuresTotal)
	prometheus.MustRegister(PipelineStageDuration)
	prometheus.MustRegister(PipelineDocumentsRetrieved)
	pipelineMetricsRegistered = true
}
