package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	analyses            *prom.CounterVec
	analysisDuration    *prom.HistogramVec
	enrichmentFallbacks *prom.CounterVec
	augmentResults      *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		analyses: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "spoon",
			Name:      "analyses_total",
			Help:      "Analyses by input kind and outcome",
		}, []string{"kind", "outcome"}),
		analysisDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "spoon",
			Name:      "analysis_duration_seconds",
			Help:      "End-to-end analysis duration",
			Buckets:   prom.DefBuckets,
		}, []string{"kind"}),
		enrichmentFallbacks: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "spoon",
			Name:      "enrichment_fallbacks_total",
			Help:      "Enrichment fetches replaced by their default value",
		}, []string{"resource"}),
		augmentResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "spoon",
			Name:      "augment_results_total",
			Help:      "Remote augmentation attempts by result",
		}, []string{"result"}),
	}
	reg.MustRegister(pr.analyses, pr.analysisDuration, pr.enrichmentFallbacks, pr.augmentResults)
	return pr
}

func (p *PrometheusRecorder) IncAnalysis(kind string, outcome Outcome) {
	p.analyses.WithLabelValues(kind, string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveAnalysisDuration(kind string, d time.Duration) {
	p.analysisDuration.WithLabelValues(kind).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncEnrichmentFallback(resource string) {
	p.enrichmentFallbacks.WithLabelValues(resource).Inc()
}

func (p *PrometheusRecorder) IncAugmentResult(result string) {
	p.augmentResults.WithLabelValues(result).Inc()
}

// HTTPHandler returns an http.Handler that serves Prometheus metrics for the provided registry.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
