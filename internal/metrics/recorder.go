// Package metrics defines observability hooks for analysis runs.
package metrics

import "time"

// Outcome labels one analysis result.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
)

// Recorder defines observability hooks for analyses. Implementations must be
// safe for concurrent use because enrichment fetches report in parallel.
type Recorder interface {
	IncAnalysis(kind string, outcome Outcome)
	ObserveAnalysisDuration(kind string, d time.Duration)
	IncEnrichmentFallback(resource string)
	IncAugmentResult(result string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncAnalysis(string, Outcome)                   {}
func (NoopRecorder) ObserveAnalysisDuration(string, time.Duration) {}
func (NoopRecorder) IncEnrichmentFallback(string)                  {}
func (NoopRecorder) IncAugmentResult(string)                       {}
