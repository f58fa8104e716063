package metrics

import "time"

// ResultLabel enumerates solver result categories for counters.
type ResultLabel string

const (
	ResultSuccess      ResultLabel = "success"
	ResultNotConverged ResultLabel = "not_converged"
	ResultError        ResultLabel = "error"
)

// Recorder defines observability hooks for solver and monitor metrics.
// Implementations may forward to Prometheus, OpenTelemetry, etc. All methods
// must be safe on the NoopRecorder so injection stays optional.
type Recorder interface {
	ObserveSolveDuration(method string, d time.Duration)
	ObserveSearchDuration(d time.Duration)
	IncSolveResult(method string, result ResultLabel)
	SetFactorOfSafety(input, method string, fs float64)
	IncMonitorCycle(outcome string) // outcome: success|failed|skipped
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not
// configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveSolveDuration(string, time.Duration) {}
func (NoopRecorder) ObserveSearchDuration(time.Duration)        {}
func (NoopRecorder) IncSolveResult(string, ResultLabel)         {}
func (NoopRecorder) SetFactorOfSafety(string, string, float64)  {}
func (NoopRecorder) IncMonitorCycle(string)                     {}
