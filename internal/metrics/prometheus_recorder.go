package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once           sync.Once
	solveDuration  *prom.HistogramVec
	searchDuration prom.Histogram
	solveResults   *prom.CounterVec
	factorOfSafety *prom.GaugeVec
	monitorCycles  *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.solveDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "slopekit",
			Name:      "solve_duration_seconds",
			Help:      "Duration of individual limit-equilibrium solves",
			Buckets:   prom.DefBuckets,
		}, []string{"method"})
		pr.searchDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "slopekit",
			Name:      "search_duration_seconds",
			Help:      "Duration of critical surface searches",
			Buckets:   prom.DefBuckets,
		})
		pr.solveResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "slopekit",
			Name:      "solve_results_total",
			Help:      "Solve result counts by outcome",
		}, []string{"method", "result"})
		pr.factorOfSafety = prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: "slopekit",
			Name:      "factor_of_safety",
			Help:      "Most recent factor of safety per input and method",
		}, []string{"input", "method"})
		pr.monitorCycles = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "slopekit",
			Name:      "monitor_cycles_total",
			Help:      "Monitor re-analysis cycles by outcome",
		}, []string{"outcome"})
		reg.MustRegister(pr.solveDuration, pr.searchDuration, pr.solveResults,
			pr.factorOfSafety, pr.monitorCycles)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveSolveDuration(method string, d time.Duration) {
	if p == nil || p.solveDuration == nil {
		return
	}
	p.solveDuration.WithLabelValues(method).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveSearchDuration(d time.Duration) {
	if p == nil || p.searchDuration == nil {
		return
	}
	p.searchDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncSolveResult(method string, result ResultLabel) {
	if p == nil || p.solveResults == nil {
		return
	}
	p.solveResults.WithLabelValues(method, string(result)).Inc()
}

func (p *PrometheusRecorder) SetFactorOfSafety(input, method string, fs float64) {
	if p == nil || p.factorOfSafety == nil {
		return
	}
	p.factorOfSafety.WithLabelValues(input, method).Set(fs)
}

func (p *PrometheusRecorder) IncMonitorCycle(outcome string) {
	if p == nil || p.monitorCycles == nil {
		return
	}
	p.monitorCycles.WithLabelValues(outcome).Inc()
}
