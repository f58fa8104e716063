// Package monitor runs the analysis continuously: it watches the input file,
// re-solves on change and on a schedule, persists results, publishes run
// events, and serves status and metrics over HTTP.
package monitor

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/geostab/slopekit/internal/config"
	"github.com/geostab/slopekit/internal/errors"
	"github.com/geostab/slopekit/internal/fileio"
	"github.com/geostab/slopekit/internal/geometry"
	"github.com/geostab/slopekit/internal/metrics"
	"github.com/geostab/slopekit/internal/search"
	"github.com/geostab/slopekit/internal/slices"
	"github.com/geostab/slopekit/internal/solve"
	"github.com/geostab/slopekit/internal/store"
)

// Status is the monitor's externally visible state.
type Status struct {
	StartedAt   time.Time  `json:"started_at"`
	Cycles      int        `json:"cycles"`
	LastTrigger string     `json:"last_trigger,omitempty"`
	LastRun     *store.Run `json:"last_run,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
}

// Monitor owns the periodic re-analysis loop.
type Monitor struct {
	cfg      *config.Config
	runs     store.Store
	recorder metrics.Recorder
	pub      Publisher
	registry *prom.Registry

	trigger chan string

	mu     sync.RWMutex
	status Status
}

// New builds a monitor. runs may be nil when persistence is disabled; pub may
// be nil when no NATS publishing is configured.
func New(cfg *config.Config, runs store.Store, recorder metrics.Recorder, pub Publisher) *Monitor {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	if pub == nil {
		pub = NoopPublisher{}
	}
	return &Monitor{
		cfg:      cfg,
		runs:     runs,
		recorder: recorder,
		pub:      pub,
		trigger:  make(chan string, 4),
	}
}

// SetRegistry attaches a Prometheus registry for the /metrics endpoint.
func (m *Monitor) SetRegistry(reg *prom.Registry) { m.registry = reg }

// Trigger requests a re-analysis cycle. Non-blocking; coalesces when a cycle
// is already queued behind others.
func (m *Monitor) Trigger(reason string) {
	select {
	case m.trigger <- reason:
	default:
		slog.Debug("Trigger dropped, queue full", "reason", reason)
	}
}

// Status returns a snapshot of the monitor state.
func (m *Monitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Start runs the monitor until ctx is canceled: initial analysis, then
// re-analysis on input change and on the configured interval.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	m.status.StartedAt = time.Now()
	m.mu.Unlock()

	watcher, err := NewInputWatcher(m.cfg.Input.Path, m.cfg.Monitor.Debounce.Std(), m.Trigger)
	if err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer watcher.Stop()

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return errors.MonitorError("scheduler", err)
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(m.cfg.Monitor.Interval.Std()),
		gocron.NewTask(func() { m.Trigger("schedule") }),
		gocron.WithName("periodic-analysis"),
	)
	if err != nil {
		return errors.MonitorError("scheduler", err)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			slog.Error("Scheduler shutdown error", "error", err)
		}
	}()

	server := m.httpServer()
	go func() {
		slog.Info("Monitor HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		}
	}()

	m.Trigger("startup")

	for {
		select {
		case <-ctx.Done():
			slog.Info("Monitor stopping")
			return nil
		case reason := <-m.trigger:
			m.runOnce(ctx, reason)
		}
	}
}

// runOnce executes one analysis cycle.
func (m *Monitor) runOnce(ctx context.Context, reason string) {
	slog.Info("Starting analysis cycle", "trigger", reason, "input", m.cfg.Input.Path)
	started := time.Now()

	run, err := m.analyze(ctx)
	elapsed := time.Since(started)

	m.mu.Lock()
	m.status.Cycles++
	m.status.LastTrigger = reason
	if err != nil {
		m.status.LastError = err.Error()
	} else {
		m.status.LastError = ""
		m.status.LastRun = &run
	}
	m.mu.Unlock()

	if err != nil {
		m.recorder.IncMonitorCycle("failed")
		slog.Error("Analysis cycle failed", "trigger", reason, "error", err, "elapsed", elapsed)
		return
	}

	m.recorder.IncMonitorCycle("success")
	m.recorder.SetFactorOfSafety(m.cfg.Input.Path, run.Method, run.FS)
	slog.Info("Analysis cycle complete",
		"method", run.Method, "fs", run.FS, "converged", run.Converged, "elapsed", elapsed)

	if m.runs != nil {
		saved, err := m.runs.Save(ctx, run)
		if err != nil {
			slog.Error("Failed to persist run", "error", err)
		} else {
			run = saved
		}
	}
	if err := m.pub.Publish(RunEvent{Run: run, Trigger: reason}); err != nil {
		slog.Error("Failed to publish run event", "error", err)
	}
}

// analyze loads the input and solves it. Inputs with trial circles get a
// critical surface search; a single surface is solved directly.
func (m *Monitor) analyze(ctx context.Context) (store.Run, error) {
	g, err := fileio.Load(m.cfg.Input.Path)
	if err != nil {
		return store.Run{}, err
	}

	method, err := solve.ParseMethod(m.cfg.Input.Method)
	if err != nil {
		return store.Run{}, err
	}

	var result solve.Result
	solveStart := time.Now()
	if g.Circular && len(g.Circles) > 1 {
		opt := search.DefaultOptions()
		opt.Method = method
		opt.Slices = m.cfg.Input.Slices
		opt.Solver = m.cfg.SolveOptions()
		opt.Workers = m.cfg.Solver.Workers

		best, _, err := search.FindCritical(ctx, g, opt)
		if err != nil {
			m.recorder.IncSolveResult(string(method), metrics.ResultError)
			return store.Run{}, err
		}
		m.recorder.ObserveSearchDuration(time.Since(solveStart))
		result = best.Result
	} else {
		var circle *geometry.Circle
		if g.Circular && len(g.Circles) > 0 {
			circle = &g.Circles[0]
		}
		res, err := slices.Generate(g, circle, m.cfg.Input.Slices)
		if err != nil {
			m.recorder.IncSolveResult(string(method), metrics.ResultError)
			return store.Run{}, err
		}
		result, err = solve.Run(method, res, g.Circular, m.cfg.SolveOptions())
		if err != nil {
			m.recorder.IncSolveResult(string(method), metrics.ResultError)
			return store.Run{}, err
		}
	}
	m.recorder.ObserveSolveDuration(string(method), time.Since(solveStart))

	label := metrics.ResultSuccess
	if !result.Converged {
		label = metrics.ResultNotConverged
	}
	m.recorder.IncSolveResult(string(method), label)

	return store.Run{
		InputPath: m.cfg.Input.Path,
		Method:    string(result.Method),
		FS:        result.FS,
		Beta:      result.Beta,
		Lambda:    result.Lambda,
		Converged: result.Converged,
		Slices:    result.Slices,
	}, nil
}

func (m *Monitor) httpServer() *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/status", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(m.Status()); err != nil {
			slog.Error("Failed to encode status", "error", err)
		}
	})
	if m.registry != nil {
		mux.Handle("/metrics", metrics.HTTPHandler(m.registry))
	}
	return &http.Server{
		Addr:              m.cfg.Monitor.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
