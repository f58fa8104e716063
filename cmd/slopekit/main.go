package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/geostab/slopekit/internal/config"
	"github.com/geostab/slopekit/internal/docsite"
	"github.com/geostab/slopekit/internal/fileio"
	"github.com/geostab/slopekit/internal/geometry"
	"github.com/geostab/slopekit/internal/metrics"
	"github.com/geostab/slopekit/internal/monitor"
	"github.com/geostab/slopekit/internal/plot"
	"github.com/geostab/slopekit/internal/reliability"
	"github.com/geostab/slopekit/internal/search"
	"github.com/geostab/slopekit/internal/slices"
	"github.com/geostab/slopekit/internal/solve"
	"github.com/geostab/slopekit/internal/store"
	"github.com/geostab/slopekit/internal/version"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"slopekit.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`
	Input   string `short:"i" help:"Analysis input file (overrides configuration)"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Check struct{} `cmd:"" help:"Load and validate the analysis input"`

	Slices struct {
		Output string `short:"o" help:"Slice table output workbook" default:"slices.xlsx"`
	} `cmd:"" help:"Generate the slice table and export it"`

	Solve struct {
		Method string `short:"m" help:"Limit equilibrium method"`
		Plot   string `help:"Render the cross section to this file"`
	} `cmd:"" help:"Solve the configured failure surface"`

	Search struct {
		Method string `short:"m" help:"Limit equilibrium method"`
	} `cmd:"" help:"Search the trial circles for the critical surface"`

	Drawdown struct {
		Pool float64 `help:"Post-drawdown pool elevation" required:""`
	} `cmd:"" help:"Run the staged rapid drawdown analysis"`

	Reliability struct {
		Draws int    `help:"Monte Carlo draws" default:"1000"`
		Seed  uint64 `help:"Random seed" default:"1"`
		FOSM  bool   `help:"Use first-order second-moment instead of Monte Carlo"`
	} `cmd:"" help:"Estimate the distribution of the factor of safety"`

	Monitor struct{} `cmd:"" help:"Watch the input and re-analyze continuously"`

	Docs struct {
		Lint struct {
			Links bool `help:"Also check links inside pages"`
		} `cmd:"" help:"Lint the documentation manifest against the docs tree"`

		Build struct {
			Output string `short:"o" help:"Manifest output path"`
		} `cmd:"" help:"Derive the navigation tree from the docs source"`
	} `cmd:"" help:"Documentation site tooling"`

	Version struct{} `cmd:"" help:"Print version information"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	var err error
	switch ctx.Command() {
	case "init":
		err = config.Init(CLI.Config, CLI.Init.Force)
	case "check":
		err = runCheck()
	case "slices":
		err = runSlices()
	case "solve":
		err = runSolve()
	case "search":
		err = runSearch()
	case "drawdown":
		err = runDrawdown()
	case "reliability":
		err = runReliability()
	case "monitor":
		err = runMonitor()
	case "docs lint":
		err = runDocsLint()
	case "docs build":
		err = runDocsBuild()
	case "version":
		fmt.Printf("slopekit %s (built %s, commit %s)\n", version.Version, version.BuildTime, version.GitCommit)
	}
	if err != nil {
		slog.Error("Command failed", "command", ctx.Command(), "error", err)
		os.Exit(1)
	}
}

// loadConfig resolves the effective configuration: the config file when
// present, otherwise a default configuration around --input.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		if CLI.Input != "" {
			return config.New(CLI.Input), nil
		}
		return nil, err
	}
	if CLI.Input != "" {
		cfg.Input.Path = CLI.Input
	}
	return cfg, nil
}

func loadInput(cfg *config.Config) (*fileio.Globals, error) {
	slog.Debug("Loading analysis input", "path", cfg.Input.Path)
	return fileio.Load(cfg.Input.Path)
}

// firstCircle returns the configured failure circle for single-surface
// commands, or nil for a non-circular surface.
func firstCircle(g *fileio.Globals) *geometry.Circle {
	if g.Circular && len(g.Circles) > 0 {
		return &g.Circles[0]
	}
	return nil
}

func method(cfg *config.Config, override string) (solve.Method, error) {
	name := cfg.Input.Method
	if override != "" {
		name = override
	}
	return solve.ParseMethod(name)
}

func runCheck() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	g, err := loadInput(cfg)
	if err != nil {
		return err
	}

	surface := "non-circular"
	if g.Circular {
		surface = fmt.Sprintf("circular (%d trial circles)", len(g.Circles))
	}
	slog.Info("Input is valid",
		"path", cfg.Input.Path,
		"profile_lines", len(g.ProfileLines),
		"materials", len(g.Materials),
		"surface", surface,
		"piezo", len(g.PiezoLine) > 0,
		"reinforcement_lines", len(g.ReinforceLines))
	return nil
}

func runSlices() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	g, err := loadInput(cfg)
	if err != nil {
		return err
	}

	res, err := slices.Generate(g, firstCircle(g), cfg.Input.Slices)
	if err != nil {
		return err
	}
	if err := slices.Export(res, CLI.Slices.Output); err != nil {
		return err
	}
	slog.Info("Slice table exported", "slices", len(res.Slices), "output", CLI.Slices.Output)
	return nil
}

func runSolve() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	g, err := loadInput(cfg)
	if err != nil {
		return err
	}
	m, err := method(cfg, CLI.Solve.Method)
	if err != nil {
		return err
	}

	circle := firstCircle(g)
	res, err := slices.Generate(g, circle, cfg.Input.Slices)
	if err != nil {
		return err
	}
	result, err := solve.Run(m, res, g.Circular, cfg.SolveOptions())
	if err != nil {
		return err
	}

	fmt.Println(result.String())
	if !result.Converged {
		slog.Warn("Solver did not converge", "method", m)
	}

	if CLI.Solve.Plot != "" {
		if err := plot.Render(g, res, &result, CLI.Solve.Plot, plot.DefaultOptions()); err != nil {
			return err
		}
		slog.Info("Cross section rendered", "path", CLI.Solve.Plot)
	}
	return saveRun(cfg, result)
}

func runSearch() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	g, err := loadInput(cfg)
	if err != nil {
		return err
	}
	m, err := method(cfg, CLI.Search.Method)
	if err != nil {
		return err
	}

	opt := search.DefaultOptions()
	opt.Method = m
	opt.Slices = cfg.Input.Slices
	opt.Solver = cfg.SolveOptions()
	opt.Workers = cfg.Solver.Workers

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	best, all, err := search.FindCritical(ctx, g, opt)
	if err != nil {
		return err
	}

	slog.Info("Critical surface found",
		"fs", best.Result.FS,
		"xo", best.Circle.Xo, "yo", best.Circle.Yo, "r", best.Circle.R,
		"candidates", len(all))
	fmt.Println(best.Result.String())
	return saveRun(cfg, best.Result)
}

func runDrawdown() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	g, err := loadInput(cfg)
	if err != nil {
		return err
	}
	circle := firstCircle(g)
	if circle == nil {
		return fmt.Errorf("rapid drawdown requires a circular failure surface")
	}

	// Lowered pool: a level line across the full section width.
	lowered := geometry.Polyline{
		{X: g.GroundSurface.MinX(), Y: CLI.Drawdown.Pool},
		{X: g.GroundSurface.MaxX(), Y: CLI.Drawdown.Pool},
	}
	res, err := solve.RapidDrawdown(g, *circle, lowered, cfg.Input.Slices, cfg.SolveOptions())
	if err != nil {
		return err
	}

	slog.Info("Rapid drawdown complete",
		"pre_fs", res.PreDrawdown.FS,
		"post_fs", res.PostDrawdown.FS,
		"governing", res.Governing)
	fmt.Printf("pre-drawdown:  %s\npost-drawdown: %s\ngoverning FS:  %.3f\n",
		res.PreDrawdown.String(), res.PostDrawdown.String(), res.Governing)
	return nil
}

func runReliability() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	g, err := loadInput(cfg)
	if err != nil {
		return err
	}
	m, err := method(cfg, "")
	if err != nil {
		return err
	}

	opt := reliability.DefaultOptions()
	opt.Method = m
	opt.Slices = cfg.Input.Slices
	opt.Solver = cfg.SolveOptions()
	opt.Draws = CLI.Reliability.Draws
	opt.Seed = CLI.Reliability.Seed

	var res *reliability.Result
	if CLI.Reliability.FOSM {
		res, err = reliability.FOSM(g, firstCircle(g), opt)
	} else {
		res, err = reliability.MonteCarlo(g, firstCircle(g), opt)
	}
	if err != nil {
		return err
	}

	slog.Info("Reliability analysis complete",
		"method", res.Method,
		"mean_fs", res.MeanFS,
		"std_fs", res.StdFS,
		"beta", res.Beta,
		"p_failure", res.PFailure,
		"samples", res.Samples,
		"failed_draws", res.FailedDraws)
	fmt.Printf("mean FS %.3f, std %.3f, beta %.2f, P(FS<1) %.4f\n",
		res.MeanFS, res.StdFS, res.Beta, res.PFailure)
	return nil
}

func runMonitor() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	registry := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(registry)

	var runs store.Store
	if cfg.Store.Enabled {
		s, err := store.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer s.Close()
		runs = s
	}

	var pub monitor.Publisher
	if cfg.Monitor.NATSURL != "" {
		p, err := monitor.NewNATSPublisher(cfg.Monitor.NATSURL, cfg.Monitor.NATSSubject)
		if err != nil {
			return err
		}
		defer p.Close()
		pub = p
	}

	m := monitor.New(cfg, runs, recorder, pub)
	m.SetRegistry(registry)

	slog.Info("Monitor starting", "input", cfg.Input.Path, "interval", cfg.Monitor.Interval.Std())
	errChan := make(chan error, 1)
	go func() { errChan <- m.Start(ctx) }()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	}

	// Give the monitor a moment to finish the in-flight cycle.
	select {
	case err := <-errChan:
		return err
	case <-time.After(10 * time.Second):
		return fmt.Errorf("monitor did not stop in time")
	}
}

// docsConfig resolves configuration for the docs commands, which work with
// defaults when no config file exists.
func docsConfig() *config.Config {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return config.New("")
	}
	return cfg
}

func runDocsLint() error {
	cfg := docsConfig()

	report, err := docsite.LintFile(cfg.Docs.ConfigPath, cfg.Docs.SourceDir)
	if err != nil {
		return err
	}
	if CLI.Docs.Lint.Links && report.OK() {
		site, err := docsite.Load(cfg.Docs.ConfigPath)
		if err != nil {
			return err
		}
		linkReport, err := docsite.LintLinks(site, cfg.Docs.SourceDir)
		if err != nil {
			return err
		}
		report.Issues = append(report.Issues, linkReport.Issues...)
	}

	if !report.OK() {
		for _, issue := range report.Issues {
			slog.Error("Lint issue", "check", string(issue.Check), "where", issue.Where, "detail", issue.Detail)
		}
		return fmt.Errorf("%d lint issue(s)", len(report.Issues))
	}
	slog.Info("Documentation manifest is clean", "config", cfg.Docs.ConfigPath)
	return nil
}

func runDocsBuild() error {
	cfg := docsConfig()

	nav, err := docsite.BuildNav(cfg.Docs.SourceDir)
	if err != nil {
		return err
	}

	site := docsite.Default()
	site.Nav = nav

	output := CLI.Docs.Build.Output
	if output == "" {
		output = cfg.Docs.ConfigPath
	}
	if err := docsite.Write(site, output); err != nil {
		return err
	}
	slog.Info("Navigation derived from docs tree", "pages", countLeaves(nav), "output", output)
	return nil
}

func countLeaves(nav []docsite.NavEntry) int {
	var n int
	docsite.Walk(nav, func(e docsite.NavEntry, _ int) bool {
		if e.IsLeaf() {
			n++
		}
		return true
	})
	return n
}

func saveRun(cfg *config.Config, result solve.Result) error {
	if !cfg.Store.Enabled {
		return nil
	}
	s, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer s.Close()

	saved, err := s.Save(context.Background(), store.Run{
		InputPath: cfg.Input.Path,
		Method:    string(result.Method),
		FS:        result.FS,
		Beta:      result.Beta,
		Lambda:    result.Lambda,
		Converged: result.Converged,
		Slices:    result.Slices,
	})
	if err != nil {
		return err
	}
	slog.Debug("Run recorded", "run_id", saved.ID)
	return nil
}
