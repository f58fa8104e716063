// Package search locates the critical failure surface: it evaluates trial
// circles concurrently, refines the governing circle by depth sweep, and
// optimizes the tension-crack depth.
package search

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/geostab/slopekit/internal/errors"
	"github.com/geostab/slopekit/internal/fileio"
	"github.com/geostab/slopekit/internal/geometry"
	"github.com/geostab/slopekit/internal/slices"
	"github.com/geostab/slopekit/internal/solve"
)

// Candidate is one evaluated trial surface.
type Candidate struct {
	Circle geometry.Circle `json:"circle"`
	Result solve.Result    `json:"result"`
	Err    error           `json:"-"`
}

// Options controls the search.
type Options struct {
	Method  solve.Method
	Slices  int
	Solver  solve.Options
	Workers int

	// DepthSteps refines the governing circle by sweeping its depth within
	// +/- DepthSpan. Zero disables refinement.
	DepthSteps int
	DepthSpan  float64
}

// DefaultOptions evaluates with Bishop over 20 slices and four workers.
func DefaultOptions() Options {
	return Options{
		Method:     solve.MethodBishop,
		Slices:     20,
		Solver:     solve.DefaultOptions(),
		Workers:    4,
		DepthSteps: 10,
		DepthSpan:  2,
	}
}

// FindCritical evaluates every trial circle in the input and returns the one
// with the minimum factor of safety, along with all evaluated candidates
// sorted by factor of safety. Trial circles that fail geometrically are
// skipped with a warning.
func FindCritical(ctx context.Context, g *fileio.Globals, opt Options) (*Candidate, []Candidate, error) {
	if len(g.Circles) == 0 {
		return nil, nil, errors.InputError("circles", "critical surface search requires trial circles")
	}
	if opt.Workers < 1 {
		opt.Workers = 1
	}

	candidates := evaluate(ctx, g, g.Circles, opt)

	valid := candidates[:0]
	for _, c := range candidates {
		if c.Err != nil {
			slog.Warn("Trial circle skipped",
				"xo", c.Circle.Xo, "yo", c.Circle.Yo, "r", c.Circle.R, "error", c.Err)
			continue
		}
		valid = append(valid, c)
	}
	if len(valid) == 0 {
		return nil, nil, errors.New(errors.CategoryGeometry, errors.SeverityFatal,
			"no trial circle produced a valid slice table")
	}

	sort.Slice(valid, func(i, j int) bool { return valid[i].Result.FS < valid[j].Result.FS })
	best := valid[0]

	if opt.DepthSteps > 0 && opt.DepthSpan > 0 {
		if refined, ok := refineDepth(ctx, g, best, opt); ok {
			best = refined
		}
	}
	return &best, valid, nil
}

// evaluate fans candidate circles out over a bounded worker pool.
func evaluate(ctx context.Context, g *fileio.Globals, circles []geometry.Circle, opt Options) []Candidate {
	out := make([]Candidate, len(circles))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < opt.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i] = evalOne(g, circles[i], opt)
			}
		}()
	}

	for i := range circles {
		select {
		case <-ctx.Done():
			out[i] = Candidate{Circle: circles[i], Err: ctx.Err()}
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	return out
}

func evalOne(g *fileio.Globals, circle geometry.Circle, opt Options) Candidate {
	c := Candidate{Circle: circle}
	res, err := slices.Generate(g, &circle, opt.Slices)
	if err != nil {
		c.Err = err
		return c
	}
	c.Result, c.Err = solve.Run(opt.Method, res, true, opt.Solver)
	return c
}

// refineDepth sweeps the governing circle's depth within +/- DepthSpan and
// keeps the minimum, holding the center fixed.
func refineDepth(ctx context.Context, g *fileio.Globals, best Candidate, opt Options) (Candidate, bool) {
	var trials []geometry.Circle
	for i := 0; i <= opt.DepthSteps; i++ {
		depth := best.Circle.Depth - opt.DepthSpan + 2*opt.DepthSpan*float64(i)/float64(opt.DepthSteps)
		if !math.IsInf(g.MaxDepth, -1) && depth < g.MaxDepth {
			continue
		}
		r := best.Circle.Yo - depth
		if r <= 0 {
			continue
		}
		trials = append(trials, geometry.Circle{Xo: best.Circle.Xo, Yo: best.Circle.Yo, R: r, Depth: depth})
	}
	if len(trials) == 0 {
		return best, false
	}

	refined := best
	improved := false
	for _, c := range evaluate(ctx, g, trials, opt) {
		if c.Err == nil && c.Result.FS < refined.Result.FS {
			refined = c
			improved = true
		}
	}
	return refined, improved
}

// OptimizeCrackDepth sweeps the tension-crack depth from zero to maxDepth and
// returns the depth minimizing the factor of safety for the given circle,
// along with the governing result.
func OptimizeCrackDepth(g *fileio.Globals, circle geometry.Circle, maxDepth float64, steps int, opt Options) (float64, solve.Result, error) {
	if steps < 1 || maxDepth <= 0 {
		return 0, solve.Result{}, errors.InputError("tcrack", "crack depth sweep requires a positive depth and step count")
	}

	bestDepth := 0.0
	var bestResult solve.Result
	found := false

	for i := 0; i <= steps; i++ {
		depth := maxDepth * float64(i) / float64(steps)
		trial := *g
		trial.TCrackDepth = depth
		if depth > 0 {
			trial.TCrackSurface = geometry.Offset(g.GroundSurface, -depth)
		} else {
			trial.TCrackSurface = nil
		}

		res, err := slices.Generate(&trial, &circle, opt.Slices)
		if err != nil {
			continue
		}
		result, err := solve.Run(opt.Method, res, true, opt.Solver)
		if err != nil {
			continue
		}
		if !found || result.FS < bestResult.FS {
			bestDepth, bestResult, found = depth, result, true
		}
	}
	if !found {
		return 0, solve.Result{}, errors.New(errors.CategoryGeometry, errors.SeverityError,
			"no crack depth produced a valid solution")
	}
	return bestDepth, bestResult, nil
}
