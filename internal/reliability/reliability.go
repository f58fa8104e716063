// Package reliability quantifies the uncertainty of the factor of safety from
// the standard deviations given in the material table, by Monte Carlo
// simulation and by the first-order second-moment (FOSM) method.
package reliability

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/geostab/slopekit/internal/errors"
	"github.com/geostab/slopekit/internal/fileio"
	"github.com/geostab/slopekit/internal/geometry"
	"github.com/geostab/slopekit/internal/slices"
	"github.com/geostab/slopekit/internal/solve"
)

// Result summarizes a reliability analysis.
type Result struct {
	Method        solve.Method `json:"method"`
	MeanFS        float64      `json:"mean_fs"`
	StdFS         float64      `json:"std_fs"`
	Beta          float64      `json:"beta"`      // reliability index (E[FS]-1)/sigma[FS]
	PFailure      float64      `json:"p_failure"` // P(FS < 1) under a normal FS
	Samples       int          `json:"samples"`
	FailedDraws   int          `json:"failed_draws"`
	Deterministic float64      `json:"deterministic_fs"`
}

// Options controls the simulation.
type Options struct {
	Method solve.Method
	Slices int
	Solver solve.Options
	Draws  int
	Seed   uint64
}

// DefaultOptions runs 1000 Bishop draws over 20 slices.
func DefaultOptions() Options {
	return Options{
		Method: solve.MethodBishop,
		Slices: 20,
		Solver: solve.DefaultOptions(),
		Draws:  1000,
		Seed:   1,
	}
}

// MonteCarlo samples material properties from normal distributions with the
// sigma columns of the material table, re-solves the selected method for each
// draw, and reports the distribution of the factor of safety. Draws that
// produce invalid geometry or a failed solve are counted, not fatal.
func MonteCarlo(g *fileio.Globals, circle *geometry.Circle, opt Options) (*Result, error) {
	if opt.Draws < 2 {
		return nil, errors.InputError("reliability", "Monte Carlo requires at least two draws")
	}
	if !hasUncertainty(g.Materials) {
		return nil, errors.InputError("mat", "no material has a nonzero standard deviation")
	}

	det, err := solveOnce(g, circle, opt)
	if err != nil {
		return nil, err
	}

	src := newSource(opt.Seed)
	fsValues := make([]float64, 0, opt.Draws)
	failed := 0

	for d := 0; d < opt.Draws; d++ {
		trial := *g
		trial.Materials = sampleMaterials(g.Materials, src)

		fs, err := solveOnce(&trial, circle, opt)
		if err != nil {
			failed++
			continue
		}
		fsValues = append(fsValues, fs)
	}
	if len(fsValues) < 2 {
		return nil, errors.New(errors.CategorySolve, errors.SeverityError,
			"too few successful draws for statistics").
			WithContext("failed", failed)
	}

	mean, std := stat.MeanStdDev(fsValues, nil)
	res := &Result{
		Method:        opt.Method,
		MeanFS:        mean,
		StdFS:         std,
		Samples:       len(fsValues),
		FailedDraws:   failed,
		Deterministic: det,
	}
	fillIndices(res)
	return res, nil
}

// FOSM estimates the variance of the factor of safety by central differences
// on each uncertain material property, assuming independence.
func FOSM(g *fileio.Globals, circle *geometry.Circle, opt Options) (*Result, error) {
	if !hasUncertainty(g.Materials) {
		return nil, errors.InputError("mat", "no material has a nonzero standard deviation")
	}

	det, err := solveOnce(g, circle, opt)
	if err != nil {
		return nil, err
	}

	var variance float64
	perturb := func(apply func(*fileio.Material, float64), sigma float64, idx int) error {
		if sigma == 0 {
			return nil
		}
		plus := *g
		plus.Materials = cloneMaterials(g.Materials)
		apply(&plus.Materials[idx], sigma)
		fsPlus, err := solveOnce(&plus, circle, opt)
		if err != nil {
			return err
		}

		minus := *g
		minus.Materials = cloneMaterials(g.Materials)
		apply(&minus.Materials[idx], -sigma)
		fsMinus, err := solveOnce(&minus, circle, opt)
		if err != nil {
			return err
		}

		d := (fsPlus - fsMinus) / 2
		variance += d * d
		return nil
	}

	for i := range g.Materials {
		m := g.Materials[i]
		if err := perturb(func(mm *fileio.Material, dv float64) { mm.Gamma += dv }, m.SigmaGamma, i); err != nil {
			return nil, err
		}
		if err := perturb(func(mm *fileio.Material, dv float64) { mm.C += dv }, m.SigmaC, i); err != nil {
			return nil, err
		}
		if err := perturb(func(mm *fileio.Material, dv float64) { mm.Phi += dv }, m.SigmaPhi, i); err != nil {
			return nil, err
		}
		if err := perturb(func(mm *fileio.Material, dv float64) { mm.Cp += dv }, m.SigmaCp, i); err != nil {
			return nil, err
		}
	}

	res := &Result{
		Method:        opt.Method,
		MeanFS:        det,
		StdFS:         math.Sqrt(variance),
		Samples:       0,
		Deterministic: det,
	}
	fillIndices(res)
	return res, nil
}

func fillIndices(res *Result) {
	if res.StdFS > 0 {
		res.Beta = (res.MeanFS - 1) / res.StdFS
		norm := distuv.Normal{Mu: res.MeanFS, Sigma: res.StdFS}
		res.PFailure = norm.CDF(1)
	} else if res.MeanFS >= 1 {
		res.Beta = math.Inf(1)
	} else {
		res.Beta = math.Inf(-1)
		res.PFailure = 1
	}
}

func solveOnce(g *fileio.Globals, circle *geometry.Circle, opt Options) (float64, error) {
	res, err := slices.Generate(g, circle, opt.Slices)
	if err != nil {
		return 0, err
	}
	out, err := solve.Run(opt.Method, res, circle != nil, opt.Solver)
	if err != nil {
		return 0, err
	}
	return out.FS, nil
}

func hasUncertainty(mats []fileio.Material) bool {
	for _, m := range mats {
		if m.SigmaGamma > 0 || m.SigmaC > 0 || m.SigmaPhi > 0 || m.SigmaCp > 0 {
			return true
		}
	}
	return false
}

func cloneMaterials(mats []fileio.Material) []fileio.Material {
	out := make([]fileio.Material, len(mats))
	copy(out, mats)
	return out
}

func sampleMaterials(mats []fileio.Material, src *source) []fileio.Material {
	out := cloneMaterials(mats)
	for i := range out {
		m := &out[i]
		if m.SigmaGamma > 0 {
			m.Gamma = math.Max(0.1, src.normal(m.Gamma, m.SigmaGamma))
		}
		if m.SigmaC > 0 {
			m.C = math.Max(0, src.normal(m.C, m.SigmaC))
		}
		if m.SigmaPhi > 0 {
			m.Phi = math.Max(0, src.normal(m.Phi, m.SigmaPhi))
		}
		if m.SigmaCp > 0 {
			m.Cp = math.Max(0, src.normal(m.Cp, m.SigmaCp))
		}
	}
	return out
}
